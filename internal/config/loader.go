package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DORSUM_CONFIG is set
//  3. env (prefix DORSUM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("DORSUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: DORSUM_ADDR, DORSUM_STATUS_TIMEOUT_MS, ...
	// Keys stay flat; underscores match the koanf tags on the struct.
	envProvider := env.Provider("DORSUM_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "dorsum_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Lists replace the default rather than merging into it index by index.
	if k.Exists("certificates") {
		cfg.Certificates = nil
	}
	if k.Exists("metrics_buckets") {
		cfg.MetricsBuckets = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.TailscaleBin) == "":
		return fmt.Errorf("%w: tailscale_bin must not be empty", ErrInvalidConfig)
	case c.StatusTimeoutMS < 0:
		return fmt.Errorf("%w: status_timeout_ms must not be negative", ErrInvalidConfig)
	case strings.TrimSpace(c.ProfileIdentifierPrefix) == "":
		return fmt.Errorf("%w: profile_identifier_prefix must not be empty", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	for _, name := range c.Certificates {
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("%w: certificate %q must be a plain file name", ErrInvalidConfig, name)
		}
	}
	return nil
}
