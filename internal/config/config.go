// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers a YAML file and DORSUM_ environment variables on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: json or console.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// TailscaleBin is the mesh client binary invoked as `<bin> status --json`.
	TailscaleBin string `koanf:"tailscale_bin"`

	// StatusTimeoutMS bounds the status command. Zero waits indefinitely.
	StatusTimeoutMS int `koanf:"status_timeout_ms"`

	// CertificatesDir holds the certificate files offered for download.
	CertificatesDir string `koanf:"certificates_dir"`

	// Certificates lists the file names under CertificatesDir that may be served.
	Certificates []string `koanf:"certificates"`

	// ProfileOrganization is shown in profile display names and descriptions.
	ProfileOrganization string `koanf:"profile_organization"`

	// ProfileIdentifierPrefix is the reverse-DNS prefix for profile identifiers.
	ProfileIdentifierPrefix string `koanf:"profile_identifier_prefix"`

	// MetricsNamespace and MetricsSubsystem prefix every exported series.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels attached to every series, e.g. host.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsBuckets overrides the HTTP and error latency histogram buckets.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "json",
		Addr:                    ":3000",
		TailscaleBin:            "tailscale",
		StatusTimeoutMS:         5000,
		CertificatesDir:         "/etc/dorsum/certificates",
		Certificates:            []string{"dorsum-root.crt", "letsdane.crt"},
		ProfileOrganization:     "dorsum",
		ProfileIdentifierPrefix: "sh.dorsum",
		MetricsNamespace:        "dorsum",
		MetricsSubsystem:        "profiles",
	}
}

// StatusTimeout returns StatusTimeoutMS as a duration.
func (c *Config) StatusTimeout() time.Duration {
	return time.Duration(c.StatusTimeoutMS) * time.Millisecond
}
