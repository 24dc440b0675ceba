package tailscale

import (
	"time"

	"github.com/okian/dorsum/pkg/logger"
)

// Option applies a configuration option to the Probe.
type Option func(*Probe)

// WithBinary sets the status executable. Resolved through PATH when it has
// no separator.
func WithBinary(bin string) Option {
	return func(p *Probe) {
		if bin != "" {
			p.bin = bin
		}
	}
}

// WithArgs replaces the default "status --json" arguments.
func WithArgs(args ...string) Option {
	return func(p *Probe) {
		if len(args) > 0 {
			p.args = append([]string(nil), args...)
		}
	}
}

// WithTimeout bounds each status call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Probe) {
		if l != nil {
			p.log = l
		}
	}
}
