// Package tailscale queries the local Tailscale client for the node's state.
package tailscale

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/okian/dorsum/internal/domain/mesh"
	"github.com/okian/dorsum/pkg/logger"
	"github.com/okian/dorsum/pkg/metrics"
)

const (
	DefaultBinary  = "tailscale"
	DefaultTimeout = 5 * time.Second

	stderrExcerpt = 256
	waitDelay     = time.Second
)

// DefaultArgs are passed to the binary unless overridden.
var DefaultArgs = []string{"status", "--json"}

// Probe runs the status command once per call. It satisfies mesh.StatusSource.
type Probe struct {
	bin     string
	args    []string
	timeout time.Duration
	log     logger.Logger
}

var _ mesh.StatusSource = (*Probe)(nil)

// NewProbe creates a Probe for "tailscale status --json".
func NewProbe(opts ...Option) *Probe {
	p := &Probe{
		bin:     DefaultBinary,
		args:    append([]string(nil), DefaultArgs...),
		timeout: DefaultTimeout,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Binary returns the configured executable.
func (p *Probe) Binary() string { return p.bin }

// Timeout returns the per-call bound, zero when disabled.
func (p *Probe) Timeout() time.Duration { return p.timeout }

// CommandLine returns the command as it would be typed.
func (p *Probe) CommandLine() string {
	return strings.Join(append([]string{p.bin}, p.args...), " ")
}

// Available reports whether the binary can be resolved.
func (p *Probe) Available() bool {
	_, err := exec.LookPath(p.bin)
	return err == nil
}

// FetchSnapshot runs the status command and parses its output.
func (p *Probe) FetchSnapshot(ctx context.Context) (mesh.NetworkSnapshot, error) {
	start := time.Now()
	snap, err := p.fetch(ctx)
	metrics.RecordProbe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordProbeError(mesh.ErrorType(err))
		return mesh.NetworkSnapshot{}, err
	}

	p.log.Debug(ctx, "status probed",
		logger.String("backend_state", string(snap.BackendState)),
		logger.Int("addresses", len(snap.AssignedAddresses)),
		logger.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return snap, nil
}

func (p *Probe) fetch(ctx context.Context) (mesh.NetworkSnapshot, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		bound := fmt.Errorf("%w: %s after %s", mesh.ErrProbeTimeout, p.CommandLine(), p.timeout)
		ctx, cancel = context.WithTimeoutCause(ctx, p.timeout, bound)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, p.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		// Only the probe's own bound is a timeout; a caller deadline or
		// cancellation is reported as a spawn failure.
		if ctx.Err() != nil {
			cause := context.Cause(ctx)
			if errors.Is(cause, mesh.ErrProbeTimeout) {
				return mesh.NetworkSnapshot{}, cause
			}
			return mesh.NetworkSnapshot{}, fmt.Errorf("%w: %s: %w", mesh.ErrProbeSpawn, p.CommandLine(), cause)
		}
		if msg := excerpt(stderr.Bytes()); msg != "" {
			return mesh.NetworkSnapshot{}, fmt.Errorf("%w: %s: %w: %s", mesh.ErrProbeSpawn, p.CommandLine(), err, msg)
		}
		return mesh.NetworkSnapshot{}, fmt.Errorf("%w: %s: %w", mesh.ErrProbeSpawn, p.CommandLine(), err)
	}

	return mesh.ParseStatus(stdout.Bytes())
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(strings.ToValidUTF8(string(b), "?"))
	if len(s) > stderrExcerpt {
		s = s[:stderrExcerpt] + "..."
	}
	return s
}
