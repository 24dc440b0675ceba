// Package service composes the status probe and the profile renderer into
// the operations the HTTP API serves.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/dorsum/internal/adapters/tailscale"
	"github.com/okian/dorsum/internal/domain/mesh"
	"github.com/okian/dorsum/internal/domain/profile"
	"github.com/okian/dorsum/pkg/logger"
	"github.com/okian/dorsum/pkg/metrics"
)

// Service implements the API dependencies for the profile endpoint.
type Service struct {
	mu sync.RWMutex

	// Core components
	source   mesh.StatusSource
	renderer *profile.Renderer

	// Configuration
	statusBin     string
	statusArgs    []string
	statusTimeout time.Duration

	// State
	started   bool
	startedAt time.Time
	command   string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatusSource replaces the CLI probe, typically with a fake in tests.
func WithStatusSource(src mesh.StatusSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithRenderer sets the profile renderer.
func WithRenderer(r *profile.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithStatusCommand sets the binary (and optionally arguments) the default
// probe runs.
func WithStatusCommand(bin string, args ...string) Option {
	return func(s *Service) {
		if bin != "" {
			s.statusBin = bin
			s.statusArgs = append([]string(nil), args...)
		}
	}
}

// WithStatusTimeout bounds each status call. Zero disables the bound.
func WithStatusTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.statusTimeout = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		renderer:      profile.NewRenderer(),
		statusBin:     tailscale.DefaultBinary,
		statusTimeout: tailscale.DefaultTimeout,
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start prepares the status source. Calling it again is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting profile service...")

	if s.source == nil {
		probe := tailscale.NewProbe(
			tailscale.WithBinary(s.statusBin),
			tailscale.WithArgs(s.statusArgs...),
			tailscale.WithTimeout(s.statusTimeout),
			tailscale.WithLogger(s.logger.Named("tailscale")),
		)
		if !probe.Available() {
			s.logger.Warn(ctx, "status binary not found; status requests will fail until it is installed",
				logger.String("binary", probe.Binary()),
			)
		}
		s.source = probe
		s.command = probe.CommandLine()
	} else {
		s.command = fmt.Sprintf("%T", s.source)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "profile service started",
		logger.String("status_command", s.command),
		logger.String("status_timeout", s.statusTimeout.String()),
	)

	return nil
}

// Stop marks the service stopped. Calling it again is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "profile service stopped")
}

// Snapshot queries the mesh client once.
func (s *Service) Snapshot(ctx context.Context) (mesh.NetworkSnapshot, error) {
	src, err := s.statusSource()
	if err != nil {
		return mesh.NetworkSnapshot{}, err
	}

	snap, err := src.FetchSnapshot(ctx)
	if err != nil {
		return mesh.NetworkSnapshot{}, err
	}
	metrics.UpdateBackendState(string(snap.BackendState))
	return snap, nil
}

// Profile queries the mesh client once and renders kind for its address.
func (s *Service) Profile(ctx context.Context, kind profile.Kind) (profile.Payload, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return profile.Payload{}, err
	}

	p, err := s.renderer.Render(kind, snap)
	if err != nil {
		metrics.RecordRenderError(kind.String(), profile.ErrorType(err))
		return profile.Payload{}, err
	}
	metrics.RecordProfileRendered(kind.String())

	s.logger.Debug(ctx, "profile rendered",
		logger.String("kind", kind.String()),
		logger.String("uuids", strings.Join(p.UUIDs, ",")),
		logger.Int("bytes", len(p.Body)),
	)
	return p, nil
}

func (s *Service) statusSource() (mesh.StatusSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.source, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]string, 0, len(profile.Kinds()))
	for _, k := range profile.Kinds() {
		kinds = append(kinds, k.String())
	}

	stats := map[string]interface{}{
		"started":         s.started,
		"statusTimeoutMs": s.statusTimeout.Milliseconds(),
		"profileKinds":    kinds,
	}

	if s.started {
		stats["statusCommand"] = s.command
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	return stats
}
