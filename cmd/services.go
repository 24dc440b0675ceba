package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/okian/dorsum/internal/adapters/http/api"
	"github.com/okian/dorsum/internal/adapters/http/site"
	"github.com/okian/dorsum/internal/adapters/http/swagger"
	app "github.com/okian/dorsum/internal/app"
	"github.com/okian/dorsum/internal/config"
	"github.com/okian/dorsum/pkg/logger"
	"github.com/okian/dorsum/pkg/metrics"
)

// newMux registers every route and wraps the result with the request ID
// middleware.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	site.Register(ctx, mux, site.WithCertificates(cfg.Certificates))
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithLogger(log.Named("api")),
		api.WithCertificates(cfg.CertificatesDir, cfg.Certificates),
	)
	apiServer.Register(ctx, mux)

	return api.RequestID(mux)
}

// httpService runs an http.Server under the supervisor.
type httpService struct {
	srv *http.Server
	log logger.Logger
}

func newHTTPService(addr string, h http.Handler, log logger.Logger) *httpService {
	return &httpService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: log,
	}
}

// Serve listens until ctx is cancelled, then shuts the server down gracefully.
// A failure to bind terminates the supervisor tree.
func (s *httpService) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w: %w", s.srv.Addr, err, suture.ErrTerminateSupervisorTree)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", s.srv.Addr, err)
	case <-ctx.Done():
	}

	s.log.Info(context.Background(), "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error(context.Background(), "server shutdown failed", logger.Error(err))
		return err
	}
	return ctx.Err()
}

func (s *httpService) String() string { return "http" }

// metricsUpdater periodically samples runtime metrics.
type metricsUpdater struct {
	interval time.Duration
}

func newMetricsUpdater(interval time.Duration) *metricsUpdater {
	return &metricsUpdater{interval: interval}
}

// Serve samples once immediately and then every interval until ctx is done.
func (m *metricsUpdater) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func (m *metricsUpdater) String() string { return "metrics" }

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
