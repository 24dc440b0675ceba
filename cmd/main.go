package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/thejerf/suture/v4"

	app "github.com/okian/dorsum/internal/app"
	"github.com/okian/dorsum/internal/config"
	"github.com/okian/dorsum/internal/domain/profile"
	"github.com/okian/dorsum/pkg/logger"
	"github.com/okian/dorsum/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(); err != nil {
		// Logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			_, _ = os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		return err
	}

	if cfg.LogFormat != "json" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			logger.Get().Error(ctx, "invalid log_format", logger.String("log_format", cfg.LogFormat), logger.Error(err))
			return err
		}
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
	)

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStatusCommand(cfg.TailscaleBin),
		app.WithStatusTimeout(cfg.StatusTimeout()),
		app.WithRenderer(profile.NewRenderer(
			profile.WithOrganization(cfg.ProfileOrganization),
			profile.WithIdentifierPrefix(cfg.ProfileIdentifierPrefix),
		)),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return err
	}
	defer svc.Stop()

	supervisor := suture.New("dorsum", suture.Spec{
		EventHook: func(ev suture.Event) {
			log.Error(ctx, "supervisor event", logger.String("event", ev.String()))
		},
		Timeout: shutdownTimeout + time.Second,
	})
	supervisor.Add(newHTTPService(cfg.Addr, newMux(ctx, cfg, svc, log), log.Named("http")))
	supervisor.Add(newMetricsUpdater(systemMetricsInterval))

	log.Info(ctx, "dorsum starting", logger.String("addr", cfg.Addr))
	if err := supervisor.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error(ctx, "supervisor stopped", logger.Error(err))
		return err
	}

	log.Info(context.Background(), "server stopped")
	return nil
}
