package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/thejerf/suture/v4"

	app "github.com/okian/dorsum/internal/app"
	"github.com/okian/dorsum/internal/config"
	"github.com/okian/dorsum/internal/domain/mesh"
	"github.com/okian/dorsum/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startedService(snap mesh.NetworkSnapshot) *app.Service {
	svc := app.New(
		app.WithLogger(logger.NewNop()),
		app.WithStatusSource(mesh.StatusSourceFunc(func(context.Context) (mesh.NetworkSnapshot, error) {
			return snap, nil
		})),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("DORSUM_ADDR", ":8080")
			_ = os.Setenv("DORSUM_STATUS_TIMEOUT_MS", "1000")
			defer func() {
				_ = os.Unsetenv("DORSUM_ADDR")
				_ = os.Unsetenv("DORSUM_STATUS_TIMEOUT_MS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StatusTimeout(), convey.ShouldEqual, time.Second)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("DORSUM_ADDR", "")
			defer func() { _ = os.Unsetenv("DORSUM_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the assembled router", t, func() {
		cfg := config.New()
		cfg.CertificatesDir = t.TempDir()
		svc := startedService(mesh.NetworkSnapshot{
			BackendState:      mesh.StateRunning,
			AssignedAddresses: []string{"100.64.0.1"},
		})
		defer svc.Stop()

		h := newMux(context.Background(), cfg, svc, logger.NewNop())

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", path, http.NoBody))
			return w
		}

		convey.Convey("Then every route should be reachable", func() {
			for _, path := range []string{
				"/", "/certificates", "/ios", "/tailscale",
				"/ios/tailscale-dot.mobileconfig",
				"/ios/tailscale-doh.mobileconfig",
				"/ios/tailscale-proxy.mobileconfig",
				"/healthz", "/stats", "/api-docs", "/openapi.yaml",
			} {
				w := get(path)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("And a listed certificate missing on disk should be not found", func() {
			convey.So(get("/certificates/dorsum-root.crt").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHTTPService(t *testing.T) {
	convey.Convey("Given an HTTP service on a free port", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := ln.Addr().String()
		_ = ln.Close()

		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
		svc := newHTTPService(addr, h, logger.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		convey.Convey("Then it should answer until cancelled", func() {
			var resp *http.Response
			for i := 0; i < 50; i++ {
				resp, err = http.Get("http://" + addr + "/")
				if err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNoContent)

			cancel()
			select {
			case err := <-done:
				convey.So(err, convey.ShouldEqual, context.Canceled)
			case <-time.After(5 * time.Second):
				t.Fatal("http service did not stop")
			}
		})
	})

	convey.Convey("Given an address that cannot be bound", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = ln.Close() }()

		svc := newHTTPService(ln.Addr().String(), http.NotFoundHandler(), logger.NewNop())

		convey.Convey("Then Serve should return the listen error", func() {
			err := svc.Serve(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "listen")
			convey.So(errors.Is(err, suture.ErrTerminateSupervisorTree), convey.ShouldBeTrue)
		})

		convey.Convey("Then a supervisor should stop instead of restarting it", func() {
			sup := suture.New("test", suture.Spec{})
			sup.Add(svc)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			start := time.Now()
			err := sup.Serve(ctx)

			convey.So(errors.Is(err, suture.ErrTerminateSupervisorTree), convey.ShouldBeTrue)
			convey.So(ctx.Err(), convey.ShouldBeNil)
			convey.So(time.Since(start), convey.ShouldBeLessThan, 2*time.Second)
		})
	})
}

func TestMetricsUpdater(t *testing.T) {
	convey.Convey("Given the runtime metrics updater", t, func() {
		m := newMetricsUpdater(10 * time.Millisecond)

		convey.Convey("Then it should run until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(m.Serve(ctx), convey.ShouldEqual, context.DeadlineExceeded)
			convey.So(m.String(), convey.ShouldEqual, "metrics")
		})

		convey.Convey("And a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
