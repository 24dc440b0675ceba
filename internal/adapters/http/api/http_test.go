package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dorsum/internal/adapters/http/api"
	"github.com/okian/dorsum/internal/domain/mesh"
	"github.com/okian/dorsum/internal/domain/profile"
)

// Mock implementations for testing
type mockDependencies struct {
	snap     mesh.NetworkSnapshot
	err      error
	renderer *profile.Renderer
	calls    int
}

func (m *mockDependencies) Snapshot(context.Context) (mesh.NetworkSnapshot, error) {
	m.calls++
	if m.err != nil {
		return mesh.NetworkSnapshot{}, m.err
	}
	return m.snap, nil
}

func (m *mockDependencies) Profile(ctx context.Context, kind profile.Kind) (profile.Payload, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return profile.Payload{}, err
	}
	return m.renderer.Render(kind, snap)
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func runningDeps() *mockDependencies {
	return &mockDependencies{
		snap: mesh.NetworkSnapshot{
			BackendState:      mesh.StateRunning,
			AssignedAddresses: []string{"100.1.2.3", "fd7a:115c:a1e0::1"},
		},
		renderer: profile.NewRenderer(),
	}
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...).
		Register(context.Background(), mux)
	return mux
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(runningDeps())

		Convey("Then health endpoint should expose metrics", func() {
			w := serve(mux, "GET", "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "dorsum_")
		})

		Convey("And stats endpoint should return JSON", func() {
			w := serve(mux, "GET", "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("And unknown paths should not be served", func() {
			So(serve(mux, "GET", "/unknown").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, "GET", "/ios/tailscale-vpn.mobileconfig").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And profile routes should reject other methods", func() {
			So(serve(mux, "POST", "/ios/tailscale-dot.mobileconfig").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestProfileHandler(t *testing.T) {
	Convey("Given a running node", t, func() {
		deps := runningDeps()
		mux := newMux(deps)

		for _, kind := range profile.Kinds() {
			path := "/ios/" + profile.FileName(kind)

			Convey("When requesting "+path, func() {
				w := serve(mux, "GET", path)

				Convey("Then an installable profile should be returned", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(w.Header().Get("Content-Type"), ShouldEqual, "application/x-apple-aspen-config")
					So(w.Header().Get("Content-Disposition"), ShouldEqual,
						fmt.Sprintf("attachment; filename=%q", profile.FileName(kind)))
					So(w.Body.String(), ShouldContainSubstring, "<plist")
					So(w.Body.String(), ShouldContainSubstring, "100.1.2.3")
					So(deps.calls, ShouldEqual, 1)
				})
			})
		}
	})

	Convey("Given request-path failures", t, func() {
		cases := []struct {
			name   string
			deps   *mockDependencies
			status int
			code   string
		}{
			{"no address", &mockDependencies{
				snap:     mesh.NetworkSnapshot{BackendState: mesh.StateStopped, AssignedAddresses: []string{}},
				renderer: profile.NewRenderer(),
			}, http.StatusServiceUnavailable, "no_address"},
			{"probe timeout", &mockDependencies{err: fmt.Errorf("%w: slow", mesh.ErrProbeTimeout)}, http.StatusGatewayTimeout, "status_timeout"},
			{"probe spawn", &mockDependencies{err: mesh.ErrProbeSpawn}, http.StatusBadGateway, "status_unavailable"},
			{"probe decode", &mockDependencies{err: mesh.ErrProbeDecode}, http.StatusBadGateway, "status_unavailable"},
			{"probe parse", &mockDependencies{err: mesh.ErrProbeParse}, http.StatusBadGateway, "status_unavailable"},
			{"other", &mockDependencies{err: errors.New("boom")}, http.StatusInternalServerError, "internal_error"},
		}

		for _, c := range cases {
			Convey("When the failure is "+c.name, func() {
				w := serve(newMux(c.deps), "GET", "/ios/tailscale-doh.mobileconfig")

				Convey("Then it should map to its status with a JSON body", func() {
					So(w.Code, ShouldEqual, c.status)
					So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
					So(decodeError(w)["code"], ShouldEqual, c.code)
				})
			})
		}
	})
}

func TestStatusHandler(t *testing.T) {
	Convey("Given the status page", t, func() {
		Convey("When the node is running", func() {
			w := serve(newMux(runningDeps()), "GET", "/tailscale")

			Convey("Then state, colour and first address should be shown", func() {
				body := w.Body.String()
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(body, ShouldContainSubstring, "color: green")
				So(body, ShouldContainSubstring, `<span class="status">Running</span>`)
				So(body, ShouldContainSubstring, "ipv4 - 100.1.2.3")
				So(body, ShouldNotContainSubstring, "fd7a")
			})
		})

		Convey("When the node is starting", func() {
			deps := &mockDependencies{snap: mesh.NetworkSnapshot{BackendState: mesh.StateStarting}}
			body := serve(newMux(deps), "GET", "/tailscale").Body.String()

			Convey("Then yellow and a placeholder address should be shown", func() {
				So(body, ShouldContainSubstring, "color: yellow")
				So(body, ShouldContainSubstring, "ipv4 - -")
			})
		})

		Convey("When the node reports an unfamiliar state", func() {
			deps := &mockDependencies{snap: mesh.NetworkSnapshot{BackendState: "<NeedsLogin>"}}
			body := serve(newMux(deps), "GET", "/tailscale").Body.String()

			Convey("Then it should be red and escaped", func() {
				So(body, ShouldContainSubstring, "color: red")
				So(body, ShouldContainSubstring, "&lt;NeedsLogin&gt;")
			})
		})

		Convey("When the probe fails", func() {
			deps := &mockDependencies{err: mesh.ErrProbeTimeout}
			w := serve(newMux(deps), "GET", "/tailscale")

			Convey("Then the error should be mapped", func() {
				So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
			})
		})
	})
}

func TestCertificatesHandler(t *testing.T) {
	Convey("Given a certificates directory", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "dorsum-root.crt"), []byte("-----BEGIN CERTIFICATE-----\n"), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "secret.key"), []byte("private"), 0o600), ShouldBeNil)

		mux := newMux(runningDeps(), api.WithCertificates(dir, []string{"dorsum-root.crt", "letsdane.crt"}))

		Convey("When requesting a listed certificate", func() {
			w := serve(mux, "GET", "/certificates/dorsum-root.crt")

			Convey("Then the file should be returned verbatim", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/x-x509-ca-cert")
				So(w.Body.String(), ShouldEqual, "-----BEGIN CERTIFICATE-----\n")
			})
		})

		Convey("When requesting an unlisted file", func() {
			w := serve(mux, "GET", "/certificates/secret.key")

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldNotContainSubstring, "private")
			})
		})

		Convey("When a listed certificate is missing on disk", func() {
			w := serve(mux, "GET", "/certificates/letsdane.crt")

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the request ID middleware", t, func() {
		h := api.RequestID(newMux(runningDeps()))

		Convey("When the client sends no ID", func() {
			w := serve(h, "GET", "/stats")

			Convey("Then one should be generated", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldHaveLength, 20)
			})
		})

		Convey("When the client sends an ID", func() {
			req := httptest.NewRequest("GET", "/stats", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})
	})
}
