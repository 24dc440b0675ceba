// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/dorsum/internal/domain/mesh"
	"github.com/okian/dorsum/internal/domain/profile"
	"github.com/okian/dorsum/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Snapshot queries the mesh client once.
	Snapshot(ctx context.Context) (mesh.NetworkSnapshot, error)
	// Profile queries the mesh client once and renders kind.
	Profile(ctx context.Context, kind profile.Kind) (profile.Payload, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	statusHandler       *StatusHandler
	profileHandler      *ProfileHandler
	certificatesHandler *CertificatesHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	log      logger.Logger
	certDir  string
	certList []string
}

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCertificates serves the named files from dir under /certificates/.
func WithCertificates(dir string, names []string) Option {
	return func(o *serverOptions) {
		o.certDir = dir
		o.certList = append([]string(nil), names...)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{log: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		statusHandler:       NewStatusHandler(deps, o.log),
		profileHandler:      NewProfileHandler(deps, o.log),
		certificatesHandler: NewCertificatesHandler(o.certDir, o.certList),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /tailscale", MetricsMiddleware(s.statusHandler.HandleStatus, "tailscale"))
	for _, kind := range profile.Kinds() {
		mux.HandleFunc("GET /ios/"+profile.FileName(kind),
			MetricsMiddleware(s.profileHandler.Handle(kind), "profile_"+kind.String()))
	}
	mux.HandleFunc("GET /certificates/{name}",
		MetricsMiddleware(s.certificatesHandler.HandleCertificate, "certificate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
