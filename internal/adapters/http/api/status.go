package api

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/okian/dorsum/pkg/logger"
)

var statusTemplate = template.Must(template.ParseFS(apiStaticFS, "static/tailscale.html"))

type statusView struct {
	Color   string
	State   string
	Address string
}

// StatusHandler renders the mesh status page.
type StatusHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps Dependencies, log logger.Logger) *StatusHandler {
	return &StatusHandler{deps: deps, log: log}
}

// HandleStatus handles GET /tailscale requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		status, code := statusFor(err)
		h.log.Error(r.Context(), "status request failed",
			logger.Int("status", status),
			logger.Error(err),
		)
		writeError(w, status, code, err)
		return
	}

	view := statusView{
		Color:   snap.BackendState.Color(),
		State:   string(snap.BackendState),
		Address: "-",
	}
	if addr, ok := snap.PrimaryAddress(); ok {
		view.Address = addr
	}

	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, view); err != nil {
		h.log.Error(r.Context(), "render status page", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
