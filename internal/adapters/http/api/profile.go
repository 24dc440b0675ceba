package api

import (
	"fmt"
	"net/http"

	"github.com/okian/dorsum/internal/domain/profile"
	"github.com/okian/dorsum/pkg/logger"
)

// ProfileHandler serves rendered .mobileconfig documents.
type ProfileHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Dependencies, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{deps: deps, log: log}
}

// Handle returns the handler for GET /ios/tailscale-<kind>.mobileconfig.
func (h *ProfileHandler) Handle(kind profile.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.deps.Profile(r.Context(), kind)
		if err != nil {
			status, code := statusFor(err)
			h.log.Error(r.Context(), "profile request failed",
				logger.String("kind", kind.String()),
				logger.Int("status", status),
				logger.Error(err),
			)
			writeError(w, status, code, err)
			return
		}

		w.Header().Set("Content-Type", p.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.FileName()))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(p.Body)
	}
}
