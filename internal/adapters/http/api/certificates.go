package api

import (
	"fmt"
	"net/http"
	"path/filepath"
)

// CertificatesHandler serves a fixed set of files from one directory.
type CertificatesHandler struct {
	dir     string
	allowed map[string]struct{}
}

// NewCertificatesHandler creates a handler serving names from dir.
func NewCertificatesHandler(dir string, names []string) *CertificatesHandler {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	return &CertificatesHandler{dir: dir, allowed: allowed}
}

// HandleCertificate handles GET /certificates/{name} requests.
func (h *CertificatesHandler) HandleCertificate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := h.allowed[name]; !ok || h.dir == "" {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrCertificateNotFound, name))
		return
	}

	w.Header().Set("Content-Type", "application/x-x509-ca-cert")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, filepath.Join(h.dir, name))
}
