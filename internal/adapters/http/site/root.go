// Package site serves the static landing pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site page serve failed")
)

// DefaultCertificates are listed when no names are configured.
var DefaultCertificates = []string{"dorsum-root.crt", "letsdane.crt"}

var pages = template.Must(template.ParseFS(staticFS, "static/*.html"))

// Option applies a configuration option to the site.
type Option func(*options)

type options struct {
	certificates []string
}

// WithCertificates sets the download links on the certificates page.
func WithCertificates(names []string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.certificates = append([]string(nil), names...)
		}
	}
}

// Register attaches the landing pages to mux.
//
//	GET /              -> index
//	GET /certificates  -> certificate downloads
//	GET /ios           -> iOS profile downloads
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}

	o := options{certificates: DefaultCertificates}
	for _, opt := range opts {
		opt(&o)
	}

	mux.Handle("GET /{$}", NewPageHandler("index.html", nil))
	mux.Handle("GET /certificates", NewPageHandler("certificates.html", o.certificates))
	mux.Handle("GET /ios", NewPageHandler("ios.html", nil))
}

// PageHandler renders one embedded page.
type PageHandler struct {
	name string
	data any
}

// NewPageHandler creates a handler for the named page in static/.
func NewPageHandler(name string, data any) *PageHandler {
	return &PageHandler{name: name, data: data}
}

// ServeHTTP renders the page.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, h.name, h.data); err != nil {
		http.Error(w, fmt.Errorf("%w: %s: %w", ErrServe, h.name, err).Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
