package api

import (
	"errors"
	"net/http"

	"github.com/okian/dorsum/internal/domain/mesh"
	"github.com/okian/dorsum/internal/domain/profile"
)

// ErrCertificateNotFound is reported for names outside the served set.
var ErrCertificateNotFound = errors.New("certificate not found")

// statusFor maps a request-path error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, profile.ErrMissingAddress):
		return http.StatusServiceUnavailable, "no_address"
	case errors.Is(err, mesh.ErrProbeTimeout):
		return http.StatusGatewayTimeout, "status_timeout"
	case errors.Is(err, mesh.ErrProbeSpawn),
		errors.Is(err, mesh.ErrProbeDecode),
		errors.Is(err, mesh.ErrProbeParse):
		return http.StatusBadGateway, "status_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
