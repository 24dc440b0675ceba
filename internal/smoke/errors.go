package smoke

import "errors"

// Sentinel kinds for smoke failures.
var (
	ErrUnhealthy        = errors.New("service unhealthy")
	ErrStatus           = errors.New("unexpected status code")
	ErrContentType      = errors.New("unexpected content type")
	ErrDecode           = errors.New("profile does not decode")
	ErrIdentifierCount  = errors.New("unexpected identifier count")
	ErrIdentifierFormat = errors.New("identifier is not a UUID")
	ErrIdentifierReused = errors.New("identifier reused")
)
