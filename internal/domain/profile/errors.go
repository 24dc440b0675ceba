package profile

import "errors"

// Sentinel kinds for render errors.
var (
	ErrMissingAddress = errors.New("mesh node has no assigned address")
	ErrUnknownKind    = errors.New("unknown profile kind")
	ErrIdentifier     = errors.New("generate profile identifier")
)

// ErrorType returns a short metrics label for err.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrMissingAddress):
		return "missing_address"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, ErrIdentifier):
		return "identifier"
	default:
		return "encode"
	}
}
