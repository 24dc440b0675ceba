package mesh

import "errors"

// Sentinel kinds for status probe errors. Each is terminal for the request.
var (
	ErrProbeSpawn   = errors.New("status command failed")
	ErrProbeDecode  = errors.New("status output is not valid UTF-8")
	ErrProbeParse   = errors.New("status output is malformed")
	ErrProbeTimeout = errors.New("status command timed out")
)

// ErrorType returns a short metrics label for err.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrProbeTimeout):
		return "timeout"
	case errors.Is(err, ErrProbeSpawn):
		return "spawn"
	case errors.Is(err, ErrProbeDecode):
		return "decode"
	case errors.Is(err, ErrProbeParse):
		return "parse"
	default:
		return "unknown"
	}
}
