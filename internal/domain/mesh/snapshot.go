// Package mesh models the live status of the local mesh-VPN client.
package mesh

import "context"

// BackendState is the client's backend state as reported by the status
// command. Values other than the named constants are kept verbatim.
type BackendState string

// Backend states with dedicated handling.
const (
	StateRunning  BackendState = "Running"
	StateStarting BackendState = "Starting"
	StateStopped  BackendState = "Stopped"
)

// Status indicator colours.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

// Color maps the state to its status indicator colour.
func (s BackendState) Color() string {
	switch s {
	case StateRunning:
		return ColorGreen
	case StateStarting:
		return ColorYellow
	default:
		return ColorRed
	}
}

// NetworkSnapshot is the status of the mesh client at one point in time.
// It is derived per request and never stored.
type NetworkSnapshot struct {
	BackendState      BackendState
	AssignedAddresses []string
}

// PrimaryAddress returns the first assigned address, the one profiles point
// at. ok is false when no address is assigned.
func (s NetworkSnapshot) PrimaryAddress() (addr string, ok bool) {
	if len(s.AssignedAddresses) == 0 {
		return "", false
	}
	return s.AssignedAddresses[0], true
}

// StatusSource produces a fresh snapshot on every call.
type StatusSource interface {
	FetchSnapshot(ctx context.Context) (NetworkSnapshot, error)
}

// StatusSourceFunc adapts a function to StatusSource.
type StatusSourceFunc func(ctx context.Context) (NetworkSnapshot, error)

// FetchSnapshot calls f.
func (f StatusSourceFunc) FetchSnapshot(ctx context.Context) (NetworkSnapshot, error) {
	return f(ctx)
}
