package profile

import "github.com/google/uuid"

// Option configures a Renderer.
type Option func(*Renderer)

// WithIdentifierSource replaces the random UUID generator.
func WithIdentifierSource(fn func() (uuid.UUID, error)) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithOrganization sets the name shown in profile display names.
func WithOrganization(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.organization = name
		}
	}
}

// WithIdentifierPrefix sets the reverse-DNS prefix of profile identifiers.
func WithIdentifierPrefix(prefix string) Option {
	return func(r *Renderer) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}
