package logger

// Option configures Init.
type Option func(*options)

type options struct {
	format  string
	outputs []string
}

// WithFormat selects the encoder: "json" (default) or "console".
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithOutputPaths replaces the default stdout sink, e.g. stdout plus a file.
func WithOutputPaths(paths ...string) Option {
	return func(o *options) {
		if len(paths) > 0 {
			o.outputs = paths
		}
	}
}
