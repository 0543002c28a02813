package guardgen

import "log/slog"

// Option configures a Validator or Module. Options given to Compile override
// those given at construction.
type Option func(*options)

type options struct {
	diagnostics bool
	logger      *slog.Logger
	pkg         string
	header      []string
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
		pkg:    "validators",
		header: []string{"Code generated by guardgen. DO NOT EDIT."},
	}
}

func (o options) with(opts []Option) options {
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithDiagnostics selects diagnostic mode: every independent failure is
// recorded with its path instead of stopping at the first one.
func WithDiagnostics(enabled bool) Option {
	return func(o *options) { o.diagnostics = enabled }
}

// WithLogger sets the logger compile passes report to (at debug level).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPackage sets the package clause of generated source.
func WithPackage(name string) Option {
	return func(o *options) {
		if name != "" {
			o.pkg = name
		}
	}
}

// WithHeader replaces the comment lines written above the package clause.
func WithHeader(lines ...string) Option {
	return func(o *options) { o.header = lines }
}
