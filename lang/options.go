package lang

import (
	"io"
	"slices"

	"github.com/ardnew/stargn/log"
)

// DefaultImportSuffix is the file suffix of the only module loads a script
// may perform.
const DefaultImportSuffix = ".gni"

// DefaultBuiltins names the declaration functions available to every
// script: a leaf build unit and a group of units.
var DefaultBuiltins = []string{"executable", "group"}

// options holds evaluation configuration.
type options struct {
	logger   log.Logger
	quoting  Quoting
	builtins []string
	suffix   string
	print    io.Writer
}

// Option configures an [Evaluation] or a [Session].
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithQuoting selects how string attribute values are re-quoted.
func WithQuoting(q Quoting) Option {
	return func(o *options) {
		o.quoting = q
	}
}

// WithBuiltins replaces the set of always-available declaration functions.
func WithBuiltins(names ...string) Option {
	return func(o *options) {
		o.builtins = slices.Clone(names)
	}
}

// WithImportSuffix sets the suffix a module identifier must carry to be
// loadable.
func WithImportSuffix(suffix string) Option {
	return func(o *options) {
		if suffix != "" {
			o.suffix = suffix
		}
	}
}

// WithPrint directs the output of the Starlark print builtin to w. Without
// it, printed messages are logged at info level.
func WithPrint(w io.Writer) Option {
	return func(o *options) {
		o.print = w
	}
}

// applyDefaults sets default option values.
func applyDefaults(o *options) {
	o.quoting = QuoteVerbatim
	o.builtins = slices.Clone(DefaultBuiltins)
	o.suffix = DefaultImportSuffix
}

// applyOptions applies functional options.
func applyOptions(o *options, opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

func makeOptions(opts ...Option) options {
	var o options

	applyDefaults(&o)
	applyOptions(&o, opts...)

	return o
}
