package cmd

import (
	"log/slog"
	"slices"
)

// Error is a command failure. The package sentinels describe the failed
// operation; errors derived from one match it under errors.Is and carry the
// cause and attributes to the log.
type Error struct {
	op    string
	cause error
	attrs []slog.Attr
	kind  *Error // sentinel, or nil for a sentinel itself
}

func NewError(op string) *Error { return &Error{op: op} }

func (e *Error) Error() string {
	switch {
	case e.cause == nil:
		return e.op
	case e.op == "":
		return e.cause.Error()
	}

	return e.op + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.kind == nil {
		return e
	}

	return e.kind
}

func (e *Error) LogValue() slog.Value {
	var attrs []slog.Attr

	if e.op != "" {
		attrs = append(attrs, slog.String("error", e.op))
	}

	switch c := e.cause.(type) {
	case nil:
	case slog.LogValuer:
		attrs = append(attrs, slog.Any("cause", c))
	default:
		attrs = append(attrs, slog.String("cause", c.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{op: e.op, cause: err, attrs: e.attrs, kind: e.root()}
}

// With returns a copy of e with attrs added.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		op:    e.op,
		cause: e.cause,
		attrs: append(slices.Clip(e.attrs), attrs...),
		kind:  e.root(),
	}
}

var (
	ErrJSONMarshal = NewError("marshal JSON")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")

	ErrDiscover  = NewError("discover build scripts")
	ErrNoScripts = NewError("no build scripts found")
	ErrScript    = NewError("evaluate build script")
	ErrCheck     = NewError("check build graph")
	ErrQuery     = NewError("compile query")
	ErrFormat    = NewError("format declaration")
)
