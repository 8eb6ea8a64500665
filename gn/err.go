package gn

import (
	"log/slog"
	"strings"
)

// Err is an error reported by the execution core. It carries the location
// of the offending node and optional help text.
type Err struct {
	Location Location
	Message  string
	Help     string
}

// NewErr creates an [Err] located at the given node. A nil node yields an
// error without a location.
func NewErr(n Node, msg string, help ...string) *Err {
	e := &Err{Message: msg, Help: strings.Join(help, "\n")}
	if n != nil {
		e.Location = n.Location()
	}

	return e
}

// HasError reports whether e describes a failure.
func (e *Err) HasError() bool { return e != nil && e.Message != "" }

// Error implements the error interface.
func (e *Err) Error() string {
	if e.Help == "" {
		return e.Message
	}

	return e.Message + "\n" + e.Help
}

// LogValue implements slog.LogValuer.
func (e *Err) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.Message)}

	if e.Location != (Location{}) {
		attrs = append(attrs, slog.String("location", e.Location.String()))
	}

	if e.Help != "" {
		attrs = append(attrs, slog.String("help", e.Help))
	}

	return slog.GroupValue(attrs...)
}
