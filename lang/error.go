package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Phase identifies the step of an evaluation in which an [Error] originated.
type Phase int

// Evaluation phases.
const (
	PhaseNone Phase = iota
	PhaseParse
	PhaseLoad
	PhaseTranslate
	PhaseExecute
	PhaseEvaluate
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseLoad:
		return "load"
	case PhaseTranslate:
		return "translate"
	case PhaseExecute:
		return "execute"
	case PhaseEvaluate:
		return "evaluate"
	default:
		return "none"
	}
}

// Predefined errors (sentinel values).
var (
	ErrParse     = newPhaseError(PhaseParse, "parse error")
	ErrReadInput = newPhaseError(PhaseParse, "failed to read input")

	ErrUnsupportedLoad = newPhaseError(PhaseLoad, "unsupported load")
	ErrImport          = newPhaseError(PhaseLoad, "import failed")

	ErrNoName           = newPhaseError(PhaseTranslate, "target has no name")
	ErrNameNotString    = newPhaseError(PhaseTranslate, "name is not a string")
	ErrUnsupportedValue = newPhaseError(PhaseTranslate, "don't know how to handle")
	ErrDuplicateAttr    = newPhaseError(PhaseTranslate, "duplicate attribute")
	ErrPositionalArgs   = newPhaseError(PhaseTranslate, "positional arguments are not supported")

	ErrExecute  = newPhaseError(PhaseExecute, "execution failed")
	ErrEvaluate = newPhaseError(PhaseEvaluate, "evaluation failed")
	ErrTerminal = newPhaseError(PhaseEvaluate, "evaluation already finished")

	ErrHandleBorrowed = NewError("execution context is already borrowed")
	ErrHandleClosed   = NewError("execution context is closed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.Wrap], [Error.With], or
// [Error.Detail] match that sentinel under [errors.Is].
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	phase Phase       // Originating phase
	base  *Error      // Sentinel this error derives from
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newPhaseError(phase Phase, msg string) *Error {
	return &Error{msg: msg, phase: phase}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is e or the sentinel e derives from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t == e || (e.base != nil && t == e.base)
}

// Phase returns the phase in which the error originated.
func (e *Error) Phase() Phase { return e.phase }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.phase != PhaseNone {
		attrs = append(attrs, slog.String("phase", e.phase.String()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		phase: e.phase,
		base:  e.sentinel(),
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		phase: e.phase,
		base:  e.sentinel(),
		attrs: newAttrs,
	}
}

// Detail returns a copy of e whose message is extended with a formatted
// suffix, separated by a space.
func (e *Error) Detail(format string, args ...any) *Error {
	return &Error{
		msg:   e.msg + " " + fmt.Sprintf(format, args...),
		err:   e.err,
		phase: e.phase,
		base:  e.sentinel(),
		attrs: e.attrs,
	}
}

// within returns a copy of e whose message is prefixed with the names of
// the enclosing declaration and attribute.
func (e *Error) within(names ...string) *Error {
	return &Error{
		msg:   strings.Join(append(names, e.msg), ": "),
		err:   e.err,
		phase: e.phase,
		base:  e.sentinel(),
		attrs: e.attrs,
	}
}

func (e *Error) sentinel() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
