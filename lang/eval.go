package lang

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"go.starlark.net/starlark"
)

// State is the lifecycle state of an [Evaluation].
type State int32

// Evaluation states. Completed and Failed are terminal.
const (
	StateIdle State = iota
	StateLoading
	StateEvaluating
	StateCompleted
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateEvaluating:
		return "evaluating"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is final.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

// Evaluation runs one script against one execution context. It owns the
// handle for the script's lifetime and closes it when the run ends.
type Evaluation struct {
	handle *Handle
	script *Script
	opts   options

	state   atomic.Int32
	globals starlark.StringDict
}

// NewEvaluation prepares the evaluation of s against h.
func NewEvaluation(h *Handle, s *Script, opts ...Option) *Evaluation {
	return &Evaluation{handle: h, script: s, opts: makeOptions(opts...)}
}

// Evaluate runs s against h and returns the first failure.
func Evaluate(ctx context.Context, h *Handle, s *Script, opts ...Option) error {
	return NewEvaluation(h, s, opts...).Run(ctx)
}

// State returns the current lifecycle state.
func (e *Evaluation) State() State { return State(e.state.Load()) }

// Globals returns the frozen top-level bindings of a completed evaluation.
func (e *Evaluation) Globals() starlark.StringDict { return e.globals }

// Run resolves every load of the script, then executes its statements in
// order. It stops at the first failure; declarations already executed stay
// registered with the engine. Run may be called once; later calls return
// [ErrTerminal].
func (e *Evaluation) Run(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return ErrTerminal.With(slog.String("state", e.State().String()))
	}

	defer e.handle.Close()

	b := newBridge(ctx, e.handle, e.opts)
	b.logger = b.logger.With(slog.String("script", e.script.Name))

	b.logger.TraceContext(ctx, "evaluation",
		slog.String("state", StateLoading.String()),
		slog.Uint64("digest", e.script.Digest),
	)

	for _, ld := range e.script.Loads() {
		if _, err := b.resolve(ld.Module); err != nil {
			return e.fail(ctx, b, err)
		}
	}

	predeclared := b.templates()
	for _, name := range e.opts.builtins {
		predeclared[name] = b.builtin(name)
	}

	prog, err := starlark.FileProgram(e.script.File, predeclared.Has)
	if err != nil {
		return e.fail(ctx, b, ErrEvaluate.Wrap(err))
	}

	thread := &starlark.Thread{
		Name:  "stargn (" + e.script.Name + ")",
		Print: b.print,
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return b.resolve(module)
		},
	}

	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	e.state.Store(int32(StateEvaluating))
	b.logger.TraceContext(ctx, "evaluation", slog.String("state", StateEvaluating.String()))

	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		return e.fail(ctx, b, err)
	}

	globals.Freeze()
	e.globals = globals

	e.state.Store(int32(StateCompleted))
	b.logger.TraceContext(ctx, "evaluation", slog.String("state", StateCompleted.String()))

	return nil
}

// fail records the failed state and converts err into an [*Error]. An
// [*Error] raised by a builtin is returned as is, annotated with the
// Starlark backtrace.
func (e *Evaluation) fail(ctx context.Context, b *bridge, err error) error {
	e.state.Store(int32(StateFailed))

	out := asError(ctx, err)

	b.logger.DebugContext(ctx, "evaluation",
		slog.String("state", StateFailed.String()),
		slog.Any("error", out),
	)

	return out
}

func asError(ctx context.Context, err error) *Error {
	var evalErr *starlark.EvalError

	hasEval := errors.As(err, &evalErr)

	var le *Error
	if errors.As(err, &le) {
		if hasEval {
			return le.With(slog.String("backtrace", evalErr.Backtrace()))
		}

		return le
	}

	if cerr := context.Cause(ctx); cerr != nil {
		return ErrEvaluate.Wrap(cerr)
	}

	if hasEval {
		return ErrEvaluate.Wrap(err).With(slog.String("backtrace", evalErr.Backtrace()))
	}

	return ErrEvaluate.Wrap(err)
}
