package lang

import (
	"context"
	"sync/atomic"

	"github.com/ardnew/stargn/gn"
)

// Engine is the execution core that accepts synthetic statement trees.
// [*gn.Scope] is the reference implementation.
type Engine interface {
	// ExecuteDeclaration registers the target described by call.
	ExecuteDeclaration(ctx context.Context, call *gn.FunctionCallNode) error
	// ExecuteImport runs an import statement and returns the names of the
	// templates it makes available.
	ExecuteImport(ctx context.Context, call *gn.FunctionCallNode) ([]string, error)
}

const (
	handleIdle int32 = iota
	handleBorrowed
	handleClosed
)

// Handle is the single-writer token guarding an [Engine]. At most one
// borrow is outstanding at any instant. A second borrow while one is held,
// or any borrow after [Handle.Close], panics.
type Handle struct {
	engine Engine
	state  atomic.Int32
}

// NewHandle creates the token for engine. The caller passes the handle to
// exactly one evaluation, which closes it when the evaluation ends.
func NewHandle(engine Engine) *Handle {
	return &Handle{engine: engine}
}

// Borrow acquires exclusive access to the engine. The returned function
// releases it and must be called exactly once.
func (h *Handle) Borrow() (Engine, func()) {
	if !h.state.CompareAndSwap(handleIdle, handleBorrowed) {
		if h.state.Load() == handleClosed {
			panic(ErrHandleClosed)
		}

		panic(ErrHandleBorrowed)
	}

	return h.engine, func() {
		h.state.CompareAndSwap(handleBorrowed, handleIdle)
	}
}

// With runs fn under one borrow of the engine.
func (h *Handle) With(fn func(Engine) error) error {
	engine, release := h.Borrow()
	defer release()

	return fn(engine)
}

// Close retires the handle. Closing while a borrow is outstanding panics.
// Closing twice is a no-op.
func (h *Handle) Close() {
	if h.state.CompareAndSwap(handleIdle, handleClosed) {
		return
	}

	if h.state.Load() == handleBorrowed {
		panic(ErrHandleBorrowed)
	}
}

// Closed reports whether the handle has been retired.
func (h *Handle) Closed() bool { return h.state.Load() == handleClosed }
