package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// replFileOptions allows the statement forms an interactive session needs.
// Loads bind globally so that loaded templates outlive the chunk that
// loaded them.
var replFileOptions = &syntax.FileOptions{
	Set:               true,
	While:             true,
	TopLevelControl:   true,
	GlobalReassign:    true,
	LoadBindsGlobally: true,
	Recursion:         true,
}

// Session evaluates script fragments one at a time against a single
// execution context, keeping top-level bindings between fragments.
type Session struct {
	mu     sync.Mutex
	bridge *bridge
	env    starlark.StringDict
	closed bool
}

// NewSession starts an interactive session against h. The session owns h
// until [Session.Close].
func NewSession(h *Handle, opts ...Option) *Session {
	o := makeOptions(opts...)
	b := newBridge(context.Background(), h, o)

	s := &Session{bridge: b, env: starlark.StringDict{}}

	for _, name := range o.builtins {
		s.env[name] = b.builtin(name)
	}

	return s
}

// Exec evaluates src. An expression yields its value; statements yield
// [starlark.None] and add their bindings to the session.
func (s *Session) Exec(ctx context.Context, src string) (starlark.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrTerminal
	}

	s.bridge.ctx = ctx

	thread := &starlark.Thread{
		Name:  "stargn (repl)",
		Print: s.bridge.print,
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return s.bridge.resolve(module)
		},
	}

	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	if _, err := replFileOptions.ParseExpr("<repl>", src, 0); err == nil {
		v, err := starlark.EvalOptions(replFileOptions, thread, "<repl>", src, s.env)
		if err != nil {
			return nil, asError(ctx, err)
		}

		return v, nil
	}

	globals, err := starlark.ExecFileOptions(replFileOptions, thread, "<repl>", src, s.env)
	if err != nil {
		var serr syntax.Error
		if errors.As(err, &serr) {
			return nil, ErrParse.Wrap(err)
		}

		return nil, asError(ctx, err)
	}

	for name, v := range globals {
		s.env[name] = v
	}

	s.bridge.logger.TraceContext(ctx, "exec", slog.Any("bindings", globals.Keys()))

	return starlark.None, nil
}

// Names returns every name bound in the session, including builtins,
// imported templates and the Starlark universe, sorted.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.env.Keys()
	names = append(names, s.bridge.templates().Keys()...)
	names = append(names, starlark.Universe.Keys()...)

	slices.Sort(names)

	return slices.Compact(names)
}

// Lookup returns the value bound to name in the session, searching session
// bindings, then imported templates, then the Starlark universe.
func (s *Session) Lookup(name string) (starlark.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.env[name]; ok {
		return v, true
	}

	if v, ok := s.bridge.templates()[name]; ok {
		return v, true
	}

	v, ok := starlark.Universe[name]

	return v, ok
}

// Globals returns the bindings created by statements executed so far.
func (s *Session) Globals() starlark.StringDict {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(starlark.StringDict, len(s.env))
	for name, v := range s.env {
		if _, ok := v.(*starlark.Builtin); !ok {
			out[name] = v
		}
	}

	return out
}

// Modules returns the modules loaded so far, in load order.
func (s *Session) Modules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.bridge.order)
}

// Close ends the session and retires its handle.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.bridge.handle.Close()
	}
}
