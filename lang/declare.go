package lang

import (
	"context"
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"

	"github.com/ardnew/stargn/gn"
	"github.com/ardnew/stargn/log"
)

// NameAttr is the keyword argument holding a declaration's target name. It
// becomes the positional argument of the synthetic call rather than an
// assignment.
const NameAttr = "name"

// Assemble converts the keyword arguments of one declaration call into a
// synthetic function call node:
//
//	fn(name="a", flag=True, tags=["x"])
//
// becomes
//
//	fn("a") {
//	  flag = true
//	  tags = [ "x" ]
//	}
//
// Assignments follow the keyword order of the call. Positional arguments,
// repeated keywords, a missing name, and unsupported values are errors.
func Assemble(
	fn string,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
	q Quoting,
) (*gn.FunctionCallNode, error) {
	call, _, err := assemble(fn, args, kwargs, q)

	return call, err
}

// assemble is [Assemble], also returning the unquoted target name.
func assemble(
	fn string,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
	q Quoting,
) (*gn.FunctionCallNode, string, error) {
	if len(args) > 0 {
		return nil, "", ErrPositionalArgs.within(fn)
	}

	var (
		name  string
		stmts = make([]gn.Node, 0, len(kwargs))
		seen  = make(map[string]bool, len(kwargs))
	)

	for _, kv := range kwargs {
		key, _ := starlark.AsString(kv[0])
		if seen[key] {
			return nil, "", ErrDuplicateAttr.within(fn, key)
		}

		seen[key] = true

		if key == NameAttr {
			s, ok := kv[1].(starlark.String)
			if !ok {
				return nil, "", ErrNameNotString.within(fn).
					With(slog.String("type", kv[1].Type()))
			}

			name = string(s)

			continue
		}

		value, err := Translate(kv[1], q)
		if err != nil {
			return nil, "", WrapError(err).within(fn, key)
		}

		stmts = append(stmts, gn.Assign(key, value))
	}

	if name == "" {
		return nil, "", ErrNoName.within(fn)
	}

	return gn.Call(fn, gn.List(gn.StringLiteral(q.Quote(name))), gn.Block(stmts...)), name, nil
}

// bridge carries everything a builtin needs to reach the execution core.
// One bridge exists per evaluation and is captured by every builtin it
// creates.
type bridge struct {
	ctx     context.Context //nolint:containedctx
	handle  *Handle
	opts    options
	logger  log.Logger
	modules map[string]starlark.StringDict
	order   []string
}

func newBridge(ctx context.Context, h *Handle, opts options) *bridge {
	return &bridge{
		ctx:     ctx,
		handle:  h,
		opts:    opts,
		logger:  opts.logger,
		modules: map[string]starlark.StringDict{},
	}
}

// builtin returns a declaration function named fn.
func (b *bridge) builtin(fn string) *starlark.Builtin {
	return starlark.NewBuiltin(fn, func(
		_ *starlark.Thread,
		_ *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		if err := b.declare(fn, args, kwargs); err != nil {
			return nil, err
		}

		return starlark.None, nil
	})
}

// declare assembles one declaration and executes it under a single borrow
// of the handle.
func (b *bridge) declare(fn string, args starlark.Tuple, kwargs []starlark.Tuple) error {
	call, name, err := assemble(fn, args, kwargs, b.opts.quoting)
	if err != nil {
		return err
	}

	b.logger.TraceContext(b.ctx, "declare",
		slog.String("function", fn),
		slog.String("name", name),
		slog.Int("attributes", len(call.Block.Statements)),
	)

	err = b.handle.With(func(e Engine) error {
		return e.ExecuteDeclaration(b.ctx, call)
	})
	if err != nil {
		return ErrExecute.Wrap(err).within(fn).
			With(slog.String("declaration", gn.String(call)))
	}

	return nil
}

func (b *bridge) print(thread *starlark.Thread, msg string) {
	if b.opts.print != nil {
		_, _ = fmt.Fprintln(b.opts.print, msg)

		return
	}

	b.logger.InfoContext(b.ctx, msg, slog.String("thread", thread.Name))
}
