package lang

import (
	"log/slog"
	"strings"

	"go.starlark.net/starlark"

	"github.com/ardnew/stargn/gn"
)

// ImportCall builds the synthetic statement `import("module")`.
func ImportCall(module string, q Quoting) *gn.FunctionCallNode {
	return gn.Call("import", gn.List(gn.StringLiteral(q.Quote(module))), nil)
}

// resolve imports module through the execution core and returns a frozen
// namespace holding one declaration function per template the module
// defines. Namespaces are cached for the lifetime of the bridge.
func (b *bridge) resolve(module string) (starlark.StringDict, error) {
	if ns, ok := b.modules[module]; ok {
		return ns, nil
	}

	if !strings.HasSuffix(module, b.opts.suffix) {
		return nil, ErrUnsupportedLoad.Detail("%q", module).
			With(slog.String("suffix", b.opts.suffix))
	}

	if err := b.ctx.Err(); err != nil {
		return nil, ErrImport.Detail("%q", module).Wrap(err)
	}

	call := ImportCall(module, b.opts.quoting)

	var names []string

	err := b.handle.With(func(e Engine) error {
		var err error

		names, err = e.ExecuteImport(b.ctx, call)

		return err
	})
	if err != nil {
		return nil, ErrImport.Detail("%q", module).Wrap(err)
	}

	ns := make(starlark.StringDict, len(names))
	for _, name := range names {
		ns[name] = b.builtin(name)
	}

	ns.Freeze()

	b.modules[module] = ns
	b.order = append(b.order, module)

	b.logger.DebugContext(b.ctx, "import",
		slog.String("module", module),
		slog.Any("templates", names),
	)

	return ns, nil
}

// templates returns every template function imported so far, in import
// order. A name defined by more than one module keeps its first binding.
func (b *bridge) templates() starlark.StringDict {
	all := starlark.StringDict{}

	for _, module := range b.order {
		for name, fn := range b.modules[module] {
			if _, ok := all[name]; !ok {
				all[name] = fn
			}
		}
	}

	return all
}
