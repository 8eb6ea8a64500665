package cmd

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/stargn/gn"
	"github.com/ardnew/stargn/lang"
)

// Translate prints the GN statements assembled from each build script
// without registering any target. Imports still run so that template calls
// resolve.
type Translate struct {
	Indent int `default:"2" help:"Indent width for GN output" short:"i"`

	selection

	out io.Writer
}

// Run executes the translate command.
func (t *Translate) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := workspaceFrom(ctx)

	scripts, err := w.Scripts(ctx, t.Scripts)
	if err != nil {
		return err
	}

	out := stdout(t.out)
	sep := ""

	// A header write failure is returned by every statement of that script,
	// and by Run for a script with no statements.
	var werr error

	engine := func(scope *gn.Scope) lang.Engine {
		e := &printEngine{scope: scope, w: out, indent: t.Indent}

		if _, err := fmt.Fprintf(out, "%s# %s\n", sep, scope.File()); err != nil {
			e.err = err
			werr = cmp.Or(werr, err)
		}

		sep = "\n"

		return e
	}

	if _, err := w.Load(ctx, scripts, engine); err != nil {
		return err
	}

	return werr
}

// printEngine writes each statement it receives in GN syntax. Declarations
// are not executed; imports are delegated to the script scope.
type printEngine struct {
	scope  *gn.Scope
	w      io.Writer
	indent int
	err    error
}

func (e *printEngine) ExecuteDeclaration(ctx context.Context, call *gn.FunctionCallNode) error {
	if err := cmp.Or(e.err, ctx.Err()); err != nil {
		return err
	}

	if err := gn.Format(e.w, call, e.indent); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("function", call.Function.Value))
	}

	return nil
}

func (e *printEngine) ExecuteImport(ctx context.Context, call *gn.FunctionCallNode) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}

	if err := gn.Format(e.w, call, e.indent); err != nil {
		return nil, ErrFormat.Wrap(err).With(slog.String("function", call.Function.Value))
	}

	return e.scope.ExecuteImport(ctx, call)
}
