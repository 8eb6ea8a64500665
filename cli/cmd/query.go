package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/stargn/gn"
)

// Query prints the labels of the targets matching a predicate.
//
// The predicate is an expr-lang expression evaluated once per target, with
// the fields of [queryEnv] in scope:
//
//	kind == "executable" && "//base:base" in deps
//	template != "" || name startsWith "test_"
type Query struct {
	Predicate string `arg:"" help:"Boolean expression selecting targets" name:"predicate"`

	selection

	out io.Writer
}

// queryEnv is the view of one target a query predicate evaluates against.
type queryEnv struct {
	Label    string         `expr:"label"`
	Dir      string         `expr:"dir"`
	Name     string         `expr:"name"`
	Kind     string         `expr:"kind"`
	Template string         `expr:"template"`
	File     string         `expr:"file"`
	Vars     map[string]any `expr:"vars"`
	Deps     []string       `expr:"deps"`
}

func newQueryEnv(t *gn.Target) (queryEnv, error) {
	env := queryEnv{
		Label:    t.Label.String(),
		Dir:      t.Label.Dir,
		Name:     t.Label.Name,
		Kind:     t.Kind,
		Template: t.Template,
		File:     t.Defined.File,
		Vars:     make(map[string]any, len(t.Vars)),
		Deps:     []string{},
	}

	for name, v := range t.Vars {
		env.Vars[name] = v.Native()
	}

	deps, err := t.Deps()
	if err != nil {
		return env, err
	}

	for _, dep := range deps {
		env.Deps = append(env.Deps, dep.String())
	}

	return env, nil
}

// compileQuery compiles a predicate over [queryEnv].
func compileQuery(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(queryEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("predicate", src))
	}

	return program, nil
}

// match returns the targets for which program holds, in definition order.
func match(program *vm.Program, targets []*gn.Target) ([]*gn.Target, error) {
	var out []*gn.Target

	for _, t := range targets {
		env, err := newQueryEnv(t)
		if err != nil {
			return nil, ErrQuery.Wrap(err).With(slog.String("target", t.Label.String()))
		}

		res, err := expr.Run(program, env)
		if err != nil {
			return nil, ErrQuery.Wrap(err).With(slog.String("target", t.Label.String()))
		}

		if ok, _ := res.(bool); ok {
			out = append(out, t)
		}
	}

	return out, nil
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	// Compile first so a malformed predicate fails before any evaluation.
	program, err := compileQuery(strings.TrimSpace(q.Predicate))
	if err != nil {
		return err
	}

	targets, err := q.targets(ctx)
	if err != nil {
		return err
	}

	matched, err := match(program, targets)
	if err != nil {
		return err
	}

	out := stdout(q.out)

	for _, t := range matched {
		if _, err := fmt.Fprintln(out, t.Label); err != nil {
			return err
		}
	}

	return nil
}
