package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/stargn/log"
)

// Gen evaluates build scripts and checks the resulting target graph.
type Gen struct {
	Order bool `help:"Print target labels in dependency order" short:"o"`

	selection

	out io.Writer
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := workspaceFrom(ctx)

	scripts, err := w.Scripts(ctx, g.Scripts)
	if err != nil {
		return err
	}

	b, err := w.Load(ctx, scripts, nil)
	if err != nil {
		return err
	}

	order, err := b.Builder.Resolve()
	if err != nil {
		return ErrCheck.Wrap(err)
	}

	log.InfoContext(ctx, "generated build graph",
		slog.Int("scripts", len(b.Scripts)),
		slog.Int("targets", len(order)),
	)

	if !g.Order {
		return nil
	}

	out := stdout(g.out)

	for _, t := range order {
		if _, err := fmt.Fprintln(out, t.Label); err != nil {
			return err
		}
	}

	return nil
}
