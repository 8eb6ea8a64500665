package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/stargn/cli/cmd/repl"
	"github.com/ardnew/stargn/gn"
	"github.com/ardnew/stargn/lang"
	"github.com/ardnew/stargn/log"
)

// Repl starts an interactive session. Statements are evaluated as though
// they were part of the build script in Dir.
type Repl struct {
	Dir     string   `default:"//" help:"Source directory the session declares targets in" short:"d"`
	Preload []string `help:"Build scripts to evaluate before the session starts" short:"l" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := workspaceFrom(ctx)

	build, err := r.preload(ctx, w)
	if err != nil {
		return err
	}

	file := strings.TrimSuffix(gn.SourceDir(r.Dir), "/") + "/" + ScriptName
	scope := gn.NewScope(build.Loader, build.Builder, file)

	out := &repl.Output{}
	session := lang.NewSession(lang.NewHandle(scope), w.Options(lang.WithPrint(out))...)

	defer session.Close()

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("script", file),
		slog.Int("targets", build.Builder.Len()),
	)

	return repl.Run(ctx, repl.NewEnv(session, scope), out, cacheDir, log.Default())
}

// preload evaluates the scripts named by Preload. The session shares their
// loader and target registry.
func (r *Repl) preload(ctx context.Context, w *Workspace) (*Build, error) {
	if len(r.Preload) == 0 {
		return &Build{Loader: w.NewLoader(), Builder: gn.NewBuilder()}, nil
	}

	scripts, err := relScripts(w.Root, r.Preload)
	if err != nil {
		return nil, err
	}

	return w.Load(ctx, scripts, nil)
}
