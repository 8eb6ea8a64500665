package cmd

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/stargn/gn"
	"github.com/ardnew/stargn/lang"
	"github.com/ardnew/stargn/log"
	"github.com/ardnew/stargn/pkg"
)

// ScriptName is the base name of the build script of a directory.
const ScriptName = "BUILD" + lang.ScriptExt

// EnvImportPath returns the name of the environment variable holding extra
// import search directories, separated by [os.PathListSeparator].
func EnvImportPath() string { return pkg.EnvPrefix() + "IMPORT_PATH" }

// Workspace is a source tree and the settings its build scripts are
// evaluated with.
type Workspace struct {
	// Root is the source root. Source-absolute paths ("//a/b") are relative
	// to it.
	Root string
	// ImportPath lists source-absolute directories searched for imports
	// after the importing script's own directory.
	ImportPath []string
	// Quoting selects how string attribute values are re-quoted.
	Quoting lang.Quoting
	// Builtins replaces the default declaration functions when not empty.
	Builtins []string
	// Stdout receives the output of the Starlark print builtin. Printed
	// messages are logged when it is nil.
	Stdout io.Writer
}

// EngineFunc returns the execution core a script declares its targets
// through.
type EngineFunc func(scope *gn.Scope) lang.Engine

// ScopeEngine evaluates declarations directly against the script scope.
func ScopeEngine(scope *gn.Scope) lang.Engine { return scope }

// Build is the outcome of evaluating the build scripts of a workspace.
type Build struct {
	Loader  *gn.Loader
	Builder *gn.Builder
	// Scripts lists the scripts evaluated, in evaluation order.
	Scripts []*lang.Script
}

// SearchPath returns the import search directories: those configured on the
// workspace followed by those named in [EnvImportPath]. Duplicates and
// empty entries are dropped.
func (w *Workspace) SearchPath() []string {
	merged := mung.Make(
		mung.WithSubjectItems(os.Getenv(EnvImportPath())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(w.ImportPath...),
	).String()

	var dirs []string

	for dir := range strings.SplitSeq(merged, string(os.PathListSeparator)) {
		if dir = strings.TrimSpace(dir); dir == "" {
			continue
		}

		if dir = gn.SourceDir(dir); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// Discover returns the slash-separated paths, relative to the source root,
// of every build script in the tree. Hidden directories and the "out"
// build directory are skipped.
func (w *Workspace) Discover(ctx context.Context) ([]string, error) {
	return discover(ctx, os.DirFS(w.Root))
}

func discover(ctx context.Context, fsys fs.FS) ([]string, error) {
	var scripts []string

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != "." && (strings.HasPrefix(d.Name(), ".") || d.Name() == "out") {
				return fs.SkipDir
			}

			return nil
		}

		if d.Name() == ScriptName {
			scripts = append(scripts, p)
		}

		return nil
	})
	if err != nil {
		return nil, ErrDiscover.Wrap(err)
	}

	if len(scripts) == 0 {
		return nil, ErrNoScripts
	}

	return scripts, nil
}

// Scripts returns the scripts named by args relative to the source root, or
// every discovered script when args is empty.
func (w *Workspace) Scripts(ctx context.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return w.Discover(ctx)
	}

	return relScripts(w.Root, args)
}

// Options returns the evaluation options configured on the workspace,
// followed by opts.
func (w *Workspace) Options(opts ...lang.Option) []lang.Option {
	out := []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithQuoting(w.Quoting),
	}

	if len(w.Builtins) > 0 {
		out = append(out, lang.WithBuiltins(w.Builtins...))
	}

	if w.Stdout != nil {
		out = append(out, lang.WithPrint(w.Stdout))
	}

	return append(out, opts...)
}

// NewLoader creates the import loader of the source tree.
func (w *Workspace) NewLoader() *gn.Loader {
	return gn.NewLoader(os.DirFS(w.Root), gn.WithSearchPath(w.SearchPath()...))
}

// Load evaluates scripts in order, each in its own scope over a shared
// loader and target registry. Scripts run one at a time so targets are
// registered in a deterministic order. The first failure stops the build;
// the returned Build holds the targets registered before it.
func (w *Workspace) Load(
	ctx context.Context,
	scripts []string,
	engine EngineFunc,
	opts ...lang.Option,
) (*Build, error) {
	if engine == nil {
		engine = ScopeEngine
	}

	b := &Build{Loader: w.NewLoader(), Builder: gn.NewBuilder()}
	options := w.Options(opts...)

	for _, rel := range scripts {
		if err := ctx.Err(); err != nil {
			return b, ErrScript.Wrap(err)
		}

		s, err := b.parse(rel)
		if err != nil {
			return b, ErrScript.Wrap(err).With(slog.String("script", rel))
		}

		scope := gn.NewScope(b.Loader, b.Builder, s.Name)

		err = lang.Evaluate(ctx, lang.NewHandle(engine(scope)), s, options...)
		if err != nil {
			return b, ErrScript.Wrap(err).With(slog.String("script", s.Name))
		}

		log.DebugContext(ctx, "evaluated build script",
			slog.String("script", s.Name),
			slog.Int("targets", b.Builder.Len()),
		)

		b.Scripts = append(b.Scripts, s)
	}

	return b, nil
}

// parse reads the script at the root-relative path rel. The script is named
// by its source-absolute path.
func (b *Build) parse(rel string) (*lang.Script, error) {
	f, err := b.Loader.FS().Open(path.Clean(rel))
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err)
	}
	defer f.Close()

	return lang.ParseReader(gn.SourceDir(rel), f)
}
