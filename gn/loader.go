package gn

import (
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

// Loader reads import files from a source tree and caches the exported
// content of each file. A Loader is shared by every [Scope] of one build.
type Loader struct {
	fsys   fs.FS
	search []string

	mu      sync.Mutex
	modules map[string]*exports
}

// LoaderOption configures a [Loader].
type LoaderOption func(*Loader) *Loader

// WithSearchPath adds source-absolute directories consulted, in order, when
// a relative import is not found next to the importing file.
func WithSearchPath(dirs ...string) LoaderOption {
	return func(l *Loader) *Loader {
		for _, dir := range dirs {
			if dir = strings.TrimSpace(dir); dir != "" {
				l.search = append(l.search, SourceDir(dir))
			}
		}

		return l
	}
}

// NewLoader creates a loader reading from fsys, which is the source root.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{fsys: fsys, modules: map[string]*exports{}}
	for _, opt := range opts {
		l = opt(l)
	}

	return l
}

// FS returns the source root.
func (l *Loader) FS() fs.FS { return l.fsys }

// SearchPath returns the configured search directories.
func (l *Loader) SearchPath() []string { return slices.Clone(l.search) }

// ReadFile reads a file named by a source-absolute path.
func (l *Loader) ReadFile(file string) ([]byte, error) {
	return fs.ReadFile(l.fsys, FSPath(file))
}

// FSPath converts a source-absolute path into an [fs.FS] path.
func FSPath(file string) string {
	rel := strings.TrimPrefix(SourceDir(file), "//")
	if rel == "" {
		return "."
	}

	return rel
}

// resolve finds the import file named p relative to dir, then in each
// search directory.
func (l *Loader) resolve(dir, p string) (string, bool) {
	candidates := []string{}

	if strings.HasPrefix(p, "//") {
		candidates = append(candidates, SourceDir(p))
	} else {
		candidates = append(candidates, SourceDir(path.Join(strings.TrimPrefix(dir, "//"), p)))

		for _, root := range l.search {
			candidates = append(candidates, SourceDir(path.Join(strings.TrimPrefix(root, "//"), p)))
		}
	}

	for _, file := range candidates {
		info, err := fs.Stat(l.fsys, FSPath(file))
		if err == nil && !info.IsDir() {
			return file, true
		}
	}

	return "", false
}

// exports is the flattened content of an import file, including everything
// it imports transitively.
type exports struct {
	templates []*definedTemplate
	vars      map[string]Value
	varOrder  []string
}

type definedTemplate struct {
	*Template

	File string
}

// load returns the exports of the import file p referenced from dir. Stack
// holds the files currently being imported, for cycle detection.
func (l *Loader) load(dir, p string, at Node, stack []string) (*exports, *Err) {
	file, ok := l.resolve(dir, p)
	if !ok {
		return nil, NewErr(at, "Unable to load import.",
			"Can't find \""+p+"\" from "+dir+".")
	}

	if i := slices.Index(stack, file); i >= 0 {
		return nil, NewErr(at, "Import cycle.",
			strings.Join(append(slices.Clone(stack[i:]), file), " ->\n  "))
	}

	l.mu.Lock()
	cached, ok := l.modules[file]
	l.mu.Unlock()

	if ok {
		return cached, nil
	}

	src, err := l.ReadFile(file)
	if err != nil {
		return nil, NewErr(at, "Unable to load import.", err.Error())
	}

	mod, err := ParseModule(file, src)
	if err != nil {
		return nil, asErr(err)
	}

	ex := &exports{vars: map[string]Value{}}
	stack = append(slices.Clone(stack), file)

	for _, imp := range mod.Imports {
		child, cerr := l.load(path.Dir(file), imp.Path,
			&IdentifierNode{Value: Token{Type: TokenIdentifier, Value: "import", Location: imp.Location}},
			stack)
		if cerr != nil {
			return nil, cerr
		}

		if merr := ex.merge(child); merr != nil {
			return nil, merr
		}
	}

	own := &exports{vars: mod.Vars, varOrder: mod.VarOrder}
	for _, t := range mod.Templates {
		own.templates = append(own.templates, &definedTemplate{Template: t, File: file})
	}

	if merr := ex.merge(own); merr != nil {
		return nil, merr
	}

	l.mu.Lock()
	l.modules[file] = ex
	l.mu.Unlock()

	return ex, nil
}

// merge copies the templates and public variables of other into ex.
// Variables whose names start with an underscore are private to their file.
func (ex *exports) merge(other *exports) *Err {
	for _, t := range other.templates {
		if i := slices.IndexFunc(ex.templates, func(d *definedTemplate) bool {
			return d.Name == t.Name
		}); i >= 0 {
			if ex.templates[i].File == t.File {
				continue
			}

			return &Err{
				Location: t.Location,
				Message:  "Duplicate template definition.",
				Help: "A template named \"" + t.Name + "\" was already defined at " +
					ex.templates[i].Location.String() + ".",
			}
		}

		ex.templates = append(ex.templates, t)
	}

	for _, name := range other.varOrder {
		if strings.HasPrefix(name, "_") {
			continue
		}

		if _, ok := ex.vars[name]; !ok {
			ex.varOrder = append(ex.varOrder, name)
		}

		ex.vars[name] = other.vars[name]
	}

	return nil
}

func asErr(err error) *Err {
	if e, ok := err.(*Err); ok {
		return e
	}

	return &Err{Message: err.Error()}
}
