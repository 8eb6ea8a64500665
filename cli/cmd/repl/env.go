package repl

import (
	"context"
	"maps"
	"slices"

	"go.starlark.net/starlark"

	"github.com/ardnew/stargn/gn"
	"github.com/ardnew/stargn/lang"
)

// Env is the evaluation state the REPL reads and extends.
type Env interface {
	// Exec evaluates one fragment of Starlark.
	Exec(ctx context.Context, src string) (starlark.Value, error)
	// Names lists every name a fragment may reference.
	Names() []string
	// Lookup resolves a name to its value.
	Lookup(name string) (starlark.Value, bool)
	// Globals returns the bindings created by evaluated fragments.
	Globals() starlark.StringDict
	// Modules lists the imported modules in import order.
	Modules() []string
	// Keywords lists the attributes a declaration function accepts, or nil
	// when fn does not declare targets.
	Keywords(fn string) []string
	// Targets returns the targets declared so far.
	Targets() []*gn.Target
}

// sessionEnv is an [Env] over a Starlark session whose declarations execute
// in scope.
type sessionEnv struct {
	*lang.Session

	scope *gn.Scope
}

// NewEnv returns the [Env] of a session executing declarations in scope.
func NewEnv(session *lang.Session, scope *gn.Scope) Env {
	return &sessionEnv{Session: session, scope: scope}
}

func (e *sessionEnv) Keywords(fn string) []string {
	kind := fn
	if t, ok := e.scope.Template(fn); ok {
		kind = t.Kind
	}

	k, ok := gn.Kinds[kind]
	if !ok {
		if _, ok := e.scope.Template(fn); ok {
			return []string{lang.NameAttr}
		}

		return nil
	}

	return append([]string{lang.NameAttr}, slices.Sorted(maps.Keys(k.Vars))...)
}

func (e *sessionEnv) Targets() []*gn.Target { return e.scope.Builder().Targets() }
