package gn

import (
	"strings"
	"sync"
)

// Target is one registered build target.
type Target struct {
	Label Label
	Kind  string
	// Template names the template the target was declared through, or is
	// empty for a built-in kind.
	Template string
	Vars     map[string]Value
	VarOrder []string
	Defined  Location
}

// Deps resolves the labels listed in the target's dependency variables.
func (t *Target) Deps() ([]Label, error) {
	var labels []Label

	for _, name := range DepVars {
		v, ok := t.Vars[name]
		if !ok {
			continue
		}

		items, ok := v.Strings()
		if !ok {
			return nil, &Err{Location: v.Origin, Message: "Expected a list of strings.",
				Help: "\"" + name + "\" must contain labels."}
		}

		for i, item := range items {
			label, err := ParseLabel(t.Label.Dir, item)
			if err != nil {
				if e, ok := err.(*Err); ok {
					e.Location = v.List[i].Origin
				}

				return nil, err
			}

			labels = append(labels, label)
		}
	}

	return labels, nil
}

// Builder is the ordered registry of targets. It is safe for concurrent use.
type Builder struct {
	mu      sync.RWMutex
	targets map[Label]*Target
	order   []*Target
}

// NewBuilder creates an empty target registry.
func NewBuilder() *Builder {
	return &Builder{targets: map[Label]*Target{}}
}

// Add registers t. A second definition of the same label is an error.
func (b *Builder) Add(t *Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.targets[t.Label]; ok {
		return &Err{
			Location: t.Defined,
			Message:  "Duplicate definition.",
			Help: "The target " + t.Label.String() +
				" was already defined at " + prev.Defined.String() + ".",
		}
	}

	b.targets[t.Label] = t
	b.order = append(b.order, t)

	return nil
}

// Lookup returns the target registered under l.
func (b *Builder) Lookup(l Label) (*Target, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.targets[l]

	return t, ok
}

// Targets returns the registered targets in definition order.
func (b *Builder) Targets() []*Target {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]*Target(nil), b.order...)
}

// Len returns the number of registered targets.
func (b *Builder) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.order)
}

// Check verifies that every dependency is defined and the graph is acyclic.
func (b *Builder) Check() error {
	_, err := b.Resolve()

	return err
}

// Resolve returns the targets ordered so each one follows its dependencies.
// Ties are broken by definition order.
func (b *Builder) Resolve() ([]*Target, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[Label]int, len(b.order))
	sorted := make([]*Target, 0, len(b.order))

	var (
		stack []Label
		visit func(t *Target) error
	)

	visit = func(t *Target) error {
		switch state[t.Label] {
		case done:
			return nil

		case visiting:
			chain := []string{}
			for i := len(stack) - 1; i >= 0; i-- {
				chain = append([]string{stack[i].String()}, chain...)
				if stack[i] == t.Label {
					break
				}
			}

			chain = append(chain, t.Label.String())

			return &Err{
				Location: t.Defined,
				Message:  "Dependency cycle.",
				Help:     strings.Join(chain, " ->\n  "),
			}
		}

		state[t.Label] = visiting
		stack = append(stack, t.Label)

		deps, err := t.Deps()
		if err != nil {
			return err
		}

		for _, dep := range deps {
			next, ok := b.targets[dep]
			if !ok {
				return &Err{
					Location: t.Defined,
					Message:  "Unresolved dependency.",
					Help: "The target " + t.Label.String() +
						" depends on " + dep.String() + " which was not found.",
				}
			}

			if err := visit(next); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[t.Label] = done
		sorted = append(sorted, t)

		return nil
	}

	for _, t := range b.order {
		if err := visit(t); err != nil {
			return nil, err
		}
	}

	return sorted, nil
}
