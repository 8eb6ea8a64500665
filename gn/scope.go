package gn

import (
	"context"
	"path"
	"slices"
)

// Scope is the execution context of one build script. It registers targets
// declared by the script with a [Builder] and resolves the script's imports
// through a [Loader].
//
// A Scope is not safe for concurrent use.
type Scope struct {
	loader  *Loader
	builder *Builder
	file    string
	dir     string

	templates map[string]*definedTemplate
	order     []string
	vars      map[string]Value
}

// NewScope creates the scope of the script at the source-absolute path file.
func NewScope(loader *Loader, builder *Builder, file string) *Scope {
	file = SourceDir(file)

	return &Scope{
		loader:    loader,
		builder:   builder,
		file:      file,
		dir:       SourceDir(path.Dir(file)),
		templates: map[string]*definedTemplate{},
		vars:      map[string]Value{},
	}
}

// File returns the source-absolute path of the script.
func (s *Scope) File() string { return s.file }

// Dir returns the source-absolute directory of the script.
func (s *Scope) Dir() string { return s.dir }

// Builder returns the target registry.
func (s *Scope) Builder() *Builder { return s.builder }

// Templates returns the names of the templates imported so far.
func (s *Scope) Templates() []string { return slices.Clone(s.order) }

// Template returns the imported template called name.
func (s *Scope) Template(name string) (*Template, bool) {
	t, ok := s.templates[name]
	if !ok {
		return nil, false
	}

	return t.Template, true
}

// Var returns the value of an imported variable.
func (s *Scope) Var(name string) (Value, bool) {
	v, ok := s.vars[name]

	return v, ok
}

// ExecuteImport runs `import("file")`, merges the file's templates and
// public variables into s, and returns the names of the templates the file
// makes available.
func (s *Scope) ExecuteImport(ctx context.Context, call *FunctionCallNode) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if call.Function.Value != "import" {
		return nil, NewErr(call, "Expected an import call.")
	}

	p, err := singleStringArg(call)
	if err != nil {
		return nil, err
	}

	ex, lerr := s.loader.load(s.dir, p, call, []string{s.file})
	if lerr != nil {
		return nil, lerr
	}

	for _, t := range ex.templates {
		if prev, ok := s.templates[t.Name]; ok && prev.File != t.File {
			return nil, &Err{
				Location: call.Location(),
				Message:  "Duplicate template definition.",
				Help: "The template \"" + t.Name + "\" imported from " + t.File +
					" was already defined at " + prev.Location.String() + ".",
			}
		}
	}

	names := make([]string, 0, len(ex.templates))

	for _, t := range ex.templates {
		if _, ok := s.templates[t.Name]; !ok {
			s.order = append(s.order, t.Name)
		}

		s.templates[t.Name] = t
		names = append(names, t.Name)
	}

	for _, name := range ex.varOrder {
		s.vars[name] = ex.vars[name]
	}

	return names, nil
}

// ExecuteDeclaration runs a target declaration such as
// `executable("a") { sources = [ "a.cc" ] }` and registers the target.
func (s *Scope) ExecuteDeclaration(ctx context.Context, call *FunctionCallNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fn := call.Function.Value

	var (
		kind     *Kind
		template string
	)

	if k, ok := Kinds[fn]; ok {
		kind = k
	} else if t, ok := s.templates[fn]; ok {
		template = t.Name
		kind = Kinds[t.Kind]
	} else {
		return NewErr(call, "Unknown function.",
			"The function \""+fn+"\" is neither a target type nor an imported template.")
	}

	name, err := singleStringArg(call)
	if err != nil {
		return err
	}

	label, lerr := ParseLabel(s.dir, ":"+name)
	if lerr != nil {
		return NewErr(call.Args, "Invalid target name.", "\""+name+"\" cannot name a target.")
	}

	if call.Block == nil {
		return NewErr(call, "Expected a block.", "A target declaration needs a { } body.")
	}

	target := &Target{
		Label:    label,
		Template: template,
		Vars:     map[string]Value{},
		Defined:  call.Location(),
	}

	if kind != nil {
		target.Kind = kind.Name
	}

	if s.file != "" && target.Defined.IsSynthetic() {
		target.Defined = Location{File: s.file, Line: target.Defined.Line, Column: target.Defined.Column}
	}

	for _, stmt := range call.Block.Statements {
		if err := s.assign(target, kind, template != "", stmt); err != nil {
			return err
		}
	}

	return s.builder.Add(target)
}

func (s *Scope) assign(t *Target, kind *Kind, viaTemplate bool, stmt Node) *Err {
	op, ok := stmt.(*BinaryOpNode)
	if !ok {
		return NewErr(stmt, "Expected an assignment.")
	}

	ident, ok := op.Left.(*IdentifierNode)
	if !ok {
		return NewErr(op, "Left side of assignment must be an identifier.")
	}

	name := ident.Value.Value

	value, err := evalExpr(op.Right, s.lookup)
	if err != nil {
		return err
	}

	switch op.Op.Type {
	case TokenEqual:

	case TokenPlusEqual:
		prev, ok := t.Vars[name]
		if !ok || prev.Type != ValueList || value.Type != ValueList {
			return NewErr(op, "Can only append a list to an existing list.")
		}

		value = Value{Type: ValueList, List: append(slices.Clone(prev.List), value.List...), Origin: prev.Origin}

	default:
		return NewErr(op, "Unsupported operator in target declaration.", op.Op.Value)
	}

	var want ValueType
	if kind != nil {
		want = kind.Vars[name]
	}

	switch {
	case want == ValueNone && !viaTemplate:
		return NewErr(ident, "Assignment had no effect.",
			"You set the variable \""+name+"\" here and it was unused before it went out of scope.")

	case want != ValueNone && value.Type != want:
		return NewErr(op.Right, "Value has the wrong type.",
			"\""+name+"\" expects a "+want.String()+", got a "+value.Type.String()+".")
	}

	if _, ok := t.Vars[name]; !ok {
		t.VarOrder = append(t.VarOrder, name)
	}

	t.Vars[name] = value

	return nil
}

func (s *Scope) lookup(name string) (Value, bool) {
	v, ok := s.vars[name]

	return v, ok
}

func singleStringArg(call *FunctionCallNode) (string, *Err) {
	if call.Args == nil || len(call.Args.Contents) != 1 {
		return "", NewErr(call, "Expected one argument.",
			"\""+call.Function.Value+"\" takes exactly one string argument.")
	}

	lit, ok := call.Args.Contents[0].(*LiteralNode)
	if !ok || lit.Value.Type != TokenString {
		return "", NewErr(call.Args.Contents[0], "Expected a string argument.")
	}

	s, ok := Unquote(lit.Value.Value)
	if !ok {
		return "", NewErr(lit, "Malformed string literal.", lit.Value.Value)
	}

	return s, nil
}
