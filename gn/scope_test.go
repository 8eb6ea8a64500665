package gn

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"build/widget.gni": {Data: []byte(`
import("common.gni")
template("widget") {
  source_set(target_name) {}
}
template("bundle") {
  group(target_name) {}
}
`)},
		"build/common.gni": {Data: []byte(`
default_flavor = "plain"
_secret = "x"
template("plugin") {
  shared_library(target_name) {}
}
`)},
		"build/other.gni": {Data: []byte(`
template("widget") {
  executable(target_name) {}
}
`)},
		"build/cycle_a.gni":  {Data: []byte(`import("cycle_b.gni")`)},
		"build/cycle_b.gni":  {Data: []byte(`import("cycle_a.gni")`)},
		"build/invalid.gni":  {Data: []byte(`template(`)},
		"lib/tools/tool.gni": {Data: []byte(`template("tool") { action(target_name) {} }`)},
	}
}

func importCall(path string) *FunctionCallNode {
	return Call("import", List(StringLiteral(`"`+path+`"`)), nil)
}

func TestScope_ExecuteImport(t *testing.T) {
	b := NewBuilder()
	s := NewScope(NewLoader(testTree()), b, "//app/BUILD.stargn")

	names, err := s.ExecuteImport(t.Context(), importCall("//build/widget.gni"))
	if err != nil {
		t.Fatalf("ExecuteImport: %v", err)
	}

	if diff := cmp.Diff([]string{"plugin", "widget", "bundle"}, names); diff != "" {
		t.Errorf("template names mismatch (-want +got):\n%s", diff)
	}

	if v, ok := s.Var("default_flavor"); !ok || v.Str != "plain" {
		t.Errorf("default_flavor = %v, %v", v, ok)
	}

	if _, ok := s.Var("_secret"); ok {
		t.Error("private variable should not be merged")
	}

	// Importing the same file again is idempotent.
	again, err := s.ExecuteImport(t.Context(), importCall("//build/widget.gni"))
	if err != nil {
		t.Fatalf("second ExecuteImport: %v", err)
	}

	if len(again) != 3 || len(s.Templates()) != 3 {
		t.Errorf("re-import: names %v, templates %v", again, s.Templates())
	}
}

func TestScope_ExecuteImport_Errors(t *testing.T) {
	tests := []struct {
		name string
		call *FunctionCallNode
		want string
	}{
		{"missing file", importCall("//nope.gni"), "Unable to load import."},
		{"cycle", importCall("//build/cycle_a.gni"), "Import cycle."},
		{"syntax", importCall("//build/invalid.gni"), "Unterminated group."},
		{"not import", Call("include", List(StringLiteral(`"x"`)), nil), "Expected an import call."},
		{"no args", Call("import", nil, nil), "Expected one argument."},
		{"not string", Call("import", List(BoolLiteral(true)), nil), "Expected a string argument."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScope(NewLoader(testTree()), NewBuilder(), "//app/BUILD.stargn")

			_, err := s.ExecuteImport(t.Context(), tt.call)

			var gerr *Err
			if !errors.As(err, &gerr) {
				t.Fatalf("error = %v, want *Err", err)
			}

			if !gerr.HasError() || gerr.Message != tt.want {
				t.Errorf("message = %q, want %q", gerr.Message, tt.want)
			}
		})
	}
}

func TestScope_ExecuteImport_DuplicateTemplate(t *testing.T) {
	s := NewScope(NewLoader(testTree()), NewBuilder(), "//app/BUILD.stargn")

	if _, err := s.ExecuteImport(t.Context(), importCall("//build/widget.gni")); err != nil {
		t.Fatal(err)
	}

	_, err := s.ExecuteImport(t.Context(), importCall("//build/other.gni"))
	if err == nil || !strings.Contains(err.Error(), "Duplicate template definition.") {
		t.Errorf("error = %v, want duplicate template", err)
	}
}

func TestScope_ExecuteImport_SearchPath(t *testing.T) {
	s := NewScope(
		NewLoader(testTree(), WithSearchPath("//lib/tools", " ")),
		NewBuilder(),
		"//app/BUILD.stargn",
	)

	names, err := s.ExecuteImport(t.Context(), importCall("tool.gni"))
	if err != nil {
		t.Fatalf("ExecuteImport: %v", err)
	}

	if len(names) != 1 || names[0] != "tool" {
		t.Errorf("names = %v", names)
	}
}

func TestScope_ExecuteDeclaration(t *testing.T) {
	b := NewBuilder()
	s := NewScope(NewLoader(testTree()), b, "//app/BUILD.stargn")

	if _, err := s.ExecuteImport(t.Context(), importCall("//build/widget.gni")); err != nil {
		t.Fatal(err)
	}

	err := s.ExecuteDeclaration(t.Context(), Call("executable",
		List(StringLiteral(`"a"`)),
		Block(
			Assign("testonly", BoolLiteral(true)),
			Assign("sources", List(StringLiteral(`"main.cc"`))),
			Assign("deps", List(StringLiteral(`":w"`))),
		),
	))
	if err != nil {
		t.Fatalf("ExecuteDeclaration(executable): %v", err)
	}

	err = s.ExecuteDeclaration(t.Context(), Call("widget",
		List(StringLiteral(`"w"`)),
		Block(Assign("custom", StringLiteral(`"ok"`))),
	))
	if err != nil {
		t.Fatalf("ExecuteDeclaration(widget): %v", err)
	}

	a, ok := b.Lookup(Label{Dir: "//app", Name: "a"})
	if !ok {
		t.Fatal("target //app:a not registered")
	}

	if a.Kind != "executable" || a.Template != "" {
		t.Errorf("a kind = %q template = %q", a.Kind, a.Template)
	}

	if diff := cmp.Diff([]string{"testonly", "sources", "deps"}, a.VarOrder); diff != "" {
		t.Errorf("VarOrder mismatch (-want +got):\n%s", diff)
	}

	w, ok := b.Lookup(Label{Dir: "//app", Name: "w"})
	if !ok || w.Kind != "source_set" || w.Template != "widget" {
		t.Errorf("w = %+v", w)
	}

	if err := b.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestScope_ExecuteDeclaration_Errors(t *testing.T) {
	tests := []struct {
		name string
		call *FunctionCallNode
		want string
	}{
		{
			"unknown function",
			Call("binary", List(StringLiteral(`"a"`)), Block()),
			"Unknown function.",
		},
		{
			"unused variable",
			Call("group", List(StringLiteral(`"a"`)), Block(Assign("sources", List()))),
			"Assignment had no effect.",
		},
		{
			"wrong type",
			Call("executable", List(StringLiteral(`"a"`)), Block(Assign("sources", StringLiteral(`"a.cc"`)))),
			"Value has the wrong type.",
		},
		{
			"no block",
			Call("group", List(StringLiteral(`"a"`)), nil),
			"Expected a block.",
		},
		{
			"no name",
			Call("group", nil, Block()),
			"Expected one argument.",
		},
		{
			"bad name",
			Call("group", List(StringLiteral(`"a:b"`)), Block()),
			"Invalid target name.",
		},
		{
			"not assignment",
			Call("group", List(StringLiteral(`"a"`)), Block(Ident("x"))),
			"Expected an assignment.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScope(NewLoader(testTree()), NewBuilder(), "//app/BUILD.stargn")

			err := s.ExecuteDeclaration(t.Context(), tt.call)

			var gerr *Err
			if !errors.As(err, &gerr) {
				t.Fatalf("error = %v, want *Err", err)
			}

			if gerr.Message != tt.want {
				t.Errorf("message = %q, want %q", gerr.Message, tt.want)
			}
		})
	}
}

func TestScope_ExecuteDeclaration_Duplicate(t *testing.T) {
	b := NewBuilder()
	s := NewScope(NewLoader(testTree()), b, "//app/BUILD.stargn")
	call := Call("group", List(StringLiteral(`"all"`)), Block())

	if err := s.ExecuteDeclaration(t.Context(), call); err != nil {
		t.Fatal(err)
	}

	err := s.ExecuteDeclaration(t.Context(), call)
	if err == nil || !strings.HasPrefix(err.Error(), "Duplicate definition.") {
		t.Errorf("error = %v, want duplicate definition", err)
	}

	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestScope_ExecuteDeclaration_Cancelled(t *testing.T) {
	s := NewScope(NewLoader(testTree()), NewBuilder(), "//app/BUILD.stargn")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := s.ExecuteDeclaration(ctx, Call("group", List(StringLiteral(`"g"`)), Block()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
