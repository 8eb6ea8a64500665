package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func TestGen_Order(t *testing.T) {
	ctx, _ := writeTree(t, sampleTree())

	var out bytes.Buffer

	g := &Gen{Order: true, out: &out}
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "//base:base\n//app:app\n//app:all\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestGen_Selection(t *testing.T) {
	ctx, root := writeTree(t, sampleTree())

	var out bytes.Buffer

	g := &Gen{Order: true, out: &out}
	g.Scripts = []string{filepath.Join(root, "base", "BUILD.stargn")}

	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "//base:base\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestGen_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{
			"unresolved dependency",
			map[string]string{"BUILD.stargn": `group(name = "all", deps = [":missing"])`},
			ErrCheck,
		},
		{
			"cycle",
			map[string]string{"BUILD.stargn": `
group(name = "a", deps = [":b"])
group(name = "b", deps = [":a"])
`},
			ErrCheck,
		},
		{
			"no scripts",
			map[string]string{"BUILD.gn": ""},
			ErrNoScripts,
		},
		{
			"script error",
			map[string]string{"BUILD.stargn": `group()`},
			ErrScript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := writeTree(t, tt.files)

			if err := (&Gen{}).Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDescText(t *testing.T) {
	ctx, _ := writeTree(t, sampleTree())

	var out bytes.Buffer

	d := &DescText{out: &out}
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{
		"//app:app\n  kind: executable\n  defined: //app/BUILD.stargn\n",
		`  sources = [ "main.cc" ]`,
		`  deps = [ "//base:base" ]`,
		"//base:base\n  kind: source_set\n  template: widget\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDescJSON(t *testing.T) {
	ctx, _ := writeTree(t, sampleTree())

	var out bytes.Buffer

	d := &DescJSON{Indent: 2, out: &out}
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []targetJSON
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}

	want := []targetJSON{
		{
			Label:   "//app:app",
			Kind:    "executable",
			Defined: "//app/BUILD.stargn",
			Vars: map[string]any{
				"sources": []any{"main.cc"},
				"deps":    []any{"//base:base"},
			},
		},
		{
			Label:   "//app:all",
			Kind:    "group",
			Defined: "//app/BUILD.stargn",
			Vars:    map[string]any{"deps": []any{":app"}},
		},
		{
			Label:    "//base:base",
			Kind:     "source_set",
			Template: "widget",
			Defined:  "//base/BUILD.stargn",
			Vars:     map[string]any{"sources": []any{"base.cc"}},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestDescYAML(t *testing.T) {
	ctx, _ := writeTree(t, sampleTree())

	var out bytes.Buffer

	d := &DescYAML{Indent: 2, selection: selection{}, out: &out}
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}

	if len(got) != 3 || got[0]["label"] != "//app:app" || got[2]["template"] != "widget" {
		t.Errorf("records = %v", got)
	}

	// Variables keep assignment order.
	if i, j := strings.Index(out.String(), "sources:"), strings.Index(out.String(), "deps:"); i < 0 || j < i {
		t.Errorf("variable order not preserved:\n%s", out.String())
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		predicate string
		want      string
	}{
		{`kind == "executable"`, "//app:app\n"},
		{`"//base:base" in deps`, "//app:app\n"},
		{`template != ""`, "//base:base\n"},
		{`dir == "//app"`, "//app:app\n//app:all\n"},
		{`"main.cc" in (vars.sources ?? [])`, "//app:app\n"},
		{`name startsWith "x"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			ctx, _ := writeTree(t, sampleTree())

			var out bytes.Buffer

			q := &Query{Predicate: tt.predicate, out: &out}
			if err := q.Run(ctx); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestQuery_CompileError(t *testing.T) {
	// The predicate fails before any script is evaluated.
	ctx, _ := writeTree(t, map[string]string{"BUILD.stargn": "not starlark ("})

	for _, predicate := range []string{"kind ==", `len(kind)`, "unknown_field"} {
		q := &Query{Predicate: predicate}
		if err := q.Run(ctx); !errors.Is(err, ErrQuery) {
			t.Errorf("Run(%q) = %v, want ErrQuery", predicate, err)
		}
	}
}

func TestTranslate(t *testing.T) {
	ctx, _ := writeTree(t, sampleTree())

	var out bytes.Buffer

	tr := &Translate{Indent: 2, out: &out}
	if err := tr.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := `# //app/BUILD.stargn
executable("app") {
  sources = [ "main.cc" ]
  deps = [ "//base:base" ]
}
group("all") {
  deps = [ ":app" ]
}

# //base/BUILD.stargn
import("//build/widget.gni")
widget("base") {
  sources = [ "base.cc" ]
}
`

	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// failingWriter rejects every write.
type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestTranslate_WriteError(t *testing.T) {
	errWrite := errors.New("disk full")

	ctx, _ := writeTree(t, map[string]string{"BUILD.stargn": ""})

	tr := &Translate{Indent: 2, out: failingWriter{errWrite}}
	if err := tr.Run(ctx); !errors.Is(err, errWrite) {
		t.Errorf("Run() = %v, want %v", err, errWrite)
	}

	ctx, _ = writeTree(t, sampleTree())

	tr = &Translate{Indent: 2, out: failingWriter{errWrite}}
	if err := tr.Run(ctx); err == nil {
		t.Error("Run() succeeded on a failing writer")
	}
}
