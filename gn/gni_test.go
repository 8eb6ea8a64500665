package gn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const widgetGNI = `
import("//build/base.gni")

declare_args() {
  use_widgets = true
  widget_flavor = "vanilla"
}

_private_helper = "hidden"
widget_sources = [ "w.cc", "w.h" ]
widget_sources += [ "extra.cc" ]

if (use_widgets) {
  enable = true
} else if (other) {
  enable = false
} else {
  enable = false
}

template("widget") {
  forward_variables_from(invoker, [ "deps", "sources" ])
  source_set(target_name) {
    sources = invoker.sources + widget_sources
  }
}

template("bundle") {
  group(target_name) {
    deps = invoker.deps
  }
}

template("generic") {
  assert(defined(invoker.x))
}

assert(widget_flavor != "")
`

func TestParseModule(t *testing.T) {
	mod, err := ParseModule("//build/widget.gni", []byte(widgetGNI))
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	if got := mod.Imports; len(got) != 1 || got[0].Path != "//build/base.gni" {
		t.Errorf("Imports = %v", got)
	}

	type tmpl struct{ Name, Kind string }

	var got []tmpl
	for _, tp := range mod.Templates {
		got = append(got, tmpl{tp.Name, tp.Kind})
	}

	want := []tmpl{{"widget", "source_set"}, {"bundle", "group"}, {"generic", ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Templates mismatch (-want +got):\n%s", diff)
	}

	wantOrder := []string{"use_widgets", "widget_flavor", "_private_helper", "widget_sources"}
	if diff := cmp.Diff(wantOrder, mod.VarOrder); diff != "" {
		t.Errorf("VarOrder mismatch (-want +got):\n%s", diff)
	}

	sources, ok := mod.Vars["widget_sources"].Strings()
	if !ok {
		t.Fatalf("widget_sources = %v", mod.Vars["widget_sources"])
	}

	if diff := cmp.Diff([]string{"w.cc", "w.h", "extra.cc"}, sources); diff != "" {
		t.Errorf("widget_sources mismatch (-want +got):\n%s", diff)
	}

	if v := mod.Vars["use_widgets"]; v.Type != ValueBool || !v.Bool {
		t.Errorf("use_widgets = %v", v)
	}

	if _, ok := mod.Vars["enable"]; ok {
		t.Error("assignments inside conditionals should not be exported")
	}

	if loc := mod.Templates[0].Location; loc.File != "//build/widget.gni" || loc.Line != 21 {
		t.Errorf("widget location = %v", loc)
	}
}

func TestParseModule_Errors(t *testing.T) {
	tests := map[string]string{
		"unclosed template": `template("x") {`,
		"template no block": `template("x")`,
		"import no string":  `import(foo)`,
		"stray brace":       `}`,
		"missing operator":  `x "y"`,
		"bad expression":    `x = ]`,
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseModule("//bad.gni", []byte(src)); err == nil {
				t.Errorf("ParseModule(%q) should fail", src)
			}
		})
	}
}
