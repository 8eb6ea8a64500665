package repl

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/stargn/gn"
	"github.com/ardnew/stargn/lang"
	"github.com/ardnew/stargn/log"
)

func discard() log.Logger { return log.Make(io.Discard) }

func newTestEnv(t testing.TB) Env {
	t.Helper()

	fsys := fstest.MapFS{
		"build/widget.gni": {Data: []byte(`
template("widget") {
  source_set(target_name) {}
}
template("tool") {
  action(target_name) {}
}
`)},
	}

	scope := gn.NewScope(gn.NewLoader(fsys), gn.NewBuilder(), "//app/BUILD.stargn")
	session := lang.NewSession(lang.NewHandle(scope))
	t.Cleanup(session.Close)

	return NewEnv(session, scope)
}

func mustExec(t *testing.T, env Env, src string) {
	t.Helper()

	if _, err := env.Exec(t.Context(), src); err != nil {
		t.Fatalf("Exec(%q): %v", src, err)
	}
}

func TestEnv_Keywords(t *testing.T) {
	env := newTestEnv(t)

	mustExec(t, env, `load("//build/widget.gni", "widget", "tool")`)

	group := []string{
		"name", "data", "data_deps", "deps", "public_configs",
		"public_deps", "testonly", "visibility",
	}
	if diff := cmp.Diff(group, env.Keywords("group")); diff != "" {
		t.Errorf("group keywords mismatch (-want +got):\n%s", diff)
	}

	widget := env.Keywords("widget")
	if len(widget) == 0 || widget[0] != lang.NameAttr {
		t.Fatalf("widget keywords = %v", widget)
	}

	if diff := cmp.Diff(env.Keywords("source_set"), widget); diff != "" {
		t.Errorf("widget should accept source_set keywords (-want +got):\n%s", diff)
	}

	if got := env.Keywords("len"); got != nil {
		t.Errorf("Keywords(len) = %v, want nil", got)
	}
}

func TestEnv_Targets(t *testing.T) {
	env := newTestEnv(t)

	mustExec(t, env, `load("//build/widget.gni", "widget")`)
	mustExec(t, env, `widget(name = "w", sources = ["w.cc"])`)
	mustExec(t, env, `group(name = "all", deps = [":w"])`)

	var labels []string
	for _, target := range env.Targets() {
		labels = append(labels, target.Label.String())
	}

	if diff := cmp.Diff([]string{"//app:w", "//app:all"}, labels); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"//build/widget.gni"}, env.Modules()); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}
}
