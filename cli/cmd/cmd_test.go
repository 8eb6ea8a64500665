package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const widgetGNI = `
template("widget") {
  source_set(target_name) {}
}
`

// sampleTree is a small workspace whose scripts are discovered in the order
// app, base.
func sampleTree() map[string]string {
	return map[string]string{
		"build/widget.gni": widgetGNI,
		"base/BUILD.stargn": `
load("//build/widget.gni", "widget")

widget(name = "base", sources = ["base.cc"])
`,
		"app/BUILD.stargn": `
executable(
    name = "app",
    sources = ["main.cc"],
    deps = ["//base:base"],
)

group(name = "all", deps = [":app"])
`,
	}
}

// writeTree creates files under a temporary source root and returns a
// context carrying a workspace rooted there.
func writeTree(t *testing.T, files map[string]string) (context.Context, string) {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return WithWorkspace(t.Context(), &Workspace{Root: root}), root
}

func TestWorkspaceFrom_Default(t *testing.T) {
	w := workspaceFrom(context.Background())
	if w == nil || w.Root != "." {
		t.Errorf("workspaceFrom(empty) = %+v", w)
	}

	if kongContextFrom(context.Background()) != nil {
		t.Error("kongContextFrom(empty) should be nil")
	}
}

func TestRelScripts(t *testing.T) {
	_, root := writeTree(t, sampleTree())

	app := filepath.Join(root, "app", "BUILD.stargn")
	gnName := filepath.Join(root, "base", "BUILD.gn")

	if err := os.Symlink(app, filepath.Join(root, "alias.stargn")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := relScripts(root, []string{
		app,
		gnName,
		filepath.Join(root, "alias.stargn"),
		app,
	})
	if err != nil {
		t.Fatalf("relScripts: %v", err)
	}

	want := []string{"app/BUILD.stargn", "base/BUILD.stargn"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestRelScripts_Errors(t *testing.T) {
	_, root := writeTree(t, sampleTree())

	outside := filepath.Join(t.TempDir(), "BUILD.stargn")
	if err := os.WriteFile(outside, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{
		filepath.Join(root, "missing", "BUILD.stargn"),
		outside,
	} {
		if _, err := relScripts(root, []string{p}); !errors.Is(err, ErrDiscover) {
			t.Errorf("relScripts(%q) = %v, want ErrDiscover", p, err)
		}
	}
}
