package cmd

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ardnew/stargn/lang"
)

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"BUILD.stargn":             {},
		"app/BUILD.stargn":         {},
		"app/BUILD.gn":             {},
		"lib/sub/BUILD.stargn":     {},
		".git/BUILD.stargn":        {},
		"out/debug/BUILD.stargn":   {},
		"tools/out/BUILD.stargn":   {},
		"tools/script.stargn":      {},
		"third_party/BUILD.stargn": {},
	}

	got, err := discover(t.Context(), fsys)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	want := []string{
		"BUILD.stargn",
		"app/BUILD.stargn",
		"lib/sub/BUILD.stargn",
		"third_party/BUILD.stargn",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_Errors(t *testing.T) {
	if _, err := discover(t.Context(), fstest.MapFS{"a/BUILD.gn": {}}); !errors.Is(err, ErrNoScripts) {
		t.Errorf("discover(no scripts) = %v, want ErrNoScripts", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := discover(ctx, fstest.MapFS{"BUILD.stargn": {}}); !errors.Is(err, ErrDiscover) {
		t.Errorf("discover(cancelled) = %v, want ErrDiscover", err)
	}
}

func TestWorkspace_SearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv(EnvImportPath(), "//lib"+sep+sep+" vendor/gn ")

	w := &Workspace{ImportPath: []string{"//build", "tools/", "//build"}}

	want := []string{"//build", "//tools", "//lib", "//vendor/gn"}
	if diff := cmp.Diff(want, w.SearchPath(), cmpopts.SortSlices(func(a, b string) bool {
		return a < b
	})); diff != "" {
		t.Errorf("search path mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkspace_Options(t *testing.T) {
	w := &Workspace{}
	if n := len(w.Options()); n != 2 {
		t.Errorf("default options = %d, want 2", n)
	}

	w = &Workspace{Builtins: []string{"executable"}, Stdout: os.Stdout}
	if n := len(w.Options(lang.WithImportSuffix(".gni"))); n != 5 {
		t.Errorf("configured options = %d, want 5", n)
	}
}

func TestWorkspace_Load(t *testing.T) {
	ctx, _ := writeTree(t, sampleTree())
	w := workspaceFrom(ctx)

	scripts, err := w.Scripts(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	b, err := w.Load(ctx, scripts, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var names []string
	for _, s := range b.Scripts {
		names = append(names, s.Name)
	}

	if diff := cmp.Diff([]string{"//app/BUILD.stargn", "//base/BUILD.stargn"}, names); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}

	var labels []string
	for _, target := range b.Builder.Targets() {
		labels = append(labels, target.Label.String())
	}

	if diff := cmp.Diff([]string{"//app:app", "//app:all", "//base:base"}, labels); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkspace_LoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   error
	}{
		{"parse", "executable(name = ", lang.ErrParse},
		{"positional", `executable("app")`, lang.ErrPositionalArgs},
		{"load", `load("x.bzl", "y")`, lang.ErrUnsupportedLoad},
		{"missing import", `load("//build/none.gni", "x")`, lang.ErrImport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := writeTree(t, map[string]string{"BUILD.stargn": tt.script})
			w := workspaceFrom(ctx)

			_, err := w.Load(ctx, []string{"BUILD.stargn"}, nil)
			if !errors.Is(err, ErrScript) || !errors.Is(err, tt.want) {
				t.Errorf("Load() = %v, want %v", err, tt.want)
			}
		})
	}
}
