package lang

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const loadScript = `
load("//build/widget.gni", "widget", "bundle")
load("//build/extra.gni", "extra")

widget(name = "w1")
`

func TestParse(t *testing.T) {
	s, err := Parse("//app/BUILD.stargn", []byte(loadScript))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if s.Name != "//app/BUILD.stargn" || string(s.Source()) != loadScript {
		t.Errorf("script = %q %q", s.Name, s.Source())
	}

	got := s.Loads()
	if len(got) != 2 {
		t.Fatalf("Loads() = %v", got)
	}

	if diff := cmp.Diff([]string{"//build/widget.gni", "//build/extra.gni"},
		[]string{got[0].Module, got[1].Module}); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"widget", "bundle"}, got[0].Names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if got[0].Pos.Line != 2 || got[1].Pos.Line != 3 {
		t.Errorf("positions = %v, %v", got[0].Pos, got[1].Pos)
	}

	again, err := Parse("other", []byte(loadScript))
	if err != nil {
		t.Fatal(err)
	}

	if again.Digest != s.Digest {
		t.Error("digest depends on more than the source")
	}

	other, _ := Parse("other", []byte(loadScript+"\n"))
	if other.Digest == s.Digest {
		t.Error("digest did not change with the source")
	}
}

func TestParse_Error(t *testing.T) {
	for _, src := range []string{
		"executable(name = ",
		"def f(:\n",
		"x = [1, 2",
	} {
		_, err := Parse("bad.stargn", []byte(src))
		if !errors.Is(err, ErrParse) {
			t.Errorf("Parse(%q) = %v, want ErrParse", src, err)

			continue
		}

		var le *Error
		if errors.As(err, &le) && le.Phase() != PhaseParse {
			t.Errorf("phase = %v", le.Phase())
		}
	}
}

func TestParseReader(t *testing.T) {
	s, err := ParseReader("r.stargn", strings.NewReader(`group(name = "all")`))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	if len(s.File.Stmts) != 1 || len(s.Loads()) != 0 {
		t.Errorf("statements = %d, loads = %d", len(s.File.Stmts), len(s.Loads()))
	}
}

func TestParseFile(t *testing.T) {
	fsys := fstest.MapFS{
		"app/BUILD.stargn": {Data: []byte(loadScript)},
	}

	s, err := ParseFile(fsys, "app/BUILD.stargn")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if len(s.Loads()) != 2 {
		t.Errorf("loads = %v", s.Loads())
	}

	_, err = ParseFile(fsys, "missing/BUILD.stargn")
	if !errors.Is(err, ErrReadInput) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ParseFile(missing) = %v", err)
	}
}

func TestScriptPath(t *testing.T) {
	for in, want := range map[string]string{
		"BUILD.gn":         "BUILD.stargn",
		"a/b/BUILD.gn":     "a/b/BUILD.stargn",
		"//a/BUILD.stargn": "//a/BUILD.stargn",
		"a/b/BUILD":        "a/b/BUILD.stargn",
		"build/widget.gni": "build/widget.stargn",
		"dir.v2/BUILD.gn":  "dir.v2/BUILD.stargn",
	} {
		if got := ScriptPath(in); got != want {
			t.Errorf("ScriptPath(%q) = %q, want %q", in, got, want)
		}
	}
}
