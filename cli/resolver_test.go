package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

type resolverCLI struct {
	Root       string   `default:"."`
	ImportPath []string `name:"import-path"`
	Jobs       int      `default:"1"`
	LogLevel   string   `default:"info" name:"log-level"`
	LogPretty  bool     `default:"true" name:"log-pretty" negatable:""`
}

func parseWithConfig(t *testing.T, doc string, args ...string) resolverCLI {
	t.Helper()

	path := filepath.Join(t.TempDir(), baseConfig)
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli resolverCLI

	parser, err := kong.New(&cli,
		kong.Configuration(resolve(context.Background(), "config"), path),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatal(err)
	}

	return cli
}

func TestResolve(t *testing.T) {
	doc := `
config:
  root: /src/project
  import_path:
    - //build
    - //third_party/gn
  jobs: 8
  log:
    level: debug
    pretty: false
other:
  root: /elsewhere
`

	got := parseWithConfig(t, doc)
	want := resolverCLI{
		Root:       "/src/project",
		ImportPath: []string{"//build", "//third_party/gn"},
		Jobs:       8,
		LogLevel:   "debug",
		LogPretty:  false,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_FlagsOverride(t *testing.T) {
	got := parseWithConfig(t, "config:\n  jobs: 8\n  root: /a\n", "--jobs=2")

	if got.Jobs != 2 || got.Root != "/a" {
		t.Errorf("flags = %+v", got)
	}
}

func TestResolve_Ignored(t *testing.T) {
	for _, doc := range []string{
		"",
		"config: [1, 2]\n",
		"other:\n  root: /x\n",
		"config:\n  root: [\n",
	} {
		got := parseWithConfig(t, doc)
		if got.Root != "." || got.Jobs != 1 {
			t.Errorf("doc %q resolved %+v", strings.TrimSpace(doc), got)
		}
	}
}

func TestConfig_Flatten(t *testing.T) {
	c := config{}
	c.flatten("", map[string]any{
		"log": map[string]any{"time_layout": "Kitchen", "caller": true},
		"n":   uint64(3),
		"f":   1.5,
		"xs":  []any{uint64(1), "a"},
	})

	want := config{
		"log-time-layout": "Kitchen",
		"log-caller":      true,
		"n":               "3",
		"f":               "1.5",
		"xs":              []any{"1", "a"},
	}

	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("flatten mismatch (-want +got):\n%s", diff)
	}
}
