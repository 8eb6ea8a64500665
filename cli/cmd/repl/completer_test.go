package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds_Operators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "srcs", 4, "srcs", 0, 4},
		{"dot_separated", "srcs.app", 8, "app", 5, 8},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_paren", "executable(na", 13, "na", 11, 13},
		{"after_comma", "group(name = 'g', de", 20, "de", 18, 20},
		{"after_bracket", "[src", 4, "src", 1, 4},
		{"after_assign", "x=fo", 4, "fo", 2, 4},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "public_deps", 11, "public_deps", 0, 11},
		{"inside_string", `load("wid`, 9, "wid", 6, 9},
		{"empty_after_dot", "srcs.", 5, "", 5, 5},
		{"cursor_past_end", "abc", 10, "abc", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath_WithOperators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "cfg.opts.", 9, "cfg.opts"},
		{"after_operator", "x + cfg.opts.", 13, "cfg.opts"},
		{"after_paren", "(cfg.opts.", 10, "cfg.opts"},
		{"after_minus", "n-cfg.", 6, "cfg"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "x = a.b.", 8, "a.b"},
		{"partial_word", "srcs.ap", 5, "srcs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	env := newTestEnv(t)

	mustExec(t, env, `srcs = ["a.cc"]`)

	top := childCandidates(env, "")
	for _, want := range []string{"executable", "group", "srcs", "len"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates missing %q: %v", want, top)
		}
	}

	attrs := childCandidates(env, "srcs")
	for _, want := range []string{"append", "extend", "index"} {
		if !slices.Contains(attrs, want) {
			t.Errorf("list attributes missing %q: %v", want, attrs)
		}
	}

	if got := childCandidates(env, "missing"); got != nil {
		t.Errorf("childCandidates(missing) = %v, want nil", got)
	}

	if got := childCandidates(env, "srcs.append.x"); got != nil {
		t.Errorf("childCandidates(srcs.append.x) = %v, want nil", got)
	}
}

func TestComputeMatches_Keywords(t *testing.T) {
	env := newTestEnv(t)
	m := newModel(t.Context(), env, &Output{}, NewHistory(""), discard())

	m.input.SetValue("executable(name = 'app', sourc")
	m.input.SetCursor(len(m.input.Value()))

	matches, _, start, end := m.computeMatches()
	if len(matches) == 0 || matches[0].Str != "sources" {
		t.Fatalf("matches = %v, want sources first", strs(matches))
	}

	if start != 25 || end != 30 {
		t.Errorf("word bounds = %d, %d", start, end)
	}
}

func TestComputeMatches_CtrlMode(t *testing.T) {
	m := newModel(t.Context(), newTestEnv(t), &Output{}, NewHistory(""), discard())
	m = m.switchToMode(modeCtrl)

	m.input.SetValue("targ")
	m.input.SetCursor(4)

	matches, _, _, _ := m.computeMatches()
	if len(matches) == 0 || matches[0].Str != "targets" {
		t.Errorf("matches = %v, want targets first", strs(matches))
	}

	m.input.SetValue("")

	if matches, _, _, _ := m.computeMatches(); matches != nil {
		t.Errorf("empty command matched %v", strs(matches))
	}
}

func TestIsFunction(t *testing.T) {
	env := newTestEnv(t)

	mustExec(t, env, "def f(x):\n  return x\n")
	mustExec(t, env, "n = 1")

	for name, want := range map[string]bool{
		"f":          true,
		"executable": true,
		"len":        true,
		"n":          false,
		"missing":    false,
	} {
		if got := isFunction(env, name); got != want {
			t.Errorf("isFunction(%q) = %v, want %v", name, got, want)
		}
	}
}

func strs(matches fuzzy.Matches) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
