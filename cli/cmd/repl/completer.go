package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"go.starlark.net/starlark"
)

// commandNames returns the primary name of every control-mode command.
func commandNames() []string {
	cmds := commands()
	names := make([]string, len(cmds))

	for i, c := range cmds {
		names[i] = c.names[0]
	}

	return names
}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. This includes whitespace, the member-access dot, quotes, and
// Starlark operator/punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', '^', '~',
		',', ':', ';',
		'"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when cursor sits just after a boundary and before
// another. Boundary runes are all single-byte.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = strings.LastIndexFunc(input[:cursor], isWordBoundary) + 1

	end = len(input)
	if i := strings.IndexFunc(input[cursor:], isWordBoundary); i >= 0 {
		end = cursor + i
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain before the word at wordStart,
// or "" when the word is not preceded by a dot. For "x + srcs.app" and the
// word "app" it returns "srcs".
func parentPath(input string, wordStart int) string {
	prefix, ok := strings.CutSuffix(input[:wordStart], ".")
	if !ok {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	chain := strings.LastIndexFunc(prefix, func(r rune) bool {
		return r != '.' && isWordBoundary(r)
	}) + 1

	return strings.TrimSpace(prefix[chain:])
}

// childCandidates returns the names that are valid completions for the given
// parent path. For an empty parent, returns every name bound in the session.
// For a non-empty parent, resolves the value and returns its attributes.
func childCandidates(env Env, parent string) []string {
	if parent == "" {
		return env.Names()
	}

	v, ok := lookupPath(env, parent)
	if !ok {
		return nil
	}

	if attrs, ok := v.(starlark.HasAttrs); ok {
		return attrs.AttrNames()
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty at the top level, it returns nil
// matches. When the word is empty after a dot (member access), it returns all
// attributes as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = commandNames()
	} else {
		parent := parentPath(input, wordStart)
		candidates = childCandidates(m.env, parent)

		// Inside a declaration call, attribute keywords complete first.
		if call := detectFunctionCall(input, cursor); parent == "" && call.inCall {
			candidates = append(m.env.Keywords(call.name), candidates...)
		}

		// When the word is empty at the top level, don't show completions
		// (allows the hint text to be visible). After a dot, show all
		// attributes immediately so the user can browse them.
		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			// Return all candidates as unfiltered matches.
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

// renderCandidateBar lays out matches on one line no wider than width. The
// line ends with an ellipsis when candidates had to be left out.
func renderCandidateBar(
	env Env,
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	more := hintStyle.Render("...")
	tail := len(sep) + lipgloss.Width(more)

	parts := make([]string, 0, len(matches))
	used := 0

	for i, match := range matches {
		item := renderCandidate(match, tabActive && i == suggIdx, isFunction(env, match.Str))

		need := lipgloss.Width(item)
		if i > 0 {
			need += len(sep)
		}

		reserve := tail
		if i == len(matches)-1 {
			reserve = 0
		}

		if i > 0 && used+need+reserve > width {
			parts = append(parts, more)

			break
		}

		parts = append(parts, item)
		used += need
	}

	return strings.Join(parts, sep)
}

var (
	matchStyle         = suggestionStyle.Bold(true)
	selectedMatchStyle = selectedStyle.Bold(true)
)

// renderCandidate renders one candidate with its matched runes emphasized.
// Callable candidates get a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, hit := suggestionStyle, matchStyle
	if selected {
		base, hit = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	// MatchedIndexes are ascending byte offsets into Str.
	pending := match.MatchedIndexes

	for i, r := range match.Str {
		style := base
		if len(pending) > 0 && pending[0] == i {
			style = hit
			pending = pending[1:]
		}

		b.WriteString(style.Render(string(r)))
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// formatPreview generates a short preview of a global binding.
func formatPreview(v starlark.Value) string {
	if fn, ok := v.(*starlark.Function); ok {
		return formatSignature(fn.Name(), functionParams(fn))
	}

	src := v.String()
	if len(src) > 40 {
		src = src[:37] + "..."
	}

	return v.Type() + " " + src
}

// isFunction reports whether name is bound to a callable value, which the
// candidate bar displays with "()".
func isFunction(env Env, name string) bool {
	v, ok := env.Lookup(name)
	if !ok {
		return false
	}

	_, ok = v.(starlark.Callable)

	return ok
}
