package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"go.starlark.net/starlark"
)

// starlarkBuiltins defines signatures for the universal Starlark functions,
// which carry no parameter metadata of their own.
var starlarkBuiltins = map[string][]string{
	"abs":       {"x"},
	"any":       {"x"},
	"all":       {"x"},
	"bool":      {"x"},
	"dict":      {"pairs", "**kwargs"},
	"dir":       {"x"},
	"enumerate": {"x", "start"},
	"fail":      {"*args", "sep"},
	"float":     {"x"},
	"getattr":   {"x", "name", "default"},
	"hasattr":   {"x", "name"},
	"hash":      {"x"},
	"int":       {"x", "base"},
	"len":       {"x"},
	"list":      {"x"},
	"max":       {"*args", "key"},
	"min":       {"*args", "key"},
	"print":     {"*args", "sep"},
	"range":     {"start", "stop", "step"},
	"repr":      {"x"},
	"reversed":  {"x"},
	"sorted":    {"x", "key", "reverse"},
	"str":       {"x"},
	"tuple":     {"x"},
	"type":      {"x"},
	"zip":       {"*args"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // callee, possibly dotted as in "srcs.append"
	argIndex int    // zero-based argument under the cursor
	keyword  string // keyword of that argument, if any
	inCall   bool
}

// isIdentRune reports whether r may appear in a dotted Starlark name.
func isIdentRune(r rune) bool {
	return r == '.' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// bracket is an open bracket left of the cursor.
type bracket struct {
	pos      int // offset of the bracket
	args     int // commas seen directly inside it
	argStart int // offset where the current argument begins
}

// detectFunctionCall finds the innermost open call at cursor. String
// literals and nested brackets are skipped.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	var (
		open  []bracket
		quote byte
	)

	for i := 0; i < cursor; i++ {
		switch ch := input[i]; {
		case quote != 0 && ch == '\\':
			i++
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case strings.IndexByte("([{", ch) >= 0:
			open = append(open, bracket{pos: i, argStart: i + 1})
		case strings.IndexByte(")]}", ch) >= 0 && len(open) > 0:
			open = open[:len(open)-1]
		case ch == ',' && len(open) > 0:
			open[len(open)-1].args++
			open[len(open)-1].argStart = i + 1
		}
	}

	if len(open) == 0 || input[open[len(open)-1].pos] != '(' {
		return functionCall{}
	}

	top := open[len(open)-1]

	start := top.pos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:top.pos]
	if name == "" {
		return functionCall{}
	}

	return functionCall{
		name:     name,
		argIndex: top.args,
		keyword:  argKeyword(input[top.argStart:cursor]),
		inCall:   true,
	}
}

// argKeyword returns the keyword of a partial argument "name = ...", or the
// empty string for a positional one.
func argKeyword(arg string) string {
	eq := strings.IndexByte(arg, '=')
	if eq <= 0 || strings.HasPrefix(arg[eq:], "==") {
		return ""
	}

	kw := strings.TrimSpace(arg[:eq])
	if kw == "" || strings.ContainsFunc(kw, func(r rune) bool {
		return r == '.' || !isIdentRune(r)
	}) {
		return ""
	}

	return kw
}

// getSignature retrieves the signature of the function bound to funcName.
// Declaration functions list the attributes they accept; Starlark functions
// list their parameters. Returns an empty signature if funcName is not
// callable.
func getSignature(env Env, funcName string) (signature string, params []string) {
	if keywords := env.Keywords(funcName); len(keywords) > 0 {
		return formatSignature(funcName, keywords), keywords
	}

	v, ok := lookupPath(env, funcName)
	if !ok {
		return "", nil
	}

	switch fn := v.(type) {
	case *starlark.Function:
		params = functionParams(fn)

		return formatSignature(funcName, params), params

	case *starlark.Builtin:
		if params, ok := starlarkBuiltins[fn.Name()]; ok && fn.Receiver() == nil {
			return formatSignature(funcName, params), params
		}

		return funcName + "(...)", nil
	}

	return "", nil
}

// lookupPath resolves a dotted name such as "srcs.append".
func lookupPath(env Env, name string) (starlark.Value, bool) {
	segments := strings.Split(name, ".")

	v, ok := env.Lookup(segments[0])
	if !ok {
		return nil, false
	}

	for _, seg := range segments[1:] {
		attrs, ok := v.(starlark.HasAttrs)
		if !ok {
			return nil, false
		}

		next, err := attrs.Attr(seg)
		if err != nil || next == nil {
			return nil, false
		}

		v = next
	}

	return v, true
}

// functionParams lists the parameter names of a Starlark function, marking
// variadic parameters with "*" and "**".
func functionParams(fn *starlark.Function) []string {
	n := fn.NumParams()
	params := make([]string, 0, n)

	for i := range n {
		name, _ := fn.Param(i)
		params = append(params, name)
	}

	// Varargs and kwargs follow the named and keyword-only parameters.
	if fn.HasKwargs() && len(params) > 0 {
		params[len(params)-1] = "**" + params[len(params)-1]
	}

	if fn.HasVarargs() {
		idx := len(params) - 1
		if fn.HasKwargs() {
			idx--
		}

		if idx >= 0 {
			params[idx] = "*" + params[idx]
		}
	}

	return params
}

// formatSignature formats a function signature with parameter names.
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// currentParam returns the index of the parameter the argument under the
// cursor binds to, or -1. A keyword selects the parameter of that name; a
// variadic parameter absorbs every later positional argument.
func currentParam(params []string, call functionCall) int {
	for i, p := range params {
		switch {
		case call.keyword != "":
			if strings.TrimLeft(p, "*") == call.keyword {
				return i
			}
		case strings.HasPrefix(p, "**"):
		case strings.HasPrefix(p, "*") && call.argIndex >= i:
			return i
		case call.argIndex == i:
			return i
		}
	}

	return -1
}

// renderSignatureHint renders signature with the current parameter
// highlighted.
func renderSignatureHint(signature string, params []string, call functionCall) string {
	name, _, ok := strings.Cut(signature, "(")

	switch {
	case signature == "":
		return ""
	case !ok:
		return signatureStyle.Render(signature)
	case len(params) == 0:
		return signatureNameStyle.Render(name) + signatureStyle.Render(signature[len(name):])
	}

	current := currentParam(params, call)

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name) + signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		style := signatureStyle
		if i == current {
			style = currentParamStyle
		}

		b.WriteString(style.Render(p))
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
