package lang

import (
	"go.starlark.net/starlark"

	"github.com/ardnew/stargn/gn"
)

// Quoting selects how string values are re-quoted as literals.
type Quoting int

const (
	// QuoteVerbatim surrounds the content with double quotes and leaves it
	// untouched. Inner quotes are not escaped, so a value containing `"`
	// produces a literal the execution core may misread.
	QuoteVerbatim Quoting = iota
	// QuoteEscaped escapes backslashes, double quotes and dollar signs.
	QuoteEscaped
)

// String returns the quoting mode name.
func (q Quoting) String() string {
	if q == QuoteEscaped {
		return "escaped"
	}

	return "verbatim"
}

// ParseQuoting maps a mode name to a [Quoting]. Unknown names select
// [QuoteVerbatim].
func ParseQuoting(s string) Quoting {
	if s == "escaped" {
		return QuoteEscaped
	}

	return QuoteVerbatim
}

// Quote renders s as a string literal token value.
func (q Quoting) Quote(s string) string {
	if q == QuoteEscaped {
		return gn.Quote(s)
	}

	return `"` + s + `"`
}

// Translate converts one attribute value into a literal or list node.
// Booleans, strings and lists whose elements are all strings are
// supported; anything else fails with [ErrUnsupportedValue].
func Translate(v starlark.Value, q Quoting) (gn.Node, error) {
	switch v := v.(type) {
	case starlark.Bool:
		return gn.BoolLiteral(bool(v)), nil

	case starlark.String:
		return gn.StringLiteral(q.Quote(string(v))), nil

	case *starlark.List:
		items := make([]gn.Node, 0, v.Len())

		for i := range v.Len() {
			s, ok := v.Index(i).(starlark.String)
			if !ok {
				return nil, ErrUnsupportedValue.Detail("%s in list", v.Index(i))
			}

			items = append(items, gn.StringLiteral(q.Quote(string(s))))
		}

		return gn.List(items...), nil

	default:
		return nil, ErrUnsupportedValue.Detail("%s", v)
	}
}
