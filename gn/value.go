package gn

import (
	"strconv"
	"strings"
)

// ValueType is the dynamic type of a [Value].
type ValueType int

const (
	ValueNone ValueType = iota
	ValueBool
	ValueInt
	ValueString
	ValueList
)

func (t ValueType) String() string {
	switch t {
	case ValueBool:
		return "boolean"
	case ValueInt:
		return "integer"
	case ValueString:
		return "string"
	case ValueList:
		return "list"
	default:
		return "none"
	}
}

// Value is a GN runtime value.
type Value struct {
	Type   ValueType
	Bool   bool
	Int    int64
	Str    string
	List   []Value
	Origin Location
}

// StringValue returns a string [Value].
func StringValue(s string) Value { return Value{Type: ValueString, Str: s} }

// ListValue returns a list [Value] holding items.
func ListValue(items ...Value) Value { return Value{Type: ValueList, List: items} }

// Strings returns the elements of a list of strings. It reports false if v
// is not a list or any element is not a string.
func (v Value) Strings() ([]string, bool) {
	if v.Type != ValueList {
		return nil, false
	}

	out := make([]string, 0, len(v.List))

	for _, item := range v.List {
		if item.Type != ValueString {
			return nil, false
		}

		out = append(out, item.Str)
	}

	return out, true
}

// Native converts v to bool, int64, string, or []any.
func (v Value) Native() any {
	switch v.Type {
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int
	case ValueString:
		return v.Str
	case ValueList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Native()
		}

		return out
	default:
		return nil
	}
}

// String renders v in GN syntax.
func (v Value) String() string {
	switch v.Type {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueString:
		return Quote(v.Str)
	case ValueList:
		if len(v.List) == 0 {
			return "[]"
		}

		part := make([]string, len(v.List))
		for i, item := range v.List {
			part[i] = item.String()
		}

		return "[ " + strings.Join(part, ", ") + " ]"
	default:
		return "<none>"
	}
}

// Quote surrounds s with double quotes, escaping the characters GN treats
// specially inside string literals.
func Quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\', '$':
			b.WriteByte('\\')
		}

		b.WriteByte(s[i])
	}

	b.WriteByte('"')

	return b.String()
}

// Unquote strips the surrounding quotes from a string token value and
// resolves the escapes \", \\, and \$. Any other backslash is literal.
func Unquote(tok string) (string, bool) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", false
	}

	body := tok[1 : len(tok)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var b strings.Builder

	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			switch body[i+1] {
			case '"', '\\', '$':
				i++
			}
		}

		b.WriteByte(body[i])
	}

	return b.String(), true
}

// lookupFunc resolves an identifier to a value.
type lookupFunc func(name string) (Value, bool)

// evalExpr evaluates the literal, list, and identifier expressions that may
// appear on the right side of an assignment.
func evalExpr(n Node, lookup lookupFunc) (Value, *Err) {
	switch n := n.(type) {
	case *LiteralNode:
		return evalLiteral(n)

	case *ListNode:
		items := make([]Value, 0, len(n.Contents))

		for _, item := range n.Contents {
			v, err := evalExpr(item, lookup)
			if err != nil {
				return Value{}, err
			}

			items = append(items, v)
		}

		return Value{Type: ValueList, List: items, Origin: n.Location()}, nil

	case *IdentifierNode:
		if lookup != nil {
			if v, ok := lookup(n.Value.Value); ok {
				return v, nil
			}
		}

		return Value{}, NewErr(n, "Undefined identifier.",
			"The identifier \""+n.Value.Value+"\" is not defined in this scope.")

	case nil:
		return Value{}, NewErr(nil, "Missing expression.")

	default:
		return Value{}, NewErr(n, "This expression is not supported here.")
	}
}

func evalLiteral(n *LiteralNode) (Value, *Err) {
	tok := n.Value

	switch tok.Type {
	case TokenTrue:
		return Value{Type: ValueBool, Bool: true, Origin: tok.Location}, nil

	case TokenFalse:
		return Value{Type: ValueBool, Bool: false, Origin: tok.Location}, nil

	case TokenInteger:
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return Value{}, NewErr(n, "This does not look like an integer.")
		}

		return Value{Type: ValueInt, Int: i, Origin: tok.Location}, nil

	case TokenString:
		s, ok := Unquote(tok.Value)
		if !ok {
			return Value{}, NewErr(n, "Malformed string literal.", tok.Value)
		}

		return Value{Type: ValueString, Str: s, Origin: tok.Location}, nil

	default:
		return Value{}, NewErr(n, "Unexpected token in literal.", tok.Value)
	}
}
