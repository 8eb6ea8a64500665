package gn

import (
	"io"
	"strings"
)

// DefaultIndent is the number of spaces per nesting level used by [String].
const DefaultIndent = 2

// Format writes n to w in GN syntax, indenting nested blocks by indent
// spaces per level.
func Format(w io.Writer, n Node, indent int) error {
	var b strings.Builder

	formatNode(&b, n, strings.Repeat(" ", indent), 0)
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())

	return err
}

// String renders n in GN syntax without a trailing newline.
func String(n Node) string {
	var b strings.Builder

	formatNode(&b, n, strings.Repeat(" ", DefaultIndent), 0)

	return b.String()
}

func formatNode(b *strings.Builder, n Node, indent string, depth int) {
	switch n := n.(type) {
	case *IdentifierNode:
		b.WriteString(n.Value.Value)

	case *LiteralNode:
		b.WriteString(n.Value.Value)

	case *ListNode:
		if len(n.Contents) == 0 {
			b.WriteString("[]")

			return
		}

		b.WriteString("[ ")

		for i, item := range n.Contents {
			if i > 0 {
				b.WriteString(", ")
			}

			formatNode(b, item, indent, depth)
		}

		b.WriteString(" ]")

	case *BinaryOpNode:
		formatNode(b, n.Left, indent, depth)
		b.WriteByte(' ')
		b.WriteString(n.Op.Value)
		b.WriteByte(' ')
		formatNode(b, n.Right, indent, depth)

	case *BlockNode:
		b.WriteString("{\n")

		for _, stmt := range n.Statements {
			b.WriteString(strings.Repeat(indent, depth+1))
			formatNode(b, stmt, indent, depth+1)
			b.WriteByte('\n')
		}

		b.WriteString(strings.Repeat(indent, depth))
		b.WriteByte('}')

	case *EndNode:
		b.WriteString(n.Value.Value)

	case *FunctionCallNode:
		b.WriteString(n.Function.Value)
		b.WriteByte('(')

		if n.Args != nil {
			for i, arg := range n.Args.Contents {
				if i > 0 {
					b.WriteString(", ")
				}

				formatNode(b, arg, indent, depth)
			}
		}

		b.WriteByte(')')

		if n.Block != nil {
			b.WriteByte(' ')
			formatNode(b, n.Block, indent, depth)
		}
	}
}
