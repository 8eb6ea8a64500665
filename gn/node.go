package gn

import "strconv"

// Node is one fragment of a GN statement tree.
type Node interface {
	// Location returns the position of the node's leading token.
	Location() Location

	node()
}

// ResultMode controls whether a block's value is kept after execution.
type ResultMode int

const (
	ReturnsScope ResultMode = iota
	DiscardsResult
)

// IdentifierNode references a variable or names an assignment target.
type IdentifierNode struct {
	Value Token
}

// LiteralNode holds a string, integer, or boolean token.
type LiteralNode struct {
	Value Token
}

// ListNode is a bracketed sequence of expressions.
type ListNode struct {
	Begin    Token
	Contents []Node
	End      *EndNode
}

// BinaryOpNode is an operator applied to two operands. Assignments use the
// "=", "+=", and "-=" operators with an [IdentifierNode] on the left.
type BinaryOpNode struct {
	Op    Token
	Left  Node
	Right Node
}

// BlockNode is a brace-delimited statement sequence.
type BlockNode struct {
	Begin      Token
	Statements []Node
	End        *EndNode
	ResultMode ResultMode
}

// EndNode marks the closing token of a list or block.
type EndNode struct {
	Value Token
}

// FunctionCallNode is a call such as `executable("a") { ... }` or
// `import("x.gni")`. Block is nil for calls without a body.
type FunctionCallNode struct {
	Function Token
	Args     *ListNode
	Block    *BlockNode
}

func (n *IdentifierNode) Location() Location   { return n.Value.Location }
func (n *LiteralNode) Location() Location      { return n.Value.Location }
func (n *ListNode) Location() Location         { return n.Begin.Location }
func (n *BinaryOpNode) Location() Location     { return n.Op.Location }
func (n *BlockNode) Location() Location        { return n.Begin.Location }
func (n *EndNode) Location() Location          { return n.Value.Location }
func (n *FunctionCallNode) Location() Location { return n.Function.Location }

func (*IdentifierNode) node()   {}
func (*LiteralNode) node()      {}
func (*ListNode) node()         {}
func (*BinaryOpNode) node()     {}
func (*BlockNode) node()        {}
func (*EndNode) node()          {}
func (*FunctionCallNode) node() {}

// Ident creates an identifier node.
func Ident(name string) *IdentifierNode {
	return &IdentifierNode{Value: MakeToken(TokenIdentifier, name)}
}

// StringLiteral creates a string literal from an already quoted token value.
// The caller decides how the content is quoted.
func StringLiteral(quoted string) *LiteralNode {
	return &LiteralNode{Value: MakeToken(TokenString, quoted)}
}

// BoolLiteral creates a true or false literal.
func BoolLiteral(v bool) *LiteralNode {
	if v {
		return &LiteralNode{Value: MakeToken(TokenTrue, "true")}
	}

	return &LiteralNode{Value: MakeToken(TokenFalse, "false")}
}

// IntLiteral creates an integer literal.
func IntLiteral(v int64) *LiteralNode {
	return &LiteralNode{Value: MakeToken(TokenInteger, strconv.FormatInt(v, 10))}
}

// List creates a list node containing items.
func List(items ...Node) *ListNode {
	return &ListNode{
		Begin:    MakeToken(TokenLeftBracket, "["),
		Contents: items,
		End:      &EndNode{Value: MakeToken(TokenRightBracket, "]")},
	}
}

// Assign creates the statement `name = value`.
func Assign(name string, value Node) *BinaryOpNode {
	return &BinaryOpNode{
		Op:    MakeToken(TokenEqual, "="),
		Left:  Ident(name),
		Right: value,
	}
}

// Block creates a statement block that discards its result, as the body of
// a target declaration does.
func Block(stmts ...Node) *BlockNode {
	return &BlockNode{
		Begin:      MakeToken(TokenLeftBrace, "{"),
		Statements: stmts,
		End:        &EndNode{Value: MakeToken(TokenRightBrace, "}")},
		ResultMode: DiscardsResult,
	}
}

// Call creates a function call node. A nil args is replaced with an empty
// list, and block may be nil.
func Call(function string, args *ListNode, block *BlockNode) *FunctionCallNode {
	if args == nil {
		args = List()
	}

	return &FunctionCallNode{
		Function: MakeToken(TokenIdentifier, function),
		Args:     args,
		Block:    block,
	}
}
