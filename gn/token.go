package gn

import "strconv"

// Location identifies a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// SyntheticLocation is stamped on every token constructed programmatically.
// The execution core requires a location on each token even when the node
// has no source origin.
var SyntheticLocation = Location{Line: 42, Column: 42}

// String renders the location as "file:line:column".
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<synthetic>"
	}

	return file + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column)
}

// IsSynthetic reports whether l is the sentinel synthetic location.
func (l Location) IsSynthetic() bool {
	return l == SyntheticLocation
}

// TokenType classifies a [Token].
type TokenType int

const (
	TokenInvalid TokenType = iota
	TokenIdentifier
	TokenString
	TokenInteger
	TokenTrue
	TokenFalse
	TokenEqual
	TokenPlusEqual
	TokenMinusEqual
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenLeftBrace
	TokenRightBrace
	TokenComma
	TokenDot
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenIdentifier:
		return "identifier"
	case TokenString:
		return "string"
	case TokenInteger:
		return "integer"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenEqual:
		return "="
	case TokenPlusEqual:
		return "+="
	case TokenMinusEqual:
		return "-="
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenLeftBracket:
		return "["
	case TokenRightBracket:
		return "]"
	case TokenLeftBrace:
		return "{"
	case TokenRightBrace:
		return "}"
	case TokenComma:
		return ","
	case TokenDot:
		return "."
	case TokenEOF:
		return "EOF"
	default:
		return "invalid"
	}
}

// Token is a single lexical element. String tokens keep their surrounding
// quotes in Value.
type Token struct {
	Type     TokenType
	Value    string
	Location Location
}

// MakeToken returns a token stamped with [SyntheticLocation].
func MakeToken(typ TokenType, value string) Token {
	return Token{Type: typ, Value: value, Location: SyntheticLocation}
}
