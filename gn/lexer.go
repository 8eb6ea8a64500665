package gn

import (
	"unicode"
	"unicode/utf8"
)

// lexer converts GN source text into tokens.
type lexer struct {
	input []byte
	file  string
	pos   int
	line  int
	col   int
}

// Tokenize splits src into tokens. Comments and whitespace are dropped, and
// the final token is always [TokenEOF].
func Tokenize(file string, src []byte) ([]Token, error) {
	l := &lexer{input: src, file: file, line: 1, col: 1}

	var toks []Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Type == TokenEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (Token, *Err) {
	l.skipWhitespaceAndComments()

	loc := l.location()

	if l.eof() {
		return Token{Type: TokenEOF, Location: loc}, nil
	}

	start := l.pos
	ch := l.peek()

	emit := func(typ TokenType) (Token, *Err) {
		return Token{Type: typ, Value: string(l.input[start:l.pos]), Location: loc}, nil
	}

	switch {
	case isIdentifierStart(ch):
		for !l.eof() && isIdentifierContinue(l.peek()) {
			l.advance()
		}

		switch string(l.input[start:l.pos]) {
		case "true":
			return emit(TokenTrue)
		case "false":
			return emit(TokenFalse)
		}

		return emit(TokenIdentifier)

	case isDigit(ch) || (ch == '-' && isDigit(l.peekAt(1))):
		l.advance()

		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}

		return emit(TokenInteger)

	case ch == '"':
		if err := l.skipString(loc); err != nil {
			return Token{}, err
		}

		return emit(TokenString)
	}

	l.advance()

	switch ch {
	case '(':
		return emit(TokenLeftParen)
	case ')':
		return emit(TokenRightParen)
	case '[':
		return emit(TokenLeftBracket)
	case ']':
		return emit(TokenRightBracket)
	case '{':
		return emit(TokenLeftBrace)
	case '}':
		return emit(TokenRightBrace)
	case ',':
		return emit(TokenComma)
	case '.':
		return emit(TokenDot)
	case '=':
		if l.accept('=') {
			return emit(TokenOperator)
		}

		return emit(TokenEqual)
	case '+':
		if l.accept('=') {
			return emit(TokenPlusEqual)
		}

		return emit(TokenOperator)
	case '-':
		if l.accept('=') {
			return emit(TokenMinusEqual)
		}

		return emit(TokenOperator)
	case '!', '<', '>':
		l.accept('=')

		return emit(TokenOperator)
	case '&':
		if l.accept('&') {
			return emit(TokenOperator)
		}
	case '|':
		if l.accept('|') {
			return emit(TokenOperator)
		}
	}

	return Token{}, &Err{
		Location: loc,
		Message:  "Invalid token.",
		Help:     "I have no idea what this is: " + string(l.input[start:l.pos]),
	}
}

func (l *lexer) skipString(loc Location) *Err {
	l.advance() // opening quote

	for !l.eof() {
		switch l.peek() {
		case '\\':
			l.advance()

			if !l.eof() {
				l.advance()
			}

			continue

		case '"':
			l.advance()

			return nil

		case '\n':
			return &Err{Location: loc, Message: "Unterminated string literal."}
		}

		l.advance()
	}

	return &Err{Location: loc, Message: "Unterminated string literal."}
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		switch r := l.peek(); {
		case r == '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case unicode.IsSpace(r):
			l.advance()

		default:
			return
		}
	}
}

func (l *lexer) peek() rune { return l.peekAt(0) }

// peekAt returns the rune n bytes ahead. It is only used for ASCII lookahead.
func (l *lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos+n:])

	return r
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) accept(ch rune) bool {
	if l.peek() == ch {
		l.advance()

		return true
	}

	return false
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) location() Location {
	return Location{File: l.file, Line: l.line, Column: l.col}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
