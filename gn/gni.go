package gn

// Template is a template definition found in an import file.
type Template struct {
	Name string
	// Kind is the target function the template expands to, or empty when
	// the body does not declare `kind(target_name)`.
	Kind     string
	Location Location
}

// Module is the exported content of one import file: the templates it
// defines, the files it imports, and the variables it assigns at top level
// or inside declare_args().
type Module struct {
	File      string
	Imports   []Import
	Templates []*Template
	Vars      map[string]Value
	VarOrder  []string
}

// Import is one import() call found in a module.
type Import struct {
	Path     string
	Location Location
}

// ParseModule scans an import file. Only the top-level structure is
// interpreted; conditionals and other calls are skipped.
func ParseModule(file string, src []byte) (*Module, error) {
	toks, err := Tokenize(file, src)
	if err != nil {
		return nil, err
	}

	p := &moduleParser{
		toks: toks,
		mod:  &Module{File: file, Vars: map[string]Value{}},
	}

	if err := p.statements(false, true); err != nil {
		return nil, err
	}

	return p.mod, nil
}

type moduleParser struct {
	toks []Token
	pos  int
	mod  *Module
}

// statements parses statements until EOF, or until the closing brace when
// inBlock is set. Assignments are recorded only when collect is set.
func (p *moduleParser) statements(inBlock, collect bool) *Err {
	for {
		tok := p.peek()

		switch {
		case tok.Type == TokenEOF:
			if inBlock {
				return &Err{Location: tok.Location, Message: "Unexpected end of file.",
					Help: "A block is missing its closing \"}\"."}
			}

			return nil

		case tok.Type == TokenRightBrace && inBlock:
			p.pos++

			return nil

		case tok.Type != TokenIdentifier:
			return &Err{Location: tok.Location, Message: "Unexpected token.",
				Help: "Expected a statement, found \"" + tok.Value + "\"."}
		}

		var err *Err

		switch p.peekAt(1).Type {
		case TokenEqual, TokenPlusEqual, TokenMinusEqual:
			err = p.assignment(collect)
		case TokenLeftParen:
			err = p.call(collect)
		default:
			next := p.peekAt(1)
			err = &Err{Location: next.Location, Message: "Unexpected token.",
				Help: "Expected \"=\" or \"(\" after \"" + tok.Value + "\"."}
		}

		if err != nil {
			return err
		}
	}
}

func (p *moduleParser) assignment(collect bool) *Err {
	name := p.take()
	op := p.take()

	start := p.pos
	if err := p.skipExpression(); err != nil {
		return err
	}

	if !collect {
		return nil
	}

	expr, ok := simpleExpr(p.toks[start:p.pos])
	if !ok {
		return nil
	}

	value, err := evalExpr(expr, p.lookup)
	if err != nil {
		// Values depending on names defined elsewhere are not exported.
		return nil
	}

	prev, exists := p.mod.Vars[name.Value]

	switch op.Type {
	case TokenPlusEqual:
		if !exists || prev.Type != ValueList || value.Type != ValueList {
			return nil
		}

		value = ListValue(append(append([]Value(nil), prev.List...), value.List...)...)

	case TokenMinusEqual:
		return nil
	}

	if !exists {
		p.mod.VarOrder = append(p.mod.VarOrder, name.Value)
	}

	p.mod.Vars[name.Value] = value

	return nil
}

func (p *moduleParser) call(collect bool) *Err {
	fn := p.take()

	argStart := p.pos + 1
	if err := p.skipGroup(TokenLeftParen, TokenRightParen); err != nil {
		return err
	}

	args := p.toks[argStart : p.pos-1]

	switch fn.Value {
	case "import":
		path, ok := stringArg(args)
		if !ok {
			return &Err{Location: fn.Location, Message: "import() requires one string argument."}
		}

		p.mod.Imports = append(p.mod.Imports, Import{Path: path, Location: fn.Location})

		return nil

	case "template":
		name, ok := stringArg(args)
		if !ok {
			return &Err{Location: fn.Location, Message: "template() requires one string argument."}
		}

		if p.peek().Type != TokenLeftBrace {
			return &Err{Location: fn.Location, Message: "Expected a block after template()."}
		}

		bodyStart := p.pos + 1
		if err := p.skipGroup(TokenLeftBrace, TokenRightBrace); err != nil {
			return err
		}

		p.mod.Templates = append(p.mod.Templates, &Template{
			Name:     name,
			Kind:     expandedKind(p.toks[bodyStart : p.pos-1]),
			Location: fn.Location,
		})

		return nil

	case "declare_args":
		if p.peek().Type != TokenLeftBrace {
			return &Err{Location: fn.Location, Message: "Expected a block after declare_args()."}
		}

		p.pos++

		return p.statements(true, collect)

	case "if":
		if err := p.skipBlock(); err != nil {
			return err
		}

		for p.peek().Type == TokenIdentifier && p.peek().Value == "else" {
			p.pos++

			if p.peek().Type == TokenIdentifier && p.peek().Value == "if" {
				p.pos++

				if err := p.skipGroup(TokenLeftParen, TokenRightParen); err != nil {
					return err
				}
			}

			if err := p.skipBlock(); err != nil {
				return err
			}
		}

		return nil
	}

	if p.peek().Type == TokenLeftBrace {
		return p.skipBlock()
	}

	return nil
}

// skipExpression advances past one expression.
func (p *moduleParser) skipExpression() *Err {
	for {
		// Unary prefix operators.
		for p.peek().Type == TokenOperator && (p.peek().Value == "!" || p.peek().Value == "-") {
			p.pos++
		}

		switch tok := p.peek(); tok.Type {
		case TokenLeftBracket:
			if err := p.skipGroup(TokenLeftBracket, TokenRightBracket); err != nil {
				return err
			}

		case TokenLeftParen:
			if err := p.skipGroup(TokenLeftParen, TokenRightParen); err != nil {
				return err
			}

		case TokenLeftBrace:
			if err := p.skipGroup(TokenLeftBrace, TokenRightBrace); err != nil {
				return err
			}

		case TokenIdentifier, TokenString, TokenInteger, TokenTrue, TokenFalse:
			p.pos++

		default:
			return &Err{Location: tok.Location, Message: "Expected an expression.",
				Help: "Found \"" + tok.Value + "\"."}
		}

		// Postfix: calls, subscripts, and member access bind to the operand.
		for {
			switch p.peek().Type {
			case TokenLeftParen:
				if err := p.skipGroup(TokenLeftParen, TokenRightParen); err != nil {
					return err
				}

				continue

			case TokenLeftBracket:
				if err := p.skipGroup(TokenLeftBracket, TokenRightBracket); err != nil {
					return err
				}

				continue

			case TokenDot:
				p.pos += 2

				continue
			}

			break
		}

		if p.peek().Type != TokenOperator {
			return nil
		}

		p.pos++
	}
}

func (p *moduleParser) skipBlock() *Err {
	if p.peek().Type != TokenLeftBrace {
		tok := p.peek()

		return &Err{Location: tok.Location, Message: "Expected \"{\"."}
	}

	return p.skipGroup(TokenLeftBrace, TokenRightBrace)
}

// skipGroup advances past a balanced group that starts at the current token.
func (p *moduleParser) skipGroup(open, closing TokenType) *Err {
	start := p.peek()
	if start.Type != open {
		return &Err{Location: start.Location, Message: "Expected \"" + open.String() + "\"."}
	}

	depth := 0

	for {
		tok := p.take()

		switch tok.Type {
		case TokenEOF:
			return &Err{Location: start.Location, Message: "Unterminated group.",
				Help: "Missing closing \"" + closing.String() + "\"."}
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

func (p *moduleParser) lookup(name string) (Value, bool) {
	v, ok := p.mod.Vars[name]

	return v, ok
}

func (p *moduleParser) peek() Token { return p.peekAt(0) }

func (p *moduleParser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.pos+n]
}

func (p *moduleParser) take() Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

// simpleExpr converts a token run holding a single literal, identifier, or
// flat list of those into a node. It reports false for anything else.
func simpleExpr(toks []Token) (Node, bool) {
	if len(toks) == 1 {
		return primary(toks[0])
	}

	if len(toks) < 2 || toks[0].Type != TokenLeftBracket ||
		toks[len(toks)-1].Type != TokenRightBracket {
		return nil, false
	}

	list := &ListNode{
		Begin: toks[0],
		End:   &EndNode{Value: toks[len(toks)-1]},
	}

	inner := toks[1 : len(toks)-1]
	for i := 0; i < len(inner); i++ {
		item, ok := primary(inner[i])
		if !ok {
			return nil, false
		}

		list.Contents = append(list.Contents, item)

		if i+1 < len(inner) {
			if inner[i+1].Type != TokenComma {
				return nil, false
			}

			i++
		}
	}

	return list, true
}

func primary(tok Token) (Node, bool) {
	switch tok.Type {
	case TokenString, TokenInteger, TokenTrue, TokenFalse:
		return &LiteralNode{Value: tok}, true
	case TokenIdentifier:
		return &IdentifierNode{Value: tok}, true
	default:
		return nil, false
	}
}

func stringArg(args []Token) (string, bool) {
	if len(args) != 1 || args[0].Type != TokenString {
		return "", false
	}

	return Unquote(args[0].Value)
}

// expandedKind finds the first `kind(target_name)` call in a template body
// whose function is a known target kind.
func expandedKind(body []Token) string {
	for i := 0; i+3 < len(body); i++ {
		if body[i].Type == TokenIdentifier &&
			body[i+1].Type == TokenLeftParen &&
			body[i+2].Type == TokenIdentifier && body[i+2].Value == "target_name" &&
			body[i+3].Type == TokenRightParen {
			if _, ok := Kinds[body[i].Value]; ok {
				return body[i].Value
			}
		}
	}

	return ""
}
