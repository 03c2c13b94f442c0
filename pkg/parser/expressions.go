package parser

import (
	"strings"

	"luadoxyxml/pkg/lexer"
	"luadoxyxml/pkg/module"
)

type priority struct {
	left  int
	right int
}

// binaryPriority follows the Lua 5.4 reference grammar; right < left marks
// right associative operators
var binaryPriority = map[lexer.TokenKind]priority{
	lexer.TokenOr:        {1, 1},
	lexer.TokenAnd:       {2, 2},
	lexer.TokenLess:      {3, 3},
	lexer.TokenGreater:   {3, 3},
	lexer.TokenLessEqual: {3, 3},
	lexer.TokenGreaterEq: {3, 3},
	lexer.TokenNotEqual:  {3, 3},
	lexer.TokenEqual:     {3, 3},
	lexer.TokenPipe:      {4, 4},
	lexer.TokenTilde:     {5, 5},
	lexer.TokenAmpersand: {6, 6},
	lexer.TokenShl:       {7, 7},
	lexer.TokenShr:       {7, 7},
	lexer.TokenConcat:    {9, 8},
	lexer.TokenPlus:      {10, 10},
	lexer.TokenMinus:     {10, 10},
	lexer.TokenStar:      {11, 11},
	lexer.TokenSlash:     {11, 11},
	lexer.TokenFloorDiv:  {11, 11},
	lexer.TokenPercent:   {11, 11},
	lexer.TokenCaret:     {14, 13},
}

const unaryPriority = 12

func isUnary(kind lexer.TokenKind) bool {
	switch kind {
	case lexer.TokenNot, lexer.TokenMinus, lexer.TokenHash, lexer.TokenTilde:
		return true
	default:
		return false
	}
}

// suffixedExp describes a prefix expression with its suffixes
type suffixedExp struct {
	value module.Value

	// path holds the names of a chain made only of names, '.' fields and
	// string-keyed indexes; it is nil otherwise
	path []string
	pos  lexer.Pos // position of the last name in path

	// index is the key of a trailing bracket suffix
	index module.Value

	call       bool
	assignable bool
}

// span creates a value covering the tokens from start to the previous token
func (p *Parser) span(kind module.ValueKind, start lexer.Pos) module.Value {
	value := module.NewValue(kind, p.source.Text, start)
	value.Extend(p.previous().Pos)
	return value
}

// parseExpressionList parses "exp {',' exp}". The i-th expression is owned
// by owners[i] when a table constructor or function literal is its value.
func (p *Parser) parseExpressionList(owners []module.Item) ([]module.Value, error) {
	var values []module.Value
	for {
		var owner module.Item
		if len(values) < len(owners) {
			owner = owners[len(values)]
		}

		value, err := p.parseExpression(owner)
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		if !p.match(lexer.TokenComma) {
			return values, nil
		}
	}
}

// parseExpression parses one expression. owner, when set, becomes the owner
// of a table constructed by the expression.
func (p *Parser) parseExpression(owner module.Item) (module.Value, error) {
	return p.parseSubExpression(0, owner)
}

func (p *Parser) parseSubExpression(limit int, owner module.Item) (module.Value, error) {
	start := p.peek().Pos

	var value module.Value
	if isUnary(p.peek().Kind) {
		p.advance()
		if _, err := p.parseSubExpression(unaryPriority, nil); err != nil {
			return value, err
		}
		value = p.span(module.ValueExpression, start)
	} else {
		simple, err := p.parseSimpleExpression(owner)
		if err != nil {
			return value, err
		}
		value = simple
	}

	for {
		prio, ok := binaryPriority[p.peek().Kind]
		if !ok || prio.left <= limit {
			return value, nil
		}
		p.advance()
		if _, err := p.parseSubExpression(prio.right, nil); err != nil {
			return value, err
		}
		value = p.span(module.ValueExpression, start)
	}
}

func (p *Parser) parseSimpleExpression(owner module.Item) (module.Value, error) {
	token := p.peek()

	switch token.Kind {
	case lexer.TokenNumber, lexer.TokenString, lexer.TokenNil, lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		return p.span(module.ValueConstant, token.Pos), nil
	case lexer.TokenEllipsis:
		p.advance()
		return p.span(module.ValueExpression, token.Pos), nil
	case lexer.TokenLeftBrace:
		table, err := p.parseTable(owner)
		if err != nil {
			return module.Value{}, err
		}
		value := p.span(module.ValueTable, token.Pos)
		value.Table = table
		return value, nil
	case lexer.TokenFunction:
		open := p.advance()
		fn := &module.Function{ItemBase: module.ItemBase{File: p.file, Pos: open.Pos}}
		if err := p.parseFunctionBody(fn, open, owner); err != nil {
			return module.Value{}, err
		}
		value := p.span(module.ValueFunction, token.Pos)
		value.Function = fn
		return value, nil
	default:
		exp, err := p.parseSuffixedExpression()
		return exp.value, err
	}
}

// parseSuffixedExpression parses "primaryexp { '.' NAME | '[' exp ']' | ':' NAME args | args }"
func (p *Parser) parseSuffixedExpression() (suffixedExp, error) {
	var exp suffixedExp
	start := p.peek()
	nameChain := true

	switch start.Kind {
	case lexer.TokenIdentifier:
		p.advance()
		exp.path = []string{start.Value}
		exp.pos = start.Pos
		exp.assignable = true
	case lexer.TokenLeftParen:
		p.advance()
		if _, err := p.parseExpression(nil); err != nil {
			return exp, err
		}
		if err := p.expectMatch(lexer.TokenRightParen, lexer.TokenLeftParen, start); err != nil {
			return exp, err
		}
		nameChain = false
	default:
		return exp, p.errorf(start, "unexpected symbol near %s", p.tokenText(start))
	}

	for {
		switch p.peek().Kind {
		case lexer.TokenDot:
			p.advance()
			name, err := p.expectName()
			if err != nil {
				return exp, err
			}
			if exp.path != nil {
				exp.path = append(exp.path, name.Value)
				exp.pos = name.Pos
			}
			exp.index = module.Value{}
			exp.call = false
			exp.assignable = true
		case lexer.TokenLeftBracket:
			open := p.advance()
			key := p.peek()
			index, err := p.parseExpression(nil)
			if err != nil {
				return exp, err
			}
			if err := p.expectMatch(lexer.TokenRightBracket, lexer.TokenLeftBracket, open); err != nil {
				return exp, err
			}
			if exp.path != nil && key.Kind == lexer.TokenString && index.Kind == module.ValueConstant {
				exp.path = append(exp.path, key.Value)
				exp.pos = key.Pos
			} else {
				exp.path = nil
			}
			exp.index = index
			exp.call = false
			exp.assignable = true
			nameChain = false
		case lexer.TokenColon:
			p.advance()
			if _, err := p.expectName(); err != nil {
				return exp, err
			}
			if err := p.parseCallArguments(); err != nil {
				return exp, err
			}
			exp.markCall()
			nameChain = false
		case lexer.TokenLeftParen, lexer.TokenString, lexer.TokenLeftBrace:
			if err := p.parseCallArguments(); err != nil {
				return exp, err
			}
			exp.markCall()
			nameChain = false
		default:
			kind := module.ValueExpression
			if nameChain {
				kind = module.ValueVariableRef
			}
			exp.value = p.span(kind, start.Pos)
			if nameChain {
				exp.value.Ref = strings.Join(exp.path, ".")
			}
			return exp, nil
		}
	}
}

func (e *suffixedExp) markCall() {
	e.path = nil
	e.index = module.Value{}
	e.call = true
	e.assignable = false
}

// parseCallArguments parses "'(' [explist] ')' | tableconstructor | STRING"
func (p *Parser) parseCallArguments() error {
	token := p.peek()

	switch token.Kind {
	case lexer.TokenString:
		p.advance()
		return nil
	case lexer.TokenLeftBrace:
		_, err := p.parseTable(nil)
		return err
	case lexer.TokenLeftParen:
		p.advance()
		if !p.check(lexer.TokenRightParen) {
			if _, err := p.parseExpressionList(nil); err != nil {
				return err
			}
		}
		return p.expectMatch(lexer.TokenRightParen, lexer.TokenLeftParen, token)
	default:
		return p.errorf(token, "function arguments expected near %s", p.tokenText(token))
	}
}
