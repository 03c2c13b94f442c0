package parser

import (
	"fmt"

	"luadoxyxml/pkg/lexer"
)

// advance returns the current token and moves to the next
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// isAtEnd checks if we're at the end of tokens
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Kind == lexer.TokenEOF
}

// peek returns the current token without advancing
func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.current]
}

// previous returns the previous token
func (p *Parser) previous() lexer.Token {
	if p.current <= 0 {
		return lexer.Token{Kind: lexer.TokenEOF}
	}
	return p.tokens[p.current-1]
}

// peekAhead looks ahead by offset tokens
func (p *Parser) peekAhead(offset int) lexer.Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[i]
}

func (p *Parser) eof() lexer.Token {
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1]
	}
	return lexer.Token{Kind: lexer.TokenEOF}
}

// match consumes the current token if it is any of the given kinds
func (p *Parser) match(kinds ...lexer.TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

// check returns true if current token is of given kind
func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

// expect consumes a token of kind or fails with "'x' expected near 'y'"
func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if !p.check(kind) {
		return p.peek(), p.errorExpected(kind.String())
	}
	return p.advance(), nil
}

// expectMatch consumes the closer of a construct opened at open
func (p *Parser) expectMatch(kind lexer.TokenKind, what lexer.TokenKind, open lexer.Token) error {
	if p.check(kind) {
		p.advance()
		return nil
	}
	if open.Pos.Line == p.peek().Pos.Line {
		return p.errorExpected(kind.String())
	}
	return p.errorf(p.peek(), "'%s' expected (to close '%s' at line %d) near %s",
		kind, what, open.Pos.Line, p.tokenText(p.peek()))
}

// expectName consumes an identifier
func (p *Parser) expectName() (lexer.Token, error) {
	if !p.check(lexer.TokenIdentifier) {
		return p.peek(), p.errorExpected("<name>")
	}
	return p.advance(), nil
}

// blockFollow reports whether the current token ends a block
func (p *Parser) blockFollow(withUntil bool) bool {
	switch p.peek().Kind {
	case lexer.TokenEOF, lexer.TokenEnd, lexer.TokenElse, lexer.TokenElseIf:
		return true
	case lexer.TokenUntil:
		return withUntil
	default:
		return false
	}
}

// tokenText renders token the way it appears in diagnostics
func (p *Parser) tokenText(token lexer.Token) string {
	switch token.Kind {
	case lexer.TokenEOF:
		return "<eof>"
	case lexer.TokenString, lexer.TokenNumber:
		if end := token.Pos.End(); end <= len(p.source.Text) {
			return "'" + p.source.Text[token.Pos.Offset:end] + "'"
		}
	}
	if token.Value != "" {
		return "'" + token.Value + "'"
	}
	return "'" + token.Kind.String() + "'"
}

func (p *Parser) errorf(token lexer.Token, format string, args ...any) error {
	return lexer.Errorf(lexer.ErrorSyntax, p.file, token.Pos, format, args...)
}

func (p *Parser) errorExpected(what string) error {
	token := p.peek()
	return p.errorf(token, "%s near %s", quoteExpected(what), p.tokenText(token))
}

func quoteExpected(what string) string {
	if what == "<name>" || what == "<eof>" {
		return what + " expected"
	}
	return fmt.Sprintf("'%s' expected", what)
}
