package parser

import (
	"luadoxyxml/pkg/lexer"
)

// parseBlock parses statements until a block terminator
func (p *Parser) parseBlock() error {
	for {
		p.flushComments()
		if p.blockFollow(true) {
			return nil
		}

		if p.check(lexer.TokenReturn) {
			err := p.parseReturn()
			p.doxy.DiscardBlock()
			return err
		}

		p.lastDeclared = nil
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.doxy.DiscardBlock()
	}
}

// parseScopedBlock parses a block in a new lexical scope
func (p *Parser) parseScopedBlock() error {
	p.enterScope()
	err := p.parseBlock()
	p.leaveScope()
	return err
}

func (p *Parser) parseStatement() error {
	token := p.peek()

	switch token.Kind {
	case lexer.TokenSemicolon:
		p.advance()
		return nil
	case lexer.TokenDoubleColon:
		return p.parseLabel()
	case lexer.TokenBreak:
		p.advance()
		return nil
	case lexer.TokenGoto:
		p.advance()
		_, err := p.expectName()
		return err
	case lexer.TokenDo:
		return p.parseDo()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenRepeat:
		return p.parseRepeat()
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenFunction:
		return p.parseFunctionStatement()
	case lexer.TokenLocal:
		p.advance()
		if p.match(lexer.TokenFunction) {
			return p.parseLocalFunction()
		}
		return p.parseLocal()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLabel() error {
	p.advance()
	if _, err := p.expectName(); err != nil {
		return err
	}
	_, err := p.expect(lexer.TokenDoubleColon)
	return err
}

func (p *Parser) parseReturn() error {
	p.advance()
	if !p.blockFollow(true) && !p.check(lexer.TokenSemicolon) {
		if _, err := p.parseExpressionList(nil); err != nil {
			return err
		}
	}
	p.match(lexer.TokenSemicolon)
	p.flushComments()
	if !p.blockFollow(true) {
		return p.errorExpected("<eof>")
	}
	return nil
}

func (p *Parser) parseDo() error {
	open := p.advance()
	if err := p.parseScopedBlock(); err != nil {
		return err
	}
	p.lastDeclared = nil
	return p.expectMatch(lexer.TokenEnd, lexer.TokenDo, open)
}

func (p *Parser) parseWhile() error {
	open := p.advance()
	if _, err := p.parseExpression(nil); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokenDo); err != nil {
		return err
	}
	if err := p.parseScopedBlock(); err != nil {
		return err
	}
	p.lastDeclared = nil
	return p.expectMatch(lexer.TokenEnd, lexer.TokenWhile, open)
}

func (p *Parser) parseRepeat() error {
	open := p.advance()

	// the condition sees the body's scope
	p.enterScope()
	defer p.leaveScope()

	if err := p.parseBlock(); err != nil {
		return err
	}
	if err := p.expectMatch(lexer.TokenUntil, lexer.TokenRepeat, open); err != nil {
		return err
	}
	_, err := p.parseExpression(nil)
	p.lastDeclared = nil
	return err
}

func (p *Parser) parseIf() error {
	open := p.advance()
	if err := p.parseCondition(); err != nil {
		return err
	}

	for p.check(lexer.TokenElseIf) {
		p.advance()
		if err := p.parseCondition(); err != nil {
			return err
		}
	}

	if p.match(lexer.TokenElse) {
		if err := p.parseScopedBlock(); err != nil {
			return err
		}
	}

	p.lastDeclared = nil
	return p.expectMatch(lexer.TokenEnd, lexer.TokenIf, open)
}

// parseCondition parses "exp then block"
func (p *Parser) parseCondition() error {
	if _, err := p.parseExpression(nil); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokenThen); err != nil {
		return err
	}
	return p.parseScopedBlock()
}

func (p *Parser) parseFor() error {
	open := p.advance()
	if _, err := p.expectName(); err != nil {
		return err
	}

	switch p.peek().Kind {
	case lexer.TokenAssign:
		p.advance()
		if err := p.parseForRange(); err != nil {
			return err
		}
	case lexer.TokenComma, lexer.TokenIn:
		for p.match(lexer.TokenComma) {
			if _, err := p.expectName(); err != nil {
				return err
			}
		}
		if _, err := p.expect(lexer.TokenIn); err != nil {
			return err
		}
		if _, err := p.parseExpressionList(nil); err != nil {
			return err
		}
	default:
		return p.errorExpected("=' or 'in")
	}

	if _, err := p.expect(lexer.TokenDo); err != nil {
		return err
	}
	if err := p.parseScopedBlock(); err != nil {
		return err
	}
	p.lastDeclared = nil
	return p.expectMatch(lexer.TokenEnd, lexer.TokenFor, open)
}

// parseForRange parses "exp, exp [, exp]" of a numeric for
func (p *Parser) parseForRange() error {
	if _, err := p.parseExpression(nil); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokenComma); err != nil {
		return err
	}
	if _, err := p.parseExpression(nil); err != nil {
		return err
	}
	if p.match(lexer.TokenComma) {
		if _, err := p.parseExpression(nil); err != nil {
			return err
		}
	}
	return nil
}
