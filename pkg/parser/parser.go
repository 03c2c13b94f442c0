// Package parser implements the Lua declaration parser. It walks the token
// stream of one file, records the declarations found at file level into a
// module and binds structured comments to them.
package parser

import (
	"fmt"
	"log/slog"
	"os"

	"luadoxyxml/pkg/dox"
	"luadoxyxml/pkg/lexer"
	"luadoxyxml/pkg/module"
)

// Parser implements a recursive-descent parser over Lua 5.4 sources
type Parser struct {
	module *module.Module
	host   *module.DoxyHost
	logger *slog.Logger

	file   string
	source *module.Source
	doxy   *dox.Parser

	tokens   []lexer.Token
	comments [][]lexer.Token // structured comments preceding tokens[i]
	current  int
	flushed  int

	scopes    []int
	nextScope int
	funcDepth int

	lastDeclared module.Item
	header       module.Item // function whose parameter list ended on headerLine
	headerLine   int

	locals map[string]module.Item
}

// New creates a parser adding declarations to m
func New(m *module.Module) *Parser {
	return &Parser{
		module: m,
		host:   m.Host(),
		logger: m.Logger(),
	}
}

// ParseFile reads and parses the Lua file at path
func (p *Parser) ParseFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(path, content)
}

// Parse parses content as the Lua source named file. The first lexical or
// syntax error aborts the file and is returned as a *lexer.SourceError.
func (p *Parser) Parse(file string, content []byte) error {
	p.reset(file, content)

	p.host.Setup(p)
	defer p.host.Setup(nil)

	if err := p.split(lexer.NewTokenizer(p.source.Text).Tokenize()); err != nil {
		return err
	}

	if err := p.parseBlock(); err != nil {
		return err
	}
	if !p.isAtEnd() {
		return p.errorExpected("<eof>")
	}

	p.leaveFileScope()
	p.logger.Debug("parsed file", "file", file, "tokens", len(p.tokens))
	return nil
}

func (p *Parser) reset(file string, content []byte) {
	p.file = file
	p.source = p.module.AddSource(file, content)
	p.doxy = dox.NewParser(p.module.Doxy)
	p.tokens = nil
	p.comments = nil
	p.current = 0
	p.flushed = 0
	p.scopes = []int{0}
	p.nextScope = 0
	p.funcDepth = 0
	p.lastDeclared = nil
	p.header = nil
	p.headerLine = 0
	p.locals = make(map[string]module.Item)
}

// split separates structured comments from the main token stream, attaching
// each run of comments to the main token that follows it
func (p *Parser) split(tokens []lexer.Token) error {
	var pending []lexer.Token
	for _, token := range tokens {
		switch {
		case token.Kind == lexer.TokenError:
			return lexer.ErrorFromToken(p.file, token)
		case token.Kind.IsDoxyComment():
			pending = append(pending, token)
		default:
			p.tokens = append(p.tokens, token)
			p.comments = append(p.comments, pending)
			pending = nil
		}
	}
	return nil
}

// CurrentScope returns the id of the innermost lexical block
func (p *Parser) CurrentScope() int {
	if len(p.scopes) == 0 {
		return 0
	}
	return p.scopes[len(p.scopes)-1]
}

func (p *Parser) enterScope() {
	p.nextScope++
	p.scopes = append(p.scopes, p.nextScope)
	p.doxy.DiscardBlock()
}

func (p *Parser) leaveScope() {
	id := p.CurrentScope()
	p.scopes = p.scopes[:len(p.scopes)-1]
	p.doxy.LeaveNamespace(id)
	p.doxy.DiscardBlock()
}

func (p *Parser) leaveFileScope() {
	p.doxy.LeaveNamespace(0)
	p.doxy.DiscardBlock()
}

// atFileScope reports whether local declarations are recorded here
func (p *Parser) atFileScope() bool {
	return p.funcDepth == 0 && len(p.scopes) == 1
}

// flushComments feeds the comments preceding the current token to the
// comment parser. Comments skipped over in the middle of an expression are
// never flushed. Inside function bodies only a retroactive comment on the
// header line is kept.
func (p *Parser) flushComments() {
	if p.current < p.flushed || p.current >= len(p.comments) {
		return
	}
	comments := p.comments[p.current]
	p.flushed = p.current + 1

	var prev *lexer.Token
	for i := range comments {
		comment := &comments[i]
		if p.funcDepth > 0 {
			if comment.Retroactive && p.header != nil && comment.Pos.Line == p.headerLine {
				p.doxy.AddComment(comment.Value, p.file, comment.Pos, false, p.header)
			}
			continue
		}

		if comment.Retroactive {
			if p.lastDeclared == nil {
				p.module.Doxy.Warn(p.file, comment.Pos, "retroactive comment without preceding declaration")
			} else {
				p.doxy.AddComment(comment.Value, p.file, comment.Pos, false, p.lastDeclared)
			}
			prev = comment
			continue
		}

		canAppend := prev != nil && !prev.Retroactive &&
			prev.Kind == lexer.TokenDoxyCommentSL && comment.Kind == lexer.TokenDoxyCommentSL &&
			comment.Pos.Line == prev.Pos.Line+1
		p.doxy.AddComment(comment.Value, p.file, comment.Pos, canAppend, nil)
		prev = comment
	}
}

// declare hands the pending block to item and records it in the module
func (p *Parser) declare(item module.Item) {
	if block := p.doxy.PopBlock(); block != nil {
		p.host.SetItemBlock(item, block)
	}
	p.module.AddItem(item)
	p.lastDeclared = item
}

// declaring reports whether declarations are recorded at this point
func (p *Parser) declaring() bool {
	return p.funcDepth == 0
}
