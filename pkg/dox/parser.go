package dox

import (
	"strconv"
	"strings"

	"luadoxyxml/pkg/lexer"
)

type descriptionKind int

const (
	descriptionDetailed descriptionKind = iota
	descriptionBrief
	descriptionSeeAlso
)

type groupStackEntry struct {
	scope int
	group *Group
}

// Parser turns structured comments into blocks. It keeps the block pending
// for the next declaration and the stack of active @{ groups.
type Parser struct {
	manager *Manager
	host    Host

	block      *Block
	groupStack []groupStackEntry

	// where a continuation comment line resumes writing
	appendBlock *Block
	appendKind  descriptionKind
	appendGroup *Group

	overloadName string
	overloadIdx  int
}

// NewParser creates a comment parser feeding manager
func NewParser(manager *Manager) *Parser {
	return &Parser{
		manager: manager,
		host:    manager.host,
	}
}

// PendingBlock returns the block waiting for the next declaration
func (p *Parser) PendingBlock() *Block {
	return p.block
}

// commentState tracks the block and section one comment writes into
type commentState struct {
	block *Block
	kind  descriptionKind
	group *Group
	file  string
	pos   lexer.Pos
}

// AddComment parses one comment body. A non-nil lastDeclared item makes the
// comment retroactive: it is merged into that item's block. Otherwise the
// comment continues the block the previous comment wrote into (pending,
// group or footnote) when canAppend is set, or starts a new pending block.
func (p *Parser) AddComment(comment, file string, pos lexer.Pos, canAppend bool, lastDeclared Item) {
	state := &commentState{file: file, pos: pos}
	retroactive := lastDeclared != nil

	switch {
	case retroactive:
		state.block = p.host.GetItemBlock(lastDeclared)
		if state.block.File == "" {
			state.block.File = file
			state.block.Pos = pos
		}
	case canAppend && p.appendBlock != nil:
		state.block = p.appendBlock
		state.kind = p.appendKind
		state.group = p.appendGroup
	default:
		if p.block != nil && !p.block.hasTarget && !p.block.IsEmpty() {
			p.manager.logger.Debug("dropping unattached documentation block", "file", p.block.File, "line", p.block.Pos.Line)
		}
		p.block = p.manager.CreateBlock(file, pos)
		state.block = p.block
	}

	origin := state.block
	if origin.Source != "" {
		origin.Source += "\n"
	}
	origin.Source += comment

	if strings.TrimSpace(comment) == "" {
		if state.kind != descriptionDetailed {
			state.kind = descriptionDetailed
		} else {
			p.appendNewLine(state, "")
		}
	} else {
		p.appendNewLine(state, "")
		p.parseTokens(state, NewLexer(comment).Tokenize())
	}

	if !retroactive {
		p.appendBlock = state.block
		p.appendKind = state.kind
		p.appendGroup = state.group
	}
}

func (p *Parser) parseTokens(state *commentState, tokens []Token) {
	indent := ""
	haveIndent := false

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		switch token.Kind {
		case TokenEOF:
			return

		case TokenNewLine:
			next := tokens[i+1].Kind
			if next == TokenNewLine || next == TokenEOF {
				if next == TokenNewLine && state.kind != descriptionDetailed {
					state.kind = descriptionDetailed
				} else {
					p.appendNewLine(state, "")
				}
				continue
			}

			if !haveIndent {
				indent = token.Value
				haveIndent = true
			}
			p.appendNewLine(state, strings.TrimPrefix(token.Value, indent))

		case TokenText:
			p.appendText(state, token.Value)

		case TokenOpeningBrace:
			p.openGroupRegion(state)

		case TokenClosingBrace:
			p.closeGroupRegion(state)

		case TokenFootnote:
			state.block = p.manager.CreateFootnote(state.block)
			state.kind = descriptionDetailed

		case TokenBrief:
			state.kind = descriptionBrief

		case TokenSeeAlso:
			state.kind = descriptionSeeAlso

		case TokenTitle:
			state.block.Title = strings.TrimSpace(takeRest(tokens, i+1))

		case TokenImport:
			if name := takeWord(tokens, i+1); name != "" {
				state.block.Imports = append(state.block.Imports, name)
			} else {
				p.manager.Warn(state.file, state.pos, "missing import name")
			}

		case TokenGroup, TokenSubGroup:
			p.defineGroup(state, token.Kind, tokens, i+1)

		case TokenInGroup:
			name := takeWord(tokens, i+1)
			if name == "" {
				p.manager.Warn(state.file, state.pos, "missing group name", "command", token.Kind.String())
				continue
			}
			group := p.manager.GetGroup(name)
			state.block.Group = group
			state.group = group

		case TokenOtherCommand:
			param := peekWord(tokens, i+1)
			handled, paramUsed := p.host.ProcessCustomCommand(token.Value, param, state.block)
			if !handled {
				p.appendText(state, token.Raw)
				continue
			}
			if paramUsed {
				takeWord(tokens, i+1)
			}

		default:
			if token.Kind.IsTarget() {
				p.setTarget(state, token.Kind, tokens, i+1)
			}
		}
	}
}

func (p *Parser) setTarget(state *commentState, kind TokenKind, tokens []Token, next int) {
	name := takeWord(tokens, next)
	if name == "" {
		p.manager.Warn(state.file, state.pos, "missing target name", "command", kind.String())
		return
	}

	overloadIdx := 0
	if kind == TokenOverload {
		if name == p.overloadName {
			p.overloadIdx++
		} else {
			p.overloadName = name
			p.overloadIdx = 1
		}
		overloadIdx = p.overloadIdx
	} else if word := peekWord(tokens, next); word != "" {
		if idx, err := strconv.Atoi(word); err == nil && idx >= 0 {
			overloadIdx = idx
		}
	}

	takeRest(tokens, next)
	p.manager.SetBlockTarget(state.block, kind, name, overloadIdx)
}

func (p *Parser) defineGroup(state *commentState, kind TokenKind, tokens []Token, next int) {
	name := takeWord(tokens, next)
	if name == "" {
		p.manager.Warn(state.file, state.pos, "missing group name", "command", kind.String())
		return
	}

	group := p.manager.GetGroup(name)
	if title := strings.TrimSpace(takeRest(tokens, next)); title != "" {
		group.Title = title
	}
	if group.File == "" {
		group.File = state.file
		group.Pos = state.pos
	}

	if active := p.ActiveGroup(); active != nil && active != group && group.Group == nil {
		group.Group = active
	}

	// the rest of the comment documents the group itself
	if state.block == p.block {
		p.block = nil
	}
	state.block = &group.Block
	state.kind = descriptionDetailed
	state.group = group
}

func (p *Parser) openGroupRegion(state *commentState) {
	group := state.group
	if group == nil {
		group = state.block.Group
	}
	if group == nil {
		p.manager.Warn(state.file, state.pos, "@{ without a group")
		return
	}

	p.groupStack = append(p.groupStack, groupStackEntry{
		scope: p.host.GetCurrentNamespace(),
		group: group,
	})
}

func (p *Parser) closeGroupRegion(state *commentState) {
	if len(p.groupStack) == 0 {
		p.manager.Warn(state.file, state.pos, "unmatched @}")
		return
	}
	p.groupStack = p.groupStack[:len(p.groupStack)-1]
}

// ActiveGroup returns the group of the innermost @{ region opened in the
// current scope, or nil
func (p *Parser) ActiveGroup() *Group {
	if len(p.groupStack) == 0 {
		return nil
	}

	top := p.groupStack[len(p.groupStack)-1]
	if top.scope != p.host.GetCurrentNamespace() {
		return nil
	}
	return top.group
}

// LeaveNamespace closes every @{ region opened in scope
func (p *Parser) LeaveNamespace(scope int) {
	for len(p.groupStack) > 0 && p.groupStack[len(p.groupStack)-1].scope == scope {
		p.groupStack = p.groupStack[:len(p.groupStack)-1]
	}
}

// PopBlock hands the pending block to the declaration being created. Blocks
// bound through a target command are not handed out. Inside an active @{
// region the returned block always carries the region's group.
func (p *Parser) PopBlock() *Block {
	block := p.block
	p.block = nil
	p.resetAppend()

	if block != nil && block.hasTarget {
		block = nil
	}

	if group := p.ActiveGroup(); group != nil {
		if block == nil {
			block = p.manager.CreateBlock("", lexer.Pos{})
		}
		if block.Group == nil {
			block.Group = group
		}
	}

	return block
}

// DiscardBlock drops the pending block
func (p *Parser) DiscardBlock() {
	p.block = nil
	p.resetAppend()
}

func (p *Parser) resetAppend() {
	p.appendBlock = nil
	p.appendKind = descriptionDetailed
	p.appendGroup = nil
}

func (p *Parser) appendText(state *commentState, text string) {
	block := state.block
	switch state.kind {
	case descriptionBrief:
		block.Brief = appendDescription(block.Brief, text)
	case descriptionSeeAlso:
		for _, name := range strings.FieldsFunc(text, isSeeAlsoSeparator) {
			name = strings.TrimSuffix(name, "()")
			if name != "" {
				p.manager.AddSeeAlso(block, name)
			}
		}
	default:
		block.Detailed = appendDescription(block.Detailed, text)
	}
}

func (p *Parser) appendNewLine(state *commentState, indent string) {
	block := state.block
	switch state.kind {
	case descriptionBrief:
		if block.Brief != "" {
			block.Brief += "\n" + indent
		}
	case descriptionDetailed:
		if block.Detailed != "" {
			block.Detailed += "\n" + indent
		}
	}
}

func appendDescription(description, text string) string {
	if description == "" || strings.HasSuffix(description, "\n") {
		text = strings.TrimLeft(text, " \t")
	}
	return description + text
}

func isSeeAlsoSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t'
}

// peekWord returns the first word of the text token at i without consuming it
func peekWord(tokens []Token, i int) string {
	if i >= len(tokens) || tokens[i].Kind != TokenText {
		return ""
	}
	word, _ := splitWord(tokens[i].Value)
	return word
}

// takeWord consumes the first word of the text token at i
func takeWord(tokens []Token, i int) string {
	if i >= len(tokens) || tokens[i].Kind != TokenText {
		return ""
	}
	word, rest := splitWord(tokens[i].Value)
	tokens[i].Value = rest
	return word
}

// takeRest consumes what is left of the text token at i
func takeRest(tokens []Token, i int) string {
	if i >= len(tokens) || tokens[i].Kind != TokenText {
		return ""
	}
	rest := tokens[i].Value
	tokens[i].Value = ""
	return rest
}
