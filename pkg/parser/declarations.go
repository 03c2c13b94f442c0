package parser

import (
	"luadoxyxml/pkg/lexer"
	"luadoxyxml/pkg/module"
)

// parseFunctionStatement parses "function funcname funcbody"
func (p *Parser) parseFunctionStatement() error {
	open := p.advance()

	name, err := p.expectName()
	if err != nil {
		return err
	}

	decl := module.FunctionName{Path: []string{name.Value}}
	last := name
	for p.match(lexer.TokenDot) {
		if last, err = p.expectName(); err != nil {
			return err
		}
		decl.Path = append(decl.Path, last.Value)
	}
	if p.match(lexer.TokenColon) {
		if last, err = p.expectName(); err != nil {
			return err
		}
		decl.Path = append(decl.Path, last.Value)
		decl.IsMethod = true
	}

	fn := &module.Function{
		ItemBase: module.ItemBase{Name: last.Value, File: p.file, Pos: last.Pos},
		Decl:     decl,
	}

	item := p.declareFunction(fn, open, last)
	if err := p.parseFunctionBody(fn, open, item); err != nil {
		return err
	}

	if field, ok := item.(*module.Field); ok {
		field.Initializer.Extend(p.previous().Pos)
	}
	p.lastDeclared = item
	return nil
}

// declareFunction records fn as a global function or, for a dotted name, as
// a field of the table the name's prefix resolves to. It returns nil when
// nothing was declared.
func (p *Parser) declareFunction(fn *module.Function, open, name lexer.Token) module.Item {
	if !p.declaring() {
		return nil
	}

	path := fn.Decl.Path
	if len(path) == 1 {
		if _, ok := p.locals[fn.Name]; ok {
			fn.Local = true
		}
		p.declare(fn)
		return fn
	}

	table := p.resolveTable(path[:len(path)-1])
	if table == nil {
		p.module.Doxy.Warn(p.file, name.Pos, "function owner is not a declared table", "name", fn.Decl.FullName())
		p.doxy.DiscardBlock()
		return nil
	}

	field := &module.Field{
		Variable: module.Variable{
			ItemBase:    module.ItemBase{Name: fn.Name, File: p.file, Pos: name.Pos},
			Initializer: module.NewValue(module.ValueFunction, p.source.Text, open.Pos),
		},
	}
	field.Initializer.Function = fn
	table.AddField(field)
	p.declare(field)
	return field
}

// parseLocalFunction parses "local function NAME funcbody"
func (p *Parser) parseLocalFunction() error {
	open := p.previous()

	name, err := p.expectName()
	if err != nil {
		return err
	}

	fn := &module.Function{
		ItemBase: module.ItemBase{Local: true, Name: name.Value, File: p.file, Pos: name.Pos},
		Decl:     module.FunctionName{Path: []string{name.Value}},
	}

	var item module.Item
	if p.atFileScope() {
		p.declare(fn)
		p.addLocal(fn)
		item = fn
	}

	if err := p.parseFunctionBody(fn, open, item); err != nil {
		return err
	}
	p.lastDeclared = item
	return nil
}

// parseLocal parses "local attnamelist ['=' explist]"
func (p *Parser) parseLocal() error {
	var names []lexer.Token
	for {
		name, err := p.expectName()
		if err != nil {
			return err
		}
		names = append(names, name)

		if p.match(lexer.TokenLess) {
			if _, err := p.expectName(); err != nil {
				return err
			}
			if _, err := p.expect(lexer.TokenGreater); err != nil {
				return err
			}
		}

		if !p.match(lexer.TokenComma) {
			break
		}
	}

	items := make([]module.Item, len(names))
	if p.atFileScope() {
		for i, name := range names {
			v := &module.Variable{
				ItemBase: module.ItemBase{Local: true, Name: name.Value, File: p.file, Pos: name.Pos},
			}
			p.declare(v)
			p.addLocal(v)
			items[i] = v
		}
	}

	if p.match(lexer.TokenAssign) {
		values, err := p.parseExpressionList(items)
		if err != nil {
			return err
		}
		assignValues(items, values)
	}

	p.lastDeclared = items[len(items)-1]
	return nil
}

// parseExpressionStatement parses a function call or an assignment
func (p *Parser) parseExpressionStatement() error {
	target, err := p.parseSuffixedExpression()
	if err != nil {
		return err
	}

	if !p.check(lexer.TokenAssign) && !p.check(lexer.TokenComma) {
		if !target.call {
			return p.errorf(p.peek(), "syntax error near %s", p.tokenText(p.peek()))
		}
		return nil
	}

	targets := []suffixedExp{target}
	for p.match(lexer.TokenComma) {
		next, err := p.parseSuffixedExpression()
		if err != nil {
			return err
		}
		targets = append(targets, next)
	}

	for _, t := range targets {
		if !t.assignable {
			return p.errorf(p.peek(), "syntax error near %s", p.tokenText(p.peek()))
		}
	}
	if _, err := p.expect(lexer.TokenAssign); err != nil {
		return err
	}

	items := p.declareTargets(targets)
	values, err := p.parseExpressionList(items)
	if err != nil {
		return err
	}
	assignValues(items, values)

	p.lastDeclared = items[len(items)-1]
	return nil
}

// declareTargets declares the assignment targets that name a variable or a
// field of a known table. Other targets get a nil entry.
func (p *Parser) declareTargets(targets []suffixedExp) []module.Item {
	items := make([]module.Item, len(targets))
	if !p.declaring() {
		return items
	}

	for i, target := range targets {
		switch len(target.path) {
		case 0:
			continue
		case 1:
			name := target.path[0]
			_, local := p.locals[name]
			v := &module.Variable{
				ItemBase: module.ItemBase{Local: local, Name: name, File: p.file, Pos: target.pos},
			}
			p.declare(v)
			items[i] = v
		default:
			if item := p.newField(p.resolveTable(target.path[:len(target.path)-1]), target.path[len(target.path)-1], target.pos, target.index); item != nil {
				items[i] = item
			} else {
				p.logger.Debug("assignment to unknown table ignored", "file", p.file, "line", target.pos.Line, "name", target.value.Text())
			}
		}
	}
	return items
}

// parseFunctionBody parses "'(' [parlist] ')' block end". header, when set,
// is the item a retroactive comment on the parameter list line documents.
func (p *Parser) parseFunctionBody(fn *module.Function, open lexer.Token, header module.Item) error {
	if _, err := p.expect(lexer.TokenLeftParen); err != nil {
		return err
	}

	if !p.check(lexer.TokenRightParen) {
		for {
			if p.match(lexer.TokenEllipsis) {
				fn.IsVarArg = true
				break
			}

			name, err := p.expectName()
			if err != nil {
				return err
			}
			fn.Params = append(fn.Params, &module.Variable{
				ItemBase: module.ItemBase{Local: true, Name: name.Value, File: p.file, Pos: name.Pos},
			})

			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}

	closer, err := p.expect(lexer.TokenRightParen)
	if err != nil {
		return err
	}

	savedHeader, savedLine, savedLast := p.header, p.headerLine, p.lastDeclared
	if p.funcDepth == 0 {
		p.header, p.headerLine = header, closer.Pos.Line
	}
	p.funcDepth++
	p.lastDeclared = nil

	err = p.parseScopedBlock()

	p.funcDepth--
	p.header, p.headerLine, p.lastDeclared = savedHeader, savedLine, savedLast
	if err != nil {
		return err
	}

	return p.expectMatch(lexer.TokenEnd, lexer.TokenFunction, open)
}

// parseTable parses a table constructor. Entries become fields of a new
// table when owner is set and declarations are recorded; otherwise the
// constructor is only checked and nil is returned.
func (p *Parser) parseTable(owner module.Item) (*module.Table, error) {
	open, err := p.expect(lexer.TokenLeftBrace)
	if err != nil {
		return nil, err
	}

	var table *module.Table
	if owner != nil && p.declaring() {
		table = p.module.NewTable(owner)
	}

	for {
		if table != nil {
			p.flushComments()
		}
		if p.check(lexer.TokenRightBrace) {
			break
		}
		if err := p.parseTableField(table); err != nil {
			return nil, err
		}
		if !p.match(lexer.TokenComma, lexer.TokenSemicolon) {
			break
		}
	}

	if table != nil {
		p.flushComments()
		p.doxy.DiscardBlock()
	}
	if err := p.expectMatch(lexer.TokenRightBrace, lexer.TokenLeftBrace, open); err != nil {
		return nil, err
	}
	return table, nil
}

// parseTableField parses "'[' exp ']' '=' exp | NAME '=' exp | exp"
func (p *Parser) parseTableField(table *module.Table) error {
	token := p.peek()

	var field module.Item
	switch {
	case token.Kind == lexer.TokenIdentifier && p.peekAhead(1).Kind == lexer.TokenAssign:
		p.advance()
		p.advance()
		field = p.newField(table, token.Value, token.Pos, module.Value{})
	case token.Kind == lexer.TokenLeftBracket:
		open := p.advance()
		key := p.peek()
		index, err := p.parseExpression(nil)
		if err != nil {
			return err
		}
		if err := p.expectMatch(lexer.TokenRightBracket, lexer.TokenLeftBracket, open); err != nil {
			return err
		}
		if _, err := p.expect(lexer.TokenAssign); err != nil {
			return err
		}

		name := ""
		if key.Kind == lexer.TokenString && index.Kind == module.ValueConstant {
			name = key.Value
		}
		field = p.newField(table, name, key.Pos, index)
	default:
		field = p.newField(table, "", token.Pos, module.Value{})
	}

	value, err := p.parseExpression(field)
	if err != nil {
		return err
	}
	setInitializer(field, value)
	return nil
}

// newField declares an entry of table. It returns nil when table is nil.
func (p *Parser) newField(table *module.Table, name string, pos lexer.Pos, index module.Value) module.Item {
	if table == nil {
		return nil
	}

	field := &module.Field{
		Variable: module.Variable{
			ItemBase: module.ItemBase{Name: name, File: p.file, Pos: pos},
		},
		Index: index,
	}
	table.AddField(field)
	p.declare(field)
	return field
}

// resolveTable finds the table a dotted path names. File locals shadow
// globals; variable references are followed.
func (p *Parser) resolveTable(path []string) *module.Table {
	item, ok := p.locals[path[0]]
	if !ok {
		item = p.module.LookupGlobal(path[0])
	}
	if item == nil {
		return nil
	}
	if item = p.module.FindMember(item, path[1:]); item == nil {
		return nil
	}
	return p.module.TableOf(item)
}

func (p *Parser) addLocal(item module.Item) {
	name := item.Base().Name
	if _, exists := p.locals[name]; !exists {
		p.locals[name] = item
	}
}

func assignValues(items []module.Item, values []module.Value) {
	for i, item := range items {
		if i < len(values) {
			setInitializer(item, values[i])
		}
	}
}

func setInitializer(item module.Item, value module.Value) {
	switch it := item.(type) {
	case *module.Field:
		it.Initializer = value
	case *module.Variable:
		it.Initializer = value
	}
}
