package module

import (
	"strings"

	"luadoxyxml/pkg/dox"
	"luadoxyxml/pkg/lexer"
)

// ScopeProvider reports the innermost lexical scope of the parse in progress
type ScopeProvider interface {
	CurrentScope() int
}

// DoxyHost implements dox.Host on top of a Module
type DoxyHost struct {
	module *Module
	scopes ScopeProvider
}

// Setup points the host at the parser of the file being parsed
func (h *DoxyHost) Setup(scopes ScopeProvider) {
	h.scopes = scopes
}

func (h *DoxyHost) FindItemBlock(item dox.Item) *dox.Block {
	it, ok := item.(Item)
	if !ok {
		return nil
	}
	return it.Base().Block
}

func (h *DoxyHost) GetItemBlock(item dox.Item) *dox.Block {
	it := item.(Item)
	base := it.Base()
	if base.Block == nil {
		block := h.module.Doxy.CreateBlock(base.File, base.Pos)
		h.SetItemBlock(it, block)
	}
	return base.Block
}

func (h *DoxyHost) SetItemBlock(item dox.Item, block *dox.Block) {
	it := item.(Item)
	it.Base().Block = block
	if block != nil {
		block.Item = it
	}
}

func (h *DoxyHost) CreateItemRefID(item dox.Item) string {
	return createRefID(item.(Item))
}

func (h *DoxyHost) GetItemCompoundElementName(item dox.Item) string {
	v := variableOf(item.(Item))
	if v == nil {
		return ""
	}

	switch v.Kind() {
	case VariableModule:
		return "innernamespace"
	case VariableStruct, VariableClass:
		return "innerclass"
	default:
		return ""
	}
}

func (h *DoxyHost) IsItemRendered(item dox.Item) bool {
	it, ok := item.(Item)
	return ok && h.module.IsRendered(it)
}

func (h *DoxyHost) FindItem(name string, overloadIdx int) dox.Item {
	item := h.module.FindOverload(name, overloadIdx)
	if item == nil {
		return nil
	}
	return item
}

func (h *DoxyHost) GetCurrentNamespace() int {
	if h.scopes == nil {
		return 0
	}
	return h.scopes.CurrentScope()
}

func (h *DoxyHost) GenerateGlobalNamespaceDocumentation(outputDir string, itemXML, indexXML *strings.Builder) error {
	return h.module.GenerateGlobalNamespaceDocumentation(outputDir, itemXML, indexXML)
}

func (h *DoxyHost) ProcessCustomCommand(command, param string, block *dox.Block) (bool, bool) {
	return h.module.Vocabulary.Process(command, param, block)
}

// createRefID derives a reference ID candidate from the item's kind and qualified name
func createRefID(item Item) string {
	prefix := "variable_"

	switch it := item.(type) {
	case *Function:
		prefix = "function_"
	case *Field:
		prefix = variablePrefix(&it.Variable)
		if tableKind(it.Table) == VariableEnum {
			prefix = "enumvalue_"
		}
	case *Variable:
		prefix = variablePrefix(it)
	}

	return prefix + dox.SanitizeID(QualifiedName(item))
}

// tableKind returns the kind of the variable owning table
func tableKind(table *Table) VariableKind {
	if table == nil || table.Owner == nil {
		return VariableNormal
	}
	if v := variableOf(table.Owner); v != nil {
		return v.Kind()
	}
	return VariableNormal
}

func variablePrefix(v *Variable) string {
	switch v.Kind() {
	case VariableEnum:
		return "enum_"
	case VariableStruct:
		return "struct_"
	case VariableClass:
		return "class_"
	case VariableModule:
		return "namespace_"
	}
	if v.Initializer.Kind == ValueFunction {
		return "function_"
	}
	return "variable_"
}

// blockPos returns where diagnostics about item should point
func blockPos(item Item) (string, lexer.Pos) {
	base := item.Base()
	return base.File, base.Pos
}
