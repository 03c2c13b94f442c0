package module

import (
	"strings"

	"luadoxyxml/pkg/dox"
	"luadoxyxml/pkg/lexer"
)

// Item is a declared entity: *Variable, *Field or *Function
type Item interface {
	Base() *ItemBase
	isItem()
}

// ItemBase holds what every declared item carries
type ItemBase struct {
	Module *Module

	// Table is the table the item is a field of, nil for top-level items
	Table *Table

	Local bool
	Name  string
	File  string
	Pos   lexer.Pos
	Block *dox.Block

	primary bool
}

func (b *ItemBase) Base() *ItemBase {
	return b
}

func (b *ItemBase) isItem() {}

// IsPrimary reports whether the item is the first declaration of its name
func (b *ItemBase) IsPrimary() bool {
	return b.primary
}

// VariableKind is the documentation shape of a variable
type VariableKind int

const (
	VariableNormal VariableKind = iota
	VariableEnum
	VariableClass
	VariableStruct
	VariableModule
)

var variableKindNames = map[VariableKind]string{
	VariableNormal: "normal",
	VariableEnum:   "enum",
	VariableClass:  "class",
	VariableStruct: "struct",
	VariableModule: "module",
}

func (k VariableKind) String() string {
	if name, ok := variableKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseVariableKind converts a kind name back into a VariableKind
func ParseVariableKind(name string) (VariableKind, bool) {
	if name == "" {
		return VariableNormal, true
	}
	for kind, kindName := range variableKindNames {
		if strings.EqualFold(kindName, name) {
			return kind, true
		}
	}
	return VariableNormal, false
}

// IsCompound reports whether variables of this kind get their own compound
func (k VariableKind) IsCompound() bool {
	return k == VariableClass || k == VariableStruct || k == VariableModule
}

// Variable is a declared variable
type Variable struct {
	ItemBase
	Initializer Value
}

// Kind classifies the variable. Only table-valued variables tagged through
// the vocabulary are anything other than Normal.
func (v *Variable) Kind() VariableKind {
	if v.Initializer.Kind != ValueTable || v.Block == nil || v.Module == nil {
		return VariableNormal
	}
	return v.Module.Vocabulary.Classify(v.Block.Internal)
}

// BaseType returns the base type name recorded in the variable's documentation
func (v *Variable) BaseType() string {
	if v.Block == nil || v.Module == nil {
		return ""
	}
	return v.Module.Vocabulary.BaseType(v.Block.Internal)
}

// FieldTable returns the table the variable's initializer constructs, or nil
func (v *Variable) FieldTable() *Table {
	if v.Initializer.Kind != ValueTable {
		return nil
	}
	return v.Initializer.Table
}

// Field is an entry of a table
type Field struct {
	Variable

	// Index is the key expression of the entry, empty for positional entries
	Index Value
}

// IsMethod reports whether the field holds a function declared with ':'
func (f *Field) IsMethod() bool {
	return f.Initializer.Kind == ValueFunction &&
		f.Initializer.Function != nil &&
		f.Initializer.Function.Decl.IsMethod
}

// FunctionName is the structured name of a function declaration
type FunctionName struct {
	Path     []string
	IsMethod bool
}

// FullName joins the path with '.' and the method marker ':' before the last part
func (n FunctionName) FullName() string {
	if len(n.Path) == 0 {
		return ""
	}
	if !n.IsMethod || len(n.Path) == 1 {
		return strings.Join(n.Path, ".")
	}
	last := len(n.Path) - 1
	return strings.Join(n.Path[:last], ".") + ":" + n.Path[last]
}

// Last returns the last path segment
func (n FunctionName) Last() string {
	if len(n.Path) == 0 {
		return ""
	}
	return n.Path[len(n.Path)-1]
}

// Function is a declared function or a function literal
type Function struct {
	ItemBase

	// Decl is the name as written in the declaration
	Decl     FunctionName
	Params   []*Variable
	IsVarArg bool
}

// ArgsString renders the parameter list as "(a, b, ...)"
func (f *Function) ArgsString() string {
	var parts []string
	for _, param := range f.Params {
		parts = append(parts, param.Name)
	}
	if f.IsVarArg {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// variableOf returns the Variable part of item, or nil for functions
func variableOf(item Item) *Variable {
	switch it := item.(type) {
	case *Field:
		return &it.Variable
	case *Variable:
		return it
	default:
		return nil
	}
}

// QualifiedName returns the item's name prefixed by its owners, e.g. "M.sub:method"
func QualifiedName(item Item) string {
	base := item.Base()
	if base.Table == nil || base.Table.Owner == nil {
		return base.Name
	}

	sep := "."
	if field, ok := item.(*Field); ok && field.IsMethod() {
		sep = ":"
	}
	return QualifiedName(base.Table.Owner) + sep + base.Name
}

// lookupKey returns the dotted name items are registered under, or "" for
// entries of tables nothing owns
func lookupKey(item Item) string {
	base := item.Base()
	if base.Name == "" || (base.Table != nil && base.Table.Owner == nil) {
		return ""
	}
	return normalizeName(QualifiedName(item))
}

func normalizeName(name string) string {
	return strings.ReplaceAll(name, ":", ".")
}
