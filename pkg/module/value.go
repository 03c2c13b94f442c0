package module

import (
	"luadoxyxml/pkg/lexer"
)

// ValueKind tags the shape of a Value
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueExpression
	ValueConstant
	ValueVariableRef
	ValueFunction
	ValueTable
)

func (k ValueKind) String() string {
	switch k {
	case ValueEmpty:
		return "empty"
	case ValueExpression:
		return "expression"
	case ValueConstant:
		return "constant"
	case ValueVariableRef:
		return "variable-ref"
	case ValueFunction:
		return "function"
	case ValueTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is an initializer or index expression. It keeps the source span it
// was built from so the text can be re-emitted verbatim.
type Value struct {
	Kind  ValueKind
	Start int
	End   int

	// Ref is the dotted name of a variable reference
	Ref string

	// Table is set for table constructors
	Table *Table

	// Function is set for function literals
	Function *Function

	source string
}

// NewValue creates a value of kind covering the token at pos in source
func NewValue(kind ValueKind, source string, pos lexer.Pos) Value {
	return Value{
		Kind:   kind,
		Start:  pos.Offset,
		End:    pos.End(),
		source: source,
	}
}

// IsEmpty reports whether the value captured nothing
func (v *Value) IsEmpty() bool {
	return v.Kind == ValueEmpty
}

// Extend grows the captured span to include the token at pos
func (v *Value) Extend(pos lexer.Pos) {
	if v.Kind == ValueEmpty {
		return
	}
	if pos.Offset < v.Start {
		v.Start = pos.Offset
	}
	if pos.End() > v.End {
		v.End = pos.End()
	}
}

// Text returns the verbatim source text of the value
func (v *Value) Text() string {
	if v.Kind == ValueEmpty || v.End > len(v.source) || v.Start > v.End {
		return ""
	}
	return v.source[v.Start:v.End]
}
