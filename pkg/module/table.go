package module

// Table is the aggregate a table constructor builds
type Table struct {
	Fields   []*Field
	FieldMap map[string]*Field

	// Owner is the *Variable or *Field the table was assigned to, if any
	Owner Item
}

// NewTable creates an empty table owned by owner (which may be nil)
func NewTable(owner Item) *Table {
	return &Table{
		FieldMap: make(map[string]*Field),
		Owner:    owner,
	}
}

// AddField appends field. Named fields are indexed; the first field of a
// name keeps the index entry.
func (t *Table) AddField(field *Field) {
	field.Table = t
	t.Fields = append(t.Fields, field)
	if field.Name == "" {
		return
	}
	if _, exists := t.FieldMap[field.Name]; !exists {
		t.FieldMap[field.Name] = field
	}
}

// FindField returns the field named name, or nil
func (t *Table) FindField(name string) *Field {
	return t.FieldMap[name]
}
