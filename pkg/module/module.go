// Package module holds the declaration graph built from Lua sources and
// renders it as Doxygen XML.
package module

import (
	"log/slog"
	"strings"

	"luadoxyxml/pkg/dox"
)

// maxAliasDepth bounds variable-reference chains followed during lookup
const maxAliasDepth = 8

// Source is a retained input buffer. Item values slice into Text.
type Source struct {
	File string
	Text string
}

// Module owns every item, table and source buffer of one run
type Module struct {
	Vocabulary *Vocabulary
	Doxy       *dox.Manager

	host      *DoxyHost
	logger    *slog.Logger
	items     []Item
	itemMap   map[string]Item
	localMap  map[string]Item
	overloads map[string][]Item
	tables    []*Table
	sources   []*Source
}

// New creates an empty module. A nil vocabulary selects DefaultVocabulary.
func New(vocabulary *Vocabulary, logger *slog.Logger) *Module {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Module{
		Vocabulary: vocabulary,
		logger:     logger,
		itemMap:    make(map[string]Item),
		localMap:   make(map[string]Item),
		overloads:  make(map[string][]Item),
	}
	m.host = &DoxyHost{module: m}
	m.Doxy = dox.NewManager(m.host, logger)
	return m
}

// Host returns the dox.Host the module serves
func (m *Module) Host() *DoxyHost {
	return m.host
}

// Logger returns the module's logger
func (m *Module) Logger() *slog.Logger {
	return m.logger
}

// AddSource retains content for the lifetime of the module
func (m *Module) AddSource(file string, content []byte) *Source {
	source := &Source{File: file, Text: string(content)}
	m.sources = append(m.sources, source)
	return source
}

func (m *Module) Sources() []*Source {
	return m.sources
}

// Items returns all items in declaration order
func (m *Module) Items() []Item {
	return m.items
}

func (m *Module) Tables() []*Table {
	return m.tables
}

// NewTable creates a table owned by the module
func (m *Module) NewTable(owner Item) *Table {
	table := NewTable(owner)
	m.tables = append(m.tables, table)
	return table
}

// AddItem records item in declaration order. Top-level names are registered
// only if not already taken: the first declaration of a name wins.
func (m *Module) AddItem(item Item) {
	base := item.Base()
	base.Module = m
	m.items = append(m.items, item)

	base.primary = true
	if key := lookupKey(item); key != "" {
		m.overloads[key] = append(m.overloads[key], item)
		base.primary = len(m.overloads[key]) == 1
	}

	if base.Table != nil || base.Name == "" {
		return
	}

	names := m.itemMap
	if base.Local {
		names = m.localMap
	}
	if _, exists := names[base.Name]; !exists {
		names[base.Name] = item
	} else {
		m.logger.Debug("redeclaration keeps first declaration", "name", base.Name, "file", base.File, "line", base.Pos.Line)
	}
}

// LookupGlobal returns the top-level item named name, globals first
func (m *Module) LookupGlobal(name string) Item {
	if item, ok := m.itemMap[name]; ok {
		return item
	}
	if item, ok := m.localMap[name]; ok {
		return item
	}
	return nil
}

// FindItem resolves a dotted (or ':'-qualified) name through table fields
func (m *Module) FindItem(name string) Item {
	parts := strings.Split(normalizeName(name), ".")
	item := m.LookupGlobal(parts[0])
	if item == nil {
		return nil
	}
	return m.FindMember(item, parts[1:])
}

// FindMember walks path through the tables reachable from item
func (m *Module) FindMember(item Item, path []string) Item {
	for _, part := range path {
		table := m.TableOf(item)
		if table == nil {
			return nil
		}
		field := table.FindField(part)
		if field == nil {
			return nil
		}
		item = field
	}
	return item
}

// FindOverload returns the n-th declaration of name; 0 is the primary one
func (m *Module) FindOverload(name string, overloadIdx int) Item {
	if overloadIdx == 0 {
		return m.FindItem(name)
	}

	list := m.overloads[normalizeName(name)]
	if overloadIdx < 0 || overloadIdx >= len(list) {
		return nil
	}
	return list[overloadIdx]
}

// TableOf returns the table item holds, following variable references
func (m *Module) TableOf(item Item) *Table {
	for depth := 0; depth < maxAliasDepth && item != nil; depth++ {
		v := variableOf(item)
		if v == nil {
			return nil
		}

		switch v.Initializer.Kind {
		case ValueTable:
			return v.Initializer.Table
		case ValueVariableRef:
			item = m.FindItem(v.Initializer.Ref)
		default:
			return nil
		}
	}
	return nil
}

// IsRendered reports whether item appears in the generated XML. Later
// declarations of a name render only when documented through \overload;
// entries of unowned or undocumented plain tables are left out.
func (m *Module) IsRendered(item Item) bool {
	base := item.Base()
	if !base.primary && !isDocumentedOverload(base) {
		return false
	}
	if base.Table == nil {
		return true
	}
	if base.Name == "" || base.Table.Owner == nil {
		return false
	}

	owner := base.Table.Owner
	if !m.IsRendered(owner) {
		return false
	}

	ownerVar := variableOf(owner)
	if ownerVar == nil {
		return false
	}
	if ownerVar.Kind() != VariableNormal {
		return true
	}
	return base.Block != nil && !base.Block.IsEmpty()
}

// isDocumentedOverload reports whether a redeclaration was bound to its
// documentation through a target command
func isDocumentedOverload(base *ItemBase) bool {
	return base.Block != nil && base.Block.HasTarget() && !base.Block.IsEmpty()
}
