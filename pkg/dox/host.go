package dox

import (
	"strings"
)

// Item is an opaque handle to a declared item owned by the host
type Item interface{}

// Host is the seam between the comment subsystem and the declaration
// language. The manager and the comment parser only ever reach items
// through it.
type Host interface {
	// FindItemBlock returns the block attached to item, or nil
	FindItemBlock(item Item) *Block

	// GetItemBlock returns the block attached to item, creating an empty one if needed
	GetItemBlock(item Item) *Block

	// SetItemBlock attaches block to item
	SetItemBlock(item Item, block *Block)

	// CreateItemRefID derives a candidate reference ID for item
	CreateItemRefID(item Item) string

	// GetItemCompoundElementName returns "innerclass" or "innernamespace" for
	// items rendered as separate compounds, or "" for inline members
	GetItemCompoundElementName(item Item) string

	// IsItemRendered reports whether item appears in the generated XML
	IsItemRendered(item Item) bool

	// FindItem looks up a declared item by (dotted) name. overloadIdx selects
	// the n-th redeclaration; 0 is the primary declaration.
	FindItem(name string, overloadIdx int) Item

	// GetCurrentNamespace returns the ID of the innermost lexical scope
	GetCurrentNamespace() int

	// GenerateGlobalNamespaceDocumentation renders the global compound into
	// itemXML and appends index entries to indexXML
	GenerateGlobalNamespaceDocumentation(outputDir string, itemXML, indexXML *strings.Builder) error

	// ProcessCustomCommand handles a command the comment parser does not know.
	// paramUsed reports whether param was consumed.
	ProcessCustomCommand(command, param string, block *Block) (handled, paramUsed bool)
}
