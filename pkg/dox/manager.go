package dox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"luadoxyxml/pkg/lexer"
)

// Target is a name reference in a comment awaiting resolution
type Target struct {
	Block       *Block
	Kind        TokenKind
	Name        string
	OverloadIdx int

	seeAlso *SeeAlso
}

// Manager owns every block, group and footnote of one documentation run.
// It keeps reference IDs unique and resolves deferred targets.
type Manager struct {
	// Language is written to the language attribute of compounds
	Language string

	host   Host
	logger *slog.Logger

	blocks     []*Block
	groups     []*Group
	groupMap   map[string]*Group
	footnotes  []*Block
	refIDs     map[string]int
	targets    []*Target
	unresolved []*Target
	warnings   int
	finalized  bool
}

// NewManager creates a manager reaching items through host
func NewManager(host Host, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		Language: "Lua",
		host:     host,
		logger:   logger,
		groupMap: make(map[string]*Group),
		refIDs:   map[string]int{"global": 1},
	}
}

// Host returns the host the manager reaches items through
func (m *Manager) Host() Host {
	return m.host
}

// Clear resets all state so the manager can serve another run
func (m *Manager) Clear() {
	m.blocks = nil
	m.groups = nil
	m.groupMap = make(map[string]*Group)
	m.footnotes = nil
	m.refIDs = map[string]int{"global": 1}
	m.targets = nil
	m.unresolved = nil
	m.warnings = 0
	m.finalized = false
}

func (m *Manager) Blocks() []*Block {
	return m.blocks
}

func (m *Manager) Groups() []*Group {
	return m.groups
}

func (m *Manager) Footnotes() []*Block {
	return m.footnotes
}

// Targets returns the targets still waiting for resolution
func (m *Manager) Targets() []*Target {
	return m.targets
}

// Unresolved returns the targets the last resolution pass could not bind
func (m *Manager) Unresolved() []*Target {
	return m.unresolved
}

// Warnings returns the number of non-fatal documentation problems reported
func (m *Manager) Warnings() int {
	return m.warnings
}

// Warn logs a non-fatal documentation problem at file and pos
func (m *Manager) Warn(file string, pos lexer.Pos, msg string, args ...any) {
	m.warnings++
	attrs := append([]any{"file", file, "line", pos.Line, "col", pos.Col}, args...)
	m.logger.Warn(msg, attrs...)
}

// Logger returns the manager's logger
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// FindGroup returns the group named name, or nil
func (m *Manager) FindGroup(name string) *Group {
	return m.groupMap[name]
}

// GetGroup returns the group named name, creating it on first reference
func (m *Manager) GetGroup(name string) *Group {
	if group, ok := m.groupMap[name]; ok {
		return group
	}

	group := &Group{Name: name}
	group.Block = Block{
		Kind:      BlockGroup,
		manager:   m,
		refIDBase: "group_" + SanitizeID(name),
	}

	m.groups = append(m.groups, group)
	m.groupMap[name] = group
	return group
}

// CreateBlock creates a new block for a comment at file and pos
func (m *Manager) CreateBlock(file string, pos lexer.Pos) *Block {
	block := &Block{
		File:    file,
		Pos:     pos,
		manager: m,
	}
	m.blocks = append(m.blocks, block)
	return block
}

// CreateFootnote appends a new footnote to parent
func (m *Manager) CreateFootnote(parent *Block) *Block {
	footnote := &Block{
		Kind:    BlockFootnote,
		File:    parent.File,
		Pos:     parent.Pos,
		Parent:  parent,
		manager: m,
	}
	parent.Footnotes = append(parent.Footnotes, footnote)
	m.footnotes = append(m.footnotes, footnote)
	return footnote
}

// AdjustRefID returns refID if unused, otherwise refID with the first free
// numeric suffix starting at _2. The returned ID is recorded as used.
func (m *Manager) AdjustRefID(refID string) string {
	count, ok := m.refIDs[refID]
	if !ok {
		m.refIDs[refID] = 1
		return refID
	}

	for {
		count++
		candidate := fmt.Sprintf("%s_%d", refID, count)
		if _, taken := m.refIDs[candidate]; !taken {
			m.refIDs[refID] = count
			m.refIDs[candidate] = 1
			return candidate
		}
	}
}

// SetBlockTarget binds block to the item named name, or queues a target if
// the name does not resolve yet
func (m *Manager) SetBlockTarget(block *Block, kind TokenKind, name string, overloadIdx int) {
	block.hasTarget = true

	if item := m.host.FindItem(name, overloadIdx); item != nil {
		m.bindTarget(block, item, name)
		return
	}

	m.targets = append(m.targets, &Target{
		Block:       block,
		Kind:        kind,
		Name:        name,
		OverloadIdx: overloadIdx,
	})
}

// AddSeeAlso appends a see-also reference to block
func (m *Manager) AddSeeAlso(block *Block, name string) {
	ref := &SeeAlso{Name: name}
	block.SeeAlso = append(block.SeeAlso, ref)

	if item := m.host.FindItem(name, 0); item != nil {
		ref.Item = item
		return
	}

	m.targets = append(m.targets, &Target{
		Block:   block,
		Kind:    TokenSeeAlso,
		Name:    name,
		seeAlso: ref,
	})
}

func (m *Manager) bindTarget(block *Block, item Item, name string) {
	existing := m.host.FindItemBlock(item)
	switch {
	case existing == block:
	case block.Item != nil:
		m.Warn(block.File, block.Pos, "documentation block already attached", "name", name)
	case existing != nil && !existing.IsEmpty():
		m.Warn(block.File, block.Pos, "item already documented", "name", name)
	default:
		m.host.SetItemBlock(item, block)
	}
}

// ResolveBlockTargets resolves every queued target. Targets that still do
// not resolve are reported and returned.
func (m *Manager) ResolveBlockTargets() []*Target {
	var unresolved []*Target

	for _, target := range m.targets {
		item := m.host.FindItem(target.Name, target.OverloadIdx)
		if item == nil {
			m.Warn(target.Block.File, target.Block.Pos, "unresolved reference",
				"command", target.Kind.String(), "name", target.Name, "overload", target.OverloadIdx)
			unresolved = append(unresolved, target)
			continue
		}

		if target.seeAlso != nil {
			target.seeAlso.Item = item
			continue
		}

		m.bindTarget(target.Block, item, target.Name)
	}

	m.targets = nil
	m.unresolved = unresolved
	return unresolved
}

// AssignGroupItems adds documented items to their groups and links groups
// to their parents
func (m *Manager) AssignGroupItems() {
	for _, block := range m.blocks {
		if block.Group == nil || block.Item == nil || !m.host.IsItemRendered(block.Item) {
			continue
		}
		block.Group.addItem(block.Item)
	}

	for _, group := range m.groups {
		parent := group.Group
		if parent == nil || group.parent != nil {
			continue
		}
		if group.isAncestor(parent) {
			m.Warn(group.File, group.Pos, "group nesting cycle", "group", group.Name, "parent", parent.Name)
			continue
		}
		group.parent = parent
		parent.Groups = append(parent.Groups, group)
	}
}

// DeleteEmptyGroups removes groups without items and without non-empty subgroups
func (m *Manager) DeleteEmptyGroups() {
	for _, group := range m.groups {
		if group.parent == nil {
			m.pruneGroup(group)
		}
	}

	kept := m.groups[:0]
	for _, group := range m.groups {
		if group.deleted {
			delete(m.groupMap, group.Name)
			continue
		}
		kept = append(kept, group)
	}
	m.groups = kept
}

func (m *Manager) pruneGroup(group *Group) bool {
	children := group.Groups[:0]
	for _, child := range group.Groups {
		if !m.pruneGroup(child) {
			children = append(children, child)
		}
	}
	group.Groups = children

	if group.IsEmpty() {
		m.logger.Debug("deleting empty group", "group", group.Name)
		group.deleted = true
		return true
	}
	return false
}

// Finalize resolves targets, builds the group tree and prunes empty groups.
// It runs once per run.
func (m *Manager) Finalize() {
	if m.finalized {
		return
	}
	m.finalized = true

	m.ResolveBlockTargets()
	m.AssignGroupItems()
	m.DeleteEmptyGroups()
}

// GenerateGroupDocumentation writes one compound file per group
func (m *Manager) GenerateGroupDocumentation(outputDir string, indexXML *strings.Builder) error {
	for _, group := range m.groups {
		var itemXML strings.Builder
		group.generateDocumentation(&itemXML, indexXML)
		if err := WriteCompoundFile(outputDir, group.RefID(), itemXML.String()); err != nil {
			return err
		}
	}
	return nil
}

// GenerateDocumentation finalizes the run and writes global.xml, the
// compound files and the index file into outputDir
func (m *Manager) GenerateDocumentation(outputDir, indexFileName string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	m.Finalize()

	var namespaceXML, indexXML strings.Builder
	indexXML.WriteString(IndexFileHeader)

	if err := m.host.GenerateGlobalNamespaceDocumentation(outputDir, &namespaceXML, &indexXML); err != nil {
		return err
	}

	if err := WriteCompoundFile(outputDir, "global", namespaceXML.String()); err != nil {
		return err
	}

	if err := m.GenerateGroupDocumentation(outputDir, &indexXML); err != nil {
		return err
	}

	indexXML.WriteString(IndexFileTerm)

	indexPath := filepath.Join(outputDir, indexFileName)
	if err := os.WriteFile(indexPath, []byte(indexXML.String()), 0644); err != nil {
		return fmt.Errorf("failed to write index file %s: %w", indexPath, err)
	}

	return nil
}
