package dox

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"luadoxyxml/pkg/lexer"
)

type fakeItem struct {
	name     string
	block    *Block
	compound bool
}

// fakeHost keeps items in declaration order per name
type fakeHost struct {
	manager *Manager
	parser  *Parser
	items   map[string][]*fakeItem
	order   []*fakeItem
	scope   int
}

func newFakeHost() *fakeHost {
	host := &fakeHost{items: make(map[string][]*fakeItem)}
	host.manager = NewManager(host, slog.New(slog.NewTextHandler(io.Discard, nil)))
	host.parser = NewParser(host.manager)
	return host
}

func (h *fakeHost) declare(name string) *fakeItem {
	item := &fakeItem{name: name}
	h.items[name] = append(h.items[name], item)
	h.order = append(h.order, item)
	if block := h.parser.PopBlock(); block != nil {
		h.SetItemBlock(item, block)
	}
	return item
}

func (h *fakeHost) comment(text string) {
	h.parser.AddComment(text, "test.lua", lexer.Pos{Line: 1, Col: 1}, false, nil)
}

// continueComment adds a comment on the line after the previous one
func (h *fakeHost) continueComment(text string) {
	h.parser.AddComment(text, "test.lua", lexer.Pos{Line: 2, Col: 1}, true, nil)
}

func (h *fakeHost) FindItemBlock(item Item) *Block {
	return item.(*fakeItem).block
}

func (h *fakeHost) GetItemBlock(item Item) *Block {
	it := item.(*fakeItem)
	if it.block == nil {
		h.SetItemBlock(it, h.manager.CreateBlock("", lexer.Pos{}))
	}
	return it.block
}

func (h *fakeHost) SetItemBlock(item Item, block *Block) {
	it := item.(*fakeItem)
	it.block = block
	block.Item = it
}

func (h *fakeHost) CreateItemRefID(item Item) string {
	return "item_" + SanitizeID(item.(*fakeItem).name)
}

func (h *fakeHost) GetItemCompoundElementName(item Item) string {
	if item.(*fakeItem).compound {
		return "innerclass"
	}
	return ""
}

func (h *fakeHost) IsItemRendered(item Item) bool {
	return true
}

func (h *fakeHost) FindItem(name string, overloadIdx int) Item {
	list := h.items[name]
	if overloadIdx >= len(list) {
		return nil
	}
	return list[overloadIdx]
}

func (h *fakeHost) GetCurrentNamespace() int {
	return h.scope
}

func (h *fakeHost) GenerateGlobalNamespaceDocumentation(outputDir string, itemXML, indexXML *strings.Builder) error {
	itemXML.WriteString("<compounddef kind='file' id='global'>\n")
	for _, item := range h.order {
		fmt.Fprintf(itemXML, "<memberdef id='%s'/>\n", h.GetItemBlock(item).RefID())
	}
	itemXML.WriteString("</compounddef>\n")
	indexXML.WriteString("<compound kind='file' refid='global'><name>global</name></compound>\n")
	return nil
}

func (h *fakeHost) ProcessCustomCommand(command, param string, block *Block) (bool, bool) {
	if command != "tag" {
		return false, false
	}
	block.AppendInternal(":tag(" + param + ")")
	return true, true
}
