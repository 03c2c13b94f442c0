package dox

import (
	"fmt"
	"strings"

	"luadoxyxml/pkg/lexer"
)

// BlockKind distinguishes plain blocks from group and footnote blocks
type BlockKind int

const (
	BlockNormal BlockKind = iota
	BlockGroup
	BlockFootnote
)

// SeeAlso is one name listed after \see. Item is set once the name resolves.
type SeeAlso struct {
	Name string
	Item Item
}

// Block is the parsed content of one or more structured comments
type Block struct {
	Kind BlockKind
	File string
	Pos  lexer.Pos

	// Source is the raw text of every comment merged into the block
	Source string

	Title    string
	Brief    string
	Detailed string

	// Internal is the tag string appended by custom commands
	Internal string

	SeeAlso   []*SeeAlso
	Imports   []string
	Footnotes []*Block

	// Group is the group the block's item (or group) belongs to
	Group *Group

	// Item is the declared item the block documents
	Item Item

	// Parent is the owning block of a footnote
	Parent *Block

	manager   *Manager
	refID     string
	refIDBase string
	hasTarget bool
}

// RefID returns the block's reference ID, assigning a unique one on first use
func (b *Block) RefID() string {
	if b.refID != "" {
		return b.refID
	}

	candidate := b.refIDBase
	switch {
	case candidate != "":
	case b.Kind == BlockFootnote && b.Parent != nil:
		candidate = b.Parent.RefID() + "_footnote"
	case b.Item != nil:
		candidate = b.manager.host.CreateItemRefID(b.Item)
	default:
		candidate = "block"
	}

	b.refID = b.manager.AdjustRefID(candidate)
	return b.refID
}

// HasTarget reports whether the block was bound through a target command
func (b *Block) HasTarget() bool {
	return b.hasTarget
}

// AppendInternal appends a tag to the internal description
func (b *Block) AppendInternal(tag string) {
	b.Internal += tag
}

// IsDescriptionEmpty reports whether the block carries no descriptive text
func (b *Block) IsDescriptionEmpty() bool {
	return strings.TrimSpace(b.Brief) == "" &&
		strings.TrimSpace(b.Detailed) == "" &&
		len(b.SeeAlso) == 0
}

// IsEmpty reports whether the block carries nothing worth attaching
func (b *Block) IsEmpty() bool {
	return b.IsDescriptionEmpty() &&
		b.Title == "" &&
		b.Internal == "" &&
		len(b.Imports) == 0 &&
		len(b.Footnotes) == 0 &&
		b.Group == nil
}

// DescriptionString renders the brief and detailed description elements
func (b *Block) DescriptionString() string {
	var xml strings.Builder

	xml.WriteString("<briefdescription>\n")
	appendParagraphs(&xml, b.Brief)
	xml.WriteString("</briefdescription>\n")

	xml.WriteString("<detaileddescription>\n")
	appendParagraphs(&xml, b.Detailed)
	if len(b.SeeAlso) > 0 {
		xml.WriteString("<para><simplesect kind='see'><para>")
		for i, ref := range b.SeeAlso {
			if i > 0 {
				xml.WriteString(", ")
			}
			b.appendSeeAlsoRef(&xml, ref)
		}
		xml.WriteString("</para></simplesect></para>\n")
	}
	xml.WriteString("</detaileddescription>\n")

	return xml.String()
}

func (b *Block) appendSeeAlsoRef(xml *strings.Builder, ref *SeeAlso) {
	host := b.manager.host
	if ref.Item == nil || !host.IsItemRendered(ref.Item) {
		xml.WriteString(EscapeXML(ref.Name))
		return
	}

	kindRef := "member"
	if host.GetItemCompoundElementName(ref.Item) != "" {
		kindRef = "compound"
	}

	refID := host.GetItemBlock(ref.Item).RefID()
	fmt.Fprintf(xml, "<ref refid='%s' kindref='%s'>%s</ref>", refID, kindRef, EscapeXML(ref.Name))
}

// FootnoteString renders the block's footnotes as footnote members
func (b *Block) FootnoteString() string {
	var xml strings.Builder
	for _, footnote := range b.Footnotes {
		refID := footnote.RefID()
		fmt.Fprintf(&xml, "<memberdef kind='footnote' id='%s'>\n", refID)
		fmt.Fprintf(&xml, "<name>%s</name>\n", refID)
		xml.WriteString(footnote.DescriptionString())
		xml.WriteString("</memberdef>\n")
	}
	return xml.String()
}

// ImportString renders the block's imports
func (b *Block) ImportString() string {
	var xml strings.Builder
	for _, imp := range b.Imports {
		fmt.Fprintf(&xml, "<includes>%s</includes>\n", EscapeXML(imp))
	}
	return xml.String()
}

// appendParagraphs writes text as <para> elements split on blank lines
func appendParagraphs(xml *strings.Builder, text string) {
	for _, para := range paragraphs(text) {
		xml.WriteString("<para>")
		xml.WriteString(EscapeXML(para))
		xml.WriteString("</para>\n")
	}
}

func paragraphs(text string) []string {
	var result []string
	var lines []string

	flush := func() {
		if len(lines) > 0 {
			result = append(result, strings.Join(lines, "\n"))
			lines = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return result
}
