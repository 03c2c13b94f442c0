package dox

import (
	"fmt"
	"strings"
)

// Group is a named, nestable collection of documented items. The embedded
// Block holds the group's own documentation; its Group field is the parent
// requested by \ingroup or an enclosing @{ region.
type Group struct {
	Block

	Name   string
	Items  []Item
	Groups []*Group

	parent  *Group
	deleted bool
}

// Parent returns the group this group is nested in, once linked
func (g *Group) Parent() *Group {
	return g.parent
}

// IsEmpty reports whether the group has neither items nor subgroups
func (g *Group) IsEmpty() bool {
	return len(g.Items) == 0 && len(g.Groups) == 0
}

func (g *Group) addItem(item Item) {
	for _, existing := range g.Items {
		if existing == item {
			return
		}
	}
	g.Items = append(g.Items, item)
}

// isAncestor reports whether g is other or one of other's parents
func (g *Group) isAncestor(other *Group) bool {
	for it := other; it != nil; it = it.parent {
		if it == g {
			return true
		}
	}
	return false
}

func (g *Group) generateDocumentation(itemXML, indexXML *strings.Builder) {
	host := g.manager.host
	refID := g.RefID()

	fmt.Fprintf(indexXML, "<compound kind='group' refid='%s'><name>%s</name></compound>\n", refID, EscapeXML(g.Name))

	title := g.Title
	if title == "" {
		title = g.Name
	}

	fmt.Fprintf(itemXML, "<compounddef kind='group' id='%s' language='%s'>\n", refID, g.manager.Language)
	fmt.Fprintf(itemXML, "<compoundname>%s</compoundname>\n", EscapeXML(g.Name))
	fmt.Fprintf(itemXML, "<title>%s</title>\n", EscapeXML(title))

	var sectionDef strings.Builder
	for _, item := range g.Items {
		itemRefID := host.GetItemBlock(item).RefID()
		if elem := host.GetItemCompoundElementName(item); elem != "" {
			fmt.Fprintf(itemXML, "<%s refid='%s'/>\n", elem, itemRefID)
		} else {
			fmt.Fprintf(&sectionDef, "<memberdef id='%s'/>\n", itemRefID)
		}
	}

	sectionDef.WriteString(g.FootnoteString())

	if sectionDef.Len() > 0 {
		itemXML.WriteString("<sectiondef>\n")
		itemXML.WriteString(sectionDef.String())
		itemXML.WriteString("</sectiondef>\n")
	}

	for _, child := range g.Groups {
		fmt.Fprintf(itemXML, "<innergroup refid='%s'/>\n", child.RefID())
	}

	itemXML.WriteString(g.ImportString())
	itemXML.WriteString(g.DescriptionString())
	itemXML.WriteString("</compounddef>\n")
}
