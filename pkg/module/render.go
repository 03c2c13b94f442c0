package module

import (
	"fmt"
	"strings"

	"luadoxyxml/pkg/dox"
)

// compound accumulates the parts of one compounddef while its members render
type compound struct {
	inner   strings.Builder
	members strings.Builder
	index   strings.Builder
}

func (c *compound) sectionString() string {
	if c.members.Len() == 0 {
		return ""
	}
	return "<sectiondef>\n" + c.members.String() + "</sectiondef>\n"
}

type renderer struct {
	module    *Module
	host      *DoxyHost
	outputDir string
	indexXML  *strings.Builder
}

// GenerateGlobalNamespaceDocumentation renders every top-level item. Compound
// items are written to their own files; everything else becomes a member of
// the global file compound in itemXML.
func (m *Module) GenerateGlobalNamespaceDocumentation(outputDir string, itemXML, indexXML *strings.Builder) error {
	r := &renderer{
		module:    m,
		host:      m.host,
		outputDir: outputDir,
		indexXML:  indexXML,
	}

	var global compound
	for _, item := range m.items {
		if item.Base().Table != nil || !m.IsRendered(item) {
			continue
		}
		if err := r.renderItem(&global, item, QualifiedName(item)); err != nil {
			return err
		}
	}

	indexXML.WriteString("<compound kind='file' refid='global'><name>global</name>\n")
	indexXML.WriteString(global.index.String())
	indexXML.WriteString("</compound>\n")

	fmt.Fprintf(itemXML, "<compounddef kind='file' id='global' language='%s'>\n", m.Doxy.Language)
	itemXML.WriteString("<compoundname>global</compoundname>\n")
	itemXML.WriteString(global.inner.String())
	itemXML.WriteString(global.sectionString())
	itemXML.WriteString("</compounddef>\n")
	return nil
}

func (r *renderer) renderItem(c *compound, item Item, name string) error {
	switch it := item.(type) {
	case *Function:
		block := r.host.GetItemBlock(it)
		r.renderFunction(c, it, &it.ItemBase, name, block)
		return nil
	case *Field:
		return r.renderVariable(c, &it.Variable, item, name)
	case *Variable:
		return r.renderVariable(c, it, item, name)
	default:
		return fmt.Errorf("unexpected item type %T", item)
	}
}

func (r *renderer) renderVariable(c *compound, v *Variable, item Item, name string) error {
	kind := v.Kind()
	if kind.IsCompound() {
		return r.renderCompound(c, v, item, kind)
	}

	block := r.host.GetItemBlock(item)

	switch {
	case kind == VariableEnum:
		r.renderEnum(c, v, name, block)
		return nil
	case v.Initializer.Kind == ValueFunction && v.Initializer.Function != nil:
		r.renderFunction(c, v.Initializer.Function, &v.ItemBase, name, block)
		return nil
	}

	refID := block.RefID()
	fmt.Fprintf(&c.members, "<memberdef kind='variable' id='%s' prot='public' static='%s'>\n", refID, staticString(v.Local))
	fmt.Fprintf(&c.members, "<name>%s</name>\n", dox.EscapeXML(name))
	if text := v.Initializer.Text(); text != "" {
		fmt.Fprintf(&c.members, "<initializer>= %s</initializer>\n", dox.EscapeXML(text))
	}
	c.members.WriteString(block.DescriptionString())
	c.members.WriteString(locationString(&v.ItemBase))
	c.members.WriteString("</memberdef>\n")
	c.members.WriteString(block.FootnoteString())
	appendMemberIndex(&c.index, "variable", refID, name)

	// documented entries of plain tables are listed as qualified members
	if table := v.FieldTable(); table != nil {
		for _, field := range table.Fields {
			if !r.module.IsRendered(field) {
				continue
			}
			if err := r.renderItem(c, field, QualifiedName(field)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *renderer) renderFunction(c *compound, f *Function, base *ItemBase, name string, block *dox.Block) {
	refID := block.RefID()
	fmt.Fprintf(&c.members, "<memberdef kind='function' id='%s' prot='public' static='%s'>\n", refID, staticString(base.Local))
	fmt.Fprintf(&c.members, "<name>%s</name>\n", dox.EscapeXML(name))
	fmt.Fprintf(&c.members, "<argsstring>%s</argsstring>\n", dox.EscapeXML(f.ArgsString()))
	for _, param := range f.Params {
		fmt.Fprintf(&c.members, "<param><declname>%s</declname></param>\n", dox.EscapeXML(param.Name))
	}
	if f.IsVarArg {
		c.members.WriteString("<param><type>...</type></param>\n")
	}
	c.members.WriteString(block.DescriptionString())
	c.members.WriteString(locationString(base))
	c.members.WriteString("</memberdef>\n")
	c.members.WriteString(block.FootnoteString())
	appendMemberIndex(&c.index, "function", refID, name)
}

func (r *renderer) renderEnum(c *compound, v *Variable, name string, block *dox.Block) {
	refID := block.RefID()
	fmt.Fprintf(&c.members, "<memberdef kind='enum' id='%s' prot='public' static='%s'>\n", refID, staticString(v.Local))
	fmt.Fprintf(&c.members, "<name>%s</name>\n", dox.EscapeXML(name))

	var valueIndex strings.Builder
	if table := v.FieldTable(); table != nil {
		for _, field := range table.Fields {
			if !r.module.IsRendered(field) {
				continue
			}
			fieldBlock := r.host.GetItemBlock(field)
			fieldRefID := fieldBlock.RefID()
			fmt.Fprintf(&c.members, "<enumvalue id='%s' prot='public'>\n", fieldRefID)
			fmt.Fprintf(&c.members, "<name>%s</name>\n", dox.EscapeXML(field.Name))
			if text := field.Initializer.Text(); text != "" {
				fmt.Fprintf(&c.members, "<initializer>= %s</initializer>\n", dox.EscapeXML(text))
			}
			c.members.WriteString(fieldBlock.DescriptionString())
			c.members.WriteString("</enumvalue>\n")
			appendMemberIndex(&valueIndex, "enumvalue", fieldRefID, field.Name)
		}
	}

	c.members.WriteString(block.DescriptionString())
	c.members.WriteString(locationString(&v.ItemBase))
	c.members.WriteString("</memberdef>\n")
	c.members.WriteString(block.FootnoteString())
	appendMemberIndex(&c.index, "enum", refID, name)
	c.index.WriteString(valueIndex.String())
}

// renderCompound writes a struct, class or module table to its own file and
// references it from the parent compound
func (r *renderer) renderCompound(parent *compound, v *Variable, item Item, kind VariableKind) error {
	block := r.host.GetItemBlock(item)
	refID := block.RefID()
	name := QualifiedName(item)

	compoundKind := "struct"
	switch kind {
	case VariableClass:
		compoundKind = "class"
	case VariableModule:
		compoundKind = "namespace"
	}

	fmt.Fprintf(&parent.inner, "<%s refid='%s'/>\n", r.host.GetItemCompoundElementName(item), refID)

	var c compound
	if table := v.FieldTable(); table != nil {
		for _, field := range table.Fields {
			if !r.module.IsRendered(field) {
				continue
			}
			if err := r.renderItem(&c, field, field.Name); err != nil {
				return err
			}
		}
	}

	c.members.WriteString(block.FootnoteString())

	var xml strings.Builder
	fmt.Fprintf(&xml, "<compounddef kind='%s' id='%s' language='%s'>\n", compoundKind, refID, r.module.Doxy.Language)
	fmt.Fprintf(&xml, "<compoundname>%s</compoundname>\n", dox.EscapeXML(name))
	if baseType := v.BaseType(); baseType != "" {
		xml.WriteString(r.baseCompoundRef(item, baseType))
	}
	xml.WriteString(c.inner.String())
	xml.WriteString(c.sectionString())
	xml.WriteString(block.ImportString())
	xml.WriteString(block.DescriptionString())
	xml.WriteString(locationString(&v.ItemBase))
	xml.WriteString("</compounddef>\n")

	fmt.Fprintf(r.indexXML, "<compound kind='%s' refid='%s'><name>%s</name>\n", compoundKind, refID, dox.EscapeXML(name))
	r.indexXML.WriteString(c.index.String())
	r.indexXML.WriteString("</compound>\n")

	return dox.WriteCompoundFile(r.outputDir, refID, xml.String())
}

func (r *renderer) baseCompoundRef(item Item, baseType string) string {
	base := r.module.FindItem(baseType)
	if base == nil || !r.module.IsRendered(base) {
		file, pos := blockPos(item)
		r.module.Doxy.Warn(file, pos, "unresolved base type", "name", QualifiedName(item), "base", baseType)
		return fmt.Sprintf("<basecompoundref prot='public' virt='non-virtual'>%s</basecompoundref>\n", dox.EscapeXML(baseType))
	}

	refID := r.host.GetItemBlock(base).RefID()
	return fmt.Sprintf("<basecompoundref refid='%s' prot='public' virt='non-virtual'>%s</basecompoundref>\n", refID, dox.EscapeXML(baseType))
}

func staticString(local bool) string {
	if local {
		return "yes"
	}
	return "no"
}

func locationString(base *ItemBase) string {
	return fmt.Sprintf("<location file='%s' line='%d' col='%d'/>\n", dox.EscapeXML(base.File), base.Pos.Line, base.Pos.Col)
}

func appendMemberIndex(index *strings.Builder, kind, refID, name string) {
	fmt.Fprintf(index, "<member kind='%s' refid='%s'><name>%s</name></member>\n", kind, refID, dox.EscapeXML(name))
}
