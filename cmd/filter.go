package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"luadoxyxml/pkg/generator"
	"luadoxyxml/pkg/module"

	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:   "filter [file]...",
	Short: "Parse Lua files and list the declarations found",
	Long: `Parse Lua files and list the declared items with their documentation.
The output can be in JSON format for further processing or human-readable format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		g := generator.New(cfg, newLogger())
		files, err := g.CollectFiles(args)
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := g.ParseFile(file); err != nil {
				return err
			}
		}
		g.Module().Doxy.Finalize()

		format, _ := cmd.Flags().GetString("format")
		showAll, _ := cmd.Flags().GetBool("all")

		switch format {
		case "json":
			return outputJSON(g.Module(), files, showAll)
		default:
			return outputHuman(g.Module(), files, showAll)
		}
	},
}

func init() {
	filterCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	filterCmd.Flags().BoolP("all", "a", false, "Show all items including redeclarations and undocumented fields")
}

// JSONItem is the JSON form of a declared item
type JSONItem struct {
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	FullName   string     `json:"fullName"`
	Kind       string     `json:"kind,omitempty"`
	Signature  string     `json:"signature,omitempty"`
	Value      string     `json:"value,omitempty"`
	IsLocal    bool       `json:"isLocal,omitempty"`
	IsRendered bool       `json:"isRendered"`
	HasComment bool       `json:"hasComment"`
	Brief      string     `json:"brief,omitempty"`
	File       string     `json:"file"`
	Line       int        `json:"line"`
	Column     int        `json:"column"`
	Children   []JSONItem `json:"children,omitempty"`
}

func convertItem(m *module.Module, item module.Item, showAll bool) JSONItem {
	base := item.Base()
	ji := JSONItem{
		Type:       itemType(item),
		Name:       base.Name,
		FullName:   module.QualifiedName(item),
		IsLocal:    base.Local,
		IsRendered: m.IsRendered(item),
		HasComment: base.Block != nil && !base.Block.IsEmpty(),
		File:       base.File,
		Line:       base.Pos.Line,
		Column:     base.Pos.Col,
	}
	if base.Block != nil {
		ji.Brief = strings.TrimSpace(base.Block.Brief)
	}

	switch it := item.(type) {
	case *module.Function:
		ji.Signature = it.ArgsString()
	case *module.Field:
		ji.Kind = it.Kind().String()
		ji.Value = it.Initializer.Text()
		if fn := it.Initializer.Function; fn != nil {
			ji.Signature = fn.ArgsString()
			ji.Value = ""
		}
		ji.Children = convertFields(m, it.FieldTable(), showAll)
	case *module.Variable:
		ji.Kind = it.Kind().String()
		ji.Value = it.Initializer.Text()
		if fn := it.Initializer.Function; fn != nil {
			ji.Signature = fn.ArgsString()
			ji.Value = ""
		}
		ji.Children = convertFields(m, it.FieldTable(), showAll)
	}

	return ji
}

func convertFields(m *module.Module, table *module.Table, showAll bool) []JSONItem {
	if table == nil {
		return nil
	}
	var children []JSONItem
	for _, field := range table.Fields {
		if showAll || m.IsRendered(field) {
			children = append(children, convertItem(m, field, showAll))
		}
	}
	return children
}

func itemType(item module.Item) string {
	switch item.(type) {
	case *module.Function:
		return "function"
	case *module.Field:
		return "field"
	default:
		return "variable"
	}
}

// topLevelItems returns the items not nested in a table
func topLevelItems(m *module.Module, showAll bool) []module.Item {
	var items []module.Item
	for _, item := range m.Items() {
		if item.Base().Table != nil {
			continue
		}
		if showAll || m.IsRendered(item) {
			items = append(items, item)
		}
	}
	return items
}

func outputJSON(m *module.Module, files []string, showAll bool) error {
	var items []JSONItem
	for _, item := range topLevelItems(m, showAll) {
		items = append(items, convertItem(m, item, showAll))
	}

	output := map[string]interface{}{
		"files":    files,
		"items":    items,
		"warnings": m.Doxy.Warnings(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputHuman(m *module.Module, files []string, showAll bool) error {
	fmt.Printf("Parsed files: %s\n", strings.Join(files, ", "))
	fmt.Printf("=====================================\n\n")

	items := topLevelItems(m, showAll)
	for _, item := range items {
		printItem(convertItem(m, item, showAll), 0)
		fmt.Println()
	}

	// Summary
	fmt.Printf("Summary:\n")
	fmt.Printf("--------\n")
	fmt.Printf("Total items: %d\n", len(items))

	typeCounts := make(map[string]int)
	documentedCount := 0
	for _, item := range items {
		typeCounts[itemType(item)]++
		if block := item.Base().Block; block != nil && !block.IsEmpty() {
			documentedCount++
		}
	}
	for _, name := range []string{"variable", "function"} {
		if count := typeCounts[name]; count > 0 {
			fmt.Printf("%s: %d\n", name, count)
		}
	}

	if len(items) > 0 {
		fmt.Printf("Documented: %d (%.1f%%)\n", documentedCount, float64(documentedCount)/float64(len(items))*100)
	}
	fmt.Printf("Warnings: %d\n", m.Doxy.Warnings())

	return nil
}

func printItem(item JSONItem, depth int) {
	indent := strings.Repeat("  ", depth)

	fmt.Printf("%s%s: %s", indent, item.Type, item.Name)
	if item.FullName != item.Name {
		fmt.Printf(" (%s)", item.FullName)
	}
	if item.Kind != "" && item.Kind != module.VariableNormal.String() {
		fmt.Printf(" [%s]", item.Kind)
	}
	if item.IsLocal {
		fmt.Printf(" [local]")
	}
	if item.HasComment {
		fmt.Printf(" [documented]")
	}
	if !item.IsRendered {
		fmt.Printf(" [hidden]")
	}
	fmt.Println()

	if item.Signature != "" {
		fmt.Printf("%s  Signature: %s\n", indent, item.Signature)
	}
	if item.Value != "" {
		fmt.Printf("%s  Value: %s\n", indent, item.Value)
	}
	fmt.Printf("%s  Location: %s line %d, column %d\n", indent, item.File, item.Line, item.Column)
	if item.Brief != "" {
		fmt.Printf("%s  Brief: %s\n", indent, item.Brief)
	}

	for _, child := range item.Children {
		printItem(child, depth+1)
	}
}
