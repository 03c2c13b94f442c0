package cmd

import (
	"fmt"

	"luadoxyxml/pkg/generator"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] <file_or_directory>...",
	Short: "Generate Doxygen XML from Lua sources",
	Long: `Parse the given Lua files and write Doxygen XML. Directories are listed
without recursion and filtered by the configured extensions (.lua and .dox by
default). The index file is written to the output path and every compound file
next to it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("output", "o", "", "Index file to write (default index.xml)")
	generateCmd.Flags().String("language", "", "Language attribute of the generated compounds")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Output = output
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		cfg.Language = language
	}

	g := generator.New(cfg, newLogger())
	files, err := g.CollectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found")
	}

	for _, file := range files {
		if !quiet {
			fmt.Printf("Parsing %s...\n", file)
		}
		if err := g.ParseFile(file); err != nil {
			return err
		}
	}

	if err := g.Generate(cfg.Output); err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("Wrote %s (%d files, %d warnings)\n", cfg.Output, len(files), g.Module().Doxy.Warnings())
	}
	return nil
}
