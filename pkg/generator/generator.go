// Package generator drives one documentation run: parse the inputs into a
// module, then resolve and write the Doxygen XML.
package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"luadoxyxml/pkg/config"
	"luadoxyxml/pkg/module"
	"luadoxyxml/pkg/parser"
)

// Generator accumulates parsed sources for one documentation run
type Generator struct {
	config *config.Config
	logger *slog.Logger
	module *module.Module
	parser *parser.Parser
	files  []string
}

// New creates a generator. A nil config selects config.Default.
func New(cfg *config.Config, logger *slog.Logger) *Generator {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := module.New(cfg.Vocabulary(), logger)
	if cfg.Language != "" {
		m.Doxy.Language = cfg.Language
	}

	return &Generator{
		config: cfg,
		logger: logger,
		module: m,
		parser: parser.New(m),
	}
}

// Module returns the module built so far
func (g *Generator) Module() *module.Module {
	return g.module
}

// Files returns the parsed files in order
func (g *Generator) Files() []string {
	return g.files
}

// ParseFile parses one Lua file
func (g *Generator) ParseFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return g.ParseSource(path, content)
}

// ParseSource parses content as the file name
func (g *Generator) ParseSource(name string, content []byte) error {
	g.logger.Debug("parsing", "file", name, "bytes", len(content))
	if err := g.parser.Parse(name, content); err != nil {
		return fmt.Errorf("failed to parse file %s: %w", name, err)
	}
	g.files = append(g.files, name)
	return nil
}

// Generate resolves references and writes the XML. outputPath names the
// index file; compound files are written next to it.
func (g *Generator) Generate(outputPath string) error {
	if outputPath == "" {
		outputPath = g.config.Output
	}
	if outputPath == "" {
		outputPath = config.DefaultOutput
	}

	outputDir := filepath.Dir(outputPath)
	if err := g.module.Doxy.GenerateDocumentation(outputDir, filepath.Base(outputPath)); err != nil {
		return fmt.Errorf("failed to generate documentation: %w", err)
	}

	g.logger.Info("documentation generated",
		"output", outputPath,
		"files", len(g.files),
		"items", len(g.module.Items()),
		"warnings", g.module.Doxy.Warnings())
	return nil
}

// CollectFiles expands inputs into source files. Directories are listed
// without recursion and filtered by the configured extensions; files named
// explicitly are always kept.
func (g *Generator) CollectFiles(inputs []string) ([]string, error) {
	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", input, err)
		}

		var names []string
		for _, entry := range entries {
			if !entry.IsDir() && g.config.HasExtension(entry.Name()) {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(input, name))
		}
	}
	return files, nil
}
