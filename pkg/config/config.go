// Package config loads the luadoxyxml configuration file
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"luadoxyxml/pkg/module"

	"gopkg.in/yaml.v2"
)

// FileName is the configuration file looked up in the working directory
const FileName = ".luadoxyxml.yaml"

// DefaultOutput is the index file written when nothing else is configured
const DefaultOutput = "index.xml"

// Command configures one custom comment command
type Command struct {
	Name     string `yaml:"name"`
	Tag      string `yaml:"tag"`
	Kind     string `yaml:"kind,omitempty"`
	Param    bool   `yaml:"param,omitempty"`
	BaseType bool   `yaml:"baseType,omitempty"`
}

// Config represents the structure of a .luadoxyxml.yaml configuration file
type Config struct {
	Output     string    `yaml:"output,omitempty"`
	Language   string    `yaml:"language,omitempty"`
	Extensions []string  `yaml:"extensions,omitempty"`
	Commands   []Command `yaml:"commands,omitempty"`
}

// Default returns the configuration used without a configuration file
func Default() *Config {
	return &Config{
		Output:     DefaultOutput,
		Language:   "Lua",
		Extensions: []string{".lua", ".dox"},
	}
}

// Load reads the configuration at path. An empty path looks for FileName in
// the working directory and falls back to Default when it does not exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(content)
}

// Parse decodes YAML content over the defaults
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configured commands
func (c *Config) Validate() error {
	for i, command := range c.Commands {
		if command.Name == "" {
			return fmt.Errorf("command %d: missing name", i+1)
		}
		if command.Tag == "" {
			return fmt.Errorf("command %s: missing tag", command.Name)
		}
		if _, ok := module.ParseVariableKind(command.Kind); !ok {
			return fmt.Errorf("command %s: unknown kind %q", command.Name, command.Kind)
		}
		if (command.Param || command.BaseType) && !strings.Contains(command.Tag, "%s") {
			return fmt.Errorf("command %s: parameter tag must contain %%s", command.Name)
		}
	}
	return nil
}

// Vocabulary returns the default commands overridden by the configured ones
func (c *Config) Vocabulary() *module.Vocabulary {
	vocabulary := module.DefaultVocabulary()
	for _, command := range c.Commands {
		kind, _ := module.ParseVariableKind(command.Kind)
		vocabulary.Add(module.CustomCommand{
			Name:     command.Name,
			Tag:      command.Tag,
			Kind:     kind,
			Param:    command.Param,
			BaseType: command.BaseType,
		})
	}
	return vocabulary
}

// HasExtension reports whether path carries one of the configured extensions
func (c *Config) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range c.Extensions {
		if strings.ToLower(candidate) == ext {
			return true
		}
	}
	return false
}
