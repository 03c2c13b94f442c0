package module

import (
	"strings"

	"luadoxyxml/pkg/dox"
)

// CustomCommand maps a comment command to the internal tag it appends.
// Param commands substitute their argument for "%s" in Tag.
type CustomCommand struct {
	Name     string
	Tag      string
	Kind     VariableKind
	Param    bool
	BaseType bool
}

// Vocabulary is the set of custom commands understood in comments
type Vocabulary struct {
	commands map[string]CustomCommand
	order    []string
}

// NewVocabulary creates a vocabulary from commands
func NewVocabulary(commands ...CustomCommand) *Vocabulary {
	v := &Vocabulary{commands: make(map[string]CustomCommand)}
	for _, command := range commands {
		v.Add(command)
	}
	return v
}

// DefaultCommands returns the built-in Lua commands
func DefaultCommands() []CustomCommand {
	return []CustomCommand{
		{Name: "luastruct", Tag: ":luastruct:", Kind: VariableStruct},
		{Name: "luaenum", Tag: ":luaenum:", Kind: VariableEnum},
		{Name: "luaclass", Tag: ":luaclass:", Kind: VariableClass},
		{Name: "luamodule", Tag: ":luamodule:", Kind: VariableModule},
		{Name: "luabasetype", Tag: ":luabasetype(%s)", Param: true, BaseType: true},
	}
}

// DefaultVocabulary returns a vocabulary holding DefaultCommands
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(DefaultCommands()...)
}

// Add registers command, replacing any command of the same name
func (v *Vocabulary) Add(command CustomCommand) {
	if _, exists := v.commands[command.Name]; !exists {
		v.order = append(v.order, command.Name)
	}
	v.commands[command.Name] = command
}

// Lookup returns the command named name
func (v *Vocabulary) Lookup(name string) (CustomCommand, bool) {
	command, ok := v.commands[name]
	return command, ok
}

// Commands returns the commands in registration order
func (v *Vocabulary) Commands() []CustomCommand {
	commands := make([]CustomCommand, 0, len(v.order))
	for _, name := range v.order {
		commands = append(commands, v.commands[name])
	}
	return commands
}

// Process appends the tag of command to block's internal description
func (v *Vocabulary) Process(command, param string, block *dox.Block) (handled, paramUsed bool) {
	cmd, ok := v.commands[command]
	if !ok {
		return false, false
	}

	if cmd.Param {
		block.AppendInternal(strings.ReplaceAll(cmd.Tag, "%s", param))
		return true, true
	}

	block.AppendInternal(cmd.Tag)
	return true, false
}

// Classify returns the kind of the first registered kind tag found in internal
func (v *Vocabulary) Classify(internal string) VariableKind {
	if internal == "" {
		return VariableNormal
	}
	for _, name := range v.order {
		cmd := v.commands[name]
		if cmd.Param || cmd.Kind == VariableNormal || cmd.Tag == "" {
			continue
		}
		if strings.Contains(internal, cmd.Tag) {
			return cmd.Kind
		}
	}
	return VariableNormal
}

// BaseType extracts the argument of the first base-type tag found in internal
func (v *Vocabulary) BaseType(internal string) string {
	for _, name := range v.order {
		cmd := v.commands[name]
		if !cmd.BaseType {
			continue
		}

		prefix, suffix, ok := strings.Cut(cmd.Tag, "%s")
		if !ok {
			continue
		}

		start := strings.Index(internal, prefix)
		if start < 0 {
			continue
		}
		rest := internal[start+len(prefix):]
		end := len(rest)
		if suffix != "" {
			if end = strings.Index(rest, suffix); end < 0 {
				continue
			}
		}
		return rest[:end]
	}
	return ""
}
