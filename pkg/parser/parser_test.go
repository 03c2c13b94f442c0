package parser

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"luadoxyxml/pkg/lexer"
	"luadoxyxml/pkg/module"

	"github.com/google/go-cmp/cmp"
)

func parseSource(t *testing.T, source string) *module.Module {
	t.Helper()
	m := module.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := New(m).Parse("test.lua", []byte(source)); err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	return m
}

func detailed(item module.Item) string {
	if item == nil || item.Base().Block == nil {
		return ""
	}
	return strings.TrimSpace(item.Base().Block.Detailed)
}

func itemNames(m *module.Module) []string {
	var names []string
	for _, item := range m.Items() {
		names = append(names, module.QualifiedName(item))
	}
	return names
}

func TestParseDeclarations(t *testing.T) {
	m := parseSource(t, `
local M = {}
M.version = "1.0"
function M.open(path) end
function M:close() end
x, y = 1, 2
local function helper() end
return M
`)

	expected := []string{"M", "M.version", "M.open", "M:close", "x", "y", "helper"}
	if diff := cmp.Diff(expected, itemNames(m)); diff != "" {
		t.Errorf("Declarations mismatch (-want +got):\n%s", diff)
	}

	if local := m.FindItem("M"); local == nil || !local.Base().Local {
		t.Errorf("Expected M declared as a local")
	}
	if method, ok := m.FindItem("M.close").(*module.Field); !ok || !method.IsMethod() {
		t.Errorf("Expected M:close declared as a method field")
	}
}

func TestLeadingComment(t *testing.T) {
	m := parseSource(t, "--[[! doc for y ]] y = 1\n")

	if got := detailed(m.FindItem("y")); got != "doc for y" {
		t.Errorf("Expected %q, got %q", "doc for y", got)
	}
}

func TestRetroactiveComment(t *testing.T) {
	m := parseSource(t, "x = 1 --[[!< doc for x ]]\ny = 2\n")

	if got := detailed(m.FindItem("x")); got != "doc for x" {
		t.Errorf("Expected retroactive doc on x, got %q", got)
	}
	if got := detailed(m.FindItem("y")); got != "" {
		t.Errorf("Expected no doc on y, got %q", got)
	}
}

func TestRetroactiveTableField(t *testing.T) {
	m := parseSource(t, `
--! Colors
Colors = {
  red = 1, --!< the red one
  green = 2, --!< the green one
} --!< the table
`)

	for name, want := range map[string]string{
		"Colors.red":   "the red one",
		"Colors.green": "the green one",
	} {
		if got := detailed(m.FindItem(name)); got != want {
			t.Errorf("Expected %s doc %q, got %q", name, want, got)
		}
	}
	if got := detailed(m.FindItem("Colors")); got != "Colors\nthe table" {
		t.Errorf("Expected merged table doc, got %q", got)
	}
}

func TestConsecutiveLineComments(t *testing.T) {
	m := parseSource(t, "--! first\n--! second\n\n--! other\nx = 1\n")

	if got := detailed(m.FindItem("x")); got != "other" {
		t.Errorf("Expected only the adjacent block, got %q", got)
	}

	m = parseSource(t, "--! first\n--! second\nx = 1\n")
	if got := detailed(m.FindItem("x")); got != "first\nsecond" {
		t.Errorf("Expected merged lines, got %q", got)
	}
}

func TestRedeclarationKeepsFirst(t *testing.T) {
	m := parseSource(t, "--[[! doc A ]] x = 1\n--[[! doc B ]] x = 2\n")

	x := m.FindItem("x")
	if got := detailed(x); got != "doc A" {
		t.Errorf("Expected first declaration doc, got %q", got)
	}
	if x.(*module.Variable).Initializer.Text() != "1" {
		t.Errorf("Expected first initializer, got %q", x.(*module.Variable).Initializer.Text())
	}
}

func TestStructClassification(t *testing.T) {
	m := parseSource(t, `
--! \luastruct
--! A point
Point = { x = 0, y = 0 }
Plain = { a = 1 }
`)

	point := m.FindItem("Point").(*module.Variable)
	if point.Kind() != module.VariableStruct {
		t.Errorf("Expected Point classified as struct, got %s", point.Kind())
	}
	if names := len(point.FieldTable().Fields); names != 2 {
		t.Errorf("Expected 2 fields, got %d", names)
	}
	if plain := m.FindItem("Plain").(*module.Variable); plain.Kind() != module.VariableNormal {
		t.Errorf("Expected Plain to stay normal, got %s", plain.Kind())
	}
}

func TestTableFields(t *testing.T) {
	m := parseSource(t, `T = { a = 1, ["b c"] = 2, [3] = 4, "five", nested = { z = true } }`)

	table := m.TableOf(m.FindItem("T"))
	if table == nil {
		t.Fatal("Expected T to hold a table")
	}

	var names []string
	for _, field := range table.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"a", "b c", "", "", "nested"}, names); diff != "" {
		t.Errorf("Field names mismatch (-want +got):\n%s", diff)
	}
	if table.Fields[2].Index.Text() != "3" {
		t.Errorf("Expected index text %q, got %q", "3", table.Fields[2].Index.Text())
	}
	if m.FindItem("T.nested.z") == nil {
		t.Errorf("Expected nested field reachable")
	}
}

func TestInitializerKinds(t *testing.T) {
	m := parseSource(t, `
a = 42
b = a
c = a + 1 * 2
d = function(p) end
e = {}
f = -1
g = M.x.y
`)

	tests := []struct {
		name string
		kind module.ValueKind
		text string
	}{
		{"a", module.ValueConstant, "42"},
		{"b", module.ValueVariableRef, "a"},
		{"c", module.ValueExpression, "a + 1 * 2"},
		{"d", module.ValueFunction, "function(p) end"},
		{"e", module.ValueTable, "{}"},
		{"f", module.ValueExpression, "-1"},
		{"g", module.ValueVariableRef, "M.x.y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := m.FindItem(tt.name).(*module.Variable)
			if v.Initializer.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, v.Initializer.Kind)
			}
			if v.Initializer.Text() != tt.text {
				t.Errorf("Expected text %q, got %q", tt.text, v.Initializer.Text())
			}
		})
	}

	if ref := m.FindItem("g").(*module.Variable).Initializer.Ref; ref != "M.x.y" {
		t.Errorf("Expected ref %q, got %q", "M.x.y", ref)
	}
}

func TestFunctionSignature(t *testing.T) {
	m := parseSource(t, "--[[! brief ]]\nfunction foo(a, b, ...) end\n")

	fn, ok := m.FindItem("foo").(*module.Function)
	if !ok {
		t.Fatalf("Expected foo declared as a function")
	}
	if fn.ArgsString() != "(a, b, ...)" {
		t.Errorf("Expected args %q, got %q", "(a, b, ...)", fn.ArgsString())
	}
	if got := detailed(fn); got != "brief" {
		t.Errorf("Expected doc %q, got %q", "brief", got)
	}
}

func TestMethodOwnerMustBeDeclared(t *testing.T) {
	m := parseSource(t, `
--! method of a table declared later
function Later:method() end
Later = {}
--! documented
function Later.ok() end
`)

	if m.FindItem("Later.method") != nil {
		t.Errorf("Expected method on undeclared owner rejected")
	}
	if got := detailed(m.FindItem("Later.ok")); got != "documented" {
		t.Errorf("Expected doc on Later.ok, got %q", got)
	}
	if m.Doxy.Warnings() != 1 {
		t.Errorf("Expected 1 warning, got %d", m.Doxy.Warnings())
	}
	if got := detailed(m.FindItem("Later")); got != "" {
		t.Errorf("Expected rejected doc not to leak, got %q", got)
	}
}

func TestFunctionBodyIsolation(t *testing.T) {
	m := parseSource(t, `
function outer(a) --!< outer doc
  --! inner doc
  local inner = 1
  global_in_body = {}
  --! dangling
end
after = 2
`)

	if diff := cmp.Diff([]string{"outer", "after"}, itemNames(m)); diff != "" {
		t.Errorf("Declarations mismatch (-want +got):\n%s", diff)
	}
	if got := detailed(m.FindItem("outer")); got != "outer doc" {
		t.Errorf("Expected header doc on outer, got %q", got)
	}
	if got := detailed(m.FindItem("after")); got != "" {
		t.Errorf("Expected no doc on after, got %q", got)
	}
}

func TestAliasOwnerResolution(t *testing.T) {
	m := parseSource(t, `
local impl = {}
Public = impl
function Public.run() end
`)

	if m.FindItem("impl.run") == nil {
		t.Errorf("Expected function added to the aliased table")
	}
}

func TestControlFlow(t *testing.T) {
	m := parseSource(t, `#!/usr/bin/env lua
local t <const> = {}
for i = 1, 10, 2 do t[i] = i end
for k, v in pairs(t) do print(k, v) end
while false do break end
repeat local z = 1 until z == 1
if a then b() elseif c then d() else e() end
do goto skip end
::skip::
print "done"
obj:method{ 1, 2 }
done = true
`)

	if m.FindItem("done") == nil {
		t.Errorf("Expected declaration after control flow")
	}
	if m.FindItem("z") != nil {
		t.Errorf("Expected block-local z not recorded")
	}
}

func TestSyntaxError(t *testing.T) {
	m := module.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := New(m).Parse("bad.lua", []byte("x = 1\nfunction (a) end\n"))

	var sourceErr *lexer.SourceError
	if !errors.As(err, &sourceErr) {
		t.Fatalf("Expected SourceError, got %v", err)
	}
	if sourceErr.Kind != lexer.ErrorSyntax || sourceErr.File != "bad.lua" || sourceErr.Pos.Line != 2 {
		t.Errorf("Unexpected error %+v", sourceErr)
	}
}

func TestUnclosedBlockError(t *testing.T) {
	m := module.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := New(m).Parse("bad.lua", []byte("do\n  x = 1\n"))

	if err == nil || !strings.Contains(err.Error(), "'end' expected (to close 'do' at line 1)") {
		t.Errorf("Expected unclosed block error, got %v", err)
	}
}

func TestLexicalError(t *testing.T) {
	m := module.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := New(m).Parse("bad.lua", []byte("x = 1\ny = $\n"))

	var sourceErr *lexer.SourceError
	if !errors.As(err, &sourceErr) {
		t.Fatalf("Expected SourceError, got %v", err)
	}
	if sourceErr.Kind != lexer.ErrorLexical || sourceErr.Pos.Line != 2 {
		t.Errorf("Unexpected error %+v", sourceErr)
	}
}

func TestGroupRegionEndsWithBlock(t *testing.T) {
	m := parseSource(t, `
--[[! \group util Utilities
@{ ]]
a = 1
do
  --! \ingroup util @{
end
--! @}
b = 2
`)

	a := m.FindItem("a")
	if a.Base().Block == nil || a.Base().Block.Group == nil || a.Base().Block.Group.Name != "util" {
		t.Fatalf("Expected a in group util")
	}
	if b := m.FindItem("b"); b.Base().Block != nil && b.Base().Block.Group != nil {
		t.Errorf("Expected b outside the group")
	}
}
