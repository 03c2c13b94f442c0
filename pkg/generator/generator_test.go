package generator

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"luadoxyxml/pkg/config"
	"luadoxyxml/pkg/lexer"

	"github.com/google/go-cmp/cmp"
)

func newTestGenerator() *Generator {
	return New(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// generate parses source as test.lua and returns the output directory
func generate(t *testing.T, source string) string {
	t.Helper()
	g := newTestGenerator()
	if err := g.ParseSource("test.lua", []byte(source)); err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}

	outputDir := t.TempDir()
	if err := g.Generate(filepath.Join(outputDir, "index.xml")); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return outputDir
}

func readOutput(t *testing.T, outputDir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outputDir, name))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data)
}

func assertContains(t *testing.T, name, content string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %s to contain %q:\n%s", name, want, content)
		}
	}
}

func TestFunctionRoundTrip(t *testing.T) {
	outputDir := generate(t, "--[[! brief ]]\nfunction foo(a, b, ...) end\n")

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global,
		"<memberdef kind='function' id='function_foo' prot='public' static='no'>",
		"<name>foo</name>",
		"<argsstring>(a, b, ...)</argsstring>",
		"<param><declname>a</declname></param>\n<param><declname>b</declname></param>\n<param><type>...</type></param>\n",
		"<para>brief</para>",
		"<location file='test.lua' line='2' col='10'/>",
	)
}

func TestRetroactiveAttachment(t *testing.T) {
	outputDir := generate(t, "x = 1 --[[!< doc for x ]]\n--[[! doc for y ]] y = 1\n")

	global := readOutput(t, outputDir, "global.xml")
	xAt := strings.Index(global, "id='variable_x'")
	yAt := strings.Index(global, "id='variable_y'")
	if xAt < 0 || yAt < xAt {
		t.Fatalf("Expected x rendered before y:\n%s", global)
	}
	if !strings.Contains(global[xAt:yAt], "doc for x") {
		t.Errorf("Expected x to carry its retroactive doc")
	}
	if !strings.Contains(global[yAt:], "doc for y") || strings.Contains(global[yAt:], "doc for x") {
		t.Errorf("Expected y to carry only its own doc")
	}
}

func TestReferenceIDsAreUnique(t *testing.T) {
	outputDir := generate(t, `
a_b = 1
a = {}
--! documented entry of a
a.b = 2
`)

	global := readOutput(t, outputDir, "global.xml")
	ids := regexp.MustCompile(`id='([^']+)'`).FindAllStringSubmatch(global, -1)
	var got []string
	for _, id := range ids {
		got = append(got, id[1])
	}

	if diff := cmp.Diff([]string{"global", "variable_a_b", "variable_a", "variable_a_b_2"}, got); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
	assertContains(t, "global.xml", global, "<name>a.b</name>")
}

func TestRedeclarationKeepsFirstDocumentation(t *testing.T) {
	outputDir := generate(t, "--[[! doc A ]] x = 1\n--[[! doc B ]] x = 2\n")

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global, "doc A", "<initializer>= 1</initializer>")
	if strings.Contains(global, "doc B") {
		t.Errorf("Expected the redeclaration to be left out:\n%s", global)
	}
}

func TestOverloadDocumentationIsRendered(t *testing.T) {
	outputDir := generate(t, "--! first f\nfunction f(a) end\nfunction f(a, b) end\n--! \\overload f\n--! second f\n")

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global,
		"<memberdef kind='function' id='function_f' prot='public' static='no'>",
		"<memberdef kind='function' id='function_f_2' prot='public' static='no'>",
		"<argsstring>(a, b)</argsstring>",
		"<para>second f</para>",
	)

	first := strings.Index(global, "id='function_f'")
	second := strings.Index(global, "id='function_f_2'")
	if first < 0 || second < first || !strings.Contains(global[first:second], "first f") {
		t.Errorf("Expected the primary declaration first with its own doc:\n%s", global)
	}

	index := readOutput(t, outputDir, "index.xml")
	assertContains(t, "index.xml", index, "<member kind='function' refid='function_f_2'><name>f</name></member>")
}

func TestGroupOnConsecutiveLines(t *testing.T) {
	outputDir := generate(t, "--! \\group g Things\n--! @{\n\n--! in g\ny = 1\n--! @}\n")

	group := readOutput(t, outputDir, "group_g.xml")
	assertContains(t, "group_g.xml", group,
		"<title>Things</title>",
		"<memberdef id='variable_y'/>",
	)

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global, "<para>in g</para>")
}

func TestGroupDescriptionOnConsecutiveLines(t *testing.T) {
	g := newTestGenerator()
	source := "--! \\group g Things\n--! All the things.\n\n--! \\ingroup g\n--! doc v\nv = 1\n"
	if err := g.ParseSource("test.lua", []byte(source)); err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	outputDir := t.TempDir()
	if err := g.Generate(filepath.Join(outputDir, "index.xml")); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	group := readOutput(t, outputDir, "group_g.xml")
	assertContains(t, "group_g.xml", group,
		"<para>All the things.</para>",
		"<memberdef id='variable_v'/>",
	)

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global, "<para>doc v</para>")
	if strings.Contains(global, "All the things.") {
		t.Errorf("Expected the group text kept out of v:\n%s", global)
	}
	if warnings := g.Module().Doxy.Warnings(); warnings != 0 {
		t.Errorf("Expected no warnings, got %d", warnings)
	}
}

func TestStructTable(t *testing.T) {
	outputDir := generate(t, `
--! \luastruct
--! A point
Point = {
  x = 0, --!< horizontal
  y = 0, --!< vertical
}
Plain = { a = 1 }
`)

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global,
		"<innerclass refid='struct_point'/>",
		"<memberdef kind='variable' id='variable_plain' prot='public' static='no'>",
	)

	point := readOutput(t, outputDir, "struct_point.xml")
	assertContains(t, "struct_point.xml", point,
		"<compounddef kind='struct' id='struct_point' language='Lua'>",
		"<compoundname>Point</compoundname>",
		"<memberdef kind='variable' id='variable_point_x' prot='public' static='no'>",
		"<para>horizontal</para>",
		"<para>A point</para>",
	)

	index := readOutput(t, outputDir, "index.xml")
	assertContains(t, "index.xml", index,
		"<compound kind='struct' refid='struct_point'><name>Point</name>",
		"<member kind='variable' refid='variable_point_y'><name>y</name></member>",
	)
}

func TestModuleTable(t *testing.T) {
	outputDir := generate(t, `
--! \luamodule
--! Utilities
local M = {}

--! Opens a file
function M.open(path) end

--! Closes
function M:close() end

return M
`)

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global, "<innernamespace refid='namespace_m'/>")

	ns := readOutput(t, outputDir, "namespace_m.xml")
	assertContains(t, "namespace_m.xml", ns,
		"<compounddef kind='namespace' id='namespace_m' language='Lua'>",
		"<memberdef kind='function' id='function_m_open' prot='public' static='no'>",
		"<name>open</name>",
		"<param><declname>path</declname></param>",
		"<memberdef kind='function' id='function_m_close' prot='public' static='no'>",
	)
}

func TestDeferredSeeAlso(t *testing.T) {
	outputDir := generate(t, `
--! \see Later
first = 1
--! later doc
Later = 2
`)

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global,
		"<para><simplesect kind='see'><para><ref refid='variable_later' kindref='member'>Later</ref></para></simplesect></para>",
	)
}

func TestUnresolvedSeeAlsoIsText(t *testing.T) {
	g := newTestGenerator()
	if err := g.ParseSource("test.lua", []byte("--! \\see Missing\nfirst = 1\n")); err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	outputDir := t.TempDir()
	if err := g.Generate(filepath.Join(outputDir, "index.xml")); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global, "<simplesect kind='see'><para>Missing</para></simplesect>")
	if g.Module().Doxy.Warnings() == 0 {
		t.Errorf("Expected the unresolved reference to be reported")
	}
}

func TestEmptyGroupsArePruned(t *testing.T) {
	outputDir := generate(t, `
--! \group empty Nothing here
x = 1
--[[! \group used Used things
@{ ]]
y = 2
--! @}
`)

	if _, err := os.Stat(filepath.Join(outputDir, "group_empty.xml")); !os.IsNotExist(err) {
		t.Errorf("Expected no compound for the empty group, got %v", err)
	}

	used := readOutput(t, outputDir, "group_used.xml")
	assertContains(t, "group_used.xml", used,
		"<compounddef kind='group' id='group_used' language='Lua'>",
		"<title>Used things</title>",
		"<memberdef id='variable_y'/>",
	)

	index := readOutput(t, outputDir, "index.xml")
	if strings.Contains(index, "group_empty") {
		t.Errorf("Expected the empty group missing from the index:\n%s", index)
	}
}

func TestMultipleFiles(t *testing.T) {
	g := newTestGenerator()
	if err := g.ParseSource("a.lua", []byte("--! \\see B\nA = 1\n")); err != nil {
		t.Fatal(err)
	}
	if err := g.ParseSource("b.lua", []byte("--! doc B\nB = 2\n")); err != nil {
		t.Fatal(err)
	}

	outputDir := t.TempDir()
	if err := g.Generate(filepath.Join(outputDir, "index.xml")); err != nil {
		t.Fatal(err)
	}

	global := readOutput(t, outputDir, "global.xml")
	assertContains(t, "global.xml", global,
		"<ref refid='variable_b' kindref='member'>B</ref>",
		"<location file='b.lua' line='2' col='1'/>",
	)
	if diff := cmp.Diff([]string{"a.lua", "b.lua"}, g.Files()); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrorIsPositioned(t *testing.T) {
	g := newTestGenerator()
	err := g.ParseSource("bad.lua", []byte("x = = 1\n"))

	var sourceErr *lexer.SourceError
	if !errors.As(err, &sourceErr) {
		t.Fatalf("Expected a SourceError, got %v", err)
	}
	if sourceErr.Pos.Line != 1 || sourceErr.Pos.Col != 5 {
		t.Errorf("Expected error at 1:5, got %s", sourceErr.Pos)
	}
	if len(g.Files()) != 0 {
		t.Errorf("Expected the failed file not recorded")
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.lua", "a.dox", "c.txt", filepath.Join("sub", "d.lua")} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(dir, "c.txt")

	files, err := newTestGenerator().CollectFiles([]string{dir, explicit})
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "a.dox"), filepath.Join(dir, "b.lua"), explicit}
	if diff := cmp.Diff(expected, files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}

	if _, err := newTestGenerator().CollectFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Errorf("Expected error for a missing input")
	}
}

func TestGenerateDefaultsToConfiguredOutput(t *testing.T) {
	outputDir := t.TempDir()
	cfg := config.Default()
	cfg.Output = filepath.Join(outputDir, "xml", "doxy.xml")

	g := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := g.ParseSource("test.lua", []byte("x = 1\n")); err != nil {
		t.Fatal(err)
	}
	if err := g.Generate(""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	index := readOutput(t, filepath.Join(outputDir, "xml"), "doxy.xml")
	assertContains(t, "doxy.xml", index, "<compound kind='file' refid='global'><name>global</name>")
}
