package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateCommandFlags(t *testing.T) {
	cmd := generateCmd

	if cmd.Use != "generate [flags] <file_or_directory>..." {
		t.Errorf("Expected generate command Use to be 'generate [flags] <file_or_directory>...', got '%s'", cmd.Use)
	}

	for _, flagName := range []string{"output", "language"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Expected flag '%s' to be defined", flagName)
		}
	}
	for _, flagName := range []string{"config", "verbose", "quiet"} {
		if rootCmd.PersistentFlags().Lookup(flagName) == nil {
			t.Errorf("Expected persistent flag '%s' to be defined", flagName)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "mod.lua")
	content := "--! \\luastruct\n--! A vector\nVector = { x = 0 }\n"
	if err := os.WriteFile(source, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("not lua"), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	output := filepath.Join(tempDir, "xml", "index.xml")
	rootCmd.SetArgs([]string{"generate", "--quiet", "--output", output, tempDir})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for _, name := range []string{"index.xml", "global.xml", "struct_vector.xml"} {
		if _, err := os.Stat(filepath.Join(tempDir, "xml", name)); err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
		}
	}
}

func TestGenerateCommandReportsParseErrors(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "bad.lua")
	if err := os.WriteFile(source, []byte("local = 1\n"), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	rootCmd.SetArgs([]string{"generate", "--quiet", "--output", filepath.Join(tempDir, "index.xml"), source})
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "bad.lua(1,7)") {
		t.Errorf("Expected positioned parse error, got %v", err)
	}
}

// captureStdout runs fn with os.Stdout redirected and returns what it printed
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	out, err := os.CreateTemp(t.TempDir(), "stdout")
	if err != nil {
		t.Fatalf("Failed to create output file: %v", err)
	}
	defer out.Close()

	saved := os.Stdout
	os.Stdout = out
	runErr := fn()
	os.Stdout = saved
	if runErr != nil {
		t.Fatalf("command failed: %v", runErr)
	}

	data, err := os.ReadFile(out.Name())
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}

func TestFilterCommand(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "mod.lua")
	content := "--! \\luastruct\n--! A vector\nVector = { x = 0 }\n"
	if err := os.WriteFile(source, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	rootCmd.SetArgs([]string{"filter", "--quiet", "--format", "json", source})
	defer rootCmd.SetArgs(nil)
	output := captureStdout(t, rootCmd.Execute)

	var result struct {
		Files    []string   `json:"files"`
		Items    []JSONItem `json:"items"`
		Warnings int        `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Expected JSON output, got %v:\n%s", err, output)
	}

	if len(result.Items) != 1 {
		t.Fatalf("Expected one item, got %+v", result.Items)
	}
	vector := result.Items[0]
	if vector.Name != "Vector" || vector.Kind != "struct" || !vector.HasComment {
		t.Errorf("Unexpected item %+v", vector)
	}
	if len(vector.Children) != 1 || vector.Children[0].Name != "x" || vector.Children[0].Value != "0" {
		t.Errorf("Expected field x = 0, got %+v", vector.Children)
	}
	if len(result.Files) != 1 || result.Files[0] != source {
		t.Errorf("Expected files [%s], got %v", source, result.Files)
	}
}

func TestTokensCommand(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "mod.lua")
	if err := os.WriteFile(source, []byte("--! doc\nx = 1\n"), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"tokens", "--comments=false", source})
	output := captureStdout(t, rootCmd.Execute)
	if strings.Contains(output, "doxy-comment-sl") {
		t.Errorf("Expected no comment tokens by default:\n%s", output)
	}
	for _, want := range []string{"identifier", `"x"`, "eof"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, output)
		}
	}

	rootCmd.SetArgs([]string{"tokens", "-C", source})
	output = captureStdout(t, rootCmd.Execute)
	if !strings.Contains(output, "doxy-comment-sl") || !strings.Contains(output, `" doc"`) {
		t.Errorf("Expected the comment token with -C:\n%s", output)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("LUADOXYXML_TEST_VALUE", "set")

	if got := getEnvOrDefault("LUADOXYXML_TEST_VALUE", "default"); got != "set" {
		t.Errorf("Expected environment value, got %q", got)
	}
	if got := getEnvOrDefault("LUADOXYXML_TEST_UNSET", "default"); got != "default" {
		t.Errorf("Expected default value, got %q", got)
	}
}
