package dox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLexerTokens(t *testing.T) {
	input := " \\brief Short @{\n  more text @}\n@struct Point \\unknown mail a@b.com"

	tokens := NewLexer(input).Tokenize()

	type tok struct {
		Kind  TokenKind
		Value string
	}

	var got []tok
	for _, token := range tokens {
		got = append(got, tok{token.Kind, token.Value})
	}

	expected := []tok{
		{TokenText, " "},
		{TokenBrief, "brief"},
		{TokenText, " Short "},
		{TokenOpeningBrace, ""},
		{TokenNewLine, "  "},
		{TokenText, "more text "},
		{TokenClosingBrace, ""},
		{TokenNewLine, ""},
		{TokenStruct, "struct"},
		{TokenText, " Point "},
		{TokenOtherCommand, "unknown"},
		{TokenText, " mail a@b.com"},
		{TokenEOF, ""},
	}

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerRawText(t *testing.T) {
	tokens := NewLexer("\\param x").Tokenize()
	if tokens[0].Kind != TokenOtherCommand || tokens[0].Raw != "\\param" {
		t.Errorf("Expected raw other command, got %+v", tokens[0])
	}
}

func TestLexerCRLF(t *testing.T) {
	tokens := NewLexer("a\r\n\tb").Tokenize()
	if len(tokens) != 4 {
		t.Fatalf("Expected 4 tokens, got %d: %+v", len(tokens), tokens)
	}
	if tokens[1].Kind != TokenNewLine || tokens[1].Value != "\t" {
		t.Errorf("Expected new line with tab indent, got %+v", tokens[1])
	}
}

func TestSplitWord(t *testing.T) {
	tests := []struct {
		input string
		word  string
		rest  string
	}{
		{"  name rest of line", "name", " rest of line"},
		{"single", "single", ""},
		{"", "", ""},
		{"\tx\ty", "x", "\ty"},
	}

	for _, tt := range tests {
		word, rest := splitWord(tt.input)
		if word != tt.word || rest != tt.rest {
			t.Errorf("splitWord(%q) = %q, %q; want %q, %q", tt.input, word, rest, tt.word, tt.rest)
		}
	}
}
