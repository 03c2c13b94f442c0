// Package dox implements the structured-comment ("doxy") subsystem: a lexer
// and parser for comment bodies, the blocks, groups and footnotes they
// produce, and the manager that resolves named targets and emits
// Doxygen-compatible group documentation.
package dox

import (
	"strings"
)

// TokenKind represents the kind of a comment token
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenText
	TokenNewLine
	TokenOtherCommand
	TokenOpeningBrace // @{
	TokenClosingBrace // @}

	TokenImport
	TokenEnum
	TokenEnumValue
	TokenStruct
	TokenUnion
	TokenClass
	TokenAlias
	TokenVariable
	TokenField
	TokenFunction
	TokenOverload
	TokenProperty
	TokenEvent
	TokenTypedef
	TokenNamespace
	TokenGroup
	TokenInGroup
	TokenSubGroup
	TokenTitle
	TokenBrief
	TokenSeeAlso
	TokenFootnote
)

// commands maps command names (without the '\' or '@' prefix) to token kinds
var commands = map[string]TokenKind{
	"import":    TokenImport,
	"enum":      TokenEnum,
	"enumvalue": TokenEnumValue,
	"struct":    TokenStruct,
	"union":     TokenUnion,
	"class":     TokenClass,
	"alias":     TokenAlias,
	"variable":  TokenVariable,
	"field":     TokenField,
	"function":  TokenFunction,
	"overload":  TokenOverload,
	"property":  TokenProperty,
	"event":     TokenEvent,
	"typedef":   TokenTypedef,
	"namespace": TokenNamespace,
	"group":     TokenGroup,
	"ingroup":   TokenInGroup,
	"subgroup":  TokenSubGroup,
	"title":     TokenTitle,
	"brief":     TokenBrief,
	"see":       TokenSeeAlso,
	"footnote":  TokenFootnote,
}

var tokenKindNames = map[TokenKind]string{
	TokenEOF:          "eof",
	TokenText:         "text",
	TokenNewLine:      "new-line",
	TokenOtherCommand: "other-command",
	TokenOpeningBrace: "@{",
	TokenClosingBrace: "@}",
}

func init() {
	for name, kind := range commands {
		tokenKindNames[kind] = "\\" + name
	}
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsTarget reports whether the command names the item a block documents
func (k TokenKind) IsTarget() bool {
	switch k {
	case TokenEnum, TokenEnumValue, TokenStruct, TokenUnion, TokenClass, TokenAlias,
		TokenVariable, TokenField, TokenFunction, TokenOverload, TokenProperty,
		TokenEvent, TokenTypedef, TokenNamespace:
		return true
	}
	return false
}

// Token is a comment token. For commands Value is the command name, for
// text it is the text run and for new lines the indentation that follows.
// Raw is the original source text of the token.
type Token struct {
	Kind  TokenKind
	Value string
	Raw   string
}

// Lexer splits a comment body into comment tokens
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new comment lexer
func NewLexer(comment string) *Lexer {
	return &Lexer{input: comment}
}

// Tokenize returns all tokens of the comment, ending with EOF
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		token := l.Next()
		tokens = append(tokens, token)
		if token.Kind == TokenEOF {
			return tokens
		}
	}
}

// Next returns the next comment token
func (l *Lexer) Next() Token {
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF}
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '\n' || (c == '\r' && l.peekAt(1) == '\n'):
		if c == '\r' {
			l.pos++
		}
		l.pos++
		indentStart := l.pos
		for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
			l.pos++
		}
		return Token{Kind: TokenNewLine, Value: l.input[indentStart:l.pos], Raw: l.input[start:l.pos]}

	case l.isCommandStart(l.pos):
		if c == '@' && (l.peekAt(1) == '{' || l.peekAt(1) == '}') {
			l.pos += 2
			kind := TokenOpeningBrace
			if l.input[start+1] == '}' {
				kind = TokenClosingBrace
			}
			return Token{Kind: kind, Raw: l.input[start:l.pos]}
		}

		l.pos++
		nameStart := l.pos
		for l.pos < len(l.input) && isCommandChar(l.input[l.pos]) {
			l.pos++
		}
		name := l.input[nameStart:l.pos]
		kind, ok := commands[name]
		if !ok {
			kind = TokenOtherCommand
		}
		return Token{Kind: kind, Value: name, Raw: l.input[start:l.pos]}
	}

	// text runs up to the next new line or command
	l.pos++
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\n' || (c == '\r' && l.peekAt(1) == '\n') || l.isCommandStart(l.pos) {
			break
		}
		l.pos++
	}

	text := l.input[start:l.pos]
	return Token{Kind: TokenText, Value: text, Raw: text}
}

func (l *Lexer) peekAt(offset int) byte {
	i := l.pos + offset
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

// isCommandStart reports whether a command begins at i. Commands start with
// '\' or '@' followed by a letter and must not be glued to a preceding word.
func (l *Lexer) isCommandStart(i int) bool {
	c := l.input[i]
	if c != '\\' && c != '@' {
		return false
	}
	if i > 0 && isWordChar(l.input[i-1]) {
		return false
	}
	if i+1 >= len(l.input) {
		return false
	}

	next := l.input[i+1]
	if c == '@' && (next == '{' || next == '}') {
		return true
	}
	return isLetter(next)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isCommandChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isWordChar(c byte) bool {
	return isCommandChar(c) || c == '.'
}

// splitWord splits the first whitespace-delimited word off text
func splitWord(text string) (word, rest string) {
	text = strings.TrimLeft(text, " \t")
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, ""
	}
	return text[:i], text[i:]
}
