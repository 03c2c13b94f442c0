package lexer

import (
	"fmt"
)

// ErrorKind defines the category of a source error
type ErrorKind int

const (
	ErrorLexical ErrorKind = iota
	ErrorSyntax
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorLexical:
		return "lexical error"
	case ErrorSyntax:
		return "syntax error"
	default:
		return "error"
	}
}

// SourceError is a failure tagged with the file and position it occurred at
type SourceError struct {
	Kind    ErrorKind
	File    string
	Pos     Pos
	Message string
}

// Error implements the error interface
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s(%d,%d): %s: %s", e.File, e.Pos.Line, e.Pos.Col, e.Kind, e.Message)
}

// Errorf creates a new SourceError with a formatted message
func Errorf(kind ErrorKind, file string, pos Pos, format string, args ...any) error {
	return &SourceError{
		Kind:    kind,
		File:    file,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorFromToken converts an error token into a lexical SourceError
func ErrorFromToken(file string, token Token) error {
	if token.Value == "" || token.Value == "invalid character" {
		return Errorf(ErrorLexical, file, token.Pos, "invalid character '\\x%02x'", token.Char)
	}
	return Errorf(ErrorLexical, file, token.Pos, "%s near '\\x%02x'", token.Value, token.Char)
}
