// Package lexer implements the Lua tokenizer used by the declaration parser
package lexer

import (
	"fmt"
)

// TokenKind represents the kind of a token
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenIdentifier
	TokenNumber
	TokenString
	TokenDoxyCommentSL // --!
	TokenDoxyCommentML // --[[! ]]

	// Keywords
	TokenKeywordStart // Marker for start of keywords
	TokenGoto
	TokenBreak
	TokenReturn
	TokenDo
	TokenEnd
	TokenWhile
	TokenRepeat
	TokenUntil
	TokenIf
	TokenThen
	TokenElseIf
	TokenElse
	TokenFor
	TokenFunction
	TokenLocal
	TokenIn
	TokenNil
	TokenFalse
	TokenTrue
	TokenOr
	TokenAnd
	TokenNot
	TokenKeywordEnd // Marker for end of keywords

	// Multi-character operators
	TokenDoubleColon // ::
	TokenEllipsis    // ...
	TokenLessEqual   // <=
	TokenGreaterEq   // >=
	TokenNotEqual    // ~=
	TokenEqual       // ==
	TokenShl         // <<
	TokenShr         // >>
	TokenConcat      // ..
	TokenFloorDiv    // //

	// Single-character punctuation
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenPercent      // %
	TokenCaret        // ^
	TokenHash         // #
	TokenAmpersand    // &
	TokenTilde        // ~
	TokenPipe         // |
	TokenLess         // <
	TokenGreater      // >
	TokenAssign       // =
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenSemicolon    // ;
	TokenColon        // :
	TokenComma        // ,
	TokenDot          // .
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "eof",
	TokenError:         "error",
	TokenIdentifier:    "identifier",
	TokenNumber:        "number",
	TokenString:        "string",
	TokenDoxyCommentSL: "doxy-comment-sl",
	TokenDoxyCommentML: "doxy-comment-ml",
	TokenDoubleColon:   "::",
	TokenEllipsis:      "...",
	TokenLessEqual:     "<=",
	TokenGreaterEq:     ">=",
	TokenNotEqual:      "~=",
	TokenEqual:         "==",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenConcat:        "..",
	TokenFloorDiv:      "//",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenCaret:         "^",
	TokenHash:          "#",
	TokenAmpersand:     "&",
	TokenTilde:         "~",
	TokenPipe:          "|",
	TokenLess:          "<",
	TokenGreater:       ">",
	TokenAssign:        "=",
	TokenLeftParen:     "(",
	TokenRightParen:    ")",
	TokenLeftBrace:     "{",
	TokenRightBrace:    "}",
	TokenLeftBracket:   "[",
	TokenRightBracket:  "]",
	TokenSemicolon:     ";",
	TokenColon:         ":",
	TokenComma:         ",",
	TokenDot:           ".",
}

// keywords map for quick lookup
var keywords = map[string]TokenKind{
	"goto":     TokenGoto,
	"break":    TokenBreak,
	"return":   TokenReturn,
	"do":       TokenDo,
	"end":      TokenEnd,
	"while":    TokenWhile,
	"repeat":   TokenRepeat,
	"until":    TokenUntil,
	"if":       TokenIf,
	"then":     TokenThen,
	"elseif":   TokenElseIf,
	"else":     TokenElse,
	"for":      TokenFor,
	"function": TokenFunction,
	"local":    TokenLocal,
	"in":       TokenIn,
	"nil":      TokenNil,
	"false":    TokenFalse,
	"true":     TokenTrue,
	"or":       TokenOr,
	"and":      TokenAnd,
	"not":      TokenNot,
}

func init() {
	for name, kind := range keywords {
		tokenKindNames[kind] = name
	}
}

// String returns the display name of the token kind
func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// IsKeyword reports whether the kind is a reserved word
func (k TokenKind) IsKeyword() bool {
	return k > TokenKeywordStart && k < TokenKeywordEnd
}

// IsDoxyComment reports whether the kind is a structured comment
func (k TokenKind) IsDoxyComment() bool {
	return k == TokenDoxyCommentSL || k == TokenDoxyCommentML
}

// ChannelMask selects which token channels the tokenizer surfaces
type ChannelMask int

const (
	ChannelMain        ChannelMask = 0x01
	ChannelDoxyComment ChannelMask = 0x02
	ChannelAll         ChannelMask = -1
)

// Pos is a source position. Line and Col are 1-based; Col counts bytes.
type Pos struct {
	Offset int
	Length int
	Line   int
	Col    int
}

// End returns the byte offset just past the token
func (p Pos) End() int {
	return p.Offset + p.Length
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token represents a single token
type Token struct {
	Kind    TokenKind
	Channel ChannelMask
	Pos     Pos

	// Value is the token text for identifiers and numbers, the string body
	// for strings and the comment body (markers stripped) for doxy comments.
	// It is a slice of the source buffer.
	Value string

	// Number holds the numeric payload. Integers are converted to float64.
	Number float64

	// Char is the offending byte of an error token
	Char byte

	// Retroactive is set on doxy comments starting with '<'
	Retroactive bool
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR:\\x%02x", t.Char)
	case TokenIdentifier:
		return fmt.Sprintf("IDENTIFIER:%s", t.Value)
	case TokenNumber:
		return fmt.Sprintf("NUMBER:%s", t.Value)
	case TokenString:
		return fmt.Sprintf("STRING:%s", t.Value)
	case TokenDoxyCommentSL, TokenDoxyCommentML:
		retro := ""
		if t.Retroactive {
			retro = "<"
		}
		return fmt.Sprintf("%s:%s%s", t.Kind, retro, t.Value)
	default:
		if t.Kind.IsKeyword() {
			return fmt.Sprintf("KEYWORD:%s", t.Kind)
		}
		return t.Kind.String()
	}
}
