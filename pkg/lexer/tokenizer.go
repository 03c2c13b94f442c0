package lexer

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Tokenizer converts Lua source text into a stream of tokens. The stream is
// restartable via Reset and always ends with an EOF token.
type Tokenizer struct {
	input string
	mask  ChannelMask

	pos  int // current position in input
	line int // current line number
	col  int // current column number

	start     int // start position of current token
	startLine int
	startCol  int
}

// NewTokenizer creates a new tokenizer surfacing tokens of all channels
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{
		input: input,
		mask:  ChannelAll,
	}
	t.Reset()
	return t
}

// SetChannelMask selects the channels Next reports. EOF and error tokens are
// reported regardless of the mask.
func (t *Tokenizer) SetChannelMask(mask ChannelMask) {
	t.mask = mask
}

// Reset rewinds the tokenizer to the beginning of the input
func (t *Tokenizer) Reset() {
	t.pos = 0
	t.line = 1
	t.col = 1
	t.start = 0

	// a shebang line is not part of the Lua grammar
	if strings.HasPrefix(t.input, "#!") {
		t.skipLine()
	}
}

// Next returns the next token on the selected channels
func (t *Tokenizer) Next() Token {
	for {
		token := t.scan()
		if token.Kind == TokenEOF || token.Kind == TokenError || token.Channel&t.mask != 0 {
			return token
		}
	}
}

// Tokenize returns all remaining tokens up to and including EOF or the first
// error token
func (t *Tokenizer) Tokenize() []Token {
	tokens := make([]Token, 0, 256)
	for {
		token := t.Next()
		tokens = append(tokens, token)
		if token.Kind == TokenEOF || token.Kind == TokenError {
			return tokens
		}
	}
}

// advance moves the position forward n bytes, tracking lines and columns
func (t *Tokenizer) advance(n int) {
	for i := 0; i < n && t.pos < len(t.input); i++ {
		if t.input[t.pos] == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
		t.pos++
	}
}

// peekAt returns the byte at the given distance from the current position
func (t *Tokenizer) peekAt(offset int) byte {
	i := t.pos + offset
	if i >= len(t.input) {
		return 0
	}
	return t.input[i]
}

func (t *Tokenizer) skipLine() {
	for t.pos < len(t.input) && t.input[t.pos] != '\n' {
		t.advance(1)
	}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && isSpace(t.input[t.pos]) {
		t.advance(1)
	}
}

// mark records the start of the current token
func (t *Tokenizer) mark() {
	t.start = t.pos
	t.startLine = t.line
	t.startCol = t.col
}

// emit creates a main-channel token spanning from the mark to the current position
func (t *Tokenizer) emit(kind TokenKind) Token {
	return Token{
		Kind:    kind,
		Channel: ChannelMain,
		Pos:     t.tokenPos(),
		Value:   t.input[t.start:t.pos],
	}
}

func (t *Tokenizer) tokenPos() Pos {
	return Pos{
		Offset: t.start,
		Length: t.pos - t.start,
		Line:   t.startLine,
		Col:    t.startCol,
	}
}

// emitError creates an error token carrying the offending byte
func (t *Tokenizer) emitError(char byte, message string) Token {
	if t.pos == t.start {
		t.advance(1)
	}
	return Token{
		Kind:    TokenError,
		Channel: ChannelMain,
		Pos:     t.tokenPos(),
		Value:   message,
		Char:    char,
	}
}

// scan produces the next raw token regardless of the channel mask
func (t *Tokenizer) scan() Token {
	for {
		t.skipWhitespace()
		t.mark()

		if t.pos >= len(t.input) {
			return Token{Kind: TokenEOF, Channel: ChannelMain, Pos: t.tokenPos()}
		}

		c := t.input[t.pos]
		switch {
		case c == '-' && t.peekAt(1) == '-':
			if token, ok := t.scanComment(); ok {
				return token
			}
			// plain comment, keep scanning

		case isIdentStart(c):
			return t.scanIdentifier()

		case isDigit(c) || (c == '.' && isDigit(t.peekAt(1))):
			return t.scanNumber()

		case c == '"' || c == '\'':
			return t.scanString(c)

		case c == '[' && t.longBracketLevel() >= 0:
			return t.scanLongString()

		default:
			return t.scanOperator()
		}
	}
}

// longBracketLevel returns the level of a long bracket opening at the current
// position ("[[" is 0, "[=[" is 1 and so on) or -1 if there is none
func (t *Tokenizer) longBracketLevel() int {
	return longBracketLevelAt(t.input, t.pos)
}

func longBracketLevelAt(input string, i int) int {
	if i >= len(input) || input[i] != '[' {
		return -1
	}
	level := 0
	for j := i + 1; j < len(input); j++ {
		switch input[j] {
		case '=':
			level++
		case '[':
			return level
		default:
			return -1
		}
	}
	return -1
}

// findLongBracketClose returns the offset of the closing bracket "]==]" of
// the given level searching from 'from', or -1
func (t *Tokenizer) findLongBracketClose(from, level int) int {
	closer := "]" + strings.Repeat("=", level) + "]"
	i := strings.Index(t.input[from:], closer)
	if i < 0 {
		return -1
	}
	return from + i
}

// scanComment handles "--" comments and reports whether a doxy comment token
// was produced
func (t *Tokenizer) scanComment() (Token, bool) {
	t.advance(2) // consume "--"

	if level := t.longBracketLevel(); level >= 0 {
		openLength := level + 2
		bodyStart := t.pos + openLength
		closeAt := t.findLongBracketClose(bodyStart, level)
		if closeAt < 0 {
			return t.emitError('[', "unterminated long comment"), true
		}

		isDoxy := bodyStart < len(t.input) && t.input[bodyStart] == '!'
		t.advance(closeAt + level + 2 - t.pos)
		if !isDoxy {
			return Token{}, false
		}

		// --[==[! body ]==]
		return t.createDoxyCommentToken(TokenDoxyCommentML, bodyStart+1, closeAt), true
	}

	if t.peekAt(0) == '!' {
		bodyStart := t.pos + 1
		t.skipLine()
		bodyEnd := t.pos
		if bodyEnd > bodyStart && t.input[bodyEnd-1] == '\r' {
			bodyEnd--
		}
		// --! body
		return t.createDoxyCommentToken(TokenDoxyCommentSL, bodyStart, bodyEnd), true
	}

	t.skipLine()
	return Token{}, false
}

func (t *Tokenizer) createDoxyCommentToken(kind TokenKind, bodyStart, bodyEnd int) Token {
	body := t.input[bodyStart:bodyEnd]
	retroactive := strings.HasPrefix(body, "<")
	if retroactive {
		body = body[1:]
	}

	return Token{
		Kind:        kind,
		Channel:     ChannelDoxyComment,
		Pos:         t.tokenPos(),
		Value:       body,
		Retroactive: retroactive,
	}
}

// scanIdentifier scans an identifier or keyword
func (t *Tokenizer) scanIdentifier() Token {
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.advance(1)
	}

	value := t.input[t.start:t.pos]
	if kind, isKeyword := keywords[value]; isKeyword {
		return t.emit(kind)
	}
	return t.emit(TokenIdentifier)
}

// scanNumber scans a numeric literal. Integers are parsed with the radix
// given by their prefix; all values are stored as float64.
func (t *Tokenizer) scanNumber() Token {
	c := t.input[t.pos]
	next := t.peekAt(1)

	switch {
	case c == '0' && (next == 'x' || next == 'X'):
		return t.scanHexNumber()
	case c == '0' && (next == 'o' || next == 'O') && isOctalDigit(t.peekAt(2)):
		t.advance(2)
		for t.pos < len(t.input) && isOctalDigit(t.input[t.pos]) {
			t.advance(1)
		}
		return t.finishInteger(8, 2)
	}

	isFloat := false
	t.skipDigits()
	if t.peekAt(0) == '.' && t.peekAt(1) != '.' {
		isFloat = true
		t.advance(1)
		t.skipDigits()
	}
	if e := t.peekAt(0); e == 'e' || e == 'E' {
		if !t.scanExponent() {
			return t.emitError(t.peekAt(0), "malformed number")
		}
		isFloat = true
	}

	if isFloat {
		return t.finishFloat(t.input[t.start:t.pos])
	}
	return t.finishInteger(10, 0)
}

func (t *Tokenizer) scanHexNumber() Token {
	t.advance(2) // consume "0x"
	digitsStart := t.pos
	isFloat := false

	t.skipHexDigits()
	if t.peekAt(0) == '.' && t.peekAt(1) != '.' {
		isFloat = true
		t.advance(1)
		t.skipHexDigits()
	}
	if t.pos == digitsStart {
		return t.emitError(t.peekAt(0), "malformed number")
	}
	if e := t.peekAt(0); e == 'p' || e == 'P' {
		if !t.scanExponent() {
			return t.emitError(t.peekAt(0), "malformed number")
		}
		isFloat = true
	}

	if isFloat {
		text := t.input[t.start:t.pos]
		if !strings.ContainsAny(text, "pP") {
			text += "p0"
		}
		return t.finishFloat(text)
	}
	return t.finishInteger(16, 2)
}

// scanExponent consumes an exponent suffix: marker, optional sign, digits
func (t *Tokenizer) scanExponent() bool {
	t.advance(1)
	if s := t.peekAt(0); s == '+' || s == '-' {
		t.advance(1)
	}
	if !isDigit(t.peekAt(0)) {
		return false
	}
	t.skipDigits()
	return true
}

func (t *Tokenizer) skipDigits() {
	for t.pos < len(t.input) && isDigit(t.input[t.pos]) {
		t.advance(1)
	}
}

func (t *Tokenizer) skipHexDigits() {
	for t.pos < len(t.input) && isHexDigit(t.input[t.pos]) {
		t.advance(1)
	}
}

func (t *Tokenizer) finishInteger(radix, left int) Token {
	if t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		return t.emitError(t.input[t.pos], "malformed number")
	}

	token := t.emit(TokenNumber)
	digits := token.Value[left:]
	value, err := strconv.ParseUint(digits, radix, 64)
	switch {
	case err == nil:
		token.Number = float64(value)
	case errors.Is(err, strconv.ErrRange) && radix == 10:
		token.Number, _ = strconv.ParseFloat(digits, 64)
	default:
		token.Number = math.MaxUint64
	}
	return token
}

func (t *Tokenizer) finishFloat(text string) Token {
	if t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		return t.emitError(t.input[t.pos], "malformed number")
	}

	token := t.emit(TokenNumber)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return t.emitError(t.input[t.start], "malformed number")
	}
	token.Number = value
	return token
}

// scanString scans a quoted string literal; the value excludes the quotes
func (t *Tokenizer) scanString(quote byte) Token {
	t.advance(1)
	for {
		if t.pos >= len(t.input) {
			return t.emitError(quote, "unterminated string")
		}

		c := t.input[t.pos]
		switch c {
		case quote:
			t.advance(1)
			token := t.emit(TokenString)
			token.Value = t.input[t.start+1 : t.pos-1]
			return token
		case '\n':
			return t.emitError(quote, "unterminated string")
		case '\\':
			t.advance(2)
		default:
			t.advance(1)
		}
	}
}

// scanLongString scans a [==[ long string ]==]
func (t *Tokenizer) scanLongString() Token {
	level := t.longBracketLevel()
	bodyStart := t.pos + level + 2
	closeAt := t.findLongBracketClose(bodyStart, level)
	if closeAt < 0 {
		return t.emitError('[', "unterminated long string")
	}

	t.advance(closeAt + level + 2 - t.pos)
	token := t.emit(TokenString)

	// a newline immediately following the opening bracket is skipped
	body := t.input[bodyStart:closeAt]
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")
	token.Value = body
	return token
}

// scanOperator scans operators and punctuation
func (t *Tokenizer) scanOperator() Token {
	c := t.input[t.pos]
	next := t.peekAt(1)

	two := func(kind TokenKind) Token {
		t.advance(2)
		return t.emit(kind)
	}
	one := func(kind TokenKind) Token {
		t.advance(1)
		return t.emit(kind)
	}

	switch c {
	case '+':
		return one(TokenPlus)
	case '-':
		return one(TokenMinus)
	case '*':
		return one(TokenStar)
	case '/':
		if next == '/' {
			return two(TokenFloorDiv)
		}
		return one(TokenSlash)
	case '%':
		return one(TokenPercent)
	case '^':
		return one(TokenCaret)
	case '#':
		return one(TokenHash)
	case '&':
		return one(TokenAmpersand)
	case '~':
		if next == '=' {
			return two(TokenNotEqual)
		}
		return one(TokenTilde)
	case '|':
		return one(TokenPipe)
	case '<':
		switch next {
		case '=':
			return two(TokenLessEqual)
		case '<':
			return two(TokenShl)
		}
		return one(TokenLess)
	case '>':
		switch next {
		case '=':
			return two(TokenGreaterEq)
		case '>':
			return two(TokenShr)
		}
		return one(TokenGreater)
	case '=':
		if next == '=' {
			return two(TokenEqual)
		}
		return one(TokenAssign)
	case '(':
		return one(TokenLeftParen)
	case ')':
		return one(TokenRightParen)
	case '{':
		return one(TokenLeftBrace)
	case '}':
		return one(TokenRightBrace)
	case '[':
		return one(TokenLeftBracket)
	case ']':
		return one(TokenRightBracket)
	case ';':
		return one(TokenSemicolon)
	case ':':
		if next == ':' {
			return two(TokenDoubleColon)
		}
		return one(TokenColon)
	case ',':
		return one(TokenComma)
	case '.':
		if next == '.' {
			if t.peekAt(2) == '.' {
				t.advance(3)
				return t.emit(TokenEllipsis)
			}
			return two(TokenConcat)
		}
		return one(TokenDot)
	}

	return t.emitError(c, "invalid character")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isOctalDigit(c byte) bool {
	return c >= '0' && c <= '7'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
