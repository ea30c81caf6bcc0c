// Package lexer tokenizes C/AL source text into a total sequence of tokens
// terminated by EOF. Malformed input still yields a token stream plus a
// list of recorded LexError values — the lexer never aborts (§4.1, P1).
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine
// (e.g. each LSP document analysis) must create its own Lexer via New.
package lexer

import (
	"strings"
	"unicode"

	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// LexError records a problem encountered while scanning.
type LexError struct {
	Message string
	Line    int
	Column  int
	Offset  int
}

func (e LexError) Error() string { return e.Message }

// mode is an entry in the lexer's context stack, used to decide whether a
// section-header reserved word should be downgraded to an Identifier
// (§4.1, "context-sensitive downgrading").
type mode int

const (
	modeTopLevel mode = iota
	modeObjectBody
	modeFieldsSection // inside FIELDS { ... }: field-name position downgrades
	modeKeysSection
	modeControlsSection
	modeMLProperty // inside a CaptionML/...={ENU=...;} style property list
	modeCodeBlock  // inside CODE { ... } / a trigger body
)

// Lexer tokenizes C/AL source code.
type Lexer struct {
	source  string
	start   int
	current int
	line    int
	column  int
	tokens  []token.Token
	errors  []LexError

	modes []mode // context stack; top is modes[len(modes)-1]
}

// New creates a Lexer for the given source code.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		modes:  []mode{modeTopLevel},
	}
}

// ScanTokens tokenizes the entire source and returns the token stream
// (always ending in EOF) together with any recorded errors.
func (l *Lexer) ScanTokens() ([]token.Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, token.Token{
		Kind:        token.EOF,
		Line:        l.line,
		Column:      l.column,
		StartOffset: l.current,
		EndOffset:   l.current,
	})

	return l.tokens, l.errors
}

func (l *Lexer) curMode() mode {
	return l.modes[len(l.modes)-1]
}

func (l *Lexer) pushMode(m mode) { l.modes = append(l.modes, m) }

func (l *Lexer) popMode() {
	if len(l.modes) > 1 {
		l.modes = l.modes[:len(l.modes)-1]
	}
}

func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == ' ' || c == '\t':
		// whitespace, skipped
	case c == '\r':
		if l.peek() == '\n' {
			l.advance()
		}
		l.line++
		l.column = 1
	case c == '\n':
		l.line++
		l.column = 1
	case c == '/' && l.peek() == '/':
		l.lineComment()
	case c == '/' && l.peek() == '*':
		l.blockComment()
	case c == '{':
		l.enterBrace()
	case c == '}':
		l.exitBrace()
	case c == '(':
		l.addToken(token.LParen)
	case c == ')':
		l.addToken(token.RParen)
	case c == '[':
		l.addToken(token.LBracket)
	case c == ']':
		l.addToken(token.RBracket)
	case c == ';':
		l.addToken(token.Semicolon)
	case c == ',':
		l.addToken(token.Comma)
	case c == '+':
		l.addToken(token.Plus)
	case c == '-':
		l.addToken(token.Minus)
	case c == '*':
		l.addToken(token.Star)
	case c == '/':
		l.addToken(token.Slash)
	case c == ':':
		if l.match('=') {
			l.addToken(token.Assign)
		} else {
			l.addToken(token.Colon)
		}
	case c == '=':
		l.addToken(token.Equal)
	case c == '<':
		if l.match('>') {
			l.addToken(token.NotEqual)
		} else if l.match('=') {
			l.addToken(token.LessEq)
		} else {
			l.addToken(token.Less)
		}
	case c == '>':
		if l.match('=') {
			l.addToken(token.GreaterEq)
		} else {
			l.addToken(token.Greater)
		}
	case c == '.':
		if l.match('.') {
			l.addToken(token.DotDot)
		} else {
			l.addToken(token.Dot)
		}
	case c == '"':
		l.quotedIdentifier()
	case c == '\'':
		l.stringLiteral()
	case c == '@':
		l.atIndex()
	case l.isDigit(c):
		l.number()
	case l.isAlpha(c):
		l.identifier()
	default:
		l.addError("Unexpected character: " + string(c))
	}
}

// enterBrace tracks the section-relative mode stack so reserved-word
// downgrading (§4.1) knows which context a `{` opened.
func (l *Lexer) enterBrace() {
	ctx := l.lastReservedBeforeBrace()
	l.addToken(token.LBrace)

	switch ctx {
	case token.FIELDS:
		l.pushMode(modeFieldsSection)
	case token.KEYS:
		l.pushMode(modeKeysSection)
	case token.CONTROLS:
		l.pushMode(modeControlsSection)
	case token.CODE:
		l.pushMode(modeCodeBlock)
	case token.PROPERTIES:
		// The properties list (CaptionML, trigger assignments, ...) is the
		// ML-property context (§4.1): any of the 11 downgradable words used
		// as a property name must read as an identifier there.
		l.pushMode(modeMLProperty)
	default:
		// Nested brace inside an existing section (e.g. a field entry's
		// own `{ ... }`): inherit the enclosing mode so identifiers there
		// still downgrade.
		l.pushMode(l.curMode())
	}
}

func (l *Lexer) exitBrace() {
	l.addToken(token.RBrace)
	l.popMode()
}

// lastReservedBeforeBrace inspects the token just emitted before this `{`
// to decide what section is opening. It looks at the most recently
// emitted non-trivial token.
func (l *Lexer) lastReservedBeforeBrace() token.Kind {
	for i := len(l.tokens) - 1; i >= 0; i-- {
		t := l.tokens[i]
		if t.Kind == token.LineComment || t.Kind == token.BlockComment {
			continue
		}
		return t.Kind
	}
	return token.Error
}

func (l *Lexer) lineComment() {
	l.advance() // second '/'
	for l.peek() != '\n' && l.peek() != '\r' && !l.isAtEnd() {
		l.advance()
	}
	l.addToken(token.LineComment)
}

func (l *Lexer) blockComment() {
	l.advance() // '*'
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			l.addToken(token.BlockComment)
			return
		}
		if l.peek() == '\n' {
			l.line++
			l.column = 0
		}
		l.advance()
	}
	l.addError("Unterminated block comment")
	l.addToken(token.BlockComment)
}

// quotedIdentifier scans a "..." quoted identifier. There is no internal
// escape; the token's Text preserves the full quoted spelling (§4.1).
func (l *Lexer) quotedIdentifier() {
	for l.peek() != '"' && !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
	if l.peek() != '"' {
		l.addError("Unterminated quoted identifier")
		l.addToken(token.QuotedIdentifier)
		return
	}
	l.advance() // closing quote
	l.addToken(token.QuotedIdentifier)
}

// stringLiteral scans a '...' string literal with '' as the escape for a
// literal single quote. Strings never cross line boundaries (§4.1).
func (l *Lexer) stringLiteral() {
	for !l.isAtEnd() {
		if l.peek() == '\n' {
			break
		}
		if l.peek() == '\'' {
			if l.peekNext() == '\'' {
				l.advance()
				l.advance()
				continue
			}
			break
		}
		l.advance()
	}

	if l.peek() != '\'' {
		l.addError("Unterminated string literal")
		l.addToken(token.StringLit)
		return
	}
	l.advance() // closing quote
	l.addToken(token.StringLit)
}

// atIndex scans the C/AL variable index suffix: @ followed by digits.
func (l *Lexer) atIndex() {
	if !l.isDigit(l.peek()) {
		l.addError("Expected digits after '@'")
		l.addToken(token.Error)
		return
	}
	for l.isDigit(l.peek()) {
		l.advance()
	}
	l.addToken(token.AtIndex)
}

// number scans Integer, Decimal, DateLit, TimeLit, and DateTimeLit
// literals (§4.1). Dates have the shape MM/DD/YY[YY]; times have the
// shape HH:MM:SS; a date immediately followed by a single space and a time
// on the same line produces one DateTimeLit token.
func (l *Lexer) number() {
	for l.isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '/' && l.isDateContinuation() {
		l.finishDate()
		return
	}

	if l.peek() == ':' && l.isTimeContinuation() {
		l.finishTime(token.TimeLit)
		return
	}

	if l.peek() == '.' && l.isDigit(l.peekNext()) {
		l.advance() // '.'
		for l.isDigit(l.peek()) {
			l.advance()
		}
		l.addToken(token.Decimal)
		return
	}

	l.addToken(token.Integer)
}

// isDateContinuation peeks ahead (without consuming) to check the digits
// already scanned are followed by /DD/YY[YY].
func (l *Lexer) isDateContinuation() bool {
	i := l.current + 1 // skip the '/'
	d1 := 0
	for i < len(l.source) && l.isDigitAt(i) {
		i++
		d1++
	}
	if d1 == 0 || i >= len(l.source) || l.source[i] != '/' {
		return false
	}
	i++
	d2 := 0
	for i < len(l.source) && l.isDigitAt(i) {
		i++
		d2++
	}
	return d2 == 2 || d2 == 4
}

func (l *Lexer) isTimeContinuation() bool {
	i := l.current + 1
	d1 := 0
	for i < len(l.source) && l.isDigitAt(i) {
		i++
		d1++
	}
	if d1 == 0 || i >= len(l.source) || l.source[i] != ':' {
		return false
	}
	i++
	d2 := 0
	for i < len(l.source) && l.isDigitAt(i) {
		i++
		d2++
	}
	return d2 > 0
}

func (l *Lexer) isDigitAt(i int) bool {
	return l.source[i] >= '0' && l.source[i] <= '9'
}

func (l *Lexer) finishDate() {
	l.advance() // '/'
	for l.isDigit(l.peek()) {
		l.advance()
	}
	l.advance() // '/'
	for l.isDigit(l.peek()) {
		l.advance()
	}

	// A date directly followed by a single space and a time continuation
	// on the same line combines into one DateTimeLit token.
	if l.peek() == ' ' && l.current+1 < len(l.source) && l.isDigitAt(l.current+1) {
		save := l.current
		l.advance() // space
		digitsStart := l.current
		for l.isDigit(l.peek()) {
			l.advance()
		}
		if l.current > digitsStart && l.peek() == ':' && l.isTimeContinuation() {
			l.finishTime(token.DateTimeLit)
			return
		}
		l.resetTo(save)
	}

	l.addToken(token.DateLit)
}

func (l *Lexer) finishTime(kind token.Kind) {
	l.advance() // ':'
	for l.isDigit(l.peek()) {
		l.advance()
	}
	l.advance() // ':'
	for l.isDigit(l.peek()) {
		l.advance()
	}
	l.addToken(kind)
}

// resetTo rewinds current (and column, since date/time scanning never
// crosses a newline) back to a previously saved position.
func (l *Lexer) resetTo(pos int) {
	l.column -= (l.current - pos)
	l.current = pos
}

// identifier scans [A-Za-z_][A-Za-z_0-9]*, classifies it as a reserved
// word (with context-sensitive downgrading, §4.1), a boolean literal, or
// a plain Identifier.
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	// OBJECT-PROPERTIES contains a hyphen; special-case it.
	if l.textSoFarEquals("OBJECT") && l.peek() == '-' && l.upperAhead("PROPERTIES", 1) {
		l.advance() // '-'
		for l.isAlphaNumeric(l.peek()) {
			l.advance()
		}
	}

	text := l.source[l.start:l.current]
	upper := strings.ToUpper(text)

	if upper == "TRUE" || upper == "FALSE" {
		l.addToken(token.BooleanLit)
		return
	}

	if kind, ok := token.LookupReservedWord(text); ok {
		if token.DowngradableSections[kind] && l.inDowngradingContext() {
			l.addToken(token.Identifier)
			return
		}
		l.addToken(kind)
		// BEGIN/END delimit trigger and procedure bodies, which are the
		// "code-block" downgrading context (§4.1) — tracked independently
		// of braces since C/AL statement blocks don't use them. CASE is
		// also closed by END, so it pushes too and every END pops the
		// mode its own opener pushed.
		switch kind {
		case token.BEGIN, token.CASE:
			l.pushMode(modeCodeBlock)
		case token.END:
			l.popMode()
		}
		return
	}

	l.addToken(token.Identifier)
}

// inDowngradingContext reports whether the current mode is one where the
// 11 downgradable section keywords must be emitted as identifiers
// instead (§4.1): field-name, key-name, control-name, ML-property, or
// code-block position.
func (l *Lexer) inDowngradingContext() bool {
	switch l.curMode() {
	case modeFieldsSection, modeKeysSection, modeControlsSection, modeMLProperty, modeCodeBlock:
		return true
	default:
		return false
	}
}

func (l *Lexer) textSoFarEquals(upper string) bool {
	return strings.ToUpper(l.source[l.start:l.current]) == upper
}

// upperAhead checks (without consuming) whether the text starting at
// l.current+offset begins with want, case-insensitively.
func (l *Lexer) upperAhead(want string, offset int) bool {
	start := l.current + offset
	if start+len(want) > len(l.source) {
		return false
	}
	return strings.EqualFold(l.source[start:start+len(want)], want)
}

// Character helpers.

func (l *Lexer) isAtEnd() bool { return l.current >= len(l.source) }

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *Lexer) isAlpha(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

func (l *Lexer) addToken(kind token.Kind) {
	text := l.source[l.start:l.current]
	startCol := l.column - (l.current - l.start)
	l.tokens = append(l.tokens, token.Token{
		Kind:        kind,
		Text:        text,
		Line:        l.line,
		Column:      startCol,
		StartOffset: l.start,
		EndOffset:   l.current,
	})
}

func (l *Lexer) addError(message string) {
	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Offset:  l.start,
	})
}
