package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cal-lang/cal-ls/internal/cal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	var out []token.Kind
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func TestScanTokensAlwaysEndsInEOF(t *testing.T) {
	tokens, errs := New("OBJECT Codeunit 1 Foo").ScanTokens()
	assert.Empty(t, errs)
	require.NotEmpty(t, tokens)
	assert.Equal(t, token.EOF, tokens[len(tokens)-1].Kind)
}

func TestFieldsSectionDowngradesReservedWord(t *testing.T) {
	// FIELDS/KEYS/CONTROLS themselves never downgrade (spec.md:58), but one
	// of the 11 downgradable section keywords used as a field name inside
	// FIELDS{...} must still read as an Identifier.
	src := `FIELDS { { 1;;CODE;Text10 } }`
	tokens, errs := New(src).ScanTokens()
	assert.Empty(t, errs)

	var gotCodeKind token.Kind
	var seenCode bool
	for _, tok := range tokens {
		if tok.Text == "CODE" {
			gotCodeKind = tok.Kind
			seenCode = true
		}
	}
	require.True(t, seenCode)
	assert.Equal(t, token.Identifier, gotCodeKind)
}

func TestCodeBlockDowngradesReservedWordAsVariableName(t *testing.T) {
	// Inside a BEGIN...END body, a downgradable section keyword used as an
	// identifier (e.g. a variable named CODE) must lex as Identifier.
	src := `BEGIN CODE := 1; END`
	tokens, _ := New(src).ScanTokens()
	var gotIdentifier bool
	for _, tok := range tokens {
		if tok.Text == "CODE" {
			gotIdentifier = tok.Kind == token.Identifier
		}
	}
	assert.True(t, gotIdentifier, "CODE inside a code block should downgrade to Identifier")
}

func TestObjectPropertiesHyphenatedKeyword(t *testing.T) {
	tokens, errs := New("OBJECT-PROPERTIES { }").ScanTokens()
	assert.Empty(t, errs)
	require.NotEmpty(t, tokens)
	assert.Equal(t, token.OBJECTPROPERTIES, tokens[0].Kind)
	assert.Equal(t, "OBJECT-PROPERTIES", tokens[0].Text)
}

func TestNumberLiteralKinds(t *testing.T) {
	cases := []struct {
		src  string
		want token.Kind
	}{
		{"123", token.Integer},
		{"123.45", token.Decimal},
		{"01/15/24", token.DateLit},
		{"01/15/2024", token.DateLit},
		{"14:30:00", token.TimeLit},
		{"01/15/24 14:30:00", token.DateTimeLit},
	}
	for _, c := range cases {
		tokens, errs := New(c.src).ScanTokens()
		assert.Empty(t, errs, c.src)
		require.NotEmpty(t, tokens, c.src)
		assert.Equal(t, c.want, tokens[0].Kind, c.src)
		assert.Equal(t, c.src, tokens[0].Text, c.src)
	}
}

func TestStringLiteralEscapedQuote(t *testing.T) {
	tokens, errs := New(`'it''s'`).ScanTokens()
	assert.Empty(t, errs)
	require.NotEmpty(t, tokens)
	assert.Equal(t, token.StringLit, tokens[0].Kind)
	assert.Equal(t, `'it''s'`, tokens[0].Text)
}

func TestUnterminatedStringLiteralRecordsError(t *testing.T) {
	tokens, errs := New(`'unterminated`).ScanTokens()
	require.Len(t, errs, 1)
	assert.Equal(t, token.StringLit, tokens[0].Kind)
}

func TestAtIndexSuffix(t *testing.T) {
	tokens, errs := New("Foo@1000").ScanTokens()
	assert.Empty(t, errs)
	require.Len(t, tokens, 3) // Identifier, AtIndex, EOF
	assert.Equal(t, token.Identifier, tokens[0].Kind)
	assert.Equal(t, token.AtIndex, tokens[1].Kind)
	assert.Equal(t, "@1000", tokens[1].Text)
}

func TestBooleanLiteralsCaseInsensitive(t *testing.T) {
	tokens, _ := New("true FALSE TrUe").ScanTokens()
	assert.Equal(t, []token.Kind{token.BooleanLit, token.BooleanLit, token.BooleanLit, token.EOF}, kinds(tokens))
}

func TestLineAndColumnTracking(t *testing.T) {
	src := "OBJECT\nCodeunit"
	tokens, _ := New(src).ScanTokens()
	require.True(t, len(tokens) >= 2)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 1, tokens[1].Column)
}
