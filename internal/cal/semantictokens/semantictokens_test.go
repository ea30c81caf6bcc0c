package semantictokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cal-lang/cal-ls/internal/cal/lexer"
	"github.com/cal-lang/cal-ls/internal/cal/parser"
)

const sampleObject = `OBJECT Codeunit 50000 Demo
{
  CODE
  {
    PROCEDURE DoThing@1(Input : Integer) : Integer;
    BEGIN
      EXIT(Input);
    END;

    BEGIN
    END.
  }
}`

func TestLegendOrderMatchesTypeConstants(t *testing.T) {
	legend := Legend()
	require.Len(t, legend.TokenTypes, int(TypeOperator)+1)
	assert.Equal(t, "function", legend.TokenTypes[TypeFunction])
	assert.Equal(t, "parameter", legend.TokenTypes[TypeParameter])
	require.Len(t, legend.TokenModifiers, 4)
}

func TestBuildIsDeterministic(t *testing.T) {
	tokens, lexErrs := lexer.New(sampleObject).ScanTokens()
	require.Empty(t, lexErrs)
	p := parser.New(tokens)
	doc, parseErrs := p.Parse()
	require.Empty(t, parseErrs)

	first := Build(tokens, doc)
	second := Build(tokens, doc)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
	assert.Equal(t, 0, len(first)%5, "semantic tokens encode as 5-uint32 groups")
}

func TestBuildPromotesProcedureNameAndParameter(t *testing.T) {
	tokens, _ := lexer.New(sampleObject).ScanTokens()
	p := parser.New(tokens)
	doc, _ := p.Parse()

	data := Build(tokens, doc)

	var sawFunction, sawParameter bool
	for i := 0; i+4 < len(data); i += 5 {
		typ := data[i+3]
		mods := data[i+4]
		if typ == TypeFunction && mods&ModifierDeclaration != 0 {
			sawFunction = true
		}
		if typ == TypeParameter && mods&ModifierDeclaration != 0 {
			sawParameter = true
		}
	}
	assert.True(t, sawFunction, "procedure name should be promoted to TypeFunction")
	assert.True(t, sawParameter, "parameter name should be promoted to TypeParameter")
}

func TestBuildHandlesNilAST(t *testing.T) {
	tokens, _ := lexer.New("OBJECT Codeunit 1 Foo").ScanTokens()
	data := Build(tokens, nil)
	assert.NotEmpty(t, data)
}
