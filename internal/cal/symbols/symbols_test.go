package symbols

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
    VAR
      Result@1001 : Integer;
    BEGIN
      EXIT(Result);
    END;

    BEGIN
    END.
  }
}`

func buildTable(t *testing.T, src string) *Table {
	t.Helper()
	tokens, lexErrs := lexer.New(src).ScanTokens()
	require.Empty(t, lexErrs)
	p := parser.New(tokens)
	doc, parseErrs := p.Parse()
	require.Empty(t, parseErrs)

	table := New()
	table.BuildFromAST(doc)
	return table
}

func TestBuildFromASTDefinesProcedureAtRootScope(t *testing.T) {
	table := buildTable(t, sampleObject)
	sym, ok := table.GetSymbol("DoThing")
	require.True(t, ok)
	assert.Equal(t, KindProcedure, sym.Kind)
}

func TestSymbolLookupIsCaseInsensitive(t *testing.T) {
	table := buildTable(t, sampleObject)
	_, ok := table.GetSymbol("dothing")
	assert.True(t, ok)
	_, ok = table.GetSymbol("DOTHING")
	assert.True(t, ok)
}

func TestProcedureParamsAndLocalsLiveInChildScope(t *testing.T) {
	table := buildTable(t, sampleObject)
	root := table.GetRootScope()
	require.Len(t, root.Children, 1)

	procScope := root.Children[0]
	_, ok := procScope.OwnSymbols["INPUT"]
	assert.True(t, ok, "parameter should be defined in the procedure's own scope")
	_, ok = procScope.OwnSymbols["RESULT"]
	assert.True(t, ok, "local var should be defined in the procedure's own scope")

	// Not visible at the root scope directly.
	assert.False(t, table.HasSymbol("Input"))
	assert.False(t, table.HasSymbol("Result"))
}

func TestGetSymbolAtOffsetWalksUpToParent(t *testing.T) {
	table := buildTable(t, sampleObject)
	root := table.GetRootScope()
	require.Len(t, root.Children, 1)
	procScope := root.Children[0]

	// An offset inside the procedure scope can still resolve the
	// procedure's own name, which is defined one level up at the root.
	offsetInsideProc := procScope.StartOffset + 1
	sym, ok := table.GetSymbolAtOffset("DoThing", offsetInsideProc)
	require.True(t, ok)
	assert.Equal(t, KindProcedure, sym.Kind)

	sym, ok = table.GetSymbolAtOffset("Input", offsetInsideProc)
	require.True(t, ok)
	assert.Equal(t, KindParameter, sym.Kind)
}

func TestGetScopeAtOffsetReturnsRootOutsideAnyChild(t *testing.T) {
	table := buildTable(t, sampleObject)
	scope := table.GetScopeAtOffset(0)
	assert.Same(t, table.GetRootScope(), scope)
}

func TestDefineGlobalAddsBuiltinToRootScope(t *testing.T) {
	table := New()
	table.DefineGlobal(&Symbol{Name: "MESSAGE", Kind: KindProcedure})
	assert.True(t, table.HasSymbol("message"))
}
