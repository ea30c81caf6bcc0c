package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cal-lang/cal-ls/internal/cal/ast"
	"github.com/cal-lang/cal-ls/internal/cal/lexer"
)

func parseSource(t *testing.T, src string) (*ast.CALDocument, []ParseError) {
	t.Helper()
	tokens, lexErrs := lexer.New(src).ScanTokens()
	require.Empty(t, lexErrs)
	p := New(tokens)
	doc, errs := p.Parse()
	require.NotNil(t, doc)
	return doc, errs
}

func firstProcedure(t *testing.T, doc *ast.CALDocument) *ast.Procedure {
	t.Helper()
	require.NotNil(t, doc.Object)
	require.NotNil(t, doc.Object.Code)
	require.NotEmpty(t, doc.Object.Code.Procedures)
	return doc.Object.Code.Procedures[0]
}

const wrapObject = `OBJECT Codeunit 50000 Demo
{
  CODE
  {
    PROCEDURE Test@1();
    BEGIN
      %s
    END;

    BEGIN
    END.
  }
}`

func TestParseWellFormedObjectHasNoErrors(t *testing.T) {
	src := `OBJECT Codeunit 50000 Demo
{
  CODE
  {
    BEGIN
    END.
  }
}`
	doc, errs := parseSource(t, src)
	assert.Empty(t, errs)
	assert.Equal(t, "Codeunit", doc.Object.Kind)
	assert.Equal(t, int64(50000), doc.Object.ID)
	assert.Equal(t, "Demo", doc.Object.Name)
}

func TestCaseBranchMissingColonRecovers(t *testing.T) {
	body := `CASE X OF
        1 MESSAGE('Error');
        2: MESSAGE('Two');
      END;`
	src := sprintfObject(body)
	doc, errs := parseSource(t, src)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrorCaseBranch, errs[0].Kind)

	proc := firstProcedure(t, doc)
	require.Len(t, proc.Body, 1)
	caseStmt, ok := proc.Body[0].(*ast.CaseStmt)
	require.True(t, ok)
	require.Len(t, caseStmt.Branches, 2)

	// First branch: partial, no statements, value 1 recorded.
	assert.Empty(t, caseStmt.Branches[0].Statements)
	require.Len(t, caseStmt.Branches[0].Values, 1)

	// Second branch parsed normally after recovery resynced on the ';'.
	require.Len(t, caseStmt.Branches[1].Statements, 1)
}

func TestCaseBranchRecoveryEndTokenZeroIterationException(t *testing.T) {
	// Missing ':' immediately followed by END: recovery advances zero
	// tokens, so branch.End must fall back to branch.Start (§4.2).
	body := `CASE X OF
        1
      END;`
	src := sprintfObject(body)
	doc, errs := parseSource(t, src)
	require.Len(t, errs, 1)

	proc := firstProcedure(t, doc)
	caseStmt := proc.Body[0].(*ast.CaseStmt)
	require.Len(t, caseStmt.Branches, 1)
	branch := caseStmt.Branches[0]
	assert.Equal(t, branch.Start, branch.End)
}

func TestIfStatementParsesThenElse(t *testing.T) {
	body := `IF X = 1 THEN
        MESSAGE('one')
      ELSE
        MESSAGE('other');`
	src := sprintfObject(body)
	doc, errs := parseSource(t, src)
	assert.Empty(t, errs)

	proc := firstProcedure(t, doc)
	require.Len(t, proc.Body, 1)
	_, ok := proc.Body[0].(*ast.IfStmt)
	assert.True(t, ok)
}

func TestWhileLoopParses(t *testing.T) {
	body := `WHILE X < 10 DO
        X := X + 1;`
	src := sprintfObject(body)
	doc, errs := parseSource(t, src)
	assert.Empty(t, errs)

	proc := firstProcedure(t, doc)
	require.Len(t, proc.Body, 1)
	_, ok := proc.Body[0].(*ast.WhileStmt)
	assert.True(t, ok)
}

func TestMissingClosingParenRecordsError(t *testing.T) {
	body := `MESSAGE('unterminated';`
	src := sprintfObject(body)
	_, errs := parseSource(t, src)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrorMissingToken, errs[0].Kind)
}

func TestProcedureParametersAndReturnType(t *testing.T) {
	src := `OBJECT Codeunit 50000 Demo
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
	doc, errs := parseSource(t, src)
	assert.Empty(t, errs)

	proc := firstProcedure(t, doc)
	assert.Equal(t, "DoThing", proc.Name)
	require.Len(t, proc.Parameters, 1)
	assert.Equal(t, "Input", proc.Parameters[0].Name)
	require.NotNil(t, proc.ReturnType)
	require.Len(t, proc.LocalVars, 1)
	assert.Equal(t, "Result", proc.LocalVars[0].Name)
}

func sprintfObject(body string) string {
	return fmt.Sprintf(wrapObject, body)
}
