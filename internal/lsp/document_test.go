package lsp

import "testing"

const sampleObject = `OBJECT Codeunit 50000 Demo
{
  CODE
  {
    BEGIN
    END.
  }
}`

func TestDocumentManagerOpenUpdateClose(t *testing.T) {
	mgr := newDocumentManager()

	doc := mgr.Open("file:///a.cal", sampleObject, 1)
	if doc == nil {
		t.Fatal("Open() returned nil")
	}
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
	if doc.AST == nil || doc.AST.Object == nil {
		t.Fatal("expected a parsed AST with an Object")
	}

	got, ok := mgr.Get("file:///a.cal")
	if !ok {
		t.Fatal("Get() did not find the opened document")
	}
	if got != doc {
		t.Error("Get() returned a different document than Open()")
	}

	updated := mgr.Update("file:///a.cal", sampleObject, 2)
	if updated.Version != 2 {
		t.Errorf("expected version 2 after Update, got %d", updated.Version)
	}

	mgr.Close("file:///a.cal")
	if _, ok := mgr.Get("file:///a.cal"); ok {
		t.Error("expected Get() to fail after Close()")
	}
}

func TestDiagnosticsForReportsParseErrors(t *testing.T) {
	// The first CASE branch is missing its ':', triggering CaseBranch
	// recovery and a recorded parse error.
	src := `OBJECT Codeunit 50000 Demo
{
  CODE
  {
    PROCEDURE Test@1();
    BEGIN
      CASE X OF
        1 MESSAGE('Error');
        2: MESSAGE('Two');
      END;
    END;

    BEGIN
    END.
  }
}`
	mgr := newDocumentManager()
	doc := mgr.Open("file:///b.cal", src, 1)

	diags := diagnosticsFor(doc)
	if len(diags) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	for _, d := range diags {
		if d.Source != "cal-ls/parser" {
			t.Errorf("expected Source %q, got %q", "cal-ls/parser", d.Source)
		}
	}
}
