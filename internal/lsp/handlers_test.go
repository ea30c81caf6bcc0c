package lsp

import (
	"sort"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/cal-lang/cal-ls/internal/cal/symbols"
)

func TestConvertSymbolKind(t *testing.T) {
	tests := []struct {
		name     string
		input    symbols.Kind
		expected protocol.SymbolKind
	}{
		{"Variable", symbols.KindVariable, protocol.SymbolKindVariable},
		{"Parameter", symbols.KindParameter, protocol.SymbolKindVariable},
		{"Field", symbols.KindField, protocol.SymbolKindField},
		{"Key", symbols.KindKey, protocol.SymbolKindKey},
		{"Procedure", symbols.KindProcedure, protocol.SymbolKindFunction},
		{"Trigger", symbols.KindTrigger, protocol.SymbolKindEvent},
		{"Object", symbols.KindObject, protocol.SymbolKindModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertSymbolKind(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestDocumentSymbolsForNestsProcedureLocals(t *testing.T) {
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
	mgr := newDocumentManager()
	doc := mgr.Open("file:///demo.cal", src, 1)

	out := documentSymbolsFor(doc.Symbols)

	var proc *protocol.DocumentSymbol
	for i := range out {
		if out[i].Name == "DoThing" {
			proc = &out[i]
		}
	}
	if proc == nil {
		t.Fatal("expected a DoThing document symbol")
	}

	if proc.Kind != protocol.SymbolKindFunction {
		t.Errorf("expected SymbolKindFunction, got %v", proc.Kind)
	}

	names := make([]string, 0, len(proc.Children))
	for _, c := range proc.Children {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	want := []string{"Input", "Result"}
	if len(names) != len(want) {
		t.Fatalf("expected children %v, got %v", want, names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("expected children %v, got %v", want, names)
			break
		}
	}
}
