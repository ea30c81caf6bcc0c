package lsp

import "go.lsp.dev/protocol"

// diagnosticsFor converts a document's lex and parse errors into LSP
// diagnostics. Every CaseBranch/missing-token recovery still yields a
// diagnostic even though the parser always returns a usable partial AST
// (§4.2, §7) — recovery changes what gets built, not whether an error is
// reported.
func diagnosticsFor(doc *document) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(doc.LexErrors)+len(doc.ParseErrors))

	for _, e := range doc.LexErrors {
		pos := protocol.Position{
			Line:      uint32(max0(e.Line - 1)),
			Character: uint32(max0(e.Column - 1)),
		}
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: pos, End: pos},
			Severity: protocol.DiagnosticSeverityError,
			Source:   "cal-ls/lexer",
			Message:  e.Message,
		})
	}

	for _, e := range doc.ParseErrors {
		out = append(out, protocol.Diagnostic{
			Range:    rangeForToken(e.Token),
			Severity: protocol.DiagnosticSeverityError,
			Source:   "cal-ls/parser",
			Message:  e.Message,
		})
	}

	return out
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
