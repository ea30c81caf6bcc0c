package lsp

import (
	"context"
	"encoding/json"
	"sort"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/cal-lang/cal-ls/internal/cal/semantictokens"
	"github.com/cal-lang/cal-ls/internal/cal/symbols"
	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// handleSemanticTokensFull handles textDocument/semanticTokens/full requests.
func (s *Server) handleSemanticTokensFull(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.SemanticTokensParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse semanticTokens params")
	}

	uri := string(params.TextDocument.URI)
	doc, ok := s.docs.Get(uri)
	if !ok {
		return reply(ctx, nil, nil)
	}

	data := semantictokens.Build(doc.Tokens, doc.AST)

	return reply(ctx, &protocol.SemanticTokens{Data: data}, nil)
}

// handleTextDocumentDocumentSymbol handles textDocument/documentSymbol requests.
func (s *Server) handleTextDocumentDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse documentSymbol params")
	}

	uri := string(params.TextDocument.URI)
	doc, ok := s.docs.Get(uri)
	if !ok {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}

	return reply(ctx, documentSymbolsFor(doc.Symbols), nil)
}

// documentSymbolsFor walks the root scope's owned symbols, nesting a
// procedure's parameters and locals under it by matching a child scope
// whose bounds equal that procedure's declaration (§4.3's parent/child
// scope tree).
func documentSymbolsFor(table *symbols.Table) []protocol.DocumentSymbol {
	if table == nil {
		return []protocol.DocumentSymbol{}
	}
	root := table.GetRootScope()
	out := buildSymbolsForScope(root)

	// Trigger scopes have no owning root symbol (a property isn't itself a
	// Symbol), so their locals surface as top-level entries.
	for _, child := range root.Children {
		if owns(root, child) {
			continue
		}
		out = append(out, buildSymbolsForScope(child)...)
	}
	return out
}

func owns(root *symbols.Scope, child *symbols.Scope) bool {
	for _, sym := range root.OwnSymbols {
		if sym.Kind == symbols.KindProcedure && sym.Token.StartOffset == child.StartOffset {
			return true
		}
	}
	return false
}

func buildSymbolsForScope(scope *symbols.Scope) []protocol.DocumentSymbol {
	names := make([]string, 0, len(scope.OwnSymbols))
	for name := range scope.OwnSymbols {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic output order

	out := make([]protocol.DocumentSymbol, 0, len(names))
	for _, name := range names {
		sym := scope.OwnSymbols[name]
		ds := protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         sym.Type,
			Kind:           convertSymbolKind(sym.Kind),
			Range:          rangeForToken(sym.Token),
			SelectionRange: rangeForToken(sym.Token),
		}
		if sym.Kind == symbols.KindProcedure {
			if child := childScopeFor(scope, sym); child != nil {
				ds.Children = buildSymbolsForScope(child)
			}
		}
		out = append(out, ds)
	}
	return out
}

func childScopeFor(parent *symbols.Scope, sym *symbols.Symbol) *symbols.Scope {
	for _, child := range parent.Children {
		if child.StartOffset == sym.Token.StartOffset {
			return child
		}
	}
	return nil
}

func convertSymbolKind(kind symbols.Kind) protocol.SymbolKind {
	switch kind {
	case symbols.KindVariable:
		return protocol.SymbolKindVariable
	case symbols.KindParameter:
		return protocol.SymbolKindVariable
	case symbols.KindField:
		return protocol.SymbolKindField
	case symbols.KindKey:
		return protocol.SymbolKindKey
	case symbols.KindProcedure:
		return protocol.SymbolKindFunction
	case symbols.KindTrigger:
		return protocol.SymbolKindEvent
	case symbols.KindObject:
		return protocol.SymbolKindModule
	default:
		return protocol.SymbolKindVariable
	}
}

func rangeForToken(tok token.Token) protocol.Range {
	pos := positionForToken(tok)
	end := pos
	end.Character += uint32(len([]rune(tok.Text)))
	return protocol.Range{Start: pos, End: end}
}

func positionForToken(tok token.Token) protocol.Position {
	line := tok.Line - 1
	col := tok.Column - 1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}
