package lsp

import (
	"sync"

	"github.com/cal-lang/cal-ls/internal/cal/ast"
	"github.com/cal-lang/cal-ls/internal/cal/lexer"
	"github.com/cal-lang/cal-ls/internal/cal/parser"
	"github.com/cal-lang/cal-ls/internal/cal/symbols"
	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// document holds every analysis artifact produced for one open file, at
// its most recently seen version.
type document struct {
	URI     string
	Version int
	Text    string

	Tokens     []token.Token
	LexErrors  []lexer.LexError
	AST        *ast.CALDocument
	ParseErrors []parser.ParseError
	Symbols    *symbols.Table
}

// documentManager is an in-memory, concurrency-safe store of open
// documents, adapted from the teacher's ast-cache map-of-entries pattern.
type documentManager struct {
	mu      sync.RWMutex
	entries map[string]*document
}

func newDocumentManager() *documentManager {
	return &documentManager{entries: make(map[string]*document)}
}

// Open lexes, parses, and builds the symbol table for text, storing the
// result under uri at the given version, and returns it.
func (m *documentManager) Open(uri, text string, version int) *document {
	doc := analyze(uri, text, version)
	m.mu.Lock()
	m.entries[uri] = doc
	m.mu.Unlock()
	return doc
}

// Update re-analyzes uri with new text, replacing any prior entry.
func (m *documentManager) Update(uri, text string, version int) *document {
	return m.Open(uri, text, version)
}

// Close removes uri from the manager.
func (m *documentManager) Close(uri string) {
	m.mu.Lock()
	delete(m.entries, uri)
	m.mu.Unlock()
}

// Get returns the current document for uri, if open.
func (m *documentManager) Get(uri string) (*document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.entries[uri]
	return d, ok
}

func analyze(uri, text string, version int) *document {
	tokens, lexErrs := lexer.New(text).ScanTokens()
	p := parser.New(tokens)
	doc, parseErrs := p.Parse()

	table := symbols.New()
	table.BuildFromAST(doc)

	return &document{
		URI:         uri,
		Version:     version,
		Text:        text,
		Tokens:      tokens,
		LexErrors:   lexErrs,
		AST:         doc,
		ParseErrors: parseErrs,
		Symbols:     table,
	}
}
