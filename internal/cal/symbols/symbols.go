// Package symbols builds a scope tree from a parsed CALDocument and answers
// offset-indexed symbol queries (§4.3): each Procedure and each property
// trigger owns a child scope, looked up by byte offset and case-insensitive
// name.
package symbols

import (
	"strings"

	"github.com/cal-lang/cal-ls/internal/cal/ast"
	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// Kind classifies a Symbol.
type Kind int

const (
	KindVariable Kind = iota
	KindParameter
	KindField
	KindKey
	KindProcedure
	KindTrigger
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindParameter:
		return "parameter"
	case KindField:
		return "field"
	case KindKey:
		return "key"
	case KindProcedure:
		return "procedure"
	case KindTrigger:
		return "trigger"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Symbol is a named entity declared somewhere in the document.
type Symbol struct {
	Name  string
	Kind  Kind
	Type  string
	Token token.Token
}

// Scope is an offset-indexed lexical region owning a set of symbols and
// referring to its parent by pointer, never by ownership cycle.
type Scope struct {
	StartOffset int
	EndOffset   int
	Parent      *Scope
	Children    []*Scope
	OwnSymbols  map[string]*Symbol // keyed by upper-cased name
}

func newScope(parent *Scope, start, end int) *Scope {
	s := &Scope{StartOffset: start, EndOffset: end, Parent: parent, OwnSymbols: map[string]*Symbol{}}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

func (s *Scope) define(sym *Symbol) {
	s.OwnSymbols[strings.ToUpper(sym.Name)] = sym
}

// Table is the symbol table for one document: a root scope plus the child
// scopes collected from procedures and property triggers.
type Table struct {
	root *Scope
}

// New returns an empty table with an empty root scope spanning [0,0).
// BuildFromAST replaces the root's bounds once called.
func New() *Table {
	return &Table{root: newScope(nil, 0, 0)}
}

// BuildFromAST populates the table's root scope, covering the object's
// token range, and creates child scopes for every procedure and property
// trigger found while walking doc.
func (t *Table) BuildFromAST(doc *ast.CALDocument) {
	t.root = newScope(nil, 0, 0)
	if doc == nil || doc.Object == nil {
		return
	}
	obj := doc.Object
	t.root.StartOffset = obj.StartToken().StartOffset
	t.root.EndOffset = obj.EndToken().EndOffset

	for _, f := range fieldsOf(obj) {
		t.root.define(&Symbol{Name: f.Name, Kind: KindField, Type: typeName(f.Type), Token: f.StartToken()})
	}

	if obj.Code != nil {
		for _, v := range obj.Code.Variables {
			t.root.define(&Symbol{Name: v.Name, Kind: KindVariable, Type: typeName(v.Type), Token: v.StartToken()})
		}
		for _, proc := range obj.Code.Procedures {
			t.root.define(&Symbol{Name: proc.Name, Kind: KindProcedure, Type: typeName(proc.ReturnType), Token: proc.StartToken()})
			t.collectProcedureScope(proc)
		}
	}

	t.collectPropertyTriggers(obj.Properties)
	t.collectPropertyTriggers(obj.ObjectProperties)
}

func fieldsOf(obj *ast.Object) []*ast.Field {
	if obj.Fields == nil {
		return nil
	}
	return obj.Fields.Fields
}

func (t *Table) collectProcedureScope(proc *ast.Procedure) {
	scope := newScope(t.root, proc.StartToken().StartOffset, proc.EndToken().EndOffset)
	for _, param := range proc.Parameters {
		scope.define(&Symbol{Name: param.Name, Kind: KindParameter, Type: typeName(param.Type), Token: param.StartToken()})
	}
	for _, v := range proc.LocalVars {
		scope.define(&Symbol{Name: v.Name, Kind: KindVariable, Type: typeName(v.Type), Token: v.StartToken()})
	}
}

// collectPropertyTriggers creates a scope for every trigger property in
// list, even one with no declared variables, as long as its body is
// present (§4.3).
func (t *Table) collectPropertyTriggers(list *ast.PropertyList) {
	if list == nil {
		return
	}
	for _, prop := range list.Properties {
		if !prop.IsTrigger() {
			continue
		}
		scope := newScope(t.root, prop.StartToken().StartOffset, prop.EndToken().EndOffset)
		for _, v := range prop.TriggerVars {
			scope.define(&Symbol{Name: v.Name, Kind: KindVariable, Type: typeName(v.Type), Token: v.StartToken()})
		}
	}
}

func typeName(t *ast.TypeRef) string {
	if t == nil {
		return ""
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + " " + strings.Join(t.Args, " ")
}

// HasSymbol reports whether name is defined in the root scope.
func (t *Table) HasSymbol(name string) bool {
	_, ok := t.root.OwnSymbols[strings.ToUpper(name)]
	return ok
}

// GetSymbol returns the root-scope definition of name, if any.
func (t *Table) GetSymbol(name string) (*Symbol, bool) {
	sym, ok := t.root.OwnSymbols[strings.ToUpper(name)]
	return sym, ok
}

// GetAllSymbols returns every symbol owned by the root scope.
func (t *Table) GetAllSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(t.root.OwnSymbols))
	for _, sym := range t.root.OwnSymbols {
		out = append(out, sym)
	}
	return out
}

// GetRootScope returns the table's root scope.
func (t *Table) GetRootScope() *Scope {
	return t.root
}

// DefineGlobal adds sym to the root scope directly, for builtins supplied
// by a collaborator outside the parsed document.
func (t *Table) DefineGlobal(sym *Symbol) {
	t.root.define(sym)
}

// GetScopeAtOffset returns the deepest scope whose range contains offset,
// or the root scope if none of its descendants do.
func (t *Table) GetScopeAtOffset(offset int) *Scope {
	return deepestContaining(t.root, offset)
}

func deepestContaining(s *Scope, offset int) *Scope {
	for _, child := range s.Children {
		if offset >= child.StartOffset && offset <= child.EndOffset {
			return deepestContaining(child, offset)
		}
	}
	return s
}

// GetSymbolAtOffset resolves name starting from the scope at offset and
// walking up through parents, case-insensitively.
func (t *Table) GetSymbolAtOffset(name string, offset int) (*Symbol, bool) {
	key := strings.ToUpper(name)
	for scope := t.GetScopeAtOffset(offset); scope != nil; scope = scope.Parent {
		if sym, ok := scope.OwnSymbols[key]; ok {
			return sym, true
		}
	}
	return nil, false
}
