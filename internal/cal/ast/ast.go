// Package ast defines the Abstract Syntax Tree node types produced by the
// C/AL parser: tagged variants for the document, object, declarations,
// statements, and expressions. Every node carries the inclusive first and
// last tokens it was built from (§3), including tokens consumed by error
// recovery, so editor features can map an AST node back to a byte range.
package ast

import "github.com/cal-lang/cal-ls/internal/cal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	StartToken() token.Token
	EndToken() token.Token
}

// Bounds is embedded by every concrete node to implement Node.
type Bounds struct {
	Start token.Token
	End   token.Token
}

// StartToken returns the first token consumed while building this node.
func (b Bounds) StartToken() token.Token { return b.Start }

// EndToken returns the last token consumed while building this node,
// including any tokens consumed by error recovery for that node.
func (b Bounds) EndToken() token.Token { return b.End }

// CALDocument is the root of the AST. Object is nil when no OBJECT header
// was ever recognized in the token stream (§4.2, "parser failure
// semantics") — Parse always returns a non-nil CALDocument regardless.
type CALDocument struct {
	Bounds
	Object *Object
}

// Object is a top-level C/AL object declaration.
type Object struct {
	Bounds
	Kind             string // Table, Codeunit, Page, Report, Query, XMLPort, MenuSuite, Form
	ID               int64
	Name             string
	NameToken        token.Token // position of Name, for semantic-token refinement
	Properties       *PropertyList // PROPERTIES section, if present
	ObjectProperties *PropertyList // OBJECT-PROPERTIES section, if present
	Fields           *FieldSection
	Keys       *KeySection
	Controls   *ControlSection
	Code       *Code
	Actions    *ActionSection
	Elements   *ElementSection
	// Skipped holds one entry per recognized-but-skipped section
	// (MENUNODES, DATAITEMS, DATASET, REQUESTPAGE, LABELS, REQUESTFORM)
	// whose content was discarded by balanced-brace scanning (§4.2).
	Skipped []*SkippedSection
}

// SkippedSection records that a section header was recognized and its
// brace-delimited body discarded, without retaining its content.
type SkippedSection struct {
	Bounds
	Name string
}

// TypeRef is a type reference, e.g. "Code20" or "Record 18".
type TypeRef struct {
	Bounds
	Name string   // e.g. "Record", "Code", "Integer"
	Args []string // e.g. ["18"] for "Record 18"
}

// Var is a single VAR entry: name [@index] : type.
type Var struct {
	Bounds
	Name  string
	Index *int
	Type  *TypeRef
}

// Param is a single procedure parameter.
type Param struct {
	Bounds
	Name      string
	NameToken token.Token // position of Name, for semantic-token refinement
	IsVar     bool
	Type      *TypeRef
}

// Procedure is a PROCEDURE declaration with its local variables and body.
type Procedure struct {
	Bounds
	Name       string
	NameToken  token.Token // position of Name, for semantic-token refinement
	Index      *int
	Parameters []*Param
	ReturnType *TypeRef
	LocalVars  []*Var
	Body       []Statement
}

// Code is the CODE section: object-level variables and procedures.
type Code struct {
	Bounds
	Variables  []*Var
	Procedures []*Procedure
}

// PropertyList is the PROPERTIES section: a sequence of Name=Value
// entries, some of which (OnRun, OnOpenPage, ...) carry a trigger body.
type PropertyList struct {
	Bounds
	Properties []*Property
}

// Property is a single Name=Value entry inside PROPERTIES. Trigger
// properties (OnRun, OnInsert, ...) have TriggerBody populated instead of
// (or in addition to) Value.
type Property struct {
	Bounds
	Name        string
	Value       string
	TriggerVars []*Var
	TriggerBody []Statement
}

// IsTrigger reports whether this property carries a trigger body
// (§4.3: "each property trigger" gets its own scope).
func (p *Property) IsTrigger() bool { return p.TriggerBody != nil || p.TriggerVars != nil }

// FieldSection is the FIELDS section.
type FieldSection struct {
	Bounds
	Fields []*Field
}

// Field is one field entry, e.g. { 1 ; ; "Line No." ; Code20 }.
type Field struct {
	Bounds
	ID   int64
	Name string // quote-stripped for symbol purposes; may contain internal
	// spaces/punctuation verbatim, e.g. `Line No.` from `"Line No."`
	NameToken token.Token // position of the raw (possibly quoted) name
	Quoted    bool
	Type      *TypeRef
	Raw       []string // remaining raw values present in the entry, in order
}

// KeySection is the KEYS section.
type KeySection struct {
	Bounds
	Keys []*Key
}

// Key is one key entry: an ordered list of field names.
type Key struct {
	Bounds
	Fields []string
}

// ControlSection is the CONTROLS section.
type ControlSection struct {
	Bounds
	Controls []*Control
}

// Control is one control entry, e.g. { 1 ; Container ; ContentArea }.
type Control struct {
	Bounds
	ID   int64
	Type string
	Name string
	Raw  []string
}

// ActionSection is the ACTIONS section.
type ActionSection struct {
	Bounds
	Actions []*Action
}

// Action is one action entry.
type Action struct {
	Bounds
	ID   int64
	Type string
	Name string
	Raw  []string
}

// ElementSection is the ELEMENTS section (XMLPort/Query).
type ElementSection struct {
	Bounds
	Elements []*Element
}

// Element is one element entry.
type Element struct {
	Bounds
	ID   int64
	Name string
	Raw  []string
}
