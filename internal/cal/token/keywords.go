package token

import "strings"

// ReservedWords maps the upper-cased spelling of every reserved word to
// its Kind. Lookups by the lexer and parser normalize to upper case first,
// so classification is case-insensitive per §3's invariant.
var ReservedWords = map[string]Kind{
	"OBJECT":    OBJECT,
	"BEGIN":     BEGIN,
	"END":       END,
	"PROCEDURE": PROCEDURE,
	"VAR":       VAR,
	"IF":        IF,
	"THEN":      THEN,
	"CASE":      CASE,
	"OF":        OF,
	"ELSE":      ELSE,
	"WITH":      WITH,
	"DO":        DO,
	"WHILE":     WHILE,
	"REPEAT":    REPEAT,
	"UNTIL":     UNTIL,
	"EXIT":      EXIT,
	"TO":        TO,
	"DOWNTO":    DOWNTO,
	"FOR":       FOR,
	"IN":        IN,
	"DIV":       DIV,
	"MOD":       MOD,
	"NOT":       NOT,
	"AND":       AND,
	"OR":        OR,

	"PROPERTIES":  PROPERTIES,
	"FIELDGROUPS": FIELDGROUPS,
	"CODE":        CODE,
	"MENUNODES":   MENUNODES,
	"ACTIONS":     ACTIONS,
	"DATAITEMS":   DATAITEMS,
	"DATASET":     DATASET,
	"REQUESTPAGE": REQUESTPAGE,
	"LABELS":      LABELS,
	"ELEMENTS":    ELEMENTS,
	"REQUESTFORM": REQUESTFORM,

	"FIELDS":   FIELDS,
	"KEYS":     KEYS,
	"CONTROLS": CONTROLS,

	"OBJECT-PROPERTIES": OBJECTPROPERTIES,
}

// LookupReservedWord classifies text as a reserved word, case-insensitively.
// Returns (Identifier, false) when text is not a reserved word.
func LookupReservedWord(text string) (Kind, bool) {
	k, ok := ReservedWords[strings.ToUpper(text)]
	if !ok {
		return Identifier, false
	}
	return k, true
}

// DowngradableSections is the set of 11 section-header reserved words that
// the lexer context-downgrades into Identifier tokens when they occur
// inside a field-name, key-name, control-name, ML-property, or code-block
// context (§4.1). FIELDS, KEYS, and CONTROLS are deliberately excluded —
// they are never downgraded by the lexer.
var DowngradableSections = map[Kind]bool{
	PROPERTIES:  true,
	FIELDGROUPS: true,
	CODE:        true,
	MENUNODES:   true,
	ACTIONS:     true,
	DATAITEMS:   true,
	DATASET:     true,
	REQUESTPAGE: true,
	LABELS:      true,
	ELEMENTS:    true,
	REQUESTFORM: true,
}

// SectionHeaders is the set of 14 tokens recognized as object-section
// headers for the purposes of parser recovery and synchronization (§4.2):
// the 11 downgradable keywords plus the 3 that are never downgraded.
var SectionHeaders = map[Kind]bool{
	PROPERTIES:  true,
	FIELDGROUPS: true,
	CODE:        true,
	MENUNODES:   true,
	ACTIONS:     true,
	DATAITEMS:   true,
	DATASET:     true,
	REQUESTPAGE: true,
	LABELS:      true,
	ELEMENTS:    true,
	REQUESTFORM: true,
	FIELDS:      true,
	KEYS:        true,
	CONTROLS:    true,
}

// SkippedSections is the subset of 6 section headers that the parser
// recognizes but does not build a dedicated node for: their content is
// consumed by balanced-brace scanning and discarded (§4.2).
var SkippedSections = map[Kind]bool{
	MENUNODES:   true,
	DATAITEMS:   true,
	DATASET:     true,
	REQUESTPAGE: true,
	LABELS:      true,
	REQUESTFORM: true,
}

// ObjectKinds maps the upper-cased object-kind keyword that follows OBJECT
// to its canonical spelling. These are ordinary identifiers to the lexer
// (not reserved words) — Table, Codeunit, Page, Report, Query, XMLPort,
// MenuSuite, and Form only carry meaning as the second token of an OBJECT
// header, which the parser checks by text rather than by Kind.
var ObjectKinds = map[string]string{
	"TABLE":     "Table",
	"CODEUNIT":  "Codeunit",
	"PAGE":      "Page",
	"REPORT":    "Report",
	"QUERY":     "Query",
	"XMLPORT":   "XMLPort",
	"MENUSUITE": "MenuSuite",
	"FORM":      "Form",
}
