// Package semantictokens converts a raw token stream plus its parsed AST
// into an LSP delta-encoded semantic-token array (§4.4, §6): a raw
// classification pass over every token, refined by a second pass over the
// AST that promotes procedure names, parameters, and field names to richer
// categories.
package semantictokens

import (
	"sort"

	"go.lsp.dev/protocol"

	"github.com/cal-lang/cal-ls/internal/cal/ast"
	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// Token type indices, matching the order returned by Legend().
const (
	TypeKeyword uint32 = iota
	TypeVariable
	TypeString
	TypeNumber
	TypeComment
	TypeType
	TypeFunction
	TypeParameter
	TypeProperty
	TypeOperator
)

// Token modifier bits, matching the order returned by Legend().
const (
	ModifierDeclaration uint32 = 1 << iota
	ModifierDefinition
	ModifierReadonly
	ModifierStatic
)

// tokenTypes and tokenModifiers fix the legend order the Type*/Modifier*
// constants above index into (§4.4, §6).
var tokenTypes = []protocol.SemanticTokenTypes{
	protocol.SemanticTokenKeyword,
	protocol.SemanticTokenVariable,
	protocol.SemanticTokenString,
	protocol.SemanticTokenNumber,
	protocol.SemanticTokenComment,
	protocol.SemanticTokenType,
	protocol.SemanticTokenFunction,
	protocol.SemanticTokenParameter,
	protocol.SemanticTokenProperty,
	protocol.SemanticTokenOperator,
}

var tokenModifiers = []protocol.SemanticTokenModifiers{
	protocol.SemanticTokenModifierDeclaration,
	protocol.SemanticTokenModifierDefinition,
	protocol.SemanticTokenModifierReadonly,
	protocol.SemanticTokenModifierStatic,
}

// Legend returns the LSP semantic-tokens legend (§6).
func Legend() protocol.SemanticTokensLegend {
	types := make([]string, len(tokenTypes))
	for i, t := range tokenTypes {
		types[i] = string(t)
	}
	mods := make([]string, len(tokenModifiers))
	for i, m := range tokenModifiers {
		mods[i] = string(m)
	}
	return protocol.SemanticTokensLegend{TokenTypes: types, TokenModifiers: mods}
}

type emission struct {
	tok  token.Token
	typ  uint32
	mods uint32
}

// Build classifies every token in tokens, refines the classification using
// doc's AST, and returns the LSP-delta-encoded 5-tuple array (§6). Output
// is deterministic (P9): identical input always yields an identical slice.
func Build(tokens []token.Token, doc *ast.CALDocument) []uint32 {
	byOffset := make(map[int]*emission, len(tokens))
	order := make([]int, 0, len(tokens))

	for _, tok := range tokens {
		typ, ok := classify(tok.Kind)
		if !ok {
			continue
		}
		byOffset[tok.StartOffset] = &emission{tok: tok, typ: typ}
		order = append(order, tok.StartOffset)
	}

	if doc != nil && doc.Object != nil {
		refineObject(doc.Object, byOffset)
	}

	b := newBuilder()
	for _, off := range order {
		e := byOffset[off]
		b.add(e.tok, e.typ, e.mods)
	}
	return b.encode()
}

func classify(kind token.Kind) (uint32, bool) {
	switch {
	case kind.IsReservedWord():
		return TypeKeyword, true
	case kind == token.Identifier, kind == token.QuotedIdentifier:
		return TypeVariable, true
	case kind == token.StringLit:
		return TypeString, true
	case kind == token.Integer, kind == token.Decimal, kind == token.DateLit,
		kind == token.TimeLit, kind == token.DateTimeLit:
		return TypeNumber, true
	case kind == token.BooleanLit:
		return TypeKeyword, true
	case kind == token.LineComment, kind == token.BlockComment:
		return TypeComment, true
	default:
		return 0, false
	}
}

// refineObject promotes the tokens already scheduled for procedure names,
// parameters, and field names to richer categories. It never introduces a
// new token position (§4.4).
func refineObject(obj *ast.Object, byOffset map[int]*emission) {
	promote(byOffset, obj.NameToken, TypeVariable, ModifierDeclaration)
	if obj.Fields != nil {
		for _, f := range obj.Fields.Fields {
			promote(byOffset, f.NameToken, TypeProperty, ModifierDeclaration)
		}
	}
	if obj.Code != nil {
		for _, proc := range obj.Code.Procedures {
			promote(byOffset, proc.NameToken, TypeFunction, ModifierDeclaration)
			for _, param := range proc.Parameters {
				promote(byOffset, param.NameToken, TypeParameter, ModifierDeclaration)
			}
		}
	}
}

func promote(byOffset map[int]*emission, tok token.Token, typ, mods uint32) {
	e, ok := byOffset[tok.StartOffset]
	if !ok {
		return
	}
	e.typ = typ
	e.mods |= mods
}

// builder accumulates tokens and performs the running (prevLine, prevChar)
// delta encoding. It is a private accumulator owned by one Build call, not
// a shared resource.
type builder struct {
	tokens []rawToken
}

type rawToken struct {
	line   uint32
	char   uint32
	length uint32
	typ    uint32
	mods   uint32
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) add(tok token.Token, typ, mods uint32) {
	if tok.Line <= 0 {
		return
	}
	b.tokens = append(b.tokens, rawToken{
		line:   uint32(tok.Line - 1),
		char:   uint32(tok.Column - 1),
		length: uint32(len([]rune(tok.Text))),
		typ:    typ,
		mods:   mods,
	})
}

func (b *builder) encode() []uint32 {
	sort.SliceStable(b.tokens, func(i, j int) bool {
		if b.tokens[i].line != b.tokens[j].line {
			return b.tokens[i].line < b.tokens[j].line
		}
		return b.tokens[i].char < b.tokens[j].char
	})

	data := make([]uint32, 0, len(b.tokens)*5)
	var prevLine, prevChar uint32
	for _, t := range b.tokens {
		deltaLine := t.line - prevLine
		deltaChar := t.char
		if deltaLine == 0 {
			deltaChar = t.char - prevChar
		}
		data = append(data, deltaLine, deltaChar, t.length, t.typ, t.mods)
		prevLine, prevChar = t.line, t.char
	}
	return data
}
