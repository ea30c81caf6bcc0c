package parser

import (
	"strconv"
	"strings"

	"github.com/cal-lang/cal-ls/internal/cal/ast"
	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// Parser transforms a token stream into a CALDocument, recovering locally
// from malformed input rather than aborting (§4.2).
type Parser struct {
	tokens  []token.Token
	current int
	errors  []ParseError
}

// New creates a parser for the given token stream.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the token stream and returns the document and any errors.
// Always returns a non-nil CALDocument; never throws.
func (p *Parser) Parse() (*ast.CALDocument, []ParseError) {
	doc := &ast.CALDocument{}
	doc.Start = p.peek()

	if p.check(token.OBJECT) {
		doc.Object = p.parseObject()
		doc.End = doc.Object.End
	} else {
		doc.End = doc.Start
	}

	return doc, p.errors
}

// GetErrors returns the errors recorded by the most recent Parse call.
func (p *Parser) GetErrors() []ParseError {
	return p.errors
}

// --- object and sections ---

func (p *Parser) parseObject() *ast.Object {
	objTok := p.advance() // OBJECT
	obj := &ast.Object{}
	obj.Start = objTok

	kindTok := p.advance()
	if canonical, ok := token.ObjectKinds[strings.ToUpper(kindTok.Text)]; ok {
		obj.Kind = canonical
	} else {
		p.error(newParseError(ErrorSyntax, kindTok, "expected object kind (Table, Codeunit, Page, Report, Query, XMLPort, MenuSuite, Form)"))
		obj.Kind = kindTok.Text
	}

	idTok := p.consume(token.Integer, "expected object id")
	if id, err := strconv.ParseInt(idTok.Text, 10, 64); err == nil {
		obj.ID = id
	}

	nameTok := p.advance()
	obj.Name = stripQuotes(nameTok.Text)
	obj.NameToken = nameTok

	if !p.match(token.LBrace) {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '{' after object name"))
		obj.End = p.previous()
		return obj
	}

	p.parseSections(obj)

	if p.check(token.RBrace) {
		obj.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing object"))
		obj.End = p.previous()
	}
	return obj
}

func (p *Parser) parseSections(obj *ast.Object) {
	for !p.check(token.RBrace) && !p.isAtEnd() {
		switch p.peek().Kind {
		case token.OBJECTPROPERTIES:
			obj.ObjectProperties = p.parsePropertyList(token.OBJECTPROPERTIES)
		case token.PROPERTIES:
			obj.Properties = p.parsePropertyList(token.PROPERTIES)
		case token.FIELDS:
			obj.Fields = p.parseFieldSection()
		case token.KEYS:
			obj.Keys = p.parseKeySection()
		case token.CONTROLS:
			obj.Controls = p.parseControlSection()
		case token.CODE:
			obj.Code = p.parseCode()
		case token.ACTIONS:
			obj.Actions = p.parseActionSection()
		case token.ELEMENTS:
			obj.Elements = p.parseElementSection()
		default:
			if token.SkippedSections[p.peek().Kind] {
				obj.Skipped = append(obj.Skipped, p.skipSection())
				continue
			}
			p.error(newParseError(ErrorUnknownSection, p.peek(), "unrecognized object section"))
			if token.SectionHeaders[p.peek().Kind] {
				// A section header with no parser of its own (FIELDGROUPS):
				// step over its braces so the following sections still parse.
				p.skipSection()
				continue
			}
			p.synchronizeToSectionHeader()
		}
	}
}

// synchronizeToSectionHeader is the object-level section-keyword
// synchronizer (§4.2, §9 "error recovery locality"): on an unrecognized
// token, advance until the next token in token.SectionHeaders or the
// object's closing brace, so one bad token never desyncs the rest of the
// object body.
func (p *Parser) synchronizeToSectionHeader() {
	for !p.isAtEnd() && !p.check(token.RBrace) && !token.SectionHeaders[p.peek().Kind] {
		p.advance()
	}
}

// skipSection consumes a recognized-but-unsupported section header and
// discards its brace-delimited body via balanced-brace scanning (§4.2).
func (p *Parser) skipSection() *ast.SkippedSection {
	headerTok := p.advance()
	sec := &ast.SkippedSection{Name: headerTok.Text}
	sec.Start = headerTok
	sec.End = headerTok

	if !p.match(token.LBrace) {
		sec.End = p.previous()
		return sec
	}

	depth := 1
	for depth > 0 && !p.isAtEnd() {
		switch p.peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		sec.End = p.advance()
	}
	return sec
}

// --- PROPERTIES / OBJECT-PROPERTIES ---

func (p *Parser) parsePropertyList(headerKind token.Kind) *ast.PropertyList {
	headerTok := p.advance()
	list := &ast.PropertyList{}
	list.Start = headerTok
	list.End = headerTok
	_ = headerKind

	if !p.match(token.LBrace) {
		list.End = p.previous()
		return list
	}

	for !p.check(token.RBrace) && !p.isAtEnd() {
		list.Properties = append(list.Properties, p.parseProperty())
	}

	if p.check(token.RBrace) {
		list.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing properties"))
		list.End = p.previous()
	}
	return list
}

func (p *Parser) parseProperty() *ast.Property {
	nameTok := p.advance()
	prop := &ast.Property{Name: nameTok.Text}
	prop.Start = nameTok
	prop.End = nameTok

	if !p.match(token.Equal) {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '=' after property name"))
		return prop
	}
	prop.End = p.previous()

	if p.check(token.VAR) {
		prop.TriggerVars = p.parseVarBlock()
		if n := len(prop.TriggerVars); n > 0 {
			prop.End = prop.TriggerVars[n-1].End
		}
	}

	if p.check(token.BEGIN) {
		body := p.parseCompound()
		prop.TriggerBody = body.Statements
		if prop.TriggerBody == nil {
			prop.TriggerBody = []ast.Statement{}
		}
		prop.End = body.End
		if p.match(token.Semicolon) {
			prop.End = p.previous()
		}
		return prop
	}

	var parts []string
	for !p.check(token.Semicolon) && !p.check(token.RBrace) && !p.isAtEnd() {
		tok := p.advance()
		parts = append(parts, tok.Text)
		prop.End = tok
	}
	prop.Value = strings.Join(parts, "")
	if p.match(token.Semicolon) {
		prop.End = p.previous()
	}
	return prop
}

// --- raw brace-entry sections: FIELDS, KEYS, CONTROLS, ACTIONS, ELEMENTS ---

// rawEntry is one `{ part ; part ; ... }` entry shared by the section kinds
// whose grammar is a flat semicolon-separated tuple.
type rawEntry struct {
	Start      token.Token
	End        token.Token
	Parts      []string
	PartTokens [][]token.Token // tokens making up each Parts entry, parallel to Parts
}

func (p *Parser) parseRawEntries() []rawEntry {
	var entries []rawEntry
	for p.check(token.LBrace) {
		entries = append(entries, p.parseRawEntry())
	}
	return entries
}

func (p *Parser) parseRawEntry() rawEntry {
	openTok := p.advance() // LBrace
	e := rawEntry{Start: openTok, End: openTok}
	var cur []string
	var curToks []token.Token

	for !p.check(token.RBrace) && !p.isAtEnd() {
		if p.check(token.Semicolon) {
			e.Parts = append(e.Parts, strings.Join(cur, " "))
			e.PartTokens = append(e.PartTokens, curToks)
			cur = nil
			curToks = nil
			e.End = p.advance()
			continue
		}
		tok := p.advance()
		cur = append(cur, tok.Text)
		curToks = append(curToks, tok)
		e.End = tok
	}
	e.Parts = append(e.Parts, strings.Join(cur, " "))
	e.PartTokens = append(e.PartTokens, curToks)

	if p.check(token.RBrace) {
		e.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing entry"))
	}
	return e
}

func (p *Parser) parseFieldSection() *ast.FieldSection {
	headerTok := p.advance()
	sec := &ast.FieldSection{}
	sec.Start = headerTok
	sec.End = headerTok

	if !p.match(token.LBrace) {
		sec.End = p.previous()
		return sec
	}
	for _, e := range p.parseRawEntries() {
		sec.Fields = append(sec.Fields, buildField(e))
	}
	if p.check(token.RBrace) {
		sec.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing FIELDS"))
		sec.End = p.previous()
	}
	return sec
}

func buildField(e rawEntry) *ast.Field {
	f := &ast.Field{}
	f.Start, f.End = e.Start, e.End
	if len(e.Parts) > 0 {
		if id, err := strconv.ParseInt(strings.TrimSpace(e.Parts[0]), 10, 64); err == nil {
			f.ID = id
		}
	}
	if len(e.Parts) > 2 {
		raw := e.Parts[2]
		if isQuoted(raw) {
			f.Name = stripQuotes(raw)
			f.Quoted = true
		} else {
			f.Name = raw
		}
		if len(e.PartTokens) > 2 && len(e.PartTokens[2]) > 0 {
			f.NameToken = e.PartTokens[2][0]
		}
	}
	if len(e.Parts) > 3 {
		f.Type = parseTypeRefString(e.Parts[3])
	}
	if len(e.Parts) > 4 {
		f.Raw = append([]string{}, e.Parts[4:]...)
	}
	return f
}

func (p *Parser) parseKeySection() *ast.KeySection {
	headerTok := p.advance()
	sec := &ast.KeySection{}
	sec.Start = headerTok
	sec.End = headerTok

	if !p.match(token.LBrace) {
		sec.End = p.previous()
		return sec
	}
	for _, e := range p.parseRawEntries() {
		k := &ast.Key{}
		k.Start, k.End = e.Start, e.End
		if len(e.Parts) > 0 {
			for _, f := range strings.Split(e.Parts[0], ",") {
				f = strings.TrimSpace(f)
				if f != "" {
					k.Fields = append(k.Fields, stripQuotes(f))
				}
			}
		}
		sec.Keys = append(sec.Keys, k)
	}
	if p.check(token.RBrace) {
		sec.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing KEYS"))
		sec.End = p.previous()
	}
	return sec
}

func (p *Parser) parseControlSection() *ast.ControlSection {
	headerTok := p.advance()
	sec := &ast.ControlSection{}
	sec.Start = headerTok
	sec.End = headerTok

	if !p.match(token.LBrace) {
		sec.End = p.previous()
		return sec
	}
	for _, e := range p.parseRawEntries() {
		c := &ast.Control{}
		c.Start, c.End = e.Start, e.End
		if len(e.Parts) > 0 {
			if id, err := strconv.ParseInt(strings.TrimSpace(e.Parts[0]), 10, 64); err == nil {
				c.ID = id
			}
		}
		if len(e.Parts) > 1 {
			c.Type = e.Parts[1]
		}
		if len(e.Parts) > 2 {
			c.Name = stripQuotes(e.Parts[2])
		}
		if len(e.Parts) > 3 {
			c.Raw = append([]string{}, e.Parts[3:]...)
		}
		sec.Controls = append(sec.Controls, c)
	}
	if p.check(token.RBrace) {
		sec.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing CONTROLS"))
		sec.End = p.previous()
	}
	return sec
}

func (p *Parser) parseActionSection() *ast.ActionSection {
	headerTok := p.advance()
	sec := &ast.ActionSection{}
	sec.Start = headerTok
	sec.End = headerTok

	if !p.match(token.LBrace) {
		sec.End = p.previous()
		return sec
	}
	for _, e := range p.parseRawEntries() {
		a := &ast.Action{}
		a.Start, a.End = e.Start, e.End
		if len(e.Parts) > 0 {
			if id, err := strconv.ParseInt(strings.TrimSpace(e.Parts[0]), 10, 64); err == nil {
				a.ID = id
			}
		}
		if len(e.Parts) > 1 {
			a.Type = e.Parts[1]
		}
		if len(e.Parts) > 2 {
			a.Name = stripQuotes(e.Parts[2])
		}
		if len(e.Parts) > 3 {
			a.Raw = append([]string{}, e.Parts[3:]...)
		}
		sec.Actions = append(sec.Actions, a)
	}
	if p.check(token.RBrace) {
		sec.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing ACTIONS"))
		sec.End = p.previous()
	}
	return sec
}

func (p *Parser) parseElementSection() *ast.ElementSection {
	headerTok := p.advance()
	sec := &ast.ElementSection{}
	sec.Start = headerTok
	sec.End = headerTok

	if !p.match(token.LBrace) {
		sec.End = p.previous()
		return sec
	}
	for _, e := range p.parseRawEntries() {
		el := &ast.Element{}
		el.Start, el.End = e.Start, e.End
		if len(e.Parts) > 0 {
			if id, err := strconv.ParseInt(strings.TrimSpace(e.Parts[0]), 10, 64); err == nil {
				el.ID = id
			}
		}
		if len(e.Parts) > 1 {
			el.Name = stripQuotes(e.Parts[1])
		}
		if len(e.Parts) > 2 {
			el.Raw = append([]string{}, e.Parts[2:]...)
		}
		sec.Elements = append(sec.Elements, el)
	}
	if p.check(token.RBrace) {
		sec.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing ELEMENTS"))
		sec.End = p.previous()
	}
	return sec
}

// --- CODE section: object-level VAR and PROCEDURE declarations ---

func (p *Parser) parseCode() *ast.Code {
	headerTok := p.advance()
	code := &ast.Code{}
	code.Start = headerTok
	code.End = headerTok

	if !p.match(token.LBrace) {
		code.End = p.previous()
		return code
	}

	for !p.check(token.RBrace) && !p.isAtEnd() {
		switch p.peek().Kind {
		case token.VAR:
			code.Variables = append(code.Variables, p.parseVarBlock()...)
		case token.PROCEDURE:
			code.Procedures = append(code.Procedures, p.parseProcedure())
		case token.BEGIN:
			body := p.parseCompound()
			code.End = body.End
			if p.match(token.Dot) {
				code.End = p.previous()
			}
		default:
			p.error(newParseError(ErrorSyntax, p.peek(), "unexpected token in CODE section"))
			p.advance()
		}
	}

	if p.check(token.RBrace) {
		code.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected '}' closing CODE"))
		code.End = p.previous()
	}
	return code
}

func (p *Parser) isVarNameStart() bool {
	return p.check(token.Identifier) || p.check(token.QuotedIdentifier)
}

func (p *Parser) parseVarBlock() []*ast.Var {
	p.advance() // VAR
	var vars []*ast.Var
	for p.isVarNameStart() {
		vars = append(vars, p.parseVarEntry())
	}
	return vars
}

func (p *Parser) parseVarEntry() *ast.Var {
	nameTok := p.advance()
	v := &ast.Var{Name: stripQuotes(nameTok.Text)}
	v.Start = nameTok
	v.End = nameTok

	if p.check(token.AtIndex) {
		idxTok := p.advance()
		if n, ok := parseIndexSuffix(idxTok.Text); ok {
			v.Index = &n
		}
		v.End = idxTok
	}

	if p.match(token.Colon) {
		v.End = p.previous()
		v.Type = p.parseTypeRef()
		if v.Type != nil {
			v.End = v.Type.End
		}
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected ':' in variable declaration"))
	}

	if p.match(token.Semicolon) {
		v.End = p.previous()
	}
	return v
}

// parseTypeRef consumes a type name and, for types like "Record 18" whose
// single argument is a bare table number, the following integer literal.
func (p *Parser) parseTypeRef() *ast.TypeRef {
	nameTok := p.advance()
	t := &ast.TypeRef{Name: nameTok.Text}
	t.Start = nameTok
	t.End = nameTok

	if p.check(token.Integer) {
		argTok := p.advance()
		t.Args = append(t.Args, argTok.Text)
		t.End = argTok
	}
	return t
}

func (p *Parser) parseProcedure() *ast.Procedure {
	procTok := p.advance() // PROCEDURE
	proc := &ast.Procedure{}
	proc.Start = procTok
	proc.End = procTok

	nameTok := p.advance()
	proc.Name = stripQuotes(nameTok.Text)
	proc.NameToken = nameTok
	proc.End = nameTok

	if p.check(token.AtIndex) {
		idxTok := p.advance()
		if n, ok := parseIndexSuffix(idxTok.Text); ok {
			proc.Index = &n
		}
		proc.End = idxTok
	}

	if p.match(token.LParen) {
		proc.End = p.previous()
		if !p.check(token.RParen) {
			for {
				param := p.parseParam()
				proc.Parameters = append(proc.Parameters, param)
				proc.End = param.End
				if p.match(token.Semicolon) || p.match(token.Comma) {
					proc.End = p.previous()
					continue
				}
				break
			}
		}
		if p.match(token.RParen) {
			proc.End = p.previous()
		} else {
			p.error(newParseError(ErrorMissingToken, p.peek(), "expected ')' closing parameter list"))
		}
	}

	if p.match(token.Colon) {
		proc.End = p.previous()
		proc.ReturnType = p.parseTypeRef()
		if proc.ReturnType != nil {
			proc.End = proc.ReturnType.End
		}
	}

	if p.match(token.Semicolon) {
		proc.End = p.previous()
	}

	if p.check(token.VAR) {
		proc.LocalVars = p.parseVarBlock()
		if n := len(proc.LocalVars); n > 0 {
			proc.End = proc.LocalVars[n-1].End
		}
	}

	if p.check(token.BEGIN) {
		body := p.parseCompound()
		proc.Body = body.Statements
		proc.End = body.End
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected BEGIN opening procedure body"))
	}

	if p.match(token.Semicolon) {
		proc.End = p.previous()
	}
	return proc
}

func (p *Parser) parseParam() *ast.Param {
	param := &ast.Param{}
	param.Start = p.peek()

	if p.match(token.VAR) {
		param.IsVar = true
	}
	nameTok := p.advance()
	param.Name = stripQuotes(nameTok.Text)
	param.NameToken = nameTok
	param.End = nameTok

	if p.match(token.Colon) {
		param.End = p.previous()
		param.Type = p.parseTypeRef()
		if param.Type != nil {
			param.End = param.Type.End
		}
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected ':' in parameter declaration"))
	}
	return param
}

// --- statements ---

func (p *Parser) parseCompound() *ast.CompoundStmt {
	beginTok := p.advance() // BEGIN
	c := &ast.CompoundStmt{}
	c.Start = beginTok
	c.End = beginTok

	for !p.check(token.END) && !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			c.Statements = append(c.Statements, stmt)
			c.End = stmt.EndToken()
		}
	}
	if p.check(token.END) {
		c.End = p.advance()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected END closing BEGIN"))
	}
	return c
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.peek().Kind {
	case token.BEGIN:
		return p.parseCompound()
	case token.IF:
		return p.parseIf()
	case token.CASE:
		return p.parseCase()
	case token.WHILE:
		return p.parseWhile()
	case token.REPEAT:
		return p.parseRepeat()
	case token.WITH:
		return p.parseWith()
	case token.FOR:
		return p.parseFor()
	case token.EXIT:
		return p.parseExit()
	case token.Semicolon:
		// empty statement
		tok := p.advance()
		return &ast.CompoundStmt{Bounds: ast.Bounds{Start: tok, End: tok}}
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseIf() ast.Statement {
	ifTok := p.advance()
	s := &ast.IfStmt{}
	s.Start = ifTok
	s.End = ifTok

	s.Condition = p.parseExpr()
	if s.Condition != nil {
		s.End = s.Condition.EndToken()
	}

	if p.match(token.THEN) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected THEN after IF condition"))
	}

	s.Then = p.parseStatement()
	if s.Then != nil {
		s.End = s.Then.EndToken()
	}

	if p.check(token.ELSE) {
		elseTok := p.advance()
		s.End = elseTok
		s.Else = p.parseStatement()
		if s.Else != nil {
			s.End = s.Else.EndToken()
		}
	}
	return s
}

func (p *Parser) parseWhile() ast.Statement {
	whileTok := p.advance()
	s := &ast.WhileStmt{}
	s.Start = whileTok
	s.End = whileTok

	s.Condition = p.parseExpr()
	if s.Condition != nil {
		s.End = s.Condition.EndToken()
	}
	if p.match(token.DO) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected DO after WHILE condition"))
	}
	s.Body = p.parseStatement()
	if s.Body != nil {
		s.End = s.Body.EndToken()
	}
	return s
}

func (p *Parser) parseRepeat() ast.Statement {
	repeatTok := p.advance()
	s := &ast.RepeatStmt{}
	s.Start = repeatTok
	s.End = repeatTok

	for !p.check(token.UNTIL) && !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			s.Body = append(s.Body, stmt)
			s.End = stmt.EndToken()
		}
	}
	if p.match(token.UNTIL) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected UNTIL closing REPEAT"))
	}
	s.Until = p.parseExpr()
	if s.Until != nil {
		s.End = s.Until.EndToken()
	}
	if p.match(token.Semicolon) {
		s.End = p.previous()
	}
	return s
}

func (p *Parser) parseWith() ast.Statement {
	withTok := p.advance()
	s := &ast.WithStmt{}
	s.Start = withTok
	s.End = withTok

	s.Expr = p.parseExpr()
	if s.Expr != nil {
		s.End = s.Expr.EndToken()
	}
	if p.match(token.DO) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected DO after WITH expression"))
	}
	s.Body = p.parseStatement()
	if s.Body != nil {
		s.End = s.Body.EndToken()
	}
	return s
}

func (p *Parser) parseFor() ast.Statement {
	forTok := p.advance()
	s := &ast.ForStmt{}
	s.Start = forTok
	s.End = forTok

	nameTok := p.consume(token.Identifier, "expected loop variable after FOR")
	s.Variable = nameTok.Text
	s.End = nameTok

	if p.match(token.Assign) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected ':=' after FOR loop variable"))
	}
	s.From = p.parseExpr()
	if s.From != nil {
		s.End = s.From.EndToken()
	}

	if p.match(token.DOWNTO) {
		s.DownTo = true
		s.End = p.previous()
	} else if p.match(token.TO) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected TO or DOWNTO in FOR"))
	}

	s.To = p.parseExpr()
	if s.To != nil {
		s.End = s.To.EndToken()
	}
	if p.match(token.DO) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected DO after FOR bounds"))
	}
	s.Body = p.parseStatement()
	if s.Body != nil {
		s.End = s.Body.EndToken()
	}
	return s
}

func (p *Parser) parseExit() ast.Statement {
	exitTok := p.advance()
	s := &ast.ExitStmt{}
	s.Start = exitTok
	s.End = exitTok

	if p.match(token.LParen) {
		s.End = p.previous()
		if !p.check(token.RParen) {
			s.Value = p.parseExpr()
			if s.Value != nil {
				s.End = s.Value.EndToken()
			}
		}
		if p.match(token.RParen) {
			s.End = p.previous()
		} else {
			p.error(newParseError(ErrorMissingToken, p.peek(), "expected ')' closing EXIT argument"))
		}
	}
	if p.match(token.Semicolon) {
		s.End = p.previous()
	}
	return s
}

// parseExprStatement disambiguates assignment from a bare call/expression
// statement by looking for `:=` after the parsed lvalue (§4.2).
func (p *Parser) parseExprStatement() ast.Statement {
	startTok := p.peek()
	expr := p.parseExpr()
	if expr == nil {
		// Could not start an expression at all: record an error and
		// synthesize an ErrorStmt covering the single offending token.
		tok := p.advance()
		p.error(newParseError(ErrorSyntax, tok, "expected statement"))
		return &ast.ErrorStmt{Bounds: ast.Bounds{Start: tok, End: tok}, Tokens: []token.Token{tok}}
	}

	if p.match(token.Assign) {
		assignTok := p.previous()
		s := &ast.AssignStmt{Target: expr}
		s.Start = startTok
		s.End = assignTok
		value := p.parseExpr()
		s.Value = value
		if value != nil {
			s.End = value.EndToken()
		}
		if p.match(token.Semicolon) {
			s.End = p.previous()
		}
		return s
	}

	s := &ast.CallStmt{Call: expr}
	s.Start = startTok
	s.End = expr.EndToken()
	if p.match(token.Semicolon) {
		s.End = p.previous()
	}
	return s
}

// --- CASE and the central §4.2 CaseBranch recovery algorithm ---

func (p *Parser) parseCase() ast.Statement {
	caseTok := p.advance()
	s := &ast.CaseStmt{}
	s.Start = caseTok
	s.End = caseTok

	s.Expr = p.parseExpr()
	if s.Expr != nil {
		s.End = s.Expr.EndToken()
	}
	if p.match(token.OF) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected OF after CASE expression"))
	}

	for !p.check(token.ELSE) && !p.check(token.END) && !p.isAtEnd() && p.isCaseValueStart() {
		branch := p.parseCaseBranch()
		s.Branches = append(s.Branches, branch)
		s.End = branch.End
	}

	if p.check(token.ELSE) {
		elseTok := p.advance()
		s.End = elseTok
		s.ElseBranch = p.parseStatement()
		if s.ElseBranch != nil {
			s.End = s.ElseBranch.EndToken()
		}
	}

	if p.match(token.END) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected END closing CASE"))
	}
	if p.match(token.Semicolon) {
		s.End = p.previous()
	}
	return s
}

// isCaseValueStart reports whether the current token could plausibly begin
// a case-branch value: any literal, or a plain or quoted identifier.
func (p *Parser) isCaseValueStart() bool {
	switch p.peek().Kind {
	case token.Integer, token.Decimal, token.StringLit, token.DateLit, token.TimeLit,
		token.DateTimeLit, token.BooleanLit, token.Identifier, token.QuotedIdentifier:
		return true
	}
	return false
}

// isLineStartCaseValue reports whether cur is a plausible next case-branch
// value token (integer or string literal) that begins a new source line
// relative to last, the most recently consumed token (§4.2).
func isLineStartCaseValue(cur, last token.Token) bool {
	if cur.Kind != token.Integer && cur.Kind != token.StringLit {
		return false
	}
	return cur.Line > last.Line
}

// parseCaseBranch parses `value {, value} ':' statement`. When the ':' is
// missing it performs the recovery described in §4.2: record an error,
// synthesize a partial branch with the values parsed so far and no
// statements, then advance the cursor until a sync token is reached,
// setting endToken to the last token actually advanced past.
func (p *Parser) parseCaseBranch() *ast.CaseBranch {
	branch := &ast.CaseBranch{}
	firstValue := p.parseExpr()
	branch.Start = p.peek()
	if firstValue != nil {
		branch.Start = firstValue.StartToken()
		branch.End = firstValue.EndToken()
		branch.Values = append(branch.Values, firstValue)
	} else {
		branch.End = branch.Start
	}

	for p.match(token.Comma) {
		branch.End = p.previous()
		v := p.parseExpr()
		if v != nil {
			branch.Values = append(branch.Values, v)
			branch.End = v.EndToken()
		}
	}

	if !p.match(token.Colon) {
		startTok := branch.Start
		if len(branch.Values) > 0 {
			startTok = branch.Values[0].StartToken()
		}
		p.error(newParseError(ErrorCaseBranch, p.peek(), "expected ':' after case branch value"))

		last := startTok
		stepped := false
		for !p.isAtEnd() {
			cur := p.peek()
			if cur.Kind == token.ELSE || cur.Kind == token.END {
				break
			}
			if isLineStartCaseValue(cur, last) {
				break
			}
			if cur.Kind == token.Semicolon {
				last = p.advance()
				stepped = true
				break
			}
			last = p.advance()
			stepped = true
		}
		if stepped {
			branch.End = last
		} else {
			branch.End = startTok
		}
		branch.Statements = []ast.Statement{}
		return branch
	}
	branch.End = p.previous()

	if !p.isAtEnd() && !p.check(token.ELSE) && !p.check(token.END) {
		if stmt := p.parseStatement(); stmt != nil {
			branch.Statements = append(branch.Statements, stmt)
			branch.End = stmt.EndToken()
		}
	}
	return branch
}

// --- cursor helpers ---

func (p *Parser) peek() token.Token {
	if len(p.tokens) == 0 {
		return token.Token{Kind: token.EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return token.Token{Kind: token.EOF}
	}
	if p.current-1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past the current token if it matches kind, otherwise
// records an error and returns the unexpected token without advancing.
func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.error(newParseError(ErrorMissingToken, p.peek(), message))
	return p.peek()
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Kind == token.EOF
}

func (p *Parser) error(e ParseError) {
	p.errors = append(p.errors, e)
}

// --- shared value helpers ---

func stripQuotes(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

func parseIndexSuffix(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(text, "@"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseTypeRefString(s string) *ast.TypeRef {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return &ast.TypeRef{Name: fields[0], Args: fields[1:]}
}
