package parser

import (
	"github.com/cal-lang/cal-ls/internal/cal/ast"
	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// Expression precedence, low to high:
//   or < and < comparison < additive < multiplicative < unary < postfix

func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.check(token.OR) {
		opTok := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Bounds: mergeBounds(left, opTok, right)}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseComparison()
	for p.check(token.AND) {
		opTok := p.advance()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Bounds: mergeBounds(left, opTok, right)}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.checkAny(token.Equal, token.NotEqual, token.Less, token.LessEq, token.Greater, token.GreaterEq, token.IN) {
		opTok := p.advance()
		if opTok.Kind == token.IN {
			right := p.parseSetExpr()
			left = &ast.BinaryExpr{Operator: "IN", Left: left, Right: right, Bounds: mergeBounds(left, opTok, right)}
			continue
		}
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Bounds: mergeBounds(left, opTok, right)}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.checkAny(token.Plus, token.Minus) {
		opTok := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Bounds: mergeBounds(left, opTok, right)}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.checkAny(token.Star, token.Slash, token.DIV, token.MOD) {
		opTok := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Bounds: mergeBounds(left, opTok, right)}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.checkAny(token.NOT, token.Minus, token.Plus) {
		opTok := p.advance()
		operand := p.parseUnary()
		b := ast.Bounds{Start: opTok, End: opTok}
		if operand != nil {
			b.End = operand.EndToken()
		}
		return &ast.UnaryExpr{Operator: opTok.Text, Operand: operand, Bounds: b}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.check(token.Dot):
			p.advance()
			nameTok := p.advance()
			expr = &ast.MemberExpr{Target: expr, Name: nameTok.Text, Bounds: ast.Bounds{Start: startOf(expr, nameTok), End: nameTok}}

		case p.check(token.LBracket):
			p.advance()
			idx := p.parseExpr()
			endTok := p.peek()
			if p.match(token.RBracket) {
				endTok = p.previous()
			} else {
				p.error(newParseError(ErrorMissingToken, p.peek(), "expected ']' closing index"))
			}
			expr = &ast.IndexExpr{Target: expr, Index: idx, Bounds: ast.Bounds{Start: startOf(expr, endTok), End: endTok}}

		case p.check(token.LParen):
			p.advance()
			var args []ast.Expr
			if !p.check(token.RParen) {
				for {
					arg := p.parseExpr()
					if arg != nil {
						args = append(args, arg)
					}
					if !p.match(token.Comma) {
						break
					}
				}
			}
			endTok := p.peek()
			if p.match(token.RParen) {
				endTok = p.previous()
			} else {
				p.error(newParseError(ErrorMissingToken, p.peek(), "expected ')' closing call arguments"))
			}
			expr = &ast.CallExpr{Callee: expr, Args: args, Bounds: ast.Bounds{Start: startOf(expr, endTok), End: endTok}}

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Integer, token.Decimal, token.StringLit, token.DateLit, token.TimeLit, token.DateTimeLit, token.BooleanLit:
		p.advance()
		return &ast.LiteralExpr{Text: tok.Text, Bounds: ast.Bounds{Start: tok, End: tok}}

	case token.Identifier, token.QuotedIdentifier:
		p.advance()
		return &ast.IdentifierExpr{Name: stripQuotes(tok.Text), Bounds: ast.Bounds{Start: tok, End: tok}}

	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		if !p.match(token.RParen) {
			p.error(newParseError(ErrorMissingToken, p.peek(), "expected ')' closing expression"))
		}
		return inner

	case token.LBracket:
		return p.parseSetExpr()

	default:
		return nil
	}
}

func (p *Parser) parseSetExpr() ast.Expr {
	openTok := p.advance() // LBracket
	s := &ast.SetExpr{Bounds: ast.Bounds{Start: openTok, End: openTok}}

	if !p.check(token.RBracket) {
		for {
			el := p.parseRangeOrExpr()
			if el != nil {
				s.Elements = append(s.Elements, el)
			}
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if p.match(token.RBracket) {
		s.End = p.previous()
	} else {
		p.error(newParseError(ErrorMissingToken, p.peek(), "expected ']' closing set"))
	}
	return s
}

func (p *Parser) parseRangeOrExpr() ast.Expr {
	left := p.parseExpr()
	if p.match(token.DotDot) {
		dotTok := p.previous()
		right := p.parseExpr()
		return &ast.RangeExpr{From: left, To: right, Bounds: mergeBounds(left, dotTok, right)}
	}
	return left
}

func (p *Parser) checkAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// mergeBounds builds the Bounds for a binary/range node: Start from left
// when present, End from right when present, falling back to opTok.
func mergeBounds(left ast.Expr, opTok token.Token, right ast.Expr) ast.Bounds {
	b := ast.Bounds{Start: opTok, End: opTok}
	if left != nil {
		b.Start = left.StartToken()
	}
	if right != nil {
		b.End = right.EndToken()
	}
	return b
}

// startOf returns expr's start token, or fallback when expr is nil.
func startOf(expr ast.Expr, fallback token.Token) token.Token {
	if expr != nil {
		return expr.StartToken()
	}
	return fallback
}
