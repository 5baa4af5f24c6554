package parser

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/lexer"
)

// parseExpr is the grammar's entry point; operator precedence is, from
// loosest to tightest: equality/relational, logical (and/or/xor),
// additive, multiplicative, unary (spec.md §4.2 "logical operators bind
// tighter than equality").
func (p *Parser) parseExpr() ast.Expression {
	return p.parseEquality()
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseLogical()
	for {
		op, ok := relationalOp(p.la.Type)
		if !ok {
			return left
		}
		tok := p.la
		p.advance()
		right := p.parseLogical()
		left = ast.NewBinary(tok, op, left, right)
	}
}

func (p *Parser) parseLogical() ast.Expression {
	left := p.parseAdditive()
	for {
		op, ok := logicalOp(p.la.Type)
		if !ok {
			return left
		}
		tok := p.la
		p.advance()
		right := p.parseAdditive()
		left = ast.NewBinary(tok, op, left, right)
	}
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		tok := p.la
		op := ast.Add
		if tok.Type == lexer.MINUS {
			op = ast.Sub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(tok, op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for {
		var op ast.BinaryOp
		switch p.la.Type {
		case lexer.STAR:
			op = ast.Mul
		case lexer.SLASH:
			op = ast.Div
		case lexer.PERCENT:
			op = ast.Rem
		default:
			return left
		}
		tok := p.la
		p.advance()
		right := p.parseUnary()
		left = ast.NewBinary(tok, op, left, right)
	}
}

// parseUnary parses "'-' Unary | '!' Unary | '{int}' Unary | Const" (spec.md
// §4.2). The "{int}" form is the grammar's one explicit cast.
func (p *Parser) parseUnary() ast.Expression {
	switch p.la.Type {
	case lexer.MINUS:
		tok := p.la
		p.advance()
		return ast.NewUnary(tok, ast.UMinus, p.parseUnary())
	case lexer.NOT:
		tok := p.la
		p.advance()
		return ast.NewUnary(tok, ast.UNot, p.parseUnary())
	case lexer.LBRACE:
		tok := p.la
		p.advance()
		target := p.parseType()
		p.expect(lexer.RBRACE)
		return ast.NewCast(tok, target, p.parseUnary())
	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses a literal, a parenthesized expression, or an
// identifier chain optionally followed by a call or an index.
func (p *Parser) parsePrimary() ast.Expression {
	switch p.la.Type {
	case lexer.INT:
		tok := p.la
		p.advance()
		return ast.NewRawConstant(tok, ast.ConstInt)
	case lexer.FLOAT:
		tok := p.la
		p.advance()
		return ast.NewRawConstant(tok, ast.ConstDouble)
	case lexer.STRING:
		tok := p.la
		p.advance()
		return ast.NewRawConstant(tok, ast.ConstString)
	case lexer.TRUE:
		tok := p.la
		p.advance()
		return ast.NewRawConstant(tok, ast.ConstBool)
	case lexer.FALSE:
		tok := p.la
		p.advance()
		return ast.NewRawConstant(tok, ast.ConstBool)
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(lexer.RPAREN)
		return inner
	case lexer.IDENT:
		return p.parseIdentChain()
	default:
		tok := p.la
		p.errorf("unexpected %s in expression", p.la.Type)
		p.advance()
		return ast.NewIntConstant(tok, 0)
	}
}

// parseIdentChain parses "ident {'.' ident} ['(' args ')' | '[' idx ']']",
// building a Call, an Indexer, or a bare VariableRef.
func (p *Parser) parseIdentChain() ast.Expression {
	startTok := p.la
	parts := []string{p.la.Text}
	p.advance()
	for p.at(lexer.DOT) {
		p.advance()
		nameTok, ok := p.expect(lexer.IDENT)
		if !ok {
			break
		}
		parts = append(parts, nameTok.Text)
	}
	ref := ast.NewVariableRef(startTok, parts)

	switch {
	case p.at(lexer.LPAREN):
		p.advance()
		var args []ast.Expression
		if !p.at(lexer.RPAREN) {
			args = append(args, p.parseExpr())
			for p.at(lexer.COMMA) {
				p.advance()
				args = append(args, p.parseExpr())
			}
		}
		p.expect(lexer.RPAREN)
		return ast.NewCall(startTok, ref, args)
	case p.at(lexer.LBRACKET):
		p.advance()
		indices := []ast.Expression{p.parseExpr()}
		for p.at(lexer.COMMA) {
			p.advance()
			indices = append(indices, p.parseExpr())
		}
		p.expect(lexer.RBRACKET)
		return ast.NewIndexer(startTok, ref, indices)
	default:
		return ref
	}
}

// parseVariableRef parses a bare identifier chain for the For statement's
// loop variable, which the grammar restricts to a name (never a call or
// index).
func (p *Parser) parseVariableRef() *ast.VariableRef {
	startTok := p.la
	if !p.at(lexer.IDENT) {
		p.errorf("expected a variable name but found %s", p.la.Type)
		return ast.NewVariableRef(startTok, []string{""})
	}
	parts := []string{p.la.Text}
	p.advance()
	for p.at(lexer.DOT) {
		p.advance()
		if nameTok, ok := p.expect(lexer.IDENT); ok {
			parts = append(parts, nameTok.Text)
		}
	}
	return ast.NewVariableRef(startTok, parts)
}

func relationalOp(tt lexer.TokenType) (ast.BinaryOp, bool) {
	switch tt {
	case lexer.EQ:
		return ast.Eq, true
	case lexer.NEQ:
		return ast.Neq, true
	case lexer.LT:
		return ast.Lt, true
	case lexer.LEQ:
		return ast.Leq, true
	case lexer.GT:
		return ast.Gt, true
	case lexer.GEQ:
		return ast.Geq, true
	default:
		return 0, false
	}
}

func logicalOp(tt lexer.TokenType) (ast.BinaryOp, bool) {
	switch tt {
	case lexer.AND:
		return ast.LogAnd, true
	case lexer.OR:
		return ast.LogOr, true
	case lexer.XOR:
		return ast.LogXor, true
	default:
		return 0, false
	}
}
