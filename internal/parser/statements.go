package parser

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/lexer"
)

// parseBlock parses a "begin Stmt* end" sequence.
func (p *Parser) parseBlock() *ast.Block {
	tok := p.la
	p.expect(lexer.BEGIN)
	var stmts []ast.Statement
	for !p.at(lexer.END) && !p.at(lexer.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(lexer.END)
	return ast.NewBlock(tok, stmts)
}

// parseStmt dispatches on the lookahead token to one of the Stmt
// alternatives (spec.md §4.2).
func (p *Parser) parseStmt() ast.Statement {
	switch p.la.Type {
	case lexer.BEGIN:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.RETURN:
		return p.parseReturn()
	default:
		return p.parseCallOrAssign()
	}
}

// parseCallOrAssign parses "Expr ['=' Expr] ';'". A bare expression
// statement is only meaningful when it is a call; anything else is a
// syntax error recorded as such, with an empty block returned as the
// recovery node.
func (p *Parser) parseCallOrAssign() ast.Statement {
	tok := p.la
	expr := p.parseExpr()

	if p.at(lexer.ASSIGN) {
		p.advance()
		rhs := p.parseExpr()
		p.expect(lexer.SEMICOLON)
		return ast.NewAssign(tok, expr, rhs)
	}

	p.expect(lexer.SEMICOLON)
	if call, ok := expr.(*ast.Call); ok {
		return ast.NewCallStatement(tok, call)
	}
	p.sink.Error(tok.Pos, "statement has no effect: expected a call or assignment")
	return ast.NewBlock(tok, nil)
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.la
	p.expect(lexer.RETURN)
	var expr ast.Expression
	if !p.at(lexer.SEMICOLON) {
		expr = p.parseExpr()
	}
	p.expect(lexer.SEMICOLON)
	return ast.NewReturnStmt(tok, expr)
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.la
	p.expect(lexer.IF)
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	then := p.parseStmt()
	var els ast.Statement
	if p.at(lexer.ELSE) {
		p.advance()
		els = p.parseStmt()
	}
	return ast.NewIf(tok, cond, then, els)
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.la
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	body := p.parseStmt()
	return ast.NewWhile(tok, cond, body)
}

// parseDoWhile parses "do Stmt while ( Expr )". Per spec.md §4.2 the
// production ends at the closing paren: no trailing semicolon is required.
func (p *Parser) parseDoWhile() ast.Statement {
	tok := p.la
	p.expect(lexer.DO)
	body := p.parseStmt()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	return ast.NewDoWhile(tok, body, cond)
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.la
	p.expect(lexer.FOR)

	loopVar := p.parseVariableRef()
	p.expect(lexer.ASSIGN)
	initial := p.parseExpr()

	dir := ast.Up
	switch p.la.Type {
	case lexer.TO:
		p.advance()
	case lexer.DOWNTO:
		dir = ast.Down
		p.advance()
	default:
		p.errorf("expected 'to' or 'downto' but found %s", p.la.Type)
	}

	final := p.parseExpr()
	p.expect(lexer.DO)
	body := p.parseStmt()

	return ast.NewFor(tok, loopVar, initial, final, dir, body)
}
