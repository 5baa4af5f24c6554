package parser

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
)

// parseType parses "Primitive ['[' int {',' int} ']']" (spec.md §4.2).
func (p *Parser) parseType() types.Type {
	var base types.Primitive
	switch p.la.Type {
	case lexer.INT_TYPE:
		base = types.IntType
	case lexer.DOUBLE_TYPE:
		base = types.DoubleType
	case lexer.STRING_TYPE:
		base = types.StringType
	case lexer.BOOL_TYPE:
		base = types.BoolType
	default:
		p.errorf("expected a type name but found %s", p.la.Type)
		return types.UnsupportedType
	}
	p.advance()

	if !p.at(lexer.LBRACKET) {
		return base
	}
	p.advance()
	sizes := []int{p.parseArrayBound()}
	for p.at(lexer.COMMA) {
		p.advance()
		sizes = append(sizes, p.parseArrayBound())
	}
	p.expect(lexer.RBRACKET)
	return types.Array{Element: base, Dimensions: len(sizes), Sizes: sizes}
}

func (p *Parser) parseArrayBound() int {
	tok, ok := p.expect(lexer.INT)
	if !ok {
		return 0
	}
	n := 0
	for _, r := range tok.Text {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// parseVarDecls parses one "var" declaration group, including every
// additional "Type ident {',' ident} ';'" clause that follows without a
// repeated 'var' keyword (spec.md §4.2 VarDecls).
func (p *Parser) parseVarDecls() []*ast.Variable {
	p.expect(lexer.VAR)
	var out []*ast.Variable
	out = append(out, p.parseTypeIdentList()...)
	for p.isTypeStart() {
		out = append(out, p.parseTypeIdentList()...)
	}
	return out
}

func (p *Parser) parseTypeIdentList() []*ast.Variable {
	typ := p.parseType()
	var names []lexer.Token
	nameTok, ok := p.expect(lexer.IDENT)
	if ok {
		names = append(names, nameTok)
	}
	for p.at(lexer.COMMA) {
		p.advance()
		if nameTok, ok := p.expect(lexer.IDENT); ok {
			names = append(names, nameTok)
		}
	}
	if _, ok := p.expect(lexer.SEMICOLON); !ok {
		p.sync(tokenSet(lexer.SEMICOLON, lexer.FUNCTION, lexer.VAR, lexer.BEGIN))
		if p.at(lexer.SEMICOLON) {
			p.advance()
		}
	}

	out := make([]*ast.Variable, len(names))
	for i, n := range names {
		out[i] = &ast.Variable{Name: n.Text, Type: typ}
	}
	return out
}

// parseFuncDecl parses a full function declaration and registers its
// signature in ProgramScope once the body has been parsed. Calls are only
// resolved in the later semantic pass, after every function is registered,
// so forward-referencing calls still resolve (spec.md §4.1
// "declare before use is not required among user functions").
func (p *Parser) parseFuncDecl() *ast.Function {
	tok := p.la
	p.expect(lexer.FUNCTION)
	nameTok, _ := p.expect(lexer.IDENT)

	fn := &ast.Function{Name: nameTok.Text}
	fn.Tok = tok

	p.expect(lexer.LPAREN)
	if !p.at(lexer.RPAREN) {
		fn.Args = append(fn.Args, p.parseParam())
		for p.at(lexer.COMMA) {
			p.advance()
			fn.Args = append(fn.Args, p.parseParam())
		}
	}
	p.expect(lexer.RPAREN)

	fn.ReturnType = types.VoidType
	if p.at(lexer.COLON) {
		p.advance()
		fn.ReturnType = p.parseType()
	}

	fn.LocalScope = scope.NewLocalScope(p.program, fn.ReturnType)
	for _, a := range fn.Args {
		fn.LocalScope.Declare(a.Name, a.Type)
	}

	for p.at(lexer.VAR) {
		locals := p.parseVarDecls()
		fn.Locals = append(fn.Locals, locals...)
		for _, l := range locals {
			fn.LocalScope.Declare(l.Name, l.Type)
		}
	}

	fn.Body = p.parseBlock()

	p.program.DeclareFunction(fn.Name, fn.Signature())
	return fn
}

func (p *Parser) parseParam() *ast.Variable {
	typ := p.parseType()
	nameTok, _ := p.expect(lexer.IDENT)
	return &ast.Variable{Name: nameTok.Text, Type: typ}
}
