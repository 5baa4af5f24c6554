// Package parser implements the V language's LL(1) recursive-descent
// parser: one token of lookahead ("la"), the last consumed token ("t"), and
// a synchronization-set based error-recovery policy (spec.md §4.2).
package parser

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/ffi"
	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/vmerrors"
)

// Parser consumes a token stream and builds an AST plus its scope tree. It
// performs no name resolution or typing (spec.md §4.2 "Semantic
// side-effects during parsing"): it only inserts declarations into their
// enclosing scope as they are parsed.
type Parser struct {
	lex  *lexer.Lexer
	sink *vmerrors.Sink

	t  lexer.Token // last consumed token
	la lexer.Token // one-token lookahead

	program *scope.ProgramScope

	fatal error // set when the lexer reports a fatal error
}

// New creates a Parser over src, resolving external library references
// through provider. libraries is the CLI's reference list, already
// including the implicit default standard-library reference (spec.md §6).
func New(src string, sink *vmerrors.Sink, provider ffi.Provider, libraries []string) (*Parser, error) {
	lex, err := lexer.New(src)
	if err != nil {
		return nil, err
	}
	global := scope.NewGlobalScope(libraries, provider)
	p := &Parser{
		lex:     lex,
		sink:    sink,
		program: scope.NewProgramScope(global),
	}
	// Prime t/la: "t" starts as the zero Token, "la" as the first scanned
	// token.
	if tok, err := lex.Scan(); err != nil {
		p.fatal = err
	} else {
		p.la = tok
	}
	return p, nil
}

// Fatal returns the lexical fatal error, if scanning ever produced one.
// The caller must check this before trusting the returned AST.
func (p *Parser) Fatal() error { return p.fatal }

// advance consumes "la" into "t" and scans the next lookahead token.
func (p *Parser) advance() {
	if p.fatal != nil {
		return
	}
	p.t = p.la
	tok, err := p.lex.Scan()
	if err != nil {
		p.fatal = err
		return
	}
	p.la = tok
	p.sink.NoteTokenConsumed()
}

// at reports whether the lookahead token has the given type.
func (p *Parser) at(tt lexer.TokenType) bool { return p.la.Type == tt }

// expect consumes the lookahead if it matches tt, else reports a syntax
// error at its position and does not advance, letting the caller decide
// how to recover (usually by synchronizing to a follow set).
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, bool) {
	if p.at(tt) {
		tok := p.la
		p.advance()
		return tok, true
	}
	p.errorf("expected %s but found %s", tt, p.la.Type)
	return lexer.Token{}, false
}

// errorf reports a syntax error at the lookahead token's position, subject
// to the sink's suppression-distance policy (spec.md §4.2).
func (p *Parser) errorf(format string, args ...any) {
	p.sink.Error(p.la.Pos, format, args...)
}

// sync advances tokens until the lookahead is in set or EOF is reached,
// implementing the "weak follow set" recovery spec.md §4.2 describes: a
// precomputed set of tokens that can legally follow the failed
// construct.
func (p *Parser) sync(set map[lexer.TokenType]bool) {
	for !p.at(lexer.EOF) && !set[p.la.Type] {
		p.advance()
	}
}

// follow-set helpers used by sync() across declarations.go/statements.go.
func tokenSet(tts ...lexer.TokenType) map[lexer.TokenType]bool {
	s := make(map[lexer.TokenType]bool, len(tts))
	for _, t := range tts {
		s[t] = true
	}
	return s
}

// ParseProgram parses the whole token stream into an ast.Program. Syntax
// errors are reported to the sink; the caller should check
// sink.HasErrors() before proceeding to semantic analysis (spec.md §7
// "End-of-phase gating").
func (p *Parser) ParseProgram() *ast.Program {
	progTok := p.la
	if _, ok := p.expect(lexer.PROGRAM); !ok {
		p.sync(tokenSet(lexer.SEMICOLON))
	}
	nameTok, _ := p.expect(lexer.IDENT)
	p.expect(lexer.SEMICOLON)

	prog := &ast.Program{Name: nameTok.Text, ProgramScope: p.program}
	prog.Tok = progTok

	for p.at(lexer.FUNCTION) || p.at(lexer.VAR) {
		if p.at(lexer.FUNCTION) {
			prog.Functions = append(prog.Functions, p.parseFuncDecl())
		} else {
			for _, v := range p.parseVarDecls() {
				p.program.DeclareGlobal(v.Name, v.Type)
				prog.Globals = append(prog.Globals, v)
			}
		}
	}

	prog.Body = p.parseBlock()
	return prog
}

func (p *Parser) isTypeStart() bool {
	switch p.la.Type {
	case lexer.INT_TYPE, lexer.DOUBLE_TYPE, lexer.STRING_TYPE, lexer.BOOL_TYPE:
		return true
	default:
		return false
	}
}
