// Package ast defines the V abstract syntax tree: expressions, statements,
// and declarations, each carrying the Token that produced them for
// diagnostics (spec.md §3). Expression nodes carry a mutable returnType
// slot filled in by the evaluator; statement nodes carry a mutable
// "returns" flag used for dead-code elimination and function-level
// return-path checking (spec.md §4.3).
package ast

import (
	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/types"
)

// Node is the base capability every AST node provides: enough to point a
// diagnostic at the right place in the source.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that produces a value. ReturnType is nil until the
// evaluator visits the node; after evaluation it is always non-nil (it may
// be types.UnsupportedType, never a bare nil) per spec.md §8's invariant.
type Expression interface {
	Node
	expressionNode()
	ReturnType() types.Type
	SetReturnType(t types.Type)
}

// Statement is a node that performs an action without producing a value.
// Returns reports whether every path through this statement terminates in
// a return (spec.md GLOSSARY: "returns-flag"); it is computed and recorded
// by the evaluator.
type Statement interface {
	Node
	statementNode()
	Returns() bool
	SetReturns(b bool)
}

// Decl is any top-level or local declaration (Variable, Function).
type Decl interface {
	Node
	declNode()
}

// base is embedded by every Expression to provide Token/Pos/ReturnType
// plumbing without repeating it on each node kind.
type base struct {
	Tok lexer.Token
	typ types.Type
}

func (b *base) TokenLiteral() string     { return b.Tok.Text }
func (b *base) Pos() lexer.Position      { return b.Tok.Pos }
func (b *base) ReturnType() types.Type   { return b.typ }
func (b *base) SetReturnType(t types.Type) { b.typ = t }

// stmtBase is embedded by every Statement to provide Token/Pos/Returns
// plumbing.
type stmtBase struct {
	Tok        lexer.Token
	returnsAll bool
}

func (b *stmtBase) TokenLiteral() string { return b.Tok.Text }
func (b *stmtBase) Pos() lexer.Position  { return b.Tok.Pos }
func (b *stmtBase) Returns() bool        { return b.returnsAll }
func (b *stmtBase) SetReturns(v bool)    { b.returnsAll = v }
