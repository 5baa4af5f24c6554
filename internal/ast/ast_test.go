package ast

import (
	"testing"

	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/types"
)

func tok(tt lexer.TokenType, text string) lexer.Token {
	return lexer.Token{Type: tt, Text: text}
}

func TestConstantReturnTypeInvariant(t *testing.T) {
	c := NewIntConstant(tok(lexer.INT, "1"), 1)
	if c.ReturnType() == nil {
		t.Fatal("ReturnType() must never be nil after construction")
	}
	if !c.ReturnType().Equal(types.IntType) {
		t.Errorf("ReturnType() = %v, want Int", c.ReturnType())
	}
}

func TestBinaryOpString(t *testing.T) {
	left := NewIntConstant(tok(lexer.INT, "1"), 1)
	right := NewIntConstant(tok(lexer.INT, "2"), 2)
	b := &Binary{Op: Add, Left: left, Right: right}
	if got, want := b.String(), "(1 + 2)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBinaryOpClassification(t *testing.T) {
	if !Eq.IsRelational() {
		t.Error("Eq should be relational")
	}
	if Add.IsRelational() {
		t.Error("Add should not be relational")
	}
	if !LogAnd.IsLogical() {
		t.Error("LogAnd should be logical")
	}
}

func TestReturnsFlagDefaultsFalse(t *testing.T) {
	r := &Return{}
	if r.Returns() {
		t.Error("a freshly constructed Return should not yet have Returns() forced true")
	}
	r.SetReturns(true)
	if !r.Returns() {
		t.Error("SetReturns(true) should stick")
	}
}

func TestIndexerStringJoinsIndices(t *testing.T) {
	base := NewVariableRef(tok(lexer.IDENT, "a"), []string{"a"})
	idx := &Indexer{Array: base, Indices: []Expression{
		NewIntConstant(tok(lexer.INT, "1"), 1),
		NewIntConstant(tok(lexer.INT, "2"), 2),
	}}
	if got, want := idx.String(), "a[1,2]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
