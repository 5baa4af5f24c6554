package ast

import (
	"strings"

	"github.com/cwbudde/vc/internal/lexer"
)

// Block is a brace-delimited ('begin'...'end') sequence of statements. The
// evaluator trims it in place when dead code is detected (spec.md §4.3).
type Block struct {
	stmtBase
	Statements []Statement
}

func (b *Block) statementNode() {}

func (b *Block) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	return "begin " + strings.Join(parts, "; ") + " end"
}

// Assign is "lhs = rhs;". The parser accepts any Expression as lhs; the
// evaluator verifies it is a VariableRef or Indexer (spec.md §3
// Assignability).
type Assign struct {
	stmtBase
	LHS Expression
	RHS Expression
}

func (a *Assign) statementNode() {}
func (a *Assign) String() string { return a.LHS.String() + " = " + a.RHS.String() }

// CallStatement is a call expression used as a statement, discarding any
// return value.
type CallStatement struct {
	stmtBase
	Call *Call
}

func (c *CallStatement) statementNode() {}
func (c *CallStatement) String() string { return c.Call.String() + ";" }

// Return is "return [expr];". Expr is nil for a bare return.
type Return struct {
	stmtBase
	Expr Expression
}

func (r *Return) statementNode() {}

func (r *Return) String() string {
	if r.Expr == nil {
		return "return;"
	}
	return "return " + r.Expr.String() + ";"
}

// If is "if (cond) then [else else]". Else is nil when absent.
type If struct {
	stmtBase
	Cond Expression
	Then Statement
	Else Statement
}

func (i *If) statementNode() {}

func (i *If) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// While is "while (cond) body".
type While struct {
	stmtBase
	Cond Expression
	Body Statement
}

func (w *While) statementNode() {}
func (w *While) String() string { return "while (" + w.Cond.String() + ") " + w.Body.String() }

// DoWhile is "do body while (cond)". The body always executes at least
// once, even if the condition folds to constant false (spec.md §4.3).
type DoWhile struct {
	stmtBase
	Body Statement
	Cond Expression
}

func (d *DoWhile) statementNode() {}
func (d *DoWhile) String() string { return "do " + d.Body.String() + " while (" + d.Cond.String() + ")" }

// ForDirection distinguishes the two counting directions of spec.md's For.
type ForDirection int

const (
	Up ForDirection = iota
	Down
)

// For is "for var = initial (to|downto) final do body".
type For struct {
	stmtBase
	Var       *VariableRef
	Initial   Expression
	Final     Expression
	Direction ForDirection
	Body      Statement
}

func (f *For) statementNode() {}

func (f *For) String() string {
	dir := "to"
	if f.Direction == Down {
		dir = "downto"
	}
	return "for " + f.Var.String() + " = " + f.Initial.String() + " " + dir + " " + f.Final.String() + " do " + f.Body.String()
}

// NewBlock is a small constructor for synthesizing blocks (e.g. the
// post-evaluation synthetic "return;" appended to a Void function).
func NewBlock(tok lexer.Token, stmts []Statement) *Block {
	return &Block{stmtBase: stmtBase{Tok: tok}, Statements: stmts}
}

// NewReturn is a small constructor for the synthetic void return the
// evaluator appends to a Void function whose body does not already return
// on every path (spec.md §4.3 "Function-level post-check").
func NewReturn(tok lexer.Token, expr Expression) *Return {
	r := &Return{stmtBase: stmtBase{Tok: tok}, Expr: expr}
	r.SetReturns(true)
	return r
}

// The constructors below exist because stmtBase is unexported: the parser
// package builds every Statement node through them rather than naming the
// embedded field directly.

// NewReturnStmt builds a parsed "return [expr];" without forcing Returns
// (the evaluator computes that flag during semantic analysis).
func NewReturnStmt(tok lexer.Token, expr Expression) *Return {
	return &Return{stmtBase: stmtBase{Tok: tok}, Expr: expr}
}

// NewAssign builds a parsed "lhs = rhs;".
func NewAssign(tok lexer.Token, lhs, rhs Expression) *Assign {
	return &Assign{stmtBase: stmtBase{Tok: tok}, LHS: lhs, RHS: rhs}
}

// NewCallStatement builds a parsed call-used-as-statement.
func NewCallStatement(tok lexer.Token, call *Call) *CallStatement {
	return &CallStatement{stmtBase: stmtBase{Tok: tok}, Call: call}
}

// NewIf builds a parsed "if (cond) then [else else]".
func NewIf(tok lexer.Token, cond Expression, then, els Statement) *If {
	return &If{stmtBase: stmtBase{Tok: tok}, Cond: cond, Then: then, Else: els}
}

// NewWhile builds a parsed "while (cond) body".
func NewWhile(tok lexer.Token, cond Expression, body Statement) *While {
	return &While{stmtBase: stmtBase{Tok: tok}, Cond: cond, Body: body}
}

// NewDoWhile builds a parsed "do body while (cond)".
func NewDoWhile(tok lexer.Token, body Statement, cond Expression) *DoWhile {
	return &DoWhile{stmtBase: stmtBase{Tok: tok}, Body: body, Cond: cond}
}

// NewFor builds a parsed "for var = initial (to|downto) final do body".
func NewFor(tok lexer.Token, v *VariableRef, initial, final Expression, dir ForDirection, body Statement) *For {
	return &For{stmtBase: stmtBase{Tok: tok}, Var: v, Initial: initial, Final: final, Direction: dir, Body: body}
}
