package semantic

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
)

// evalStmt evaluates one statement under sc/retType, returning the
// (possibly replaced) statement and whether the caller should keep it at
// all — a statement folds away entirely when its condition is constant and
// its body is elided (spec.md §4.3 "If"/"While"/"DoWhile").
func (e *Evaluator) evalStmt(sc scope.Scope, retType types.Type, stmt ast.Statement) (ast.Statement, bool) {
	switch s := stmt.(type) {
	case *ast.Block:
		e.evalBlock(sc, retType, s)
		return s, true
	case *ast.Assign:
		return e.evalAssign(sc, s), true
	case *ast.CallStatement:
		e.evalExpr(sc, s.Call)
		return s, true
	case *ast.Return:
		return e.evalReturn(sc, retType, s), true
	case *ast.If:
		return e.evalIf(sc, retType, s)
	case *ast.While:
		return e.evalWhile(sc, retType, s)
	case *ast.DoWhile:
		return e.evalDoWhile(sc, retType, s)
	case *ast.For:
		return e.evalFor(sc, retType, s), true
	default:
		return stmt, true
	}
}

// evalAssign type-checks "lhs = rhs", requiring lhs to be a VariableRef or
// Indexer (spec.md §3 Assignability) and coercing rhs when it is merely
// implicitly compatible.
func (e *Evaluator) evalAssign(sc scope.Scope, a *ast.Assign) *ast.Assign {
	switch a.LHS.(type) {
	case *ast.VariableRef, *ast.Indexer:
	default:
		e.sink.SemanticError(a.LHS.Pos(), "left-hand side of assignment must be a variable or array element")
	}
	a.LHS = e.evalExpr(sc, a.LHS)
	a.RHS = e.evalExpr(sc, a.RHS)
	a.RHS = e.coerce(a.LHS.ReturnType(), a.RHS)
	return a
}

// evalReturn type-checks "return [expr];" against the enclosing function's
// declared return type (spec.md §4.3 "Return").
func (e *Evaluator) evalReturn(sc scope.Scope, retType types.Type, r *ast.Return) *ast.Return {
	r.SetReturns(true)
	if r.Expr == nil {
		if !retType.Equal(types.VoidType) {
			e.sink.SemanticError(r.Pos(), "return without a value in a function returning %s", retType)
		}
		return r
	}
	r.Expr = e.evalExpr(sc, r.Expr)
	if retType.Equal(types.VoidType) {
		e.sink.SemanticError(r.Pos(), "return with a value in a Void function")
		return r
	}
	r.Expr = e.coerce(retType, r.Expr)
	return r
}

// evalIf evaluates the condition and both branches, then applies spec.md
// §4.3's constant-condition fold: a constant-true condition replaces the
// statement with its Then branch, a constant-false one with its Else
// branch (or removes the statement entirely when there is none).
func (e *Evaluator) evalIf(sc scope.Scope, retType types.Type, i *ast.If) (ast.Statement, bool) {
	i.Cond = e.evalExpr(sc, i.Cond)
	e.requireBool(i.Cond)

	i.Then, _ = e.evalStmt(sc, retType, i.Then)
	var elseReturns bool
	if i.Else != nil {
		i.Else, _ = e.evalStmt(sc, retType, i.Else)
		elseReturns = i.Else.Returns()
	}
	i.SetReturns(i.Then.Returns() && i.Else != nil && elseReturns)

	if c, ok := constBool(i.Cond); ok {
		if c {
			return i.Then, true
		}
		if i.Else != nil {
			return i.Else, true
		}
		return nil, false
	}
	return i, true
}

// evalWhile evaluates the condition and body; a constant-false condition
// removes the loop entirely (spec.md §4.3 "While").
func (e *Evaluator) evalWhile(sc scope.Scope, retType types.Type, w *ast.While) (ast.Statement, bool) {
	w.Cond = e.evalExpr(sc, w.Cond)
	e.requireBool(w.Cond)
	w.Body, _ = e.evalStmt(sc, retType, w.Body)

	if c, ok := constBool(w.Cond); ok && !c {
		return nil, false
	}
	return w, true
}

// evalDoWhile evaluates the body (which always runs at least once) and the
// condition; a constant-false condition replaces the statement with its
// body, propagating the body's returns flag (spec.md §4.3 "DoWhile").
func (e *Evaluator) evalDoWhile(sc scope.Scope, retType types.Type, d *ast.DoWhile) (ast.Statement, bool) {
	d.Body, _ = e.evalStmt(sc, retType, d.Body)
	d.Cond = e.evalExpr(sc, d.Cond)
	e.requireBool(d.Cond)

	if c, ok := constBool(d.Cond); ok && !c {
		return d.Body, true
	}
	return d, true
}

// evalFor resolves the loop variable, type-checks bounds against it, and
// evaluates the body (spec.md §4.3 "For").
func (e *Evaluator) evalFor(sc scope.Scope, retType types.Type, f *ast.For) *ast.For {
	f.Var = e.evalVariableRef(sc, f.Var)
	varType := f.Var.ReturnType()

	f.Initial = e.evalExpr(sc, f.Initial)
	f.Initial = e.coerce(varType, f.Initial)
	f.Final = e.evalExpr(sc, f.Final)
	f.Final = e.coerce(varType, f.Final)

	f.Body, _ = e.evalStmt(sc, retType, f.Body)
	return f
}

// requireBool reports an error when expr's already-evaluated type is not
// Bool, which every condition in the grammar requires.
func (e *Evaluator) requireBool(expr ast.Expression) {
	if types.IsUnsupported(expr.ReturnType()) {
		return
	}
	if !expr.ReturnType().Equal(types.BoolType) {
		e.sink.SemanticError(expr.Pos(), "condition must be bool, got %s", expr.ReturnType())
	}
}

// constBool reports whether expr is a folded constant Bool, and its value.
func constBool(expr ast.Expression) (bool, bool) {
	c, ok := expr.(*ast.Constant)
	if !ok || c.Kind != ast.ConstBool {
		return false, false
	}
	return c.BoolValue, true
}
