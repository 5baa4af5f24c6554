// Package semantic implements the evaluator: spec.md §4.3's semantic
// analyzer and constant folder. It walks the AST built by internal/parser,
// mutating it in place — resolving names through the scope chain, checking
// and coercing types, folding constant subexpressions, and trimming dead
// code — while accumulating diagnostics in a shared vmerrors.Sink rather
// than returning an error.
package semantic

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
	"github.com/cwbudde/vc/internal/vmerrors"
)

// Evaluator holds the one piece of state shared across a whole evaluation:
// the diagnostic sink every per-node rule reports into.
type Evaluator struct {
	sink *vmerrors.Sink
}

// New creates an Evaluator reporting into sink.
func New(sink *vmerrors.Sink) *Evaluator {
	return &Evaluator{sink: sink}
}

// Evaluate is spec.md §4.3's top-level "evaluate(program_scope)": visit
// every function declaration, then the program body, each under its own
// scope and declared return type (Void for the program body itself, which
// is not a function and is never subject to the function-level post-check).
func (e *Evaluator) Evaluate(prog *ast.Program) {
	for _, fn := range prog.Functions {
		e.evalFunction(fn)
	}
	e.evalBlock(prog.ProgramScope, types.VoidType, prog.Body)
}

// evalFunction elaborates one function body and applies the function-level
// post-check (spec.md §4.3): a missing return on some path is an error for
// a non-Void function, and a synthetic "return;" is appended for a Void
// function whose body does not already return on every path.
func (e *Evaluator) evalFunction(fn *ast.Function) {
	returns := e.evalBlock(fn.LocalScope, fn.ReturnType, fn.Body)
	fn.Body.SetReturns(returns)
	if returns {
		return
	}
	if !fn.ReturnType.Equal(types.VoidType) {
		e.sink.SemanticError(fn.Pos(), "function %q: not all code paths return a value", fn.Name)
		return
	}
	fn.Body.Statements = append(fn.Body.Statements, ast.NewReturn(fn.Body.Tok, nil))
}

// evalBlock evaluates every statement of b in order under sc/retType,
// implementing spec.md §4.3's dead-code trimming: once a statement's
// returns flag is set, every statement after it is unreachable and is
// dropped, with an "unreachable code" warning at the first dropped
// statement's token. It returns whether the block itself always returns.
func (e *Evaluator) evalBlock(sc scope.Scope, retType types.Type, b *ast.Block) bool {
	var kept []ast.Statement
	returns := false
	for _, stmt := range b.Statements {
		if returns {
			e.sink.Warning(stmt.Pos(), "unreachable code")
			break
		}
		result, keep := e.evalStmt(sc, retType, stmt)
		if !keep {
			continue
		}
		kept = append(kept, result)
		if result.Returns() {
			returns = true
		}
	}
	b.Statements = kept
	b.SetReturns(returns)
	return returns
}
