package bytecode

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/types"
)

func (e *Emitter) emitBlock(ctx *funcCtx, b *ast.Block) {
	for _, stmt := range b.Statements {
		e.emitStmt(ctx, stmt)
	}
}

func (e *Emitter) emitStmt(ctx *funcCtx, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Block:
		e.emitBlock(ctx, s)
	case *ast.Assign:
		e.emitAssign(ctx, s)
	case *ast.CallStatement:
		e.emitCallStatement(ctx, s)
	case *ast.Return:
		e.emitReturn(ctx, s)
	case *ast.If:
		e.emitIf(ctx, s)
	case *ast.While:
		e.emitWhile(ctx, s)
	case *ast.DoWhile:
		e.emitDoWhile(ctx, s)
	case *ast.For:
		e.emitFor(ctx, s)
	}
}

func (e *Emitter) emitAssign(ctx *funcCtx, a *ast.Assign) {
	line := a.Pos().Line
	switch lhs := a.LHS.(type) {
	case *ast.VariableRef:
		e.emitExpr(ctx, a.RHS)
		e.emitStore(ctx, lhs, line)
	case *ast.Indexer:
		e.emitExpr(ctx, lhs.Array)
		for _, idx := range lhs.Indices {
			e.emitExpr(ctx, idx)
		}
		e.emitExpr(ctx, a.RHS)
		ctx.chunk.EmitCall(runtimeArraySet, 2+len(lhs.Indices), line)
	}
}

// emitCallStatement discards the callee's result with a Pop unless it is
// Void (spec.md §4.5 "Call-returning-value discarded in a CallStatement
// context emits a Pop after the call").
func (e *Emitter) emitCallStatement(ctx *funcCtx, s *ast.CallStatement) {
	e.emitCall(ctx, s.Call, s.Pos().Line)
	if !s.Call.ReturnType().Equal(types.VoidType) {
		ctx.chunk.Emit(Pop, s.Pos().Line)
	}
}

func (e *Emitter) emitReturn(ctx *funcCtx, r *ast.Return) {
	line := r.Pos().Line
	if r.Expr != nil {
		e.emitExpr(ctx, r.Expr)
	}
	ctx.chunk.Emit(Ret, line)
}

func (e *Emitter) emitIf(ctx *funcCtx, i *ast.If) {
	c := ctx.chunk
	line := i.Pos().Line

	e.emitExpr(ctx, i.Cond)
	elseLabel := c.NewLabel()
	c.EmitBranch(Brfalse, elseLabel, line)

	e.emitStmt(ctx, i.Then)

	if i.Else != nil {
		end := c.NewLabel()
		c.EmitBranch(Br, end, line)
		c.MarkLabel(elseLabel)
		e.emitStmt(ctx, i.Else)
		c.MarkLabel(end)
	} else {
		c.MarkLabel(elseLabel)
	}
}

func (e *Emitter) emitWhile(ctx *funcCtx, w *ast.While) {
	c := ctx.chunk
	line := w.Pos().Line

	loop := c.NewLabel()
	end := c.NewLabel()

	c.MarkLabel(loop)
	e.emitExpr(ctx, w.Cond)
	c.EmitBranch(Brfalse, end, line)
	e.emitStmt(ctx, w.Body)
	c.EmitBranch(Br, loop, line)
	c.MarkLabel(end)
}

// emitDoWhile lowers a body that always executes once before the
// condition is tested: loop back to the top while the condition holds.
func (e *Emitter) emitDoWhile(ctx *funcCtx, d *ast.DoWhile) {
	c := ctx.chunk
	line := d.Pos().Line

	loop := c.NewLabel()
	c.MarkLabel(loop)
	e.emitStmt(ctx, d.Body)
	e.emitExpr(ctx, d.Cond)
	c.EmitBranch(Brtrue, loop, line)
}

// emitFor lowers spec.md §4.5's literal for-loop shape: "assign initial;
// loop: load var; load final; Bgt/Blt end; body; var := var ± 1; Br loop;
// end:". Up counts toward final with Bgt (exit once var exceeds final);
// Down counts down to final with Blt (exit once var is below final).
func (e *Emitter) emitFor(ctx *funcCtx, f *ast.For) {
	c := ctx.chunk
	line := f.Pos().Line

	e.emitExpr(ctx, f.Initial)
	e.emitStore(ctx, f.Var, line)

	loop := c.NewLabel()
	end := c.NewLabel()
	c.MarkLabel(loop)

	e.emitLoad(ctx, f.Var, line)
	e.emitExpr(ctx, f.Final)
	if f.Direction == ast.Up {
		c.EmitBranch(Bgt, end, line)
	} else {
		c.EmitBranch(Blt, end, line)
	}

	e.emitStmt(ctx, f.Body)

	e.emitLoad(ctx, f.Var, line)
	c.EmitConstInt(1, line)
	if f.Direction == ast.Up {
		c.Emit(Add, line)
	} else {
		c.Emit(Sub, line)
	}
	e.emitStore(ctx, f.Var, line)

	c.EmitBranch(Br, loop, line)
	c.MarkLabel(end)
}
