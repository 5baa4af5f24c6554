package bytecode

import (
	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/types"
)

// emitExpr emits expr's value-producing code, leaving exactly one value on
// the stack.
func (e *Emitter) emitExpr(ctx *funcCtx, expr ast.Expression) {
	line := expr.Pos().Line
	switch x := expr.(type) {
	case *ast.Constant:
		e.emitConstant(ctx, x, line)
	case *ast.VariableRef:
		e.emitLoad(ctx, x, line)
	case *ast.Indexer:
		e.emitIndexerRead(ctx, x, line)
	case *ast.Call:
		e.emitCall(ctx, x, line)
	case *ast.Unary:
		e.emitUnary(ctx, x, line)
	case *ast.Cast:
		e.emitCast(ctx, x, line)
	case *ast.Binary:
		e.emitBinary(ctx, x, line)
	}
}

func (e *Emitter) emitConstant(ctx *funcCtx, c *ast.Constant, line int) {
	switch c.Kind {
	case ast.ConstInt:
		ctx.chunk.EmitConstInt(c.IntValue, line)
	case ast.ConstDouble:
		ctx.chunk.EmitDouble(c.DoubleValue, line)
	case ast.ConstString:
		ctx.chunk.EmitStr(Ldstr, c.StringValue, line)
	case ast.ConstBool:
		ctx.chunk.EmitConstBool(c.BoolValue, line)
	}
}

// emitLoad pushes a VariableRef's value: Ldarg for a parameter, Ldloc for
// a local, Ldsfld for one of this program's globals or (qualified by
// "Type.Member") an external reference (spec.md §4.5 "Variable access").
func (e *Emitter) emitLoad(ctx *funcCtx, v *ast.VariableRef, line int) {
	if v.IsExternal {
		ctx.chunk.EmitStr(Ldsfld, v.Name(), line)
		return
	}
	if slot, ok := ctx.lookupLocal(v.Name()); ok {
		if slot < ctx.paramCount {
			ctx.chunk.EmitInt(Ldarg, int64(slot), line)
		} else {
			ctx.chunk.EmitInt(Ldloc, int64(slot-ctx.paramCount), line)
		}
		return
	}
	ctx.chunk.EmitStr(Ldsfld, v.Name(), line)
}

// emitStore is emitLoad's mirror for an assignment target.
func (e *Emitter) emitStore(ctx *funcCtx, v *ast.VariableRef, line int) {
	if slot, ok := ctx.lookupLocal(v.Name()); ok {
		if slot < ctx.paramCount {
			ctx.chunk.EmitInt(Starg, int64(slot), line)
		} else {
			ctx.chunk.EmitInt(Stloc, int64(slot-ctx.paramCount), line)
		}
		return
	}
	ctx.chunk.EmitStr(Stsfld, v.Name(), line)
}

// emitIndexerRead lowers "arr[i,j,...]" to pushing the array, pushing
// every index, and calling the runtime Array.Get helper (spec.md §4.5
// "indexed read is call arr.Get").
func (e *Emitter) emitIndexerRead(ctx *funcCtx, ix *ast.Indexer, line int) {
	e.emitExpr(ctx, ix.Array)
	for _, idx := range ix.Indices {
		e.emitExpr(ctx, idx)
	}
	ctx.chunk.EmitCall(runtimeArrayGet, 1+len(ix.Indices), line)
}

// emitCall lowers a user-function or external-method call: evaluate every
// argument left to right, then Call the resolved callee.
func (e *Emitter) emitCall(ctx *funcCtx, c *ast.Call, line int) {
	for _, arg := range c.Args {
		e.emitExpr(ctx, arg)
	}
	ctx.chunk.EmitCall(c.Callee.Name(), len(c.Args), line)
}

func (e *Emitter) emitUnary(ctx *funcCtx, u *ast.Unary, line int) {
	e.emitExpr(ctx, u.Operand)
	switch u.Op {
	case ast.UMinus:
		ctx.chunk.Emit(Neg, line)
	case ast.UNot:
		// spec.md §4.5: "logical not is Ldc_I4_0 ; Ceq".
		ctx.chunk.Emit(Ldc_I4_0, line)
		ctx.chunk.Emit(Ceq, line)
	}
}

func (e *Emitter) emitCast(ctx *funcCtx, c *ast.Cast, line int) {
	e.emitExpr(ctx, c.Operand)
	if c.Target.Equal(types.DoubleType) {
		ctx.chunk.Emit(Conv_R8, line)
	} else {
		ctx.chunk.Emit(Conv_I4, line)
	}
}

func (e *Emitter) emitBinary(ctx *funcCtx, b *ast.Binary, line int) {
	switch b.Op {
	case ast.LogAnd:
		e.emitShortCircuit(ctx, b, false, line)
		return
	case ast.LogOr:
		e.emitShortCircuit(ctx, b, true, line)
		return
	}

	e.emitExpr(ctx, b.Left)
	e.emitExpr(ctx, b.Right)

	switch b.Op {
	case ast.Add:
		if b.Left.ReturnType().Equal(types.StringType) {
			ctx.chunk.EmitCall(runtimeStringConcat, 2, line)
		} else {
			ctx.chunk.Emit(Add, line)
		}
	case ast.Sub:
		ctx.chunk.Emit(Sub, line)
	case ast.Mul:
		ctx.chunk.Emit(Mul, line)
	case ast.Div:
		ctx.chunk.Emit(Div, line)
	case ast.Rem:
		ctx.chunk.Emit(Rem, line)
	case ast.LogXor:
		ctx.chunk.Emit(Xor, line)
	case ast.Eq:
		ctx.chunk.Emit(Ceq, line)
	case ast.Lt:
		ctx.chunk.Emit(Clt, line)
	case ast.Gt:
		ctx.chunk.Emit(Cgt, line)
	case ast.Neq:
		// spec.md §4.5: Neq/Leq/Geq are synthesized by comparing the
		// equality/greater/less result with zero.
		ctx.chunk.Emit(Ceq, line)
		ctx.chunk.Emit(Ldc_I4_0, line)
		ctx.chunk.Emit(Ceq, line)
	case ast.Leq:
		ctx.chunk.Emit(Cgt, line)
		ctx.chunk.Emit(Ldc_I4_0, line)
		ctx.chunk.Emit(Ceq, line)
	case ast.Geq:
		ctx.chunk.Emit(Clt, line)
		ctx.chunk.Emit(Ldc_I4_0, line)
		ctx.chunk.Emit(Ceq, line)
	}
}

// emitShortCircuit lowers `and`/`or` to a branch over the RHS with a
// fixed push of the short-circuited value (spec.md §4.5): `and` skips the
// RHS and pushes false when the LHS is false; `or` skips the RHS and
// pushes true when the LHS is true.
func (e *Emitter) emitShortCircuit(ctx *funcCtx, b *ast.Binary, shortCircuitOnTrue bool, line int) {
	c := ctx.chunk
	shortCircuit := c.NewLabel()
	end := c.NewLabel()

	e.emitExpr(ctx, b.Left)
	if shortCircuitOnTrue {
		c.EmitBranch(Brtrue, shortCircuit, line)
	} else {
		c.EmitBranch(Brfalse, shortCircuit, line)
	}

	e.emitExpr(ctx, b.Right)
	c.EmitBranch(Br, end, line)

	c.MarkLabel(shortCircuit)
	c.EmitConstBool(shortCircuitOnTrue, line)

	c.MarkLabel(end)
}
