package bytecode

import (
	"fmt"

	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
)

// Runtime helper method names spec.md §4.5 calls out by behavior rather
// than by a user-visible declaration: string concatenation and indexed
// array access both lower to a Call of one of these.
const (
	runtimeStringConcat = "String.Concat"
	runtimeArrayGet      = "Array.Get"
	runtimeArraySet      = "Array.Set"
)

// Emitter lowers an evaluated ast.Program into a Container, implementing
// spec.md §4.5's two passes: Declaration builds the container shape (the
// global holder's fields and one Chunk per user function), Emission fills
// each Chunk's code, including the array-instantiation prologues and the
// synthetic Main entry point.
//
// Emitter assumes prog has already been through internal/semantic with no
// errors recorded (spec.md §7 "End-of-phase gating"): every expression's
// ReturnType is resolved and non-Unsupported, every VariableRef/Call that
// is not external carries a valid Resolved handle, and the AST has
// already had its dead code trimmed.
type Emitter struct{}

// NewEmitter creates an Emitter. It carries no state of its own — all
// per-compilation state lives in the Container and funcCtx values it
// builds for one Emit call (spec.md §5 "the process holds per-compilation
// state... for the duration of one compile call").
func NewEmitter() *Emitter { return &Emitter{} }

// Emit runs both backend passes over prog and returns the resulting
// Container.
func (e *Emitter) Emit(prog *ast.Program) (*Container, error) {
	if prog == nil {
		return nil, fmt.Errorf("bytecode: cannot emit a nil program")
	}

	container := NewContainer(prog.Name)
	container.Globals = make([]GlobalField, len(prog.Globals))
	for i, g := range prog.Globals {
		container.Globals[i] = GlobalField{Name: g.Name, Type: g.Type}
	}

	var ginit *Chunk
	for _, g := range prog.Globals {
		if arr, ok := g.Type.(types.Array); ok {
			if ginit == nil {
				ginit = NewChunk(prog.Name+".cctor", nil, types.VoidType)
			}
			e.emitArrayInit(ginit, arr, g.Pos().Line)
			ginit.EmitStr(Stsfld, g.Name, g.Pos().Line)
		}
	}
	container.GlobalInit = ginit

	for _, fn := range prog.Functions {
		container.Functions = append(container.Functions, e.emitFunction(fn))
	}
	container.Functions = append(container.Functions, e.emitMain(prog))

	return container, nil
}

// funcCtx carries the per-function state the statement/expression
// emitters need: which Chunk they are appending to, and how to resolve a
// bare local name to an Ldarg/Ldloc slot. localScope is nil while emitting
// the synthetic Main, whose only storage is the program's globals.
type funcCtx struct {
	chunk      *Chunk
	localScope *scope.LocalScope
	paramCount int
}

// lookupLocal reports the declaration-order slot of name among this
// function's parameters and locals, per scope.LocalScope's "parameters
// and locals share one slot space in declaration order" contract.
func (fc *funcCtx) lookupLocal(name string) (int, bool) {
	if fc.localScope == nil {
		return 0, false
	}
	for i := 0; i < fc.localScope.Count(); i++ {
		if fc.localScope.NameAt(i) == name {
			return i, true
		}
	}
	return 0, false
}

func (e *Emitter) emitFunction(fn *ast.Function) *Chunk {
	params := make([]types.Type, len(fn.Args))
	for i, a := range fn.Args {
		params[i] = a.Type
	}
	chunk := NewChunk(fn.Name, params, fn.ReturnType)
	chunk.LocalCount = fn.LocalScope.Count()

	ctx := &funcCtx{chunk: chunk, localScope: fn.LocalScope, paramCount: len(fn.Args)}

	for i, l := range fn.Locals {
		if arr, ok := l.Type.(types.Array); ok {
			e.emitArrayInit(chunk, arr, l.Pos().Line)
			chunk.EmitInt(Stloc, int64(i), l.Pos().Line)
		}
	}

	e.emitBlock(ctx, fn.Body)
	chunk.Finalize()
	return chunk
}

func (e *Emitter) emitMain(prog *ast.Program) *Chunk {
	chunk := NewChunk("Main", nil, types.VoidType)
	ctx := &funcCtx{chunk: chunk}
	e.emitBlock(ctx, prog.Body)
	chunk.Finalize()
	return chunk
}

// emitArrayInit pushes arr's dimension sizes and instantiates it via
// Newobj (spec.md §4.5 "instantiated with a Newobj on the array's
// constructor"). The caller still owes a Stloc/Stsfld to store the
// resulting reference.
func (e *Emitter) emitArrayInit(c *Chunk, arr types.Array, line int) {
	for _, sz := range arr.Sizes {
		c.EmitConstInt(int64(sz), line)
	}
	c.EmitNewobj(arr.Element.String()+"[]", arr.Dimensions, line)
}
