package bytecode

import "github.com/cwbudde/vc/internal/types"

// Label identifies a branch target within one Chunk, allocated by
// NewLabel and fixed to an instruction index by MarkLabel. Chunk keeps
// labels local to itself: spec.md §4.5 never branches across a function
// boundary.
type Label int

// Chunk is one emitted method body: a user function, the synthetic Main
// entry point, or the global holder type's static initializer (spec.md
// §4.5 "declaration"/"emission" passes both produce one Chunk per such
// unit).
type Chunk struct {
	Name       string
	Params     []types.Type
	ReturnType types.Type
	LocalCount int // parameters + locals, per scope.LocalScope.Count()

	Code []Instruction

	labelPos []int // label id -> resolved instruction index, -1 until MarkLabel
	lastLine int
}

// NewChunk creates an empty Chunk for the given method shape.
func NewChunk(name string, params []types.Type, returnType types.Type) *Chunk {
	return &Chunk{Name: name, Params: params, ReturnType: returnType}
}

// NewLabel allocates a fresh, as-yet-unresolved Label.
func (c *Chunk) NewLabel() Label {
	c.labelPos = append(c.labelPos, -1)
	return Label(len(c.labelPos) - 1)
}

// MarkLabel fixes l to the instruction index about to be emitted next.
func (c *Chunk) MarkLabel(l Label) {
	c.labelPos[l] = len(c.Code)
}

// emit appends an instruction at the current source line and returns its
// index.
func (c *Chunk) emit(in Instruction) int {
	if in.Line == 0 {
		in.Line = c.lastLine
	} else {
		c.lastLine = in.Line
	}
	c.Code = append(c.Code, in)
	return len(c.Code) - 1
}

// Emit appends a plain instruction with no operand.
func (c *Chunk) Emit(op OpCode, line int) int {
	return c.emit(Instruction{Op: op, Line: line})
}

// EmitInt appends an instruction carrying an Int operand (slot index,
// argument count, or a generic constant for Ldc_I4).
func (c *Chunk) EmitInt(op OpCode, n int64, line int) int {
	return c.emit(Instruction{Op: op, Int: n, Line: line})
}

// EmitDouble appends Ldc_R8 with the given constant.
func (c *Chunk) EmitDouble(v float64, line int) int {
	return c.emit(Instruction{Op: Ldc_R8, Double: v, Line: line})
}

// EmitStr appends an instruction carrying a Str operand (Ldstr's value,
// or a field/method/type name).
func (c *Chunk) EmitStr(op OpCode, s string, line int) int {
	return c.emit(Instruction{Op: op, Str: s, Line: line})
}

// EmitCall appends a Call instruction naming the callee and its argument
// count.
func (c *Chunk) EmitCall(name string, argc int, line int) int {
	return c.emit(Instruction{Op: Call, Str: name, Int: int64(argc), Line: line})
}

// EmitNewobj appends a Newobj instantiating an array of the given rank.
func (c *Chunk) EmitNewobj(typeName string, rank int, line int) int {
	return c.emit(Instruction{Op: Newobj, Str: typeName, Int: int64(rank), Line: line})
}

// EmitBranch appends a branch to l. The instruction's Int operand holds
// l's raw id until Finalize rewrites every branch's Int to l's
// final instruction index.
func (c *Chunk) EmitBranch(op OpCode, l Label, line int) int {
	return c.emit(Instruction{Op: op, Int: int64(l), IsLabel: true, Line: line})
}

// EmitConstInt prefers the Ldc_I4_0..Ldc_I4_8 short forms (spec.md §4.5)
// before falling back to the generic Ldc_I4.
func (c *Chunk) EmitConstInt(v int64, line int) int {
	if short, ok := ShortIntOp(v); ok {
		return c.Emit(short, line)
	}
	return c.EmitInt(Ldc_I4, v, line)
}

// EmitConstBool pushes Ldc_I4_1/Ldc_I4_0 for true/false (spec.md §4.5
// "I4_0/I4_1 for booleans").
func (c *Chunk) EmitConstBool(v bool, line int) int {
	if v {
		return c.Emit(Ldc_I4_1, line)
	}
	return c.Emit(Ldc_I4_0, line)
}

// Finalize resolves every branch instruction's label id into its marked
// instruction index. Must be called once, after every label referenced by
// a branch in this Chunk has been marked.
func (c *Chunk) Finalize() {
	for i, in := range c.Code {
		if !in.IsLabel {
			continue
		}
		c.Code[i].Int = int64(c.labelPos[in.Int])
		c.Code[i].IsLabel = false
	}
}
