// Package bytecode implements the backend of spec.md §4.5: a two-pass
// emitter that lowers the evaluated AST into a stack-machine instruction
// set with CIL-flavored nominal mnemonics, an assembler abstraction over
// the resulting container, and a disassembler for debugging.
package bytecode

import "fmt"

// OpCode is one stack-machine instruction. The mnemonics mirror spec.md
// §4.5's nominal naming (Ldc_I4_0, Ldloc, Stsfld, Ceq, Brfalse, ...): the
// original system emits real CIL via a reflection-emit API, so the names
// below are chosen to read the way that IL would, not the teacher's own
// custom VM mnemonics.
type OpCode byte

const (
	// Ldc_I4_0..Ldc_I4_8 push a small integer constant 0..8 (spec.md §4.5
	// "short forms for ints in 0..8"). Ldc_I4_0/Ldc_I4_1 double as the
	// boolean false/true push.
	// Stack: [] -> [int]
	Ldc_I4_0 OpCode = iota
	Ldc_I4_1
	Ldc_I4_2
	Ldc_I4_3
	Ldc_I4_4
	Ldc_I4_5
	Ldc_I4_6
	Ldc_I4_7
	Ldc_I4_8

	// Ldc_I4 pushes a generic int constant carried in Instruction.Int, for
	// any value outside the 0..8 short-form range.
	// Stack: [] -> [int]
	Ldc_I4

	// Ldc_R8 pushes a double constant carried in Instruction.Double.
	// Stack: [] -> [double]
	Ldc_R8

	// Ldstr pushes a string constant carried in Instruction.Str.
	// Stack: [] -> [string]
	Ldstr

	// Arithmetic. Stack: [a, b] -> [a op b]. Rem is Int-only (spec.md §4.3
	// "% Int only"); Add on strings is never emitted directly — string
	// concatenation lowers to a Call of the runtime concatenation method
	// instead (spec.md §4.5).
	Add
	Sub
	Mul
	Div
	Rem

	// Neg negates the top of stack (Int or Double). Stack: [a] -> [-a]
	Neg

	// Xor is the host's bitwise xor, used both for the `xor` logical
	// operator on 0/1-valued bools (spec.md §4.5: "behaves as logical xor
	// on 0/1 values") and would, in a fuller language, serve integer xor.
	// Stack: [a, b] -> [a ^ b]
	Xor

	// Comparisons. Ceq/Cgt/Clt push a 0/1 int. Neq/Leq/Geq do not exist as
	// opcodes: spec.md §4.5 synthesizes them by comparing the
	// equality/greater/less result with zero, which the emitter does by
	// following Ceq/Cgt/Clt with Ldc_I4_0 ; Ceq.
	// Stack: [a, b] -> [a == b]
	Ceq
	// Stack: [a, b] -> [a > b]
	Cgt
	// Stack: [a, b] -> [a < b]
	Clt

	// Conv_R8 widens an Int to a Double. Conv_I4 narrows a Double to an
	// Int (truncating). These back the evaluator's implicit/explicit
	// casts (spec.md §4.3 Cast/Binary widening).
	// Stack: [int] -> [double]
	Conv_R8
	// Stack: [double] -> [int]
	Conv_I4

	// Variable access. Ldarg/Ldloc/Ldsfld push; Starg/Stloc/Stsfld pop and
	// store. Int carries the argument/local slot index for Ldarg/Starg and
	// Ldloc/Stloc; Str carries the field name for Ldsfld/Stsfld (and, for
	// an external reference, the "Type.Member" qualified name).
	// Stack: [] -> [arg[Int]]
	Ldarg
	// Stack: [value] -> []
	Starg
	// Stack: [] -> [loc[Int]]
	Ldloc
	// Stack: [value] -> []
	Stloc
	// Stack: [] -> [field[Str]]
	Ldsfld
	// Stack: [value] -> []
	Stsfld

	// Control flow. Br is unconditional; Brfalse/Brtrue pop a bool and
	// jump if it is false/true; Bgt/Blt pop two ints/doubles and jump if
	// the first is greater/less than the second (used by the `for` loop's
	// bound check, spec.md §4.5). Every branch carries its target as a
	// Label that Chunk.Finalize rewrites to an absolute
	// instruction index once every label has been marked.
	// Stack: [] -> []
	Br
	// Stack: [bool] -> []
	Brfalse
	// Stack: [bool] -> []
	Brtrue
	// Stack: [a, b] -> []
	Bgt
	// Stack: [a, b] -> []
	Blt

	// Call invokes a method by its fully qualified name (Str): a user
	// function by its bare name, an external method as "Type.Member", or
	// one of the runtime helper methods spec.md §4.5 calls out by name
	// (string concatenation, array Get/Set). Int carries the argument
	// count for disassembly only; the callee's own signature determines
	// how many stack slots it actually consumes.
	// Stack: [args...] -> [result] (or [] if the callee is Void)
	Call

	// Newobj constructs a new instance via the type's constructor (Str
	// names the type, Int its arity/rank); used exclusively for array
	// instantiation in this target (spec.md §4.5 "instantiated with a
	// Newobj on the array's constructor"). The dimension sizes are pushed
	// as Int32 arguments immediately before Newobj.
	// Stack: [sizes...] -> [array]
	Newobj

	// Pop discards the top of stack: emitted after a CallStatement whose
	// callee returns a value that is not used (spec.md §4.5).
	// Stack: [a] -> []
	Pop

	// Ret returns from the current method, popping a value first unless
	// the method is Void.
	// Stack: [value]? -> []
	Ret
)

var opcodeNames = map[OpCode]string{
	Ldc_I4_0: "Ldc_I4_0", Ldc_I4_1: "Ldc_I4_1", Ldc_I4_2: "Ldc_I4_2",
	Ldc_I4_3: "Ldc_I4_3", Ldc_I4_4: "Ldc_I4_4", Ldc_I4_5: "Ldc_I4_5",
	Ldc_I4_6: "Ldc_I4_6", Ldc_I4_7: "Ldc_I4_7", Ldc_I4_8: "Ldc_I4_8",
	Ldc_I4: "Ldc_I4", Ldc_R8: "Ldc_R8", Ldstr: "Ldstr",
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Rem: "Rem", Neg: "Neg", Xor: "Xor",
	Ceq: "Ceq", Cgt: "Cgt", Clt: "Clt",
	Conv_R8: "Conv_R8", Conv_I4: "Conv_I4",
	Ldarg: "Ldarg", Starg: "Starg", Ldloc: "Ldloc", Stloc: "Stloc",
	Ldsfld: "Ldsfld", Stsfld: "Stsfld",
	Br: "Br", Brfalse: "Brfalse", Brtrue: "Brtrue", Bgt: "Bgt", Blt: "Blt",
	Call: "Call", Newobj: "Newobj", Pop: "Pop", Ret: "Ret",
}

func (op OpCode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("OpCode(%d)", byte(op))
}

// ShortIntOp returns the Ldc_I4_n short form for n in 0..8, and false
// otherwise; the emitter uses this to prefer the compact form spec.md
// §4.5 calls for before falling back to the generic Ldc_I4.
func ShortIntOp(n int64) (OpCode, bool) {
	if n < 0 || n > 8 {
		return 0, false
	}
	return Ldc_I4_0 + OpCode(n), true
}

// Instruction is one emitted bytecode instruction. Not every field is
// meaningful for every opcode; see the per-opcode doc comments above for
// which of Int/Double/Str carries the operand (a branch's label id or
// resolved target is in Int, with IsLabel telling which).
type Instruction struct {
	Op OpCode

	Int    int64   // small int constant, slot index, arg count
	Double float64 // Ldc_R8 operand
	Str    string  // Ldstr value, field/method/type name

	// IsLabel reports whether Int is a label id awaiting resolution by
	// Chunk.Finalize, rather than an already-resolved instruction
	// index. Only Br/Brfalse/Brtrue/Bgt/Blt ever set this.
	IsLabel bool

	Line int
}

func (in Instruction) String() string {
	switch in.Op {
	case Ldc_I4, Ldarg, Starg, Ldloc, Stloc:
		return fmt.Sprintf("%-10s %d", in.Op, in.Int)
	case Ldc_R8:
		return fmt.Sprintf("%-10s %g", in.Op, in.Double)
	case Ldstr, Ldsfld, Stsfld:
		return fmt.Sprintf("%-10s %q", in.Op, in.Str)
	case Call:
		return fmt.Sprintf("%-10s %s/%d", in.Op, in.Str, in.Int)
	case Newobj:
		return fmt.Sprintf("%-10s %s[%d]", in.Op, in.Str, in.Int)
	case Br, Brfalse, Brtrue, Bgt, Blt:
		return fmt.Sprintf("%-10s L%d", in.Op, in.Int)
	default:
		return in.Op.String()
	}
}
