package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
)

// ConstKind distinguishes the literal forms the scanner can produce.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstDouble
	ConstString
	ConstBool
)

// Constant is a literal expression. Its typed Value is filled in by the
// evaluator from Tok.Text (spec.md §4.3 "Constant"); until then IntValue/
// DoubleValue/StringValue/BoolValue are zero.
type Constant struct {
	base
	Kind        ConstKind
	IntValue    int64
	DoubleValue float64
	StringValue string
	BoolValue   bool
}

func (c *Constant) expressionNode() {}

func (c *Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.IntValue)
	case ConstDouble:
		return fmt.Sprintf("%g", c.DoubleValue)
	case ConstString:
		return fmt.Sprintf("%q", c.StringValue)
	default:
		if c.BoolValue {
			return "true"
		}
		return "false"
	}
}

// NewIntConstant builds an already-folded Int constant, used by the
// evaluator's folding routines to synthesize new constant nodes.
func NewIntConstant(tok lexer.Token, v int64) *Constant {
	c := &Constant{base: base{Tok: tok}, Kind: ConstInt, IntValue: v}
	c.SetReturnType(types.IntType)
	return c
}

// NewDoubleConstant builds an already-folded Double constant.
func NewDoubleConstant(tok lexer.Token, v float64) *Constant {
	c := &Constant{base: base{Tok: tok}, Kind: ConstDouble, DoubleValue: v}
	c.SetReturnType(types.DoubleType)
	return c
}

// NewStringConstant builds an already-folded String constant.
func NewStringConstant(tok lexer.Token, v string) *Constant {
	c := &Constant{base: base{Tok: tok}, Kind: ConstString, StringValue: v}
	c.SetReturnType(types.StringType)
	return c
}

// NewBoolConstant builds an already-folded Bool constant.
func NewBoolConstant(tok lexer.Token, v bool) *Constant {
	c := &Constant{base: base{Tok: tok}, Kind: ConstBool, BoolValue: v}
	c.SetReturnType(types.BoolType)
	return c
}

// NewRawConstant builds a not-yet-evaluated literal straight from the
// scanner: only Kind and the originating Token are known. The typed value
// and ReturnType are filled in by the evaluator's Constant rule (spec.md
// §4.3 "parses its token value into a typed constant"), which is also
// where an unparseable Int/Double literal is reported and defaulted to
// zero. The parser uses this constructor exclusively; NewIntConstant and
// its siblings above are for the evaluator's own constant-folding output,
// where the value is already known.
func NewRawConstant(tok lexer.Token, kind ConstKind) *Constant {
	return &Constant{base: base{Tok: tok}, Kind: kind}
}

// VariableRef is a (possibly dotted) name reference: a local/parameter/
// global, or Type.Member reaching into an external library.
type VariableRef struct {
	base
	Parts []string // e.g. ["Math", "Pi"] for "Math.Pi"

	// Resolved is filled in by the evaluator once the name has been looked
	// up through the scope chain (spec.md §4.3 "VariableRef"); it is the
	// zero Handle and false until then. The backend's code emitter uses it
	// together with ReturnType to choose Ldarg/Ldloc/Ldsfld and the
	// external-member form.
	Resolved   scope.Handle
	IsExternal bool
	HasHandle  bool
}

func (v *VariableRef) expressionNode() {}
func (v *VariableRef) String() string  { return strings.Join(v.Parts, ".") }

// Name returns the dotted name joined with '.'.
func (v *VariableRef) Name() string { return strings.Join(v.Parts, ".") }

// Indexer is a multi-dimensional array index expression: Base[Indices...].
// spec.md §4.3 forbids chained indexers (a[i][j] is a parse error; only
// a[i,j] is accepted), so Indices holds every index of one indexer form.
type Indexer struct {
	base
	Array   Expression
	Indices []Expression
}

func (i *Indexer) expressionNode() {}

func (i *Indexer) String() string {
	parts := make([]string, len(i.Indices))
	for idx, e := range i.Indices {
		parts[idx] = e.String()
	}
	return fmt.Sprintf("%s[%s]", i.Array.String(), strings.Join(parts, ","))
}

// Call is a function/method invocation, resolved by name against the scope
// chain (user function, or Type.Member against an external library).
type Call struct {
	base
	Callee *VariableRef
	Args   []Expression

	// Resolved mirrors VariableRef's: filled in by the evaluator's Call
	// rule (spec.md §4.3) once overload resolution has picked one
	// signature, so the backend never repeats that work.
	Resolved   scope.Handle
	IsExternal bool
	HasHandle  bool
}

func (c *Call) expressionNode() {}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// UnaryOp distinguishes the two unary operators.
type UnaryOp int

const (
	UMinus UnaryOp = iota
	UNot
)

// Unary is a prefix unary expression: -x or !x.
type Unary struct {
	base
	Op      UnaryOp
	Operand Expression
}

func (u *Unary) expressionNode() {}

func (u *Unary) String() string {
	if u.Op == UMinus {
		return "-" + u.Operand.String()
	}
	return "!" + u.Operand.String()
}

// Cast is the explicit "{int} expr" cast-to-int form from spec.md §4.2's
// grammar; Target is always IntType in the current grammar but the node is
// general over any Type to keep the evaluator's cast logic uniform with the
// synthetic casts it inserts for implicit widening.
type Cast struct {
	base
	Target  types.Type
	Operand Expression
}

func (c *Cast) expressionNode() {}
func (c *Cast) String() string  { return fmt.Sprintf("{%s}%s", c.Target, c.Operand.String()) }

// IsSynthetic reports whether this cast was inserted by the evaluator
// (e.g. wrapping an Int argument passed to a Double parameter) rather than
// written explicitly in source.
func (c *Cast) IsSynthetic() bool { return c.Tok.Text == "" }

// BinaryOp enumerates the binary operators of spec.md §3.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Rem
	Eq
	Neq
	Lt
	Leq
	Gt
	Geq
	LogAnd
	LogOr
	LogXor
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case Leq:
		return "<="
	case Gt:
		return ">"
	case Geq:
		return ">="
	case LogAnd:
		return "and"
	case LogOr:
		return "or"
	case LogXor:
		return "xor"
	default:
		return "?"
	}
}

// IsRelational reports whether op is one of the six comparison operators
// (always yields Bool).
func (op BinaryOp) IsRelational() bool {
	switch op {
	case Eq, Neq, Lt, Leq, Gt, Geq:
		return true
	default:
		return false
	}
}

// IsLogical reports whether op is one of the three Bool-only logical
// operators.
func (op BinaryOp) IsLogical() bool {
	switch op {
	case LogAnd, LogOr, LogXor:
		return true
	default:
		return false
	}
}

// Binary is a two-operand expression.
type Binary struct {
	base
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (b *Binary) expressionNode() {}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}

// NewVariableRef is a small constructor used by both the parser and the
// evaluator's synthetic-node paths.
func NewVariableRef(tok lexer.Token, parts []string) *VariableRef {
	return &VariableRef{base: base{Tok: tok}, Parts: parts}
}

// The constructors below exist because base is unexported: the parser
// package builds every Expression node through them rather than naming the
// embedded field directly.

// NewIndexer builds a parsed "arr[i,j,...]".
func NewIndexer(tok lexer.Token, array Expression, indices []Expression) *Indexer {
	return &Indexer{base: base{Tok: tok}, Array: array, Indices: indices}
}

// NewCall builds a parsed "callee(args...)".
func NewCall(tok lexer.Token, callee *VariableRef, args []Expression) *Call {
	return &Call{base: base{Tok: tok}, Callee: callee, Args: args}
}

// NewUnary builds a parsed "-operand" or "!operand".
func NewUnary(tok lexer.Token, op UnaryOp, operand Expression) *Unary {
	return &Unary{base: base{Tok: tok}, Op: op, Operand: operand}
}

// NewCast builds a parsed "{target}operand" explicit cast. tok.Text is
// non-empty for a source-written cast; the evaluator's synthetic coercions
// use a zero-value Token instead, which IsSynthetic checks for.
func NewCast(tok lexer.Token, target types.Type, operand Expression) *Cast {
	return &Cast{base: base{Tok: tok}, Target: target, Operand: operand}
}

// NewBinary builds a parsed two-operand expression.
func NewBinary(tok lexer.Token, op BinaryOp, left, right Expression) *Binary {
	return &Binary{base: base{Tok: tok}, Op: op, Left: left, Right: right}
}
