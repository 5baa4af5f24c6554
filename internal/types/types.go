// Package types implements the V type model: a small closed sum type of
// primitives and rectangular primitive-element arrays, plus the implicit
// coercion lattice used throughout semantic analysis.
package types

import "fmt"

// Kind distinguishes the primitive members of the type sum type.
type Kind int

const (
	Bool Kind = iota
	Int
	Double
	String
	Void
	// Unsupported is the sentinel produced by the reflective type provider
	// for an external member whose type the compiler does not model. Any
	// expression carrying it must not participate in further type-directed
	// decisions (spec.md §3).
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	case Void:
		return "void"
	default:
		return "unsupported"
	}
}

// Type is the sum type of spec.md §3: either a Primitive or a rectangular
// Array of primitives.
type Type interface {
	fmt.Stringer
	// Equal reports type equality under spec.md's rules, in particular the
	// rank-only equality for arrays.
	Equal(other Type) bool
	isType()
}

// Primitive is a scalar type: Bool, Int, Double, String, Void, or the
// Unsupported sentinel.
type Primitive struct {
	Kind Kind
}

func (p Primitive) isType() {}

func (p Primitive) String() string { return p.Kind.String() }

func (p Primitive) Equal(other Type) bool {
	o, ok := other.(Primitive)
	return ok && o.Kind == p.Kind
}

// Convenience constructors/singletons mirroring the teacher's primitive
// constant table (internal/interp/types/type_system.go), narrowed to V's
// five-member primitive set.
var (
	BoolType        = Primitive{Kind: Bool}
	IntType         = Primitive{Kind: Int}
	DoubleType      = Primitive{Kind: Double}
	StringType      = Primitive{Kind: String}
	VoidType        = Primitive{Kind: Void}
	UnsupportedType = Primitive{Kind: Unsupported}
)

// Array is a fixed-size, rectangular array of a primitive element type.
// Jagged arrays are forbidden: there is no Array-of-Array member.
type Array struct {
	Element    Primitive
	Dimensions int
	Sizes      []int
}

func (a Array) isType() {}

func (a Array) String() string {
	s := "array["
	for i, sz := range a.Sizes {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", sz)
	}
	return s + "] of " + a.Element.String()
}

// Equal implements spec.md's deliberate choice: two Array types compare
// equal iff their rank (Dimensions) is equal, regardless of element type or
// sizes. This makes arrays of equal rank interchangeable as function
// arguments.
func (a Array) Equal(other Type) bool {
	o, ok := other.(Array)
	return ok && o.Dimensions == a.Dimensions
}

// IsPrimitive reports whether t is a Primitive (not an Array).
func IsPrimitive(t Type) bool {
	_, ok := t.(Primitive)
	return ok
}

// IsUnsupported reports whether t is the Unsupported sentinel.
func IsUnsupported(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == Unsupported
}

// IsNumeric reports whether t is Int or Double.
func IsNumeric(t Type) bool {
	p, ok := t.(Primitive)
	return ok && (p.Kind == Int || p.Kind == Double)
}

// CanImplicitlyCoerce reports whether a value of type from may be used
// where a value of type to is expected without an explicit cast. The only
// implicit widening in V is Int -> Double (spec.md §3).
func CanImplicitlyCoerce(from, to Type) bool {
	if from.Equal(to) {
		return true
	}
	fp, fok := from.(Primitive)
	tp, tok := to.(Primitive)
	return fok && tok && fp.Kind == Int && tp.Kind == Double
}

// CanExplicitlyCast reports whether a cast expression may legally convert
// from to to. The single explicit narrowing recognized by the grammar is
// Double -> Int; any implicit coercion is trivially also explicit.
func CanExplicitlyCast(from, to Type) bool {
	if CanImplicitlyCoerce(from, to) {
		return true
	}
	fp, fok := from.(Primitive)
	tp, tok := to.(Primitive)
	return fok && tok && fp.Kind == Double && tp.Kind == Int
}
