package types

import "strings"

// Signature is the triple spec.md's GLOSSARY defines: a name, return type,
// and positional parameter types. It is the unit overload resolution
// compares (spec.md §4.4).
type Signature struct {
	Name       string
	ReturnType Type
	Args       []Type
}

func (s Signature) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ") " + s.ReturnType.String()
}

// ExactMatch reports whether actual is an exact match for s: same arity,
// and every actual argument type equals the corresponding parameter type.
func (s Signature) ExactMatch(actual []Type) bool {
	if len(actual) != len(s.Args) {
		return false
	}
	for i, a := range actual {
		if !a.Equal(s.Args[i]) {
			return false
		}
	}
	return true
}

// Compatible reports whether actual could call s: same arity, and every
// actual argument type is either equal to or implicitly coercible to the
// corresponding parameter type.
func (s Signature) Compatible(actual []Type) bool {
	if len(actual) != len(s.Args) {
		return false
	}
	for i, a := range actual {
		if !a.Equal(s.Args[i]) && !CanImplicitlyCoerce(a, s.Args[i]) {
			return false
		}
	}
	return true
}
