// Package ffi implements the "reflective type provider" spec.md §1/§9
// abstracts away: given a named external library reference, it returns
// type, field, and method descriptors by fully-qualified name. The
// teacher's own FFI layer (internal/interp/ffi_callback.go) bridges Go
// values into the scripting runtime with the standard reflect package; the
// same choice applies here, since the domain modeled — reflecting over an
// external library's public surface — has no closer analog in the
// retrieval pack than Go's own reflection (see DESIGN.md).
package ffi

import (
	"math"
	"reflect"
	"strings"

	"github.com/cwbudde/vc/internal/types"
)

// FieldDescriptor describes a public static field resolved on an external
// type.
type FieldDescriptor struct {
	Name string
	Type types.Type
}

// MethodDescriptor describes one overload of a public static method
// resolved on an external type.
type MethodDescriptor struct {
	Name       string
	ReturnType types.Type
	Params     []types.Type
}

// TypeDescriptor describes an external type's shape as far as the compiler
// models it: its name, public static fields, and public static methods
// (grouped by name, since a name may be overloaded).
type TypeDescriptor struct {
	Name    string
	Fields  map[string]FieldDescriptor
	Methods map[string][]MethodDescriptor
}

// Provider is the reflective capability GlobalScope consumes. It never
// needs to know how a library was actually loaded: a Registry-backed
// implementation is supplied for tests and the default standard library,
// and a host embedding this compiler could substitute another Provider for
// a real external-assembly story without touching internal/scope.
type Provider interface {
	// LookupType returns the descriptor for typeName within the named
	// library, searching only the given library (callers searching across
	// multiple references iterate and call once per library, matching
	// spec.md §4.4's "iterates each referenced library").
	LookupType(library, typeName string) (TypeDescriptor, bool)
}

// Registry is a Provider backed by Go values registered under a library
// name. It is the in-process stand-in for "a precompiled external
// library": RegisterType reflects over a Go value's exported methods and
// fields once, at registration time, and caches the resulting descriptor.
type Registry struct {
	libraries map[string]map[string]TypeDescriptor // library -> type name -> descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{libraries: make(map[string]map[string]TypeDescriptor)}
}

// RegisterType reflects over value (typically a pointer to a struct whose
// exported fields/methods should be visible to V programs as
// "TypeName.Member") and publishes it under library as typeName.
//
// Field types and method signatures that do not map onto the V type model
// (spec.md §3's five primitives and rectangular arrays) are recorded with
// types.UnsupportedType / omitted respectively, matching spec.md §4.4:
// "Unsupported parameter types on an external method cause that overload
// to be skipped."
func (r *Registry) RegisterType(library, typeName string, value any) {
	lib, ok := r.libraries[library]
	if !ok {
		lib = make(map[string]TypeDescriptor)
		r.libraries[library] = lib
	}

	desc := TypeDescriptor{
		Name:    typeName,
		Fields:  make(map[string]FieldDescriptor),
		Methods: make(map[string][]MethodDescriptor),
	}

	rv := reflect.ValueOf(value)
	rt := rv.Type()
	if rt.Kind() == reflect.Ptr {
		elem := rv.Elem()
		if elem.IsValid() && elem.Kind() == reflect.Struct {
			structType := elem.Type()
			for i := 0; i < structType.NumField(); i++ {
				f := structType.Field(i)
				if !f.IsExported() {
					continue
				}
				t, _ := goTypeToV(f.Type)
				desc.Fields[f.Name] = FieldDescriptor{Name: f.Name, Type: t}
			}
		}
	}

	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !m.IsExported() {
			continue
		}
		md, ok := methodDescriptor(m.Name, m.Func.Type(), true)
		if !ok {
			continue
		}
		desc.Methods[m.Name] = append(desc.Methods[m.Name], md)
	}

	lib[typeName] = desc
}

// methodDescriptor converts a Go method's reflected function type into a
// MethodDescriptor. hasReceiver strips the leading receiver parameter.
func methodDescriptor(name string, fn reflect.Type, hasReceiver bool) (MethodDescriptor, bool) {
	start := 0
	if hasReceiver {
		start = 1
	}
	if fn.NumOut() > 1 {
		return MethodDescriptor{}, false
	}
	var ret types.Type = types.VoidType
	if fn.NumOut() == 1 {
		t, ok := goTypeToV(fn.Out(0))
		if !ok {
			return MethodDescriptor{}, false
		}
		ret = t
	}
	params := make([]types.Type, 0, fn.NumIn()-start)
	for i := start; i < fn.NumIn(); i++ {
		t, ok := goTypeToV(fn.In(i))
		if !ok {
			// spec.md §4.4: unsupported parameter types skip the overload
			// entirely rather than recording it with an Unsupported slot.
			return MethodDescriptor{}, false
		}
		params = append(params, t)
	}
	return MethodDescriptor{Name: name, ReturnType: ret, Params: params}, true
}

// goTypeToV maps a reflected Go type onto the V type model, returning
// (UnsupportedType-equivalent false) when there is no sensible mapping.
func goTypeToV(t reflect.Type) (types.Type, bool) {
	switch t.Kind() {
	case reflect.Bool:
		return types.BoolType, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.IntType, true
	case reflect.Float32, reflect.Float64:
		return types.DoubleType, true
	case reflect.String:
		return types.StringType, true
	default:
		return types.UnsupportedType, false
	}
}

// LookupType implements Provider.
func (r *Registry) LookupType(library, typeName string) (TypeDescriptor, bool) {
	lib, ok := r.libraries[library]
	if !ok {
		return TypeDescriptor{}, false
	}
	desc, ok := lib[typeName]
	return desc, ok
}

// DefaultLibraryName is the always-implicitly-added standard-library
// reference spec.md §6 requires.
const DefaultLibraryName = "System"

// NewStandardLibrary returns a Registry pre-populated with the default
// standard-library reference: a small Math type exposing static fields and
// methods, enough to exercise the full external-resolution path
// end-to-end without requiring a host to register anything.
func NewStandardLibrary() *Registry {
	r := NewRegistry()
	r.RegisterType(DefaultLibraryName, "Math", &mathLibrary{Pi: math.Pi, E: math.E})
	r.RegisterType(DefaultLibraryName, "Str", &strLibrary{})
	return r
}

// mathLibrary backs the built-in "Math" external type.
type mathLibrary struct {
	Pi float64
	E  float64
}

func (m *mathLibrary) Sqrt(x float64) float64 { return math.Sqrt(x) }
func (m *mathLibrary) Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
func (m *mathLibrary) Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
func (m *mathLibrary) Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// strLibrary backs the built-in "Str" external type.
type strLibrary struct{}

func (s *strLibrary) Len(v string) int64       { return int64(len(v)) }
func (s *strLibrary) Upper(v string) string    { return strings.ToUpper(v) }
func (s *strLibrary) Lower(v string) string    { return strings.ToLower(v) }
func (s *strLibrary) Concat(a, b string) string { return a + b }
