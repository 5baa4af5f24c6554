package ffi

import (
	"testing"

	"github.com/cwbudde/vc/internal/types"
)

type sampleLib struct {
	Pi float64
	Hidden float64
}

func (s *sampleLib) Add(a, b int64) int64 { return a + b }
func (s *sampleLib) unexported() int64    { return 0 }

// weirdLib has a method whose parameter type has no V equivalent, which
// must skip the overload entirely rather than recording it with an
// Unsupported slot (spec.md §4.4).
type weirdLib struct{}

func (w *weirdLib) Handle(ch chan int) int64 { return 0 }
func (w *weirdLib) Ok(a int64) int64         { return a }

func TestRegisterTypeExposesExportedFieldsAndMethods(t *testing.T) {
	r := NewRegistry()
	r.RegisterType("Lib", "Sample", &sampleLib{Pi: 3.14})

	desc, ok := r.LookupType("Lib", "Sample")
	if !ok {
		t.Fatal("LookupType() ok = false, want true")
	}

	field, ok := desc.Fields["Pi"]
	if !ok || !field.Type.Equal(types.DoubleType) {
		t.Errorf("Fields[Pi] = %+v, ok=%v, want DoubleType field", field, ok)
	}

	overloads, ok := desc.Methods["Add"]
	if !ok || len(overloads) != 1 {
		t.Fatalf("Methods[Add] = %+v, ok=%v, want one overload", overloads, ok)
	}
	if !overloads[0].ReturnType.Equal(types.IntType) {
		t.Errorf("Add ReturnType = %v, want IntType", overloads[0].ReturnType)
	}
	if len(overloads[0].Params) != 2 || !overloads[0].Params[0].Equal(types.IntType) {
		t.Errorf("Add Params = %+v, want two IntType params", overloads[0].Params)
	}

	if _, ok := desc.Methods["unexported"]; ok {
		t.Error("unexported method must not be registered")
	}
}

func TestRegisterTypeSkipsUnsupportedParameterOverload(t *testing.T) {
	r := NewRegistry()
	r.RegisterType("Lib", "Weird", &weirdLib{})

	desc, ok := r.LookupType("Lib", "Weird")
	if !ok {
		t.Fatal("LookupType() ok = false, want true")
	}

	if _, ok := desc.Methods["Handle"]; ok {
		t.Error("Handle (chan parameter) should have been skipped entirely")
	}
	if _, ok := desc.Methods["Ok"]; !ok {
		t.Error("Ok (int64 parameter) should still be registered")
	}
}

func TestLookupTypeUnknownLibraryOrType(t *testing.T) {
	r := NewRegistry()
	r.RegisterType("Lib", "Sample", &sampleLib{})

	if _, ok := r.LookupType("Other", "Sample"); ok {
		t.Error("LookupType() on unregistered library ok = true, want false")
	}
	if _, ok := r.LookupType("Lib", "Missing"); ok {
		t.Error("LookupType() on unregistered type ok = true, want false")
	}
}

func TestStandardLibraryExposesMathAndStr(t *testing.T) {
	r := NewStandardLibrary()

	math, ok := r.LookupType(DefaultLibraryName, "Math")
	if !ok {
		t.Fatal("Math not found in standard library")
	}
	if _, ok := math.Fields["Pi"]; !ok {
		t.Error("Math.Pi field not registered")
	}
	if _, ok := math.Methods["Sqrt"]; !ok {
		t.Error("Math.Sqrt method not registered")
	}

	str, ok := r.LookupType(DefaultLibraryName, "Str")
	if !ok {
		t.Fatal("Str not found in standard library")
	}
	if _, ok := str.Methods["Upper"]; !ok {
		t.Error("Str.Upper method not registered")
	}
}
