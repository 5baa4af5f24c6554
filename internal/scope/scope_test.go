package scope

import (
	"testing"

	"github.com/cwbudde/vc/internal/ffi"
	"github.com/cwbudde/vc/internal/types"
)

func newTestGlobal() *GlobalScope {
	r := ffi.NewRegistry()
	r.RegisterType("Lib", "Math", &struct {
		Pi float64
	}{Pi: 3.14})
	return NewGlobalScope([]string{"Lib"}, r)
}

func TestGlobalScopeResolveVariableRequiresTwoParts(t *testing.T) {
	g := newTestGlobal()
	if _, ok := g.ResolveVariable([]string{"Pi"}); ok {
		t.Error("bare name should not resolve against GlobalScope")
	}
	entry, ok := g.ResolveVariable([]string{"Math", "Pi"})
	if !ok {
		t.Fatal("Math.Pi should resolve")
	}
	if !entry.Type.Equal(types.DoubleType) {
		t.Errorf("Type = %v, want DoubleType", entry.Type)
	}
}

func TestGlobalScopeResolveVariableCaches(t *testing.T) {
	g := newTestGlobal()
	first, _ := g.ResolveVariable([]string{"Math", "Pi"})
	second, _ := g.ResolveVariable([]string{"Math", "Pi"})
	if first.Handle != second.Handle {
		t.Errorf("Handle changed across calls: %v != %v, want memoized", first.Handle, second.Handle)
	}
}

func TestProgramScopeResolvesBareGlobalThenDelegates(t *testing.T) {
	g := newTestGlobal()
	p := NewProgramScope(g)
	p.DeclareGlobal("x", types.IntType)

	entry, ok := p.ResolveVariable([]string{"x"})
	if !ok || !entry.Type.Equal(types.IntType) {
		t.Fatalf("ResolveVariable(x) = %+v, ok=%v", entry, ok)
	}

	if _, ok := p.ResolveVariable([]string{"Math", "Pi"}); !ok {
		t.Error("ProgramScope should delegate a dotted name to its parent GlobalScope")
	}
}

func TestProgramScopeDeclareFunctionHandlesAreSequential(t *testing.T) {
	p := NewProgramScope(nil)
	sig := types.Signature{Name: "f", ReturnType: types.VoidType}
	h0 := p.DeclareFunction("f", sig)
	h1 := p.DeclareFunction("g", sig)
	if h0 != 0 || h1 != 1 {
		t.Errorf("handles = %v, %v, want 0, 1", h0, h1)
	}
}

func TestProgramScopeResolveCallPicksOverloadByArity(t *testing.T) {
	p := NewProgramScope(nil)
	p.DeclareFunction("f", types.Signature{Name: "f", ReturnType: types.IntType, Args: []types.Type{types.IntType}})
	p.DeclareFunction("f", types.Signature{Name: "f", ReturnType: types.DoubleType, Args: []types.Type{types.IntType, types.IntType}})

	entry, err := p.ResolveCall([]string{"f"}, []types.Type{types.IntType})
	if err != nil {
		t.Fatalf("ResolveCall(1 arg) error = %v", err)
	}
	if !entry.Sig.ReturnType.Equal(types.IntType) {
		t.Errorf("ResolveCall(1 arg) picked return type %v, want IntType", entry.Sig.ReturnType)
	}

	entry, err = p.ResolveCall([]string{"f"}, []types.Type{types.IntType, types.IntType})
	if err != nil {
		t.Fatalf("ResolveCall(2 args) error = %v", err)
	}
	if !entry.Sig.ReturnType.Equal(types.DoubleType) {
		t.Errorf("ResolveCall(2 args) picked return type %v, want DoubleType", entry.Sig.ReturnType)
	}
}

func TestProgramScopeResolveCallUnresolvedWhenNoArityMatches(t *testing.T) {
	p := NewProgramScope(nil)
	p.DeclareFunction("f", types.Signature{Name: "f", ReturnType: types.VoidType, Args: []types.Type{types.IntType}})

	if _, err := p.ResolveCall([]string{"f"}, nil); err == nil {
		t.Error("ResolveCall() with no arity match: error = nil, want a ResolutionError")
	}
}

func TestProgramScopeResolveCallIsCaseSensitive(t *testing.T) {
	p := NewProgramScope(nil)
	p.DeclareFunction("Foo", types.Signature{Name: "Foo", ReturnType: types.VoidType, Args: []types.Type{types.IntType}})

	if _, err := p.ResolveCall([]string{"foo"}, []types.Type{types.IntType}); err == nil {
		t.Error("ResolveCall(foo) matched declaration Foo: error = nil, want a ResolutionError — identifiers are case-sensitive")
	}
	if _, err := p.ResolveCall([]string{"Foo"}, []types.Type{types.IntType}); err != nil {
		t.Errorf("ResolveCall(Foo) error = %v, want exact-case match to resolve", err)
	}
}

func TestLocalScopeSlotsShareArgsAndLocalsInDeclarationOrder(t *testing.T) {
	p := NewProgramScope(nil)
	l := NewLocalScope(p, types.IntType)

	l.Declare("a", types.IntType)
	l.Declare("b", types.IntType)
	l.Declare("sum", types.IntType)

	if l.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", l.Count())
	}
	for i, want := range []string{"a", "b", "sum"} {
		if got := l.NameAt(i); got != want {
			t.Errorf("NameAt(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestLocalScopeResolveVariableDelegatesToProgramScope(t *testing.T) {
	g := newTestGlobal()
	p := NewProgramScope(g)
	p.DeclareGlobal("total", types.IntType)
	l := NewLocalScope(p, types.VoidType)
	l.Declare("x", types.IntType)

	if _, ok := l.ResolveVariable([]string{"x"}); !ok {
		t.Error("local x should resolve directly")
	}
	if _, ok := l.ResolveVariable([]string{"total"}); !ok {
		t.Error("bare global should delegate to ProgramScope")
	}
	if _, ok := l.ResolveVariable([]string{"Math", "Pi"}); !ok {
		t.Error("dotted external name should delegate through to GlobalScope")
	}
}

func TestLocalScopeResolveCallAlwaysDelegates(t *testing.T) {
	p := NewProgramScope(nil)
	p.DeclareFunction("f", types.Signature{Name: "f", ReturnType: types.VoidType})
	l := NewLocalScope(p, types.VoidType)

	if _, err := l.ResolveCall([]string{"f"}, nil); err != nil {
		t.Errorf("ResolveCall() error = %v, want nil (delegated resolution succeeds)", err)
	}
}

func TestResolveOverloadAmbiguousWhenNeitherCandidateDominates(t *testing.T) {
	candidates := []types.Signature{
		{Name: "f", Args: []types.Type{types.IntType, types.DoubleType}},
		{Name: "f", Args: []types.Type{types.DoubleType, types.IntType}},
	}
	actual := []types.Type{types.IntType, types.IntType}

	_, err := ResolveOverload("f", candidates, actual)
	if err == nil {
		t.Fatal("ResolveOverload() error = nil, want ambiguous ResolutionError")
	}
	resErr, ok := err.(*ResolutionError)
	if !ok || !resErr.Ambiguous {
		t.Errorf("error = %+v, want Ambiguous ResolutionError", err)
	}
}

func TestResolveOverloadExactMatchWinsImmediately(t *testing.T) {
	candidates := []types.Signature{
		{Name: "f", Args: []types.Type{types.DoubleType}},
		{Name: "f", Args: []types.Type{types.IntType}},
	}
	actual := []types.Type{types.IntType}

	idx, err := ResolveOverload("f", candidates, actual)
	if err != nil {
		t.Fatalf("ResolveOverload() error = %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (the exact Int match)", idx)
	}
}

func TestResolveOverloadUnresolvedWhenNoneCompatible(t *testing.T) {
	candidates := []types.Signature{
		{Name: "f", Args: []types.Type{types.StringType}},
	}
	actual := []types.Type{types.IntType}

	_, err := ResolveOverload("f", candidates, actual)
	if err == nil {
		t.Fatal("ResolveOverload() error = nil, want unresolved ResolutionError")
	}
	resErr, ok := err.(*ResolutionError)
	if !ok || resErr.Ambiguous {
		t.Errorf("error = %+v, want non-Ambiguous ResolutionError", err)
	}
}
