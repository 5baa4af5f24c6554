package scope

import (
	"strings"

	"github.com/cwbudde/vc/internal/ffi"
	"github.com/cwbudde/vc/internal/types"
)

// Handle is an opaque metadata handle: a local/parameter slot index, a
// global field index, or a user-function index, depending on which scope
// issued it. The backend's declaration pass (spec.md §4.5) is the only
// consumer that interprets a Handle's numeric value; scopes themselves
// only ever compare or store it.
type Handle int

// VarEntry is what resolving a variable name yields: its storage Handle
// and its Type.
type VarEntry struct {
	Handle Handle
	Type   types.Type
}

// CallEntry is what resolving a call yields: its target Handle and full
// Signature (so the evaluator can wrap coercible arguments in synthetic
// casts against the resolved parameter types).
type CallEntry struct {
	Handle Handle
	Sig    types.Signature
}

// Scope is the common capability spec.md §9 describes: "a common scope
// capability whose methods dispatch by tag" rather than virtual dispatch
// across an inheritance hierarchy. GlobalScope, ProgramScope, and
// LocalScope all implement it; name resolution walks Parent() chains
// rather than a class hierarchy.
type Scope interface {
	ResolveVariable(parts []string) (VarEntry, bool)
	ResolveCall(parts []string, actual []types.Type) (CallEntry, error)
}

// GlobalScope resolves only fully-qualified names (Type.Member) against a
// reflective ffi.Provider, searching each referenced library in order and
// memoizing every successful lookup (spec.md §4.1/§4.4 "Caching").
type GlobalScope struct {
	Libraries []string
	Provider  ffi.Provider

	varCache  map[string]VarEntry
	callCache map[string]CallEntry
}

// NewGlobalScope creates a GlobalScope over the given library references
// and provider.
func NewGlobalScope(libraries []string, provider ffi.Provider) *GlobalScope {
	return &GlobalScope{
		Libraries: libraries,
		Provider:  provider,
		varCache:  make(map[string]VarEntry),
		callCache: make(map[string]CallEntry),
	}
}

// ResolveVariable resolves a dotted Type.Member reference to a public
// static field. Only two-part names are meaningful here; anything else
// fails to resolve (the caller, ProgramScope, is the one that handles bare
// names via its own global-variable table).
func (g *GlobalScope) ResolveVariable(parts []string) (VarEntry, bool) {
	if len(parts) != 2 {
		return VarEntry{}, false
	}
	key := strings.Join(parts, ".")
	if v, ok := g.varCache[key]; ok {
		return v, true
	}

	typeName, fieldName := parts[0], parts[1]
	for _, lib := range g.Libraries {
		desc, ok := g.Provider.LookupType(lib, typeName)
		if !ok {
			continue
		}
		field, ok := desc.Fields[fieldName]
		if !ok {
			continue
		}
		entry := VarEntry{Handle: Handle(len(g.varCache)), Type: field.Type}
		g.varCache[key] = entry
		return entry, true
	}
	return VarEntry{}, false
}

// ResolveCall resolves a dotted Type.Member call to one overload of a
// public static method via the §4.4 overload-resolution algorithm.
// Overloads whose parameter types the reflective provider could not model
// were already excluded when the type was registered (ffi.Registry skips
// them entirely), satisfying "Unsupported parameter types on an external
// method cause that overload to be skipped."
func (g *GlobalScope) ResolveCall(parts []string, actual []types.Type) (CallEntry, error) {
	if len(parts) != 2 {
		return CallEntry{}, &ResolutionError{Name: strings.Join(parts, ".")}
	}
	key := strings.Join(parts, ".") + signatureKey(actual)
	if c, ok := g.callCache[key]; ok {
		return c, nil
	}

	typeName, methodName := parts[0], parts[1]
	for _, lib := range g.Libraries {
		desc, ok := g.Provider.LookupType(lib, typeName)
		if !ok {
			continue
		}
		overloads, ok := desc.Methods[methodName]
		if !ok {
			continue
		}
		candidates := make([]types.Signature, len(overloads))
		for i, o := range overloads {
			candidates[i] = types.Signature{Name: methodName, ReturnType: o.ReturnType, Args: o.Params}
		}
		idx, err := ResolveOverload(methodName, candidates, actual)
		if err != nil {
			return CallEntry{}, err
		}
		entry := CallEntry{Handle: Handle(len(g.callCache)), Sig: candidates[idx]}
		g.callCache[key] = entry
		return entry, nil
	}
	return CallEntry{}, &ResolutionError{Name: strings.Join(parts, ".")}
}

func signatureKey(actual []types.Type) string {
	var sb strings.Builder
	for _, a := range actual {
		sb.WriteByte('|')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// ProgramScope holds the program's top-level function list and global
// variable list, delegating unresolved names to its parent GlobalScope.
type ProgramScope struct {
	Parent *GlobalScope

	functions []functionInfo
	globals   map[string]VarEntry
	nextSlot  Handle
}

type functionInfo struct {
	name string
	sig  types.Signature
}

// NewProgramScope creates a ProgramScope delegating to parent.
func NewProgramScope(parent *GlobalScope) *ProgramScope {
	return &ProgramScope{Parent: parent, globals: make(map[string]VarEntry)}
}

// DeclareFunction registers a user function's signature, returning the
// index used as its declaration Handle in the backend's declaration pass.
func (p *ProgramScope) DeclareFunction(name string, sig types.Signature) Handle {
	p.functions = append(p.functions, functionInfo{name: name, sig: sig})
	return Handle(len(p.functions) - 1)
}

// DeclareGlobal registers a program-level global variable, returning its
// storage Handle.
func (p *ProgramScope) DeclareGlobal(name string, typ types.Type) Handle {
	h := p.nextSlot
	p.nextSlot++
	p.globals[name] = VarEntry{Handle: h, Type: typ}
	return h
}

// Functions returns every declared user function's name and signature, in
// declaration order, for the backend's two-pass emission.
func (p *ProgramScope) Functions() []struct {
	Name string
	Sig  types.Signature
} {
	out := make([]struct {
		Name string
		Sig  types.Signature
	}, len(p.functions))
	for i, f := range p.functions {
		out[i] = struct {
			Name string
			Sig  types.Signature
		}{f.name, f.sig}
	}
	return out
}

// Globals returns every declared program-level global, keyed by name. Map
// iteration order is not defined; each VarEntry's Handle records its
// declaration order.
func (p *ProgramScope) Globals() map[string]VarEntry { return p.globals }

// ResolveVariable resolves a bare global-variable name, or delegates a
// dotted name straight to the parent GlobalScope.
func (p *ProgramScope) ResolveVariable(parts []string) (VarEntry, bool) {
	if len(parts) == 1 {
		if v, ok := p.globals[parts[0]]; ok {
			return v, true
		}
	}
	if p.Parent != nil {
		return p.Parent.ResolveVariable(parts)
	}
	return VarEntry{}, false
}

// ResolveCall resolves a user-function call by name via §4.4's overload
// algorithm over same-name user functions, or delegates a dotted name to
// the parent GlobalScope.
func (p *ProgramScope) ResolveCall(parts []string, actual []types.Type) (CallEntry, error) {
	if len(parts) == 1 {
		name := parts[0]
		var candidates []types.Signature
		var handles []Handle
		for i, f := range p.functions {
			if f.name != name {
				continue
			}
			if len(f.sig.Args) != len(actual) {
				continue
			}
			candidates = append(candidates, f.sig)
			handles = append(handles, Handle(i))
		}
		if len(candidates) > 0 {
			idx, err := ResolveOverload(name, candidates, actual)
			if err != nil {
				return CallEntry{}, err
			}
			return CallEntry{Handle: handles[idx], Sig: candidates[idx]}, nil
		}
	}
	if p.Parent != nil {
		return p.Parent.ResolveCall(parts, actual)
	}
	return CallEntry{}, &ResolutionError{Name: strings.Join(parts, ".")}
}

// LocalScope holds the parameters and locals of one function body, plus
// its declared return type, delegating unresolved variable lookups to its
// ProgramScope parent (spec.md §3 "Scope").
type LocalScope struct {
	Parent     *ProgramScope
	ReturnType types.Type

	vars     map[string]VarEntry
	order    []string
	nextSlot Handle
}

// NewLocalScope creates a LocalScope for a function returning returnType.
func NewLocalScope(parent *ProgramScope, returnType types.Type) *LocalScope {
	return &LocalScope{Parent: parent, ReturnType: returnType, vars: make(map[string]VarEntry)}
}

// Declare adds a parameter or local variable, returning its slot Handle.
// Parameters and locals share one slot space in declaration order, which
// the backend's code emitter (spec.md §4.5) lays out as Ldarg vs Ldloc by
// comparing the slot against the parameter count.
func (l *LocalScope) Declare(name string, typ types.Type) Handle {
	h := l.nextSlot
	l.nextSlot++
	l.vars[name] = VarEntry{Handle: h, Type: typ}
	l.order = append(l.order, name)
	return h
}

// Count returns the number of declared parameters+locals.
func (l *LocalScope) Count() int { return len(l.order) }

// NameAt returns the name declared at slot index i, in declaration order.
func (l *LocalScope) NameAt(i int) string { return l.order[i] }

// ResolveVariable resolves a local/parameter by bare name, or delegates to
// the enclosing ProgramScope (and, transitively, GlobalScope).
func (l *LocalScope) ResolveVariable(parts []string) (VarEntry, bool) {
	if len(parts) == 1 {
		if v, ok := l.vars[parts[0]]; ok {
			return v, true
		}
	}
	if l.Parent != nil {
		return l.Parent.ResolveVariable(parts)
	}
	return VarEntry{}, false
}

// ResolveCall delegates every call through to ProgramScope: V has no
// nested function declarations, so a LocalScope never owns call
// candidates itself.
func (l *LocalScope) ResolveCall(parts []string, actual []types.Type) (CallEntry, error) {
	if l.Parent != nil {
		return l.Parent.ResolveCall(parts, actual)
	}
	return CallEntry{}, &ResolutionError{Name: strings.Join(parts, ".")}
}
