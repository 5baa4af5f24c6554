package bytecode

import "github.com/cwbudde/vc/internal/types"

// GlobalField is one field of the program's global holder type (spec.md
// §4.5 "a single static holder type with one public static field per
// variable").
type GlobalField struct {
	Name string
	Type types.Type
}

// Container is the whole compiled artifact: the teacher's equivalent is
// the .dwc chunk-plus-header file (serializer.go); ours additionally
// carries the global-holder shape and the function table the declaration
// pass builds before any code is emitted (spec.md §4.5).
type Container struct {
	// Name is the program's identifier; the CLI persists the artifact as
	// "<Name>.exe" (spec.md §6).
	Name string

	Globals []GlobalField

	// GlobalInit is the static initializer that instantiates any
	// array-typed global field (spec.md §4.5 "declaration"); nil if no
	// global needs instantiation.
	GlobalInit *Chunk

	// Functions holds one Chunk per user function plus the synthetic
	// Main, in declaration order. Functions[i] corresponds to the
	// scope.Handle value i assigned by ProgramScope.DeclareFunction.
	Functions []*Chunk

	// EntryPoint names the Chunk serving as the program's entry point,
	// always "Main" (spec.md §4.5 "set the program entry point to the
	// synthetic Main function").
	EntryPoint string
}

// NewContainer creates an empty Container named after the program.
func NewContainer(name string) *Container {
	return &Container{Name: name, EntryPoint: "Main"}
}

// FunctionByName returns the Chunk named name, or nil if none matches;
// used by the disassembler and tests to look a function up without
// knowing its declaration index.
func (c *Container) FunctionByName(name string) *Chunk {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
