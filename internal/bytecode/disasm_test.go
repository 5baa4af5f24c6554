package bytecode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/vc/internal/bytecode"
	"github.com/cwbudde/vc/internal/types"
)

func TestDisassembleChunkFormatsOffsetsAndOperands(t *testing.T) {
	c := bytecode.NewChunk("add", []types.Type{types.IntType, types.IntType}, types.IntType)
	c.EmitInt(bytecode.Ldarg, 0, 3)
	c.EmitInt(bytecode.Ldarg, 1, 3)
	c.Emit(bytecode.Add, 3)
	c.Emit(bytecode.Ret, 3)

	var buf bytes.Buffer
	if err := bytecode.NewDisassembler(&buf).DisassembleChunk(c); err != nil {
		t.Fatalf("DisassembleChunk() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "-- add --") {
		t.Errorf("output missing chunk header: %q", out)
	}
	if !strings.Contains(out, "Ldarg      0") {
		t.Errorf("output missing first Ldarg: %q", out)
	}
	if !strings.Contains(out, "   |") {
		t.Errorf("output missing repeated-line continuation marker: %q", out)
	}
}

func TestDisassembleContainerListsGlobalsAndFunctions(t *testing.T) {
	c := bytecode.NewContainer("Demo")
	c.Globals = []bytecode.GlobalField{{Name: "x", Type: types.IntType}}

	fn := bytecode.NewChunk("Main", nil, types.VoidType)
	fn.Emit(bytecode.Ret, 1)
	c.Functions = append(c.Functions, fn)

	var buf bytes.Buffer
	if err := bytecode.NewDisassembler(&buf).Disassemble(c); err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"== Demo ==", "entry point: Main", "int x", "-- Main --"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
