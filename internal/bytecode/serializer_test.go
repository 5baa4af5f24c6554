package bytecode

import (
	"bytes"
	"testing"

	"github.com/cwbudde/vc/internal/types"
)

func sampleContainer() *Container {
	c := NewContainer("Sample")
	c.Globals = []GlobalField{
		{Name: "total", Type: types.IntType},
		{Name: "grid", Type: types.Array{Element: types.IntType, Dimensions: 2, Sizes: []int{3, 3}}},
	}

	ginit := NewChunk("Sample.cctor", nil, types.VoidType)
	ginit.EmitConstInt(3, 1)
	ginit.EmitConstInt(3, 1)
	ginit.EmitNewobj("int[]", 2, 1)
	ginit.EmitStr(Stsfld, "grid", 1)
	c.GlobalInit = ginit

	add := NewChunk("add", []types.Type{types.IntType, types.IntType}, types.IntType)
	add.LocalCount = 2
	add.EmitInt(Ldarg, 0, 3)
	add.EmitInt(Ldarg, 1, 3)
	add.Emit(Add, 3)
	add.Emit(Ret, 3)
	c.Functions = append(c.Functions, add)

	main := NewChunk("Main", nil, types.VoidType)
	main.EmitConstInt(1, 5)
	main.EmitStr(Stsfld, "total", 5)
	main.Emit(Ret, 5)
	c.Functions = append(c.Functions, main)

	return c
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	original := sampleContainer()

	data, err := NewSerializer().Serialize(original)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	got, err := NewSerializer().Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}

	if got.Name != original.Name {
		t.Errorf("Name = %q, want %q", got.Name, original.Name)
	}
	if got.EntryPoint != original.EntryPoint {
		t.Errorf("EntryPoint = %q, want %q", got.EntryPoint, original.EntryPoint)
	}
	if len(got.Globals) != len(original.Globals) {
		t.Fatalf("len(Globals) = %d, want %d", len(got.Globals), len(original.Globals))
	}
	for i, g := range original.Globals {
		if got.Globals[i].Name != g.Name || !got.Globals[i].Type.Equal(g.Type) {
			t.Errorf("Globals[%d] = %+v, want %+v", i, got.Globals[i], g)
		}
	}

	if got.GlobalInit == nil {
		t.Fatal("GlobalInit is nil after round-trip")
	}
	assertSameChunk(t, "GlobalInit", got.GlobalInit, original.GlobalInit)

	if len(got.Functions) != len(original.Functions) {
		t.Fatalf("len(Functions) = %d, want %d", len(got.Functions), len(original.Functions))
	}
	for i := range original.Functions {
		assertSameChunk(t, original.Functions[i].Name, got.Functions[i], original.Functions[i])
	}
}

func assertSameChunk(t *testing.T, label string, got, want *Chunk) {
	t.Helper()
	if got.Name != want.Name {
		t.Errorf("%s: Name = %q, want %q", label, got.Name, want.Name)
	}
	if got.LocalCount != want.LocalCount {
		t.Errorf("%s: LocalCount = %d, want %d", label, got.LocalCount, want.LocalCount)
	}
	if !got.ReturnType.Equal(want.ReturnType) {
		t.Errorf("%s: ReturnType = %v, want %v", label, got.ReturnType, want.ReturnType)
	}
	if len(got.Params) != len(want.Params) {
		t.Fatalf("%s: len(Params) = %d, want %d", label, len(got.Params), len(want.Params))
	}
	for i := range want.Params {
		if !got.Params[i].Equal(want.Params[i]) {
			t.Errorf("%s: Params[%d] = %v, want %v", label, i, got.Params[i], want.Params[i])
		}
	}
	if len(got.Code) != len(want.Code) {
		t.Fatalf("%s: len(Code) = %d, want %d", label, len(got.Code), len(want.Code))
	}
	for i := range want.Code {
		if got.Code[i] != want.Code[i] {
			t.Errorf("%s: Code[%d] = %+v, want %+v", label, i, got.Code[i], want.Code[i])
		}
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	data, err := NewSerializer().Serialize(sampleContainer())
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	corrupt := bytes.Clone(data)
	corrupt[0] = 'X'

	if _, err := NewSerializer().Deserialize(corrupt); err == nil {
		t.Error("Deserialize() with bad magic number: error = nil, want non-nil")
	}
}

func TestDeserializeRejectsIncompatibleMajorVersion(t *testing.T) {
	data, err := NewSerializer().Serialize(sampleContainer())
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	corrupt := bytes.Clone(data)
	corrupt[4] = versionMajor + 1

	if _, err := NewSerializer().Deserialize(corrupt); err == nil {
		t.Error("Deserialize() with incompatible major version: error = nil, want non-nil")
	}
}
