package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cwbudde/vc/internal/types"
)

// Container file format
// =====================
//
// Header (8 bytes):
//   - Magic number: "VCC\x00" (4 bytes)
//   - Version major/minor/patch: uint8 each (3 bytes)
//   - Reserved: uint8 (1 byte)
//
// Body:
//   - Program name: length-prefixed string
//   - Entry point name: length-prefixed string
//   - Globals: count (uint32) + name/type pairs
//   - GlobalInit: presence flag (uint8) + Chunk, if present
//   - Functions: count (uint32) + Chunk per entry
//
// Grounded on the teacher's internal/bytecode/serializer.go: the same
// fixed magic+version header followed by length-prefixed sections, using
// encoding/binary little-endian framing throughout.
const (
	magicNumber = "VCC\x00"

	versionMajor = 1
	versionMinor = 0
	versionPatch = 0
)

// Serializer (de)serializes a Container to/from the wire format above.
type Serializer struct{}

// NewSerializer creates a Serializer for the current format version.
func NewSerializer() *Serializer { return &Serializer{} }

// Serialize encodes container into the binary container format.
func (s *Serializer) Serialize(c *Container) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("bytecode: cannot serialize a nil container")
	}

	buf := new(bytes.Buffer)
	if err := s.writeHeader(buf); err != nil {
		return nil, err
	}
	if err := writeString(buf, c.Name); err != nil {
		return nil, err
	}
	if err := writeString(buf, c.EntryPoint); err != nil {
		return nil, err
	}
	if err := s.writeGlobals(buf, c.Globals); err != nil {
		return nil, err
	}

	hasInit := c.GlobalInit != nil
	if err := binary.Write(buf, binary.LittleEndian, boolByte(hasInit)); err != nil {
		return nil, err
	}
	if hasInit {
		if err := s.writeChunk(buf, c.GlobalInit); err != nil {
			return nil, fmt.Errorf("bytecode: writing global initializer: %w", err)
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(c.Functions))); err != nil {
		return nil, err
	}
	for _, fn := range c.Functions {
		if err := s.writeChunk(buf, fn); err != nil {
			return nil, fmt.Errorf("bytecode: writing function %q: %w", fn.Name, err)
		}
	}

	return buf.Bytes(), nil
}

// Deserialize decodes a Container previously produced by Serialize.
func (s *Serializer) Deserialize(data []byte) (*Container, error) {
	r := bytes.NewReader(data)
	if err := s.readHeader(r); err != nil {
		return nil, err
	}

	name, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading program name: %w", err)
	}
	entry, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: reading entry point: %w", err)
	}

	c := NewContainer(name)
	c.EntryPoint = entry

	c.Globals, err = s.readGlobals(r)
	if err != nil {
		return nil, err
	}

	var hasInit uint8
	if err := binary.Read(r, binary.LittleEndian, &hasInit); err != nil {
		return nil, fmt.Errorf("bytecode: reading global-init flag: %w", err)
	}
	if hasInit != 0 {
		c.GlobalInit, err = s.readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading global initializer: %w", err)
		}
	}

	var fnCount uint32
	if err := binary.Read(r, binary.LittleEndian, &fnCount); err != nil {
		return nil, fmt.Errorf("bytecode: reading function count: %w", err)
	}
	c.Functions = make([]*Chunk, fnCount)
	for i := range c.Functions {
		c.Functions[i], err = s.readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading function %d: %w", i, err)
		}
	}

	return c, nil
}

func (s *Serializer) writeHeader(w io.Writer) error {
	if _, err := w.Write([]byte(magicNumber)); err != nil {
		return err
	}
	for _, b := range []uint8{versionMajor, versionMinor, versionPatch, 0} {
		if err := binary.Write(w, binary.LittleEndian, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) readHeader(r io.Reader) error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("bytecode: reading magic number: %w", err)
	}
	if string(magic) != magicNumber {
		return fmt.Errorf("bytecode: bad magic number: expected %q, got %q", magicNumber, magic)
	}
	var major, minor, patch, reserved uint8
	for _, p := range []*uint8{&major, &minor, &patch, &reserved} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return fmt.Errorf("bytecode: reading version: %w", err)
		}
	}
	if major != versionMajor {
		return fmt.Errorf("bytecode: incompatible container version %d.%d.%d", major, minor, patch)
	}
	return nil
}

func (s *Serializer) writeGlobals(w io.Writer, globals []GlobalField) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(globals))); err != nil {
		return err
	}
	for _, g := range globals {
		if err := writeString(w, g.Name); err != nil {
			return err
		}
		if err := writeType(w, g.Type); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) readGlobals(r io.Reader) ([]GlobalField, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("bytecode: reading global count: %w", err)
	}
	globals := make([]GlobalField, count)
	for i := range globals {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading global %d name: %w", i, err)
		}
		typ, err := readType(r)
		if err != nil {
			return nil, fmt.Errorf("bytecode: reading global %d type: %w", i, err)
		}
		globals[i] = GlobalField{Name: name, Type: typ}
	}
	return globals, nil
}

func (s *Serializer) writeChunk(w io.Writer, c *Chunk) error {
	if err := writeString(w, c.Name); err != nil {
		return err
	}
	if err := writeTypeSlice(w, c.Params); err != nil {
		return err
	}
	if err := writeType(w, c.ReturnType); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(c.LocalCount)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(c.Code))); err != nil {
		return err
	}
	for _, in := range c.Code {
		if err := writeInstruction(w, in); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) readChunk(r io.Reader) (*Chunk, error) {
	name, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("reading name: %w", err)
	}
	params, err := readTypeSlice(r)
	if err != nil {
		return nil, fmt.Errorf("reading params: %w", err)
	}
	retType, err := readType(r)
	if err != nil {
		return nil, fmt.Errorf("reading return type: %w", err)
	}
	var localCount, codeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &localCount); err != nil {
		return nil, fmt.Errorf("reading local count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return nil, fmt.Errorf("reading code length: %w", err)
	}

	c := NewChunk(name, params, retType)
	c.LocalCount = int(localCount)
	c.Code = make([]Instruction, codeLen)
	for i := range c.Code {
		in, err := readInstruction(r)
		if err != nil {
			return nil, fmt.Errorf("reading instruction %d: %w", i, err)
		}
		c.Code[i] = in
	}
	return c, nil
}

func writeInstruction(w io.Writer, in Instruction) error {
	if err := binary.Write(w, binary.LittleEndian, in.Op); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.Int); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.Double); err != nil {
		return err
	}
	if err := writeString(w, in.Str); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, int32(in.Line))
}

func readInstruction(r io.Reader) (Instruction, error) {
	var in Instruction
	if err := binary.Read(r, binary.LittleEndian, &in.Op); err != nil {
		return in, err
	}
	if err := binary.Read(r, binary.LittleEndian, &in.Int); err != nil {
		return in, err
	}
	if err := binary.Read(r, binary.LittleEndian, &in.Double); err != nil {
		return in, err
	}
	str, err := readString(r)
	if err != nil {
		return in, err
	}
	in.Str = str
	var line int32
	if err := binary.Read(r, binary.LittleEndian, &line); err != nil {
		return in, err
	}
	in.Line = int(line)
	return in, nil
}

func writeString(w io.Writer, str string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(str))); err != nil {
		return err
	}
	if len(str) == 0 {
		return nil
	}
	_, err := w.Write([]byte(str))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Type encoding: one byte kind tag, then (for Array only) element kind,
// rank, and per-dimension sizes.
const (
	typeTagBool uint8 = iota
	typeTagInt
	typeTagDouble
	typeTagString
	typeTagVoid
	typeTagArray
)

func writeType(w io.Writer, t types.Type) error {
	switch v := t.(type) {
	case types.Primitive:
		tag, err := primitiveTag(v)
		if err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, tag)
	case types.Array:
		if err := binary.Write(w, binary.LittleEndian, typeTagArray); err != nil {
			return err
		}
		elemTag, err := primitiveTag(v.Element)
		if err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, elemTag); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(v.Dimensions)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(v.Sizes))); err != nil {
			return err
		}
		for _, sz := range v.Sizes {
			if err := binary.Write(w, binary.LittleEndian, int32(sz)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("bytecode: unknown type %T", t)
	}
}

func readType(r io.Reader) (types.Type, error) {
	var tag uint8
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}
	if tag != typeTagArray {
		return tagToPrimitive(tag)
	}

	var elemTag uint8
	if err := binary.Read(r, binary.LittleEndian, &elemTag); err != nil {
		return nil, err
	}
	elem, err := tagToPrimitive(elemTag)
	if err != nil {
		return nil, err
	}
	var dims, sizeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &sizeCount); err != nil {
		return nil, err
	}
	sizes := make([]int, sizeCount)
	for i := range sizes {
		var sz int32
		if err := binary.Read(r, binary.LittleEndian, &sz); err != nil {
			return nil, err
		}
		sizes[i] = int(sz)
	}
	return types.Array{Element: elem, Dimensions: int(dims), Sizes: sizes}, nil
}

func primitiveTag(p types.Primitive) (uint8, error) {
	switch p.Kind {
	case types.Bool:
		return typeTagBool, nil
	case types.Int:
		return typeTagInt, nil
	case types.Double:
		return typeTagDouble, nil
	case types.String:
		return typeTagString, nil
	case types.Void:
		return typeTagVoid, nil
	default:
		return 0, fmt.Errorf("bytecode: cannot serialize type %s", p)
	}
}

func tagToPrimitive(tag uint8) (types.Primitive, error) {
	switch tag {
	case typeTagBool:
		return types.BoolType, nil
	case typeTagInt:
		return types.IntType, nil
	case typeTagDouble:
		return types.DoubleType, nil
	case typeTagString:
		return types.StringType, nil
	case typeTagVoid:
		return types.VoidType, nil
	default:
		return types.Primitive{}, fmt.Errorf("bytecode: unknown type tag %d", tag)
	}
}

func writeTypeSlice(w io.Writer, ts []types.Type) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ts))); err != nil {
		return err
	}
	for _, t := range ts {
		if err := writeType(w, t); err != nil {
			return err
		}
	}
	return nil
}

func readTypeSlice(r io.Reader) ([]types.Type, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	ts := make([]types.Type, n)
	for i := range ts {
		t, err := readType(r)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
