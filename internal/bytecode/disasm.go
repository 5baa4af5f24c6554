package bytecode

import (
	"fmt"
	"io"
)

// Disassembler prints a human-readable dump of a Container, grounded on
// the teacher's internal/bytecode/disasm.go: a "== name ==" header per
// chunk followed by one line per instruction, offset and source line
// first.
type Disassembler struct {
	w io.Writer
}

// NewDisassembler creates a Disassembler writing to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w}
}

// Disassemble dumps every chunk in c: the global initializer (if any)
// first, then every function in declaration order.
func (d *Disassembler) Disassemble(c *Container) error {
	fmt.Fprintf(d.w, "== %s ==\n", c.Name)
	fmt.Fprintf(d.w, "entry point: %s\n", c.EntryPoint)

	if len(c.Globals) > 0 {
		fmt.Fprintln(d.w, "globals:")
		for _, g := range c.Globals {
			fmt.Fprintf(d.w, "  %s %s\n", g.Type, g.Name)
		}
	}

	if c.GlobalInit != nil {
		fmt.Fprintln(d.w)
		if err := d.DisassembleChunk(c.GlobalInit); err != nil {
			return err
		}
	}

	for _, fn := range c.Functions {
		fmt.Fprintln(d.w)
		if err := d.DisassembleChunk(fn); err != nil {
			return err
		}
	}

	return nil
}

// DisassembleChunk dumps a single chunk's instructions.
func (d *Disassembler) DisassembleChunk(c *Chunk) error {
	fmt.Fprintf(d.w, "-- %s --\n", c.Name)
	lastLine := -1
	for offset := range c.Code {
		line, err := d.DisassembleInstruction(c, offset, lastLine)
		if err != nil {
			return err
		}
		lastLine = line
	}
	return nil
}

// DisassembleInstruction prints c.Code[offset] and returns its line
// number so the caller can suppress a repeated line prefix on the next
// call, matching the teacher's "|" continuation-line convention.
func (d *Disassembler) DisassembleInstruction(c *Chunk, offset int, lastLine int) (int, error) {
	in := c.Code[offset]

	linePrefix := fmt.Sprintf("%4d", in.Line)
	if in.Line == lastLine {
		linePrefix = "   |"
	}

	_, err := fmt.Fprintf(d.w, "%04d %s %s\n", offset, linePrefix, in.String())
	return in.Line, err
}
