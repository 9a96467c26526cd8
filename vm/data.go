package vm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Data holds the architecture's mutable state: registers, RAM, and the
// call/value stack. It provides uniform read/write via either a typed
// Operand or a raw address, with modular wraparound on RAM access.
type Data struct {
	Registers [NumRegisters]Word
	RAM       [RAMSize]Word
	Stack     []Word
}

// NewData returns a zeroed Data store: all registers and RAM at 0, an
// empty stack.
func NewData() *Data {
	return &Data{}
}

// Load decodes little-endian 16-bit words from binary into RAM
// starting at address 0, zeroing registers and the stack. Trailing
// RAM past the end of binary stays 0. It returns an error if binary
// has an odd length (an incomplete final word).
func (d *Data) Load(image []byte) error {
	if len(image)%2 != 0 {
		return fmt.Errorf("vm: binary has odd length %d (incomplete final word)", len(image))
	}

	for i := range d.RAM {
		d.RAM[i] = 0
	}
	for i := range d.Registers {
		d.Registers[i] = 0
	}
	d.Stack = d.Stack[:0]

	n := len(image) / 2
	if n > RAMSize {
		n = RAMSize
	}
	for i := 0; i < n; i++ {
		d.RAM[i] = Word(binary.LittleEndian.Uint16(image[i*2 : i*2+2]))
	}
	return nil
}

// LoadReader reads all of r and loads it as a binary image, see Load.
func (d *Data) LoadReader(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("vm: failed to read binary: %w", err)
	}
	return d.Load(raw)
}

// Val returns the value named by operand: the literal value itself,
// or the current contents of the named register.
func (d *Data) Val(o Operand) Word {
	if o.IsRegister() {
		return d.Registers[o.RegisterIndex()]
	}
	return o.Value
}

// Write stores val into the register named by dst. dst must be a
// register operand; per the architecture's dst:R rule, writing
// through a literal operand is an invariant violation, reported via
// the returned error so the caller (CPU.Step) can raise
// InstructionParseError rather than silently discarding the write.
func (d *Data) Write(dst Operand, val Word) error {
	if !dst.IsRegister() {
		return fmt.Errorf("vm: attempted to write through a literal operand %s", dst)
	}
	d.Registers[dst.RegisterIndex()] = val
	return nil
}

// ReadRAM reads the word at addr, wrapping modulo RAMSize.
func (d *Data) ReadRAM(addr Word) Word {
	return d.RAM[int(addr)%RAMSize]
}

// WriteRAM writes val to addr, wrapping modulo RAMSize.
func (d *Data) WriteRAM(addr Word, val Word) {
	d.RAM[int(addr)%RAMSize] = val
}

// Push appends val to the top of the stack.
func (d *Data) Push(val Word) {
	d.Stack = append(d.Stack, val)
}

// Pop removes and returns the most recently pushed value. The caller
// must check IsStackEmpty first; Pop panics on an empty stack so that
// the empty-stack case is always handled explicitly at the CPU level
// (where it becomes the PopOnEmptyStack status, not a Go panic
// reaching user code).
func (d *Data) Pop() Word {
	n := len(d.Stack)
	val := d.Stack[n-1]
	d.Stack = d.Stack[:n-1]
	return val
}

// IsStackEmpty reports whether the stack has no elements.
func (d *Data) IsStackEmpty() bool {
	return len(d.Stack) == 0
}

// Dump encodes the full RAM image as little-endian bytes, for the
// debugger's `dump` command.
func (d *Data) Dump() []byte {
	out := make([]byte, RAMSize*2)
	for i, w := range d.RAM {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(w))
	}
	return out
}
