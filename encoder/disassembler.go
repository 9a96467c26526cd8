// Package encoder turns decoded CPU operations back into text. A
// Synacor binary carries no assembly source format to encode from, so
// the `list` command instead needs to go from vm.Instruction back to
// mnemonic text, reusing the exact decoder the CPU itself steps
// through so listings can never disagree with execution.
package encoder

import (
	"fmt"
	"strings"

	"github.com/lux01/synacor/vm"
)

// Line is one disassembled operation: its address, the raw mnemonic
// text, and whether it carries the breakpoint tag.
type Line struct {
	Addr         vm.Word
	Text         string
	IsBreakpoint bool
	Size         vm.Word
}

// Disassemble walks read forward from addr for count operations,
// using the same decoder the CPU executes. An OpUnknown operation
// still produces a line (rendered as "???"), but its size is always
// treated as 1 word so disassembly can resynchronize after an invalid
// or data-only region rather than stalling.
func Disassemble(read func(vm.Word) vm.Word, addr vm.Word, count int) []Line {
	lines := make([]Line, 0, count)
	pc := addr
	for i := 0; i < count; i++ {
		op := vm.Decode(read, pc)
		size := vm.Size(op.Instruction.Op)
		if op.Instruction.Op == vm.OpUnknown {
			size = 1
		}
		lines = append(lines, Line{
			Addr:         pc,
			Text:         Format(op.Instruction),
			IsBreakpoint: op.IsBreakpoint,
			Size:         size,
		})
		pc += size
	}
	return lines
}

// Format renders a single instruction as disassembly text: the
// mnemonic followed by its operands, registers as "rN" and literals
// as decimal, except for jump/call/memory targets which render in
// 0x-prefixed hex to match the original source's LowerHex convention.
func Format(instr vm.Instruction) string {
	if instr.Op == vm.OpUnknown {
		return "???"
	}

	mnemonic := mnemonicText(instr.Op)
	arity := vm.Arity(instr.Op)
	if arity == 0 {
		return mnemonic
	}

	operands := make([]string, arity)
	for i := 0; i < arity; i++ {
		operands[i] = formatOperand(instr.Op, i, instr.Operands[i])
	}
	return mnemonic + " " + strings.Join(operands, ", ")
}

// mnemonicText renders an opcode the way the disassembly listing
// wants it, which differs from vm.Opcode.String() in a few short forms
// (jmnz/jmpz instead of jt/jf).
func mnemonicText(op vm.Opcode) string {
	switch op {
	case vm.OpHalt:
		return "halt"
	case vm.OpSet:
		return "set"
	case vm.OpPush:
		return "push"
	case vm.OpPop:
		return "pop"
	case vm.OpEq:
		return "eq"
	case vm.OpGt:
		return "gt"
	case vm.OpJmp:
		return "jmp"
	case vm.OpJt:
		return "jmnz"
	case vm.OpJf:
		return "jmpz"
	case vm.OpAdd:
		return "add"
	case vm.OpMult:
		return "mult"
	case vm.OpMod:
		return "mod"
	case vm.OpAnd:
		return "and"
	case vm.OpOr:
		return "or"
	case vm.OpNot:
		return "not"
	case vm.OpReadMem:
		return "rmem"
	case vm.OpWriteMem:
		return "wmem"
	case vm.OpCall:
		return "call"
	case vm.OpRet:
		return "ret"
	case vm.OpOut:
		return "out"
	case vm.OpIn:
		return "in"
	case vm.OpNoop:
		return "noop"
	default:
		return "???"
	}
}

// isJumpTarget reports whether operand index i of op names a RAM
// address rather than a plain value, which determines hex vs decimal
// rendering.
func isJumpTarget(op vm.Opcode, i int) bool {
	switch op {
	case vm.OpJmp, vm.OpCall:
		return i == 0
	case vm.OpJt, vm.OpJf:
		return i == 1
	case vm.OpReadMem:
		return i == 1
	case vm.OpWriteMem:
		return i == 0
	default:
		return false
	}
}

func formatOperand(op vm.Opcode, i int, o vm.Operand) string {
	if o.IsRegister() {
		return fmt.Sprintf("r%d", o.RegisterIndex())
	}
	if isJumpTarget(op, i) {
		return fmt.Sprintf("0x%04x", o.Value)
	}
	return fmt.Sprintf("%d", o.Value)
}
