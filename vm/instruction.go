package vm

import "fmt"

// Opcode identifies one of the 22 instructions in the closed set, or
// OpUnknown for a word the decoder could not classify.
type Opcode int

// The opcode values match the architecture's encoding exactly (Halt=0
// through Noop=21), so Opcode(rawByte) is a valid conversion for any
// rawByte in [0, 21].
const (
	OpHalt Opcode = iota
	OpSet
	OpPush
	OpPop
	OpEq
	OpGt
	OpJmp
	OpJt
	OpJf
	OpAdd
	OpMult
	OpMod
	OpAnd
	OpOr
	OpNot
	OpReadMem
	OpWriteMem
	OpCall
	OpRet
	OpOut
	OpIn
	OpNoop
	OpUnknown // not a real opcode: the decoder's error sentinel
)

var opcodeNames = [...]string{
	OpHalt:     "halt",
	OpSet:      "set",
	OpPush:     "push",
	OpPop:      "pop",
	OpEq:       "eq",
	OpGt:       "gt",
	OpJmp:      "jmp",
	OpJt:       "jt",
	OpJf:       "jf",
	OpAdd:      "add",
	OpMult:     "mult",
	OpMod:      "mod",
	OpAnd:      "and",
	OpOr:       "or",
	OpNot:      "not",
	OpReadMem:  "rmem",
	OpWriteMem: "wmem",
	OpCall:     "call",
	OpRet:      "ret",
	OpOut:      "out",
	OpIn:       "in",
	OpNoop:     "noop",
	OpUnknown:  "????",
}

// String returns the opcode's mnemonic.
func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return "????"
	}
	return opcodeNames[op]
}

// arities gives the number of operand words each opcode consumes.
var arities = [...]int{
	OpHalt: 0, OpSet: 2, OpPush: 1, OpPop: 1, OpEq: 3, OpGt: 3,
	OpJmp: 1, OpJt: 2, OpJf: 2, OpAdd: 3, OpMult: 3, OpMod: 3,
	OpAnd: 3, OpOr: 3, OpNot: 2, OpReadMem: 2, OpWriteMem: 2,
	OpCall: 1, OpRet: 0, OpOut: 1, OpIn: 1, OpNoop: 0,
}

// Arity returns the number of operand words op expects. OpUnknown has
// arity 0: an unknown opcode consumes no operands because its word
// size cannot be known.
func Arity(op Opcode) int {
	if op < 0 || int(op) >= len(arities) {
		return 0
	}
	return arities[op]
}

// Size returns the total instruction size in words, including the
// opcode word, for use advancing the program counter on non-branching
// instructions.
func Size(op Opcode) Word {
	return Word(1 + Arity(op))
}

// Instruction is a decoded opcode together with its operands. Only the
// first Arity(Op) entries of Operands are meaningful.
type Instruction struct {
	Op       Opcode
	Operands [3]Operand
}

// String renders the instruction as "mnemonic operand operand...".
func (i Instruction) String() string {
	n := Arity(i.Op)
	switch n {
	case 0:
		return i.Op.String()
	case 1:
		return fmt.Sprintf("%-4s %s", i.Op, i.Operands[0])
	case 2:
		return fmt.Sprintf("%-4s %s %s", i.Op, i.Operands[0], i.Operands[1])
	default:
		return fmt.Sprintf("%-4s %s %s %s", i.Op, i.Operands[0], i.Operands[1], i.Operands[2])
	}
}
