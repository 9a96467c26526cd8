package vm

// Status describes the CPU's current operating state. It is mutable
// only by the CPU itself.
type Status int

const (
	// StatusOk is the normal running state, and also what Status reads
	// after a clean Halt: Halt only ever sets CPU.Halted, it does not
	// assign a terminal Status of its own.
	StatusOk Status = iota
	// StatusPopOnEmptyStack is set when Pop is attempted on an empty
	// stack. Ret on an empty stack halts cleanly without setting it.
	StatusPopOnEmptyStack
	// StatusInstructionParseError is set on an unknown opcode, an
	// invalid (non-register) destination, or division by zero in Mod.
	StatusInstructionParseError
	// StatusInterrupted is set when the CPU stops at a breakpoint, when
	// a cancelled context stops Run between instructions, or when a
	// blocked In read is cancelled. It does not imply Halted.
	StatusInterrupted
	// StatusStdinError is set when the input hook fails.
	StatusStdinError
	// StatusStdoutError is set when the output hook fails.
	StatusStdoutError
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusPopOnEmptyStack:
		return "PopOnEmptyStack"
	case StatusInstructionParseError:
		return "InstructionParseError"
	case StatusInterrupted:
		return "Interrupted"
	case StatusStdinError:
		return "StdinError"
	case StatusStdoutError:
		return "StdoutError"
	default:
		return "Unknown"
	}
}
