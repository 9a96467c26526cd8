package vm

import (
	"context"
	"errors"
	"fmt"
)

// errInterrupted marks an input read aborted by context cancellation
// (a SIGINT during a blocked In): the CPU is left un-halted with
// status Interrupted so the instruction can be retried on resume.
var errInterrupted = errors.New("vm: input interrupted")

// InputFunc produces one scalar character code for the In
// instruction, or an error (including context cancellation) if none
// is available. The CPU calls it once per In; any replay buffer is
// owned and drained by the InputFunc itself (package debugger's
// input does this before reading stdin), not by the CPU.
type InputFunc func() (Word, error)

// OutputFunc emits one scalar character code for the Out instruction.
type OutputFunc func(Word) error

// CPU is a single-step interpreter over a Data store. It holds no
// state beyond the program counter, halt/status flags, and the two
// I/O hooks: all architectural state (registers, RAM, stack) lives in
// Data, which the CPU mutably borrows for the duration of Step.
type CPU struct {
	PC     Word
	Halted bool
	Status Status
	Data   *Data
	Input  InputFunc
	Output OutputFunc
}

// NewCPU returns a CPU at pc=0, status Ok, wired to data and the given
// I/O hooks.
func NewCPU(data *Data, in InputFunc, out OutputFunc) *CPU {
	return &CPU{Data: data, Input: in, Output: out, Status: StatusOk}
}

// Peek decodes the operation at the current PC without executing it.
func (c *CPU) Peek() Operation {
	return Decode(c.Data.ReadRAM, c.PC)
}

// Step decodes and executes exactly one operation, or halts at a
// breakpoint. bypassBreakpoint must be true for the first operation of
// any run()/step() invocation and false thereafter, so that a
// breakpoint never re-trips immediately after being stepped past.
//
// It returns executed=false when the CPU stopped before any side
// effect occurred — either a breakpoint at pc, or a cancelled input
// read inside In (status becomes Interrupted in both cases); the
// caller should stop its loop without treating this as an error, and
// can peek at pc to tell the two apart. A non-nil
// error indicates an I/O failure from the Input/Output hooks; CPU
// state (Status, Halted) already reflects it, so callers generally
// just need to check err for logging and continue back to the prompt.
func (c *CPU) Step(bypassBreakpoint bool) (executed bool, err error) {
	if c.Halted {
		return false, nil
	}

	op := c.Peek()
	if op.IsBreakpoint && !bypassBreakpoint {
		c.Status = StatusInterrupted
		return false, nil
	}

	c.Status = StatusOk
	if err := c.execute(op.Instruction); err != nil {
		if errors.Is(err, errInterrupted) {
			return false, nil
		}
		return true, err
	}
	return true, nil
}

// parseError halts the CPU with StatusInstructionParseError. It
// returns nil: a parse error is reported through Status and Halted,
// not as a Go error from Step.
func (c *CPU) parseError() error {
	c.Status = StatusInstructionParseError
	c.Halted = true
	return nil
}

func (c *CPU) execute(instr Instruction) error {
	d := c.Data
	switch instr.Op {
	case OpUnknown:
		return c.parseError()

	case OpHalt:
		c.Halted = true
		c.PC += Size(instr.Op)
		return nil

	case OpNoop:
		c.PC += Size(instr.Op)
		return nil

	case OpSet:
		dst, a := instr.Operands[0], instr.Operands[1]
		if err := d.Write(dst, d.Val(a)); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpPush:
		d.Push(d.Val(instr.Operands[0]))
		c.PC += Size(instr.Op)
		return nil

	case OpPop:
		dst := instr.Operands[0]
		if d.IsStackEmpty() {
			c.Status = StatusPopOnEmptyStack
			c.Halted = true
			return nil
		}
		val := d.Pop()
		if err := d.Write(dst, val); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpEq:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		var val Word
		if d.Val(a) == d.Val(b) {
			val = 1
		}
		if err := d.Write(dst, val); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpGt:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		var val Word
		if d.Val(a) > d.Val(b) {
			val = 1
		}
		if err := d.Write(dst, val); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpJmp:
		c.PC = d.Val(instr.Operands[0])
		return nil

	case OpJt:
		src, dst := instr.Operands[0], instr.Operands[1]
		if d.Val(src) != 0 {
			c.PC = d.Val(dst)
		} else {
			c.PC += Size(instr.Op)
		}
		return nil

	case OpJf:
		src, dst := instr.Operands[0], instr.Operands[1]
		if d.Val(src) == 0 {
			c.PC = d.Val(dst)
		} else {
			c.PC += Size(instr.Op)
		}
		return nil

	case OpAdd:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		if err := d.Write(dst, AddWord(d.Val(a), d.Val(b))); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpMult:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		if err := d.Write(dst, MulWord(d.Val(a), d.Val(b))); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpMod:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		divisor := d.Val(b)
		if divisor == 0 {
			return c.parseError()
		}
		if err := d.Write(dst, d.Val(a)%divisor); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpAnd:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		if err := d.Write(dst, d.Val(a)&d.Val(b)); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpOr:
		dst, a, b := instr.Operands[0], instr.Operands[1], instr.Operands[2]
		if err := d.Write(dst, d.Val(a)|d.Val(b)); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpNot:
		dst, a := instr.Operands[0], instr.Operands[1]
		if err := d.Write(dst, Invert15(d.Val(a))); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpReadMem:
		dst, src := instr.Operands[0], instr.Operands[1]
		if err := d.Write(dst, d.ReadRAM(d.Val(src))); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	case OpWriteMem:
		dst, src := instr.Operands[0], instr.Operands[1]
		d.WriteRAM(d.Val(dst), d.Val(src))
		c.PC += Size(instr.Op)
		return nil

	case OpCall:
		dst := instr.Operands[0]
		returnAddr := c.PC + Size(instr.Op)
		target := d.Val(dst)
		d.Push(returnAddr)
		c.PC = target
		return nil

	case OpRet:
		if d.IsStackEmpty() {
			c.Halted = true
			return nil
		}
		c.PC = d.Pop()
		return nil

	case OpOut:
		val := d.Val(instr.Operands[0])
		if c.Output != nil {
			if err := c.Output(val); err != nil {
				c.Status = StatusStdoutError
				c.Halted = true
				return fmt.Errorf("vm: output failed: %w", err)
			}
		}
		c.PC += Size(instr.Op)
		return nil

	case OpIn:
		dst := instr.Operands[0]
		var val Word
		if c.Input != nil {
			v, err := c.Input()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					c.Status = StatusInterrupted
					return errInterrupted
				}
				c.Status = StatusStdinError
				c.Halted = true
				return fmt.Errorf("vm: input failed: %w", err)
			}
			val = v
		}
		if err := d.Write(dst, val); err != nil {
			return c.parseError()
		}
		c.PC += Size(instr.Op)
		return nil

	default:
		return c.parseError()
	}
}
