package vm

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
)

// program encodes a slice of words as a little-endian binary image.
func program(words ...Word) []byte {
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(w))
	}
	return buf
}

// newTestCPU builds a CPU over a fresh Data loaded with prog, capturing
// output into the returned *[]Word slice and serving input from in.
func newTestCPU(t *testing.T, prog []byte, in []Word) (*CPU, *[]Word) {
	t.Helper()
	d := NewData()
	if err := d.Load(prog); err != nil {
		t.Fatalf("Load: %v", err)
	}
	var out []Word
	idx := 0
	cpu := NewCPU(d, func() (Word, error) {
		if idx >= len(in) {
			return 0, errors.New("no more input")
		}
		v := in[idx]
		idx++
		return v, nil
	}, func(w Word) error {
		out = append(out, w)
		return nil
	})
	return cpu, &out
}

func runToHalt(t *testing.T, cpu *CPU) {
	t.Helper()
	result, err := cpu.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != RunHalted {
		t.Fatalf("Run result = %v, want RunHalted", result)
	}
}

// Scenario 1: Hello/Halt.
func TestScenario_HelloHalt(t *testing.T) {
	cpu, out := newTestCPU(t, program(19, 72, 19, 105, 0), nil)
	runToHalt(t, cpu)

	if !cpu.Halted {
		t.Fatal("expected halted")
	}
	if cpu.Status != StatusOk {
		t.Fatalf("status = %v, want Ok", cpu.Status)
	}
	got := string(runeSlice(*out))
	if got != "Hi" {
		t.Fatalf("stdout = %q, want %q", got, "Hi")
	}
}

func runeSlice(ws []Word) []rune {
	rs := make([]rune, len(ws))
	for i, w := range ws {
		rs[i] = rune(w)
	}
	return rs
}

// Scenario 2: Add mod.
func TestScenario_AddMod(t *testing.T) {
	cpu, _ := newTestCPU(t, program(9, ModBase, ModBase-1, 1, 0), nil)
	runToHalt(t, cpu)
	if cpu.Data.Registers[0] != 0 {
		t.Fatalf("r0 = %d, want 0", cpu.Data.Registers[0])
	}
}

// Scenario 3: Call/Ret.
func TestScenario_CallRet(t *testing.T) {
	cpu, _ := newTestCPU(t, program(17, 4, 0, 0, 18), nil)
	runToHalt(t, cpu)
	if !cpu.Data.IsStackEmpty() {
		t.Fatalf("stack = %v, want empty", cpu.Data.Stack)
	}
	if cpu.PC != 3 {
		t.Fatalf("pc = %d, want 3", cpu.PC)
	}
}

// Scenario 4: Pop empty.
func TestScenario_PopEmpty(t *testing.T) {
	cpu, _ := newTestCPU(t, program(3, ModBase, 0), nil)
	executed, err := cpu.Step(true)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !executed {
		t.Fatal("expected the pop to execute (and then halt)")
	}
	if cpu.Status != StatusPopOnEmptyStack {
		t.Fatalf("status = %v, want PopOnEmptyStack", cpu.Status)
	}
	if !cpu.Halted {
		t.Fatal("expected halted")
	}
	if cpu.Data.Registers[0] != 0 {
		t.Fatalf("r0 = %d, want 0 (pop must not mutate on empty stack)", cpu.Data.Registers[0])
	}
}

// Scenario 6: Replay consumes first.
func TestScenario_ReplayConsumesFirst(t *testing.T) {
	prog := program(20, ModBase, 19, ModBase, 0) // In r0, Out r0, Halt
	cpu, out := newTestCPU(t, prog, []Word{'a'})
	runToHalt(t, cpu)
	if got := string(runeSlice(*out)); got != "a" {
		t.Fatalf("stdout = %q, want %q", got, "a")
	}
}

func TestMult_ModularReduction(t *testing.T) {
	// Mult must reduce with % ModBase, not & ModBase.
	// 32767*32767 mod 32768 == 1.
	cpu, _ := newTestCPU(t, program(10, ModBase, ModBase-1, ModBase-1, 0), nil)
	runToHalt(t, cpu)
	if cpu.Data.Registers[0] != 1 {
		t.Fatalf("r0 = %d, want 1", cpu.Data.Registers[0])
	}
}

func TestAdd_ModularReduction(t *testing.T) {
	for a := Word(0); a < 5; a++ {
		for b := Word(0); b < 5; b++ {
			want := Word((uint32(a) + uint32(b)) % ModBase)
			if got := AddWord(a, b); got != want {
				t.Errorf("AddWord(%d,%d) = %d, want %d", a, b, got, want)
			}
		}
	}
	if got := AddWord(ModBase-1, 2); got != 1 {
		t.Errorf("AddWord(32767,2) = %d, want 1", got)
	}
}

func TestNot_Is15BitInverse(t *testing.T) {
	cpu, _ := newTestCPU(t, program(14, ModBase, 5, 0), nil)
	runToHalt(t, cpu)
	want := Word(5) ^ 0x7FFF
	if cpu.Data.Registers[0] != want {
		t.Fatalf("r0 = %#x, want %#x", cpu.Data.Registers[0], want)
	}
}

func TestRAMWrap_WriteMemThenReadMem(t *testing.T) {
	// Raw addresses wrap modulo RAMSize (32768 = 0x8000), independent
	// of the separate literal/register operand encoding.
	d := NewData()
	d.WriteRAM(0x8001, 42)
	if got := d.ReadRAM(0x0001); got != 42 {
		t.Fatalf("ReadRAM(0x0001) = %d, want 42 after WriteRAM(0x8001, 42)", got)
	}
}

func TestBreakpointReentry(t *testing.T) {
	// After Run halts at a breakpoint, the next Step executes the
	// tagged instruction exactly once and advances pc accordingly.
	prog := program(19, 72, 0xCC00|19, 105, 0) // Out 'H'; [bp] Out 'i'; Halt
	cpu, out := newTestCPU(t, prog, nil)

	result, err := cpu.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != RunBreakpoint {
		t.Fatalf("Run result = %v, want RunBreakpoint", result)
	}
	if cpu.PC != 2 {
		t.Fatalf("pc = %d, want 2 (stopped before the tagged instruction)", cpu.PC)
	}
	if got := string(runeSlice(*out)); got != "H" {
		t.Fatalf("stdout after first run = %q, want %q", got, "H")
	}

	executed, err := cpu.Step(true)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !executed {
		t.Fatal("expected the breakpointed instruction to execute on re-entry")
	}
	if cpu.PC != 4 {
		t.Fatalf("pc = %d, want 4 after executing the tagged Out", cpu.PC)
	}
	if got := string(runeSlice(*out)); got != "Hi" {
		t.Fatalf("stdout after re-entry = %q, want %q", got, "Hi")
	}

	runToHalt(t, cpu)
}

func TestInterruptedInputLeavesCPUResumable(t *testing.T) {
	// A cancelled read inside In must set Interrupted without halting
	// or advancing pc, so the instruction retries on the next run.
	d := NewData()
	if err := d.Load(program(20, ModBase, 0)); err != nil { // In r0; Halt
		t.Fatalf("Load: %v", err)
	}
	calls := 0
	cpu := NewCPU(d, func() (Word, error) {
		calls++
		if calls == 1 {
			return 0, context.Canceled
		}
		return 'x', nil
	}, nil)

	result, err := cpu.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != RunInterrupted {
		t.Fatalf("Run result = %v, want RunInterrupted", result)
	}
	if cpu.Halted {
		t.Fatal("CPU must not halt on an interrupted read")
	}
	if cpu.Status != StatusInterrupted {
		t.Fatalf("status = %v, want Interrupted", cpu.Status)
	}
	if cpu.PC != 0 {
		t.Fatalf("pc = %d, want 0 (In must not advance when interrupted)", cpu.PC)
	}

	runToHalt(t, cpu)
	if cpu.Data.Registers[0] != 'x' {
		t.Fatalf("r0 = %d, want 'x' after the retried In", cpu.Data.Registers[0])
	}
}

func TestStatusRecoversAfterBreakpointResume(t *testing.T) {
	prog := program(21, 0xCC00|21, 0) // Noop; [bp] Noop; Halt
	cpu, _ := newTestCPU(t, prog, nil)

	result, err := cpu.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != RunBreakpoint {
		t.Fatalf("Run result = %v, want RunBreakpoint", result)
	}
	if cpu.Status != StatusInterrupted {
		t.Fatalf("status at breakpoint = %v, want Interrupted", cpu.Status)
	}

	runToHalt(t, cpu)
	if cpu.Status != StatusOk {
		t.Fatalf("status after clean halt = %v, want Ok", cpu.Status)
	}
}

func TestMod_DivideByZero(t *testing.T) {
	cpu, _ := newTestCPU(t, program(11, ModBase, 5, 0, 0), nil)
	runToHalt(t, cpu)
	if cpu.Status != StatusInstructionParseError {
		t.Fatalf("status = %v, want InstructionParseError", cpu.Status)
	}
}

func TestWriteThroughLiteralIsParseError(t *testing.T) {
	// Set with a literal destination (instead of a register) must
	// raise InstructionParseError, per the dst:R rule.
	cpu, _ := newTestCPU(t, program(1, 5, 9, 0), nil)
	runToHalt(t, cpu)
	if cpu.Status != StatusInstructionParseError {
		t.Fatalf("status = %v, want InstructionParseError", cpu.Status)
	}
}

func TestRetOnEmptyStackHaltsCleanly(t *testing.T) {
	cpu, _ := newTestCPU(t, program(18), nil)
	runToHalt(t, cpu)
	if cpu.Status != StatusOk {
		t.Fatalf("status = %v, want Ok (Ret on empty stack halts cleanly, not an error)", cpu.Status)
	}
}

func TestUnknownOpcodeHalts(t *testing.T) {
	cpu, _ := newTestCPU(t, program(255), nil)
	runToHalt(t, cpu)
	if cpu.Status != StatusInstructionParseError {
		t.Fatalf("status = %v, want InstructionParseError", cpu.Status)
	}
}
