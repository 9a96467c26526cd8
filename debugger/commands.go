package debugger

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lux01/synacor/encoder"
	"github.com/lux01/synacor/tools"
	"github.com/lux01/synacor/vm"
)

// parseHexWord parses a hex address, with or without a leading "0x",
// wrapping it modulo vm.RAMSize.
func parseHexWord(s string) (vm.Word, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return vm.Word(int(v) % vm.RAMSize), nil
}

// cmdStep executes n instructions (default 1).
func (d *Debugger) cmdStep(args []string) error {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return fmt.Errorf("usage: step [n] (n must be a positive integer)")
		}
		n = parsed
	}

	executed, result, err := d.CPU.StepN(n)
	if err != nil {
		d.Printf("Runtime error after %d step(s): %v\n", executed, err)
		return nil
	}

	switch result {
	case vm.RunBreakpoint:
		d.Printf("Stopped at breakpoint, pc=0x%04x (executed %d)\n", d.CPU.PC, executed)
	case vm.RunHalted:
		d.Printf("Halted, status=%s, pc=0x%04x (executed %d)\n", d.CPU.Status, d.CPU.PC, executed)
	case vm.RunInterrupted:
		d.Printf("Interrupted at pc=0x%04x (executed %d)\n", d.CPU.PC, executed)
	default:
		d.Printf("Stepped %d instruction(s), pc=0x%04x\n", executed, d.CPU.PC)
	}
	return nil
}

// cmdRegisters prints r0..r7 in hex.
func (d *Debugger) cmdRegisters(args []string) error {
	for i, reg := range d.Data.Registers {
		d.Printf("r%d = 0x%04x\n", i, reg)
	}
	return nil
}

// cmdRun runs until halt, breakpoint, or interruption.
func (d *Debugger) cmdRun(args []string) error {
	result, err := d.RunWithContext(d.ctx)
	if err != nil {
		d.Printf("Runtime error: %v\n", err)
		return nil
	}

	switch result {
	case vm.RunBreakpoint:
		d.Printf("Breakpoint hit at pc=0x%04x\n", d.CPU.PC)
	case vm.RunHalted:
		d.Printf("Halted, status=%s, pc=0x%04x\n", d.CPU.Status, d.CPU.PC)
	case vm.RunInterrupted:
		d.Printf("Interrupted at pc=0x%04x\n", d.CPU.PC)
	}
	return nil
}

// cmdBreakpoint handles `breakpoint list|set <addr>...|unset <addr>...`.
func (d *Debugger) cmdBreakpoint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: breakpoint list | set <hex-addr>... | unset <hex-addr>...")
	}

	switch strings.ToLower(args[0]) {
	case "list":
		addrs := d.Breakpoints.List()
		if len(addrs) == 0 {
			d.Println("No breakpoints set")
			return nil
		}
		for _, addr := range addrs {
			d.Printf("0x%04x\n", addr)
		}
		return nil

	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: breakpoint set <hex-addr>...")
		}
		for _, arg := range args[1:] {
			addr, err := parseHexWord(arg)
			if err != nil {
				return err
			}
			if err := d.Breakpoints.Set(d.Data, addr); err != nil {
				return err
			}
			d.Printf("Breakpoint set at 0x%04x\n", addr)
		}
		return nil

	case "unset":
		if len(args) < 2 {
			return fmt.Errorf("usage: breakpoint unset <hex-addr>...")
		}
		for _, arg := range args[1:] {
			addr, err := parseHexWord(arg)
			if err != nil {
				return err
			}
			d.Breakpoints.Unset(d.Data, addr)
			d.Printf("Breakpoint unset at 0x%04x\n", addr)
		}
		return nil

	default:
		return fmt.Errorf("usage: breakpoint list | set <hex-addr>... | unset <hex-addr>...")
	}
}

// cmdMemory hex-dumps RAM starting at an optional address (default
// current pc) for an optional number of lines (default
// d.MemoryDefaultLines), d.MemoryWordsPerLine words per line (8 unless
// configured otherwise) with a printable sidebar.
func (d *Debugger) cmdMemory(args []string) error {
	addr := d.CPU.PC
	lines := d.MemoryDefaultLines

	if len(args) > 0 {
		a, err := parseHexWord(args[0])
		if err != nil {
			return err
		}
		addr = a
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid line count: %s", args[1])
		}
		lines = n
	}

	count := lines * d.MemoryWordsPerLine
	out := tools.FormatMemory(d.Data.ReadRAM, addr, count, d.MemoryWordsPerLine)
	d.Output.WriteString(out)
	return nil
}

// cmdList disassembles n instructions (default ListDefaultCount)
// starting at an optional address (default current pc).
func (d *Debugger) cmdList(args []string) error {
	n := d.ListDefaultCount
	addr := d.CPU.PC

	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid instruction count: %s", args[0])
		}
		n = parsed
	}
	if len(args) > 1 {
		a, err := parseHexWord(args[1])
		if err != nil {
			return err
		}
		addr = a
	}

	for _, line := range encoder.Disassemble(d.Data.ReadRAM, addr, n) {
		marker := "  "
		if line.Addr == d.CPU.PC {
			marker = "=>"
		}
		tag := ""
		if line.IsBreakpoint {
			tag = " *"
		}
		d.Printf("%s 0x%04x: %s%s\n", marker, line.Addr, line.Text, tag)
	}
	return nil
}

// cmdRestart rebuilds the CPU and data from the original binary,
// reapplying injections and the initial replay buffer.
func (d *Debugger) cmdRestart(args []string) error {
	if err := d.reset(); err != nil {
		return err
	}
	d.Println("Restarted")
	return nil
}

// cmdDump writes the current RAM image to path as little-endian bytes.
func (d *Debugger) cmdDump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dump <path>")
	}
	if err := os.WriteFile(args[0], d.Data.Dump(), 0o600); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	d.Printf("Dumped RAM to %s\n", args[0])
	return nil
}

// cmdSet writes a decimal value into register 0..7.
func (d *Debugger) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <reg 0..7> <decimal value>")
	}
	reg, err := strconv.Atoi(args[0])
	if err != nil || reg < 0 || reg >= vm.NumRegisters {
		return fmt.Errorf("invalid register: %s (want 0..7)", args[0])
	}
	val, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid value: %s", args[1])
	}
	d.Data.Registers[reg] = vm.Word(val % vm.ModBase)
	d.Printf("r%d = 0x%04x\n", reg, d.Data.Registers[reg])
	return nil
}

// cmdStack prints the stack, nearest the top first.
func (d *Debugger) cmdStack(args []string) error {
	stack := d.Data.Stack
	if len(stack) == 0 {
		d.Println("Stack is empty")
		return nil
	}

	n := len(stack)
	shown := 0
	for i := n - 1; i >= 0 && shown < d.StackMaxWords; i-- {
		d.Printf("%d: 0x%04x\n", n-1-i, stack[i])
		shown++
	}
	return nil
}

// cmdJump sets pc directly without executing anything.
func (d *Debugger) cmdJump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: jump <hex-addr>")
	}
	addr, err := parseHexWord(args[0])
	if err != nil {
		return err
	}
	d.CPU.PC = addr
	d.Printf("pc = 0x%04x\n", addr)
	return nil
}

// cmdHistory prints the commands executed so far this session, oldest
// first, matching what GET .../history returns over the API.
func (d *Debugger) cmdHistory(args []string) error {
	cmds := d.History.GetAll()
	if len(cmds) == 0 {
		d.Println("No command history")
		return nil
	}
	for i, cmd := range cmds {
		d.Printf("%d: %s\n", i+1, cmd)
	}
	return nil
}

// cmdHelp prints the command summary.
func (d *Debugger) cmdHelp(args []string) error {
	d.Println("Commands:")
	d.Println("  help (h, ?)                         - show this help")
	d.Println("  step (s) [n]                        - step n instructions (default 1)")
	d.Println("  registers (r)                       - print r0..r7 in hex")
	d.Println("  run (c)                             - run until halt, breakpoint, or signal")
	d.Println("  breakpoint (bp) list|set|unset <a>  - manage breakpoints")
	d.Println("  memory (m) [addr] [lines]           - hex-dump RAM")
	d.Println("  list (l) [n] [addr]                 - disassemble n instructions")
	d.Println("  restart                             - reload the original binary")
	d.Println("  dump <path>                         - write RAM to a file")
	d.Println("  set <reg 0..7> <value>              - set a register")
	d.Println("  stack (ps)                          - print the stack")
	d.Println("  jump <addr>                         - set pc")
	d.Println("  history                             - show commands run this session")
	d.Println("  quit (q)                            - exit the debugger")
	return nil
}
