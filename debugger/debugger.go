// Package debugger owns the CPU and its data store, drives run/step/
// restart, and dispatches the interactive shell's commands against
// them. See interface.go for the REPL loop itself.
package debugger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lux01/synacor/config"
	"github.com/lux01/synacor/loader"
	"github.com/lux01/synacor/vm"
)

// Debugger owns the CPU and data for one debugging session: the
// original binary and replay buffer are kept so that Restart can
// rebuild exactly the state load produced, reapplying injections in
// the same order every time.
type Debugger struct {
	Original      []byte
	InitialReplay []rune
	Injections    []loader.Injection

	CPU         *vm.CPU
	Data        *vm.Data
	Breakpoints *BreakpointManager
	History     *CommandHistory

	// Display settings for the memory/list/stack commands, overridable
	// via Configure; defaulted from constants.go.
	MemoryWordsPerLine int
	MemoryDefaultLines int
	ListDefaultCount   int
	StackMaxWords      int

	replay []rune
	stdin  *bufio.Reader
	stdout io.Writer
	ctx    context.Context

	LastCommand string
	Output      strings.Builder
	Quit        bool
}

// NewDebugger constructs a Debugger and performs the initial load:
// decode the binary, apply injections, and seed the replay buffer.
func NewDebugger(binary []byte, replay []rune, injections []loader.Injection, stdin io.Reader, stdout io.Writer) (*Debugger, error) {
	d := &Debugger{
		Original:      binary,
		InitialReplay: replay,
		Injections:    injections,
		History:       NewCommandHistory(),
		stdin:         bufio.NewReader(stdin),
		stdout:        stdout,
		ctx:           context.Background(),

		MemoryWordsPerLine: MemoryDisplayWordsPerLine,
		MemoryDefaultLines: MemoryDisplayDefaultLines,
		ListDefaultCount:   ListDefaultCount,
		StackMaxWords:      StackDisplayMaxWords,
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure applies a loaded Config's display and history settings.
// Call it once after NewDebugger; it does not affect already-loaded
// CPU/Data state.
func (d *Debugger) Configure(cfg *config.Config) {
	if cfg.Display.MemoryWordsPerLine > 0 {
		d.MemoryWordsPerLine = cfg.Display.MemoryWordsPerLine
	}
	if cfg.Display.MemoryDefaultLines > 0 {
		d.MemoryDefaultLines = cfg.Display.MemoryDefaultLines
	}
	if cfg.Display.ListDefaultCount > 0 {
		d.ListDefaultCount = cfg.Display.ListDefaultCount
	}
	if cfg.Display.StackMaxWords > 0 {
		d.StackMaxWords = cfg.Display.StackMaxWords
	}
	if cfg.Debugger.HistorySize > 0 {
		d.History.SetMaxSize(cfg.Debugger.HistorySize)
	}
}

// reset rebuilds Data and the CPU from Original, reapplying
// Injections and restoring InitialReplay, and clears all breakpoints
// (their in-band tags no longer mean anything against fresh RAM).
func (d *Debugger) reset() error {
	data := vm.NewData()
	if err := data.Load(d.Original); err != nil {
		return fmt.Errorf("debugger: %w", err)
	}
	loader.Apply(data, d.Injections)

	replay := make([]rune, len(d.InitialReplay))
	copy(replay, d.InitialReplay)

	d.Data = data
	d.replay = replay
	d.Breakpoints = NewBreakpointManager()
	d.CPU = vm.NewCPU(data, d.input, d.output)
	return nil
}

// input satisfies vm.InputFunc: it drains the replay buffer first
// (non-blocking), then falls back to a single abortable rune read
// from stdin, selecting against d.ctx so a SIGINT delivered during
// `run` or `step` aborts the read rather than blocking the shell
// forever.
func (d *Debugger) input() (vm.Word, error) {
	if len(d.replay) > 0 {
		r := d.replay[0]
		d.replay = d.replay[1:]
		return vm.Word(r), nil
	}

	type result struct {
		w   vm.Word
		err error
	}
	ch := make(chan result, 1)
	go func() {
		r, _, err := d.stdin.ReadRune()
		if err != nil {
			ch <- result{0, err}
			return
		}
		ch <- result{vm.Word(r), nil}
	}()

	select {
	case <-d.ctx.Done():
		return 0, d.ctx.Err()
	case res := <-ch:
		return res.w, res.err
	}
}

// output satisfies vm.OutputFunc: it writes val as a Unicode scalar
// when valid, else its low byte, flushing immediately so output stays
// in strict program order.
func (d *Debugger) output(val vm.Word) error {
	_, err := fmt.Fprintf(d.stdout, "%c", scalarRune(val))
	return err
}

// scalarRune returns w as a rune when it is a valid Unicode scalar
// value (not a UTF-16 surrogate); malformed/fuzzed binaries may emit a
// surrogate code point, which falls back to its low byte rather than
// producing an invalid rune.
func scalarRune(w vm.Word) rune {
	if w >= 0xD800 && w <= 0xDFFF {
		return rune(w & 0xFF)
	}
	return rune(w)
}

// RunWithContext runs the CPU under ctx, scoping d.input's abortable
// read to the same cancellation signal for the duration of the call.
func (d *Debugger) RunWithContext(ctx context.Context) (vm.RunResult, error) {
	d.ctx = ctx
	defer func() { d.ctx = context.Background() }()
	return d.CPU.Run(ctx)
}

// ExecuteCommand parses and dispatches one line of shell input. An
// empty line repeats the last non-empty command (for `step`/`run`).
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	return d.handleCommand(cmd, args)
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "help", "h", "?":
		return d.cmdHelp(args)
	case "step", "s":
		return d.cmdStep(args)
	case "registers", "r":
		return d.cmdRegisters(args)
	case "run", "c":
		return d.cmdRun(args)
	case "breakpoint", "bp":
		return d.cmdBreakpoint(args)
	case "memory", "m":
		return d.cmdMemory(args)
	case "list", "l":
		return d.cmdList(args)
	case "restart":
		return d.cmdRestart(args)
	case "dump":
		return d.cmdDump(args)
	case "set":
		return d.cmdSet(args)
	case "stack", "ps":
		return d.cmdStack(args)
	case "jump":
		return d.cmdJump(args)
	case "history":
		return d.cmdHistory(args)
	case "quit", "q":
		d.Quit = true
		return nil
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// GetOutput returns and clears the debugger's own message buffer
// (register dumps, breakpoint notices, usage errors) — distinct from
// the emulated program's own stdout, which is written directly via
// output() above.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf writes formatted text to the debugger's message buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

// Println writes a line to the debugger's message buffer.
func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}
