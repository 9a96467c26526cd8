package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/peterh/liner"
)

// RunCLI drives the interactive shell: read a line, execute it, print
// the debugger's own output, repeat until `quit` or EOF. A single
// SIGINT handler lives for the whole session; during a `run` or
// `step` command it cancels that command's context instead of
// terminating the process, so a runaway program can be interrupted
// back to the prompt. A SIGINT delivered while idle at the prompt
// itself just aborts that read (liner.ErrPromptAborted) and redraws
// the prompt; it never ends the session.
func RunCLI(dbg *Debugger) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	for {
		cmdLine, err := line.Prompt("synacor> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("interface: %w", err)
		}
		line.AppendHistory(cmdLine)

		runCommandUnderSignal(dbg, sig, cmdLine)

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}
		if dbg.Quit {
			break
		}
	}

	return nil
}

// runCommandUnderSignal executes one line with a context that SIGINT
// cancels: the CPU's Run loop checks ctx.Done() between instructions,
// and an In read blocked on stdin during `run` or `step` aborts on it,
// so a press of Ctrl-C returns control to the prompt rather than
// killing the debugger outright. StepN does not check the context
// between instructions.
func runCommandUnderSignal(dbg *Debugger, sig chan os.Signal, cmdLine string) {
	// Discard any signal delivered while idle at the prompt, so it
	// can't cancel this command the instant it starts.
	select {
	case <-sig:
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-done:
		}
	}()

	dbg.ctx = ctx
	if err := dbg.ExecuteCommand(cmdLine); err != nil {
		dbg.Printf("Error: %v\n", err)
	}
}
