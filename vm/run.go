package vm

import "context"

// RunResult reports why a Run call returned.
type RunResult int

const (
	// RunHalted means the CPU halted normally (or on a CPU error).
	RunHalted RunResult = iota
	// RunBreakpoint means execution stopped because the next
	// instruction is tagged as a breakpoint.
	RunBreakpoint
	// RunInterrupted means ctx was cancelled, either between
	// instructions or during a blocked input read inside In.
	RunInterrupted
	// RunStepLimit means StepN executed its full requested count
	// without halting or hitting a breakpoint.
	RunStepLimit
)

// Run repeatedly steps the CPU until it halts, the next instruction is
// a breakpoint, or ctx is cancelled. Per the re-entry contract, the
// very first step of a Run call always bypasses the breakpoint check,
// so a Run started right after stopping at a breakpoint executes that
// instruction exactly once before resuming normal breakpoint checks.
func (c *CPU) Run(ctx context.Context) (RunResult, error) {
	first := true
	for {
		if c.Halted {
			return RunHalted, nil
		}

		select {
		case <-ctx.Done():
			c.Status = StatusInterrupted
			return RunInterrupted, nil
		default:
		}

		executed, err := c.Step(first)
		first = false
		if err != nil {
			return RunHalted, err
		}
		if !executed {
			if c.Peek().IsBreakpoint {
				return RunBreakpoint, nil
			}
			return RunInterrupted, nil
		}
	}
}

// StepN executes up to n operations, stopping early on halt or on a
// breakpoint (same re-entry contract as Run: only the first operation
// of the call bypasses the breakpoint check). It returns the number of
// operations actually executed.
func (c *CPU) StepN(n int) (executedCount int, result RunResult, err error) {
	first := true
	for i := 0; i < n; i++ {
		if c.Halted {
			return executedCount, RunHalted, nil
		}
		executed, stepErr := c.Step(first)
		first = false
		if stepErr != nil {
			return executedCount, RunHalted, stepErr
		}
		if !executed {
			if c.Peek().IsBreakpoint {
				return executedCount, RunBreakpoint, nil
			}
			return executedCount, RunInterrupted, nil
		}
		executedCount++
	}
	if c.Halted {
		return executedCount, RunHalted, nil
	}
	return executedCount, RunStepLimit, nil
}
