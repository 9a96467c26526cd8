package debugger

import (
	"sync"
)

// CommandHistory is the log of REPL command lines a Debugger session
// has executed, backing both the `history` shell command and the
// `GET .../history` API endpoint. Line-editor recall (up/down at the
// prompt) is liner's job, not this type's, so it only appends, reads
// back in order, trims its oldest entries past the maximum size, and
// clears.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
}

// NewCommandHistory returns an empty history retaining up to 1000
// entries, the same default Debugger.Configure falls back to when a
// loaded config doesn't set debugger.history_size.
func NewCommandHistory() *CommandHistory {
	return &CommandHistory{
		commands: make([]string, 0, 100),
		maxSize:  1000,
	}
}

// Add appends cmd to the log. An empty line or an immediate repeat of
// the last command is not appended (ExecuteCommand already re-runs
// the last command line on an empty input, so logging it again here
// would double it up).
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}

	if len(h.commands) > 0 && h.commands[len(h.commands)-1] == cmd {
		return
	}

	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
}

// GetAll returns a copy of the full command log, oldest first, for
// the `history` command and the API's history endpoint.
func (h *CommandHistory) GetAll() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]string, len(h.commands))
	copy(result, h.commands)
	return result
}

// Clear empties the log.
func (h *CommandHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands = h.commands[:0]
}

// SetMaxSize changes the retained history length, trimming existing
// entries immediately if the new size is smaller.
func (h *CommandHistory) SetMaxSize(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxSize = n
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
}

// Size returns the number of commands currently logged.
func (h *CommandHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.commands)
}
