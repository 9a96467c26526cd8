package debugger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lux01/synacor/vm"
)

// BreakpointManager tracks the set of addresses tagged as breakpoints.
// The tag itself lives in-band in RAM (the high byte of the
// instruction word, see vm.BreakpointTagMask), so the manager's own
// state is just which addresses it tagged, letting Unset restore the
// exact original word instead of merely clearing bits that might
// already have been part of the program's own data.
type BreakpointManager struct {
	mu       sync.RWMutex
	original map[vm.Word]vm.Word // addr -> RAM word before tagging
}

// NewBreakpointManager returns an empty manager.
func NewBreakpointManager() *BreakpointManager {
	return &BreakpointManager{original: make(map[vm.Word]vm.Word)}
}

// Set tags the instruction word at addr as a breakpoint, provided its
// low byte currently decodes to a known opcode. Re-tagging an address
// that is already set is a no-op that succeeds.
func (bm *BreakpointManager) Set(data *vm.Data, addr vm.Word) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if _, tagged := bm.original[addr]; tagged {
		return nil
	}

	word := data.ReadRAM(addr)
	opByte := word & 0x00FF
	if opByte > vm.Word(vm.OpNoop) {
		return fmt.Errorf("debugger: no known instruction at 0x%04x", addr)
	}

	bm.original[addr] = word
	data.WriteRAM(addr, word|vm.BreakpointTagBits)
	return nil
}

// Unset removes the tag at addr, restoring the original word exactly.
// Unsetting an address that was never set is a no-op.
func (bm *BreakpointManager) Unset(data *vm.Data, addr vm.Word) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	word, tagged := bm.original[addr]
	if !tagged {
		return
	}
	data.WriteRAM(addr, word)
	delete(bm.original, addr)
}

// IsSet reports whether addr is currently tagged by this manager.
func (bm *BreakpointManager) IsSet(addr vm.Word) bool {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	_, tagged := bm.original[addr]
	return tagged
}

// List returns all tagged addresses in ascending order.
func (bm *BreakpointManager) List() []vm.Word {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	addrs := make([]vm.Word, 0, len(bm.original))
	for addr := range bm.original {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Clear unsets every tagged address, restoring all original words.
func (bm *BreakpointManager) Clear(data *vm.Data) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for addr, word := range bm.original {
		data.WriteRAM(addr, word)
	}
	bm.original = make(map[vm.Word]vm.Word)
}

// Count returns the number of breakpoints currently set.
func (bm *BreakpointManager) Count() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return len(bm.original)
}
