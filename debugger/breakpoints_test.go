package debugger

import (
	"testing"

	"github.com/lux01/synacor/vm"
)

func programData(words ...vm.Word) *vm.Data {
	d := vm.NewData()
	for i, w := range words {
		d.WriteRAM(vm.Word(i), w)
	}
	return d
}

func TestBreakpointManager_SetAndIsSet(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpNoop), vm.Word(vm.OpHalt))

	if err := bm.Set(data, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !bm.IsSet(0) {
		t.Error("expected address 0 to be set")
	}
	if bm.IsSet(1) {
		t.Error("expected address 1 to not be set")
	}
}

func TestBreakpointManager_SetTagsRAMWord(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpNoop))

	if err := bm.Set(data, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := vm.Word(vm.OpNoop) | vm.BreakpointTagBits
	if got := data.ReadRAM(0); got != want {
		t.Errorf("RAM[0] = %#x, want %#x", got, want)
	}
}

func TestBreakpointManager_RejectsUnknownOpcode(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(255)

	if err := bm.Set(data, 0); err == nil {
		t.Fatal("expected an error tagging an address with an unknown opcode")
	}
}

func TestBreakpointManager_UnsetRestoresOriginalWord(t *testing.T) {
	bm := NewBreakpointManager()
	original := vm.Word(vm.OpAdd)
	data := programData(original, 32768, 1, 2)

	if err := bm.Set(data, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	bm.Unset(data, 0)

	if got := data.ReadRAM(0); got != original {
		t.Errorf("RAM[0] = %#x, want original %#x", got, original)
	}
	if bm.IsSet(0) {
		t.Error("expected address 0 to no longer be set after Unset")
	}
}

func TestBreakpointManager_UnsetUnknownAddressIsNoop(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpHalt))
	bm.Unset(data, 5) // never set; must not panic or mutate
	if data.ReadRAM(5) != 0 {
		t.Errorf("RAM[5] = %d, want 0 (untouched)", data.ReadRAM(5))
	}
}

func TestBreakpointManager_ListIsSorted(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpNoop), vm.Word(vm.OpNoop), vm.Word(vm.OpNoop))

	for _, addr := range []vm.Word{2, 0, 1} {
		if err := bm.Set(data, addr); err != nil {
			t.Fatalf("Set(%d): %v", addr, err)
		}
	}

	got := bm.List()
	want := []vm.Word{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestBreakpointManager_ClearRestoresAllWords(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpNoop), vm.Word(vm.OpHalt))

	if err := bm.Set(data, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := bm.Set(data, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	bm.Clear(data)

	if bm.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after Clear", bm.Count())
	}
	if data.ReadRAM(0) != vm.Word(vm.OpNoop) || data.ReadRAM(1) != vm.Word(vm.OpHalt) {
		t.Error("expected Clear to restore all original words")
	}
}

func TestBreakpointManager_SetIsIdempotent(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpNoop))

	if err := bm.Set(data, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	taggedWord := data.ReadRAM(0)
	if err := bm.Set(data, 0); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	if data.ReadRAM(0) != taggedWord {
		t.Error("expected re-Set on an already-tagged address to be a no-op")
	}
}

// For a program with no 0xCC** words, tagging then untagging every
// instruction address round-trips to a binary-identical RAM image.
func TestBreakpointManager_RoundTripIsTransparent(t *testing.T) {
	bm := NewBreakpointManager()
	data := programData(vm.Word(vm.OpOut), 72, vm.Word(vm.OpOut), 105, vm.Word(vm.OpHalt))
	before := data.Dump()

	for _, addr := range []vm.Word{0, 2, 4} {
		if err := bm.Set(data, addr); err != nil {
			t.Fatalf("Set(%d): %v", addr, err)
		}
	}
	for _, addr := range []vm.Word{0, 2, 4} {
		bm.Unset(data, addr)
	}

	after := data.Dump()
	if string(before) != string(after) {
		t.Error("expected RAM to be byte-identical after a full set/unset round trip")
	}
}
