package tools

import (
	"strings"
	"testing"

	"github.com/lux01/synacor/vm"
)

func TestFormatMemory_SingleLine(t *testing.T) {
	ram := []vm.Word{72, 105, 0, 0, 0, 0, 0, 0}
	read := func(addr vm.Word) vm.Word { return ram[int(addr)%len(ram)] }

	out := FormatMemory(read, 0, 8, 8)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	if !strings.HasPrefix(lines[0], "0000:") {
		t.Errorf("line = %q, want prefix %q", lines[0], "0000:")
	}
	if !strings.Contains(lines[0], "0048") || !strings.Contains(lines[0], "0069") {
		t.Errorf("line = %q, want hex words 0048 and 0069", lines[0])
	}
	if !strings.HasSuffix(lines[0], "Hi......") {
		t.Errorf("line = %q, want sidebar ending in %q", lines[0], "Hi......")
	}
}

func TestFormatMemory_MultipleLines(t *testing.T) {
	ram := make([]vm.Word, 16)
	read := func(addr vm.Word) vm.Word { return ram[int(addr)%len(ram)] }

	out := FormatMemory(read, 0, 16, 8)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "0008:") {
		t.Errorf("second line = %q, want prefix %q", lines[1], "0008:")
	}
}

func TestFormatMemory_NonPrintableIsDot(t *testing.T) {
	ram := []vm.Word{0x1234}
	read := func(addr vm.Word) vm.Word { return ram[int(addr)%len(ram)] }

	out := FormatMemory(read, 0, 1, 8)
	if !strings.Contains(out, ".") {
		t.Errorf("out = %q, want a '.' sidebar char for a non-printable word", out)
	}
}
