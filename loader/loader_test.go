package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lux01/synacor/vm"
)

func TestLoadBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bin")
	if err := os.WriteFile(path, []byte{19, 0, 72, 0}, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := LoadBinaryFile(path)
	if err != nil {
		t.Fatalf("LoadBinaryFile: %v", err)
	}
	if len(data) != 4 {
		t.Fatalf("len(data) = %d, want 4", len(data))
	}
}

func TestLoadBinaryFile_MissingFile(t *testing.T) {
	if _, err := LoadBinaryFile(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatal("expected an error reading a missing file")
	}
}

func TestLoadReplayFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replay.txt")
	if err := os.WriteFile(path, []byte("ab\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	runes, err := LoadReplayFile(path)
	if err != nil {
		t.Fatalf("LoadReplayFile: %v", err)
	}
	if string(runes) != "ab\n" {
		t.Fatalf("runes = %q, want %q", string(runes), "ab\n")
	}
}

func TestLoadInjectionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "injections.json")
	contents := `[{"addr": 10, "payload": [1, 2, 3]}, {"addr": 11, "payload": [99]}]`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	injections, err := LoadInjectionFile(path)
	if err != nil {
		t.Fatalf("LoadInjectionFile: %v", err)
	}
	if len(injections) != 2 {
		t.Fatalf("len(injections) = %d, want 2", len(injections))
	}
	if injections[0].Addr != 10 || len(injections[0].Payload) != 3 {
		t.Fatalf("injections[0] = %+v", injections[0])
	}
}

func TestLoadInjectionFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadInjectionFile(path); err == nil {
		t.Fatal("expected an error decoding malformed injection JSON")
	}
}

func TestApply_LaterInjectionWinsOnOverlap(t *testing.T) {
	data := vm.NewData()
	injections := []Injection{
		{Addr: 5, Payload: []vm.Word{1, 2, 3}},
		{Addr: 6, Payload: []vm.Word{99}},
	}
	Apply(data, injections)

	if data.ReadRAM(5) != 1 {
		t.Errorf("RAM[5] = %d, want 1", data.ReadRAM(5))
	}
	if data.ReadRAM(6) != 99 {
		t.Errorf("RAM[6] = %d, want 99 (later injection wins)", data.ReadRAM(6))
	}
	if data.ReadRAM(7) != 3 {
		t.Errorf("RAM[7] = %d, want 3", data.ReadRAM(7))
	}
}

func TestApply_WrapsModuloRAMSize(t *testing.T) {
	data := vm.NewData()
	Apply(data, []Injection{{Addr: vm.RAMSize - 1, Payload: []vm.Word{7, 8}}})
	if data.ReadRAM(vm.RAMSize - 1) != 7 {
		t.Errorf("RAM[RAMSize-1] = %d, want 7", data.ReadRAM(vm.RAMSize-1))
	}
	if data.ReadRAM(0) != 8 {
		t.Errorf("RAM[0] = %d, want 8 (wrapped)", data.ReadRAM(0))
	}
}
