// Package loader turns externally supplied files (binary image,
// injection JSON, replay text) into the types package vm and package
// debugger operate on. It reads each file from the path the caller
// supplies (see main.go), decodes it, and applies injections to RAM.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lux01/synacor/vm"
)

// LoadBinaryFile reads path and returns its raw bytes for vm.Data.Load.
// It does not itself validate word alignment; vm.Data.Load reports an
// odd-length image as an error.
func LoadBinaryFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the CLI operator
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read binary %q: %w", path, err)
	}
	return data, nil
}

// LoadReplayFile reads a UTF-8 text file and returns its characters in
// file order, ready to seed a debugger's replay buffer (consumed
// front-to-back, one code point per In instruction).
func LoadReplayFile(path string) ([]rune, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the CLI operator
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read replay file %q: %w", path, err)
	}
	return []rune(string(data)), nil
}

// Injection is a single load-time RAM patch: payload is written
// starting at Addr, wrapping modulo vm.RAMSize.
type Injection struct {
	Addr    vm.Word   `json:"addr"`
	Payload []vm.Word `json:"payload"`
}

// LoadInjectionFile reads and decodes an injection JSON file: an array
// of {"addr": number, "payload": [number, ...]} objects.
func LoadInjectionFile(path string) ([]Injection, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the CLI operator
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read injections %q: %w", path, err)
	}
	var injections []Injection
	if err := json.Unmarshal(data, &injections); err != nil {
		return nil, fmt.Errorf("loader: malformed injection JSON in %q: %w", path, err)
	}
	return injections, nil
}

// Apply writes each injection's payload into data's RAM, in array
// order, so later injections win on overlapping addresses.
func Apply(data *vm.Data, injections []Injection) {
	for _, inj := range injections {
		for i, word := range inj.Payload {
			addr := vm.Word((int(inj.Addr) + i) % vm.RAMSize)
			data.WriteRAM(addr, word)
		}
	}
}
