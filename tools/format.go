// Package tools holds small formatting helpers shared between the
// REPL and the HTTP API, kept separate from package debugger so
// neither the command dispatch nor the transport layer owns display
// logic outright.
package tools

import (
	"fmt"
	"strings"

	"github.com/lux01/synacor/vm"
)

// FormatMemory renders a hex dump of count words of RAM starting at
// addr, wordsPerLine words per line, with a printable-character
// sidebar (matching the `memory` command's "hex-dump ... with
// printable-character sidebar" requirement). Non-printable or
// non-ASCII words render as '.' in the sidebar.
func FormatMemory(read func(vm.Word) vm.Word, addr vm.Word, count int, wordsPerLine int) string {
	if wordsPerLine <= 0 {
		wordsPerLine = 8
	}

	var b strings.Builder
	for i := 0; i < count; i += wordsPerLine {
		lineAddr := vm.Word((int(addr) + i) % vm.RAMSize)
		fmt.Fprintf(&b, "%04x:", lineAddr)

		remaining := count - i
		lineLen := wordsPerLine
		if remaining < lineLen {
			lineLen = remaining
		}

		sidebar := make([]byte, lineLen)
		for j := 0; j < lineLen; j++ {
			word := read(vm.Word((int(addr) + i + j) % vm.RAMSize))
			fmt.Fprintf(&b, " %04x", word)
			sidebar[j] = printableByte(word)
		}
		for j := lineLen; j < wordsPerLine; j++ {
			b.WriteString("     ")
		}

		b.WriteString("  ")
		b.Write(sidebar)
		b.WriteByte('\n')
	}
	return b.String()
}

func printableByte(w vm.Word) byte {
	if w >= 0x20 && w < 0x7f {
		return byte(w)
	}
	return '.'
}
