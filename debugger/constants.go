package debugger

// Memory Display Constants
const (
	// MemoryDisplayWordsPerLine is the number of words shown per line
	// of the `memory` command's hex dump.
	MemoryDisplayWordsPerLine = 8

	// MemoryDisplayDefaultLines is the default line count for `memory`
	// when the caller doesn't specify one.
	MemoryDisplayDefaultLines = 8
)

// Listing Constants
const (
	// ListDefaultCount is the default instruction count for `list`
	// when the caller doesn't specify one.
	ListDefaultCount = 10
)

// Stack Display Constants
const (
	// StackDisplayMaxWords caps how many stack entries `stack` prints,
	// nearest the top first.
	StackDisplayMaxWords = 32
)
