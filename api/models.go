package api

import (
	"time"

	"github.com/lux01/synacor/encoder"
)

// SessionCreateRequest represents a request to create a new session.
// Binary is the raw little-endian Synacor image; Replay and
// Injections seed the same In-bypass and load-time RAM patches the
// CLI debugger supports.
type SessionCreateRequest struct {
	Binary     []byte      `json:"binary"`
	Replay     string      `json:"replay,omitempty"`
	Injections []Injection `json:"injections,omitempty"`
}

// Injection mirrors loader.Injection for the wire, keeping the API
// package's JSON surface independent of package loader's Go types.
type Injection struct {
	Addr    uint16   `json:"addr"`
	Payload []uint16 `json:"payload"`
}

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint16 `json:"pc"`
}

// StepRequest represents a request to single-step a session
type StepRequest struct {
	Count int `json:"count,omitempty"` // default 1
}

// RunResponse represents the terminal state after `run`
type RunResponse struct {
	Result string `json:"result"` // "halted", "breakpoint", "interrupted", or "stepped" (step only)
	PC     uint16 `json:"pc"`
	Status string `json:"status"`
}

// RegistersResponse represents the current register state
type RegistersResponse struct {
	Registers [8]uint16 `json:"registers"`
	PC        uint16    `json:"pc"`
}

// SetRegisterRequest represents a request to write one register
type SetRegisterRequest struct {
	Register int    `json:"register"`
	Value    uint16 `json:"value"`
}

// MemoryResponse represents a hex/printable-sidebar dump of RAM
type MemoryResponse struct {
	Address uint16   `json:"address"`
	Words   []uint16 `json:"words"`
	Text    string   `json:"text"` // pre-rendered FormatMemory output
}

// DisassemblyResponse represents disassembled instructions
type DisassemblyResponse struct {
	Lines []encoder.Line `json:"lines"`
}

// BreakpointRequest represents a request to add/remove a breakpoint
type BreakpointRequest struct {
	Address uint16 `json:"address"`
}

// BreakpointsResponse represents a list of breakpoints
type BreakpointsResponse struct {
	Breakpoints []uint16 `json:"breakpoints"`
}

// StdinRequest represents data to feed the session's input stream,
// one scalar value per rune, consumed front-to-back by In
// instructions exactly like a loaded replay file.
type StdinRequest struct {
	Data string `json:"data"`
}

// StdoutResponse carries the session's accumulated Out-instruction
// output, the polling counterpart to the websocket's OutputEvent
// stream.
type StdoutResponse struct {
	Output string `json:"output"`
}

// DumpResponse carries a RAM image as base64 via the standard
// []byte-is-base64 JSON encoding.
type DumpResponse struct {
	Data []byte `json:"data"`
}

// HistoryResponse represents the session's command log
type HistoryResponse struct {
	Commands []string `json:"commands"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent represents a state change event
type StateEvent struct {
	State     string    `json:"state"`
	PC        uint16    `json:"pc"`
	Registers [8]uint16 `json:"registers"`
}

// OutputEvent represents console output
type OutputEvent struct {
	Stream  string `json:"stream"`  // "stdout"
	Content string `json:"content"` // Output content
}

// ExecutionEvent represents execution events like breakpoints
type ExecutionEvent struct {
	Event   string `json:"event"` // "breakpoint_hit", "halted", "interrupted"
	Address uint16 `json:"address,omitempty"`
	Message string `json:"message,omitempty"`
}
