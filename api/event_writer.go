package api

import (
	"bytes"
	"io"
	"sync"
)

// EventWriter is the io.Writer a Session's Debugger writes its
// program's Out-instruction bytes to: every Write both buffers the
// bytes (read back by GET .../stdout) and broadcasts them as an
// OutputEvent to any WebSocket client subscribed to this session.
type EventWriter struct {
	broadcaster *Broadcaster
	sessionID   string
	stream      string // always "stdout": Out has no stderr-equivalent in this architecture
	buffer      *bytes.Buffer
	mutex       sync.Mutex
}

// NewEventWriter returns a writer that feeds sessionID's OutputEvent
// stream on broadcaster, tagging every chunk with stream (currently
// always "stdout").
func NewEventWriter(broadcaster *Broadcaster, sessionID string, stream string) *EventWriter {
	return &EventWriter{
		broadcaster: broadcaster,
		sessionID:   sessionID,
		stream:      stream,
		buffer:      &bytes.Buffer{},
	}
}

// Write satisfies io.Writer: p is one Out instruction's scalar
// character, already UTF-8 encoded by Debugger.output. It accumulates
// in the session's buffer and fans out as an OutputEvent in the same
// call, so program order is preserved for both readers.
func (w *EventWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.broadcaster != nil {
		w.broadcaster.BroadcastOutput(w.sessionID, w.stream, string(p))
	}
	return n, err
}

// GetBufferAndClear returns the session's accumulated stdout and
// clears the buffer.
func (w *EventWriter) GetBufferAndClear() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

// GetBuffer returns the session's accumulated stdout without clearing it.
func (w *EventWriter) GetBuffer() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.buffer.String()
}

var _ io.Writer = (*EventWriter)(nil)
