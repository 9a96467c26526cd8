package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/lux01/synacor/config"
	"github.com/lux01/synacor/debugger"
	"github.com/lux01/synacor/loader"
	"github.com/lux01/synacor/vm"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Session represents one active debugging session: a Debugger, the
// pipe its In instructions read stdin from (fed by POST .../stdin),
// and the EventWriter its Out instructions write to (read back via
// GET .../stdout and streamed over the websocket).
type Session struct {
	ID          string
	Debugger    *debugger.Debugger
	CreatedAt   time.Time
	stdinWriter *io.PipeWriter
	stdout      *EventWriter
	mu          sync.Mutex
}

// SessionManager manages multiple concurrent debugging sessions
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	config      *config.Config
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager. Every session it
// creates is configured from the operator's config file (or its
// defaults, if none is found) the same way the CLI debugger is.
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
		config:      cfg,
	}
}

// CreateSession creates a new session with a unique ID, loading req's
// binary and seeding its replay buffer and injections exactly as the
// CLI debugger does.
func (sm *SessionManager) CreateSession(req SessionCreateRequest) (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	injections := make([]loader.Injection, len(req.Injections))
	for i, inj := range req.Injections {
		payload := make([]vm.Word, len(inj.Payload))
		for j, w := range inj.Payload {
			payload[j] = vm.Word(w)
		}
		injections[i] = loader.Injection{
			Addr:    vm.Word(inj.Addr),
			Payload: payload,
		}
	}

	stdinReader, stdinWriter := io.Pipe()
	stdout := NewEventWriter(sm.broadcaster, sessionID, "stdout")
	debugLog("session %s: EventWriter wired to broadcaster", sessionID)

	dbg, err := debugger.NewDebugger(req.Binary, []rune(req.Replay), injections, stdinReader, stdout)
	if err != nil {
		debugLog("session %s: load failed: %v", sessionID, err)
		return nil, err
	}
	dbg.Configure(sm.config)

	session := &Session{
		ID:          sessionID,
		Debugger:    dbg,
		CreatedAt:   time.Now(),
		stdinWriter: stdinWriter,
		stdout:      stdout,
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sm.sessions[sessionID] = session
	debugLog("session %s: created (binary %d bytes, %d injections)", sessionID, len(req.Binary), len(injections))
	return session, nil
}

// WriteStdin feeds data into the session's In stream.
func (s *Session) WriteStdin(data string) error {
	_, err := s.stdinWriter.Write([]byte(data))
	return err
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// DestroySession removes a session by ID
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	if session.stdinWriter != nil {
		_ = session.stdinWriter.Close()
	}

	delete(sm.sessions, sessionID)
	debugLog("session %s: destroyed", sessionID)
	return nil
}

// ListSessions returns a list of all session IDs
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

// generateSessionID generates a unique session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
