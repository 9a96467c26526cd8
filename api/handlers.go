package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/lux01/synacor/encoder"
	"github.com/lux01/synacor/tools"
	"github.com/lux01/synacor/vm"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	response := SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}

	writeJSON(w, http.StatusCreated, response)
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	response := map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	response := SessionStatusResponse{
		SessionID: sessionID,
		State:     session.Debugger.CPU.Status.String(),
		PC:        uint16(session.Debugger.CPU.PC),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session destroyed",
	})
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req StepRequest
	_ = readJSON(r, &req) // empty body means count defaults to 1
	n := req.Count
	if n <= 0 {
		n = 1
	}

	session.mu.Lock()
	_, result, stepErr := session.Debugger.CPU.StepN(n)
	session.mu.Unlock()

	s.broadcaster.BroadcastState(sessionID, stateEventFor(session))
	s.broadcastResult(sessionID, session, result)

	if stepErr != nil {
		writeError(w, http.StatusUnprocessableEntity, stepErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Result: resultName(result),
		PC:     uint16(session.Debugger.CPU.PC),
		Status: session.Debugger.CPU.Status.String(),
	})
}

// handleRun handles POST /api/v1/session/{id}/run. It runs until
// halt, breakpoint, or the HTTP request's own context is cancelled
// (e.g. the client disconnects), the networked equivalent of the
// CLI's SIGINT-cancellable run.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.mu.Lock()
	result, runErr := session.Debugger.RunWithContext(r.Context())
	session.mu.Unlock()

	s.broadcaster.BroadcastState(sessionID, stateEventFor(session))
	s.broadcastResult(sessionID, session, result)

	if runErr != nil {
		writeError(w, http.StatusUnprocessableEntity, runErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Result: resultName(result),
		PC:     uint16(session.Debugger.CPU.PC),
		Status: session.Debugger.CPU.Status.String(),
	})
}

// handleRestart handles POST /api/v1/session/{id}/restart
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.mu.Lock()
	execErr := session.Debugger.ExecuteCommand("restart")
	session.Debugger.GetOutput() // discard the CLI-style "Restarted" message
	session.mu.Unlock()

	if execErr != nil {
		writeError(w, http.StatusInternalServerError, execErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Restarted"})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var regs [8]uint16
	for i, v := range session.Debugger.Data.Registers {
		regs[i] = uint16(v)
	}

	writeJSON(w, http.StatusOK, RegistersResponse{
		Registers: regs,
		PC:        uint16(session.Debugger.CPU.PC),
	})
}

// handleSetRegister handles PUT /api/v1/session/{id}/registers
func (s *Server) handleSetRegister(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req SetRegisterRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Register < 0 || req.Register >= vm.NumRegisters {
		writeError(w, http.StatusBadRequest, "Invalid register index")
		return
	}

	session.mu.Lock()
	session.Debugger.Data.Registers[req.Register] = vm.Word(req.Value)
	session.mu.Unlock()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleGetMemory handles GET /api/v1/session/{id}/memory?addr=&count=
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	addr, count := parseAddrCount(r, session.Debugger.CPU.PC, 64)

	words := make([]uint16, count)
	for i := 0; i < count; i++ {
		words[i] = uint16(session.Debugger.Data.ReadRAM(vm.Word(int(addr) + i)))
	}

	text := tools.FormatMemory(session.Debugger.Data.ReadRAM, addr, count, 8)

	writeJSON(w, http.StatusOK, MemoryResponse{
		Address: uint16(addr),
		Words:   words,
		Text:    text,
	})
}

// handleGetDisassembly handles GET /api/v1/session/{id}/list?addr=&count=
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	addr, count := parseAddrCount(r, session.Debugger.CPU.PC, 10)
	lines := encoder.Disassemble(session.Debugger.Data.ReadRAM, addr, count)

	writeJSON(w, http.StatusOK, DisassemblyResponse{Lines: lines})
}

// handleSetBreakpoint handles POST /api/v1/session/{id}/breakpoint
func (s *Server) handleSetBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session.mu.Lock()
	setErr := session.Debugger.Breakpoints.Set(session.Debugger.Data, vm.Word(req.Address))
	session.mu.Unlock()

	if setErr != nil {
		writeError(w, http.StatusBadRequest, setErr.Error())
		return
	}

	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true})
}

// handleDeleteBreakpoint handles DELETE /api/v1/session/{id}/breakpoint/{addr}
func (s *Server) handleDeleteBreakpoint(w http.ResponseWriter, r *http.Request, sessionID, addrStr string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	addr, err := strconv.ParseUint(addrStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address")
		return
	}

	session.mu.Lock()
	session.Debugger.Breakpoints.Unset(session.Debugger.Data, vm.Word(addr))
	session.mu.Unlock()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	addrs := session.Debugger.Breakpoints.List()
	bps := make([]uint16, len(addrs))
	for i, a := range addrs {
		bps[i] = uint16(a)
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: bps})
}

// handleSendStdin handles POST /api/v1/session/{id}/stdin
func (s *Server) handleSendStdin(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req StdinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := session.WriteStdin(req.Data); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleGetStdout handles GET /api/v1/session/{id}/stdout?clear=true.
// It returns everything the program has written via Out since the
// session was created (or since the last clearing read), for clients
// that poll instead of holding a websocket open.
func (s *Server) handleGetStdout(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var output string
	if r.URL.Query().Get("clear") == "true" {
		output = session.stdout.GetBufferAndClear()
	} else {
		output = session.stdout.GetBuffer()
	}

	writeJSON(w, http.StatusOK, StdoutResponse{Output: output})
}

// handleDump handles GET /api/v1/session/{id}/dump
func (s *Server) handleDump(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, DumpResponse{Data: session.Debugger.Data.Dump()})
}

// handleGetHistory handles GET /api/v1/session/{id}/history. A remote
// client has no local line-editor history of its own, so this exposes
// the session's command log directly, unlike the CLI which gets its
// up/down recall from liner.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Commands: session.Debugger.History.GetAll()})
}

// parseAddrCount reads "addr" and "count" query parameters, falling
// back to defaultAddr and defaultCount when absent or malformed.
func parseAddrCount(r *http.Request, defaultAddr vm.Word, defaultCount int) (vm.Word, int) {
	addr := defaultAddr
	count := defaultCount

	if v := r.URL.Query().Get("addr"); v != "" {
		if parsed, err := strconv.ParseUint(v, 0, 32); err == nil {
			addr = vm.Word(int(parsed) % vm.RAMSize)
		}
	}
	if v := r.URL.Query().Get("count"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			count = parsed
		}
	}

	return addr, count
}

func resultName(r vm.RunResult) string {
	switch r {
	case vm.RunHalted:
		return "halted"
	case vm.RunBreakpoint:
		return "breakpoint"
	case vm.RunInterrupted:
		return "interrupted"
	case vm.RunStepLimit:
		return "stepped"
	default:
		return "unknown"
	}
}

// stateEventFor snapshots session's registers, pc, and status for a
// StateEvent broadcast; called right after a step/run so subscribers
// see exactly the state the HTTP response itself reports.
func stateEventFor(session *Session) StateEvent {
	var regs [8]uint16
	for i, v := range session.Debugger.Data.Registers {
		regs[i] = uint16(v)
	}
	return StateEvent{
		State:     session.Debugger.CPU.Status.String(),
		PC:        uint16(session.Debugger.CPU.PC),
		Registers: regs,
	}
}

// broadcastResult turns a step/run RunResult into an ExecutionEvent:
// clients watching for "breakpoint_hit" or "halted" don't need to
// diff consecutive StateEvents to notice one.
func (s *Server) broadcastResult(sessionID string, session *Session, result vm.RunResult) {
	switch result {
	case vm.RunBreakpoint:
		s.broadcaster.BroadcastExecutionEvent(sessionID, "breakpoint_hit", uint16(session.Debugger.CPU.PC), "")
	case vm.RunHalted:
		s.broadcaster.BroadcastExecutionEvent(sessionID, "halted", uint16(session.Debugger.CPU.PC), session.Debugger.CPU.Status.String())
	case vm.RunInterrupted:
		s.broadcaster.BroadcastExecutionEvent(sessionID, "interrupted", uint16(session.Debugger.CPU.PC), "")
	}
}
