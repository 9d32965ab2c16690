package assistant

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// maxHistoryTurns bounds per-session history; the oldest turns are dropped
// once the bound is exceeded.
const maxHistoryTurns = 100

// ConversationTurn is one message in a session transcript, oldest-first.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// session holds all per-conversation state. A turn runs under the session
// lock from start to finish, so at most one handler ever sees the pending
// swap slot at a time.
type session struct {
	mu      sync.Mutex
	turns   []ConversationTurn
	pending *PendingSwapContext

	// lastActive is guarded by the orchestrator's map lock, not mu; it is
	// stamped on every lookup and read only by the idle sweep.
	lastActive time.Time
}

func (s *session) append(role, content string) {
	s.turns = append(s.turns, ConversationTurn{Role: role, Content: content})
	if len(s.turns) > maxHistoryTurns {
		s.turns = s.turns[len(s.turns)-maxHistoryTurns:]
	}
}

// history returns a copy of the transcript.
func (s *session) history() []ConversationTurn {
	out := make([]ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// GetHistory returns the session's transcript, oldest-first. An unknown
// session yields an empty list.
func (o *Orchestrator) GetHistory(sessionID string) []ConversationTurn {
	s := o.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history()
}

// ClearHistory drops the session's transcript and any pending action.
func (o *Orchestrator) ClearHistory(sessionID string) {
	s := o.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.pending = nil
}

// ExportHistory writes the session's transcript to path as JSON.
func (o *Orchestrator) ExportHistory(sessionID, path string) error {
	s := o.session(sessionID)
	s.mu.Lock()
	turns := s.history()
	s.mu.Unlock()

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// SetHistory replaces the session's transcript wholesale. Any pending
// action is dropped, since it referred to the old conversation.
func (o *Orchestrator) SetHistory(sessionID string, turns []ConversationTurn) {
	s := o.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = turns
	s.pending = nil
}

// ImportHistory replaces the session's transcript with the contents of a
// previously exported file. Pending actions are not restored.
func (o *Orchestrator) ImportHistory(sessionID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}
	var turns []ConversationTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return fmt.Errorf("failed to decode history file: %w", err)
	}
	o.SetHistory(sessionID, turns)
	return nil
}
