package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mkallio/liftwise/internal/analysis"
	"github.com/mkallio/liftwise/internal/assistant"
	"github.com/mkallio/liftwise/internal/data"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Intent    string `json:"intent"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty \"message\"")
		return
	}

	id := sessionID(r)
	result := s.orch.HandleTurn(r.Context(), id, req.Message)

	if s.store != nil {
		s.persistTurn(r, id, "user", req.Message)
		if result.Response != "" {
			s.persistTurn(r, id, "assistant", result.Response)
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: id,
		Response:  result.Response,
		Intent:    result.Intent.String(),
	})
}

func (s *Server) persistTurn(r *http.Request, id, role, content string) {
	if err := s.store.SaveTurn(r.Context(), id, role, content); err != nil {
		s.log.Warn("failed to persist %s turn for %s: %v", role, id, err)
	}
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"turns":      s.orch.GetHistory(id),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	s.orch.ClearHistory(id)
	if s.store != nil {
		if err := s.store.DeleteSession(r.Context(), id); err != nil {
			s.log.Warn("failed to delete stored session %s: %v", id, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "cleared"})
}

// handleSaveHistory snapshots the in-memory transcript into SQLite.
func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history persistence is disabled")
		return
	}
	id := sessionID(r)
	turns := s.orch.GetHistory(id)

	stored := make([]data.Turn, len(turns))
	for i, t := range turns {
		stored[i] = data.Turn{Role: t.Role, Content: t.Content}
	}
	if err := s.store.ReplaceTranscript(r.Context(), id, stored); err != nil {
		s.log.Error("failed to save session %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to save history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "saved_turns": len(stored)})
}

// handleLoadHistory hydrates the in-memory transcript from SQLite.
func (s *Server) handleLoadHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history persistence is disabled")
		return
	}
	id := sessionID(r)
	stored, err := s.store.GetTranscript(r.Context(), id)
	if err != nil {
		s.log.Error("failed to load session %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	turns := make([]assistant.ConversationTurn, len(stored))
	for i, t := range stored {
		turns[i] = assistant.ConversationTurn{Role: t.Role, Content: t.Content}
	}
	s.orch.SetHistory(id, turns)
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "loaded_turns": len(turns)})
}

func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	workouts, err := s.api.GetRecentWorkouts(r.Context(), limit)
	if err != nil {
		s.log.Error("workout fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch workouts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workouts": workouts})
}

func (s *Server) handleWorkoutCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.api.GetWorkoutCount(r.Context())
	if err != nil {
		s.log.Error("workout count failed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch workout count")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleAnalysisStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	workouts, err := s.api.GetRecentWorkouts(r.Context(), 100)
	if err != nil {
		s.log.Error("workout fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch workouts")
		return
	}

	until := time.Now()
	since := until.AddDate(0, 0, -days)
	report := analysis.Analyze(analysis.FilterByDate(workouts, since, until))
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalysisProgram(w http.ResponseWriter, r *http.Request) {
	program, err := s.api.GetCurrentProgram(r.Context())
	if err != nil {
		s.log.Error("program resolution failed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to resolve current program")
		return
	}
	if program == nil {
		writeError(w, http.StatusNotFound, "no current program could be resolved")
		return
	}

	ranges := make(map[string][]analysis.ExerciseRange, len(program.Routines))
	for _, routine := range program.Routines {
		ranges[routine.Title] = analysis.RoutineRanges(routine)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"program": program,
		"ranges":  ranges,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.store != nil {
		if err := s.store.Health(r.Context()); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
