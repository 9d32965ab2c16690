package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/liftwise/internal/assistant"
	"github.com/mkallio/liftwise/internal/config"
	"github.com/mkallio/liftwise/internal/data"
	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/llm"
)

// fakeHevy satisfies both the orchestrator's and the server's view of the
// Hevy client.
type fakeHevy struct {
	workouts []hevy.Workout
	program  *hevy.Program
}

func (f *fakeHevy) GetRecentWorkouts(_ context.Context, n int) ([]hevy.Workout, error) {
	if n > len(f.workouts) {
		n = len(f.workouts)
	}
	return f.workouts[:n], nil
}

func (f *fakeHevy) GetWorkoutCount(context.Context) (int, error) { return len(f.workouts), nil }

func (f *fakeHevy) GetCurrentProgram(context.Context) (*hevy.Program, error) {
	return f.program, nil
}

func (f *fakeHevy) GetAllRoutines(context.Context) ([]hevy.Routine, error) { return nil, nil }

func (f *fakeHevy) GetAllExerciseTemplates(context.Context) ([]hevy.ExerciseTemplate, error) {
	return nil, nil
}

func (f *fakeHevy) GetRoutineFolders(context.Context, int) (*hevy.FolderPage, error) {
	return &hevy.FolderPage{}, nil
}

func (f *fakeHevy) FindRoutineByTitle(context.Context, string) (*hevy.Routine, error) {
	return nil, hevy.ErrNotFound
}

func (f *fakeHevy) UpdateRoutine(context.Context, string, hevy.RoutineUpdate) error { return nil }

func newTestServer(t *testing.T, store *data.Store) (*Server, *fakeHevy) {
	t.Helper()

	start := time.Now().Add(-24 * time.Hour)
	api := &fakeHevy{
		workouts: []hevy.Workout{{ID: "w1", Title: "Push Day", StartTime: &start}},
	}
	provider := llm.NewMockProvider().
		WithResponse("intent key:", "GREETING").
		WithFallback("hello there")
	orch := assistant.New(provider, api, assistant.NewTemplateCache(api))
	return New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, orch, api, store), api
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestChatEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/api/chat", `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GREETING", body["intent"])
	assert.NotEmpty(t, body["session_id"])
	assert.NotEmpty(t, body["response"])
}

func TestChatEndpointBadRequest(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/api/chat", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatSessionHeaderAndHistory(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()
	headers := map[string]string{"X-Session-ID": "s1"}

	_, body := doJSON(t, h, http.MethodPost, "/api/chat", `{"message":"hi"}`, headers)
	assert.Equal(t, "s1", body["session_id"])

	_, body = doJSON(t, h, http.MethodGet, "/api/chat/history", "", headers)
	turns, ok := body["turns"].([]interface{})
	require.True(t, ok)
	assert.Len(t, turns, 2)

	rec, _ := doJSON(t, h, http.MethodDelete, "/api/chat/history", "", headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, body = doJSON(t, h, http.MethodGet, "/api/chat/history", "", headers)
	assert.Empty(t, body["turns"])
}

func TestSaveAndLoadHistory(t *testing.T) {
	store, err := data.NewDB(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	s, _ := newTestServer(t, store)
	h := s.Handler()
	headers := map[string]string{"X-Session-ID": "s1"}

	doJSON(t, h, http.MethodPost, "/api/chat", `{"message":"hi"}`, headers)

	rec, body := doJSON(t, h, http.MethodPost, "/api/chat/save", "", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["saved_turns"])

	s.orch.ClearHistory("s1")

	rec, body = doJSON(t, h, http.MethodPost, "/api/chat/load", "", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["loaded_turns"])

	_, body = doJSON(t, h, http.MethodGet, "/api/chat/history", "", headers)
	turns := body["turns"].([]interface{})
	assert.Len(t, turns, 2)
}

func TestSaveHistoryWithoutStore(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/api/chat/save", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWorkoutEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec, body := doJSON(t, h, http.MethodGet, "/api/workouts", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["workouts"], 1)

	rec, body = doJSON(t, h, http.MethodGet, "/api/workouts/count", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestAnalysisStatsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/api/analysis/stats?days=7", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total_workouts"])
}

func TestAnalysisProgramEndpoint(t *testing.T) {
	s, api := newTestServer(t, nil)
	h := s.Handler()

	rec, _ := doJSON(t, h, http.MethodGet, "/api/analysis/program", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	api.program = &hevy.Program{
		Folder:   &hevy.Folder{ID: 1, Title: "PPL Split"},
		Routines: []hevy.Routine{{ID: "r1", Title: "Push Day"}},
	}
	rec, body := doJSON(t, h, http.MethodGet, "/api/analysis/program", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["program"])
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec, body := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "liftwise_")
}

func TestChatWebsocket(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/chat/ws?session_id=ws1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsMessage{Message: "hi"}))

	var resp chatResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "ws1", resp.SessionID)
	assert.Equal(t, "GREETING", resp.Intent)
	assert.NotEmpty(t, resp.Response)
}
