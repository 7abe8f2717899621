// The `_test` suffix creates a "black box" test package.
// This means the test code lives outside the `api` package and can only access
// its exported identifiers (functions, types, etc.). This is the preferred
// approach for testing the public API of a package.
package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/backend/internal/answer"
	"docqa/backend/internal/answer/mocks"
	"docqa/backend/internal/api"
	"docqa/backend/internal/model"
	"docqa/backend/internal/stream"
)

// setupChatHandler is a test helper function (or "test fixture").
//
// WHY: It encapsulates the repetitive setup logic for creating a handler
// with a real session manager backed by a mocked answer provider. The
// reveal step is kept very short so streamed answers finish quickly.
func setupChatHandler(t *testing.T) (*api.ChatHandler, *stream.Manager, *mocks.MockProvider) {
	provider := mocks.NewMockProvider(t)
	sessions := stream.NewManager(provider, "Welcome!")
	handler := api.NewChatHandler(sessions, time.Millisecond)
	return handler, sessions, provider
}

// addChiURLParams is a helper to simulate how the chi router injects URL
// parameters (e.g., `{sessionID}`) into the request's context.
//
// WHY: Our handlers rely on `chi.URLParam` to extract these values. Without
// this helper, `chi.URLParam` would return an empty string, and our tests
// for routes like `/chat/sessions/{sessionID}` would fail.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// parseChunks extracts the JSON payloads from an SSE response body.
func parseChunks(t *testing.T, body string) []model.StreamChunk {
	var chunks []model.StreamChunk
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var chunk model.StreamChunk
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk))
		chunks = append(chunks, chunk)
	}
	return chunks
}

// TestChatHandler_HandleAsk_Success tests the full streaming happy path:
// the answer must arrive as a sequence of strictly growing prefixes,
// finishing with a done event that carries the sources.
func TestChatHandler_HandleAsk_Success(t *testing.T) {
	handler, _, provider := setupChatHandler(t)
	provider.On("Ask", mock.Anything, "capital of France?").
		Return(&answer.Answer{Text: "Paris", Sources: []string{"doc1"}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"question": "capital of France?"}`))
	rr := httptest.NewRecorder()

	handler.HandleAsk(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	chunks := parseChunks(t, rr.Body.String())
	require.Len(t, chunks, len("Paris"), "one event per revealed character")

	for i, chunk := range chunks {
		assert.Equal(t, "Paris"[:i+1], chunk.VisibleText)
		assert.NotEmpty(t, chunk.SessionID)
		assert.NotEmpty(t, chunk.EntryID)
	}

	final := chunks[len(chunks)-1]
	assert.True(t, final.Done)
	assert.Equal(t, []string{"doc1"}, final.Sources)
	assert.False(t, final.Failed)
}

// TestChatHandler_HandleAsk_ExistingSession verifies that a provided
// session id reuses the same conversation instead of starting a new one.
func TestChatHandler_HandleAsk_ExistingSession(t *testing.T) {
	handler, sessions, provider := setupChatHandler(t)
	sessionID, store := sessions.Create()

	provider.On("Ask", mock.Anything, "hello").
		Return(&answer.Answer{Text: "hi"}, nil).Once()

	body := `{"question": "hello", "session_id": "` + sessionID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.HandleAsk(rr, req)

	chunks := parseChunks(t, rr.Body.String())
	require.NotEmpty(t, chunks)
	assert.Equal(t, sessionID, chunks[0].SessionID)

	// Welcome + user question + assistant answer.
	assert.Len(t, store.Snapshot().Entries, 3)
}

// TestChatHandler_HandleAsk_Failure verifies that an answer service
// failure produces a single, instantly complete event: failure text is
// not animated, and the banner message rides along on the event.
func TestChatHandler_HandleAsk_Failure(t *testing.T) {
	handler, _, provider := setupChatHandler(t)
	provider.On("Ask", mock.Anything, "broken?").
		Return(nil, &answer.Error{Category: answer.CategoryServerError, Status: 500}).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"question": "broken?"}`))
	rr := httptest.NewRecorder()

	handler.HandleAsk(rr, req)

	chunks := parseChunks(t, rr.Body.String())
	require.Len(t, chunks, 1, "failure entries appear in full immediately")

	assert.True(t, chunks[0].Done)
	assert.True(t, chunks[0].Failed)
	assert.NotEmpty(t, chunks[0].VisibleText)
	assert.Contains(t, chunks[0].Error, "internal error")
}

// TestChatHandler_HandleAsk_BlankQuestion verifies the silent no-op: a
// question that is blank after trimming passes the length validation but
// must not create any conversation entry or error banner.
func TestChatHandler_HandleAsk_BlankQuestion(t *testing.T) {
	handler, sessions, _ := setupChatHandler(t)
	sessionID, store := sessions.Create()

	body := `{"question": "   ", "session_id": "` + sessionID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.HandleAsk(rr, req)

	chunks := parseChunks(t, rr.Body.String())
	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].Done)
	assert.Empty(t, chunks[0].EntryID)

	assert.Len(t, store.Snapshot().Entries, 1, "only the welcome entry should remain")
	assert.NotContains(t, rr.Body.String(), "event: error")
}

func TestChatHandler_HandleAsk_InvalidRequests(t *testing.T) {
	t.Run("Invalid JSON", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"question":`))
		rr := httptest.NewRecorder()

		handler.HandleAsk(rr, req)

		// For streaming endpoints, errors are sent over the stream itself.
		assert.Contains(t, rr.Body.String(), "event: error")
		assert.Contains(t, rr.Body.String(), "Invalid request body")
	})

	t.Run("Validation error", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"question": ""}`))
		rr := httptest.NewRecorder()

		handler.HandleAsk(rr, req)

		assert.Contains(t, rr.Body.String(), "Field 'Question' failed on the 'required' tag")
	})

	t.Run("Unknown session", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
			strings.NewReader(`{"question": "hi", "session_id": "no-such-session"}`))
		rr := httptest.NewRecorder()

		handler.HandleAsk(rr, req)

		assert.Contains(t, rr.Body.String(), "event: error")
		assert.Contains(t, rr.Body.String(), "Unknown session")
	})
}

// TestChatHandler_HandleHistory tests the GET /v1/chat/history endpoint.
func TestChatHandler_HandleHistory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, sessions, _ := setupChatHandler(t)
		sessionID, _ := sessions.Create()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history?session_id="+sessionID, nil)
		rr := httptest.NewRecorder()

		handler.HandleHistory(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var snap model.StreamSnapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
		require.Len(t, snap.Entries, 1)
		assert.Equal(t, model.OriginAssistant, snap.Entries[0].Origin)
		assert.False(t, snap.Pending)
	})

	t.Run("Failure - missing session_id", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil)
		rr := httptest.NewRecorder()

		handler.HandleHistory(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - unknown session", func(t *testing.T) {
		handler, _, _ := setupChatHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history?session_id=nope", nil)
		rr := httptest.NewRecorder()

		handler.HandleHistory(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

// TestChatHandler_HandleDismissError tests the DELETE /v1/chat/error endpoint.
func TestChatHandler_HandleDismissError(t *testing.T) {
	handler, sessions, provider := setupChatHandler(t)
	sessionID, store := sessions.Create()

	// Put the session into an error state first.
	provider.On("Ask", mock.Anything, "boom").
		Return(nil, &answer.Error{Category: answer.CategoryNoResponse}).Once()
	_, err := store.Submit(context.Background(), "boom")
	require.NoError(t, err)
	require.NotEmpty(t, store.LastError())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/chat/error?session_id="+sessionID, nil)
	rr := httptest.NewRecorder()

	handler.HandleDismissError(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, store.LastError())
}

// TestChatHandler_HandleEndSession tests the DELETE /v1/chat/sessions/{sessionID} endpoint.
func TestChatHandler_HandleEndSession(t *testing.T) {
	handler, sessions, _ := setupChatHandler(t)
	sessionID, _ := sessions.Create()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/chat/sessions/"+sessionID, nil)
	req = addChiURLParams(req, map[string]string{"sessionID": sessionID})
	rr := httptest.NewRecorder()

	handler.HandleEndSession(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	_, err := sessions.Get(sessionID)
	assert.Error(t, err, "the session state must be discarded")
	assert.Equal(t, 0, handler.SessionCount())
}
