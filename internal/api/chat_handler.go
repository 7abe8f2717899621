package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	app_errors "docqa/backend/internal/errors"
	"docqa/backend/internal/model"
	"docqa/backend/internal/reveal"
	"docqa/backend/internal/stream"
)

// ChatHandler handles HTTP requests for the chat sessions. It owns the
// per-session revealers: the stream store only records which entry is the
// reveal target, while the display layer (this handler) runs the
// animation and is responsible for cancelling it on teardown.
type ChatHandler struct {
	sessions   *stream.Manager
	revealStep time.Duration

	mu        sync.Mutex
	revealers map[string]*reveal.Revealer
}

func NewChatHandler(sessions *stream.Manager, revealStep time.Duration) *ChatHandler {
	return &ChatHandler{
		sessions:   sessions,
		revealStep: revealStep,
		revealers:  make(map[string]*reveal.Revealer),
	}
}

// HandleAsk godoc
// @Summary      Ask a question
// @Description  Submits a question to a chat session and streams the answer back over SSE, revealed character by character. Omitting session_id starts a new session; its id is carried on every event.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        askRequest  body  AskRequest  true  "Question and optional session id"
// @Success      200  {object}  model.StreamChunk
// @Router       /v1/chat [post]
func (h *ChatHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendStreamError(w, "Invalid request body")
		return
	}
	if err := validateRequest(&req); err != nil {
		sendStreamError(w, err.Error())
		return
	}

	sessionID := req.SessionID
	var store *stream.Store
	if sessionID == "" {
		sessionID, store = h.sessions.Create()
		slog.Info("Started new chat session", "session_id", sessionID)
	} else {
		var err error
		store, err = h.sessions.Get(sessionID)
		if err != nil {
			sendStreamError(w, "Unknown session. Start a new one by omitting session_id.")
			return
		}
	}

	entry, err := store.Submit(r.Context(), req.Question)
	switch {
	case errors.Is(err, app_errors.ErrEmptyInput):
		// Blank after trimming is a silent no-op: nothing was appended and
		// nothing was asked. End the stream without an error banner.
		_ = writeStreamEvent(w, model.StreamChunk{SessionID: sessionID, Done: true})
		return
	case errors.Is(err, app_errors.ErrConcurrentSubmit):
		sendStreamError(w, "A question is already being answered for this session. Please wait for it to finish.")
		return
	case err != nil:
		sendStreamError(w, "Could not process the question.")
		return
	}

	if entry.Failed {
		// Failure entries are not animated: the apology text appears
		// instantly, together with the banner message.
		_ = writeStreamEvent(w, model.StreamChunk{
			SessionID:   sessionID,
			EntryID:     entry.ID,
			VisibleText: entry.Text,
			Done:        true,
			Failed:      true,
			Error:       store.LastError(),
		})
		return
	}

	h.streamReveal(w, r, sessionID, entry)
}

// streamReveal runs the typed-out animation for one answer entry and
// writes each frame as an SSE event. The reveal is cancelled on client
// disconnect and superseded automatically if a newer answer arrives for
// the same session.
func (h *ChatHandler) streamReveal(w http.ResponseWriter, r *http.Request, sessionID string, entry *model.Entry) {
	rev := h.sessionRevealer(sessionID)
	frames := rev.Set(entry.Text, h.revealStep, true)

	for {
		select {
		case <-r.Context().Done():
			// The display surface is gone; release the timer with it.
			rev.Stop()
			slog.Debug("Client disconnected during reveal", "session_id", sessionID, "entry_id", entry.ID)
			return
		case frame, ok := <-frames:
			if !ok {
				// Superseded by a newer reveal for this session.
				return
			}
			chunk := model.StreamChunk{
				SessionID:   sessionID,
				EntryID:     entry.ID,
				VisibleText: frame.VisibleText,
				Done:        !frame.Revealing,
			}
			if chunk.Done {
				chunk.Sources = entry.Sources
			}
			if err := writeStreamEvent(w, chunk); err != nil {
				rev.Stop()
				return
			}
			if chunk.Done {
				return
			}
		}
	}
}

// HandleHistory godoc
// @Summary      Get session history
// @Description  Returns the full conversation history of a session along with its pending flag, last error, and active reveal target.
// @Tags         Chat
// @Produce      json
// @Param        session_id  query  string  true  "Session ID"
// @Success      200  {object}  model.StreamSnapshot
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/chat/history [get]
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	store, err := h.sessionFromQuery(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, store.Snapshot())
}

// HandleDismissError godoc
// @Summary      Dismiss the error banner
// @Description  Clears the session's last answer service error. No other state changes.
// @Tags         Chat
// @Produce      json
// @Param        session_id  query  string  true  "Session ID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/chat/error [delete]
func (h *ChatHandler) HandleDismissError(w http.ResponseWriter, r *http.Request) {
	store, err := h.sessionFromQuery(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	store.DismissError()
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleEndSession godoc
// @Summary      End a chat session
// @Description  Discards a session's state and cancels any reveal still running for it.
// @Tags         Chat
// @Produce      json
// @Param        sessionID  path  string  true  "Session ID"
// @Success      200  {object}  StatusResponse
// @Router       /v1/chat/sessions/{sessionID} [delete]
func (h *ChatHandler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	h.mu.Lock()
	if rev, ok := h.revealers[sessionID]; ok {
		rev.Stop()
		delete(h.revealers, sessionID)
	}
	h.mu.Unlock()

	h.sessions.Delete(sessionID)
	slog.Info("Ended chat session", "session_id", sessionID)
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// SessionCount reports the number of live sessions, for the stats endpoint.
func (h *ChatHandler) SessionCount() int {
	return h.sessions.Count()
}

// sessionRevealer returns the session's revealer, creating it on first
// use. One revealer per session enforces the single-active-reveal rule:
// a new answer's Set supersedes whatever the session was revealing.
func (h *ChatHandler) sessionRevealer(sessionID string) *reveal.Revealer {
	h.mu.Lock()
	defer h.mu.Unlock()
	rev, ok := h.revealers[sessionID]
	if !ok {
		rev = reveal.New()
		h.revealers[sessionID] = rev
	}
	return rev
}

// sessionFromQuery resolves the store for the session_id query parameter.
func (h *ChatHandler) sessionFromQuery(r *http.Request) (*stream.Store, error) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("%w: query parameter 'session_id' is required", app_errors.ErrValidation)
	}
	return h.sessions.Get(sessionID)
}
