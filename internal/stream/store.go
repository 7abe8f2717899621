// Package stream holds the conversation state of a chat session: the
// append-only message history, the in-flight request flag, the last
// answer service failure, and the single entry currently being revealed.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"docqa/backend/internal/answer"
	app_errors "docqa/backend/internal/errors"
	"docqa/backend/internal/model"
)

const (
	// fallbackAnswerText replaces an answer the service returned empty.
	fallbackAnswerText = "I couldn't find an answer to that in the uploaded documents."

	// apologyText is the fixed content of the failed assistant entry that
	// is appended when the answer service reports an error.
	apologyText = "Sorry, something went wrong while answering your question. Please try again."
)

// Store is the message stream of one chat session. All mutation goes
// through its mutex; entries are append-only and never change after
// creation. Exactly one submission may be in flight at a time.
type Store struct {
	mu       sync.Mutex
	provider answer.Provider

	nextID         int64
	entries        []model.Entry
	pending        bool
	lastError      string
	activeRevealID string
}

// NewStore creates a session store seeded with a synthetic assistant
// welcome entry. The welcome entry is never the reveal target; it renders
// in full from the start.
func NewStore(provider answer.Provider, welcomeText string) *Store {
	s := &Store{provider: provider}
	s.appendLocked(model.Entry{
		Text:   welcomeText,
		Origin: model.OriginAssistant,
	})
	return s
}

// Submit trims and records the user's question, asks the answer service,
// and appends the assistant's reply.
//
// A blank question returns ErrEmptyInput and leaves the stream untouched.
// A question submitted while another is pending returns
// ErrConcurrentSubmit, also leaving the stream untouched. Answer service
// failures do NOT propagate as errors: they are converted into a failed
// apology entry plus a last-error banner, and Submit returns that entry.
// The session stays usable after a failure.
//
// Failed entries are never made the reveal target; error text appears
// instantly rather than animated. Successful entries become the new
// active reveal target, superseding any prior one.
func (s *Store) Submit(ctx context.Context, text string) (*model.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, app_errors.ErrEmptyInput
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, app_errors.ErrConcurrentSubmit
	}
	s.pending = true
	s.lastError = ""
	s.appendLocked(model.Entry{Text: text, Origin: model.OriginUser})
	s.mu.Unlock()

	// The sole suspension point: the store is unlocked while waiting so
	// reads (history, error dismissal) remain possible. The pending flag
	// keeps a second Submit out in the meantime.
	ans, err := s.provider.Ask(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	if err != nil {
		s.lastError = userMessage(err)
		slog.Warn("Answer service request failed", "error", err)
		entry := s.appendLocked(model.Entry{
			Text:   apologyText,
			Origin: model.OriginAssistant,
			Failed: true,
		})
		return &entry, nil
	}

	answerText := strings.TrimSpace(ans.Text)
	if answerText == "" {
		answerText = fallbackAnswerText
	}

	entry := s.appendLocked(model.Entry{
		Text:    answerText,
		Origin:  model.OriginAssistant,
		Sources: ans.Sources,
	})
	s.activeRevealID = entry.ID
	return &entry, nil
}

// DismissError clears the last-error banner. No other state changes.
func (s *Store) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// Snapshot returns a copy of the current stream state for the client.
func (s *Store) Snapshot() model.StreamSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]model.Entry, len(s.entries))
	copy(entries, s.entries)
	return model.StreamSnapshot{
		Entries:        entries,
		Pending:        s.pending,
		LastError:      s.lastError,
		ActiveRevealID: s.activeRevealID,
	}
}

// Pending reports whether a submission is currently waiting on the
// answer service.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastError returns the user-facing description of the most recent answer
// service failure, or the empty string.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// ActiveRevealID returns the id of the entry currently targeted for
// incremental reveal, or the empty string. The store only records the
// target; the display layer owns the animation itself.
func (s *Store) ActiveRevealID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRevealID
}

// appendLocked assigns the next monotonically increasing id and appends
// the entry. Callers must hold s.mu (NewStore is exempt: the store is not
// yet shared).
func (s *Store) appendLocked(entry model.Entry) model.Entry {
	s.nextID++
	entry.ID = strconv.FormatInt(s.nextID, 10)
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, entry)
	return entry
}

// userMessage extracts the fixed user-facing message from an answer
// service failure. Errors outside the taxonomy fall back to a generic
// description rather than leaking internals.
func userMessage(err error) string {
	var ansErr *answer.Error
	if errors.As(err, &ansErr) {
		return ansErr.Error()
	}
	return "The answer service request failed. Please try again."
}
