package model

import "time"

// Origin identifies who authored a conversation entry.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Entry is a single message in the conversation history. Entries are
// append-only: once created, an entry is never mutated or removed. The
// typed-out animation shown to the client is a partial view of Text,
// never a change to it.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Origin    Origin    `json:"origin"`
	CreatedAt time.Time `json:"created_at"`
	// Sources lists the document names the answer service cited for this
	// entry. Only assistant entries carry sources; empty by default.
	Sources []string `json:"sources,omitempty"`
	// Failed marks an assistant entry that stands in for a real answer
	// after the answer service reported an error.
	Failed bool `json:"failed,omitempty"`
}

// StreamSnapshot is a point-in-time view of one chat session's state,
// returned by the history endpoint.
type StreamSnapshot struct {
	Entries []Entry `json:"entries"`
	// Pending is true while the session is waiting on the answer service.
	Pending bool `json:"pending"`
	// LastError holds the user-facing description of the most recent
	// answer service failure, empty once dismissed or after a new submit.
	LastError string `json:"last_error,omitempty"`
	// ActiveRevealID names the single entry (if any) currently being
	// revealed character by character.
	ActiveRevealID string `json:"active_reveal_id,omitempty"`
}

// StreamChunk is the structure for a single event in the SSE response to
// a chat submission. While the answer is being revealed, VisibleText
// grows by one character per chunk; the final chunk has Done set and
// carries the entry's sources.
type StreamChunk struct {
	SessionID   string   `json:"session_id,omitempty"`
	EntryID     string   `json:"entry_id,omitempty"`
	VisibleText string   `json:"visible_text"`
	Done        bool     `json:"done"`
	Sources     []string `json:"sources,omitempty"`
	Failed      bool     `json:"failed,omitempty"`
	Error       string   `json:"error,omitempty"`
}
