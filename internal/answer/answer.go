// Package answer defines the boundary to the external answer service: the
// collaborator that turns a user question into an answer with source
// citations. The retrieval pipeline behind it (embeddings, vector search,
// generation) lives entirely on the other side of this boundary.
package answer

import "context"

// Answer is a successful response from the answer service.
type Answer struct {
	// Text is the generated answer. May be empty when the service had
	// nothing useful to say; callers substitute their own fallback text.
	Text string
	// Sources lists the names of the documents the answer was drawn from,
	// in citation order. Empty when the service cited nothing.
	Sources []string
}

// Provider is the contract every answer service implementation satisfies.
// Ask blocks until the service responds or the context is cancelled.
type Provider interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}

// Category classifies an answer service failure. Each category carries a
// fixed, user-facing message; the stream store copies that message into
// the session's error banner and into the failed assistant entry.
type Category string

const (
	CategoryBadRequest   Category = "bad-request"
	CategoryUnauthorized Category = "unauthorized"
	CategoryForbidden    Category = "forbidden"
	CategoryNotFound     Category = "not-found"
	CategoryServerError  Category = "server-error"
	// CategoryNoResponse means the request was sent but no response ever
	// arrived (network unreachable, connection refused, timeout).
	CategoryNoResponse Category = "no-response"
	// CategoryRequestSetup means the request could not even be constructed.
	CategoryRequestSetup Category = "request-setup"
)

// messages maps each failure category to its fixed user-facing text.
var messages = map[Category]string{
	CategoryBadRequest:   "The question could not be processed. Please rephrase it and try again.",
	CategoryUnauthorized: "You are not authorized to use the answer service.",
	CategoryForbidden:    "Access to the answer service is not allowed.",
	CategoryNotFound:     "The answer service could not be found.",
	CategoryServerError:  "The answer service ran into an internal error. Please try again later.",
	CategoryNoResponse:   "No response from the answer service. Please check your connection and try again.",
	CategoryRequestSetup: "The request could not be prepared. Please try again.",
}

// Error is a categorized answer service failure.
type Error struct {
	Category Category
	// Status is the HTTP status that produced this error, or zero when no
	// response was received at all.
	Status int
	// Cause is the underlying transport or decoding error, if any. It is
	// kept for logs only and never shown to the user.
	Cause error
}

// Error returns the fixed user-facing message for the failure's category.
func (e *Error) Error() string {
	if msg, ok := messages[e.Category]; ok {
		return msg
	}
	return messages[CategoryServerError]
}

func (e *Error) Unwrap() error { return e.Cause }

// Classify maps an HTTP status code to a failure category. Statuses the
// taxonomy does not name collapse into the nearest generic category.
func Classify(status int) Category {
	switch {
	case status == 400:
		return CategoryBadRequest
	case status == 401:
		return CategoryUnauthorized
	case status == 403:
		return CategoryForbidden
	case status == 404:
		return CategoryNotFound
	case status >= 500:
		return CategoryServerError
	default:
		return CategoryBadRequest
	}
}
