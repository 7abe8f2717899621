package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the answer service over HTTP. It is the default
// Provider implementation: a thin JSON client that converts every
// transport- or status-level failure into a categorized *Error.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 60 * time.Second},
		url:    url,
	}
}

// askRequest is the wire format of a question sent to the answer service.
type askRequest struct {
	Question string `json:"question"`
}

// askResponse is the wire format of a successful answer. Some deployments
// return the answer under "message" instead of "answer"; both are accepted.
type askResponse struct {
	Answer  string       `json:"answer"`
	Message string       `json:"message"`
	Sources []sourceInfo `json:"sources"`
}

type sourceInfo struct {
	DocumentName string `json:"document_name"`
	Content      string `json:"content,omitempty"`
}

// Ask sends the question and decodes the answer. Failures are reported as
// *Error: a request that cannot be built is CategoryRequestSetup, a request
// that never gets a response is CategoryNoResponse, and every non-2xx
// status is classified by Classify.
func (c *Client) Ask(ctx context.Context, question string) (*Answer, error) {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return nil, &Error{Category: CategoryRequestSetup, Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return nil, &Error{Category: CategoryRequestSetup, Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Category: CategoryNoResponse, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain the body so the connection can be reused; its content is
		// not part of the user-facing message.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Category: Classify(resp.StatusCode), Status: resp.StatusCode}
	}

	var decoded askResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &Error{
			Category: CategoryServerError,
			Status:   resp.StatusCode,
			Cause:    fmt.Errorf("could not decode answer service response: %w", err),
		}
	}

	text := decoded.Answer
	if text == "" {
		text = decoded.Message
	}

	sources := make([]string, 0, len(decoded.Sources))
	for _, src := range decoded.Sources {
		sources = append(sources, src.DocumentName)
	}

	return &Answer{Text: text, Sources: sources}, nil
}
