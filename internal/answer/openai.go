package answer

import (
	"context"
	"errors"

	goopenai "github.com/sashabaranov/go-openai"
)

// answerSystemPrompt keeps direct model answers in the same shape the
// answer service produces: short, grounded answers without preamble.
const answerSystemPrompt = "You are a document question-answering assistant. " +
	"Answer the user's question concisely. If you do not know the answer, say so."

// OpenAIProvider answers questions by calling an OpenAI-compatible chat
// completion API directly, with no retrieval step. It is used when no
// standalone answer service is deployed. Direct completions carry no
// document citations, so Sources is always empty.
type OpenAIProvider struct {
	client *goopenai.Client
	model  string
}

// NewOpenAIProvider builds a provider for the given API key and model.
// baseURL may be empty to use the public OpenAI endpoint, or point at any
// compatible server.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Ask(ctx context.Context, question string) (*Answer, error) {
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		// An empty choice list is a well-formed but useless response; the
		// store substitutes its fallback text for the empty answer.
		return &Answer{}, nil
	}

	return &Answer{Text: resp.Choices[0].Message.Content, Sources: nil}, nil
}

// classifyOpenAIError translates go-openai errors into the shared failure
// taxonomy. API errors carry the upstream status; anything else means the
// request never got a response.
func classifyOpenAIError(err error) *Error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Category: Classify(apiErr.HTTPStatusCode), Status: apiErr.HTTPStatusCode, Cause: err}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Category: Classify(reqErr.HTTPStatusCode), Status: reqErr.HTTPStatusCode, Cause: err}
	}

	return &Error{Category: CategoryNoResponse, Cause: err}
}
