package infrastructure

import (
	"context"
	"errors"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

// CompletionRequest is one single-message chat completion.
type CompletionRequest struct {
	Model            string  `json:"model"`
	Role             string  `json:"role"`
	Name             string  `json:"name,omitempty"`
	Content          string  `json:"content"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	MaxTokens        int     `json:"max_tokens"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

// CompletionClient streams a completion, handing every content chunk to
// onDelta in order. It returns once the stream ends or fails.
type CompletionClient interface {
	StreamCompletion(ctx context.Context, req CompletionRequest, onDelta func(delta string)) error
}

// ClientConfig holds the connection settings of a completion client.
type ClientConfig struct {
	APIKey string `json:"api_key"`
	// APIURL is either the API base or the full chat completions endpoint.
	APIURL string `json:"api_url"`
}
