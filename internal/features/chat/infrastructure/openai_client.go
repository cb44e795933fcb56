package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// openAIClient streams chat completions through go-openai.
type openAIClient struct {
	client *openai.Client
	log    logrus.FieldLogger
}

// NewOpenAIClient creates a completion client. An API key is required.
func NewOpenAIClient(cfg ClientConfig, log logrus.FieldLogger) (CompletionClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if base := BaseURL(cfg.APIURL); base != "" {
		oc.BaseURL = base
	}
	return &openAIClient{client: openai.NewClientWithConfig(oc), log: log}, nil
}

// BaseURL turns a chat completions endpoint into the API base go-openai
// expects. Anything else is returned without a trailing slash.
func BaseURL(apiURL string) string {
	u := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	return strings.TrimSuffix(u, "/chat/completions")
}

// StreamCompletion sends req with streaming on and forwards every content delta.
func (c *openAIClient) StreamCompletion(ctx context.Context, req CompletionRequest, onDelta func(delta string)) error {
	role := req.Role
	if role == "" {
		role = openai.ChatMessageRoleUser
	}
	c.log.WithFields(logrus.Fields{
		"model":      req.Model,
		"max_tokens": req.MaxTokens,
	}).Debug("Requesting completion stream")

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    role,
			Content: req.Content,
			Name:    req.Name,
		}},
		MaxTokens:        req.MaxTokens,
		Temperature:      float32(req.Temperature),
		TopP:             float32(req.TopP),
		PresencePenalty:  float32(req.PresencePenalty),
		FrequencyPenalty: float32(req.FrequencyPenalty),
		Stream:           true,
	})
	if err != nil {
		return fmt.Errorf("failed to create completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read completion stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			onDelta(delta)
		}
	}
}
