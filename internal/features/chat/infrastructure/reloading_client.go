package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// URLSource returns the chat API URL currently configured.
type URLSource func() (string, error)

// reloadingClient rebuilds its go-openai client whenever the configured API
// URL changes, so edits to the app config apply to the next request.
type reloadingClient struct {
	apiKey   string
	override string
	source   URLSource
	log      logrus.FieldLogger

	mu      sync.Mutex
	url     string
	current CompletionClient
}

// NewReloadingClient creates a completion client that reads its URL from
// source before every request. A non-empty override (OPENAI_BASE_URL) always
// wins over the configured URL.
func NewReloadingClient(apiKey, override string, source URLSource, log logrus.FieldLogger) (CompletionClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &reloadingClient{apiKey: apiKey, override: override, source: source, log: log}, nil
}

func (c *reloadingClient) StreamCompletion(ctx context.Context, req CompletionRequest, onDelta func(delta string)) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	return client.StreamCompletion(ctx, req, onDelta)
}

func (c *reloadingClient) client() (CompletionClient, error) {
	url := c.override
	if url == "" {
		configured, err := c.source()
		if err != nil {
			return nil, fmt.Errorf("failed to read chat api url: %w", err)
		}
		url = configured
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && url == c.url {
		return c.current, nil
	}
	client, err := NewOpenAIClient(ClientConfig{APIKey: c.apiKey, APIURL: url}, c.log)
	if err != nil {
		return nil, err
	}
	c.log.WithField("api_url", BaseURL(url)).Info("Chat client configured")
	c.url, c.current = url, client
	return client, nil
}
