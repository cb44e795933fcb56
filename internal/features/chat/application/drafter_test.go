package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advanced-prompt/internal/features/chat/domain"
	"advanced-prompt/internal/features/chat/infrastructure"
)

// scriptedClient replays deltas, then returns err. With block set it waits
// for ctx instead of finishing.
type scriptedClient struct {
	mu       sync.Mutex
	deltas   []string
	err      error
	block    bool
	requests []infrastructure.CompletionRequest
}

func (c *scriptedClient) StreamCompletion(ctx context.Context, req infrastructure.CompletionRequest, onDelta func(string)) error {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	for _, d := range c.deltas {
		onDelta(d)
	}
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return c.err
}

func (c *scriptedClient) Requests() []infrastructure.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]infrastructure.CompletionRequest(nil), c.requests...)
}

type textBox struct {
	mu      sync.Mutex
	text    string
	history []string
}

func (b *textBox) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *textBox) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.history = append(b.history, text)
}

var testCatalog = domain.Catalog{{Category: "Style", Modifiers: []string{"Oil Painting"}}}

func newTestDrafter(client infrastructure.CompletionClient) (*Drafter, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return NewDrafter(client, NewRoller(testCatalog, 7), logger), hook
}

func TestDrafter_StreamsIntoTarget(t *testing.T) {
	client := &scriptedClient{deltas: []string{"A red", " cat:", "\n on a mat"}}
	d, _ := newTestDrafter(client)
	box := &textBox{text: "cat"}

	res, err := d.Draft(context.Background(), box, DraftOptions{Settings: domain.DefaultSettings()})
	require.NoError(t, err)

	assert.Equal(t, "A red cat on a mat", box.Text())
	assert.Equal(t, "A red cat on a mat", res.Text)
	assert.Equal(t, []string{"", "A red", "A red cat", "A red cat on a mat"}, box.history)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gpt-3.5-turbo", reqs[0].Model)
	assert.Equal(t, 75, reqs[0].MaxTokens)
	assert.Contains(t, reqs[0].Content, "Prompt: cat\n\n")
	assert.Contains(t, reqs[0].Content, "Instructions: "+domain.DefaultInstructions)
	assert.NotContains(t, reqs[0].Content, "Suggested style modifiers")
}

func TestDrafter_RollsModifiers(t *testing.T) {
	client := &scriptedClient{deltas: []string{"x"}}
	d, _ := newTestDrafter(client)

	res, err := d.Draft(context.Background(), &textBox{}, DraftOptions{
		Settings:      domain.DefaultSettings(),
		RollModifiers: true,
		AutoPilot:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Oil Painting"}, res.Tags)
	assert.Contains(t, res.Request, "Suggested style modifiers: \nStyle: Oil Painting\n\n")
	assert.NotContains(t, res.Request, "Prompt:")
	assert.Contains(t, res.Request, domain.DefaultAutoPilotInstructions)
}

func TestDrafter_RestoresTextOnFailure(t *testing.T) {
	client := &scriptedClient{deltas: []string{"half"}, err: errors.New("connection reset")}
	d, hook := newTestDrafter(client)
	box := &textBox{text: "original, prompt"}

	_, err := d.Draft(context.Background(), box, DraftOptions{Settings: domain.DefaultSettings()})
	assert.Error(t, err)
	assert.Equal(t, "original, prompt", box.Text())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestDrafter_CancelDiscardsResult(t *testing.T) {
	client := &scriptedClient{deltas: []string{"partial"}, block: true}
	d, _ := newTestDrafter(client)
	box := &textBox{text: "keep me"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Draft(ctx, box, DraftOptions{Settings: domain.DefaultSettings()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "keep me", box.Text())
}

func TestDrafter_NoClient(t *testing.T) {
	d, _ := newTestDrafter(nil)
	box := &textBox{text: "cat"}

	_, err := d.Draft(context.Background(), box, DraftOptions{Settings: domain.DefaultSettings()})
	assert.ErrorIs(t, err, ErrNoClient)
	assert.Equal(t, "cat", box.Text())
}
