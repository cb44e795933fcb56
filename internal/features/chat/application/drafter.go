package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"advanced-prompt/internal/features/chat/domain"
	"advanced-prompt/internal/features/chat/infrastructure"
)

var (
	ErrNoClient    = errors.New("no completion client configured")
	ErrDraftFailed = errors.New("failed to draft prompt")
)

// PromptTarget is the prompt text a draft streams into.
type PromptTarget interface {
	Text() string
	SetText(text string)
}

// DraftOptions controls a single draft.
type DraftOptions struct {
	Settings      domain.Settings
	RollModifiers bool
	AutoPilot     bool
}

// DraftResult describes a finished draft.
type DraftResult struct {
	Request string   `json:"request"`
	Text    string   `json:"text"`
	Tags    []string `json:"tags,omitempty"`
}

// Drafter asks the completion service to write a prompt and streams the
// answer into a PromptTarget.
type Drafter struct {
	client infrastructure.CompletionClient
	roller *Roller
	log    logrus.FieldLogger
}

// NewDrafter creates a drafter. client may be nil, in which case every draft
// fails with ErrNoClient and leaves the prompt alone.
func NewDrafter(client infrastructure.CompletionClient, roller *Roller, log logrus.FieldLogger) *Drafter {
	return &Drafter{client: client, roller: roller, log: log}
}

// Draft composes the request, streams the completion into target and returns
// the drafted text. The target is cleared when the first chunk arrives. If the
// request fails or ctx is cancelled the target gets its original text back.
func (d *Drafter) Draft(ctx context.Context, target PromptTarget, opts DraftOptions) (DraftResult, error) {
	original := target.Text()

	var roll domain.Roll
	if opts.RollModifiers {
		roll = d.roller.Roll()
	}
	request := domain.ComposeRequest(
		original,
		roll.Block,
		d.roller.Seed(),
		opts.Settings.InstructionsFor(opts.AutoPilot),
		opts.AutoPilot,
	)
	result := DraftResult{Request: request, Tags: roll.Tags}

	if d.client == nil {
		d.log.Warn("Chat requested without a completion client")
		return result, ErrNoClient
	}

	s := opts.Settings
	req := infrastructure.CompletionRequest{
		Model:            s.Model,
		Role:             s.Role,
		Name:             s.Name,
		Content:          request,
		Temperature:      s.Temperature,
		TopP:             s.TopP,
		MaxTokens:        s.MaxTokens,
		PresencePenalty:  s.PresencePenalty,
		FrequencyPenalty: s.FrequencyPenalty,
	}

	var drafted []byte
	started := false
	err := d.client.StreamCompletion(ctx, req, func(delta string) {
		if ctx.Err() != nil {
			return
		}
		if !started {
			started = true
			target.SetText("")
		}
		drafted = append(drafted, domain.SanitizeDelta(delta)...)
		target.SetText(string(drafted))
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		target.SetText(original)
		d.log.WithError(err).Warn("Chat request failed, prompt restored")
		return result, fmt.Errorf("%w: %w", ErrDraftFailed, err)
	}

	result.Text = string(drafted)
	d.log.WithFields(logrus.Fields{
		"autopilot": opts.AutoPilot,
		"tags":      len(roll.Tags),
	}).Info("Prompt drafted")
	return result, nil
}
