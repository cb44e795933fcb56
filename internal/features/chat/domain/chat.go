package domain

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	DefaultAPIURL       = "https://api.openai.com/v1/chat/completions"
	DefaultModel        = "gpt-3.5-turbo"
	DefaultRole         = "user"
	DefaultMaxTokens    = 75
	DefaultInstructions = "Imagine a detailed picture of the prompt. Only respond with the description of the picture in one paragraph."

	DefaultAutoPilotInstructions = "Imagine a detailed picture of a unique fantasy world, character, and/or characters. Only respond with the description of the picture in one paragraph."
)

// Settings are the completion request parameters and instruction texts.
type Settings struct {
	APIURL                string  `json:"api_url"`
	Model                 string  `json:"model"`
	Role                  string  `json:"role"`
	Name                  string  `json:"name"`
	Temperature           float64 `json:"temperature"`
	TopP                  float64 `json:"top_p"`
	MaxTokens             int     `json:"max_tokens"`
	PresencePenalty       float64 `json:"presence_penalty"`
	FrequencyPenalty      float64 `json:"frequency_penalty"`
	Instructions          string  `json:"instructions"`
	AutoPilotInstructions string  `json:"auto_pilot_instructions"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		APIURL:                DefaultAPIURL,
		Model:                 DefaultModel,
		Role:                  DefaultRole,
		Temperature:           1,
		TopP:                  1,
		MaxTokens:             DefaultMaxTokens,
		Instructions:          DefaultInstructions,
		AutoPilotInstructions: DefaultAutoPilotInstructions,
	}
}

// InstructionsFor picks the instruction text for a manual or autopilot draft.
func (s Settings) InstructionsFor(autoPilot bool) string {
	if autoPilot {
		return s.AutoPilotInstructions
	}
	return s.Instructions
}

// NewSeed returns a random eight digit seed.
func NewSeed(r *rand.Rand) int {
	return r.Intn(90000000) + 10000000
}

// ComposeRequest builds the text sent to the completion service. The current
// prompt is left out in autopilot, where the model invents the scene itself.
func ComposeRequest(prompt, modifierBlock string, seed int, instructions string, autoPilot bool) string {
	var b strings.Builder
	if !autoPilot {
		fmt.Fprintf(&b, "Prompt: %s\n\n", prompt)
	}
	b.WriteString(modifierBlock)
	fmt.Fprintf(&b, "Seed:%d\n\nInstructions: %s\n\nResponse: ", seed, instructions)
	return b.String()
}

var deltaCleaner = strings.NewReplacer(":", "", "\n", "")

// SanitizeDelta strips colons and newlines from a streamed completion chunk.
func SanitizeDelta(delta string) string {
	return deltaCleaner.Replace(delta)
}
