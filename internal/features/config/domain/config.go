package domain

import (
	chatdomain "advanced-prompt/internal/features/chat/domain"
	cookdomain "advanced-prompt/internal/features/cook/domain"
)

// AppConfig represents the application configuration.
type AppConfig struct {
	Chat          chatdomain.Settings `json:"chat"`
	RollModifiers bool                `json:"roll_modifiers"`
	Cook          cookdomain.Bounds   `json:"cook"`
}

// DefaultCookBounds are the sweep bounds used when none are configured. The
// sampler stop depends on how many samplers the host offers, so it starts at
// a single sampler.
func DefaultCookBounds() cookdomain.Bounds {
	return cookdomain.Bounds{
		Sampler:        cookdomain.Range{Start: 0, Stop: 0, Step: 1},
		InferenceSteps: cookdomain.Range{Start: 25, Stop: 50, Step: 5},
		GuidanceScale:  cookdomain.Range{Start: 7.5, Stop: 10, Step: 0.5},
		PromptStrength: cookdomain.Range{Start: 0.8, Stop: 1.0, Step: 0.1},
		Loras:          cookdomain.Range{Start: 0.5, Stop: 1.0, Step: 0.1},
	}
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Chat:          chatdomain.DefaultSettings(),
		RollModifiers: true,
		Cook:          DefaultCookBounds(),
	}
}
