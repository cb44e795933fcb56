package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidBounds = errors.New("invalid sweep bounds")

// Range bounds one sweep dimension. Stop is inclusive.
type Range struct {
	Start float64 `json:"start" yaml:"start"`
	Stop  float64 `json:"stop" yaml:"stop"`
	Step  float64 `json:"step" yaml:"step"`
}

func (r Range) validate(name string) error {
	if r.Step <= 0 {
		return fmt.Errorf("%s step must be positive, got %v: %w", name, r.Step, ErrInvalidBounds)
	}
	if r.Stop < r.Start {
		return fmt.Errorf("%s stop %v is below start %v: %w", name, r.Stop, r.Start, ErrInvalidBounds)
	}
	return nil
}

// ints returns the range rounded to whole numbers, for the integral dimensions.
func (r Range) ints() (start, stop, step int) {
	return int(math.Round(r.Start)), int(math.Round(r.Stop)), int(math.Round(r.Step))
}

// Bounds holds one Range per dimension. Sampler and InferenceSteps are
// integral; the others carry one decimal of precision. Loras bounds every
// entry of the adapter-weight vector.
type Bounds struct {
	Sampler        Range `json:"sampler" yaml:"sampler"`
	InferenceSteps Range `json:"inference_steps" yaml:"inference_steps"`
	GuidanceScale  Range `json:"guidance_scale" yaml:"guidance_scale"`
	PromptStrength Range `json:"prompt_strength" yaml:"prompt_strength"`
	Loras          Range `json:"loras" yaml:"loras"`
}

// Validate rejects bounds the odometer could never finish.
func (b Bounds) Validate() error {
	checks := []struct {
		name string
		r    Range
	}{
		{"sampler", b.Sampler},
		{"inference_steps", b.InferenceSteps},
		{"guidance_scale", b.GuidanceScale},
		{"prompt_strength", b.PromptStrength},
		{"loras", b.Loras},
	}
	for _, c := range checks {
		if err := c.r.validate(c.name); err != nil {
			return err
		}
	}
	if _, _, step := b.Sampler.ints(); step < 1 {
		return fmt.Errorf("sampler step rounds to zero: %w", ErrInvalidBounds)
	}
	if _, _, step := b.InferenceSteps.ints(); step < 1 {
		return fmt.Errorf("inference_steps step rounds to zero: %w", ErrInvalidBounds)
	}
	return nil
}

// Live is what the generation form reports at the moment of each step.
type Live struct {
	ActiveLoras           int  `json:"active_loras"`
	PromptStrengthVisible bool `json:"prompt_strength_visible"`
}

// State is one point of the sweep.
type State struct {
	Sampler        int       `json:"sampler"`
	InferenceSteps int       `json:"inference_steps"`
	GuidanceScale  float64   `json:"guidance_scale"`
	PromptStrength float64   `json:"prompt_strength"`
	Loras          []float64 `json:"loras"`
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	c.Loras = append([]float64(nil), s.Loras...)
	return c
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
