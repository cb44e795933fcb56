package application

import (
	"fmt"
	"math"
	"strings"

	"advanced-prompt/internal/config"
	chatdomain "advanced-prompt/internal/features/chat/domain"
	cookdomain "advanced-prompt/internal/features/cook/domain"
	"advanced-prompt/internal/features/config/domain"
)

// ConfigService defines the interface for config management.
type ConfigService interface {
	// Current loads the stored configuration and resolves it.
	Current() (domain.AppConfig, error)
	// SaveConfig resolves and validates cfg, then persists it.
	SaveConfig(cfg *domain.AppConfig) (domain.AppConfig, error)
}

// configService is the implementation of ConfigService.
type configService struct {
	store config.AppConfigService
}

// NewConfigService creates a new instance of configService.
func NewConfigService(store config.AppConfigService) ConfigService {
	return &configService{store: store}
}

func (s *configService) Current() (domain.AppConfig, error) {
	cfg, err := s.store.LoadAppConfig()
	if err != nil {
		return domain.AppConfig{}, err
	}
	return Resolve(*cfg), nil
}

func (s *configService) SaveConfig(cfg *domain.AppConfig) (domain.AppConfig, error) {
	resolved := Resolve(*cfg)
	if err := resolved.Cook.Validate(); err != nil {
		return domain.AppConfig{}, fmt.Errorf("failed to save config: %w", err)
	}
	if err := s.store.SaveAppConfig(&resolved); err != nil {
		return domain.AppConfig{}, err
	}
	return resolved, nil
}

// Resolve fills blank fields with defaults and rounds the cook bounds:
// sampler and inference steps to whole numbers, the rest to one decimal.
func Resolve(cfg domain.AppConfig) domain.AppConfig {
	def := domain.DefaultAppConfig()
	cfg.Chat = resolveChat(cfg.Chat, def.Chat)

	b, d := &cfg.Cook, def.Cook
	b.Sampler = resolveRange(b.Sampler, d.Sampler, math.Round)
	b.InferenceSteps = resolveRange(b.InferenceSteps, d.InferenceSteps, math.Round)
	b.GuidanceScale = resolveRange(b.GuidanceScale, d.GuidanceScale, round1)
	b.PromptStrength = resolveRange(b.PromptStrength, d.PromptStrength, round1)
	b.Loras = resolveRange(b.Loras, d.Loras, round1)
	return cfg
}

func resolveChat(s, def chatdomain.Settings) chatdomain.Settings {
	orDefault := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	s.APIURL = orDefault(s.APIURL, def.APIURL)
	s.Model = orDefault(s.Model, def.Model)
	s.Role = orDefault(s.Role, def.Role)
	s.Instructions = orDefault(s.Instructions, def.Instructions)
	s.AutoPilotInstructions = orDefault(s.AutoPilotInstructions, def.AutoPilotInstructions)
	if s.MaxTokens <= 0 {
		s.MaxTokens = def.MaxTokens
	}
	return s
}

// resolveRange replaces a range without a positive step by the default and
// rounds the rest.
func resolveRange(r, def cookdomain.Range, round func(float64) float64) cookdomain.Range {
	if r.Step <= 0 {
		return def
	}
	return cookdomain.Range{Start: round(r.Start), Stop: round(r.Stop), Step: round(r.Step)}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
