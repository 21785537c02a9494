package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/provider"
)

var ErrEmptyText = errors.New("text to synthesize is empty")

// SelectionSource yields a learner's provider choice.
type SelectionSource interface {
	Selection(ctx context.Context, learnerID uuid.UUID) provider.Selection
}

// AIService routes generation and speech calls to the learner's providers.
// Provider calls are never retried.
type AIService struct {
	registry *provider.Registry
	settings SelectionSource
	log      zerolog.Logger
}

func NewAIService(registry *provider.Registry, settings SelectionSource, log zerolog.Logger) *AIService {
	return &AIService{
		registry: registry,
		settings: settings,
		log:      log.With().Str("component", "ai_service").Logger(),
	}
}

// Generate runs a prompt against the learner's text provider.
func (s *AIService) Generate(ctx context.Context, learnerID uuid.UUID, p content.Prompt) (string, error) {
	gen, err := s.registry.Text(s.settings.Selection(ctx, learnerID))
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := gen.Generate(ctx, p.System, p.User, p.Structured)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", gen.Name()).Msg("text generation failed")
		return "", err
	}
	s.log.Debug().
		Str("provider", gen.Name()).
		Dur("took", time.Since(start)).
		Int("chars", len(out)).
		Msg("text generated")
	return out, nil
}

// Synthesizer returns the learner's speech provider.
func (s *AIService) Synthesizer(ctx context.Context, learnerID uuid.UUID) (provider.SpeechSynthesizer, error) {
	return s.registry.Speech(s.settings.Selection(ctx, learnerID))
}

// Synthesize converts text to a base64 audio payload.
func (s *AIService) Synthesize(ctx context.Context, synth provider.SpeechSynthesizer, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	start := time.Now()
	payload, err := synth.Synthesize(ctx, text)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", synth.Name()).Msg("speech synthesis failed")
		return "", err
	}
	s.log.Debug().
		Str("provider", synth.Name()).
		Dur("took", time.Since(start)).
		Int("payload_bytes", len(payload)).
		Msg("speech synthesized")
	return payload, nil
}
