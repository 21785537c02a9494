package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/audio"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/kvstore"
)

// Speech is a synthesized payload and whether it came from the cache.
type Speech struct {
	Payload string `json:"audio"`
	Cached  bool   `json:"cached"`
}

// SpeechService synthesizes text through the audio cache and renders
// payloads through the shared audio player.
type SpeechService struct {
	ai     *AIService
	cache  *kvstore.AudioCache
	player *audio.Player
	log    zerolog.Logger
}

func NewSpeechService(ai *AIService, cache *kvstore.AudioCache, player *audio.Player, log zerolog.Logger) *SpeechService {
	return &SpeechService{
		ai:     ai,
		cache:  cache,
		player: player,
		log:    log.With().Str("component", "speech_service").Logger(),
	}
}

// Speak returns audio for text, consulting the cache under key first. A
// cache write failure does not fail the call.
func (s *SpeechService) Speak(ctx context.Context, learnerID uuid.UUID, key, text string) (Speech, error) {
	if payload, ok := s.cache.Get(ctx, key); ok {
		return Speech{Payload: payload, Cached: true}, nil
	}

	synth, err := s.ai.Synthesizer(ctx, learnerID)
	if err != nil {
		return Speech{}, err
	}
	payload, err := s.ai.Synthesize(ctx, synth, text)
	if err != nil {
		return Speech{}, err
	}
	s.cache.Put(ctx, key, payload)
	return Speech{Payload: payload}, nil
}

// Term returns pronunciation audio for a single word. Keys are scoped by
// speech provider since voices differ.
func (s *SpeechService) Term(ctx context.Context, learnerID uuid.UUID, term string) (Speech, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Speech{}, ErrEmptyText
	}
	synth, err := s.ai.Synthesizer(ctx, learnerID)
	if err != nil {
		return Speech{}, err
	}
	key := config.CacheKey.TermAudioKey(synth.Name(), term)
	if payload, ok := s.cache.Get(ctx, key); ok {
		return Speech{Payload: payload, Cached: true}, nil
	}

	payload, err := s.ai.Synthesize(ctx, synth, term)
	if err != nil {
		return Speech{}, err
	}
	s.cache.Put(ctx, key, payload)
	return Speech{Payload: payload}, nil
}

// Render resolves a payload into playable audio written to sink.
func (s *SpeechService) Render(ctx context.Context, sink audio.Sink, payload string) (audio.Result, error) {
	res, err := s.player.Play(ctx, sink, payload)
	if err != nil {
		s.log.Warn().Err(err).Strs("attempts", res.Attempts).Msg("audio unplayable")
		return res, err
	}
	s.log.Debug().Str("strategy", res.Strategy).Int("bytes", res.Bytes).Msg("audio rendered")
	return res, nil
}

// Forget drops cached audio.
func (s *SpeechService) Forget(ctx context.Context, keys ...string) {
	s.cache.Forget(ctx, keys...)
}
