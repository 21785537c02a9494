package audio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Result describes a completed playback.
type Result struct {
	Strategy string   `json:"strategy"`
	Attempts []string `json:"attempts"`
	Bytes    int      `json:"bytes"`
}

// Player resolves opaque payloads into playback through an ordered chain of
// strategies. Calls are not serialised; each call writes to its own sink.
type Player struct {
	audioCtx   *Context
	strategies []Strategy
	log        zerolog.Logger
}

// NewPlayer builds a player over the given engine handle. With no strategies
// the default chain is used.
func NewPlayer(audioCtx *Context, log zerolog.Logger, strategies ...Strategy) *Player {
	l := log.With().Str("component", "audio_player").Logger()
	if len(strategies) == 0 {
		strategies = DefaultStrategies(l)
	}
	return &Player{
		audioCtx:   audioCtx,
		strategies: strategies,
		log:        l,
	}
}

// Play decodes a base64 payload and plays it.
func (p *Player) Play(ctx context.Context, sink Sink, payload string) (Result, error) {
	data, err := DecodePayload(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnplayable, err)
	}
	return p.PlayBytes(ctx, sink, data)
}

// PlayBytes runs the fallback chain. Failures of all but the last strategy
// are logged and swallowed; the last one is returned wrapped in ErrUnplayable.
func (p *Player) PlayBytes(ctx context.Context, sink Sink, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: %w", ErrUnplayable, ErrEmptyPayload)
	}

	eng, err := p.audioCtx.Acquire(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: acquire engine: %w", ErrUnplayable, err)
	}

	res := Result{Bytes: len(data), Attempts: make([]string, 0, len(p.strategies))}
	for i, s := range p.strategies {
		res.Attempts = append(res.Attempts, s.Name)

		ok, err := p.try(ctx, s, eng, sink, data)
		if ok {
			res.Strategy = s.Name
			p.log.Debug().Str("strategy", s.Name).Int("bytes", len(data)).Msg("Playback resolved")
			return res, nil
		}

		if i == len(p.strategies)-1 {
			if err == nil {
				err = fmt.Errorf("strategy %s declined payload", s.Name)
			}
			return res, fmt.Errorf("%w: %w", ErrUnplayable, err)
		}
		p.log.Debug().Err(err).Str("strategy", s.Name).Msg("Playback strategy failed, falling back")
	}
	return res, ErrUnplayable
}

func (p *Player) try(ctx context.Context, s Strategy, eng Engine, sink Sink, data []byte) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("strategy %s panicked: %v", s.Name, r)
		}
	}()
	return s.Try(ctx, eng, sink, data)
}
