package audio

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

var errNoContainer = errors.New("audio: no container format detected")

// Strategy is one step of the playback fallback chain. Try reports whether it
// produced playback; a false result moves the driver to the next strategy.
type Strategy struct {
	Name string
	Try  func(ctx context.Context, eng Engine, sink Sink, data []byte) (bool, error)
}

// Strategy names, in fallback order.
const (
	StrategyContainer = "container"
	StrategyDecode    = "decode"
	StrategyRawPCM    = "raw_pcm"
)

// DefaultStrategies returns container playback, then generic decoding, then
// the raw 24 kHz mono PCM assumption.
func DefaultStrategies(log zerolog.Logger) []Strategy {
	return []Strategy{
		ContainerStrategy(),
		DecodeStrategy(),
		RawPCMStrategy(RawSampleRate, RawChannels, log),
	}
}

// ContainerStrategy hands recognised container files to the engine's media
// pathway unchanged.
func ContainerStrategy() Strategy {
	return Strategy{
		Name: StrategyContainer,
		Try: func(ctx context.Context, eng Engine, sink Sink, data []byte) (bool, error) {
			if len(data) == 0 {
				return false, ErrEmptyPayload
			}
			mt := mimetype.Detect(data)
			if !strings.HasPrefix(mt.String(), "audio/") {
				return false, errNoContainer
			}
			if err := eng.PlayMedia(ctx, sink, data, mt.String()); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

// DecodeStrategy decodes the bytes by their header and plays the PCM result.
func DecodeStrategy() Strategy {
	return Strategy{
		Name: StrategyDecode,
		Try: func(ctx context.Context, eng Engine, sink Sink, data []byte) (bool, error) {
			buf, err := eng.Decode(ctx, data)
			if err != nil {
				return false, err
			}
			if err := eng.PlayBuffer(ctx, sink, buf); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

// RawPCMStrategy treats the bytes as headerless signed 16-bit little-endian PCM.
func RawPCMStrategy(sampleRate, channels int, log zerolog.Logger) Strategy {
	return Strategy{
		Name: StrategyRawPCM,
		Try: func(ctx context.Context, eng Engine, sink Sink, data []byte) (bool, error) {
			buf, dropped, err := DecodeRawPCM(data, sampleRate, channels)
			if err != nil {
				return false, err
			}
			if dropped > 0 {
				log.Warn().
					Int("bytes", len(data)).
					Int("dropped", dropped).
					Msg("Raw PCM payload not aligned to whole frames, trailing bytes dropped")
			}
			if err := eng.PlayBuffer(ctx, sink, buf); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}
