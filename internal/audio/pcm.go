package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
)

// Raw PCM assumptions for headerless speech payloads.
const (
	RawSampleRate = 24000
	RawChannels   = 1
)

var (
	ErrInvalidPayload = errors.New("audio: payload is not valid base64")
	ErrEmptyPayload   = errors.New("audio: payload is empty")
	ErrInvalidFormat  = errors.New("audio: invalid sample rate or channel count")
)

// Buffer holds decoded, normalised samples per channel.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.Channels) }

// Frames returns the per-channel sample count.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// DecodePayload turns a base64 string into bytes. Data URL prefixes and
// missing padding are tolerated.
func DecodePayload(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, ErrEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, ErrInvalidPayload
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

// DecodeRawPCM interprets data as interleaved signed 16-bit little-endian
// samples. Each sample is divided by 32768. Bytes that do not complete a
// sample, and samples that do not complete a frame, are dropped; the number of
// dropped bytes is returned.
func DecodeRawPCM(data []byte, sampleRate, channels int) (*Buffer, int, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, 0, ErrInvalidFormat
	}

	samples := len(data) / 2
	frames := samples / channels
	dropped := len(data) - frames*channels*2

	buf := &Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for c := range buf.Channels {
		buf.Channels[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			v := int16(binary.LittleEndian.Uint16(data[off : off+2]))
			buf.Channels[c][i] = float32(v) / 32768
		}
	}
	return buf, dropped, nil
}

// encodePCM16 interleaves a buffer back into 16-bit integer samples.
func encodePCM16(buf *Buffer) []int {
	nch := buf.NumChannels()
	frames := buf.Frames()
	out := make([]int, frames*nch)
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			v := int(buf.Channels[c][i] * 32768)
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			out[i*nch+c] = v
		}
	}
	return out
}
