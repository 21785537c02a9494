package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	mimeMPEG = "audio/mpeg"
	mimeWAV  = "audio/wav"
	mimeOGG  = "audio/ogg"
)

// RenderEngine plays audio by rendering it to the sink as a file the client
// can play directly. Container files pass through; decoded buffers are
// written as 16-bit PCM WAV.
type RenderEngine struct {
	mu        sync.RWMutex
	running   bool
	supported []string
}

// NewRenderEngine returns an engine accepting MP3, WAV and OGG containers.
func NewRenderEngine() *RenderEngine {
	return &RenderEngine{supported: []string{mimeMPEG, mimeWAV, mimeOGG}}
}

// NewRenderFactory adapts NewRenderEngine to a Context factory.
func NewRenderFactory() Factory {
	return func() (Engine, error) { return NewRenderEngine(), nil }
}

func (e *RenderEngine) Resume(ctx context.Context) error {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	return nil
}

func (e *RenderEngine) Suspend(ctx context.Context) error {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	return nil
}

func (e *RenderEngine) checkRunning() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.running {
		return ErrEngineSuspended
	}
	return nil
}

func (e *RenderEngine) accepts(mt string) (string, bool) {
	m := mimetype.Lookup(mt)
	for _, s := range e.supported {
		if mt == s || (m != nil && m.Is(s)) {
			return s, true
		}
	}
	return "", false
}

var errEmptyClip = errors.New("audio: clip has no samples")

// PlayMedia probes the container before streaming it so malformed files fail
// here instead of on the client.
func (e *RenderEngine) PlayMedia(ctx context.Context, sink Sink, data []byte, mt string) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	kind, ok := e.accepts(mt)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt)
	}

	switch kind {
	case mimeWAV:
		if err := probeWAV(data); err != nil {
			return err
		}
	case mimeMPEG:
		if err := probeMP3(data); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	sink.SetContentType(kind)
	_, err := sink.Write(data)
	return err
}

// Decode dispatches on the sniffed header. Headerless data yields ErrNoHeader.
func (e *RenderEngine) Decode(ctx context.Context, data []byte) (*Buffer, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimeWAV):
		return decodeWAV(data)
	case mt.Is(mimeMPEG):
		return decodeMP3(data)
	default:
		return nil, fmt.Errorf("%w: detected %s", ErrNoHeader, mt.String())
	}
}

// PlayBuffer renders buf as a WAV file into the sink.
func (e *RenderEngine) PlayBuffer(ctx context.Context, sink Sink, buf *Buffer) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	if buf == nil || buf.NumChannels() == 0 || buf.SampleRate <= 0 {
		return ErrInvalidFormat
	}
	out, err := EncodeWAV(buf)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	sink.SetContentType(mimeWAV)
	_, err = sink.Write(out)
	return err
}

// EncodeWAV renders buf as a 16-bit PCM WAV file.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, buf.SampleRate, 16, buf.NumChannels(), 1)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.NumChannels(), SampleRate: buf.SampleRate},
		Data:           encodePCM16(buf),
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalise wav: %w", err)
	}
	return ws.Bytes(), nil
}

// probeWAV rejects malformed headers and zero-length clips.
func probeWAV(data []byte) error {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return errors.New("audio: malformed wav header")
	}
	if err := d.FwdToPCM(); err != nil {
		return fmt.Errorf("audio: wav data chunk: %w", err)
	}
	if d.PCMLen() == 0 {
		return errEmptyClip
	}
	return nil
}

// probeMP3 rejects streams whose first frame yields no samples.
func probeMP3(data []byte) error {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("audio: malformed mp3 stream: %w", err)
	}
	frame := make([]byte, 4608)
	n, err := io.ReadAtLeast(d, frame, 1)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return errEmptyClip
		}
		return fmt.Errorf("audio: mp3 frame: %w", err)
	}
	return nil
}

func decodeWAV(data []byte) (*Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, errors.New("audio: malformed wav header")
	}
	if d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("audio: unsupported wav encoding %d", d.WavAudioFormat)
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if ib == nil || ib.Format == nil || ib.Format.NumChannels <= 0 {
		return nil, errors.New("audio: wav has no channels")
	}

	nch := ib.Format.NumChannels
	frames := len(ib.Data) / nch
	if frames == 0 {
		return nil, errors.New("audio: wav has no samples")
	}

	depth := int(d.BitDepth)
	scale := float32(int(1) << (depth - 1))
	offset := 0
	if depth == 8 {
		offset = 128
	}

	buf := &Buffer{SampleRate: ib.Format.SampleRate, Channels: make([][]float32, nch)}
	for c := range buf.Channels {
		buf.Channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			buf.Channels[c][i] = float32(ib.Data[i*nch+c]-offset) / scale
		}
	}
	return buf, nil
}

func decodeMP3(data []byte) (*Buffer, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil && len(pcm) == 0 {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	// go-mp3 always produces interleaved 16-bit little-endian stereo.
	buf, _, err := DecodeRawPCM(pcm, d.SampleRate(), 2)
	if err != nil {
		return nil, err
	}
	if buf.Frames() == 0 {
		return nil, errors.New("audio: mp3 has no samples")
	}
	return buf, nil
}
