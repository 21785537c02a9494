package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrUnplayable       = errors.New("audio: no strategy could play the payload")
	ErrEngineSuspended  = errors.New("audio: engine is suspended")
	ErrUnsupportedMedia = errors.New("audio: unsupported media type")
	ErrNoHeader         = errors.New("audio: no recognisable header")
)

// Sink receives rendered audio for one playback call.
type Sink interface {
	io.Writer
	SetContentType(contentType string)
}

// Engine is the playback backend behind a Context.
type Engine interface {
	Resume(ctx context.Context) error
	Suspend(ctx context.Context) error
	// PlayMedia plays a complete container file of the given mime type.
	PlayMedia(ctx context.Context, sink Sink, data []byte, mime string) error
	// Decode performs header-based decoding into PCM.
	Decode(ctx context.Context, data []byte) (*Buffer, error)
	PlayBuffer(ctx context.Context, sink Sink, buf *Buffer) error
}

// State tracks the lifecycle of the engine held by a Context.
type State int

const (
	StateUninitialised State = iota
	StateSuspended
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	default:
		return "uninitialised"
	}
}

// Factory creates the engine on first use.
type Factory func() (Engine, error)

// Context owns the single playback engine. It is created once by the caller
// and passed to every Player that needs it.
type Context struct {
	mu       sync.Mutex
	factory  Factory
	engine   Engine
	state    State
	idle     time.Duration
	lastUsed time.Time
	now      func() time.Time
	log      zerolog.Logger
}

// NewContext returns a handle whose engine is built lazily. A positive
// idleSuspend makes a running engine count as suspended after that long
// without use.
func NewContext(factory Factory, idleSuspend time.Duration, log zerolog.Logger) *Context {
	return &Context{
		factory: factory,
		idle:    idleSuspend,
		now:     time.Now,
		log:     log.With().Str("component", "audio_context").Logger(),
	}
}

// Acquire returns the engine in the running state, creating and resuming it
// as needed.
func (c *Context) Acquire(ctx context.Context) (Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialised {
		eng, err := c.factory()
		if err != nil {
			return nil, err
		}
		c.engine = eng
		c.state = StateSuspended
		c.log.Debug().Msg("Audio engine created")
	}

	if c.state == StateRunning && c.idle > 0 && c.now().Sub(c.lastUsed) > c.idle {
		if err := c.engine.Suspend(ctx); err != nil {
			c.log.Warn().Err(err).Msg("Idle suspend failed")
		} else {
			c.state = StateSuspended
			c.log.Debug().Msg("Audio engine auto-suspended after idle period")
		}
	}

	if c.state == StateSuspended {
		if err := c.engine.Resume(ctx); err != nil {
			return nil, err
		}
		c.state = StateRunning
	}

	c.lastUsed = c.now()
	return c.engine, nil
}

// Suspend parks a running engine. It is a no-op otherwise.
func (c *Context) Suspend(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return nil
	}
	if err := c.engine.Suspend(ctx); err != nil {
		return err
	}
	c.state = StateSuspended
	return nil
}

// State reports the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
