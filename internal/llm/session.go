package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/log"
)

// ErrNoSession is returned when no model session has been acquired
var ErrNoSession = errors.New("no active model session")

// ModelCreator builds a chat model for a model configuration
type ModelCreator func(ctx context.Context, cfg config.ModelConfig) (model.BaseChatModel, error)

// Session is a loaded chat model with an interrupt hook for the call in flight.
type Session struct {
	id    string
	model model.BaseChatModel
	retry RetryConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	call   uint64
}

// NewSession wraps a chat model
func NewSession(id string, m model.BaseChatModel, retry RetryConfig) *Session {
	return &Session{id: id, model: m, retry: retry}
}

// ID returns the model identifier the session was created for
func (s *Session) ID() string {
	return s.id
}

// begin derives the context of a new call. A call still in flight is interrupted first.
func (s *Session) begin(ctx context.Context) (context.Context, uint64) {
	callCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.call++
	s.cancel = cancel
	return callCtx, s.call
}

// finish releases the context of call unless a newer call replaced it
func (s *Session) finish(call uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == call && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stream starts a streamed completion. The returned reader must be closed;
// the call context is released once the stream ends or the reader is closed.
func (s *Session) Stream(ctx context.Context, msgs []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	callCtx, call := s.begin(ctx)
	upstream, err := WithRetryResult(callCtx, s.retry, func() (*schema.StreamReader[*schema.Message], error) {
		return s.model.Stream(callCtx, msgs)
	})
	if err != nil {
		s.finish(call)
		return nil, err
	}

	reader, writer := schema.Pipe[*schema.Message](1)
	go func() {
		defer s.finish(call)
		defer writer.Close()
		defer upstream.Close()
		for {
			chunk, err := upstream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if closed := writer.Send(chunk, err); closed || err != nil {
				return
			}
		}
	}()
	return reader, nil
}

// Generate runs a single non-streamed completion
func (s *Session) Generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	callCtx, call := s.begin(ctx)
	defer s.finish(call)
	return WithRetryResult(callCtx, s.retry, func() (*schema.Message, error) {
		return s.model.Generate(callCtx, msgs)
	})
}

// Interrupt cancels the call in flight, if any. It is safe to call at any time.
func (s *Session) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SessionCache holds at most one session, keyed by model identifier.
// Acquiring a different model releases the previous session.
type SessionCache struct {
	create ModelCreator
	retry  RetryConfig

	mu      sync.Mutex
	current *Session
}

// NewSessionCache creates a cache that builds models with create
func NewSessionCache(create ModelCreator, retry RetryConfig) *SessionCache {
	return &SessionCache{create: create, retry: retry}
}

// Acquire returns the session for cfg, creating it when the cached one serves another model.
func (c *SessionCache) Acquire(ctx context.Context, cfg config.ModelConfig) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := cfg.ID()
	if c.current != nil && c.current.ID() == id {
		return c.current, nil
	}
	if c.current != nil {
		log.Debug("releasing session %s for %s", c.current.ID(), id)
		c.current.Interrupt()
		c.current = nil
	}

	m, err := WithRetryResult(ctx, c.retry, func() (model.BaseChatModel, error) {
		return c.create(ctx, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model %s: %w", cfg.Model, err)
	}
	c.current = NewSession(id, m, c.retry)
	log.Debug("session ready for %s", id)
	return c.current, nil
}

// Current returns the cached session or ErrNoSession
func (c *SessionCache) Current() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoSession
	}
	return c.current, nil
}

// Release interrupts and drops the cached session
func (c *SessionCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Interrupt()
		c.current = nil
	}
}
