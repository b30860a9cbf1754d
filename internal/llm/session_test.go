package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huimingz/commitcraft/internal/config"
)

type fakeChatModel struct {
	reply    string
	failures int // calls that fail with a retryable error before succeeding
	calls    int
	started  chan struct{}
	block    bool

	streamCtx context.Context
}

func (f *fakeChatModel) Generate(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	if f.block {
		close(f.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.calls <= f.failures {
		return nil, errors.New("upstream timeout")
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.calls++
	f.streamCtx = ctx
	if f.calls <= f.failures {
		return nil, errors.New("upstream timeout")
	}
	return schema.StreamReaderFromArray([]*schema.Message{
		schema.AssistantMessage(f.reply[:len(f.reply)/2], nil),
		schema.AssistantMessage(f.reply[len(f.reply)/2:], nil),
	}), nil
}

func countingCreator(m model.BaseChatModel, created *int) ModelCreator {
	return func(_ context.Context, _ config.ModelConfig) (model.BaseChatModel, error) {
		*created++
		return m, nil
	}
}

func TestSessionCache_Acquire(t *testing.T) {
	gpt := config.ModelConfig{Provider: "openai", Model: "gpt-4o"}
	mini := config.ModelConfig{Provider: "openai", Model: "gpt-4o-mini"}

	t.Run("reuses the session for the same model", func(t *testing.T) {
		created := 0
		cache := NewSessionCache(countingCreator(&fakeChatModel{}, &created), fastRetry(0))

		first, err := cache.Acquire(context.Background(), gpt)
		require.NoError(t, err)
		second, err := cache.Acquire(context.Background(), gpt)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, created)
	})

	t.Run("switching model replaces the session", func(t *testing.T) {
		created := 0
		cache := NewSessionCache(countingCreator(&fakeChatModel{}, &created), fastRetry(0))

		first, err := cache.Acquire(context.Background(), gpt)
		require.NoError(t, err)
		second, err := cache.Acquire(context.Background(), mini)
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, 2, created)
		current, err := cache.Current()
		require.NoError(t, err)
		assert.Same(t, second, current)
	})

	t.Run("release drops the session", func(t *testing.T) {
		created := 0
		cache := NewSessionCache(countingCreator(&fakeChatModel{}, &created), fastRetry(0))
		_, err := cache.Current()
		assert.ErrorIs(t, err, ErrNoSession)

		_, err = cache.Acquire(context.Background(), gpt)
		require.NoError(t, err)
		cache.Release()
		_, err = cache.Current()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("creation failure", func(t *testing.T) {
		cache := NewSessionCache(func(context.Context, config.ModelConfig) (model.BaseChatModel, error) {
			return nil, errors.New("invalid api key")
		}, fastRetry(2))
		_, err := cache.Acquire(context.Background(), gpt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gpt-4o")
	})
}

func TestSession_Generate(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		fake := &fakeChatModel{reply: "feat(auth): add validateToken", failures: 1}
		s := NewSession("test", fake, fastRetry(2))

		msg, err := s.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "feat(auth): add validateToken", msg.Content)
		assert.Equal(t, 2, fake.calls)
	})

	t.Run("interrupt cancels the call in flight", func(t *testing.T) {
		fake := &fakeChatModel{block: true, started: make(chan struct{})}
		s := NewSession("test", fake, fastRetry(2))

		done := make(chan error, 1)
		go func() {
			_, err := s.Generate(context.Background(), nil)
			done <- err
		}()

		<-fake.started
		s.Interrupt()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("generate did not return after interrupt")
		}
		assert.Equal(t, 1, fake.calls)
	})
}

func TestSession_Stream(t *testing.T) {
	fake := &fakeChatModel{reply: "fix(parser): handle empty input"}
	s := NewSession("test", fake, fastRetry(0))

	reader, err := s.Stream(context.Background(), nil)
	require.NoError(t, err)
	defer reader.Close()

	var got string
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got += chunk.Content
	}
	assert.Equal(t, "fix(parser): handle empty input", got)
}

func TestSession_StreamReleasesCallContext(t *testing.T) {
	t.Run("after the stream is drained", func(t *testing.T) {
		fake := &fakeChatModel{reply: "fix(parser): handle empty input"}
		s := NewSession("test", fake, fastRetry(0))

		reader, err := s.Stream(context.Background(), nil)
		require.NoError(t, err)
		for {
			if _, err := reader.Recv(); errors.Is(err, io.EOF) {
				break
			}
		}
		reader.Close()

		assert.Eventually(t, func() bool { return fake.streamCtx.Err() != nil }, time.Second, 10*time.Millisecond)
	})

	t.Run("when the reader is closed early", func(t *testing.T) {
		fake := &fakeChatModel{reply: "fix(parser): handle empty input"}
		s := NewSession("test", fake, fastRetry(0))

		reader, err := s.Stream(context.Background(), nil)
		require.NoError(t, err)
		reader.Close()

		assert.Eventually(t, func() bool { return fake.streamCtx.Err() != nil }, time.Second, 10*time.Millisecond)
	})
}
