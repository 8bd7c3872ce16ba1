package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Complete(t *testing.T) {
	t.Parallel()
	t.Run("delegates to CompleteFn", func(t *testing.T) {
		t.Parallel()
		want := toolchat.AssistantMessage{
			Content:    []toolchat.ContentBlock{toolchat.TextBlock{Text: "hello"}},
			StopReason: toolchat.StopEndTurn,
		}
		g := mock.Gateway{
			CompleteFn: func(ctx context.Context, req toolchat.Request) (toolchat.AssistantMessage, error) {
				return want, nil
			},
		}
		got, err := g.Complete(context.Background(), toolchat.Request{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when CompleteFn not set", func(t *testing.T) {
		t.Parallel()
		g := mock.Gateway{}
		assert.Panics(t, func() {
			_, _ = g.Complete(context.Background(), toolchat.Request{})
		})
	})
}

func TestGateway_Stream(t *testing.T) {
	t.Parallel()
	t.Run("delegates to StreamFn", func(t *testing.T) {
		t.Parallel()
		var s mock.Stream
		g := mock.Gateway{
			StreamFn: func(ctx context.Context, req toolchat.Request) (toolchat.Stream, error) {
				return &s, nil
			},
		}
		got, err := g.Stream(context.Background(), toolchat.Request{})
		require.NoError(t, err)
		assert.Equal(t, &s, got)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("api error")
		g := mock.Gateway{
			StreamFn: func(ctx context.Context, req toolchat.Request) (toolchat.Stream, error) {
				return nil, wantErr
			},
		}
		_, err := g.Stream(context.Background(), toolchat.Request{})
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestStream(t *testing.T) {
	t.Parallel()
	t.Run("panics when NextFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Panics(t, func() {
			_, _ = s.Next()
		})
	})

	t.Run("close is nil-safe", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.NoError(t, s.Close())
	})

	t.Run("close delegates to CloseFn", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("close error")
		s := mock.Stream{CloseFn: func() error { return wantErr }}
		assert.ErrorIs(t, s.Close(), wantErr)
	})
}

func TestReplay(t *testing.T) {
	t.Parallel()
	s := mock.Replay(
		toolchat.EventBlockStart{Index: 0, Kind: toolchat.BlockText},
		toolchat.EventTextDelta{Index: 0, Text: "hi"},
	)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, toolchat.EventBlockStart{Index: 0, Kind: toolchat.BlockText}, evt)

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, toolchat.EventTextDelta{Index: 0, Text: "hi"}, evt)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTool(t *testing.T) {
	t.Parallel()
	tool := mock.Tool{
		ToolName:        "echo",
		ToolDescription: "Echo back",
		ExecuteFn: func(ctx context.Context, args json.RawMessage) string {
			return string(args)
		},
	}
	assert.Equal(t, "echo", tool.Name())
	assert.Equal(t, "Echo back", tool.Description())
	assert.Equal(t, "object", tool.Schema().Type)
	assert.Equal(t, `{"a":1}`, tool.Execute(context.Background(), json.RawMessage(`{"a":1}`)))
}

func TestNoteStore(t *testing.T) {
	t.Parallel()
	var stored toolchat.Note
	s := mock.NoteStore{
		PutFn: func(ctx context.Context, n toolchat.Note) error {
			stored = n
			return nil
		},
		GetFn: func(ctx context.Context, title string) (toolchat.Note, error) {
			return toolchat.Note{}, toolchat.ErrNoteNotFound
		},
	}
	require.NoError(t, s.Put(context.Background(), toolchat.Note{Title: "t", Content: "c"}))
	assert.Equal(t, "t", stored.Title)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, toolchat.ErrNoteNotFound)
}
