package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/redis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial connects to the server at REDIS_ADDR under a unique key, or skips.
func dial(t *testing.T) *redis.NoteStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	key := "toolchat:test:" + uuid.NewString()
	store, err := redis.Dial(ctx, addr, redis.WithKey(key))
	require.NoError(t, err)
	t.Cleanup(func() {
		titles, _ := store.List(ctx)
		for _, title := range titles {
			_ = store.Delete(ctx, title)
		}
		_ = store.Close()
	})
	return store
}

func TestNoteStore(t *testing.T) {
	t.Parallel()
	store := dial(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, toolchat.Note{Title: "b", Content: "second", CreatedAt: created}))
	require.NoError(t, store.Put(ctx, toolchat.Note{Title: "a", Content: "first", CreatedAt: created}))

	titles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles)

	n, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", n.Content)
	assert.True(t, created.Equal(n.CreatedAt))

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, toolchat.ErrNoteNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a"), toolchat.ErrNoteNotFound)
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := redis.Dial(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
