// Package redis implements [toolchat.NoteStore] on a Redis hash.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/toolchat"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKey is the hash holding all notes when no key is configured.
const DefaultKey = "toolchat:notes"

// Interface compliance check.
var _ toolchat.NoteStore = (*NoteStore)(nil)

// NoteStore keeps every note as one field of a Redis hash, keyed by title.
type NoteStore struct {
	client goredis.UniversalClient
	key    string
}

// Option configures a [NoteStore].
type Option func(*NoteStore)

// WithKey sets the hash key.
func WithKey(key string) Option {
	return func(s *NoteStore) { s.key = key }
}

// New returns a store using client.
func New(client goredis.UniversalClient, opts ...Option) *NoteStore {
	s := &NoteStore{client: client, key: DefaultKey}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr string, opts ...Option) (*NoteStore, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return New(client, opts...), nil
}

// Close closes the underlying client.
func (s *NoteStore) Close() error {
	return s.client.Close()
}

type noteDTO struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Put stores n, replacing any note with the same title.
func (s *NoteStore) Put(ctx context.Context, n toolchat.Note) error {
	data, err := json.Marshal(noteDTO{Content: n.Content, CreatedAt: n.CreatedAt})
	if err != nil {
		return fmt.Errorf("redis: marshal note: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, n.Title, data).Err(); err != nil {
		return fmt.Errorf("redis: put %q: %w", n.Title, err)
	}
	return nil
}

// Get returns the note titled title.
func (s *NoteStore) Get(ctx context.Context, title string) (toolchat.Note, error) {
	raw, err := s.client.HGet(ctx, s.key, title).Bytes()
	if errors.Is(err, goredis.Nil) {
		return toolchat.Note{}, fmt.Errorf("note %q: %w", title, toolchat.ErrNoteNotFound)
	}
	if err != nil {
		return toolchat.Note{}, fmt.Errorf("redis: get %q: %w", title, err)
	}
	var dto noteDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return toolchat.Note{}, fmt.Errorf("redis: parse %q: %w", title, err)
	}
	return toolchat.Note{Title: title, Content: dto.Content, CreatedAt: dto.CreatedAt}, nil
}

// Delete removes the note titled title.
func (s *NoteStore) Delete(ctx context.Context, title string) error {
	n, err := s.client.HDel(ctx, s.key, title).Result()
	if err != nil {
		return fmt.Errorf("redis: delete %q: %w", title, err)
	}
	if n == 0 {
		return fmt.Errorf("note %q: %w", title, toolchat.ErrNoteNotFound)
	}
	return nil
}

// List returns all titles sorted alphabetically.
func (s *NoteStore) List(ctx context.Context) ([]string, error) {
	titles, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}
	sort.Strings(titles)
	return titles, nil
}
