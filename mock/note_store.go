package mock

import (
	"context"

	"github.com/fwojciec/toolchat"
)

// Interface compliance check.
var _ toolchat.NoteStore = (*NoteStore)(nil)

// NoteStore is a test double for toolchat.NoteStore.
type NoteStore struct {
	PutFn    func(ctx context.Context, n toolchat.Note) error
	GetFn    func(ctx context.Context, title string) (toolchat.Note, error)
	DeleteFn func(ctx context.Context, title string) error
	ListFn   func(ctx context.Context) ([]string, error)
}

// Put delegates to PutFn.
func (s *NoteStore) Put(ctx context.Context, n toolchat.Note) error {
	return s.PutFn(ctx, n)
}

// Get delegates to GetFn.
func (s *NoteStore) Get(ctx context.Context, title string) (toolchat.Note, error) {
	return s.GetFn(ctx, title)
}

// Delete delegates to DeleteFn.
func (s *NoteStore) Delete(ctx context.Context, title string) error {
	return s.DeleteFn(ctx, title)
}

// List delegates to ListFn.
func (s *NoteStore) List(ctx context.Context) ([]string, error) {
	return s.ListFn(ctx)
}
