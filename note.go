package toolchat

import (
	"context"
	"time"
)

// Note is a titled piece of text saved by the notes tool.
type Note struct {
	Title     string
	Content   string
	CreatedAt time.Time
}

// NoteStore persists notes keyed by title. Get and Delete return
// ErrNoteNotFound for a missing title. List returns titles in a stable order.
type NoteStore interface {
	Put(ctx context.Context, n Note) error
	Get(ctx context.Context, title string) (Note, error)
	Delete(ctx context.Context, title string) error
	List(ctx context.Context) ([]string, error)
}
