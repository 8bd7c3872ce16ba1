package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/toolchat"
)

// DefaultNotesPath is the notes file used when none is configured.
const DefaultNotesPath = "agent_notes.json"

// Interface compliance check.
var _ toolchat.NoteStore = (*NoteStore)(nil)

// NoteStore is a [toolchat.NoteStore] backed by one JSON file holding an
// object keyed by note title. The file is re-read on every call so several
// processes see each other's writes; writes are atomic renames.
type NoteStore struct {
	path string
	mu   sync.Mutex
}

// NewNoteStore returns a store reading and writing path. The file is
// created on first write.
func NewNoteStore(path string) *NoteStore {
	if path == "" {
		path = DefaultNotesPath
	}
	return &NoteStore{path: path}
}

type noteDTO struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Put stores n, replacing any note with the same title.
func (s *NoteStore) Put(_ context.Context, n toolchat.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return err
	}
	notes[n.Title] = noteDTO{Content: n.Content, CreatedAt: n.CreatedAt}
	return s.save(notes)
}

// Get returns the note titled title.
func (s *NoteStore) Get(_ context.Context, title string) (toolchat.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return toolchat.Note{}, err
	}
	n, ok := notes[title]
	if !ok {
		return toolchat.Note{}, fmt.Errorf("note %q: %w", title, toolchat.ErrNoteNotFound)
	}
	return toolchat.Note{Title: title, Content: n.Content, CreatedAt: n.CreatedAt}, nil
}

// Delete removes the note titled title.
func (s *NoteStore) Delete(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := notes[title]; !ok {
		return fmt.Errorf("note %q: %w", title, toolchat.ErrNoteNotFound)
	}
	delete(notes, title)
	return s.save(notes)
}

// List returns all titles sorted alphabetically.
func (s *NoteStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(notes))
	for t := range notes {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *NoteStore) load() (map[string]noteDTO, error) {
	notes := make(map[string]noteDTO)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return notes, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	if len(data) == 0 {
		return notes, nil
	}
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("parse notes: %w", err)
	}
	return notes, nil
}

func (s *NoteStore) save(notes map[string]noteDTO) error {
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	return writeAtomic(s.path, data)
}
