// Package json persists conversation sessions and notes as JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/toolchat"
)

// formatVersion is written into every session file. Files with any other
// version are rejected.
const formatVersion = 1

type sessionFile struct {
	Version      int          `json:"version"`
	ID           string       `json:"id"`
	SystemPrompt string       `json:"system_prompt"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Messages     []messageDTO `json:"messages"`
}

// MarshalSession encodes s as indented JSON.
func MarshalSession(s toolchat.Session) ([]byte, error) {
	f := sessionFile{
		Version:      formatVersion,
		ID:           s.ID,
		SystemPrompt: s.SystemPrompt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Messages:     []messageDTO{},
	}
	for i, msg := range s.Messages {
		dto, err := encodeMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("json: message %d: %w", i, err)
		}
		f.Messages = append(f.Messages, dto)
	}
	return json.MarshalIndent(f, "", "  ")
}

// UnmarshalSession decodes a session written by MarshalSession. The restored
// transcript must keep every tool call paired with its result.
func UnmarshalSession(data []byte) (toolchat.Session, error) {
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return toolchat.Session{}, fmt.Errorf("json: %w", err)
	}
	if f.Version != formatVersion {
		return toolchat.Session{}, fmt.Errorf("json: unsupported session version %d", f.Version)
	}
	s := toolchat.Session{
		ID:           f.ID,
		SystemPrompt: f.SystemPrompt,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
	for i, dto := range f.Messages {
		msg, err := decodeMessage(dto)
		if err != nil {
			return toolchat.Session{}, fmt.Errorf("json: message %d: %w", i, err)
		}
		s.Messages = append(s.Messages, msg)
	}
	if err := toolchat.ValidateTranscript(s.Messages); err != nil {
		return toolchat.Session{}, fmt.Errorf("json: %w", err)
	}
	return s, nil
}

// Save writes s to path, creating parent directories. The file is replaced
// atomically.
func Save(path string, s toolchat.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Load reads a session saved with Save.
func Load(path string) (toolchat.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return toolchat.Session{}, fmt.Errorf("json: %w", err)
	}
	return UnmarshalSession(data)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("json: %w", err)
	}
	return nil
}
