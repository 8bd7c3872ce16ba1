package toolchat

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a conversation session.
type Session struct {
	ID           string
	Messages     []Message
	SystemPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSession returns an empty session with a fresh random ID.
func NewSession(systemPrompt string) Session {
	now := time.Now()
	return Session{
		ID:           uuid.NewString(),
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
