// Package domain contains core domain types for the CampusGuide service.
package domain

import "time"

// Role identifies who authored a chat turn.
type Role string

const (
	// RoleUser marks a student message.
	RoleUser Role = "user"
	// RoleAssistant marks a reply produced by the service.
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in a session's conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TranscriptEntry is a persisted record of one turn, kept for auditing.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"created_at"`
}
