// Package store provides transcript persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/campusguide/internal/domain"
)

// Repository records chat transcripts for later auditing. It never feeds
// conversation history back into the chat flow.
type Repository interface {
	// RecordTurns appends the given entries in a single transaction.
	RecordTurns(ctx context.Context, entries ...domain.TranscriptEntry) error

	// ListTranscript returns up to limit entries for a session, oldest first.
	// A non-positive limit returns every entry.
	ListTranscript(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error)

	// CleanupOlderThan removes entries older than age.
	CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
