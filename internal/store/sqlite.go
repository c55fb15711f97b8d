package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/campusguide/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	maxWriteRetries = 3
	baseRetryDelay  = 50 * time.Millisecond
)

var _ Repository = (*SQLiteStore)(nil)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // serializes writers to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		intent TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(session_id, seq);
	CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordTurns appends entries, retrying with exponential backoff while the
// database is busy. Missing IDs and timestamps are filled in.
func (s *SQLiteStore) RecordTurns(ctx context.Context, entries ...domain.TranscriptEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		err := s.recordOnce(ctx, entries)
		if err == nil {
			return nil
		}
		if !isBusyError(err) || attempt == maxWriteRetries-1 {
			return fmt.Errorf("record transcript after %d attempts: %w", attempt+1, err)
		}

		delay := baseRetryDelay * time.Duration(1<<attempt) // 50ms, 100ms
		slog.Debug("Transcript write hit a busy database, retrying",
			"session_id", entries[0].SessionID,
			"attempt", attempt+1,
			"delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *SQLiteStore) recordOnce(ctx context.Context, entries []domain.TranscriptEntry) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
	INSERT INTO transcripts (id, session_id, seq, role, content, intent, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	seqs := make(map[string]int64)
	for _, e := range entries {
		seq, ok := seqs[e.SessionID]
		if !ok {
			row := tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(seq), 0) FROM transcripts WHERE session_id = ?`, e.SessionID)
			if err := row.Scan(&seq); err != nil {
				return fmt.Errorf("read transcript sequence: %w", err)
			}
		}
		seq++
		seqs[e.SessionID] = seq
		if _, err := tx.ExecContext(ctx, query,
			e.ID, e.SessionID, seq, string(e.Role), e.Content, e.Intent, e.CreatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("insert transcript entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transcript: %w", err)
	}
	return nil
}

// ListTranscript returns entries for a session, oldest first. With a
// positive limit only the most recent limit entries are returned.
func (s *SQLiteStore) ListTranscript(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error) {
	query := `
		SELECT id, session_id, role, content, intent, created_at FROM (
			SELECT id, session_id, seq, role, content, intent, created_at
			FROM transcripts WHERE session_id = ?
			ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close transcript rows", "error", closeErr)
		}
	}()

	var entries []domain.TranscriptEntry
	for rows.Next() {
		var e domain.TranscriptEntry
		var role string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.SessionID, &role, &e.Content, &e.Intent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		e.Role = domain.Role(role)
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript: %w", err)
	}

	return entries, nil
}

// CleanupOlderThan removes entries older than age.
func (s *SQLiteStore) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	threshold := time.Now().Add(-age).UnixNano()
	result, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup transcripts: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
