// Package history keeps a sqlite record of saved sessions
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 50

// SQLiteHistory implements ports.SessionHistory on a sqlite file
type SQLiteHistory struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.SessionHistory = (*SQLiteHistory)(nil)

// Open opens (creating if needed) the history database at path
func Open(ctx context.Context, path string, logger *slog.Logger) (*SQLiteHistory, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_foreign_keys=1&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases live per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	h := &SQLiteHistory{db: db, logger: logger.With("adapter", "history")}
	if err := h.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	h.logger.Debug("session history opened", slog.String("path", path))
	return h, nil
}

func (h *SQLiteHistory) createTables(ctx context.Context) error {
	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		deck_slug TEXT NOT NULL DEFAULT '',
		deck_title TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		duration_seconds REAL NOT NULL DEFAULT 0,
		slide_count INTEGER NOT NULL DEFAULT 0,
		marker_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		audio_path TEXT NOT NULL DEFAULT '',
		log_path TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := h.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	createIndex := `CREATE INDEX IF NOT EXISTS idx_sessions_deck ON sessions(deck_slug, started_at);`
	if _, err := h.db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create deck index: %w", err)
	}

	return nil
}

// DeckSlug is the key sessions are grouped by
func DeckSlug(title string) string {
	return slug.Make(strings.TrimSpace(title))
}

// Record stores a session summary. Recording the same id twice replaces it.
func (h *SQLiteHistory) Record(ctx context.Context, record entities.SessionRecord) error {
	if record.ID == "" {
		return errors.New("session record without id")
	}
	if record.DeckSlug == "" {
		record.DeckSlug = DeckSlug(record.DeckTitle)
	}

	_, err := h.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO sessions
		(id, deck_slug, deck_title, started_at, duration_seconds, slide_count, marker_count, status, audio_path, log_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.DeckSlug, record.DeckTitle, record.StartedAt, record.DurationSeconds,
		record.SlideCount, record.MarkerCount, string(record.Status), record.AudioPath, record.LogPath)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	h.logger.Debug("session recorded",
		slog.String("session_id", record.ID),
		slog.String("deck", record.DeckSlug))
	return nil
}

// List returns the most recent sessions first. An empty deckTitle lists all
// decks; limit <= 0 uses DefaultListLimit.
func (h *SQLiteHistory) List(ctx context.Context, deckTitle string, limit int) ([]entities.SessionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
	SELECT id, deck_slug, deck_title, started_at, duration_seconds, slide_count, marker_count, status, audio_path, log_path
	FROM sessions`
	args := []interface{}{}
	if strings.TrimSpace(deckTitle) != "" {
		query += ` WHERE deck_slug = ?`
		args = append(args, DeckSlug(deckTitle))
	}
	query += ` ORDER BY started_at DESC, created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []entities.SessionRecord{}
	for rows.Next() {
		var r entities.SessionRecord
		var status string
		if err := rows.Scan(&r.ID, &r.DeckSlug, &r.DeckTitle, &r.StartedAt, &r.DurationSeconds,
			&r.SlideCount, &r.MarkerCount, &status, &r.AudioPath, &r.LogPath); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		r.Status = entities.SessionStatus(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (h *SQLiteHistory) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
