// Package voices caches the name to voice-id mapping from the synthesis
// service so runs can resolve a configured voice name without a network
// round trip.
package voices

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"voxsmith/internal/config"
	"voxsmith/internal/services"
)

// Voice is one cached catalog entry.
type Voice struct {
	ID        string
	Name      string
	Category  string
	FetchedAt time.Time
}

// Store manages voice cache persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the voice cache database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.VoiceCachePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS voices (
            voice_id   TEXT NOT NULL,
            name       TEXT NOT NULL PRIMARY KEY,
            category   TEXT NOT NULL DEFAULT '',
            fetched_at TEXT NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("create voices table: %w", err)
	}
	return nil
}

// Replace swaps the entire cached catalog for the supplied voices in one
// transaction.
func (s *Store) Replace(ctx context.Context, voices []Voice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin voice refresh: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM voices"); err != nil {
		return fmt.Errorf("clear voice cache: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, voice := range voices {
		fetched := now
		if !voice.FetchedAt.IsZero() {
			fetched = voice.FetchedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO voices (voice_id, name, category, fetched_at) VALUES (?, ?, ?, ?)",
			voice.ID, voice.Name, voice.Category, fetched,
		); err != nil {
			return fmt.Errorf("insert voice %q: %w", voice.Name, err)
		}
	}
	return tx.Commit()
}

// Resolve looks up a voice id by its display name. The match is
// case-insensitive.
func (s *Store) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "preflight", "resolve-voice", "voice name required", nil)
	}
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT voice_id FROM voices WHERE name = ? COLLATE NOCASE", name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", services.Wrap(services.ErrValidation, "preflight", "resolve-voice",
			fmt.Sprintf("voice %q not found in cache", name), nil)
	}
	if err != nil {
		return "", fmt.Errorf("query voice %q: %w", name, err)
	}
	return id, nil
}

// List returns the cached catalog ordered by name.
func (s *Store) List(ctx context.Context) ([]Voice, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT voice_id, name, category, fetched_at FROM voices ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer rows.Close()

	var voices []Voice
	for rows.Next() {
		var voice Voice
		var fetched string
		if err := rows.Scan(&voice.ID, &voice.Name, &voice.Category, &fetched); err != nil {
			return nil, fmt.Errorf("scan voice row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, fetched); parseErr == nil {
			voice.FetchedAt = ts
		}
		voices = append(voices, voice)
	}
	return voices, rows.Err()
}

// Stale reports whether the cache is empty or older than maxAge.
func (s *Store) Stale(ctx context.Context, maxAge time.Duration) (bool, error) {
	var newest sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MAX(fetched_at) FROM voices").Scan(&newest)
	if err != nil {
		return true, fmt.Errorf("query cache age: %w", err)
	}
	if !newest.Valid || strings.TrimSpace(newest.String) == "" {
		return true, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, newest.String)
	if err != nil {
		return true, nil
	}
	return time.Since(ts) > maxAge, nil
}
