// Package store saves finished analyses for later retrieval by user.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/maastricht-university/edmo-voice/orchestrator"
)

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("analysis not found")

type Record struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Hash      string          `json:"hash,omitempty"`
	Method    string          `json:"analysis_method"`
	Payload   json.RawMessage `json:"result"`
}

// SQLiteSink stores results in a single SQLite table.
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS voice_analyses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			hash TEXT,
			method TEXT NOT NULL,
			payload TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_voice_analyses_user ON voice_analyses(user_id, created_at DESC);
	`)
	return err
}

// Save stores r for userID under a new random key and returns the key.
func (s *SQLiteSink) Save(ctx context.Context, userID string, r orchestrator.Result) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	var hash string
	if fr, ok := r.(*orchestrator.FullResult); ok {
		hash = fr.Metadata.Hash
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO voice_analyses (id, user_id, created_at, hash, method, payload) VALUES (?, ?, ?, ?, ?, ?)",
		id, userID, s.now().UTC().Format(time.RFC3339Nano), hash, r.Method(), string(payload))
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

func (s *SQLiteSink) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, hash, method, payload FROM voice_analyses WHERE id = ?", id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns the analyses of userID, newest first.
func (s *SQLiteSink) List(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, created_at, hash, method, payload FROM voice_analyses WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (Record, error) {
	var rec Record
	var created, payload string
	var hash sql.NullString
	if err := sc.Scan(&rec.ID, &rec.UserID, &created, &hash, &rec.Method, &payload); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt, rec.Hash, rec.Payload = t, hash.String, json.RawMessage(payload)
	return rec, nil
}
