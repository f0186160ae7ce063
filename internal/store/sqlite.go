package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/peterkuimelis/duelcore/internal/game"
)

// SQLiteStore keeps one JSON row per match.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL: %w", err)
		}
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id         TEXT PRIMARY KEY,
			turn       INTEGER NOT NULL,
			over       INTEGER NOT NULL DEFAULT 0,
			state_json TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*game.MatchState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT state_json FROM matches WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", id, err)
	}
	var ms game.MatchState
	if err := json.Unmarshal([]byte(data), &ms); err != nil {
		return nil, fmt.Errorf("decode match %s: %w", id, err)
	}
	return &ms, nil
}

// Save upserts the match state.
func (s *SQLiteStore) Save(ctx context.Context, id string, ms *game.MatchState) error {
	data, err := json.Marshal(ms)
	if err != nil {
		return fmt.Errorf("encode match %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches (id, turn, over, state_json, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			turn = excluded.turn,
			over = excluded.over,
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`, id, ms.Turn, ms.Over, string(data))
	if err != nil {
		return fmt.Errorf("save match %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM matches WHERE id = ?", id)
	return err
}

// List returns the IDs of matches still in progress, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM matches WHERE over = 0 ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
