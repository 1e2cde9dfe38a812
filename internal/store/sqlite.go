package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"wordbreaker/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game_sessions (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_sessions_updated_at ON game_sessions(updated_at);
`

// SQLiteStore keeps snapshots in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	maxAge time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string, maxAge time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, maxAge: maxAge}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, st game.State) error {
	data, err := marshalState(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_sessions (id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		id, data, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (game.State, error) {
	var (
		data    string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, updated_at FROM game_sessions WHERE id = ?`, id,
	).Scan(&data, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.State{}, ErrNotFound
		}
		return game.State{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if expired(time.UnixMilli(updated), s.maxAge) {
		s.Delete(ctx, id)
		return game.State{}, ErrNotFound
	}
	st, err := game.Decode([]byte(data))
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("discarding corrupt session row")
		s.Delete(ctx, id)
		return game.State{}, ErrNotFound
	}
	return st, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM game_sessions WHERE updated_at < ?`, time.Now().Add(-maxAge).UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	log.Info().Int64("removed", n).Msg("session row cleanup completed")
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
