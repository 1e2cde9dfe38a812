// Package store persists game snapshots keyed by session ID.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wordbreaker/internal/game"
)

// ErrNotFound is returned by Load when no usable snapshot exists. Corrupt
// snapshots are deleted and reported as ErrNotFound too.
var ErrNotFound = errors.New("session not found")

// Store defines persistence for game snapshots.
type Store interface {
	// Save persists or replaces the snapshot for id.
	Save(ctx context.Context, id string, st game.State) error
	// Load returns the snapshot for id, or ErrNotFound.
	Load(ctx context.Context, id string) (game.State, error)
	// Delete removes the snapshot for id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Cleanup removes snapshots not saved within maxAge and reports how many.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
	Close() error
}

// Config selects and configures a Store implementation.
type Config struct {
	Driver     string
	Dir        string
	SQLitePath string
	MaxAge     time.Duration
}

// Open returns the Store named by cfg.Driver: "file", "sqlite" or "memory".
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Dir, cfg.MaxAge)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, cfg.MaxAge)
	case "memory":
		return NewMemoryStore(cfg.MaxAge), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func expired(saved time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && time.Since(saved) > maxAge
}

func marshalState(st game.State) (string, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}
