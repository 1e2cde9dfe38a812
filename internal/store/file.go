package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wordbreaker/internal/game"
)

// FileStore keeps one JSON file per session in a directory.
type FileStore struct {
	dir    string
	maxAge time.Duration
}

// NewFileStore creates dir if needed. Files older than maxAge are treated as
// missing; zero disables expiry.
func NewFileStore(dir string, maxAge time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir, maxAge: maxAge}, nil
}

// sessionPath maps id to a file inside the store directory. Only UUIDs are
// accepted so an id can never escape the directory.
func (s *FileStore) sessionPath(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || len(id) != 36 {
		return "", fmt.Errorf("invalid session ID format: %q", id)
	}
	path := filepath.Join(s.dir, parsed.String()+".json")
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("session path escapes store directory: %q", id)
	}
	return path, nil
}

func (s *FileStore) Save(_ context.Context, id string, st game.State) error {
	path, err := s.sessionPath(id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session %s: %w", id, err)
	}
	log.Debug().Str("session", id).Msg("session file saved")
	return nil
}

func (s *FileStore) Load(_ context.Context, id string) (game.State, error) {
	path, err := s.sessionPath(id)
	if err != nil {
		return game.State{}, ErrNotFound
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return game.State{}, ErrNotFound
		}
		return game.State{}, fmt.Errorf("stat session %s: %w", id, err)
	}
	if expired(info.ModTime(), s.maxAge) {
		log.Debug().Str("session", id).Dur("age", time.Since(info.ModTime())).Msg("session file expired, removing")
		os.Remove(path)
		return game.State{}, ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return game.State{}, fmt.Errorf("read session %s: %w", id, err)
	}
	st, err := game.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("discarding corrupt session file")
		os.Remove(path)
		return game.State{}, ErrNotFound
	}
	return st, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.sessionPath(id)
	if err != nil {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read session dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed, failed := 0, 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			failed++
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				log.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove old session file")
				failed++
				continue
			}
			removed++
		}
	}
	log.Info().Int("removed", removed).Int("errors", failed).Msg("session file cleanup completed")
	return removed, nil
}

func (s *FileStore) Close() error { return nil }
