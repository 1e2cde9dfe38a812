// Package words loads the playable word lists and decides whether a guess is a
// real word, falling back to an online dictionary for words missing from the lists.
package words

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// DefaultFiles are the word list files shipped in the data directory.
var DefaultFiles = []string{
	"SAT369_definitions_examples.json",
	"oxford_3000.json",
	"oxford_5000_exclusive.json",
}

// ErrNoWords is returned when no word of the requested length is available.
var ErrNoWords = errors.New("no words of that length")

// Dictionary answers whether a word exists when it is not in the local lists.
type Dictionary interface {
	Known(ctx context.Context, word string) (bool, error)
}

type entry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

type catalog struct {
	byLength    map[int][]string
	sets        map[int]map[string]struct{}
	definitions map[string]string
	total       int
}

// Source owns the loaded word lists. The lists are read on first use and cached;
// a failed load is not cached so the next call retries.
type Source struct {
	fsys  fs.FS
	files []string
	dict  Dictionary

	group singleflight.Group
	mu    sync.RWMutex
	cat   *catalog
}

// NewSource reads files from fsys. dict may be nil to disable the online fallback.
func NewSource(fsys fs.FS, files []string, dict Dictionary) *Source {
	return &Source{fsys: fsys, files: files, dict: dict}
}

// Load reads every word list once. Concurrent callers share a single read.
func (s *Source) Load(ctx context.Context) error {
	_, err := s.catalog(ctx)
	return err
}

func (s *Source) catalog(ctx context.Context) (*catalog, error) {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}

	ch := s.group.DoChan("load", func() (any, error) {
		cat, err := s.read()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cat = cat
		s.mu.Unlock()
		return cat, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load word lists: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalog), nil
	}
}

func (s *Source) read() (*catalog, error) {
	var all []entry
	for _, name := range s.files {
		data, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read word list %s: %w", name, err)
		}
		entries, err := parseEntries(data)
		if err != nil {
			return nil, fmt.Errorf("parse word list %s: %w", name, err)
		}
		log.Debug().Str("file", name).Int("entries", len(entries)).Msg("word list read")
		all = append(all, entries...)
	}

	cat := &catalog{definitions: make(map[string]string)}
	for _, e := range all {
		w := normalize(e.Word)
		if e.Definition != "" && cat.definitions[w] == "" {
			cat.definitions[w] = strings.TrimSpace(e.Definition)
		}
	}

	words := lo.Uniq(lo.FilterMap(all, func(e entry, _ int) (string, bool) {
		w := normalize(e.Word)
		return w, w != "" && isAlpha(w)
	}))
	cat.total = len(words)
	cat.byLength = lo.GroupBy(words, func(w string) int { return len(w) })
	cat.sets = lo.MapValues(cat.byLength, func(list []string, _ int) map[string]struct{} {
		return lo.SliceToMap(list, func(w string) (string, struct{}) { return w, struct{}{} })
	})
	log.Info().Int("words", cat.total).Int("files", len(s.files)).Msg("word lists loaded")
	return cat, nil
}

// parseEntries accepts either an array of entries or an object of entries keyed
// by index.
func parseEntries(data []byte) ([]entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	if data[0] == '[' {
		var list []entry
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var keyed map[string]entry
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, err
	}
	return lo.Values(keyed), nil
}

// ListWords returns the accepted words of the given length.
func (s *Source) ListWords(ctx context.Context, length int) ([]string, error) {
	cat, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.byLength[length], nil
}

// IsAccepted reports whether word is a playable guess of the given length. Words
// missing from the lists are checked against the dictionary; any failure along the
// way rejects the word.
func (s *Source) IsAccepted(ctx context.Context, word string, length int) bool {
	word = normalize(word)
	if len(word) != length || !isAlpha(word) {
		return false
	}
	cat, err := s.catalog(ctx)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("word lists unavailable, rejecting guess")
		return false
	}
	if _, ok := cat.sets[length][word]; ok {
		return true
	}
	if s.dict == nil {
		return false
	}
	known, err := s.dict.Known(ctx, word)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("dictionary lookup failed, rejecting guess")
		return false
	}
	return known
}

// RandomWord picks a target word of the given length.
func (s *Source) RandomWord(ctx context.Context, length int) (string, error) {
	list, err := s.ListWords(ctx, length)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("%w: %d", ErrNoWords, length)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		log.Warn().Err(err).Msg("random number generation failed, using first word")
		return list[0], nil
	}
	return list[n.Int64()], nil
}

// Definition returns the definition shipped with word, if any. It never triggers
// a load.
func (s *Source) Definition(word string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return ""
	}
	return s.cat.definitions[normalize(word)]
}

// Counts returns the number of loaded words per length. Empty before the first load.
func (s *Source) Counts() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cat == nil {
		return map[int]int{}
	}
	return lo.MapValues(s.cat.byLength, func(list []string, _ int) int { return len(list) })
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
