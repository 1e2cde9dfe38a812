package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// WordSource supplies target words and decides which guesses are real words.
type WordSource interface {
	IsAccepted(ctx context.Context, word string, length int) bool
	RandomWord(ctx context.Context, length int) (string, error)
}

// Session owns the current State of one player and applies actions to it one at a
// time. Only one word check can be outstanding; input arriving meanwhile is
// rejected with ErrBusy.
type Session struct {
	words       WordSource
	maxAttempts int

	mu       sync.Mutex
	state    State
	gen      uint64
	checking bool
	onChange func(State)
}

// Start draws a target of the given length and returns a session playing it.
func Start(ctx context.Context, words WordSource, length, maxAttempts int) (*Session, error) {
	s := &Session{words: words, maxAttempts: maxAttempts}
	if _, err := s.NewGame(ctx, length); err != nil {
		return nil, err
	}
	return s, nil
}

// Resume wraps a previously persisted snapshot. The restored game keeps its own
// attempt limit; games started later in the session allow maxAttempts.
func Resume(words WordSource, st State, maxAttempts int) *Session {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Session{words: words, maxAttempts: maxAttempts, state: st}
}

// OnChange registers fn to receive every new snapshot. fn runs with the session
// lock held and must not block.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Checking reports whether a submitted word is still being validated.
func (s *Session) Checking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checking
}

// Key dispatches a raw key name: "Enter", "Backspace" or a single letter.
func (s *Session) Key(ctx context.Context, key string) (State, error) {
	switch key {
	case "Enter":
		return s.Submit(ctx)
	case "Backspace":
		return s.Backspace()
	default:
		return s.AppendChar(key)
	}
}

// AppendChar adds a letter to the current guess.
func (s *Session) AppendChar(key string) (State, error) {
	return s.edit(func(st State) State { return st.AppendChar(key) })
}

// Backspace removes the last letter of the current guess.
func (s *Session) Backspace() (State, error) {
	return s.edit(State.Backspace)
}

func (s *Session) edit(fn func(State) State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checking {
		return s.state, ErrBusy
	}
	next := fn(s.state)
	if next.CurrentGuess != s.state.CurrentGuess {
		s.commit(next)
	}
	return s.state, nil
}

// Submit validates the current guess with the word source and, if accepted, scores
// it. The session lock is released while the word source is consulted.
func (s *Session) Submit(ctx context.Context) (State, error) {
	return s.submit(ctx, nil)
}

// SubmitWord replaces the current guess with word and submits it. No other input
// can land between the two. A word of the wrong length leaves the input alone.
func (s *Session) SubmitWord(ctx context.Context, word string) (State, error) {
	return s.submit(ctx, func(st State) (State, error) {
		if len(word) != st.WordLength {
			return st, ErrIncompleteGuess
		}
		return st.WithGuess(word), nil
	})
}

func (s *Session) submit(ctx context.Context, prepare func(State) (State, error)) (State, error) {
	s.mu.Lock()
	switch {
	case s.state.Over():
		s.mu.Unlock()
		return s.state, ErrGameOver
	case s.checking:
		s.mu.Unlock()
		return s.state, ErrBusy
	}
	if prepare != nil {
		next, err := prepare(s.state)
		if err != nil {
			s.mu.Unlock()
			return s.state, err
		}
		if next.CurrentGuess != s.state.CurrentGuess {
			s.commit(next)
		}
	}
	st := s.state
	if len(st.CurrentGuess) != st.WordLength {
		s.mu.Unlock()
		return st, ErrIncompleteGuess
	}
	s.checking = true
	gen := s.gen
	s.mu.Unlock()

	accepted := s.words.IsAccepted(ctx, st.CurrentGuess, st.WordLength)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A new game replaced the one this guess was typed into.
		log.Debug().Str("guess", st.CurrentGuess).Msg("dropping stale submission")
		return s.state, nil
	}
	s.checking = false
	if !accepted {
		return s.state, ErrNotAWord
	}

	next := st.Accept()
	s.commit(next)
	switch next.Status {
	case Won:
		log.Info().Int("attempts", len(next.Guesses)).Str("word", next.TargetWord).Msg("game won")
	case Lost:
		log.Info().Int("attempts", len(next.Guesses)).Str("word", next.TargetWord).Msg("game lost")
	}
	return next, nil
}

// NewGame abandons the current game, whatever its status, and starts another with
// a freshly drawn target of the given length.
func (s *Session) NewGame(ctx context.Context, length int) (State, error) {
	if !IsSupportedLength(length) {
		return s.State(), ErrUnsupportedLength
	}
	target, err := s.words.RandomWord(ctx, length)
	if err != nil {
		return s.State(), fmt.Errorf("draw %d-letter word: %w", length, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checking = false
	next := NewState(target, s.maxAttempts)
	s.commit(next)
	log.Debug().Int("length", length).Msg("new game started")
	return next, nil
}

// ChangeLength starts a new game with a different word length. Progress in the
// running game is discarded without confirmation.
func (s *Session) ChangeLength(ctx context.Context, length int) (State, error) {
	current := s.State()
	if !current.Over() && len(current.Guesses) > 0 {
		log.Debug().Int("from", current.WordLength).Int("to", length).Msg("discarding game in progress")
	}
	return s.NewGame(ctx, length)
}

// commit publishes next as the current snapshot. Caller holds s.mu.
func (s *Session) commit(next State) {
	s.state = next
	s.gen++
	if s.onChange != nil {
		s.onChange(next)
	}
}
