package game

import "strings"

// State is an immutable snapshot of one game. Every accepted action returns a new
// State; slices held by an existing State are never written to again.
type State struct {
	TargetWord   string        `json:"targetWord"`
	Guesses      []GuessRecord `json:"guesses"`
	CurrentGuess string        `json:"currentGuess"`
	Status       Status        `json:"status"`
	WordLength   int           `json:"wordLength"`
	MaxAttempts  int           `json:"maxAttempts"`
}

// NewState returns a fresh game for target.
func NewState(target string, maxAttempts int) State {
	target = strings.ToLower(target)
	return State{
		TargetWord:  target,
		Guesses:     []GuessRecord{},
		Status:      Playing,
		WordLength:  len([]rune(target)),
		MaxAttempts: maxAttempts,
	}
}

// Over reports whether the game reached a terminal status.
func (s State) Over() bool {
	return s.Status != Playing
}

// AttemptsLeft returns how many guesses can still be submitted.
func (s State) AttemptsLeft() int {
	if s.Over() {
		return 0
	}
	return s.MaxAttempts - len(s.Guesses)
}

// Revealed returns the target word once the game is over, "" before.
func (s State) Revealed() string {
	if s.Over() {
		return s.TargetWord
	}
	return ""
}

// AppendChar adds key to the current guess when key is a single letter and the
// guess is not yet full. Anything else returns s unchanged.
func (s State) AppendChar(key string) State {
	if s.Over() || len(key) != 1 || !isLetter(key[0]) {
		return s
	}
	if len(s.CurrentGuess) >= s.WordLength {
		return s
	}
	s.CurrentGuess += strings.ToLower(key)
	return s
}

// Backspace removes the last letter of the current guess.
func (s State) Backspace() State {
	if s.Over() || s.CurrentGuess == "" {
		return s
	}
	s.CurrentGuess = s.CurrentGuess[:len(s.CurrentGuess)-1]
	return s
}

// WithGuess replaces the current guess with the letters of word, keeping at most
// WordLength of them. Non-letters are skipped.
func (s State) WithGuess(word string) State {
	if s.Over() {
		return s
	}
	s.CurrentGuess = ""
	for i := 0; i < len(word); i++ {
		s = s.AppendChar(word[i : i+1])
	}
	return s
}

// Accept scores the current guess, which the caller has already validated, and
// returns the resulting snapshot.
func (s State) Accept() State {
	if s.Over() || len(s.CurrentGuess) != s.WordLength {
		return s
	}
	record := Score(s.CurrentGuess, s.TargetWord)

	guesses := make([]GuessRecord, len(s.Guesses), len(s.Guesses)+1)
	copy(guesses, s.Guesses)
	s.Guesses = append(guesses, record)
	s.CurrentGuess = ""

	switch {
	case record.Solved():
		s.Status = Won
	case len(s.Guesses) >= s.MaxAttempts:
		s.Status = Lost
	}
	return s
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
