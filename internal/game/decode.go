package game

import (
	"encoding/json"
	"fmt"
)

// snapshot mirrors State with pointer fields so missing keys can be told apart
// from zero values.
type snapshot struct {
	TargetWord   *string        `json:"targetWord"`
	Guesses      *[]GuessRecord `json:"guesses"`
	CurrentGuess *string        `json:"currentGuess"`
	Status       *Status        `json:"status"`
	WordLength   *int           `json:"wordLength"`
	MaxAttempts  *int           `json:"maxAttempts"`
}

// Decode parses a persisted snapshot and checks its shape. Anything that does not
// look like a State yields ErrCorruptState; the data is never repaired.
func Decode(data []byte) (State, error) {
	var raw snapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if raw.TargetWord == nil || raw.Guesses == nil || raw.CurrentGuess == nil ||
		raw.Status == nil || raw.WordLength == nil || raw.MaxAttempts == nil {
		return State{}, fmt.Errorf("%w: missing field", ErrCorruptState)
	}

	st := State{
		TargetWord:   *raw.TargetWord,
		Guesses:      *raw.Guesses,
		CurrentGuess: *raw.CurrentGuess,
		Status:       *raw.Status,
		WordLength:   *raw.WordLength,
		MaxAttempts:  *raw.MaxAttempts,
	}
	if err := st.checkShape(); err != nil {
		return State{}, err
	}
	return st, nil
}

func (s State) checkShape() error {
	switch s.Status {
	case Playing, Won, Lost:
	default:
		return fmt.Errorf("%w: status %q", ErrCorruptState, s.Status)
	}
	if s.WordLength <= 0 || s.MaxAttempts <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrCorruptState, s.MaxAttempts, s.WordLength)
	}
	if len(s.TargetWord) != s.WordLength {
		return fmt.Errorf("%w: target length %d, want %d", ErrCorruptState, len(s.TargetWord), s.WordLength)
	}
	if len(s.CurrentGuess) > s.WordLength {
		return fmt.Errorf("%w: current guess too long", ErrCorruptState)
	}
	if len(s.Guesses) > s.MaxAttempts {
		return fmt.Errorf("%w: %d guesses, max %d", ErrCorruptState, len(s.Guesses), s.MaxAttempts)
	}
	for i, g := range s.Guesses {
		if len(g) != s.WordLength {
			return fmt.Errorf("%w: guess %d has %d letters", ErrCorruptState, i, len(g))
		}
		for _, t := range g {
			if len(t.Letter) != 1 {
				return fmt.Errorf("%w: guess %d letter %q", ErrCorruptState, i, t.Letter)
			}
			switch t.Result {
			case Correct, Present, Absent:
			default:
				return fmt.Errorf("%w: guess %d result %q", ErrCorruptState, i, t.Result)
			}
		}
	}

	solved := false
	for _, g := range s.Guesses {
		if g.Solved() {
			solved = true
		}
	}
	var want Status
	switch {
	case solved:
		want = Won
	case len(s.Guesses) == s.MaxAttempts:
		want = Lost
	default:
		want = Playing
	}
	if s.Status != want {
		return fmt.Errorf("%w: status %q does not match history", ErrCorruptState, s.Status)
	}
	return nil
}
