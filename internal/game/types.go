package game

import "errors"

// Game configuration defaults
const (
	DefaultWordLength  = 5
	DefaultMaxAttempts = 7
)

// SupportedLengths lists the word lengths a game can be started with.
var SupportedLengths = []int{4, 5, 6}

// LetterResult is the evaluation of a single guessed letter.
type LetterResult string

const (
	Correct LetterResult = "correct"
	Present LetterResult = "present"
	Absent  LetterResult = "absent"
)

// Status is the lifecycle state of a game.
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	Lost    Status = "lost"
)

// Tile is one scored letter of a submitted guess.
type Tile struct {
	Letter string       `json:"letter"`
	Result LetterResult `json:"state"`
}

// GuessRecord is an accepted guess, one tile per letter.
type GuessRecord []Tile

// Word returns the letters of the record joined together.
func (g GuessRecord) Word() string {
	b := make([]byte, 0, len(g))
	for _, t := range g {
		b = append(b, t.Letter...)
	}
	return string(b)
}

// Solved reports whether every tile is Correct.
func (g GuessRecord) Solved() bool {
	if len(g) == 0 {
		return false
	}
	for _, t := range g {
		if t.Result != Correct {
			return false
		}
	}
	return true
}

// User-facing rejections. State is never modified when one is returned.
var (
	ErrGameOver          = errors.New("game is over")
	ErrIncompleteGuess   = errors.New("not enough letters")
	ErrNotAWord          = errors.New("not a valid word")
	ErrBusy              = errors.New("still checking the last word")
	ErrUnsupportedLength = errors.New("unsupported word length")
	ErrCorruptState      = errors.New("corrupt game state")
)

// IsSupportedLength reports whether n is one of SupportedLengths.
func IsSupportedLength(n int) bool {
	for _, l := range SupportedLengths {
		if l == n {
			return true
		}
	}
	return false
}
