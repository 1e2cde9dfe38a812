package game

import "unicode/utf8"

var resultRank = map[LetterResult]int{
	Absent:  1,
	Present: 2,
	Correct: 3,
}

// KeyStates returns the best known result for every letter seen in guesses.
// Letters never guessed are absent from the map.
func KeyStates(guesses []GuessRecord) map[rune]LetterResult {
	states := make(map[rune]LetterResult)
	for _, g := range guesses {
		for _, t := range g {
			r, _ := utf8.DecodeRuneInString(t.Letter)
			if resultRank[t.Result] > resultRank[states[r]] {
				states[r] = t.Result
			}
		}
	}
	return states
}
