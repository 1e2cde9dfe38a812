package game

import "fmt"

// consumed marks a letter that has already been matched.
const consumed = 0

// Evaluate scores guess against target letter by letter.
//
// Exact matches are claimed first so a target letter matched in place can never
// also produce a Present elsewhere. Both words must be lowercase and of equal
// length; a length mismatch is a caller bug and panics.
func Evaluate(guess, target string) []LetterResult {
	g := []rune(guess)
	t := []rune(target)
	if len(g) != len(t) {
		panic(fmt.Sprintf("game: evaluate %q against %q: length mismatch", guess, target))
	}

	result := make([]LetterResult, len(g))
	for i := range result {
		result[i] = Absent
	}

	for i := range g {
		if g[i] == t[i] {
			result[i] = Correct
			g[i] = consumed
			t[i] = consumed
		}
	}

	for i := range g {
		if result[i] == Correct {
			continue
		}
		for j := range t {
			if t[j] != consumed && t[j] == g[i] {
				result[i] = Present
				t[j] = consumed
				break
			}
		}
	}

	return result
}

// Score builds the GuessRecord for guess against target.
func Score(guess, target string) GuessRecord {
	results := Evaluate(guess, target)
	record := make(GuessRecord, len(results))
	for i, r := range []rune(guess) {
		record[i] = Tile{Letter: string(r), Result: results[i]}
	}
	return record
}
