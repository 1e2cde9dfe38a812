package game

import (
	"slices"
	"testing"
)

const (
	C = Correct
	P = Present
	A = Absent
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		guess, target string
		want          []LetterResult
		comment       string
	}{
		{"apple", "apple", []LetterResult{C, C, C, C, C}, "exact match"},
		{"zzzzz", "apple", []LetterResult{A, A, A, A, A}, "no shared letters"},
		{"pleap", "apple", []LetterResult{P, P, P, P, P}, "all displaced"},
		{"aplex", "apple", []LetterResult{C, C, P, P, A}, "mixed"},
		{"allee", "apple", []LetterResult{C, P, A, A, C}, "repeated letters"},
		{"crane", "crate", []LetterResult{C, C, C, A, C}, "single miss"},
		{"alley", "apple", []LetterResult{C, P, A, P, A}, "double l against single l"},
		{"eerie", "there", []LetterResult{P, A, P, A, C}, "exact match claims letter first"},
		{"book", "boot", []LetterResult{C, C, C, A}, "four letters"},
		{"banana", "cabana", []LetterResult{P, C, A, C, C, C}, "six letters"},
	}
	for _, tt := range tests {
		got := Evaluate(tt.guess, tt.target)
		if !slices.Equal(got, tt.want) {
			t.Errorf("%s: Evaluate(%q, %q) = %v, want %v", tt.comment, tt.guess, tt.target, got, tt.want)
		}
	}
}

func TestEvaluate_Properties(t *testing.T) {
	words := []string{"apple", "pleap", "allee", "zzzzz", "eerie", "there", "level", "lever", "geese", "egret"}
	for _, g := range words {
		for _, tg := range words {
			got := Evaluate(g, tg)
			if len(got) != len(g) {
				t.Fatalf("Evaluate(%q, %q) returned %d results", g, tg, len(got))
			}
			for i, r := range got {
				if r != Correct && r != Present && r != Absent {
					t.Errorf("Evaluate(%q, %q)[%d] = %q", g, tg, i, r)
				}
				if (r == Correct) != (g[i] == tg[i]) {
					t.Errorf("Evaluate(%q, %q)[%d] = %q, letters %c/%c", g, tg, i, r, g[i], tg[i])
				}
			}
			// A letter can never be marked more often than it occurs in the target.
			marked := map[byte]int{}
			inTarget := map[byte]int{}
			for i := range g {
				inTarget[tg[i]]++
				if got[i] != Absent {
					marked[g[i]]++
				}
			}
			for letter, n := range marked {
				if n > inTarget[letter] {
					t.Errorf("Evaluate(%q, %q): %c marked %d times, target has %d", g, tg, letter, n, inTarget[letter])
				}
			}
		}
	}
}

func TestEvaluate_SelfIsAllCorrect(t *testing.T) {
	for _, w := range []string{"book", "apple", "banana", "aaaaa"} {
		for i, r := range Evaluate(w, w) {
			if r != Correct {
				t.Errorf("Evaluate(%q, %q)[%d] = %q, want correct", w, w, i, r)
			}
		}
	}
}

func TestEvaluate_LengthMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Evaluate with mismatched lengths should panic")
		}
	}()
	_ = Evaluate("app", "apple")
}

func TestScore(t *testing.T) {
	record := Score("allee", "apple")
	if record.Word() != "allee" {
		t.Errorf("Score word = %q, want allee", record.Word())
	}
	want := []LetterResult{C, P, A, A, C}
	for i, tile := range record {
		if tile.Result != want[i] {
			t.Errorf("Score tile %d = %+v, want %q", i, tile, want[i])
		}
	}
	if record.Solved() {
		t.Error("record should not be solved")
	}
	if !Score("apple", "apple").Solved() {
		t.Error("exact guess should be solved")
	}
}
