package game

import (
	"strings"

	"github.com/samber/lo"

	"wordbreaker/internal/types"
)

var keyboardLayout = [][]string{
	{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P"},
	{"A", "S", "D", "F", "G", "H", "J", "K", "L"},
	{"Enter", "Z", "X", "C", "V", "B", "N", "M", "Backspace"},
}

// Render builds the board and keyboard for st. The target word is only included
// once the game is over.
func Render(st State) types.View {
	return types.View{
		Board:        renderBoard(st),
		Keyboard:     renderKeyboard(st.Guesses),
		Status:       string(st.Status),
		WordLength:   st.WordLength,
		MaxAttempts:  st.MaxAttempts,
		AttemptsLeft: st.AttemptsLeft(),
		TargetWord:   st.Revealed(),
	}
}

func renderBoard(st State) []types.Row {
	return lo.Times(st.MaxAttempts, func(i int) types.Row {
		switch {
		case i < len(st.Guesses):
			return types.Row{Cells: lo.Map(st.Guesses[i], func(t Tile, _ int) types.Cell {
				return types.Cell{Letter: strings.ToUpper(t.Letter), State: string(t.Result)}
			})}
		case i == len(st.Guesses) && !st.Over():
			letters := []rune(strings.ToUpper(st.CurrentGuess))
			return types.Row{Current: true, Cells: lo.Times(st.WordLength, func(j int) types.Cell {
				if j < len(letters) {
					return types.Cell{Letter: string(letters[j])}
				}
				return types.Cell{}
			})}
		default:
			return types.Row{Cells: make([]types.Cell, st.WordLength)}
		}
	})
}

func renderKeyboard(guesses []GuessRecord) [][]types.Key {
	states := KeyStates(guesses)
	return lo.Map(keyboardLayout, func(row []string, _ int) []types.Key {
		return lo.Map(row, func(k string, _ int) types.Key {
			key := types.Key{Label: k, Value: k}
			switch k {
			case "Backspace":
				key.Label = "⌫"
				key.Wide = true
			case "Enter":
				key.Wide = true
			default:
				key.State = string(states[rune(strings.ToLower(k)[0])])
			}
			return key
		})
	})
}
