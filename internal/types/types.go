package types

// Cell is one square of the board. State is empty for blank or pending cells.
type Cell struct {
	Letter string `json:"letter"`
	State  string `json:"state,omitempty"`
}

type Row struct {
	Cells   []Cell `json:"cells"`
	Current bool   `json:"current,omitempty"`
}

type Key struct {
	Label string `json:"label"`
	Value string `json:"value"`
	State string `json:"state,omitempty"`
	Wide  bool   `json:"wide,omitempty"`
}

// View is everything a client needs to draw the game.
type View struct {
	Board        []Row   `json:"board"`
	Keyboard     [][]Key `json:"keyboard"`
	Status       string  `json:"status"`
	WordLength   int     `json:"wordLength"`
	MaxAttempts  int     `json:"maxAttempts"`
	AttemptsLeft int     `json:"attemptsLeft"`
	TargetWord   string  `json:"targetWord,omitempty"`
	Definition   string  `json:"definition,omitempty"`
	Notice       string  `json:"notice,omitempty"`
	Checking     bool    `json:"checking,omitempty"`
}
