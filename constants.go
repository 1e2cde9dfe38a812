package main

import "time"

// Session configuration constants
const (
	SessionCookieName = "session_id"

	// Per-client rate limiters unused for this long are dropped by the sweep.
	LimiterIdleTimeout = 10 * time.Minute
)

// Route constants
const (
	RouteHome       = "/"
	RouteGameState  = "/game-state"
	RouteKey        = "/key"
	RouteGuess      = "/guess"
	RouteNewGame    = "/new-game"
	RouteWordLength = "/word-length"
	RouteHealthz    = "/healthz"
)

// Notice messages shown above the board
const (
	NoticeGameOver          = "Game is over. Start a new one!"
	NoticeIncompleteGuess   = "Not enough letters."
	NoticeNotAWord          = "Not in word list."
	NoticeBusy              = "Still checking the last word..."
	NoticeUnsupportedLength = "That word length is not available."
	NoticeNoWords           = "No words available right now. Please try again."
	NoticeUnexpected        = "Something went wrong. Please try again."
)

const pageTitle = "Word Breaker"

type contextKey string

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
