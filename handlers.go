package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"wordbreaker/internal/game"
	"wordbreaker/internal/types"
	"wordbreaker/internal/words"
)

// homeHandler renders the full page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	sess, ok := app.currentGame(c)
	if !ok {
		return
	}
	app.renderPage(c, sess, sess.State(), "")
}

// gameStateHandler returns the current game as a board fragment or JSON.
func (app *App) gameStateHandler(c *gin.Context) {
	sess, ok := app.currentGame(c)
	if !ok {
		return
	}
	app.respond(c, sess, sess.State(), nil)
}

// keyHandler applies one key press: a letter, Enter or Backspace.
func (app *App) keyHandler(c *gin.Context) {
	sess, ok := app.currentGame(c)
	if !ok {
		return
	}
	st, err := sess.Key(c.Request.Context(), strings.TrimSpace(c.PostForm("key")))
	app.respond(c, sess, st, err)
}

// guessHandler replaces the current input with a whole word and submits it.
func (app *App) guessHandler(c *gin.Context) {
	sess, ok := app.currentGame(c)
	if !ok {
		return
	}
	guess := normalizeGuess(c.PostForm("guess"))
	st, err := sess.SubmitWord(c.Request.Context(), guess)
	app.respond(c, sess, st, err)
}

// newGameHandler starts a new game. The word length defaults to the current one.
func (app *App) newGameHandler(c *gin.Context) {
	sess, ok := app.currentGame(c)
	if !ok {
		return
	}
	length := sess.State().WordLength
	if raw := c.PostForm("length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			app.respond(c, sess, sess.State(), game.ErrUnsupportedLength)
			return
		}
		length = n
	}
	st, err := sess.NewGame(c.Request.Context(), length)
	app.respondOrRedirect(c, sess, st, err)
}

// wordLengthHandler switches to a new game of another length, discarding the
// running one.
func (app *App) wordLengthHandler(c *gin.Context) {
	sess, ok := app.currentGame(c)
	if !ok {
		return
	}
	length, err := strconv.Atoi(c.PostForm("length"))
	if err != nil {
		app.respond(c, sess, sess.State(), game.ErrUnsupportedLength)
		return
	}
	st, err := sess.ChangeLength(c.Request.Context(), length)
	app.respondOrRedirect(c, sess, st, err)
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	counts := app.words.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             app.cfg.envName(),
		"words_loaded":    lo.Sum(lo.Values(counts)),
		"words_by_length": lo.MapKeys(counts, func(_ int, length int) string { return strconv.Itoa(length) }),
		"store":           app.storeDriver(),
		"active_sessions": app.activeSessions(),
		"pending_writes":  app.writer.Pending(),
		"uptime":          formatUptime(time.Since(app.startTime)),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (app *App) storeDriver() string {
	if app.cfg.StoreDriver == "" {
		return "file"
	}
	return app.cfg.StoreDriver
}

// currentGame resolves the session cookie to a live game. When no game can be
// started it writes a 503 and returns false.
func (app *App) currentGame(c *gin.Context) (*game.Session, bool) {
	sessionID := app.getOrCreateSession(c)
	sess, err := app.gameSession(c.Request.Context(), sessionID)
	if err != nil {
		requestLogger(c.Request.Context()).Error().Err(err).Str("session", sessionID).Msg("cannot start game")
		notice := noticeFor(err)
		if notice == "" {
			notice = NoticeUnexpected
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": notice})
		return nil, false
	}
	return sess, true
}

// respond renders st in the format the client asked for: JSON, the board
// fragment for htmx requests, or the full page.
func (app *App) respond(c *gin.Context, sess *game.Session, st game.State, err error) {
	notice := noticeFor(err)
	if err != nil && notice == "" {
		requestLogger(c.Request.Context()).Error().Err(err).Msg("action failed")
		notice = NoticeUnexpected
	}
	switch {
	case wantsJSON(c):
		c.JSON(http.StatusOK, app.view(sess, st, notice))
	case isHTMX(c):
		setNoticeTrigger(c, notice)
		c.HTML(http.StatusOK, "game-content", gin.H{"view": app.view(sess, st, notice), "lengths": game.SupportedLengths})
	default:
		app.renderPage(c, sess, st, notice)
	}
}

// respondOrRedirect follows the post/redirect/get pattern for plain form posts
// that succeeded.
func (app *App) respondOrRedirect(c *gin.Context, sess *game.Session, st game.State, err error) {
	if err == nil && !wantsJSON(c) && !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, RouteHome)
		return
	}
	app.respond(c, sess, st, err)
}

func (app *App) renderPage(c *gin.Context, sess *game.Session, st game.State, notice string) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":   pageTitle,
		"view":    app.view(sess, st, notice),
		"lengths": game.SupportedLengths,
	})
}

func (app *App) view(sess *game.Session, st game.State, notice string) types.View {
	v := game.Render(st)
	v.Notice = notice
	v.Checking = sess.Checking()
	if st.Over() {
		v.Definition = app.words.Definition(st.TargetWord)
	}
	return v
}

// noticeFor maps an action error to the message shown to the player. Unknown
// errors map to "".
func noticeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, game.ErrGameOver):
		return NoticeGameOver
	case errors.Is(err, game.ErrIncompleteGuess):
		return NoticeIncompleteGuess
	case errors.Is(err, game.ErrNotAWord):
		return NoticeNotAWord
	case errors.Is(err, game.ErrBusy):
		return NoticeBusy
	case errors.Is(err, game.ErrUnsupportedLength):
		return NoticeUnsupportedLength
	case errors.Is(err, words.ErrNoWords):
		return NoticeNoWords
	default:
		return ""
	}
}

func setNoticeTrigger(c *gin.Context, notice string) {
	if notice == "" {
		return
	}
	payload, err := json.Marshal(map[string]string{"notice": notice})
	if err != nil {
		logWarn("Failed to marshal HX-Trigger payload: %v", err)
		return
	}
	c.Header("HX-Trigger", string(payload))
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// normalizeGuess trims and lowercases a submitted word.
func normalizeGuess(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
