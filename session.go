package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wordbreaker/internal/game"
	"wordbreaker/internal/store"
)

type sessionEntry struct {
	game     *game.Session
	lastSeen time.Time
}

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err == nil {
		if _, perr := uuid.Parse(sessionID); perr == nil && len(sessionID) == 36 {
			return sessionID
		}
	}
	sessionID = uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, sessionID, int(app.cfg.CookieMaxAge.Seconds()), "/", "", app.cfg.IsProduction(), true)
	requestLogger(c.Request.Context()).Debug().Str("session", sessionID).Msg("created new session")
	return sessionID
}

// gameSession returns the live game for sessionID. A session not in memory is
// resumed from the store, or started fresh when the store has nothing usable.
func (app *App) gameSession(ctx context.Context, sessionID string) (*game.Session, error) {
	if s := app.cachedSession(sessionID); s != nil {
		return s, nil
	}

	// The load is shared by every request waiting on sessionID, so one
	// client going away must not cancel it for the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := app.loads.Do(sessionID, func() (any, error) {
		if s := app.cachedSession(sessionID); s != nil {
			return s, nil
		}
		s, err := app.loadOrStart(loadCtx, sessionID)
		if err != nil {
			return nil, err
		}
		app.sessionMu.Lock()
		app.sessions[sessionID] = &sessionEntry{game: s, lastSeen: time.Now()}
		app.sessionMu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Session), nil
}

func (app *App) cachedSession(sessionID string) *game.Session {
	app.sessionMu.Lock()
	defer app.sessionMu.Unlock()
	e, ok := app.sessions[sessionID]
	if !ok {
		return nil
	}
	e.lastSeen = time.Now()
	return e.game
}

func (app *App) loadOrStart(ctx context.Context, sessionID string) (*game.Session, error) {
	logger := requestLogger(ctx).With().Str("session", sessionID).Logger()

	var s *game.Session
	st, err := app.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		s = game.Resume(app.words, st, app.cfg.MaxAttempts)
		logger.Debug().Str("status", string(st.Status)).Int("guesses", len(st.Guesses)).Msg("resumed session")
	default:
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn().Err(err).Msg("failed to load session, starting a new game")
		}
		s, err = game.Start(ctx, app.words, app.cfg.DefaultWordLength, app.cfg.MaxAttempts)
		if err != nil {
			return nil, fmt.Errorf("start game: %w", err)
		}
		app.writer.Save(sessionID, s.State())
		logger.Debug().Msg("started new game")
	}

	s.OnChange(func(st game.State) {
		app.writer.Save(sessionID, st)
	})
	return s, nil
}

// evictIdle drops in-memory sessions not used within maxIdle. Their latest
// snapshot stays in the store.
func (app *App) evictIdle(maxIdle time.Duration) int {
	app.sessionMu.Lock()
	defer app.sessionMu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for id, e := range app.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(app.sessions, id)
			removed++
		}
	}
	return removed
}

func (app *App) activeSessions() int {
	app.sessionMu.Lock()
	defer app.sessionMu.Unlock()
	return len(app.sessions)
}
