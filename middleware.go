package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// getLimiter returns a rate limiter for the given key (usually client IP).
func (app *App) getLimiter(key string) *rate.Limiter {
	app.limiterMu.Lock()
	defer app.limiterMu.Unlock()
	if e, ok := app.limiters[key]; ok {
		e.lastSeen = time.Now()
		return e.lim
	}
	if key == "" {
		logWarn("Rate limiter key is empty")
	}
	lim := rate.NewLimiter(rate.Limit(app.cfg.RateLimitRPS), app.cfg.RateLimitBurst)
	app.limiters[key] = &limiterEntry{lim: lim, lastSeen: time.Now()}
	return lim
}

// evictLimiters drops limiters of clients not seen within maxIdle. A client
// that comes back starts with a full burst.
func (app *App) evictLimiters(maxIdle time.Duration) int {
	app.limiterMu.Lock()
	defer app.limiterMu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, e := range app.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(app.limiters, key)
			removed++
		}
	}
	return removed
}

// rateLimitMiddleware enforces per-client rate limiting on game actions.
func (app *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !app.getLimiter(key).Allow() {
			if isHTMX(c) {
				c.Header("HX-Trigger", "rate-limit-exceeded")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware injects a request ID into the context for each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

// requestLogMiddleware logs one line per request through zerolog.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestLogger(c.Request.Context()).Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
