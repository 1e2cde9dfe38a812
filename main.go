package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	"golang.org/x/sync/singleflight"

	"wordbreaker/internal/store"
	"wordbreaker/internal/words"
)

// App holds the server's dependencies and per-process session state.
type App struct {
	cfg       Config
	words     *words.Source
	store     store.Store
	writer    *store.Writer
	startTime time.Time

	sessionMu sync.Mutex
	sessions  map[string]*sessionEntry
	loads     singleflight.Group

	limiterMu sync.Mutex
	limiters  map[string]*limiterEntry
}

// newApp wires the word source and the store selected by cfg.
func newApp(cfg Config, src *words.Source, st store.Store) *App {
	return &App{
		cfg:       cfg,
		words:     src,
		store:     st,
		writer:    store.NewWriter(st, 5*time.Second),
		startTime: time.Now(),
		sessions:  make(map[string]*sessionEntry),
		limiters:  make(map[string]*limiterEntry),
	}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		setupLogging("info", false)
		logFatal("Invalid configuration: %v", err)
	}
	setupLogging(cfg.LogLevel, cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logInfo("Starting Word Breaker in %s mode", cfg.envName())

	var dict words.Dictionary
	if cfg.DictionaryURL != "" {
		dict = words.NewDictionaryAPI(cfg.DictionaryURL, cfg.DictionaryTimeout, cfg.DictionaryRetries)
	}
	src := words.NewSource(os.DirFS(cfg.DataDir), cfg.WordFiles, dict)
	if err := src.Load(context.Background()); err != nil {
		logFatal("Failed to load words: %v", err)
	}
	for length, n := range src.Counts() {
		logInfo("Loaded %d words of length %d", n, length)
	}

	st, err := store.Open(store.Config{
		Driver:     cfg.StoreDriver,
		Dir:        cfg.SessionDir,
		SQLitePath: cfg.SQLitePath,
		MaxAge:     cfg.SessionTimeout,
	})
	if err != nil {
		logFatal("Failed to open %s session store: %v", cfg.StoreDriver, err)
	}
	defer st.Close()

	app := newApp(cfg, src, st)
	app.run(app.setupRouter())
}

// setupRouter builds the gin engine with middleware, templates and routes.
func (app *App) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), requestLogMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	production := app.cfg.IsProduction()
	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c, production)
	})

	if production && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	limited := app.rateLimitMiddleware()
	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteGameState, app.gameStateHandler)
	router.POST(RouteKey, limited, app.keyHandler)
	router.POST(RouteGuess, limited, app.guessHandler)
	router.POST(RouteNewGame, limited, app.newGameHandler)
	router.POST(RouteWordLength, limited, app.wordLengthHandler)
	router.GET(RouteHealthz, app.healthzHandler)
	return router
}

// run serves until SIGINT/SIGTERM, then drains requests and flushes pending
// session writes.
func (app *App) run(router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + app.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bgCtx, cancelBg := context.WithCancel(context.Background())
	go app.writer.Run(bgCtx)
	go app.cleanupLoop(bgCtx)

	serveErr := make(chan error, 1)
	go func() {
		logInfo("Server starting on http://localhost:%s", app.cfg.Port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			cancelBg()
			<-app.writer.Done()
			logFatal("Server failed to start: %v", err)
		}
	case <-ctx.Done():
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		cancel()
	}

	cancelBg()
	<-app.writer.Done()
	logInfo("Server shutdown complete")
}

// cleanupLoop periodically removes stale snapshots and idle in-memory sessions.
func (app *App) cleanupLoop(ctx context.Context) {
	interval := app.cfg.CleanupInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sweep(ctx)
		}
	}
}

func (app *App) sweep(ctx context.Context) {
	if n, err := app.store.Cleanup(ctx, app.cfg.SessionTimeout); err != nil {
		logWarn("Session cleanup failed: %v", err)
	} else if n > 0 {
		logInfo("Removed %d stale session%s", n, plural(n))
	}
	if n := app.evictIdle(app.cfg.SessionTimeout); n > 0 {
		logInfo("Evicted %d idle session%s from memory", n, plural(n))
	}
	if n := app.evictLimiters(LimiterIdleTimeout); n > 0 {
		logInfo("Dropped %d idle rate limiter%s", n, plural(n))
	}
}

func (app *App) applyCacheHeaders(c *gin.Context, production bool) {
	if production && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.cfg.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}
