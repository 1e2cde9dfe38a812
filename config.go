package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"wordbreaker/internal/game"
	"wordbreaker/internal/words"
)

// Config is the runtime configuration, read from the environment after an
// optional .env file.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE"`
	Env      string `env:"ENV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DataDir           string   `env:"DATA_DIR" envDefault:"data"`
	WordFiles         []string `env:"WORD_FILES" envSeparator:","`
	DefaultWordLength int      `env:"DEFAULT_WORD_LENGTH" envDefault:"5"`
	MaxAttempts       int      `env:"MAX_ATTEMPTS" envDefault:"7"`

	DictionaryURL     string        `env:"DICTIONARY_URL" envDefault:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	DictionaryTimeout time.Duration `env:"DICTIONARY_TIMEOUT" envDefault:"3s"`
	DictionaryRetries uint          `env:"DICTIONARY_RETRIES" envDefault:"2"`

	StoreDriver     string        `env:"STORE_DRIVER" envDefault:"file"`
	SessionDir      string        `env:"SESSION_DIR" envDefault:"data/sessions"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/wordbreaker.db"`
	SessionTimeout  time.Duration `env:"SESSION_TIMEOUT" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	CookieMaxAge    time.Duration `env:"COOKIE_MAX_AGE" envDefault:"720h"`
	StaticCacheAge  time.Duration `env:"STATIC_CACHE_AGE" envDefault:"5m"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// loadConfig reads .env (if present) and parses the environment into a Config.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.WordFiles) == 0 {
		cfg.WordFiles = words.DefaultFiles
	}
	if !game.IsSupportedLength(cfg.DefaultWordLength) {
		return Config{}, fmt.Errorf("DEFAULT_WORD_LENGTH %d is not one of %v", cfg.DefaultWordLength, game.SupportedLengths)
	}
	if cfg.MaxAttempts <= 0 {
		return Config{}, fmt.Errorf("MAX_ATTEMPTS must be positive, got %d", cfg.MaxAttempts)
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in release mode.
func (c Config) IsProduction() bool {
	return c.GinMode == "release" || c.Env == "production"
}

func (c Config) envName() string {
	if c.IsProduction() {
		return "production"
	}
	return "development"
}
