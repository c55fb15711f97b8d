// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by Load when GEMINI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found; check your .env file")

// DefaultDocumentFiles lists the PDFs that make up the college corpus.
var DefaultDocumentFiles = []string{
	"Updated college.pdf",
	"shift1.pdf",
	"shift2.pdf",
	"rr.pdf",
	"AI&DS TT-UPDATED.pdf",
}

// Config holds all application configuration.
type Config struct {
	Port           string
	GeminiAPIKey   string
	GeminiModel    string
	DocumentDir    string
	DocumentFiles  []string
	ContextBudget  int
	Location       *time.Location
	LLMTimeout     time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateLimit      RateLimitConfig
	Sessions       SessionConfig
	Transcript     TranscriptConfig
}

// RateLimitConfig bounds chat requests per client.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// SessionConfig controls in-memory session housekeeping.
// An IdleTTL of zero keeps sessions for the process lifetime.
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// TranscriptConfig controls the SQLite transcript log.
type TranscriptConfig struct {
	Enabled   bool
	DBPath    string
	Retention time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	loc := time.Local
	if tz := strings.TrimSpace(getEnv("TIMEZONE", "")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}

	cfg := &Config{
		Port:           getEnv("PORT", "4000"),
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		DocumentDir:    getEnv("DOCUMENT_DIR", "."),
		DocumentFiles:  getEnvList("DOCUMENT_FILES", DefaultDocumentFiles),
		ContextBudget:  getEnvInt("CONTEXT_BUDGET", 1200),
		Location:       loc,
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 0),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:   int64(getEnvInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Sessions: SessionConfig{
			IdleTTL:       getEnvDuration("SESSION_IDLE_TTL", 0),
			SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		},
		Transcript: TranscriptConfig{
			Enabled:   getEnvBool("TRANSCRIPT_ENABLED", true),
			DBPath:    getEnv("TRANSCRIPT_DB_PATH", "./data/transcripts.db"),
			Retention: getEnvDuration("TRANSCRIPT_RETENTION", 7*24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if len(c.DocumentFiles) == 0 {
		return fmt.Errorf("DOCUMENT_FILES cannot be empty")
	}
	if c.ContextBudget <= 0 {
		return fmt.Errorf("CONTEXT_BUDGET must be > 0")
	}
	if c.LLMTimeout < 0 {
		return fmt.Errorf("LLM_TIMEOUT cannot be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.Sessions.IdleTTL < 0 {
		return fmt.Errorf("SESSION_IDLE_TTL cannot be negative")
	}
	if c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.Transcript.Enabled && c.Transcript.DBPath == "" {
		return fmt.Errorf("TRANSCRIPT_DB_PATH cannot be empty when transcripts are enabled")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
