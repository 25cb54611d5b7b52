// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, LLM providers, document handling limits and storage paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	LLMProvider    string // "openai", "groq", "cerebras" or "gemini" (default: "groq")
	LLMAPIKey      string // API key for the selected provider
	LLMModel       string // Model name (empty = provider default)
	LLMEndpoint    string // Custom base URL for OpenAI-compatible providers
	GeminiAPIKey   string // Gemini API key (used when LLMProvider is "gemini")
	LLMCallTimeout time.Duration

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry / Better Stack
	SentryToken         string
	SentryHost          string
	BetterStackToken    string
	BetterStackEndpoint string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir         string // Data directory for the SQLite database
	SyllabusPDFPath string // Path to the institution syllabus PDF

	// Rate limiting (token bucket, per client)
	ChatRateBurst     float64 // Maximum burst tokens per client (default: 10)
	ChatRateRefillSec float64 // Tokens refilled per second (default: 0.2 = 1 per 5s)

	// Limits groups document and locator tunables
	Limits Limits
}

// Limits holds tunable thresholds for extraction, location and prompts.
// Defaults follow the behavior the assistant was profiled with; they are
// env-overridable for experimentation, not expected to change in production.
type Limits struct {
	// LineTolerance is the max vertical distance (layout units) between two
	// PDF text fragments that still share a line.
	LineTolerance float64

	// MinDocumentTokens is the minimum whitespace-separated token count for
	// a document to be stored; below it the upload is rejected as low-content.
	MinDocumentTokens int

	// UnitWindow bounds how far past a subject anchor the unit search may
	// look before giving up (characters).
	UnitWindow int

	// UnitResultCap caps the formatted unit content length (characters).
	UnitResultCap int

	// PromptContentCap caps document text included in a model prompt
	// (characters); longer text is truncated with an explicit marker.
	PromptContentCap int

	// ReformatKeywords trigger a synthesis pass instead of returning a
	// lookup result verbatim. Deliberately coarse keyword scan.
	ReformatKeywords []string
}

// Default limit values.
const (
	DefaultLineTolerance     = 5.0
	DefaultMinDocumentTokens = 10
	DefaultUnitWindow        = 5000
	DefaultUnitResultCap     = 2000
	DefaultPromptContentCap  = 25000
)

// DefaultReformatKeywords is the default trigger list for reformatting
// detection. A match means the user is asking to restyle prior data.
var DefaultReformatKeywords = []string{"table", "format", "different", "show"}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:    getEnv("LLM_PROVIDER", "groq"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", ""),
		LLMEndpoint:    getEnv("LLM_ENDPOINT", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		LLMCallTimeout: getDurationEnv("LLM_CALL_TIMEOUT", 60*time.Second),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", ""),
		BetterStackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterStackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),

		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir:         getEnv("DATA_DIR", "data"),
		SyllabusPDFPath: getEnv("SYLLABUS_PDF_PATH", filepath.Join("data", "syllabus.pdf")),

		ChatRateBurst:     getFloatEnv("CHAT_RATE_BURST", 10),
		ChatRateRefillSec: getFloatEnv("CHAT_RATE_REFILL_PER_SEC", 0.2),

		Limits: Limits{
			LineTolerance:     getFloatEnv("PDF_LINE_TOLERANCE", DefaultLineTolerance),
			MinDocumentTokens: getIntEnv("MIN_DOCUMENT_TOKENS", DefaultMinDocumentTokens),
			UnitWindow:        getIntEnv("SYLLABUS_UNIT_WINDOW", DefaultUnitWindow),
			UnitResultCap:     getIntEnv("SYLLABUS_UNIT_RESULT_CAP", DefaultUnitResultCap),
			PromptContentCap:  getIntEnv("PROMPT_CONTENT_CAP", DefaultPromptContentCap),
			ReformatKeywords:  getListEnv("REFORMAT_KEYWORDS", DefaultReformatKeywords),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "openai", "groq", "cerebras", "gemini":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q (want openai, groq, cerebras or gemini)", c.LLMProvider)
	}
	if c.Limits.MinDocumentTokens < 0 {
		return fmt.Errorf("MIN_DOCUMENT_TOKENS must be non-negative, got %d", c.Limits.MinDocumentTokens)
	}
	if c.Limits.PromptContentCap <= 0 {
		return fmt.Errorf("PROMPT_CONTENT_CAP must be positive, got %d", c.Limits.PromptContentCap)
	}
	if c.Limits.UnitWindow <= 0 {
		return fmt.Errorf("SYLLABUS_UNIT_WINDOW must be positive, got %d", c.Limits.UnitWindow)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "campusbuddy.db")
}

// getEnv reads an environment variable with a default fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv reads an integer environment variable with a default fallback
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getFloatEnv reads a float environment variable with a default fallback
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv reads a duration environment variable with a default fallback
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getListEnv reads a comma-separated environment variable with a default fallback
func getListEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
