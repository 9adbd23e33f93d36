package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Gemini
	GeminiAPIKey         string
	GeminiModel          string
	GeminiThinkingBudget int

	// Ingestion
	PDFParsingEnabled bool
	MaxUploadBytes    int64
	ExtractTimeout    time.Duration
	DraftTTL          time.Duration

	// Firebase (empty project disables auth)
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// .env is optional; real env vars take precedence
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-3-pro-preview"),
		GeminiThinkingBudget:    getEnvInt("GEMINI_THINKING_BUDGET", 2048),
		PDFParsingEnabled:       getEnvBool("PDF_PARSING_ENABLED", true),
		MaxUploadBytes:          int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		ExtractTimeout:          getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),
		DraftTTL:                getEnvDuration("DRAFT_TTL", 2*time.Hour),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		RateLimitRPS:            getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"https://prepiq.app",
		}),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.GeminiThinkingBudget < 0 {
		return nil, fmt.Errorf("GEMINI_THINKING_BUDGET must not be negative")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if cfg.DraftTTL <= 0 {
		return nil, fmt.Errorf("DRAFT_TTL must be positive")
	}
	if cfg.ExtractTimeout <= 0 {
		return nil, fmt.Errorf("EXTRACT_TIMEOUT must be positive")
	}

	return cfg, nil
}

// AuthEnabled reports whether Firebase token verification is configured
func (c *Config) AuthEnabled() bool {
	return c.FirebaseProjectID != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
