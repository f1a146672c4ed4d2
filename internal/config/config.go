package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort   string
	GinMode      string
	LogLevel     string
	LogFormat    string
	DatabasePath string
	// StorageNamespace keys the persisted session snapshot row.
	StorageNamespace string

	// Timing.
	TotalTestTime time.Duration
	SectionTime   time.Duration
	TickInterval  time.Duration

	// Integrity monitor.
	FacePollInterval   time.Duration
	MaxNoFaceTime      time.Duration
	GracePeriod        time.Duration
	MaxViolations      int
	GateDetectAttempts int
	ReenterDelay       time.Duration

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		DatabasePath:     getEnv("DATABASE_PATH", "./assessment.db"),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", "quiz-storage"),

		TotalTestTime: time.Duration(getEnvInt("TOTAL_TEST_MINUTES", 60)) * time.Minute,
		SectionTime:   time.Duration(getEnvInt("SECTION_MINUTES", 15)) * time.Minute,
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,

		FacePollInterval:   time.Duration(getEnvInt("FACE_POLL_MS", 1000)) * time.Millisecond,
		MaxNoFaceTime:      time.Duration(getEnvInt("MAX_NO_FACE_MS", 10000)) * time.Millisecond,
		GracePeriod:        time.Duration(getEnvInt("FACE_GRACE_MS", 5000)) * time.Millisecond,
		MaxViolations:      getEnvInt("MAX_VIOLATIONS", 3),
		GateDetectAttempts: getEnvInt("GATE_DETECT_ATTEMPTS", 10),
		ReenterDelay:       time.Duration(getEnvInt("FULLSCREEN_REENTER_MS", 1000)) * time.Millisecond,

		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
