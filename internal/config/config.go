package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	DatabaseURL string // empty keeps runs in memory

	LayoutDir    string // directory searched before the embedded layouts
	LayoutFile   string
	WatchLayouts bool
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are applied first without overriding real env vars.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		Port:         getEnvInt("PORT", 8080),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		LayoutDir:    getEnv("LAYOUT_DIR", ""),
		LayoutFile:   getEnv("LAYOUT_FILE", "arena.yaml"),
		WatchLayouts: getEnvBool("WATCH_LAYOUTS", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
