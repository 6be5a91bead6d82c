package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the storefront client needs at startup.
type Config struct {
	Env           string
	APIBaseURL    string
	StoragePath   string
	HTTPTimeout   time.Duration
	ToastDuration time.Duration
	// RedirectDelay is how long the UI lingers on a toast before a
	// scheduled navigation (register success, auth-required bounce,
	// order placed).
	RedirectDelay time.Duration
}

// Load reads configuration from the environment, loading a local .env
// file first if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:           getEnv("APP_ENV", "development"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8000/api"),
		StoragePath:   getEnv("STORAGE_PATH", defaultStoragePath()),
		HTTPTimeout:   getDuration("HTTP_TIMEOUT", 15*time.Second),
		ToastDuration: getDuration("TOAST_DURATION", 4*time.Second),
		RedirectDelay: getDuration("REDIRECT_DELAY", 2*time.Second),
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nurastore_session.json"
	}
	return filepath.Join(home, ".nurastore", "session.json")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	// Bare numbers are treated as seconds, matching the old JS timeouts.
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
