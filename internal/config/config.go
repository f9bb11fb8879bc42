package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Env         string
	LogLevel    string
	StaticDir   string
	FrontendURL string
	// TrustProxy honours X-Forwarded-For / X-Real-IP for the client address.
	TrustProxy bool

	// Conversations
	ConversationsDir  string
	ListSkipMalformed bool
	SaveRateLimit     int

	// Redis (optional, enables cross-instance event fan-out)
	RedisURL      string
	EventsChannel string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "3000"),
		Env:               getEnvOrDefault("ENV", "development"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		StaticDir:         getEnvOrDefault("STATIC_DIR", "./public"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", ""),
		TrustProxy:        getEnvAsBoolOrDefault("TRUST_PROXY", false),
		ConversationsDir:  getEnvOrDefault("CONVERSATIONS_DIR", "./conversations"),
		ListSkipMalformed: getEnvAsBoolOrDefault("LIST_SKIP_MALFORMED", false),
		SaveRateLimit:     getEnvAsIntOrDefault("SAVE_RATE_LIMIT", 120),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		EventsChannel:     getEnvOrDefault("EVENTS_CHANNEL", "conversation_events"),
	}

	return cfg
}

// IsDevelopment reports whether the server runs with developer-friendly output.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
