package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Social platform (X/Twitter)
	TwitterBaseURL   string
	TwitterAuthToken string
	TwitterCookie    string
	TwitterCSRFToken string
	BotHandle        string

	// Content service (OpenAI)
	OpenAIBaseURL string
	OpenAIAPIKey  string

	// Commerce platform (Whop)
	WhopBaseURL   string
	WhopCookie    string
	WhopCompanyID string
	ChatAppID     string

	// Poller
	PollInterval   time.Duration
	SeedTriggerIDs []string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "sqlite://whopgen.db"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:          getEnv("API_PORT", "8080"),
		APIHost:          getEnv("API_HOST", "0.0.0.0"),
		TwitterBaseURL:   getEnv("TWITTER_BASE_URL", "https://x.com"),
		TwitterAuthToken: getEnv("TWITTER_AUTH_TOKEN", ""),
		TwitterCookie:    getEnv("TWITTER_COOKIE", ""),
		TwitterCSRFToken: getEnv("TWITTER_CSRF_TOKEN", ""),
		BotHandle:        getEnv("BOT_HANDLE", "GenerateWhop"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		WhopBaseURL:      getEnv("WHOP_BASE_URL", "https://whop.com"),
		WhopCookie:       getEnv("WHOP_COOKIE", ""),
		WhopCompanyID:    getEnv("WHOP_COMPANY_ID", ""),
		ChatAppID:        getEnv("WHOP_CHAT_APP_ID", "app_xml5hbizmZPgUT"),
		PollInterval:     getEnvDuration("POLL_INTERVAL", 10*time.Second),
		SeedTriggerIDs:   getEnvList("SEED_TRIGGER_IDS", nil),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
