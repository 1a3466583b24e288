package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// Presence
	PresenceTimeout = 30 * time.Second

	// Auth
	TokenTTL    = 72 * time.Hour
	TokenIssuer = "deskgogo-service"

	// Redis keys
	WaitingQueueKey    = "chat:waiting_sessions"
	WaitingNoticeTopic = "chat:waiting"
)

// Config carries everything read from the environment at startup.
type Config struct {
	HTTPAddr         string
	RedisAddr        string
	RedisPassword    string
	JWTSecret        string
	TelegramBotToken string
	TelegramChatID   string
}

// Load reads the configuration from environment variables, falling back to
// local-development defaults.
func Load() *Config {
	return &Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        getenv("JWT_SECRET", "dev-only-secret"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

// DatabaseDSN assembles the PostgreSQL DSN from the environment.
func DatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getenv("DB_HOST", "localhost"),
		getenv("DB_USER", "user"),
		getenv("DB_PASSWORD", "password"),
		getenv("DB_NAME", "deskgogodb"),
		getenv("DB_PORT", "5432"),
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
