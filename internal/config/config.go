package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Postgres connection; when DBHost is empty the server falls back to a
	// local sqlite file at DBPath.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis cache for resolved sites and the unique-visitor ledger.
	// Empty RedisAddr disables caching.
	RedisAddr       string
	CacheTTLSeconds int

	// Billing webhook verification token (GET /webhook handshake).
	WebhookVerifyToken string

	// Marketing/signup entry point offered by the not-found fallback.
	PlatformURL string

	// Optional external ingestion endpoint for tracking events. When empty,
	// events are stored locally only.
	TrackingEndpoint string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBHost:             getEnv("DB_HOST", ""),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "psicosites"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		DBPath:             getEnv("DB_PATH", "./psicosites.db"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 300),
		WebhookVerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		PlatformURL:        getEnv("PLATFORM_URL", "https://psicosites.com.br"),
		TrackingEndpoint:   getEnv("TRACKING_ENDPOINT", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
