package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Realtime RealtimeConfig
	Auth     AuthConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	ChatLogFilePath    string
	CorsAllowedOrigins string
	OtlpEndpoint       string
}

// BackendConfig points at the edge-function backend every business
// operation is delegated to.
type BackendConfig struct {
	BaseURL string
	AnonKey string
}

type RealtimeConfig struct {
	NatsURL    string
	RedisURL   string
	EventTopic string
}

type AuthConfig struct {
	JwtSecret     string
	TokenLifetime time.Duration
}

type CacheConfig struct {
	WizardSessionTTL time.Duration
	AnalyticsTTL     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:4200"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			ChatLogFilePath:    getEnv("CHAT_LOG_FILE_PATH", "chat.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200"),
			OtlpEndpoint:       getEnv("OTLP_ENDPOINT", ""),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:54321"),
			AnonKey: getEnv("BACKEND_ANON_KEY", ""),
		},
		Realtime: RealtimeConfig{
			NatsURL:    getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			EventTopic: getEnv("EVENT_TOPIC", "portal_events"),
		},
		Auth: AuthConfig{
			JwtSecret:     getEnv("JWT_SECRET", ""),
			TokenLifetime: getEnvAsDuration("JWT_TOKEN_LIFETIME", 24*time.Hour),
		},
		Cache: CacheConfig{
			WizardSessionTTL: getEnvAsDuration("WIZARD_SESSION_TTL", 2*time.Hour),
			AnalyticsTTL:     getEnvAsDuration("ANALYTICS_CACHE_TTL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
