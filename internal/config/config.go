package config

import (
	"os"

	"github.com/spf13/cast"
)

// Config holds everything the API server reads from the environment.
// Values come from the process environment; main loads a .env file first
// so local development works without exporting anything.
type Config struct {
	Addr      string
	DSN       string
	JWTSecret string

	BaseURL        string
	FrontendOrigin string
	UploadDir      string

	// Push gateway (FCM-compatible HTTP endpoint).
	PushGatewayURL string
	PushServerKey  string

	// Notification dispatcher sizing.
	NotifyQueueSize int
	NotifyWorkers   int

	// Commission rate applied to sellers without a stored override.
	DefaultCommissionRate float64

	LogMode string // "production" or "development"
	LogFile string // empty disables file logging
}

// Load reads the configuration from the environment, applying defaults
// for everything except the DSN and JWT secret, which have no safe default.
func Load() *Config {
	return &Config{
		Addr:      getEnv("HTTP_ADDR", ":8080"),
		DSN:       os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),

		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", "https://fcm.googleapis.com/fcm/send"),
		PushServerKey:  os.Getenv("PUSH_SERVER_KEY"),

		NotifyQueueSize: cast.ToInt(getEnv("NOTIFY_QUEUE_SIZE", "256")),
		NotifyWorkers:   cast.ToInt(getEnv("NOTIFY_WORKERS", "2")),

		DefaultCommissionRate: cast.ToFloat64(getEnv("DEFAULT_COMMISSION_RATE", "0.10")),

		LogMode: getEnv("LOG_MODE", "development"),
		LogFile: os.Getenv("LOG_FILE"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
