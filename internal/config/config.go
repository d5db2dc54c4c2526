package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	LogLevel    string
	DatabaseURL string // postgres DSN; empty means local sqlite
	SQLitePath  string

	AdminPasscode     string
	AdminPasscodeHash string // bcrypt; takes precedence over AdminPasscode
	JWTSecret         string

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	KafkaAddress string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Port:        getenv("SERVER_PORT", "8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "storefront.db"),

		// Demo defaults; a real deployment overrides all three.
		AdminPasscode:     getenv("ADMIN_PASSCODE", "admin123"),
		AdminPasscodeHash: os.Getenv("ADMIN_PASSCODE_BCRYPT"),
		JWTSecret:         getenv("JWT_HS256_SECRET", "storefront-dev-secret"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-3-flash-preview"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),
		KafkaTopic:   getenv("KAFKA_TOPIC", "storefront_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    getenv("ES_INDEX", "products"),
	}

	if cfg.GeminiAPIKey == "" {
		log.Printf("Notice: GEMINI_API_KEY not set, assistant endpoints will return 503")
	}

	return cfg
}
