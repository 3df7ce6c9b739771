package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string
	APP_ENV    string

	APP_URL          string
	OFFICIAL_NAME    string
	CRON_SECRET      string
	MP_ACCESS_TOKEN  string
	WEBHOOK_BASE_URL string

	EMAIL_RELAY_URL    string
	WHATSAPP_RELAY_URL string
	NOTIFY_IS_TEST     bool

	NOTIFY_EMAIL_REQUIRES_OPT_IN bool

	AI_API_URL string
	AI_API_KEY string
	AI_MODEL   string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	APP_ENV = getEnv("APP_ENV", "development")

	APP_URL = getEnv("APP_URL", "http://localhost:5173")
	OFFICIAL_NAME = getEnv("OFFICIAL_NAME", "Imperio Barber")
	CRON_SECRET = getEnv("CRON_SECRET", "")

	MP_ACCESS_TOKEN = mustEnv("MP_ACCESS_TOKEN")
	WEBHOOK_BASE_URL = getEnv("WEBHOOK_BASE_URL", "http://localhost:8080")

	// Relay URLs are optional: a missing URL turns that channel into a logged no-op.
	EMAIL_RELAY_URL = getEnv("EMAIL_RELAY_URL", "")
	WHATSAPP_RELAY_URL = getEnv("WHATSAPP_RELAY_URL", "")
	NOTIFY_IS_TEST = getEnv("NOTIFY_IS_TEST", "") == "true"
	NOTIFY_EMAIL_REQUIRES_OPT_IN = getEnv("NOTIFY_EMAIL_REQUIRES_OPT_IN", "") == "true"

	AI_API_URL = getEnv("AI_API_URL", "")
	AI_API_KEY = getEnv("AI_API_KEY", "")
	AI_MODEL = getEnv("AI_MODEL", "gpt-4o-mini")

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
