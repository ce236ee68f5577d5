package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Duplicate detection
	DedupWindow time.Duration

	// Anomaly detection thresholds
	VelocityLimit     int
	VelocityWindow    time.Duration
	TradingHoursStart int
	TradingHoursEnd   int
	SigmaThreshold    float64
	MinAnomalySample  int

	// Read-path cache
	CacheExpiration time.Duration

	// Suspicion notifier settings
	NotifierProvider string
	MailgunDomain    string
	MailgunAPIKey    string
	SenderEmail      string
	SenderName       string
	AlertRecipient   string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// Try the current directory first, then the parent (common when running
	// from /backend).
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}
	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		// Core
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./tradeguard.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		// Duplicate detection
		DedupWindow: getEnvAsDuration("DEDUP_WINDOW", 60*time.Second),

		// Anomaly detection
		VelocityLimit:     getEnvAsInt("ANOMALY_VELOCITY_LIMIT", 5),
		VelocityWindow:    getEnvAsDuration("ANOMALY_VELOCITY_WINDOW", 60*time.Second),
		TradingHoursStart: getEnvAsInt("TRADING_HOURS_START", 9),
		TradingHoursEnd:   getEnvAsInt("TRADING_HOURS_END", 17),
		SigmaThreshold:    getEnvAsFloat("ANOMALY_SIGMA_THRESHOLD", 3),
		MinAnomalySample:  getEnvAsInt("ANOMALY_MIN_SAMPLE", 5),

		// Cache
		CacheExpiration: getEnvAsDuration("CACHE_EXPIRATION", 5*time.Minute),

		// Notifier
		NotifierProvider: getEnv("NOTIFIER_PROVIDER", "log"),
		MailgunDomain:    getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:    getEnv("MAILGUN_PRIVATE_API_KEY", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "alerts@example.com"),
		SenderName:       getEnv("SENDER_NAME", "TradeGuard"),
		AlertRecipient:   getEnv("ALERT_RECIPIENT", ""),
	}

	if strings.EqualFold(Cfg.NotifierProvider, "mailgun") && Cfg.AlertRecipient == "" {
		log.Println("WARNING: NOTIFIER_PROVIDER is mailgun but ALERT_RECIPIENT is empty; suspicion reports will only be logged.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, DedupWindow=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.DedupWindow)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsFloat retrieves an environment variable as a float64 or returns a fallback.
func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %v", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
