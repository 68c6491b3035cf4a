package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string // empty selects the in-memory user repository
	LogLevel string

	JWTSecret  string
	HMACSecret string
	TokenTTL   time.Duration

	// Account data backend
	APIBase       string
	NessieAPIKey  string
	CustomerIDs   []string
	RemoteTimeout time.Duration

	// Remote inference; empty key routes questions to the backend instead
	AnthropicKey   string
	AnthropicModel string

	AllowedOrigins []string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	ResetURL     string

	DigestSchedule  string
	SessionIdleTTL  time.Duration
	GainProbability float64
}

var defaultCustomerIDs = []string{
	"5e8b99c8f2edff4b7e0b0f22",
	"5e8b99c8f2edff4b7e0b0f23",
	"5e8b99c8f2edff4b7e0b0f24",
	"5e8b99c8f2edff4b7e0b0f25",
	"5e8b99c8f2edff4b7e0b0f26",
}

// NewConfig loads configuration from environment variables, reading a local
// .env file first when present
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", ""),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		HMACSecret:     getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		APIBase:        getEnv("API_BASE", "http://localhost:3001"),
		NessieAPIKey:   getEnv("NESSIE_API_KEY", ""),
		CustomerIDs:    getList("NESSIE_CUSTOMER_IDS", defaultCustomerIDs),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		AllowedOrigins: getList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "coach@bankshot.local"),
		ResetURL:       getEnv("RESET_URL", "http://localhost:3000/reset-password"),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 9 * * MON"),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout, err = getDuration("REMOTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.GainProbability, err = getFloat("GAIN_PROBABILITY", 0.5); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	if cfg.APIBase == "" {
		return nil, fmt.Errorf("API_BASE is required")
	}
	if len(cfg.CustomerIDs) == 0 {
		return nil, fmt.Errorf("NESSIE_CUSTOMER_IDS is required")
	}
	if cfg.GainProbability < 0 || cfg.GainProbability > 1 {
		return nil, fmt.Errorf("GAIN_PROBABILITY must be between 0 and 1, got %v", cfg.GainProbability)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
