package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreBolt   = "bolt"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Session      SessionConfig
	NATS         NATSConfig
	Verification VerificationConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port          string
	Environment   string
	ServiceName   string
	ReadTimeout   int
	WriteTimeout  int
	CORSOrigins   string // Comma-separated list of allowed origins
	MaxBodySizeMB int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// SessionConfig selects where verification records are persisted between sessions
type SessionConfig struct {
	Store     string
	TTLHours  int
	BoltPath  string
	KeyPrefix string
}

// NATSConfig holds event bus configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL    string
	Source string
}

// VerificationConfig holds the onboarding workflow settings
type VerificationConfig struct {
	MaxFileSizeMB    int
	AllowedMimeTypes []string
	StrictReview     bool
	InboxSize        int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			Environment:   getEnv("ENVIRONMENT", "development"),
			ServiceName:   serviceName,
			ReadTimeout:   getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:  getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
			MaxBodySizeMB: getEnvAsInt("MAX_BODY_SIZE_MB", 1),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		Session: SessionConfig{
			Store:     strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
			TTLHours:  getEnvAsInt("SESSION_TTL_HOURS", 0),
			BoltPath:  getEnv("BOLT_PATH", "secureverify.db"),
			KeyPrefix: getEnv("SESSION_KEY_PREFIX", "verification_state_"),
		},
		NATS: NATSConfig{
			URL:    getEnv("NATS_URL", ""),
			Source: serviceName,
		},
		Verification: VerificationConfig{
			MaxFileSizeMB:    getEnvAsInt("VERIFICATION_MAX_FILE_MB", 10),
			AllowedMimeTypes: getEnvAsList("VERIFICATION_ALLOWED_MIME_TYPES", []string{"image/jpeg", "image/png", "image/jpg", "image/heic", "application/pdf"}),
			StrictReview:     getEnvAsBool("VERIFICATION_STRICT_REVIEW", false),
			InboxSize:        getEnvAsInt("NOTIFICATION_INBOX_SIZE", 50),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis, StoreBolt:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.Store == StoreBolt && c.Session.BoltPath == "" {
		return fmt.Errorf("BOLT_PATH is required for the bolt session store")
	}
	if c.Verification.MaxFileSizeMB <= 0 {
		return fmt.Errorf("VERIFICATION_MAX_FILE_MB must be positive")
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// TTL returns the session expiry; zero means records never expire
func (c *SessionConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 0
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// TokenTTL returns how long issued tokens stay valid
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.Expiration) * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
