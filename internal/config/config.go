// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the database package.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every runtime setting. It is built once in main and passed
// down explicitly; nothing else reads the environment.
type Config struct {
	ServiceName string
	Port        string
	LogLevel    string

	StoreDriver string
	SeedData    bool

	SQLite   SQLiteConfig
	Postgres PostgresConfig

	Auth      AuthConfig
	LLM       LLMConfig
	RateLimit RateLimitConfig

	RabbitMQURL   string
	AllowedOrigin string
}

// SQLiteConfig configures the embedded store.
type SQLiteConfig struct {
	Path        string
	PoolSize    int
	BusyTimeout time.Duration
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	LockTimeout time.Duration
}

// DSN builds a libpq-compatible connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// AuthConfig controls credential issuance.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// LLMConfig points the intent resolver at a chat-completions endpoint.
// An empty APIKey disables the remote call and leaves only the rule parser.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// RateLimitConfig configures the Redis token bucket. An empty RedisAddr
// disables limiting.
type RateLimitConfig struct {
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	Capacity       int
	RefillInterval time.Duration
	Prefix         string
}

// Load reads a .env file when present and then the process environment,
// falling back to local-development defaults.
func Load() Config {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	return Config{
		ServiceName: getEnv("SERVICE_NAME", "campus-ticketing"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		SeedData:    getBool("SEED_DATA", true),
		SQLite: SQLiteConfig{
			Path:        getEnv("SQLITE_PATH", "./data/ticketing.db"),
			PoolSize:    getInt("SQLITE_POOL_SIZE", 4),
			BusyTimeout: getDuration("SQLITE_BUSY_TIMEOUT", 5*time.Second),
		},
		Postgres: PostgresConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "ticketing"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt("DB_MAX_CONNS", 20)),
			LockTimeout: getDuration("DB_LOCK_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "tiger_tix_secret"),
			TokenTTL:   getDuration("TOKEN_TTL", 30*time.Minute),
			BcryptCost: getInt("BCRYPT_COST", 10),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout: getDuration("LLM_TIMEOUT", 8*time.Second),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:      os.Getenv("REDIS_ADDR"),
			RedisPassword:  os.Getenv("REDIS_PASSWORD"),
			RedisDB:        getInt("REDIS_DB", 0),
			Capacity:       getInt("RATE_LIMIT_CAPACITY", 20),
			RefillInterval: getDuration("RATE_LIMIT_REFILL_INTERVAL", time.Second),
			Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}
}

// Validate reports settings that would make the service unusable.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
