package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int
	// Storage is "postgres" or "memory".
	Storage string
	DBURL   string
	// DBMaxConns caps the pgx pool.
	DBMaxConns int32

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret  string
	SessionTTL     time.Duration
	SessionSliding bool

	CORSOrigins   []string
	AuthRateLimit int

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64

	MigrationsAuto bool

	SeedEmail    string
	SeedPassword string
	SeedName     string
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:        getEnv("APP_ENV", "dev"),
		Port:       getEnvInt("PORT", 8080),
		Storage:    getEnv("STORAGE", "postgres"),
		DBURL:      buildDBURL(),
		DBMaxConns: int32(getEnvInt("DB_MAX_CONNS", 5)),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionSliding: getEnvBool("SESSION_SLIDING", true),

		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		AuthRateLimit: getEnvInt("AUTH_RATE_LIMIT", 20),

		OTelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),

		MigrationsAuto: getEnvBool("MIGRATIONS_AUTO", true),

		SeedEmail:    os.Getenv("SEED_EMAIL"),
		SeedPassword: os.Getenv("SEED_PASSWORD"),
		SeedName:     getEnv("SEED_NAME", "Demo User"),
	}
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if c.IsProd() && c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required when APP_ENV=prod")
	}
	if c.Storage != "postgres" && c.Storage != "memory" {
		return fmt.Errorf("STORAGE must be postgres or memory, got %q", c.Storage)
	}
	if c.IsProd() && c.Storage == "memory" {
		return errors.New("STORAGE=memory is not allowed when APP_ENV=prod")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// Secret returns the session signing secret, with a fixed fallback outside prod.
func (c Config) Secret() string {
	if c.SessionSecret != "" {
		return c.SessionSecret
	}
	return "dev-only-session-secret"
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "notes")
	pass := getEnv("DB_PASSWORD", "notes")
	name := getEnv("DB_NAME", "notes")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: invalid %s=%q, using %d\n", key, v, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: invalid %s=%q, using %g\n", key, v, fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: invalid %s=%q, using %t\n", key, v, fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: invalid %s=%q, using %s\n", key, v, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
