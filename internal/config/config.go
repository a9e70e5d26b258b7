package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// defaults, overridable through the environment or .env
const (
	portConst            = "8080"
	dataDirConst         = "./data"
	maxOpenConnsConst    = 5
	connMaxLifetimeConst = 30 * time.Minute
	fetchTimeoutConst    = 10 * time.Second
	retryAttemptsConst   = 3
	retryBackoffConst    = 50 * time.Millisecond
	shutdownTimeoutConst = 15 * time.Second
	logLevelConst        = "info"
)

type Config struct {
	Port            string        `validate:"required,numeric"`
	DataDir         string        `validate:"required"`
	DatabaseURL     string        `validate:"omitempty,url"`
	MaxOpenConns    int           `validate:"min=1"`
	ConnMaxLifetime time.Duration `validate:"min=0"`
	FetchTimeout    time.Duration `validate:"gt=0"`
	RetryAttempts   int           `validate:"min=1,max=10"`
	RetryBackoff    time.Duration `validate:"min=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Port:            getEnvString("PORT", portConst),
		DataDir:         getEnvString("DATA_DIR", dataDirConst),
		DatabaseURL:     normalizeDatabaseURL(os.Getenv("DATABASE_URL")),
		MaxOpenConns:    env.integer("DB_MAX_OPEN_CONNS", maxOpenConnsConst),
		ConnMaxLifetime: env.duration("DB_CONN_MAX_LIFETIME", connMaxLifetimeConst),
		FetchTimeout:    env.duration("FETCH_TIMEOUT", fetchTimeoutConst),
		RetryAttempts:   env.integer("TRACK_RETRY_ATTEMPTS", retryAttemptsConst),
		RetryBackoff:    env.duration("TRACK_RETRY_BACKOFF", retryBackoffConst),
		ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", shutdownTimeoutConst),
		LogLevel:        strings.ToLower(getEnvString("LOG_LEVEL", logLevelConst)),
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			var fields []string
			for _, fe := range errs {
				fields = append(fields, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// UsePostgres reports whether a managed PostgreSQL instance is configured.
// Without one the service falls back to a SQLite file in DataDir.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Hosting providers hand out postgres:// URLs; both schemes are accepted by
// pgx but postgresql:// is the canonical one.
func normalizeDatabaseURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(u, "postgres://")
	}
	return u
}

func getEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and collects every malformed one. Unset
// or empty variables take their default.
type envReader struct {
	errs []error
}

func (e *envReader) integer(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return defaultValue
	}
	return parsed
}

func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a duration such as 10s or 50ms", key, value))
		return defaultValue
	}
	return parsed
}
