package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tair/till-pos/pkg/database"
)

// Config is the full runtime configuration of the till service
type Config struct {
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"pos-service"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`

	DBDriver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath       string `envconfig:"DB_PATH" default:"store.db"`
	DBHost       string `envconfig:"DB_HOST" default:"localhost"`
	DBPort       string `envconfig:"DB_PORT" default:"5432"`
	DBUser       string `envconfig:"DB_USER" default:"postgres"`
	DBPassword   string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName       string `envconfig:"DB_NAME" default:"posdb"`
	DBSSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	DBPGDriver   string `envconfig:"DB_PG_DRIVER" default:"pgx"`
	DBLogQueries bool   `envconfig:"DB_LOG_QUERIES" default:"false"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"12h"`

	PasswordHasher     string `envconfig:"PASSWORD_HASHER" default:"sha256"`
	AllowNegativeStock bool   `envconfig:"ALLOW_NEGATIVE_STOCK" default:"false"`

	RedisAddr         string        `envconfig:"REDIS_ADDR"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"30s"`

	LoginRateLimit  int           `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	LoginRateWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`

	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
	JaegerEndpoint string `envconfig:"JAEGER_ENDPOINT"`
}

// Load reads an optional dotenv file and decodes the environment.
// A missing env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", database.DriverSQLite, database.DriverPostgres, c.DBDriver)
	}
	switch c.DBPGDriver {
	case database.PGDriverPgx, database.PGDriverPq:
	default:
		return fmt.Errorf("DB_PG_DRIVER must be %q or %q, got %q", database.PGDriverPgx, database.PGDriverPq, c.DBPGDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

// IsDevelopment reports whether console-friendly logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Database maps the flat environment keys onto a database.Config
func (c *Config) Database() database.Config {
	return database.Config{
		Driver:     c.DBDriver,
		Path:       c.DBPath,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		PGDriver:   c.DBPGDriver,
		LogQueries: c.DBLogQueries,
	}
}
