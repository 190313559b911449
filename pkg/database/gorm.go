package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/till-pos/pkg/logger"
)

// Supported values for Config.Driver
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported values for Config.PGDriver
const (
	PGDriverPgx = "pgx"
	PGDriverPq  = "pq"
)

// Config holds database configuration
type Config struct {
	Driver string

	// SQLite
	Path string

	// PostgreSQL
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	PGDriver string

	LogQueries bool
}

// NewGormConnection opens the configured database and tunes its pool
func NewGormConnection(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}
	if cfg.LogQueries {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(SQLiteDSN(cfg.Path))
	case DriverPostgres:
		pgCfg := postgres.Config{DSN: PostgresDSN(cfg)}
		if cfg.PGDriver == PGDriverPq {
			pgCfg.DriverName = "postgres"
		}
		dialector = postgres.New(pgCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == DriverPostgres {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// one writer; also keeps an in-memory database on a single connection
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger.Info().
		Str("driver", dialector.Name()).
		Msg("Successfully connected to database")
	return db, nil
}

// SQLiteDSN returns a DSN with foreign key enforcement switched on.
// An empty path selects a private in-memory database.
func SQLiteDSN(path string) string {
	if path == "" || path == ":memory:" {
		path = "file::memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// PostgresDSN builds a key/value DSN understood by both pgx and lib/pq
func PostgresDSN(cfg Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}
