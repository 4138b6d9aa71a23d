package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"case_docket_app_go/config"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LibSQLDriverName is the database/sql driver registered by libsql-client-go
const LibSQLDriverName = "libsql"

// Open connects to the configured database.
// A Turso URL selects the remote libSQL driver; otherwise a local sqlite
// file in WAL mode is used. Foreign keys are enforced in both cases.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	// Determine log level based on environment
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var dialector gorm.Dialector
	if cfg.TursoDatabaseURL != "" {
		dialector = sqlite.New(sqlite.Config{
			DriverName: LibSQLDriverName,
			DSN:        TursoDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken),
		})
	} else {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(LocalDSN(cfg.DBPath))
	}

	database, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if cfg.TursoDatabaseURL != "" {
		log.Info("database connection established", zap.String("driver", LibSQLDriverName))
	} else {
		log.Info("database connection established (WAL mode enabled)", zap.String("path", cfg.DBPath))
	}
	return database, nil
}

// LocalDSN builds the go-sqlite3 DSN for a database file
func LocalDSN(path string) string {
	return path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
}

// TursoDSN appends the auth token to a libsql:// URL when one is configured
func TursoDSN(url, authToken string) string {
	if authToken == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "authToken=" + authToken
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(database *gorm.DB, models ...interface{}) error {
	if database == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := database.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(database *gorm.DB) error {
	if database == nil {
		return nil
	}

	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
