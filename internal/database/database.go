package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"zipcaster/internal/config"
	"zipcaster/internal/constants"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

const (
	driverName = "sqlite3_zipcaster"
	memoryPath = ":memory:"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type pragma struct {
	name  string
	value string
}

// Applied on every pooled connection, not only the first one.
var pragmas = []pragma{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"cache_size", "-64000"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
	{"temp_store", "MEMORY"},
}

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, p := range pragmas {
				if _, err := conn.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value), nil); err != nil {
					return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
				}
			}
			return nil
		},
	})
}

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

// Open connects to the battle store at path, creating its directory when
// needed, and migrates it to the latest schema.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	log := logger.With().Str("path", path).Logger()

	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		log.Error().Err(err).Msg("failed to open battle store")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(constants.DBMaxOpenConns)
		db.SetMaxIdleConns(constants.DBMaxIdleConns)
	}
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	version, err := migrate(db)
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("failed to migrate battle store")
		return nil, err
	}

	log.Info().Int64("schema_version", version).Msg("battle store ready")
	return db, nil
}

// migrate applies pending migrations and returns the resulting schema version.
func migrate(db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
