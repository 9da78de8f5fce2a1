package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var (
	ErrMigrationsPathRequired = errors.New("migrations path cannot be empty")
	ErrDatabaseURLRequired    = errors.New("database URL cannot be empty")
)

// SchemaVersion is the migration state of the cash database after a run
type SchemaVersion struct {
	Version uint
	Dirty   bool
	Changed bool
}

// migrationSource turns a directory into a file:// source URL
func migrationSource(migrationsPath string) (string, error) {
	if migrationsPath == "" {
		return "", ErrMigrationsPathRequired
	}
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations path %s: %w", migrationsPath, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// RunMigrations brings the snapshot and outbox tables up to date.
// A dirty schema is reported as an error and left for manual repair.
func RunMigrations(logger *slog.Logger, databaseURL, migrationsPath string) (SchemaVersion, error) {
	sourceURL, err := migrationSource(migrationsPath)
	if err != nil {
		return SchemaVersion{}, err
	}
	if databaseURL == "" {
		return SchemaVersion{}, ErrDatabaseURLRequired
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator", "source_error", sourceErr, "db_error", dbErr)
		}
	}()

	var state SchemaVersion
	upErr := m.Up()
	switch {
	case upErr == nil:
		state.Changed = true
	case errors.Is(upErr, migrate.ErrNoChange):
	default:
		return state, fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	state.Version, state.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return state, fmt.Errorf("failed to read schema version: %w", err)
	}
	if state.Dirty {
		return state, fmt.Errorf("schema version %d is dirty", state.Version)
	}

	logger.Info("Cash schema ready",
		"version", state.Version,
		"changed", state.Changed,
		"source", sourceURL,
	)
	return state, nil
}
