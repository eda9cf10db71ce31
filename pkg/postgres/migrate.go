package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

func newMigrator(dsn, migrationsDir string) (*migrate.Migrate, error) {
	m, err := migrate.New(migrationsDir, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations from the given source
// directory (e.g. "file://./migrations"). A schema that is already up to
// date is not an error.
func RunMigrations(dsn string, migrationsDir string) error {
	m, err := newMigrator(dsn, migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations up: %w", err)
	}

	return nil
}

// RunMigrationsDown rolls back all applied migrations. A schema with nothing
// to roll back is not an error.
func RunMigrationsDown(dsn string, migrationsDir string) error {
	m, err := newMigrator(dsn, migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations down: %w", err)
	}

	return nil
}
