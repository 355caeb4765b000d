// Package migrations embeds the schema migrations for every supported SQL
// dialect and applies them with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var fs embed.FS

// Run applies all pending up migrations of dialect to the database at
// databaseURL. A database that is already current is not an error.
func Run(databaseURL, dialect string) error {
	const op = "migrations.Run"

	if dialect != DialectPostgres && dialect != DialectSQLite {
		return fmt.Errorf("%s: unsupported dialect %q", op, dialect)
	}

	source, err := iofs.New(fs, dialect)
	if err != nil {
		return fmt.Errorf("%s: failed to open migrations source: %w", op, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
