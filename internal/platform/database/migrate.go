package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationsTable records the applied schema version.
const MigrationsTable = "schema_migrations"

// Migrations returns the embedded migration versions in apply order.
func Migrations() ([]uint, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("opening migrations: %w", err)
	}
	defer src.Close()

	var versions []uint
	v, err := src.First()
	for err == nil {
		versions = append(versions, v)
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	return versions, nil
}

// Migrate applies every embedded up migration not yet applied. It runs on
// its own connection so the pool is never closed by the migrator.
// Cancelling ctx stops after the migration in progress.
func (db *DB) Migrate(ctx context.Context) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}

	conn := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer conn.Close()

	m, err := newMigrator(src, conn)
	if err != nil {
		src.Close()
		return err
	}
	defer m.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Debug("schema up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	slog.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}

func newMigrator(src source.Driver, conn *sql.DB) (*migrate.Migrate, error) {
	driver, err := migratepgx.WithInstance(conn, &migratepgx.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}
