// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go port of SQLite, so the binary needs no C
// toolchain and the tests can run against ":memory:" databases.
//
// Schema changes live in migrations/*.sql and are applied with goose. The SQL
// files are embedded, so a deployed binary carries its own schema.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/conftrack/internal/apperror"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB wraps the sql.DB pool and hands out one store per table.
type DB struct {
	conn *sql.DB
}

// Open connects to the database at dbPath without touching the schema.
//
// The pool holds a single connection, so the PRAGMAs below cover every query
// and a ":memory:" database is shared by all callers.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", strings.ToLower(pragma), err)
		}
	}

	return &DB{conn: conn}, nil
}

// New opens the database and migrates it to the latest schema.
func New(ctx context.Context, dbPath string) (*DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) provider() (*goose.Provider, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: migrations fs: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db.conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating migration provider: %w", err)
	}
	return p, nil
}

// Migrate applies every pending migration and returns the ones it ran.
func (db *DB) Migrate(ctx context.Context) ([]*goose.MigrationResult, error) {
	p, err := db.provider()
	if err != nil {
		return nil, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return results, nil
}

// MigrationStatus reports every known migration and whether it is applied.
func (db *DB) MigrationStatus(ctx context.Context) ([]*goose.MigrationStatus, error) {
	p, err := db.provider()
	if err != nil {
		return nil, err
	}
	status, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: migration status: %w", err)
	}
	return status, nil
}

func (db *DB) Snippets() *SnippetStore {
	return &SnippetStore{conn: db.conn}
}

func (db *DB) SessionTypes() *SessionTypeStore {
	return &SessionTypeStore{conn: db.conn}
}

func (db *DB) Events() *EventStore {
	return &EventStore{conn: db.conn}
}

func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// takenError is what a duplicate value on a unique column looks like to callers.
func takenError(field string) error {
	label := strings.ToUpper(field[:1]) + strings.ReplaceAll(field[1:], "_", " ")
	return apperror.ValidationFailed(field, label+" has already been taken")
}

// rowsAffected returns NotFound when a write matched no row.
func rowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
