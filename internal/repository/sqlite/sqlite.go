// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// The hike log is a single-user, local application. An embedded database is a
// single file next to the binary: no server to run, and ":memory:" gives every
// test its own throwaway database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary cross-compiles without
// a C toolchain (mattn/go-sqlite3 needs CGo).
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB   is a connection pool, not a single connection
//   - sql.Tx   is a transaction (used for cascade delete and reset)
//   - sql.Row  is a single result row, sql.Rows an iterator that MUST be closed
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SchemaVersion is stored in PRAGMA user_version. Any other value found on
// open means the tables were created by a different build: they are dropped
// and recreated. There is no migration path; losing the old rows is the
// documented behaviour.
const SchemaVersion = 3

//go:embed schema.sql
var schemaSQL string

// ErrLocked is returned by New when another process holds the database.
var ErrLocked = errors.New("sqlite: database is in use by another process")

// DB wraps a sql.DB connection pool and implements both
// repository.HikeRepository and repository.ObservationRepository.
type DB struct {
	conn   *sql.DB
	lock   *flock.Flock // nil for in-memory databases
	logger *slog.Logger
}

// New opens (creating if needed) the database at dbPath and brings its schema
// to SchemaVersion.
//
// dbPath examples:
//   - "data/hikelog.db" → file-based database, guarded by "data/hikelog.db.lock"
//   - ":memory:"        → in-memory database (tests), no lock file
//
// SINGLE CONNECTION:
// The pool is capped at one connection. SQLite pragmas such as foreign_keys
// are per connection, and an in-memory database exists only inside the
// connection that created it, so a second pooled connection would see
// neither. The application is single-user, so serialized access costs nothing.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	db := &DB{logger: logger}

	if !isMemory(dbPath) {
		// The lock file sits beside the database rather than on it, so the
		// WAL and journal files SQLite manages are never touched by flock.
		db.lock = flock.New(dbPath + ".lock")
		locked, err := db.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("sqlite: locking database: %w", err)
		}
		if !locked {
			return nil, ErrLocked
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		db.unlock()
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	db.conn = conn

	// Ping forces the first real connection so a bad path fails here rather
	// than on the first query.
	if err := conn.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := db.applyPragmas(); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool and releases the lock file.
//
// ALWAYS DEFER CLOSE:
//
//	db, err := sqlite.New("data/hikelog.db", logger)
//	if err != nil { ... }
//	defer db.Close()
func (db *DB) Close() error {
	var err error
	if db.conn != nil {
		err = db.conn.Close()
	}
	db.unlock()
	return err
}

func (db *DB) unlock() {
	if db.lock != nil {
		_ = db.lock.Unlock()
	}
}

// applyPragmas configures the connection.
//
// Foreign keys are OFF by default in SQLite; the cascade from hikes to
// observations depends on them being ON.
func (db *DB) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.conn.Exec(pragma); err != nil {
			return fmt.Errorf("sqlite: executing %q: %w", pragma, err)
		}
	}
	return nil
}

// migrate creates the tables, or drops and recreates them when the stored
// schema version differs from SchemaVersion. All of it runs in one
// transaction, so a failure leaves the previous tables untouched.
func (db *DB) migrate(ctx context.Context) error {
	version, err := db.schemaVersion(ctx)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}
	defer tx.Rollback()

	if version != SchemaVersion {
		if version != 0 {
			db.logger.Warn("schema version mismatch, recreating tables",
				slog.Int("found", version),
				slog.Int("want", SchemaVersion),
			)
		}
		// Children first: dropping hikes while observations still point
		// at it would trip the foreign key.
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS observations`); err != nil {
			return fmt.Errorf("dropping observations table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS hikes`); err != nil {
			return fmt.Errorf("dropping hikes table: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	// PRAGMA does not accept bound parameters; SchemaVersion is a constant.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}

	return tx.Commit()
}

func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading user_version: %w", err)
	}
	return version, nil
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") || strings.HasPrefix(dbPath, "file::memory:")
}

// isForeignKeyViolation reports whether err is SQLite rejecting a write
// because of a FOREIGN KEY constraint.
func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	// Without extended result codes only the primary code is reported.
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
}

// nullString stores "" as NULL so optional text columns stay NULL when unset.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowsAffected returns the affected-row count of an UPDATE/DELETE.
func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}
