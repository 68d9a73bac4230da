// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. Schema changes live in migrations/*.sql, are embedded in the
// binary, and are applied with golang-migrate.
//
// sql.DB is a connection pool, not a single connection. Every query that
// returns sql.Rows closes them before issuing the next statement: an
// in-memory database has exactly one connection to share.
//
// Every table maps to one entity (plus join tables for ordered reference
// lists). Relationships are plain id columns without FOREIGN KEY clauses:
// integrity between records is the service layer's concern, and reads report
// a reference that no longer resolves as a nil summary.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB wraps a sql.DB connection pool and implements every repository interface.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and migrates it to the latest schema.
//
// dbPath examples:
//   - "data/lab-records.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Open opens the database without touching the schema. Used by the
// migrate subcommands; everything else should call New.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection serialises every writer in this process. It is also the
	// only way to share a ":memory:" database, which is private to the
	// connection that created it.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// connParams are applied by the driver to every connection it opens.
// busy_timeout makes a writer in another process wait instead of failing
// with SQLITE_BUSY, and immediate transactions take the write lock at BEGIN
// so a transaction never has to upgrade a read lock mid-way.
const connParams = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + connParams
	}
	return dbPath + "?" + connParams
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// MigrateUp applies all pending migrations. Already being at the latest
// version is not an error.
func (db *DB) MigrateUp() error {
	m, src, err := db.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it would close db.conn, which the caller owns.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// MigrationStatus describes the schema version of the open database.
type MigrationStatus struct {
	Version uint
	Latest  uint
	Dirty   bool
}

// Pending reports whether migrations remain to be applied.
func (s MigrationStatus) Pending() bool {
	return s.Version < s.Latest
}

// MigrationStatus reports the current and latest schema versions.
// A database that was never migrated reports Version 0.
func (db *DB) MigrationStatus() (MigrationStatus, error) {
	m, src, err := db.newMigrate()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer src.Close()

	var status MigrationStatus
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		// fresh database
	case err != nil:
		return MigrationStatus{}, fmt.Errorf("reading schema version: %w", err)
	default:
		status.Version = version
		status.Dirty = dirty
	}

	latest, err := latestMigration()
	if err != nil {
		return MigrationStatus{}, err
	}
	status.Latest = latest

	return status, nil
}

// newMigrate returns a migrator over db.conn together with its embedded
// source. The caller closes the source when done.
func (db *DB) newMigrate() (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, src, nil
}

func latestMigration() (uint, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return 0, fmt.Errorf("reading embedded migrations: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("finding first migration: %w", err)
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			// os.ErrNotExist marks the end of the list
			return version, nil
		}
		version = next
	}
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY failure.
// CHECK and NOT NULL failures are not uniqueness problems and stay
// unclassified.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// nullable converts an optional string into a SQL value.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ptr converts a scanned NullString back into an optional string.
func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
