// Package store persists users and inventory entries in PostgreSQL or SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"computer-inventory-api/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a unique constraint
	ErrConflict = errors.New("store: conflict")
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Options configures the connection pool
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps a sqlx handle with the dialect it talks to
type DB struct {
	*sqlx.DB
	driver string
}

// Open connects to the configured database and verifies the connection.
// Migrations are not applied; call Migrate for that.
func Open(ctx context.Context, opts Options) (*DB, error) {
	var sqlDriver string
	switch opts.Driver {
	case DriverPostgres:
		sqlDriver = "pgx"
	case DriverSQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}

	sqlxDB, err := sqlx.Open(sqlDriver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		// a single connection keeps :memory: databases alive and serialises writers
		sqlxDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlxDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlxDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
	}
	if opts.ConnMaxLifetime > 0 {
		sqlxDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlxDB.PingContext(pingCtx); err != nil {
		sqlxDB.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	return &DB{DB: sqlxDB, driver: opts.Driver}, nil
}

// New wraps an existing handle; driver must be DriverPostgres or DriverSQLite
func New(db *sqlx.DB, driver string) *DB {
	return &DB{DB: db, driver: driver}
}

// Driver returns DriverPostgres or DriverSQLite
func (db *DB) Driver() string { return db.driver }

// Q rewrites ? placeholders for the underlying driver
func (db *DB) Q(query string) string {
	return db.Rebind(query)
}

// now is the timestamp written to created_at and updated_at
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func logQuery(query string, args []any, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		logger.Log.Warnw("query failed", "query", logger.OneLine(query), "args", args, "error", err)
		return
	}
	logger.Log.Debugw("query", "query", logger.OneLine(query), "args", args, "error", err)
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == int(sqlite3.SQLITE_CONSTRAINT)
	}
	return false
}
