package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"github.com/nanoreddit-ui-autotests/internal/config"
	"github.com/rs/zerolog"
)

// Querier is the store capability the repositories are written against
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) ([]Row, error)
	Execute(ctx context.Context, query string, args ...interface{}) (int64, error)
}

// ConnectionLostError is returned when the connection dropped and could not
// be re-established with a single reconnect attempt
type ConnectionLostError struct {
	Cause        error
	ReconnectErr error
}

func (e *ConnectionLostError) Error() string {
	if e.ReconnectErr != nil {
		return fmt.Sprintf("database connection lost: %v (reconnect failed: %v)", e.Cause, e.ReconnectErr)
	}
	return fmt.Sprintf("database connection lost: %v", e.Cause)
}

func (e *ConnectionLostError) Unwrap() error {
	return e.Cause
}

// DB is a long-lived autocommit connection to the application store. A
// statement that fails because the connection went away is retried once
// on a fresh connection
type DB struct {
	cfg config.DatabaseConfig
	log zerolog.Logger

	mu     sync.RWMutex
	conn   *sql.DB
	closed bool
}

// ErrClosed is returned by statements issued after Close
var ErrClosed = errors.New("database: closed")

// New creates a new database connection with connection pooling
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	wrapper := &DB{
		cfg: *cfg,
		log: log.With().Str("component", "database").Logger(),
	}

	conn, err := wrapper.open(context.Background())
	if err != nil {
		return nil, err
	}
	wrapper.conn = conn

	wrapper.log.Info().
		Str("driver", cfg.Driver).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connection established")

	return wrapper, nil
}

func (db *DB) open(ctx context.Context) (*sql.DB, error) {
	driverName := db.cfg.Driver
	if driverName == "" {
		driverName = "postgres"
	}

	conn, err := sql.Open(driverName, db.cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	if db.cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(db.cfg.MaxOpenConns)
	}
	if db.cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(db.cfg.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(db.cfg.MaxLifetime)

	// Test connection with timeout
	pingTimeout := db.cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

func (db *DB) current() *sql.DB {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn
}

func (db *DB) isClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}

// reconnect replaces stale with a fresh connection unless another caller
// already did so
func (db *DB) reconnect(ctx context.Context, stale *sql.DB) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	if db.conn != stale {
		return nil
	}

	conn, err := db.open(ctx)
	if err != nil {
		return err
	}
	db.conn = conn
	if stale != nil {
		stale.Close()
	}

	db.log.Info().Msg("Database connection re-established")
	return nil
}

func (db *DB) withReconnect(ctx context.Context, fn func(conn *sql.DB) error) error {
	if db.isClosed() {
		return ErrClosed
	}
	conn := db.current()
	err := fn(conn)
	if err == nil || !IsConnectionLost(err) {
		return err
	}

	db.log.Warn().Err(err).Msg("Database connection lost, reconnecting")
	if rerr := db.reconnect(ctx, conn); rerr != nil {
		return &ConnectionLostError{Cause: err, ReconnectErr: rerr}
	}

	err = fn(db.current())
	if err != nil && IsConnectionLost(err) {
		return &ConnectionLostError{Cause: err}
	}
	return err
}

// Query runs a read statement and returns every row as a column map
func (db *DB) Query(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	db.log.Debug().Str("sql", compact(query)).Int("args", len(args)).Msg("Executing SQL query")

	var rows []Row
	err := db.withReconnect(ctx, func(conn *sql.DB) error {
		var err error
		rows, err = scanRows(ctx, conn, query, args)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("SQL query failed: %w", err)
	}

	if e := db.log.Debug(); e.Enabled() {
		event := e.Int("rows", len(rows))
		if len(rows) > 0 {
			event = event.Interface("first_row", MaskRow(rows[0]))
		}
		event.Msg("SQL query completed")
	}

	return rows, nil
}

// Execute runs a write statement in autocommit mode and returns the number
// of affected rows
func (db *DB) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	db.log.Debug().Str("sql", compact(query)).Int("args", len(args)).Msg("Executing SQL statement")

	var affected int64
	err := db.withReconnect(ctx, func(conn *sql.DB) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("SQL statement failed: %w", err)
	}

	db.log.Debug().Int64("affected", affected).Msg("SQL statement completed")
	return affected, nil
}

func scanRows(ctx context.Context, conn *sql.DB, query string, args []interface{}) ([]Row, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// IsConnectionLost reports whether err means the server connection is gone
func IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 08 is connection exception, 57P01 admin shutdown
		return pqErr.Code.Class() == "08" || pqErr.Code == "57P01"
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	return strings.Contains(err.Error(), "sql: database is closed")
}

// RunMigrations executes all pending migrations using golang-migrate
func (db *DB) RunMigrations(migrationsPath string) error {
	db.log.Info().Str("path", migrationsPath).Msg("Running database migrations")

	m, err := db.migrator(migrationsPath)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	db.log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations completed")

	return nil
}

// MigrateDown rolls back the last migration
func (db *DB) MigrateDown(migrationsPath string) error {
	db.log.Info().Str("path", migrationsPath).Msg("Rolling back last migration")

	m, err := db.migrator(migrationsPath)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	db.log.Info().Msg("Migration rolled back")
	return nil
}

// MigrateToVersion migrates to a specific version
func (db *DB) MigrateToVersion(migrationsPath string, version uint) error {
	db.log.Info().Uint("version", version).Msg("Migrating to specific version")

	m, err := db.migrator(migrationsPath)
	if err != nil {
		return err
	}

	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate to version %d: %w", version, err)
	}

	return nil
}

func (db *DB) migrator(migrationsPath string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db.current(), &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// HealthCheck pings the store, bounded by the configured ping timeout
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.isClosed() {
		return ErrClosed
	}
	timeout := db.cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.current().PingContext(pingCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.current().Stats()
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	return db.conn.Close()
}

func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
