// Package adapter abstracts database connectivity behind a small contract
// the migration runner drives: connect, run DDL statement batches, run
// read-only queries, disconnect. Implementations exist for PostgreSQL,
// MySQL/MariaDB, and SQLite over database/sql, and for ClickHouse over its
// native protocol.
package adapter

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// Adapter is a connection to one database. Connect must be called
	// before Query or Transaction, and Disconnect when done.
	Adapter interface {
		// Name returns the dialect name the adapter serves.
		Name() string

		// Connect establishes and verifies the connection.
		Connect(ctx context.Context) error

		// Disconnect closes the connection. Safe to call when not connected.
		Disconnect() error

		// Query runs a read-only statement and returns its rows.
		Query(ctx context.Context, query string) (Rows, error)

		// Transaction executes the statements as one atomic unit where the
		// engine supports transactional DDL, and as a sequential
		// best-effort batch where it does not.
		Transaction(ctx context.Context, statements []string) error
	}

	// Rows is the minimal result-iteration surface, satisfied by *sql.Rows
	// and by the ClickHouse native driver's rows.
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Close() error
		Err() error
	}
)

// errNotConnected is returned by operations invoked before Connect.
var errNotConnected = errors.New("adapter is not connected")

// New returns an adapter for the named dialect connecting to dsn.
func New(dialect, dsn string) (Adapter, error) {
	switch dialect {
	case "postgres", "postgresql":
		return NewPostgres(dsn), nil
	case "mysql", "mariadb":
		return NewMySQL(dsn), nil
	case "sqlite", "sqlite3":
		return NewSQLite(dsn), nil
	case "clickhouse":
		return NewClickHouse(dsn), nil
	default:
		return nil, errors.Errorf("unknown dialect %q (supported: clickhouse, mysql, postgres, sqlite)", dialect)
	}
}
