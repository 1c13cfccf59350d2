package adapter

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
)

// clickhouseAdapter speaks the native protocol. ClickHouse has no
// transactional DDL, so Transaction degrades to a sequential statement loop
// that stops at the first failure.
type clickhouseAdapter struct {
	dsn  string
	conn driver.Conn
}

// NewClickHouse returns a ClickHouse adapter. The DSN is "host:port", e.g.
// "localhost:9000".
func NewClickHouse(dsn string) Adapter {
	return &clickhouseAdapter{dsn: dsn}
}

func (a *clickhouseAdapter) Name() string { return "clickhouse" }

func (a *clickhouseAdapter) Connect(ctx context.Context) error {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{a.dsn},
	})
	if err != nil {
		return errors.Wrap(err, "failed to open clickhouse connection")
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to ping clickhouse")
	}

	a.conn = conn
	return nil
}

func (a *clickhouseAdapter) Disconnect() error {
	if a.conn == nil {
		return nil
	}

	err := a.conn.Close()
	a.conn = nil
	return errors.Wrap(err, "failed to close clickhouse connection")
}

func (a *clickhouseAdapter) Query(ctx context.Context, query string) (Rows, error) {
	if a.conn == nil {
		return nil, errNotConnected
	}

	rows, err := a.conn.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "clickhouse query failed")
	}
	return clickhouseRows{rows}, nil
}

func (a *clickhouseAdapter) Transaction(ctx context.Context, statements []string) error {
	if a.conn == nil {
		return errNotConnected
	}

	for _, stmt := range statements {
		if err := a.conn.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "statement failed: %s", stmt)
		}
	}
	return nil
}

// clickhouseRows keeps the native driver type out of the package API.
type clickhouseRows struct {
	rows driver.Rows
}

func (r clickhouseRows) Next() bool { return r.rows.Next() }
func (r clickhouseRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r clickhouseRows) Close() error { return r.rows.Close() }
func (r clickhouseRows) Err() error { return r.rows.Err() }
