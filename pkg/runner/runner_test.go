package runner_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/schemerhq/schemer/pkg/adapter"
	"github.com/schemerhq/schemer/pkg/generator"
	"github.com/schemerhq/schemer/pkg/ledger"
	. "github.com/schemerhq/schemer/pkg/runner"
)

// mockAdapter records every call and fails on demand.
type mockAdapter struct {
	connectErrs  []error
	connects     int
	disconnects  int
	transactions [][]string
	failTxCall   int    // 1-based transaction call to fail, 0 for never
	afterTx      func() // runs after each successful transaction
}

func (m *mockAdapter) Name() string { return "mock" }

func (m *mockAdapter) Connect(context.Context) error {
	m.connects++
	if len(m.connectErrs) > 0 {
		err := m.connectErrs[0]
		m.connectErrs = m.connectErrs[1:]
		return err
	}
	return nil
}

func (m *mockAdapter) Disconnect() error {
	m.disconnects++
	return nil
}

func (m *mockAdapter) Query(context.Context, string) (adapter.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAdapter) Transaction(_ context.Context, statements []string) error {
	m.transactions = append(m.transactions, statements)
	if m.failTxCall > 0 && len(m.transactions) == m.failTxCall {
		return errors.New("syntax error near CREATE")
	}
	if m.afterTx != nil {
		m.afterTx()
	}
	return nil
}

var migrationsFS = fstest.MapFS{
	"20260101120000_users.schema": {Data: []byte("model User { id Serial @pk email VarChar(255) @notnull @unique }")},
	"20260102120000_posts.schema": {Data: []byte("model Post { id Serial @pk }")},
}

func newRunner(t *testing.T, mock *mockAdapter, fsys fstest.MapFS) (*Runner, *ledger.Ledger) {
	t.Helper()

	gen, err := generator.New("sqlite")
	require.NoError(t, err)

	led := ledger.New(filepath.Join(t.TempDir(), "ledger.yaml"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(Config{
		Adapter:    mock,
		Generator:  gen,
		Ledger:     led,
		Migrations: fsys,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}), led
}

func TestApply(t *testing.T) {
	mock := &mockAdapter{}
	r, led := newRunner(t, mock, migrationsFS)

	require.NoError(t, r.Apply(context.Background()))

	require.Equal(t, 1, mock.connects)
	require.Equal(t, 1, mock.disconnects)
	require.Len(t, mock.transactions, 2)
	require.Contains(t, mock.transactions[0][0], `CREATE TABLE "User"`)
	require.Contains(t, mock.transactions[1][0], `CREATE TABLE "Post"`)

	require.NoError(t, led.Load())
	require.Equal(t, 1, led.CurrentBatch())
	require.Equal(t, []string{
		"20260101120000_users.schema",
		"20260102120000_posts.schema",
	}, led.AppliedFilenames())
}

func TestApplyNothingPending(t *testing.T) {
	mock := &mockAdapter{}
	r, _ := newRunner(t, mock, migrationsFS)

	require.NoError(t, r.Apply(context.Background()))
	require.NoError(t, r.Apply(context.Background()))

	// Second run never connects.
	require.Equal(t, 1, mock.connects)
	require.Len(t, mock.transactions, 2)
}

func TestApplyRecordsSuccessfulPrefixOnFailure(t *testing.T) {
	mock := &mockAdapter{failTxCall: 2}
	r, led := newRunner(t, mock, migrationsFS)

	err := r.Apply(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "20260102120000_posts.schema")

	// The migration that succeeded before the failure is recorded, so the
	// ledger matches what the database actually holds.
	require.NoError(t, led.Load())
	require.Equal(t, 1, led.CurrentBatch())
	require.Equal(t, []string{"20260101120000_users.schema"}, led.AppliedFilenames())
	require.Equal(t, 1, mock.disconnects)
}

func TestApplyLedgerWriteFailureReportsMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")

	mock := &mockAdapter{}
	// Once the last migration has committed, replace the ledger file with a
	// directory so recording the batch fails after the SQL already ran.
	mock.afterTx = func() {
		if len(mock.transactions) == 2 {
			require.NoError(t, os.RemoveAll(path))
			require.NoError(t, os.Mkdir(path, 0o755))
		}
	}

	gen, err := generator.New("sqlite")
	require.NoError(t, err)

	led := ledger.New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := New(Config{
		Adapter:    mock,
		Generator:  gen,
		Ledger:     led,
		Migrations: migrationsFS,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	err = r.Apply(context.Background())
	require.Error(t, err)

	var mismatch *StateMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, "apply", mismatch.Operation)
	require.Equal(t, []string{
		"20260101120000_users.schema",
		"20260102120000_posts.schema",
	}, mismatch.Filenames)
	require.Contains(t, err.Error(), "do NOT re-run")
	require.Len(t, mock.transactions, 2, "every statement committed before the ledger failure")
}

func TestApplyDetectsModifiedFile(t *testing.T) {
	mock := &mockAdapter{}
	r, led := newRunner(t, mock, migrationsFS)
	require.NoError(t, r.Apply(context.Background()))

	tampered := fstest.MapFS{
		"20260101120000_users.schema": {Data: []byte("model User { id BigSerial @pk }")},
		"20260102120000_posts.schema": migrationsFS["20260102120000_posts.schema"],
	}

	gen, err := generator.New("sqlite")
	require.NoError(t, err)

	// Same ledger, tampered source for the already-applied file.
	r2 := New(Config{
		Adapter:    mock,
		Generator:  gen,
		Ledger:     led,
		Migrations: tampered,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	err = r2.Apply(context.Background())
	require.Error(t, err)

	var integrity *ledger.IntegrityError
	require.True(t, errors.As(err, &integrity))
	require.Equal(t, "20260101120000_users.schema", integrity.Filename)
	require.Len(t, mock.transactions, 2, "no SQL may run after an integrity failure")
}

func TestApplyParseFailureExecutesNothingAfter(t *testing.T) {
	fsys := fstest.MapFS{
		"001_good.schema": {Data: []byte("model A { id Serial @pk }")},
		"002_bad.schema":  {Data: []byte("model Broken {")},
		"003_more.schema": {Data: []byte("model C { id Serial @pk }")},
	}

	mock := &mockAdapter{}
	r, led := newRunner(t, mock, fsys)

	err := r.Apply(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "002_bad.schema")

	// Only the good migration before the parse failure ran and was recorded.
	require.Len(t, mock.transactions, 1)
	require.NoError(t, led.Load())
	require.Equal(t, []string{"001_good.schema"}, led.AppliedFilenames())
}

func TestRollback(t *testing.T) {
	mock := &mockAdapter{}
	r, led := newRunner(t, mock, migrationsFS)
	require.NoError(t, r.Apply(context.Background()))

	require.NoError(t, r.Rollback(context.Background()))

	// Down statements run in reverse recorded order.
	require.Len(t, mock.transactions, 4)
	require.Contains(t, mock.transactions[2][0], `DROP TABLE IF EXISTS "Post"`)
	require.Contains(t, mock.transactions[3][0], `DROP TABLE IF EXISTS "User"`)

	require.NoError(t, led.Load())
	require.Equal(t, 0, led.CurrentBatch())
	require.Empty(t, led.Entries())
}

func TestRollbackNothingToDo(t *testing.T) {
	mock := &mockAdapter{}
	r, _ := newRunner(t, mock, migrationsFS)

	require.NoError(t, r.Rollback(context.Background()))
	require.Zero(t, mock.connects)
}

func TestRollbackMidBatchFailureReportsMismatch(t *testing.T) {
	mock := &mockAdapter{}
	r, led := newRunner(t, mock, migrationsFS)
	require.NoError(t, r.Apply(context.Background()))

	// Third transaction overall is the first down (posts); let it succeed
	// and fail the second down (users).
	mock.failTxCall = 4

	err := r.Rollback(context.Background())
	require.Error(t, err)

	var mismatch *StateMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, "rollback", mismatch.Operation)
	require.Equal(t, []string{"20260102120000_posts.schema"}, mismatch.Filenames)
	require.Contains(t, err.Error(), "do NOT re-run")

	// Ledger untouched: the batch is still recorded.
	require.NoError(t, led.Load())
	require.Equal(t, 1, led.CurrentBatch())
}

func TestRollbackMissingFileIsFatal(t *testing.T) {
	mock := &mockAdapter{}
	r, led := newRunner(t, mock, migrationsFS)
	require.NoError(t, r.Apply(context.Background()))

	gen, err := generator.New("sqlite")
	require.NoError(t, err)

	partial := fstest.MapFS{
		"20260101120000_users.schema": migrationsFS["20260101120000_users.schema"],
	}
	r2 := New(Config{
		Adapter:    mock,
		Generator:  gen,
		Ledger:     led,
		Migrations: partial,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	err = r2.Rollback(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "20260102120000_posts.schema")
	require.Contains(t, err.Error(), "cannot be located")
}

func TestStatus(t *testing.T) {
	mock := &mockAdapter{}
	r, _ := newRunner(t, mock, migrationsFS)

	status, err := r.Status(context.Background())
	require.NoError(t, err)
	require.Empty(t, status.Applied)
	require.Len(t, status.Pending, 2)
	require.Equal(t, 0, status.CurrentBatch)

	require.NoError(t, r.Apply(context.Background()))

	status, err = r.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, status.Applied, 2)
	require.Empty(t, status.Pending)
	require.Equal(t, 1, status.CurrentBatch)
}

func TestConnectRetriesTransientErrors(t *testing.T) {
	mock := &mockAdapter{
		connectErrs: []error{
			errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			errors.New("dial tcp 127.0.0.1:5432: i/o timeout"),
		},
	}

	gen, err := generator.New("sqlite")
	require.NoError(t, err)

	led := ledger.New(filepath.Join(t.TempDir(), "ledger.yaml"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := New(Config{
		Adapter:        mock,
		Generator:      gen,
		Ledger:         led,
		Migrations:     migrationsFS,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		ConnectBackoff: 1, // nanosecond, keeps the test fast
	})

	require.NoError(t, r.Apply(context.Background()))
	require.Equal(t, 3, mock.connects)
}

func TestConnectFailsFastOnNonTransientErrors(t *testing.T) {
	mock := &mockAdapter{
		connectErrs: []error{errors.New("pq: password authentication failed")},
	}
	r, _ := newRunner(t, mock, migrationsFS)

	err := r.Apply(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, mock.connects, "authentication errors must not be retried")
}
