// Package runner orchestrates migration application, rollback, and status
// reporting. It owns the ordering and failure semantics; the actual SQL
// comes from a generator and is executed through an adapter, and every
// outcome is recorded in the ledger before the runner reports success.
package runner

import (
	"context"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/adapter"
	"github.com/schemerhq/schemer/pkg/consts"
	"github.com/schemerhq/schemer/pkg/generator"
	"github.com/schemerhq/schemer/pkg/ledger"
	"github.com/schemerhq/schemer/pkg/migrator"
)

type (
	// Config wires a Runner's collaborators. Adapter, Generator, Ledger,
	// Migrations, and Logger are required; the connection retry knobs
	// default when zero.
	Config struct {
		Adapter    adapter.Adapter
		Generator  generator.Generator
		Ledger     *ledger.Ledger
		Migrations fs.FS
		Limits     migrator.Limits
		Logger     *slog.Logger

		// ConnectAttempts bounds connection retries; ConnectBackoff is the
		// initial delay, doubled after each transient failure.
		ConnectAttempts int
		ConnectBackoff  time.Duration
	}

	// Runner executes migration operations strictly sequentially. A single
	// Runner is not safe for concurrent use; cross-process safety comes
	// from the ledger's lock, not from the Runner.
	Runner struct {
		cfg Config
		log *slog.Logger
	}

	// Status is the read-only report of where the database stands relative
	// to the migration directory.
	Status struct {
		Applied      []string
		Pending      []string
		CurrentBatch int
	}
)

// New creates a Runner from cfg, applying retry defaults.
func New(cfg Config) *Runner {
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = consts.DefaultConnectAttempts
	}
	if cfg.ConnectBackoff <= 0 {
		cfg.ConnectBackoff = consts.DefaultConnectBackoff
	}

	return &Runner{cfg: cfg, log: cfg.Logger}
}

// Apply brings the database up to date: every migration file without a
// ledger entry is parsed, lowered to dialect SQL, and executed as one
// transaction, in filename order. Successfully executed migrations are
// recorded as a single new batch even when a later migration fails, so the
// ledger never falls behind the database.
func (r *Runner) Apply(ctx context.Context) error {
	dir, err := migrator.LoadDir(r.cfg.Migrations, r.cfg.Limits)
	if err != nil {
		return err
	}

	if err := r.cfg.Ledger.Load(); err != nil {
		return err
	}

	if err := r.cfg.Ledger.ValidateIntegrity(dir.Contents()); err != nil {
		return err
	}

	pending := r.cfg.Ledger.Pending(dir.Filenames())
	if len(pending) == 0 {
		r.log.Info("no pending migrations")
		return nil
	}

	files := make([]*migrator.File, len(pending))
	for i, name := range pending {
		if files[i] = dir.File(name); files[i] == nil {
			return errors.Errorf("pending migration %s cannot be located in the migrations directory", name)
		}
	}

	if err := r.cfg.Ledger.ProbeWrite(); err != nil {
		return err
	}

	if err := r.connect(ctx); err != nil {
		return err
	}
	defer r.disconnect()

	var (
		applied []ledger.File
		execErr error
	)
	for _, f := range files {
		if execErr = r.applyOne(ctx, f); execErr != nil {
			break
		}
		applied = append(applied, ledger.File{Name: f.Name, Content: f.Content})
	}

	if len(applied) > 0 {
		if err := r.cfg.Ledger.RecordBatch(applied); err != nil {
			names := make([]string, len(applied))
			for i, f := range applied {
				names[i] = f.Name
			}
			return &StateMismatchError{Operation: "apply", Filenames: names, Cause: err}
		}
		r.log.Info("recorded batch", "batch", r.cfg.Ledger.CurrentBatch(), "migrations", len(applied))
	}

	return execErr
}

func (r *Runner) applyOne(ctx context.Context, f *migrator.File) error {
	schema, err := f.Parse()
	if err != nil {
		return err
	}

	statements, err := r.cfg.Generator.Up(schema)
	if err != nil {
		return errors.Wrapf(err, "%s", f.Name)
	}

	r.log.Info("applying migration", "file", f.Name, "statements", len(statements))
	if err := r.cfg.Adapter.Transaction(ctx, statements); err != nil {
		return errors.Wrapf(err, "failed to apply %s", f.Name)
	}

	return nil
}

// Rollback reverses the most recent batch: each of its entries is parsed
// and lowered to down SQL, executed in reverse recorded order, and the
// batch is removed from the ledger only after every reversal succeeded.
func (r *Runner) Rollback(ctx context.Context) error {
	dir, err := migrator.LoadDir(r.cfg.Migrations, r.cfg.Limits)
	if err != nil {
		return err
	}

	if err := r.cfg.Ledger.Load(); err != nil {
		return err
	}

	batch := r.cfg.Ledger.LastBatch()
	if len(batch) == 0 {
		r.log.Info("nothing to roll back")
		return nil
	}

	files := make([]*migrator.File, len(batch))
	for i, e := range batch {
		if files[i] = dir.File(e.Filename); files[i] == nil {
			return errors.Errorf("ledger expects migration %s but it cannot be located in the migrations directory", e.Filename)
		}
	}

	if err := r.cfg.Ledger.ProbeWrite(); err != nil {
		return err
	}

	if err := r.connect(ctx); err != nil {
		return err
	}
	defer r.disconnect()

	var reversed []string
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]

		schema, err := f.Parse()
		if err != nil {
			return err
		}

		statements, err := r.cfg.Generator.Down(schema)
		if err != nil {
			return errors.Wrapf(err, "%s", f.Name)
		}

		r.log.Info("rolling back migration", "file", f.Name, "statements", len(statements))
		if err := r.cfg.Adapter.Transaction(ctx, statements); err != nil {
			if len(reversed) > 0 {
				return &StateMismatchError{
					Operation: "rollback",
					Filenames: reversed,
					Cause:     errors.Wrapf(err, "rollback of %s failed mid-batch", f.Name),
				}
			}
			return errors.Wrapf(err, "failed to roll back %s", f.Name)
		}
		reversed = append(reversed, f.Name)
	}

	if err := r.cfg.Ledger.RollbackLastBatch(); err != nil {
		return &StateMismatchError{Operation: "rollback", Filenames: reversed, Cause: err}
	}

	r.log.Info("rolled back batch", "migrations", len(reversed))
	return nil
}

// Status reports applied filenames, pending filenames, and the current
// batch number. Read-only: no lock is held beyond the ledger's own load.
func (r *Runner) Status(_ context.Context) (*Status, error) {
	dir, err := migrator.LoadDir(r.cfg.Migrations, r.cfg.Limits)
	if err != nil {
		return nil, err
	}

	if err := r.cfg.Ledger.Load(); err != nil {
		return nil, err
	}

	return &Status{
		Applied:      r.cfg.Ledger.AppliedFilenames(),
		Pending:      r.cfg.Ledger.Pending(dir.Filenames()),
		CurrentBatch: r.cfg.Ledger.CurrentBatch(),
	}, nil
}

// connect establishes the adapter connection with bounded retry. Only
// errors whose signature marks them transient are retried; everything else
// fails fast.
func (r *Runner) connect(ctx context.Context) error {
	backoff := r.cfg.ConnectBackoff

	var err error
	for attempt := 1; attempt <= r.cfg.ConnectAttempts; attempt++ {
		if err = r.cfg.Adapter.Connect(ctx); err == nil {
			return nil
		}

		if !isTransient(err) {
			return errors.Wrap(err, "failed to connect")
		}

		if attempt < r.cfg.ConnectAttempts {
			r.log.Warn("transient connection failure, retrying",
				"attempt", attempt, "backoff", backoff, "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return errors.Wrapf(err, "failed to connect after %d attempts", r.cfg.ConnectAttempts)
}

func (r *Runner) disconnect() {
	if err := r.cfg.Adapter.Disconnect(); err != nil {
		r.log.Warn("failed to disconnect", "error", err)
	}
}

// transientSignatures are the error-text markers of connection failures
// worth retrying. Classification is by signature, not by driver-specific
// error types, so it works uniformly across adapters.
var transientSignatures = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"timed out",
	"temporary failure",
	"network is unreachable",
	"no route to host",
	"no such host",
	"broken pipe",
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
