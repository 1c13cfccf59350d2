package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/schemerhq/schemer/pkg/consts"
)

type (
	// Lease is an exclusive, filesystem-resident lock coordinating ledger
	// access across processes and hosts. At most one holder exists at a
	// time; staleness is detected by file age plus a liveness probe of the
	// recorded owner, and only demonstrably dead same-host owners are ever
	// cleaned up.
	Lease struct {
		path     string
		timeout  time.Duration
		interval time.Duration
		log      *slog.Logger
		token    string
	}

	// lockRecord is the ephemeral lock file content. It never becomes part
	// of the durable ledger.
	lockRecord struct {
		PID        int       `yaml:"pid"`
		Host       string    `yaml:"host"`
		Token      string    `yaml:"token"`
		AcquiredAt time.Time `yaml:"acquiredAt"`
	}
)

// NewLease creates a lease on the given lock path. timeout bounds both the
// acquisition retry loop and the age beyond which an existing lock is
// considered potentially stale; interval is the delay between attempts.
func NewLease(path string, timeout, interval time.Duration, log *slog.Logger) *Lease {
	return &Lease{
		path:     path,
		timeout:  timeout,
		interval: interval,
		log:      log,
	}
}

// Acquire claims the lease, retrying until the timeout elapses. Each
// attempt first reaps a provably stale lock file, then tries to claim the
// path atomically with a fresh token.
func (l *Lease) Acquire() error {
	l.token = uuid.NewString()
	deadline := time.Now().Add(l.timeout)

	for {
		l.reapStale()

		claimed, err := l.claim()
		if err != nil {
			return err
		}
		if claimed {
			return nil
		}

		if time.Now().After(deadline) {
			return errors.Errorf(
				"timed out acquiring ledger lock %s after %s; if no other schemer process is running, remove the lock file manually",
				l.path, l.timeout,
			)
		}

		time.Sleep(l.interval)
	}
}

// Release deletes the lock file, but only after confirming the on-disk
// token still matches ours. A mismatch means another owner took over a lock
// we thought was ours; deleting it blindly would break their exclusion, so
// we log and walk away instead.
func (l *Lease) Release() error {
	record, err := l.readRecord()
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			l.log.Warn("ledger lock file already gone at release", "path", l.path)
			return nil
		}
		return err
	}

	if record.Token != l.token {
		l.log.Warn("ledger lock is no longer ours; leaving it in place",
			"path", l.path, "owner_pid", record.PID, "owner_host", record.Host)
		return nil
	}

	return errors.Wrapf(os.Remove(l.path), "failed to remove ledger lock: %s", l.path)
}

// claim writes a fresh lock record to a uniquely named temp file and links
// it onto the canonical lock path. Unlike rename(2), which silently
// replaces an existing target, link(2) fails when the target exists, so
// the link call is the single serialization point: exactly one concurrent
// claimer can succeed. After a successful link the record is re-read and
// the token compared, a check against the narrow window where another
// process reaped the path between our link and now.
func (l *Lease) claim() (bool, error) {
	record := lockRecord{
		PID:        os.Getpid(),
		Host:       hostname(),
		Token:      l.token,
		AcquiredAt: time.Now().UTC(),
	}

	raw, err := yaml.Marshal(record)
	if err != nil {
		return false, errors.Wrap(err, "failed to marshal lock record")
	}

	tmp := fmt.Sprintf("%s.%d.%s.tmp", l.path, record.PID, l.token[:8])
	if err := os.WriteFile(tmp, raw, consts.ModeFile); err != nil {
		return false, errors.Wrapf(err, "failed to write lock temp file: %s", tmp)
	}

	if err := os.Link(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return false, nil
	}
	_ = os.Remove(tmp)

	onDisk, err := l.readRecord()
	if err != nil || onDisk.Token != l.token {
		return false, nil
	}

	return true, nil
}

// reapStale removes the lock file only when it is older than the lease
// timeout AND its recorded owner can be confirmed dead. Confirmation is
// possible only on the same host, by signal-probing the recorded pid;
// "no such process" is the sole outcome that counts as dead. Locks owned
// by other hosts are never cleaned up.
func (l *Lease) reapStale() {
	info, err := os.Stat(l.path)
	if err != nil || time.Since(info.ModTime()) < l.timeout {
		return
	}

	record, err := l.readRecord()
	if err != nil {
		return
	}

	if record.Host != hostname() {
		return
	}

	if !processDead(record.PID) {
		return
	}

	if err := os.Remove(l.path); err == nil {
		l.log.Warn("removed stale ledger lock from dead process",
			"path", l.path, "pid", record.PID, "age", time.Since(info.ModTime()).Round(time.Second))
	}
}

// processDead probes pid with signal 0. Only ESRCH ("no such process")
// counts as dead; permission errors and every other outcome mean the
// process may be alive.
func processDead(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = proc.Signal(syscall.Signal(0))
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}

func (l *Lease) readRecord() (*lockRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read lock file: %s", l.path)
	}

	var record lockRecord
	if err := yaml.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrapf(err, "failed to parse lock file: %s", l.path)
	}
	return &record, nil
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
