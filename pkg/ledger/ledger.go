package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/schemerhq/schemer/pkg/consts"
)

type (
	// Entry records one applied migration: the source filename, the SHA-256
	// hex hash of its content at application time, when it was applied, and
	// the batch it belongs to.
	Entry struct {
		Filename  string    `yaml:"filename"`
		Hash      string    `yaml:"hash"`
		AppliedAt time.Time `yaml:"appliedAt"`
		Batch     int       `yaml:"batch"`
	}

	// State is the persisted ledger document. Batch numbers partition the
	// entries and are monotonically non-decreasing; CurrentBatch always
	// equals the maximum batch present, or zero when the ledger is empty.
	State struct {
		Entries      []Entry `yaml:"entries"`
		CurrentBatch int     `yaml:"currentBatch"`
	}

	// File is a migration source handed to RecordBatch.
	File struct {
		Name    string
		Content []byte
	}

	// Ledger is the durable, hash-verified record of which migrations have
	// been applied. Every mutating operation is a single lease-protected
	// read-modify-write of the backing file: either the whole mutation is
	// persisted or none of it is.
	Ledger struct {
		path  string
		lease *Lease
		log   *slog.Logger
		state State
	}
)

// recoveryHint is appended to corrupted-ledger errors so operators know the
// two safe ways out.
const recoveryHint = "restore the ledger from backup, or delete it to start tracking from scratch"

// New creates a Ledger backed by the file at path, with its lock file at
// path + ".lock". The logger may not be nil.
func New(path string, log *slog.Logger) *Ledger {
	return &Ledger{
		path:  path,
		lease: NewLease(path+consts.LedgerLockSuffix, consts.DefaultLockTimeout, consts.DefaultLockInterval, log),
		log:   log,
	}
}

// HashContent returns the SHA-256 hex digest of content, the hash format
// recorded in ledger entries.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Load reads the persisted state under the exclusive lease. A missing file
// is an empty ledger; a present-but-unparseable one is a fatal integrity
// error with recovery guidance, never silently reset.
func (l *Ledger) Load() error {
	if err := l.lease.Acquire(); err != nil {
		return err
	}
	defer l.release()

	state, err := l.read()
	if err != nil {
		return err
	}

	l.state = *state
	return nil
}

// Entries returns a copy of the recorded entries in application order.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, len(l.state.Entries))
	copy(entries, l.state.Entries)
	return entries
}

// CurrentBatch returns the highest batch number present, or zero.
func (l *Ledger) CurrentBatch() int { return l.state.CurrentBatch }

// IsApplied reports whether filename has a ledger entry.
func (l *Ledger) IsApplied(filename string) bool {
	for _, e := range l.state.Entries {
		if e.Filename == filename {
			return true
		}
	}
	return false
}

// AppliedFilenames returns the recorded filenames in application order.
func (l *Ledger) AppliedFilenames() []string {
	names := make([]string, len(l.state.Entries))
	for i, e := range l.state.Entries {
		names[i] = e.Filename
	}
	return names
}

// Pending returns the filenames in available that have no ledger entry, in
// filename-sort order. Filenames carry a sortable timestamp prefix, so this
// order is chronological.
func (l *Ledger) Pending(available []string) []string {
	pending := make([]string, 0, len(available))
	for _, name := range available {
		if !l.IsApplied(name) {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending
}

// LastBatch returns the entries of the current batch in recorded order.
func (l *Ledger) LastBatch() []Entry {
	entries := make([]Entry, 0)
	for _, e := range l.state.Entries {
		if e.Batch == l.state.CurrentBatch {
			entries = append(entries, e)
		}
	}
	return entries
}

// ValidateIntegrity recomputes the hash of every recorded file and compares
// it to the recorded value. contents maps filename to current file content.
// A recorded file that is missing from contents, or whose hash differs, is
// a fatal IntegrityError naming the file and both hashes.
func (l *Ledger) ValidateIntegrity(contents map[string][]byte) error {
	for _, e := range l.state.Entries {
		content, ok := contents[e.Filename]
		if !ok {
			return &IntegrityError{
				Filename: e.Filename,
				Reason:   "previously applied migration file is missing",
			}
		}

		if got := HashContent(content); got != e.Hash {
			return &IntegrityError{
				Filename: e.Filename,
				Reason:   "previously applied migration file has been modified",
				WantHash: e.Hash,
				GotHash:  got,
			}
		}
	}
	return nil
}

// RecordBatch appends one entry per file, all sharing batch number
// CurrentBatch+1, and persists the result as a single lease-protected
// read-modify-write. Either every file in the call is recorded or none is.
func (l *Ledger) RecordBatch(files []File) error {
	if len(files) == 0 {
		return errors.New("cannot record an empty batch")
	}

	return l.mutate(func(state *State) error {
		batch := state.CurrentBatch + 1
		now := time.Now().UTC()

		for _, f := range files {
			state.Entries = append(state.Entries, Entry{
				Filename:  f.Name,
				Hash:      HashContent(f.Content),
				AppliedAt: now,
				Batch:     batch,
			})
		}
		state.CurrentBatch = batch
		return nil
	})
}

// RollbackLastBatch removes every entry of the current batch and recomputes
// CurrentBatch as the maximum remaining batch number. The empty case is
// handled explicitly: no entries left means CurrentBatch is zero.
func (l *Ledger) RollbackLastBatch() error {
	return l.mutate(func(state *State) error {
		kept := state.Entries[:0]
		for _, e := range state.Entries {
			if e.Batch != state.CurrentBatch {
				kept = append(kept, e)
			}
		}
		state.Entries = kept

		state.CurrentBatch = 0
		for _, e := range state.Entries {
			if e.Batch > state.CurrentBatch {
				state.CurrentBatch = e.Batch
			}
		}
		return nil
	})
}

// ProbeWrite performs a full lease-protected write/read/parse cycle against
// the ledger file without changing its logical content. It exists to fail
// fast, before any migration SQL executes, when the ledger cannot be
// durably updated.
func (l *Ledger) ProbeWrite() error {
	if err := l.lease.Acquire(); err != nil {
		return err
	}
	defer l.release()

	state, err := l.read()
	if err != nil {
		return errors.Wrap(err, "ledger write-capability probe")
	}

	if err := l.write(state); err != nil {
		return errors.Wrap(err, "ledger write-capability probe")
	}

	reread, err := l.read()
	if err != nil {
		return errors.Wrap(err, "ledger write-capability probe: re-read")
	}

	if len(reread.Entries) != len(state.Entries) || reread.CurrentBatch != state.CurrentBatch {
		return errors.Errorf(
			"ledger write-capability probe: re-read state differs (%d entries batch %d, expected %d entries batch %d)",
			len(reread.Entries), reread.CurrentBatch, len(state.Entries), state.CurrentBatch,
		)
	}

	return nil
}

// mutate runs fn against a freshly loaded state and persists the result,
// all under the exclusive lease. The in-memory view is updated only after
// the write succeeds.
func (l *Ledger) mutate(fn func(*State) error) error {
	if err := l.lease.Acquire(); err != nil {
		return err
	}
	defer l.release()

	state, err := l.read()
	if err != nil {
		return err
	}

	if err := fn(state); err != nil {
		return err
	}

	if err := l.write(state); err != nil {
		return err
	}

	l.state = *state
	return nil
}

// read loads and validates the persisted state. Absence is an empty ledger.
func (l *Ledger) read() (*State, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read ledger: %s", l.path)
	}

	var state State
	if err := yaml.Unmarshal(raw, &state); err != nil {
		return nil, &IntegrityError{
			Filename: l.path,
			Reason:   "ledger file is corrupted or malformed; " + recoveryHint,
		}
	}

	if err := validateState(&state); err != nil {
		return nil, &IntegrityError{
			Filename: l.path,
			Reason:   err.Error() + "; " + recoveryHint,
		}
	}

	return &state, nil
}

// validateState enforces the structural invariants of a loaded ledger.
func validateState(state *State) error {
	if state.CurrentBatch < 0 {
		return errors.Errorf("current batch %d is negative", state.CurrentBatch)
	}

	maxBatch, prev := 0, 0
	for _, e := range state.Entries {
		if e.Batch < prev {
			return errors.Errorf("batch numbers decrease at entry %q", e.Filename)
		}
		prev = e.Batch
		if e.Batch > maxBatch {
			maxBatch = e.Batch
		}
	}

	if state.CurrentBatch != maxBatch {
		return errors.Errorf(
			"current batch %d does not match highest recorded batch %d", state.CurrentBatch, maxBatch,
		)
	}

	return nil
}

// write persists state atomically: marshal to a temp file in the same
// directory, then rename onto the ledger path.
func (l *Ledger) write(state *State) error {
	raw, err := yaml.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal ledger state")
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp ledger file in %s", dir)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write temp ledger file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp ledger file")
	}

	if err := os.Chmod(tmp.Name(), consts.ModeFile); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to set ledger file mode")
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to replace ledger: %s", l.path)
	}

	return nil
}

func (l *Ledger) release() {
	if err := l.lease.Release(); err != nil {
		l.log.Warn("failed to release ledger lock", "path", l.path, "error", err)
	}
}
