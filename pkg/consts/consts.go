package consts

import (
	"os"
	"time"
)

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// SchemaExtension is the file extension for migration source files
	SchemaExtension = ".schema"

	// LedgerLockSuffix is appended to the ledger path to form the lock file path
	LedgerLockSuffix = ".lock"

	// DefaultConfigFile is the project configuration filename
	DefaultConfigFile = "schemer.yaml"

	// DefaultMigrationsDir is where migration files live unless configured
	DefaultMigrationsDir = "migrations"

	// DefaultLedgerFile is the ledger path unless configured
	DefaultLedgerFile = "schemer.ledger.yaml"

	// DefaultLockTimeout bounds how long lock acquisition will retry before
	// giving up. A lock file older than this is considered potentially stale.
	DefaultLockTimeout = 30 * time.Second

	// DefaultLockInterval is the delay between lock acquisition attempts
	DefaultLockInterval = 100 * time.Millisecond

	// DefaultConnectAttempts bounds adapter connection retries
	DefaultConnectAttempts = 5

	// DefaultConnectBackoff is the initial delay between connection attempts.
	// The delay doubles after each transient failure.
	DefaultConnectBackoff = 200 * time.Millisecond
)
