// Package config loads the schemer.yaml project file.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/schemerhq/schemer/pkg/consts"
	"github.com/schemerhq/schemer/pkg/migrator"
)

type (
	// Database holds connection settings for the target database.
	Database struct {
		// URL is the DSN handed to the adapter. Its shape depends on the
		// dialect: a postgres:// URL, a go-sql-driver DSN, a file path for
		// sqlite, or host:port for clickhouse.
		URL string `yaml:"url"`
	}

	// Limits bounds migration input size. Disabled unless enabled is set.
	Limits struct {
		Enabled  bool  `yaml:"enabled"`
		MaxFile  int64 `yaml:"maxFile,omitempty"`
		MaxTotal int64 `yaml:"maxTotal,omitempty"`
	}

	// Logging configures the runner's log output.
	Logging struct {
		// Console enables human-readable output on stderr. Defaults to on.
		Console *bool `yaml:"console,omitempty"`

		// Level is the minimum level: debug, info, warn, or error.
		Level string `yaml:"level,omitempty"`

		// Audit, when set, is a file receiving every log record as JSON
		// lines regardless of console settings.
		Audit string `yaml:"audit,omitempty"`
	}

	// Config represents the project configuration for schema management.
	Config struct {
		// Dialect selects the SQL generator and adapter: postgres, mysql,
		// sqlite, or clickhouse.
		Dialect string `yaml:"dialect"`

		// Dir is the directory where migration files are stored.
		Dir string `yaml:"dir,omitempty"`

		// Ledger is the path of the applied-migrations ledger file.
		Ledger string `yaml:"ledger,omitempty"`

		Database Database `yaml:"database"`
		Limits   Limits   `yaml:"limits,omitempty"`
		Logging  Logging  `yaml:"logging,omitempty"`
	}
)

// Load parses a project configuration from r, applying defaults for
// anything not specified. Dialect is the only required field.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal project config")
	}

	if cfg.Dialect == "" {
		return nil, errors.New("config is missing required field: dialect")
	}

	if cfg.Dir == "" {
		cfg.Dir = consts.DefaultMigrationsDir
	}
	if cfg.Ledger == "" {
		cfg.Ledger = consts.DefaultLedgerFile
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Console == nil {
		on := true
		cfg.Logging.Console = &on
	}

	return &cfg, nil
}

// LoadFile loads a project configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// MigratorLimits converts the configured limits to the loader's type.
func (c *Config) MigratorLimits() migrator.Limits {
	return migrator.Limits{
		Enabled:       c.Limits.Enabled,
		MaxFileBytes:  c.Limits.MaxFile,
		MaxTotalBytes: c.Limits.MaxTotal,
	}
}
