package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/schemerhq/schemer/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc := `
dialect: postgres
dir: db/migrations
ledger: db/ledger.yaml
database:
  url: postgres://localhost/app?sslmode=disable
limits:
  enabled: true
  maxFile: 1048576
  maxTotal: 16777216
logging:
  console: false
  level: debug
  audit: schemer.audit.log
`

	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Dialect)
	require.Equal(t, "db/migrations", cfg.Dir)
	require.Equal(t, "db/ledger.yaml", cfg.Ledger)
	require.Equal(t, "postgres://localhost/app?sslmode=disable", cfg.Database.URL)
	require.False(t, *cfg.Logging.Console)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "schemer.audit.log", cfg.Logging.Audit)

	limits := cfg.MigratorLimits()
	require.True(t, limits.Enabled)
	require.Equal(t, int64(1048576), limits.MaxFileBytes)
	require.Equal(t, int64(16777216), limits.MaxTotalBytes)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader("dialect: sqlite\ndatabase:\n  url: app.db\n"))
	require.NoError(t, err)
	require.Equal(t, "migrations", cfg.Dir)
	require.Equal(t, "schemer.ledger.yaml", cfg.Ledger)
	require.Equal(t, "info", cfg.Logging.Level)
	require.True(t, *cfg.Logging.Console)
	require.False(t, cfg.MigratorLimits().Enabled)
}

func TestLoadRequiresDialect(t *testing.T) {
	_, err := Load(strings.NewReader("dir: migrations\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "dialect")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(strings.NewReader("dialect: [unterminated"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: mysql\ndatabase:\n  url: root@tcp(localhost)/app\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Dialect)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
