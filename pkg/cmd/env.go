package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/schemerhq/schemer/pkg/adapter"
	"github.com/schemerhq/schemer/pkg/config"
	"github.com/schemerhq/schemer/pkg/generator"
	"github.com/schemerhq/schemer/pkg/ledger"
	"github.com/schemerhq/schemer/pkg/logger"
	"github.com/schemerhq/schemer/pkg/runner"
)

// env is everything a data command needs, built once from the project
// config. Paths in the config are resolved relative to the config file.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func loadEnv(cmd *cli.Command) (*env, error) {
	path := cmd.String("config")

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(root, cfg.Dir)
	}
	if !filepath.IsAbs(cfg.Ledger) {
		cfg.Ledger = filepath.Join(root, cfg.Ledger)
	}
	audit := cfg.Logging.Audit
	if audit != "" && !filepath.IsAbs(audit) {
		audit = filepath.Join(root, audit)
	}

	log, err := logger.New(logger.Options{
		Console:   *cfg.Logging.Console,
		Level:     cfg.Logging.Level,
		AuditPath: audit,
	})
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log}, nil
}

func (e *env) adapter() (adapter.Adapter, error) {
	return adapter.New(e.cfg.Dialect, e.cfg.Database.URL)
}

func (e *env) runner() (*runner.Runner, error) {
	db, err := e.adapter()
	if err != nil {
		return nil, err
	}

	gen, err := generator.New(e.cfg.Dialect)
	if err != nil {
		return nil, err
	}

	return runner.New(runner.Config{
		Adapter:    db,
		Generator:  gen,
		Ledger:     ledger.New(e.cfg.Ledger, e.log),
		Migrations: os.DirFS(e.cfg.Dir),
		Limits:     e.cfg.MigratorLimits(),
		Logger:     e.log,
	}), nil
}
