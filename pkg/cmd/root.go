// Package cmd assembles the schemer CLI. Each command constructor returns a
// self-contained *cli.Command; Run wires them under the root command and
// executes it.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/schemerhq/schemer/pkg/consts"
)

// Version carries build metadata stamped in by the release pipeline.
type Version struct {
	Version   string
	Commit    string
	Timestamp string
}

// Run executes the schemer CLI with the given arguments and returns the
// process exit code.
func Run(ctx context.Context, version *Version, args []string) int {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", version.Timestamp)
	}

	app := &cli.Command{
		Name:  "schemer",
		Usage: "Declarative database schema migrations",
		Description: `schemer compiles declarative schema definitions into dialect-specific SQL
and applies them as tracked, reversible migrations. Applied migrations are
recorded in a hash-verified ledger so that edits to history are detected
and rollback always reverses exactly the last applied batch.`,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the project configuration file",
				Sources: cli.EnvVars("SCHEMER_CONFIG"),
				Value:   consts.DefaultConfigFile,
			},
		},
		Commands: []*cli.Command{
			initCmd(),
			newCmd(),
			applyCmd(),
			rollbackCmd(),
			statusCmd(),
			fmtCmd(),
			pullCmd(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		slog.Error("Error running command", "err", err)
		return 1
	}
	return 0
}
