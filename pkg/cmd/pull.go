package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/schemerhq/schemer/pkg/consts"
	"github.com/schemerhq/schemer/pkg/introspect"
)

// pullCmd creates the pull command, which introspects the configured
// database and emits schema source describing its tables. One-directional:
// the output is a starting point for adopting an existing database, not a
// diff against the migrations directory.
func pullCmd() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Introspect the database and emit schema source",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write output to this file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			db, err := e.adapter()
			if err != nil {
				return err
			}

			if err := db.Connect(ctx); err != nil {
				return errors.Wrap(err, "failed to connect")
			}
			defer func() {
				if err := db.Disconnect(); err != nil {
					e.log.Warn("failed to disconnect", "error", err)
				}
			}()

			source, err := introspect.Pull(ctx, db)
			if err != nil {
				return err
			}

			if out := cmd.String("out"); out != "" {
				return errors.Wrapf(os.WriteFile(out, []byte(source), consts.ModeFile), "failed to write: %s", out)
			}

			_, err = io.WriteString(cmd.Writer, source)
			return err
		},
	}
}
