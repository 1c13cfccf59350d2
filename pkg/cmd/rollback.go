package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

// rollbackCmd creates the rollback command, which reverses the most recent
// batch: the down SQL for each of its migrations runs in reverse recorded
// order, and the batch is removed from the ledger.
func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:  "rollback",
		Usage: "Roll back the most recent migration batch",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			r, err := e.runner()
			if err != nil {
				return err
			}

			return r.Rollback(ctx)
		},
	}
}
