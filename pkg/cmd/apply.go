package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
)

// applyCmd creates the apply command, which brings the database up to date
// with the migrations directory.
//
// Every migration file without a ledger entry is compiled to dialect SQL
// and executed as one transaction, in filename order. The set applied in a
// single run is recorded as one batch, the unit a later rollback reverses.
//
// Example usage:
//
//	schemer apply
//	schemer -c deploy/schemer.yaml apply
func applyCmd() *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Apply pending migrations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			r, err := e.runner()
			if err != nil {
				return err
			}

			return r.Apply(ctx)
		},
	}
}
