package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// statusCmd creates the status command, a read-only report of where the
// database stands: applied migrations, pending migrations, and the current
// batch number.
func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show applied and pending migrations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			r, err := e.runner()
			if err != nil {
				return err
			}

			status, err := r.Status(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Writer, "Current batch: %d\n", status.CurrentBatch)

			fmt.Fprintf(cmd.Writer, "\nApplied (%d):\n", len(status.Applied))
			for _, name := range status.Applied {
				fmt.Fprintf(cmd.Writer, "  %s\n", name)
			}

			fmt.Fprintf(cmd.Writer, "\nPending (%d):\n", len(status.Pending))
			for _, name := range status.Pending {
				fmt.Fprintf(cmd.Writer, "  %s\n", name)
			}

			return nil
		},
	}
}
