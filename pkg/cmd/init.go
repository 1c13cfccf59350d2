package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/schemerhq/schemer/pkg/consts"
)

const configTemplate = `# schemer project configuration
dialect: postgres
dir: migrations
ledger: schemer.ledger.yaml

database:
  url: postgres://localhost/app?sslmode=disable

# limits:
#   enabled: true
#   maxFile: 1048576
#   maxTotal: 16777216

# logging:
#   level: info
#   audit: schemer.audit.log
`

// initCmd creates the init command, which scaffolds a new project: the
// configuration file and an empty migrations directory. Refuses to touch a
// directory that already has a config.
func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize a new schemer project",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "."
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().First()
			}

			cfgPath := filepath.Join(dir, consts.DefaultConfigFile)
			if _, err := os.Stat(cfgPath); err == nil {
				return errors.Errorf("%s already exists; refusing to overwrite", cfgPath)
			}

			if err := os.MkdirAll(filepath.Join(dir, consts.DefaultMigrationsDir), consts.ModeDir); err != nil {
				return errors.Wrap(err, "failed to create migrations directory")
			}

			if err := os.WriteFile(cfgPath, []byte(configTemplate), consts.ModeFile); err != nil {
				return errors.Wrapf(err, "failed to write %s", cfgPath)
			}

			fmt.Fprintf(cmd.Writer, "Initialized schemer project in %s\n", dir)
			fmt.Fprintln(cmd.Writer, "Edit", consts.DefaultConfigFile, "and create your first migration with: schemer new <name>")
			return nil
		},
	}
}
