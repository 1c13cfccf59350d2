package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/schemerhq/schemer/pkg/consts"
	"github.com/schemerhq/schemer/pkg/migrator"
)

const migrationTemplate = `# %s

# Define models here, e.g.
#
# model User {
#     id    Serial       @pk
#     email VarChar(255) @notnull @unique
# }
`

// newCmd creates the new command, which writes an empty migration file
// named <utc timestamp>_<sanitized description>.schema into the configured
// migrations directory. The timestamp prefix is what makes filename order
// chronological.
func newCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a new migration file",
		ArgsUsage: "<description>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("a migration description is required")
			}

			description := strings.Join(cmd.Args().Slice(), " ")
			name := migrator.SanitizeName(description)
			if name == "" {
				return errors.Errorf("description %q contains no usable characters", description)
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			filename := time.Now().UTC().Format("20060102150405") + "_" + name + consts.SchemaExtension
			path := filepath.Join(e.cfg.Dir, filename)

			content := fmt.Sprintf(migrationTemplate, description)
			if err := os.WriteFile(path, []byte(content), consts.ModeFile); err != nil {
				return errors.Wrapf(err, "failed to write %s", path)
			}

			fmt.Fprintln(cmd.Writer, "Created", path)
			return nil
		},
	}
}
