package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/schemerhq/schemer/pkg/consts"
	"github.com/schemerhq/schemer/pkg/format"
	"github.com/schemerhq/schemer/pkg/parser"
)

// fmtCmd creates the fmt command, which rewrites schema files in canonical
// form: one column per line, aligned types and decorators, normalized
// spacing. With a directory argument every .schema file under it is
// formatted; with -w results are written back instead of printed.
func fmtCmd() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Format schema files",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write result to source files instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("exactly one path argument is required")
			}

			return formatPath(cmd.Args().First(), cmd.Bool("write"), cmd.Writer)
		},
	}
}

func formatPath(path string, writeBack bool, out io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to access path: %s", path)
	}

	if !info.IsDir() {
		return formatFile(path, writeBack, out)
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != consts.SchemaExtension {
			return nil
		}
		return formatFile(p, writeBack, out)
	})
}

func formatFile(path string, writeBack bool, out io.Writer) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read: %s", path)
	}

	schema, err := parser.ParseString(string(raw))
	if err != nil {
		return errors.Wrapf(err, "%s", path)
	}

	formatted := format.New(format.Defaults).Format(schema)

	if !writeBack {
		_, err := io.WriteString(out, formatted)
		return err
	}

	if formatted == string(raw) {
		return nil
	}

	fmt.Fprintln(os.Stderr, "formatted", path)
	return errors.Wrapf(os.WriteFile(path, []byte(formatted), consts.ModeFile), "failed to write: %s", path)
}
