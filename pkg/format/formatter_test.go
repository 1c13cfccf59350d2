package format_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	. "github.com/schemerhq/schemer/pkg/format"
	"github.com/schemerhq/schemer/pkg/parser"
)

func TestGoldenFiles(t *testing.T) {
	pattern := filepath.Join("testdata", "*.in.schema")
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.NotEmpty(t, matches, "No *.in.schema files found in testdata directory")

	for _, inputFile := range matches {
		basename := filepath.Base(inputFile)
		outputName := strings.TrimSuffix(basename, ".in.schema") + ".schema"

		t.Run(outputName, func(t *testing.T) {
			source, err := os.ReadFile(inputFile)
			require.NoError(t, err)

			schema, err := parser.ParseString(string(source))
			require.NoError(t, err)

			golden.Assert(t, New(Defaults).Format(schema), outputName)
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	sources := []string{
		`model User { id Serial @pk  email VarChar(255) @notnull @unique }`,
		`model Product {
			id    Serial @pk
			price Decimal(10, 2) @default(0)
			state Enum('draft', 'active') @default('draft')
		}
		> CREATE INDEX products_state_idx ON products (state);`,
		`model Log { note Text @default('line\none\ttab\\slash\'quote') }`,
	}

	f := New(Defaults)
	for _, source := range sources {
		first, err := parser.ParseString(source)
		require.NoError(t, err)

		rendered := f.Format(first)
		second, err := parser.ParseString(rendered)
		require.NoError(t, err)

		// Rendering the reparsed tree must be a fixed point: same models,
		// columns, decorators, and argument values in the same order.
		require.Equal(t, rendered, f.Format(second))
		require.Len(t, second.Models(), len(first.Models()))
		for i, m := range first.Models() {
			require.Equal(t, m.Name, second.Models()[i].Name)
			require.Len(t, second.Models()[i].Columns, len(m.Columns))
			for j, c := range m.Columns {
				other := second.Models()[i].Columns[j]
				require.Equal(t, c.Name, other.Name)
				require.Equal(t, c.Type.Name, other.Type.Name)
				require.Len(t, other.Decorators, len(c.Decorators))
				for k, d := range c.Decorators {
					require.Equal(t, d.Name(), other.Decorators[k].Name())
					require.Len(t, other.Decorators[k].Args, len(d.Args))
					for l, a := range d.Args {
						require.Equal(t, a.Value(), other.Decorators[k].Args[l].Value())
					}
				}
			}
		}
	}
}

func TestFormatWithoutAlignment(t *testing.T) {
	schema, err := parser.ParseString(`model User { id Serial @pk  email VarChar(255) @notnull }`)
	require.NoError(t, err)

	out := New(Options{IndentSize: 2}).Format(schema)
	require.Equal(t, "model User {\n  id Serial @pk\n  email VarChar(255) @notnull\n}\n", out)
}
