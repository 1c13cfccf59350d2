// Package introspect reads an existing database and emits schema source
// describing its tables. The mapping is one-directional and best-effort:
// SQL types are raised back to the nearest schema type, and anything too
// engine-specific to express is annotated as a comment in the output.
package introspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/adapter"
	"github.com/schemerhq/schemer/pkg/parser"
)

type (
	// table is an introspected table in DSL-shaped terms.
	table struct {
		name    string
		columns []column
	}

	column struct {
		name       string
		typeName   string
		typeArgs   []string
		primaryKey bool
		notNull    bool
		unknown    string // original SQL type when no DSL type fits
	}
)

// Pull introspects the connected database and returns canonical schema
// source for its tables. The adapter must already be connected.
func Pull(ctx context.Context, db adapter.Adapter) (string, error) {
	var (
		tables []table
		err    error
	)

	switch db.Name() {
	case "postgres":
		tables, err = pullPostgres(ctx, db)
	case "mysql":
		tables, err = pullMySQL(ctx, db)
	case "sqlite":
		tables, err = pullSQLite(ctx, db)
	case "clickhouse":
		tables, err = pullClickHouse(ctx, db)
	default:
		return "", errors.Errorf("introspection is not supported for dialect %q", db.Name())
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to introspect database")
	}

	if len(tables) == 0 {
		return "", errors.New("no tables found to introspect")
	}

	return render(tables)
}

// render emits DSL source for the tables and parses it back as a validity
// check before returning. The text is built directly rather than through
// the formatter so unsupported-type comments survive in the output.
func render(tables []table) (string, error) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].name < tables[j].name })

	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "model %s {\n", t.name)
		for _, c := range t.columns {
			if c.unknown != "" {
				fmt.Fprintf(&b, "    # %s: unsupported type %s\n", c.name, c.unknown)
				continue
			}

			fmt.Fprintf(&b, "    %s %s", c.name, c.typeName)
			if len(c.typeArgs) > 0 {
				fmt.Fprintf(&b, "(%s)", strings.Join(c.typeArgs, ", "))
			}
			if c.primaryKey {
				b.WriteString(" @pk")
			}
			if c.notNull && !c.primaryKey {
				b.WriteString(" @notnull")
			}
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}

	if _, err := parser.ParseString(b.String()); err != nil {
		return "", errors.Wrap(err, "introspected schema does not parse")
	}

	return b.String(), nil
}
