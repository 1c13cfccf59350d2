package introspect

import (
	"context"
	"strings"

	"github.com/schemerhq/schemer/pkg/adapter"
	"github.com/schemerhq/schemer/pkg/utils"
)

const sqliteTablesQuery = `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

func pullSQLite(ctx context.Context, db adapter.Adapter) ([]table, error) {
	rows, err := db.Query(ctx, sqliteTablesQuery)
	if err != nil {
		return nil, err
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	tables := make([]table, 0, len(names))
	for _, name := range names {
		t, err := pullSQLiteTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func pullSQLiteTable(ctx context.Context, db adapter.Adapter, name string) (table, error) {
	rows, err := db.Query(ctx, "PRAGMA table_info("+utils.QuoteIdentifier(name, '"')+")")
	if err != nil {
		return table{}, err
	}
	defer func() { _ = rows.Close() }()

	t := table{name: name}
	for rows.Next() {
		var (
			cid, notNull, pk int64
			colName, sqlType string
			dflt             any
		)
		if err := rows.Scan(&cid, &colName, &sqlType, &notNull, &dflt, &pk); err != nil {
			return table{}, err
		}

		c := column{
			name:       colName,
			primaryKey: pk > 0,
			notNull:    notNull == 1,
		}
		raiseSQLiteType(&c, sqlType)
		t.columns = append(t.columns, c)
	}
	return t, rows.Err()
}

// raiseSQLiteType follows SQLite's affinity rules rather than exact names:
// declared types are free-form, so classification is by substring the same
// way the engine itself does it.
func raiseSQLiteType(c *column, sqlType string) {
	upper := strings.ToUpper(sqlType)

	switch {
	case strings.Contains(upper, "INT"):
		c.typeName = "Int"
		if c.primaryKey {
			c.typeName = "Serial"
		}
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		c.typeName = "Text"
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		c.typeName = "Double"
	case strings.HasPrefix(upper, "NUMERIC("):
		c.typeName = "Decimal"
		c.typeArgs = numericArgs(upper)
	case upper == "BOOLEAN":
		c.typeName = "Boolean"
	case upper == "DATE":
		c.typeName = "Date"
	case upper == "DATETIME", upper == "TIMESTAMP":
		c.typeName = "Timestamp"
	default:
		c.unknown = sqlType
	}
}

func numericArgs(upper string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(upper, "NUMERIC("), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return nil
	}
	return []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
}
