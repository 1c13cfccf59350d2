package introspect

import (
	"context"
	"strconv"
	"strings"

	"github.com/schemerhq/schemer/pkg/adapter"
)

const postgresColumnsQuery = `
SELECT c.table_name, c.column_name, c.data_type, c.is_nullable,
       COALESCE(c.character_maximum_length, 0),
       COALESCE(c.numeric_precision, 0),
       COALESCE(c.numeric_scale, 0),
       COALESCE(c.column_default, '')
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema = 'public' AND t.table_type = 'BASE TABLE'
ORDER BY c.table_name, c.ordinal_position`

const postgresPrimaryKeysQuery = `
SELECT tc.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
WHERE tc.table_schema = 'public' AND tc.constraint_type = 'PRIMARY KEY'`

func pullPostgres(ctx context.Context, db adapter.Adapter) ([]table, error) {
	pks, err := primaryKeySet(ctx, db, postgresPrimaryKeysQuery)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, postgresColumnsQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byName := map[string]*table{}
	var order []string

	for rows.Next() {
		var (
			tbl, name, dataType, nullable, dflt string
			length, precision, scale            int64
		)
		if err := rows.Scan(&tbl, &name, &dataType, &nullable, &length, &precision, &scale, &dflt); err != nil {
			return nil, err
		}

		c := column{
			name:       name,
			primaryKey: pks[tbl+"."+name],
			notNull:    nullable == "NO",
		}
		raisePostgresType(&c, dataType, dflt, length, precision, scale)

		t := byName[tbl]
		if t == nil {
			t = &table{name: tbl}
			byName[tbl] = t
			order = append(order, tbl)
		}
		t.columns = append(t.columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return collect(byName, order), nil
}

func raisePostgresType(c *column, dataType, dflt string, length, precision, scale int64) {
	serial := strings.HasPrefix(dflt, "nextval(")

	switch dataType {
	case "integer":
		c.typeName = "Int"
		if serial && c.primaryKey {
			c.typeName = "Serial"
		}
	case "bigint":
		c.typeName = "BigInt"
		if serial && c.primaryKey {
			c.typeName = "BigSerial"
		}
	case "smallint":
		c.typeName = "SmallInt"
	case "real":
		c.typeName = "Float"
	case "double precision":
		c.typeName = "Double"
	case "numeric":
		c.typeName = "Decimal"
		c.typeArgs = []string{strconv.FormatInt(precision, 10), strconv.FormatInt(scale, 10)}
	case "character":
		c.typeName = "Char"
		c.typeArgs = []string{strconv.FormatInt(length, 10)}
	case "character varying":
		c.typeName = "VarChar"
		c.typeArgs = []string{strconv.FormatInt(length, 10)}
	case "text":
		c.typeName = "Text"
	case "boolean":
		c.typeName = "Boolean"
	case "date":
		c.typeName = "Date"
	case "time without time zone", "time with time zone":
		c.typeName = "Time"
	case "timestamp without time zone", "timestamp with time zone":
		c.typeName = "Timestamp"
	case "uuid":
		c.typeName = "Uuid"
	case "json":
		c.typeName = "Json"
	case "jsonb":
		c.typeName = "JsonB"
	default:
		c.unknown = dataType
	}
}

// primaryKeySet runs a (table, column) query and returns a "table.column"
// membership set. Shared by the dialects whose catalogs expose primary keys
// this way.
func primaryKeySet(ctx context.Context, db adapter.Adapter, query string) (map[string]bool, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	pks := map[string]bool{}
	for rows.Next() {
		var tbl, col string
		if err := rows.Scan(&tbl, &col); err != nil {
			return nil, err
		}
		pks[tbl+"."+col] = true
	}
	return pks, rows.Err()
}

// collect fixes table order to first-seen, which the catalog queries sort
// by table name already.
func collect(byName map[string]*table, order []string) []table {
	tables := make([]table, 0, len(order))
	for _, name := range order {
		tables = append(tables, *byName[name])
	}
	return tables
}
