package introspect

import (
	"context"
	"strconv"
	"strings"

	"github.com/schemerhq/schemer/pkg/adapter"
)

const mysqlColumnsQuery = `
SELECT table_name, column_name, data_type, column_type, is_nullable,
       column_key, extra,
       COALESCE(character_maximum_length, 0),
       COALESCE(numeric_precision, 0),
       COALESCE(numeric_scale, 0)
FROM information_schema.columns
WHERE table_schema = DATABASE()
ORDER BY table_name, ordinal_position`

func pullMySQL(ctx context.Context, db adapter.Adapter) ([]table, error) {
	rows, err := db.Query(ctx, mysqlColumnsQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byName := map[string]*table{}
	var order []string

	for rows.Next() {
		var (
			tbl, name, dataType, columnType, nullable, key, extra string
			length, precision, scale                              int64
		)
		if err := rows.Scan(&tbl, &name, &dataType, &columnType, &nullable, &key, &extra, &length, &precision, &scale); err != nil {
			return nil, err
		}

		c := column{
			name:       name,
			primaryKey: key == "PRI",
			notNull:    nullable == "NO",
		}
		raiseMySQLType(&c, dataType, columnType, extra, length, precision, scale)

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

func raiseMySQLType(c *column, dataType, columnType, extra string, length, precision, scale int64) {
	autoInc := strings.Contains(extra, "auto_increment")

	switch dataType {
	case "int":
		c.typeName = "Int"
		if autoInc && c.primaryKey {
			c.typeName = "Serial"
		}
	case "bigint":
		c.typeName = "BigInt"
		if autoInc && c.primaryKey {
			c.typeName = "BigSerial"
		}
	case "smallint":
		c.typeName = "SmallInt"
	case "float":
		c.typeName = "Float"
	case "double":
		c.typeName = "Double"
	case "decimal":
		c.typeName = "Decimal"
		c.typeArgs = []string{strconv.FormatInt(precision, 10), strconv.FormatInt(scale, 10)}
	case "char":
		c.typeName = "Char"
		c.typeArgs = []string{strconv.FormatInt(length, 10)}
	case "varchar":
		c.typeName = "VarChar"
		c.typeArgs = []string{strconv.FormatInt(length, 10)}
	case "text", "mediumtext", "longtext":
		c.typeName = "Text"
	case "tinyint":
		// tinyint(1) is MySQL's boolean spelling
		if columnType == "tinyint(1)" {
			c.typeName = "Boolean"
		} else {
			c.typeName = "SmallInt"
		}
	case "date":
		c.typeName = "Date"
	case "time":
		c.typeName = "Time"
	case "datetime":
		c.typeName = "DateTime"
	case "timestamp":
		c.typeName = "Timestamp"
	case "json":
		c.typeName = "Json"
	case "enum":
		c.typeName = "Enum"
		c.typeArgs = enumArgs(columnType)
	default:
		c.unknown = dataType
	}
}

// enumArgs extracts the quoted members from a column_type like
// "enum('admin','member')".
func enumArgs(columnType string) []string {
	open := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if open < 0 || end <= open {
		return nil
	}

	members := strings.Split(columnType[open+1:end], ",")
	for i, m := range members {
		members[i] = strings.TrimSpace(m)
	}
	return members
}
