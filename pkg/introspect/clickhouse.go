package introspect

import (
	"context"
	"strings"

	"github.com/schemerhq/schemer/pkg/adapter"
)

const clickhouseColumnsQuery = `
SELECT table, name, type, is_in_primary_key
FROM system.columns
WHERE database = currentDatabase()
ORDER BY table, position`

func pullClickHouse(ctx context.Context, db adapter.Adapter) ([]table, error) {
	rows, err := db.Query(ctx, clickhouseColumnsQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	byName := map[string]*table{}
	var order []string

	for rows.Next() {
		var (
			tbl, name, sqlType string
			inPK               uint8
		)
		if err := rows.Scan(&tbl, &name, &sqlType, &inPK); err != nil {
			return nil, err
		}

		c := column{
			name:       name,
			primaryKey: inPK == 1,
			// every non-Nullable ClickHouse column rejects NULL
			notNull: !strings.HasPrefix(sqlType, "Nullable("),
		}
		raiseClickHouseType(&c, strings.TrimSuffix(strings.TrimPrefix(sqlType, "Nullable("), ")"))

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

func raiseClickHouseType(c *column, sqlType string) {
	switch {
	case sqlType == "UInt64":
		c.typeName = "BigInt"
		if c.primaryKey {
			c.typeName = "BigSerial"
		}
	case sqlType == "Int16", sqlType == "Int8", sqlType == "UInt8", sqlType == "UInt16":
		c.typeName = "SmallInt"
	case sqlType == "Int32", sqlType == "UInt32":
		c.typeName = "Int"
	case sqlType == "Int64":
		c.typeName = "BigInt"
	case sqlType == "Float32":
		c.typeName = "Float"
	case sqlType == "Float64":
		c.typeName = "Double"
	case strings.HasPrefix(sqlType, "Decimal("):
		c.typeName = "Decimal"
		c.typeArgs = decimalArgs(sqlType)
	case strings.HasPrefix(sqlType, "FixedString("):
		c.typeName = "Char"
		c.typeArgs = []string{strings.TrimSuffix(strings.TrimPrefix(sqlType, "FixedString("), ")")}
	case sqlType == "String":
		c.typeName = "Text"
	case sqlType == "Bool":
		c.typeName = "Boolean"
	case sqlType == "Date", sqlType == "Date32":
		c.typeName = "Date"
	case sqlType == "DateTime", strings.HasPrefix(sqlType, "DateTime64("), strings.HasPrefix(sqlType, "DateTime("):
		c.typeName = "DateTime"
	case sqlType == "UUID":
		c.typeName = "Uuid"
	case strings.HasPrefix(sqlType, "Enum8("), strings.HasPrefix(sqlType, "Enum16("):
		c.typeName = "Enum"
		c.typeArgs = clickhouseEnumArgs(sqlType)
	default:
		c.unknown = sqlType
	}
}

func decimalArgs(sqlType string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(sqlType, "Decimal("), ")")
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return nil
	}
	return []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
}

// clickhouseEnumArgs strips the numeric assignments from a type like
// "Enum8('admin' = 1, 'member' = 2)", keeping only the quoted members.
func clickhouseEnumArgs(sqlType string) []string {
	open := strings.Index(sqlType, "(")
	end := strings.LastIndex(sqlType, ")")
	if open < 0 || end <= open {
		return nil
	}

	var members []string
	for _, pair := range strings.Split(sqlType[open+1:end], ",") {
		member, _, _ := strings.Cut(pair, "=")
		members = append(members, strings.TrimSpace(member))
	}
	return members
}
