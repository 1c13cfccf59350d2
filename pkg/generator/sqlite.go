package generator

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/parser"
	"github.com/schemerhq/schemer/pkg/utils"
)

// NewSQLite returns the generator for the SQLite family. Primary keys are
// inline; Serial columns lower to INTEGER PRIMARY KEY AUTOINCREMENT (the
// only auto-incrementing form SQLite has), character types collapse to
// TEXT, enums lower to a check constraint, and booleans are stored as
// integers with 1/0 literals.
func NewSQLite() Generator {
	return &gen{d: dialect{
		name:        "sqlite",
		quoteChar:   '"',
		nowExpr:     "CURRENT_TIMESTAMP",
		boolTrue:    "1",
		boolFalse:   "0",
		inlinePK:    true,
		constraints: true,
		columnType:  sqliteType,
		pkSuffix:    sqlitePKSuffix,
	}}
}

func sqlitePKSuffix(c *parser.Column) string {
	if c.Type.Name == "Serial" || c.Type.Name == "BigSerial" {
		return "AUTOINCREMENT"
	}
	return ""
}

func sqliteType(c *parser.Column) (string, error) {
	switch c.Type.Name {
	case "Serial", "BigSerial", "SmallInt", "Int", "BigInt":
		return noArgs(c, "INTEGER")
	case "Float", "Double":
		return noArgs(c, "REAL")
	case "Decimal":
		precision, scale, err := precisionArgs(c)
		if err != nil {
			return "", err
		}
		return "NUMERIC(" + precision + ", " + scale + ")", nil
	case "Char", "VarChar":
		// length is validated but not emitted; SQLite has no length-bounded
		// character type
		if _, err := lengthArg(c); err != nil {
			return "", err
		}
		return "TEXT", nil
	case "Text":
		return noArgs(c, "TEXT")
	case "Boolean":
		return noArgs(c, "INTEGER")
	case "Date":
		return noArgs(c, "DATE")
	case "Time":
		return noArgs(c, "TIME")
	case "DateTime", "Timestamp":
		return noArgs(c, "DATETIME")
	case "Enum":
		members, err := enumMembers(c)
		if err != nil {
			return "", err
		}
		col := utils.QuoteIdentifier(c.Name, '"')
		return "TEXT CHECK (" + col + " IN (" + strings.Join(members, ", ") + "))", nil
	case "Json", "JsonB":
		return noArgs(c, "TEXT")
	case "Uuid":
		return noArgs(c, "TEXT")
	default:
		return "", errors.Errorf("unknown scalar type %q", c.Type.Name)
	}
}
