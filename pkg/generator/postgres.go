package generator

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/parser"
	"github.com/schemerhq/schemer/pkg/utils"
)

// NewPostgres returns the generator for the Postgres family. Primary keys
// are inline, enums lower to a value-list check constraint (native enum
// types would require a separate CREATE TYPE per column), and booleans use
// the TRUE/FALSE literals.
func NewPostgres() Generator {
	return &gen{d: dialect{
		name:        "postgres",
		quoteChar:   '"',
		nowExpr:     "NOW()",
		boolTrue:    "TRUE",
		boolFalse:   "FALSE",
		inlinePK:    true,
		constraints: true,
		columnType:  postgresType,
	}}
}

func postgresType(c *parser.Column) (string, error) {
	switch c.Type.Name {
	case "Serial":
		return noArgs(c, "SERIAL")
	case "BigSerial":
		return noArgs(c, "BIGSERIAL")
	case "SmallInt":
		return noArgs(c, "SMALLINT")
	case "Int":
		return noArgs(c, "INTEGER")
	case "BigInt":
		return noArgs(c, "BIGINT")
	case "Float":
		return noArgs(c, "REAL")
	case "Double":
		return noArgs(c, "DOUBLE PRECISION")
	case "Decimal":
		precision, scale, err := precisionArgs(c)
		if err != nil {
			return "", err
		}
		return "NUMERIC(" + precision + ", " + scale + ")", nil
	case "Char":
		length, err := lengthArg(c)
		if err != nil {
			return "", err
		}
		return "CHAR(" + length + ")", nil
	case "VarChar":
		length, err := lengthArg(c)
		if err != nil {
			return "", err
		}
		return "VARCHAR(" + length + ")", nil
	case "Text":
		return noArgs(c, "TEXT")
	case "Boolean":
		return noArgs(c, "BOOLEAN")
	case "Date":
		return noArgs(c, "DATE")
	case "Time":
		return noArgs(c, "TIME")
	case "DateTime", "Timestamp":
		return noArgs(c, "TIMESTAMP")
	case "Enum":
		members, err := enumMembers(c)
		if err != nil {
			return "", err
		}
		col := utils.QuoteIdentifier(c.Name, '"')
		return "TEXT CHECK (" + col + " IN (" + strings.Join(members, ", ") + "))", nil
	case "Json":
		return noArgs(c, "JSON")
	case "JsonB":
		return noArgs(c, "JSONB")
	case "Uuid":
		return noArgs(c, "UUID")
	default:
		return "", errors.Errorf("unknown scalar type %q", c.Type.Name)
	}
}
