package generator

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/parser"
)

// NewMySQL returns the generator for the MySQL family. Primary keys are
// emitted as a trailing table constraint (AUTO_INCREMENT columns must be
// part of a key), enums use the native ENUM type, and booleans are
// represented as TINYINT(1) with 1/0 literals.
func NewMySQL() Generator {
	return &gen{d: dialect{
		name:        "mysql",
		quoteChar:   '`',
		nowExpr:     "CURRENT_TIMESTAMP",
		boolTrue:    "1",
		boolFalse:   "0",
		inlinePK:    false,
		constraints: true,
		columnType:  mysqlType,
	}}
}

func mysqlType(c *parser.Column) (string, error) {
	switch c.Type.Name {
	case "Serial":
		return noArgs(c, "INT AUTO_INCREMENT")
	case "BigSerial":
		return noArgs(c, "BIGINT AUTO_INCREMENT")
	case "SmallInt":
		return noArgs(c, "SMALLINT")
	case "Int":
		return noArgs(c, "INT")
	case "BigInt":
		return noArgs(c, "BIGINT")
	case "Float":
		return noArgs(c, "FLOAT")
	case "Double":
		return noArgs(c, "DOUBLE")
	case "Decimal":
		precision, scale, err := precisionArgs(c)
		if err != nil {
			return "", err
		}
		return "DECIMAL(" + precision + ", " + scale + ")", nil
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
		return noArgs(c, "TINYINT(1)")
	case "Date":
		return noArgs(c, "DATE")
	case "Time":
		return noArgs(c, "TIME")
	case "DateTime":
		return noArgs(c, "DATETIME")
	case "Timestamp":
		return noArgs(c, "TIMESTAMP")
	case "Enum":
		members, err := enumMembers(c)
		if err != nil {
			return "", err
		}
		return "ENUM(" + strings.Join(members, ", ") + ")", nil
	case "Json", "JsonB":
		return noArgs(c, "JSON")
	case "Uuid":
		// closest native representation: the canonical 36-character text form
		return noArgs(c, "CHAR(36)")
	default:
		return "", errors.Errorf("unknown scalar type %q", c.Type.Name)
	}
}
