package generator

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/parser"
	"github.com/schemerhq/schemer/pkg/utils"
)

// NewClickHouse returns the generator for ClickHouse. The engine has no
// unique or foreign-key constraints, so @unique, @references, and @ondelete
// are fatal generation errors here; primary keys become the MergeTree
// PRIMARY KEY clause after the column list rather than a column constraint.
func NewClickHouse() Generator {
	return &gen{d: dialect{
		name:        "clickhouse",
		quoteChar:   '`',
		nowExpr:     "now()",
		boolTrue:    "true",
		boolFalse:   "false",
		inlinePK:    false,
		constraints: false,
		columnType:  clickhouseType,
		tableSuffix: clickhouseTableSuffix,
	}}
}

func clickhouseTableSuffix(_ *parser.Model, pkCols []string) string {
	if len(pkCols) == 0 {
		return " ENGINE = MergeTree ORDER BY tuple()"
	}

	quoted := make([]string, len(pkCols))
	for i, col := range pkCols {
		quoted[i] = utils.QuoteIdentifier(col, '`')
	}
	return " ENGINE = MergeTree PRIMARY KEY (" + strings.Join(quoted, ", ") + ")"
}

func clickhouseType(c *parser.Column) (string, error) {
	switch c.Type.Name {
	case "Serial", "BigSerial":
		// no auto-increment in ClickHouse; the closest shape is an
		// unsigned integer key
		return noArgs(c, "UInt64")
	case "SmallInt":
		return noArgs(c, "Int16")
	case "Int":
		return noArgs(c, "Int32")
	case "BigInt":
		return noArgs(c, "Int64")
	case "Float":
		return noArgs(c, "Float32")
	case "Double":
		return noArgs(c, "Float64")
	case "Decimal":
		precision, scale, err := precisionArgs(c)
		if err != nil {
			return "", err
		}
		return "Decimal(" + precision + ", " + scale + ")", nil
	case "Char":
		length, err := lengthArg(c)
		if err != nil {
			return "", err
		}
		return "FixedString(" + length + ")", nil
	case "VarChar":
		// length is validated but not emitted; String is unbounded
		if _, err := lengthArg(c); err != nil {
			return "", err
		}
		return "String", nil
	case "Text":
		return noArgs(c, "String")
	case "Boolean":
		return noArgs(c, "Bool")
	case "Date":
		return noArgs(c, "Date")
	case "DateTime", "Timestamp":
		return noArgs(c, "DateTime")
	case "Enum":
		members, err := enumMembers(c)
		if err != nil {
			return "", err
		}
		pairs := make([]string, len(members))
		for i, member := range members {
			pairs[i] = member + " = " + strconv.Itoa(i+1)
		}
		return "Enum8(" + strings.Join(pairs, ", ") + ")", nil
	case "Json", "JsonB":
		return noArgs(c, "String")
	case "Uuid":
		return noArgs(c, "UUID")
	case "Time":
		return "", errors.Errorf("type Time has no ClickHouse representation")
	default:
		return "", errors.Errorf("unknown scalar type %q", c.Type.Name)
	}
}
