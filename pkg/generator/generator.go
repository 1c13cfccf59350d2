package generator

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/parser"
)

// Generator lowers a parsed schema into ordered lists of dialect-native SQL
// statements. Implementations are interchangeable: Up emits one CREATE TABLE
// per model in declaration order followed by every raw-SQL passthrough
// verbatim, and Down emits one DROP TABLE IF EXISTS per model in reverse
// declaration order.
type Generator interface {
	// Name returns the dialect name (e.g. "postgres").
	Name() string

	// Up returns the forward statements for the schema.
	Up(schema *parser.Schema) ([]string, error)

	// Down returns the reverse statements for the schema.
	Down(schema *parser.Schema) ([]string, error)
}

// New returns the generator for the named dialect. The dialect set is
// closed; anything outside it is an error.
func New(name string) (Generator, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return NewPostgres(), nil
	case "mysql", "mariadb":
		return NewMySQL(), nil
	case "sqlite", "sqlite3":
		return NewSQLite(), nil
	case "clickhouse":
		return NewClickHouse(), nil
	default:
		return nil, errors.Errorf(
			"unknown dialect %q (supported: clickhouse, mysql, postgres, sqlite)", name,
		)
	}
}
