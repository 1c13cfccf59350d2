package parser

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"
)

// schemaParser is the participle parser instance for the schema definition
// language. Parsing is strict: the first structural violation aborts the
// whole parse with the offending token's position, and there is no recovery.
var schemaParser = participle.MustBuild[Schema](
	participle.Lexer(schemaLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

// Parse reads schema definition source from r and returns the syntax tree.
//
// The source language consists of model blocks and raw-SQL passthrough
// lines:
//
//	# users and their credentials
//	model User {
//	    id    Serial       @pk
//	    email VarChar(255) @notnull @unique
//	    role  Enum('admin', 'member') @default('member')
//	}
//
//	model Session {
//	    id     Uuid @pk
//	    userId Int  @notnull @references(User.id) @ondelete('cascade')
//	}
//
//	> CREATE INDEX sessions_user_idx ON sessions (user_id);
//
// Structural validation runs as part of the parse: every model must declare
// at least one column, model and column names must be unique within the
// file, and a decorator name may not repeat on one column.
//
// Returns an error carrying the offending line and column if the source
// fails to lex, parse, or validate.
func Parse(r io.Reader) (*Schema, error) {
	schema, err := schemaParser.Parse("", r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}

	if err := validate(schema); err != nil {
		return nil, err
	}

	return schema, nil
}

// ParseString parses schema definition source from a string. This is a
// convenience wrapper around Parse.
func ParseString(source string) (*Schema, error) {
	return Parse(strings.NewReader(source))
}
