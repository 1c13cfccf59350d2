package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Decorator names understood by the generators. The parser itself accepts
// any @word; unknown names surface as generation errors so they can report
// the offending column.
const (
	DecoratorPrimaryKey = "pk"
	DecoratorUnique     = "unique"
	DecoratorNotNull    = "notnull"
	DecoratorDefault    = "default"
	DecoratorReferences = "references"
	DecoratorOnDelete   = "ondelete"
)

type (
	// Schema is the root of the syntax tree: an ordered sequence of model
	// declarations and raw-SQL passthrough statements, in declaration order.
	// A Schema is rebuilt fresh on every parse and never mutated afterwards.
	Schema struct {
		Pos lexer.Position

		Statements []*Statement `parser:"@@*"`
	}

	// Statement is either a model declaration or a raw-SQL passthrough line.
	Statement struct {
		Model *Model        `parser:"@@"`
		Raw   *RawStatement `parser:"| @@"`
	}

	// RawStatement is a source line beginning with '>' that is emitted into
	// the generated "up" statement list verbatim, bypassing the
	// type/decorator pipeline entirely.
	RawStatement struct {
		Pos lexer.Position

		Text string `parser:"@RawSQL"`
	}

	// Model is a declared table-like entity with an ordered set of columns.
	Model struct {
		Pos lexer.Position

		Name    string    `parser:"'model' @Ident"`
		Columns []*Column `parser:"'{' @@* '}'"`
	}

	// Column is a named, typed column declaration with zero or more
	// decorators. Declaration order is preserved and significant.
	Column struct {
		Pos lexer.Position

		Name       string       `parser:"@Ident"`
		Type       *TypeRef     `parser:"@@"`
		Decorators []*Decorator `parser:"@@*"`
	}

	// TypeRef is a scalar type tag with optional arguments, e.g.
	// VarChar(255), Decimal(10, 2), or Enum('a', 'b').
	TypeRef struct {
		Pos lexer.Position

		Name string      `parser:"@Type"`
		Args []*Argument `parser:"('(' @@ (',' @@)* ')')?"`
	}

	// Decorator is a column annotation such as @pk or @default('now').
	Decorator struct {
		Pos lexer.Position

		Raw  string      `parser:"@Decorator"`
		Args []*Argument `parser:"('(' @@ (',' @@)* ')')?"`
	}

	// Argument is a single type or decorator argument: a quoted string, a
	// number, or an identifier optionally followed by '.' and a second
	// identifier forming a Table.column reference.
	Argument struct {
		Pos lexer.Position

		Str    *string `parser:"@String"`
		Num    *string `parser:"| @Number"`
		Name   *string `parser:"| @Ident"`
		Member *string `parser:"('.' @Ident)?"`
	}
)

// Models returns the model declarations in declaration order.
func (s *Schema) Models() []*Model {
	models := make([]*Model, 0, len(s.Statements))
	for _, stmt := range s.Statements {
		if stmt.Model != nil {
			models = append(models, stmt.Model)
		}
	}
	return models
}

// RawStatements returns the raw-SQL passthrough nodes in declaration order.
func (s *Schema) RawStatements() []*RawStatement {
	raws := make([]*RawStatement, 0)
	for _, stmt := range s.Statements {
		if stmt.Raw != nil {
			raws = append(raws, stmt.Raw)
		}
	}
	return raws
}

// Statement returns the SQL text with the leading '>' marker and surrounding
// whitespace removed.
func (r *RawStatement) Statement() string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r.Text), ">"))
}

// Decorator returns the first decorator with the given name, or nil.
func (c *Column) Decorator(name string) *Decorator {
	for _, d := range c.Decorators {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Name returns the decorator name without the leading '@'.
func (d *Decorator) Name() string {
	return strings.TrimPrefix(d.Raw, "@")
}

// IsString reports whether the argument is a quoted string literal.
func (a *Argument) IsString() bool { return a.Str != nil }

// IsNumber reports whether the argument is a numeric literal.
func (a *Argument) IsNumber() bool { return a.Num != nil }

// IsIdent reports whether the argument is a bare identifier (without a
// dotted member).
func (a *Argument) IsIdent() bool { return a.Name != nil && a.Member == nil }

// IsReference reports whether the argument is a Table.column reference.
func (a *Argument) IsReference() bool { return a.Name != nil && a.Member != nil }

// Value returns the argument as plain text: strings are unquoted with escape
// sequences resolved, numbers keep their literal spelling, and references
// are joined as "Table.column".
func (a *Argument) Value() string {
	switch {
	case a.Str != nil:
		return unquote(*a.Str)
	case a.Num != nil:
		return *a.Num
	case a.Name != nil && a.Member != nil:
		return *a.Name + "." + *a.Member
	case a.Name != nil:
		return *a.Name
	}
	return ""
}

// Reference splits a Table.column argument into its parts. The second return
// value is false when the argument is not a reference.
func (a *Argument) Reference() (table string, column string, ok bool) {
	if !a.IsReference() {
		return "", "", false
	}
	return *a.Name, *a.Member, true
}

// unquote strips the surrounding quotes from a string token and resolves the
// supported escape sequences: \n, \t, \r, \\, and the matching quote.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 >= len(body) {
			b.WriteByte(ch)
			continue
		}

		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			// covers \\ and the matching quote character
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
