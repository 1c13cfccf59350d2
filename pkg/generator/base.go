package generator

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/parser"
	"github.com/schemerhq/schemer/pkg/utils"
)

// onDeleteActions maps the fixed set of delete actions accepted by
// @ondelete to their SQL spelling. Anything outside this set is a fatal
// generation error.
var onDeleteActions = map[string]string{
	"cascade":     "CASCADE",
	"set-null":    "SET NULL",
	"set-default": "SET DEFAULT",
	"restrict":    "RESTRICT",
	"no-action":   "NO ACTION",
}

type (
	// dialect captures everything that varies between target SQL dialects:
	// quoting, default-value spellings, primary-key placement, constraint
	// support, type lowering, and an optional trailer after the closing
	// paren of CREATE TABLE.
	dialect struct {
		name      string
		quoteChar byte
		nowExpr   string
		boolTrue  string
		boolFalse string

		// inlinePK emits PRIMARY KEY on the column itself; otherwise a
		// trailing PRIMARY KEY (cols) table constraint is used.
		inlinePK bool

		// constraints reports whether the dialect supports UNIQUE and
		// foreign-key constraints at all.
		constraints bool

		// columnType lowers a column's scalar type (with arguments) to the
		// dialect's native spelling.
		columnType func(c *parser.Column) (string, error)

		// pkSuffix, when set, replaces the plain inline PRIMARY KEY clause
		// for a given column (e.g. SQLite's AUTOINCREMENT).
		pkSuffix func(c *parser.Column) string

		// tableSuffix, when set, is appended after the closing paren of
		// CREATE TABLE (e.g. the ClickHouse ENGINE clause). When it is set,
		// no trailing PRIMARY KEY table constraint is emitted.
		tableSuffix func(m *parser.Model, pkCols []string) string
	}

	// gen is the shared Generator implementation parameterized by a dialect.
	gen struct {
		d dialect
	}
)

func (g *gen) Name() string { return g.d.name }

func (g *gen) Up(schema *parser.Schema) ([]string, error) {
	models := schema.Models()
	raws := schema.RawStatements()

	stmts := make([]string, 0, len(models)+len(raws))
	for _, m := range models {
		stmt, err := g.createTable(m)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	for _, r := range raws {
		stmts = append(stmts, r.Statement())
	}

	return stmts, nil
}

func (g *gen) Down(schema *parser.Schema) ([]string, error) {
	models := schema.Models()

	// Reverse declaration order: dependents were declared after the tables
	// they reference, so they must drop first.
	stmts := make([]string, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		name, err := g.ident(models[i].Name)
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", models[i].Name)
		}
		stmts = append(stmts, "DROP TABLE IF EXISTS "+name+";")
	}

	return stmts, nil
}

func (g *gen) createTable(m *parser.Model) (string, error) {
	table, err := g.ident(m.Name)
	if err != nil {
		return "", errors.Wrapf(err, "model %q", m.Name)
	}

	var (
		defs    []string
		pkCols  []string
		foreign []string
	)

	for _, c := range m.Columns {
		def, pk, fk, err := g.columnDef(c)
		if err != nil {
			return "", errors.Wrapf(err, "model %q", m.Name)
		}

		defs = append(defs, def)
		if pk {
			pkCols = append(pkCols, c.Name)
		}
		if fk != "" {
			foreign = append(foreign, fk)
		}
	}

	if g.d.inlinePK && len(pkCols) > 1 {
		return "", errors.Errorf(
			"model %q declares %d primary key columns; %s supports a single inline primary key",
			m.Name, len(pkCols), g.d.name,
		)
	}

	if !g.d.inlinePK && g.d.tableSuffix == nil && len(pkCols) > 0 {
		quoted := make([]string, len(pkCols))
		for i, col := range pkCols {
			if quoted[i], err = g.ident(col); err != nil {
				return "", errors.Wrapf(err, "model %q", m.Name)
			}
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}

	defs = append(defs, foreign...)

	stmt := "CREATE TABLE " + table + " (" + strings.Join(defs, ", ") + ")"
	if g.d.tableSuffix != nil {
		stmt += g.d.tableSuffix(m, pkCols)
	}
	return stmt + ";", nil
}

// columnDef lowers a single column declaration: its type, then one clause
// per decorator in declaration order, with reference/ondelete collected into
// a table-level foreign-key constraint returned separately.
func (g *gen) columnDef(c *parser.Column) (def string, pk bool, foreignKey string, err error) {
	name, err := g.ident(c.Name)
	if err != nil {
		return "", false, "", errors.Wrapf(err, "column %q", c.Name)
	}

	typ, err := g.d.columnType(c)
	if err != nil {
		return "", false, "", errors.Wrapf(err, "column %q", c.Name)
	}

	parts := []string{name, typ}
	var references *parser.Decorator
	var onDelete string

	for _, dec := range c.Decorators {
		switch dec.Name() {
		case parser.DecoratorPrimaryKey:
			pk = true
			if g.d.inlinePK {
				clause := "PRIMARY KEY"
				if g.d.pkSuffix != nil {
					if suffix := g.d.pkSuffix(c); suffix != "" {
						clause += " " + suffix
					}
				}
				parts = append(parts, clause)
			}

		case parser.DecoratorUnique:
			if !g.d.constraints {
				return "", false, "", errors.Errorf(
					"column %q: decorator @unique is not supported by the %s dialect", c.Name, g.d.name,
				)
			}
			parts = append(parts, "UNIQUE")

		case parser.DecoratorNotNull:
			parts = append(parts, "NOT NULL")

		case parser.DecoratorDefault:
			value, err := g.defaultValue(c, dec)
			if err != nil {
				return "", false, "", err
			}
			parts = append(parts, "DEFAULT "+value)

		case parser.DecoratorReferences:
			if !g.d.constraints {
				return "", false, "", errors.Errorf(
					"column %q: decorator @references is not supported by the %s dialect", c.Name, g.d.name,
				)
			}
			references = dec

		case parser.DecoratorOnDelete:
			if !g.d.constraints {
				return "", false, "", errors.Errorf(
					"column %q: decorator @ondelete is not supported by the %s dialect", c.Name, g.d.name,
				)
			}
			if onDelete, err = g.onDeleteAction(c, dec); err != nil {
				return "", false, "", err
			}

		default:
			return "", false, "", errors.Errorf(
				"column %q: unknown decorator @%s", c.Name, dec.Name(),
			)
		}
	}

	if onDelete != "" && references == nil {
		return "", false, "", errors.Errorf(
			"column %q: @ondelete requires @references on the same column", c.Name,
		)
	}

	if references != nil {
		if foreignKey, err = g.foreignKey(c, references, onDelete); err != nil {
			return "", false, "", err
		}
	}

	return strings.Join(parts, " "), pk, foreignKey, nil
}

func (g *gen) foreignKey(c *parser.Column, dec *parser.Decorator, onDelete string) (string, error) {
	if len(dec.Args) != 1 {
		return "", errors.Errorf(
			"column %q: @references expects exactly one Table.column argument, got %d", c.Name, len(dec.Args),
		)
	}

	refTable, refColumn, ok := dec.Args[0].Reference()
	if !ok {
		return "", errors.Errorf(
			"column %q: @references argument %q is not a Table.column reference", c.Name, dec.Args[0].Value(),
		)
	}

	col, err := g.ident(c.Name)
	if err != nil {
		return "", errors.Wrapf(err, "column %q", c.Name)
	}
	table, err := g.ident(refTable)
	if err != nil {
		return "", errors.Wrapf(err, "column %q: referenced table", c.Name)
	}
	column, err := g.ident(refColumn)
	if err != nil {
		return "", errors.Wrapf(err, "column %q: referenced column", c.Name)
	}

	fk := "FOREIGN KEY (" + col + ") REFERENCES " + table + " (" + column + ")"
	if onDelete != "" {
		fk += " ON DELETE " + onDelete
	}
	return fk, nil
}

func (g *gen) onDeleteAction(c *parser.Column, dec *parser.Decorator) (string, error) {
	if len(dec.Args) != 1 {
		return "", errors.Errorf(
			"column %q: @ondelete expects exactly one argument, got %d", c.Name, len(dec.Args),
		)
	}

	action, ok := onDeleteActions[strings.ToLower(dec.Args[0].Value())]
	if !ok {
		return "", errors.Errorf(
			"column %q: unknown @ondelete action %q (valid: cascade, set-null, set-default, restrict, no-action)",
			c.Name, dec.Args[0].Value(),
		)
	}
	return action, nil
}

// defaultValue normalizes a @default argument for this dialect: the reserved
// "now" keyword becomes the dialect's timestamp function, booleans become
// the dialect's literal spelling, numeric literals pass through unquoted,
// and everything else is escaped as a string literal.
func (g *gen) defaultValue(c *parser.Column, dec *parser.Decorator) (string, error) {
	if len(dec.Args) != 1 {
		return "", errors.Errorf(
			"column %q: @default expects exactly one argument, got %d", c.Name, len(dec.Args),
		)
	}

	arg := dec.Args[0]
	value := arg.Value()

	switch {
	case strings.EqualFold(value, "now"):
		return g.d.nowExpr, nil
	case utils.IsBooleanValue(value):
		if utils.IsTrueValue(value) {
			return g.d.boolTrue, nil
		}
		return g.d.boolFalse, nil
	case arg.IsNumber() || utils.IsNumericValue(value):
		return value, nil
	default:
		return utils.EscapeString(value), nil
	}
}

// ident validates a name against the identifier grammar and quotes it for
// this dialect. No identifier reaches generated SQL without passing through
// here, and no string literal without utils.EscapeString.
func (g *gen) ident(name string) (string, error) {
	if !utils.IsValidIdentifier(name) {
		return "", errors.Errorf("invalid identifier %q", name)
	}
	return utils.QuoteIdentifier(name, g.d.quoteChar), nil
}

// Shared argument helpers for the per-dialect type lowering functions.

// noArgs rejects any type arguments.
func noArgs(c *parser.Column, sql string) (string, error) {
	if len(c.Type.Args) != 0 {
		return "", errors.Errorf("type %s takes no arguments, got %d", c.Type.Name, len(c.Type.Args))
	}
	return sql, nil
}

// lengthArg extracts the single numeric length argument of Char/VarChar.
func lengthArg(c *parser.Column) (string, error) {
	if len(c.Type.Args) != 1 || !c.Type.Args[0].IsNumber() {
		return "", errors.Errorf("type %s expects exactly one numeric length argument", c.Type.Name)
	}
	return c.Type.Args[0].Value(), nil
}

// precisionArgs extracts Decimal's numeric (precision, scale) arguments.
func precisionArgs(c *parser.Column) (precision, scale string, err error) {
	if len(c.Type.Args) != 2 || !c.Type.Args[0].IsNumber() || !c.Type.Args[1].IsNumber() {
		return "", "", errors.Errorf("type %s expects numeric (precision, scale) arguments", c.Type.Name)
	}
	return c.Type.Args[0].Value(), c.Type.Args[1].Value(), nil
}

// enumMembers extracts the string members of an Enum type, escaped and
// ready to embed.
func enumMembers(c *parser.Column) ([]string, error) {
	if len(c.Type.Args) == 0 {
		return nil, errors.Errorf("type Enum expects at least one string member")
	}

	members := make([]string, len(c.Type.Args))
	for i, arg := range c.Type.Args {
		if !arg.IsString() {
			return nil, errors.Errorf("type Enum members must be string literals, got %q", arg.Value())
		}
		members[i] = utils.EscapeString(arg.Value())
	}
	return members, nil
}
