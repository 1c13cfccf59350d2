// Package format renders a parsed schema back to canonical schema-definition
// source. It is the inverse of pkg/parser for the grammar subset that
// round-trips: parsing the rendered output yields a structurally identical
// tree.
//
// The formatter backs `schemer fmt` and keeps hand-written migration files
// in one consistent style.
package format

import (
	"strings"

	"github.com/schemerhq/schemer/pkg/parser"
)

// Options controls formatting behavior.
type Options struct {
	// IndentSize is the number of spaces used for column indentation.
	IndentSize int

	// AlignDecorators pads column names and types so decorators line up.
	AlignDecorators bool
}

// Defaults is the standard formatting configuration.
var Defaults = Options{
	IndentSize:      4,
	AlignDecorators: true,
}

// Formatter renders schema trees with configurable options.
type Formatter struct {
	options Options
}

// New creates a Formatter with the given options. Zero IndentSize falls back
// to the default.
func New(options Options) *Formatter {
	if options.IndentSize <= 0 {
		options.IndentSize = Defaults.IndentSize
	}
	return &Formatter{options: options}
}

// Format renders the whole schema: models and raw-SQL passthroughs in
// declaration order, separated by blank lines, with a trailing newline.
func (f *Formatter) Format(schema *parser.Schema) string {
	blocks := make([]string, 0, len(schema.Statements))
	for _, stmt := range schema.Statements {
		switch {
		case stmt.Model != nil:
			blocks = append(blocks, f.Model(stmt.Model))
		case stmt.Raw != nil:
			blocks = append(blocks, "> "+stmt.Raw.Statement())
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// Model renders a single model block.
func (f *Formatter) Model(m *parser.Model) string {
	indent := strings.Repeat(" ", f.options.IndentSize)

	nameWidth, typeWidth := 0, 0
	if f.options.AlignDecorators {
		for _, c := range m.Columns {
			nameWidth = max(nameWidth, len(c.Name))
			typeWidth = max(typeWidth, len(typeText(c.Type)))
		}
	}

	var b strings.Builder
	b.WriteString("model ")
	b.WriteString(m.Name)
	b.WriteString(" {\n")
	for _, c := range m.Columns {
		b.WriteString(indent)
		b.WriteString(f.column(c, nameWidth, typeWidth))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func (f *Formatter) column(c *parser.Column, nameWidth, typeWidth int) string {
	parts := []string{pad(c.Name, nameWidth)}

	text := typeText(c.Type)
	if len(c.Decorators) > 0 {
		text = pad(text, typeWidth)
	}
	parts = append(parts, text)

	for _, d := range c.Decorators {
		parts = append(parts, decoratorText(d))
	}

	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func typeText(t *parser.TypeRef) string {
	return t.Name + argList(t.Args)
}

func decoratorText(d *parser.Decorator) string {
	return "@" + d.Name() + argList(d.Args)
}

func argList(args []*parser.Argument) string {
	if len(args) == 0 {
		return ""
	}

	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = argText(a)
	}
	return "(" + strings.Join(rendered, ", ") + ")"
}

func argText(a *parser.Argument) string {
	if a.IsString() {
		return quote(a.Value())
	}
	return a.Value()
}

// quote renders a string argument as a single-quoted literal the lexer will
// accept back, re-escaping backslashes, quotes, and control characters.
func quote(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
		"\t", `\t`,
		"\r", `\r`,
	)
	return "'" + replacer.Replace(s) + "'"
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
