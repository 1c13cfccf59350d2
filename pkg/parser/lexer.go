package parser

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// TypeNames is the closed set of scalar type names recognized by the lexer.
// A bare word is classified as a Type token only by exact match against this
// set; everything else becomes the model keyword or a plain identifier.
//
// Longer names precede their prefixes (BigSerial before Serial, Timestamp
// before Time) so the alternation in the lexer rule never stops early.
var TypeNames = []string{
	"BigSerial",
	"Serial",
	"SmallInt",
	"BigInt",
	"Int",
	"Float",
	"Double",
	"Decimal",
	"Char",
	"VarChar",
	"Text",
	"Boolean",
	"DateTime",
	"Date",
	"Timestamp",
	"Time",
	"Enum",
	"JsonB",
	"Json",
	"Uuid",
}

// schemaRules is the rule table for the schema definition language.
//
// Rule order is significant: raw-SQL lines, decorators, and quoted strings
// are recognized before bare words, and the model keyword and the scalar
// type set are matched before the generic identifier rule. Comments and
// whitespace are elided and never reach the parser. Any character that no
// rule matches is a lex error carrying the exact line and column.
//
// String literals may span lines; positions advance past embedded newlines.
var schemaRules = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "RawSQL", Pattern: `>[^\n]*`},
	{Name: "Decorator", Pattern: `@[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "String", Pattern: `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "Model", Pattern: `model\b`},
	{Name: "Type", Pattern: `(?:` + strings.Join(TypeNames, "|") + `)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),.{}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// schemaLexer wraps schemaRules with the line-start constraint on raw SQL.
// The RawSQL pattern itself matches a `>` anywhere, so the wrapper rejects
// any RawSQL token that shares a line with preceding code. Only whitespace
// may precede the `>` on its line.
var schemaLexer lexer.Definition = lineAnchored{schemaRules}

type lineAnchored struct {
	lexer.Definition
}

func (d lineAnchored) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	lx, err := d.Definition.Lex(filename, r)
	if err != nil {
		return nil, err
	}

	symbols := d.Symbols()

	return &lineAnchoredLexer{
		inner:      lx,
		rawSQL:     symbols["RawSQL"],
		comment:    symbols["Comment"],
		whitespace: symbols["Whitespace"],
	}, nil
}

// lineAnchoredLexer tracks the line of the most recent code token. Comments
// and whitespace are not code; a RawSQL token on the same line as code is a
// lex error.
type lineAnchoredLexer struct {
	inner      lexer.Lexer
	rawSQL     lexer.TokenType
	comment    lexer.TokenType
	whitespace lexer.TokenType
	codeLine   int
}

func (l *lineAnchoredLexer) Next() (lexer.Token, error) {
	tok, err := l.inner.Next()
	if err != nil || tok.EOF() {
		return tok, err
	}

	switch tok.Type {
	case l.comment, l.whitespace:
		return tok, nil
	case l.rawSQL:
		if tok.Pos.Line == l.codeLine {
			return lexer.Token{}, &lexer.Error{
				Msg: "raw SQL must start its own line",
				Pos: tok.Pos,
			}
		}
	}

	// Multi-line tokens end on a later line than they begin.
	l.codeLine = tok.Pos.Line + strings.Count(tok.Value, "\n")
	return tok, nil
}

// Token is a single lexeme with its classification and source position.
type Token struct {
	Kind   string
	Value  string
	Line   int
	Column int
}

// Lex tokenizes source and returns the token stream the parser consumes,
// with comments and whitespace already discarded. The stream is terminated
// by an EOF token. Primarily useful for tooling and tests; Parse runs the
// same lexer internally.
//
// Example:
//
//	tokens, err := parser.Lex(`model User { id Serial @pk }`)
//	// [{Model model 1 1} {Ident User 1 7} {Punct { 1 12} ...  {EOF  1 29}]
func Lex(source string) ([]Token, error) {
	lx, err := schemaLexer.Lex("", strings.NewReader(source))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize lexer")
	}

	symbols := lexer.SymbolsByRune(schemaLexer)
	var tokens []Token

	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to tokenize source")
		}

		if tok.EOF() {
			tokens = append(tokens, Token{
				Kind:   "EOF",
				Line:   tok.Pos.Line,
				Column: tok.Pos.Column,
			})
			return tokens, nil
		}

		kind := symbols[tok.Type]
		if kind == "Comment" || kind == "Whitespace" {
			continue
		}

		tokens = append(tokens, Token{
			Kind:   kind,
			Value:  tok.Value,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		})
	}
}
