package utils

import (
	"regexp"
	"strings"
)

// MaxIdentifierLength bounds table, column, and reference names embedded in
// generated SQL. Longer names are rejected before any quoting happens.
const MaxIdentifierLength = 128

// identifierPattern is the conservative grammar every identifier must satisfy
// before it may be embedded in generated SQL: a letter or underscore followed
// by letters, digits, underscores, hyphens, or dots.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

// IsValidIdentifier reports whether name is safe to embed in generated SQL
// after quoting.
//
// Examples:
//   - "users" -> true
//   - "user_accounts" -> true
//   - "Order.id" -> true
//   - "1users" -> false
//   - "users; DROP TABLE" -> false
//   - "" -> false
func IsValidIdentifier(name string) bool {
	if name == "" || len(name) > MaxIdentifierLength {
		return false
	}
	return identifierPattern.MatchString(name)
}

// QuoteIdentifier wraps name in the given quote character, doubling any
// embedded quote characters. The caller is expected to have validated the
// name with IsValidIdentifier first; quoting is the second line of defense.
//
// Examples:
//   - ("users", '"') -> `"users"`
//   - ("order", '`') -> "`order`"
func QuoteIdentifier(name string, quote byte) string {
	q := string(quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// EscapeString returns value as a single-quoted SQL string literal with
// embedded single quotes doubled. This is the only path by which
// user-supplied string values (defaults, enum members) reach generated SQL.
//
// Examples:
//   - "active" -> "'active'"
//   - "it's" -> "'it''s'"
func EscapeString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
