package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/schemerhq/schemer/pkg/utils"
)

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "users", true},
		{"underscore prefix", "_internal", true},
		{"mixed case", "UserAccounts", true},
		{"digits", "tbl2", true},
		{"hyphen", "user-accounts", true},
		{"dotted", "Order.id", true},
		{"empty", "", false},
		{"digit prefix", "1users", false},
		{"space", "user accounts", false},
		{"injection", `users"; DROP TABLE x; --`, false},
		{"quote", "us`ers", false},
		{"too long", strings.Repeat("a", 129), false},
		{"max length", strings.Repeat("a", 128), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	require.Equal(t, `"users"`, QuoteIdentifier("users", '"'))
	require.Equal(t, "`order`", QuoteIdentifier("order", '`'))

	// Embedded quote characters are doubled, never left bare.
	require.Equal(t, `"us""ers"`, QuoteIdentifier(`us"ers`, '"'))
	require.Equal(t, "`us``ers`", QuoteIdentifier("us`ers", '`'))
}

func TestEscapeString(t *testing.T) {
	require.Equal(t, "'active'", EscapeString("active"))
	require.Equal(t, "'it''s'", EscapeString("it's"))
	require.Equal(t, "''", EscapeString(""))
	require.Equal(t, "'a''''b'", EscapeString("a''b"))
}

func TestIsNumericValue(t *testing.T) {
	require.True(t, IsNumericValue("123"))
	require.True(t, IsNumericValue("123.45"))
	require.True(t, IsNumericValue("-0.5"))
	require.False(t, IsNumericValue("1.2.3"))
	require.False(t, IsNumericValue("abc"))
	require.False(t, IsNumericValue(""))
}

func TestIsBooleanValue(t *testing.T) {
	require.True(t, IsBooleanValue("true"))
	require.True(t, IsBooleanValue("FALSE"))
	require.False(t, IsBooleanValue("1"))
	require.False(t, IsBooleanValue("yes"))

	require.True(t, IsTrueValue("True"))
	require.False(t, IsTrueValue("false"))
}
