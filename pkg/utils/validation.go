package utils

import (
	"strconv"
	"strings"
)

// IsNumericValue checks if a string represents a valid numeric value.
// This uses strconv.ParseFloat to properly validate numeric formats,
// including integers, floats, and scientific notation.
//
// Examples:
//   - "123" -> true
//   - "123.45" -> true
//   - "-123.45" -> true
//   - "abc" -> false
//   - "1.2.3" -> false
//   - "" -> false
func IsNumericValue(value string) bool {
	if value == "" {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// IsBooleanValue checks if a string represents a boolean value.
// This is case-insensitive.
//
// Examples:
//   - "true" -> true
//   - "TRUE" -> true
//   - "false" -> true
//   - "1" -> false (use IsNumericValue for numeric booleans)
//   - "yes" -> false
func IsBooleanValue(value string) bool {
	lowered := strings.ToLower(value)
	return lowered == "true" || lowered == "false"
}

// IsTrueValue reports whether value spells the boolean true, ignoring case.
// Callers should check IsBooleanValue first.
func IsTrueValue(value string) bool {
	return strings.EqualFold(value, "true")
}
