// Package utils provides shared helpers for identifier validation and
// quoting, string-literal escaping, and literal classification used by the
// dialect generators. Everything here sits on the injection boundary: no
// user-controlled string reaches generated SQL without passing through one
// of these functions.
package utils
