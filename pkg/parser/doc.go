// Package parser implements the lexer and parser for the schema definition
// language: a small declarative syntax describing models (tables), typed
// columns with decorators, and raw-SQL passthrough lines.
//
// The grammar is strict recursive descent over a fixed token set. Bare words
// are classified by exact match into the model keyword, the closed scalar
// type set, or a generic identifier; there is no error recovery, and every
// failure carries the offending line and column.
//
// The resulting Schema tree is the sole input to the dialect generators in
// pkg/generator and is rebuilt fresh on every parse.
package parser
