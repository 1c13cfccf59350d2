// Package generator lowers parsed schema trees into dialect-native SQL DDL.
//
// Each dialect (postgres, mysql, sqlite, clickhouse) implements the same
// two-operation contract, ordered forward statements from Up and ordered
// reverse statements from Down, so generators are interchangeable behind
// the Generator interface. The dialect set is closed and selected by
// configuration through New.
//
// Generation is the injection boundary: every identifier is validated
// against a conservative grammar and dialect-quoted, and every string
// literal is escaped, before being embedded in output.
package generator
