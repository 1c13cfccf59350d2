// Package ledger tracks which migrations have been applied to a database.
//
// The ledger is an append-only YAML file. Each applied migration is recorded
// with the SHA-256 hash of its content, so any later edit or deletion of an
// already-applied file is detected as a fatal integrity violation rather
// than silently re-run. Entries are grouped into batches: every migration
// applied in a single run shares one batch number, and rollback removes
// exactly the most recent batch.
//
// All access to the ledger file is serialized through a filesystem lease
// (a sibling ".lock" file), making concurrent runs from multiple processes
// or hosts safe. Stale locks left by dead processes on the same host are
// reaped automatically; locks held by other hosts never are.
package ledger
