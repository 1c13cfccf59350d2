package ledger

import "fmt"

// IntegrityError is a fatal mismatch between the ledger and the world it
// describes: a previously applied migration file that disappeared or
// changed, or a ledger file that can no longer be parsed. It always carries
// enough context for manual recovery and is never retried.
type IntegrityError struct {
	// Filename is the migration or ledger file involved.
	Filename string

	// Reason describes the violation.
	Reason string

	// WantHash and GotHash are set for hash mismatches: the recorded hash
	// and the recomputed one.
	WantHash string
	GotHash  string
}

func (e *IntegrityError) Error() string {
	if e.WantHash != "" || e.GotHash != "" {
		return fmt.Sprintf(
			"integrity error: %s: %s (recorded hash %s, computed hash %s)",
			e.Filename, e.Reason, e.WantHash, e.GotHash,
		)
	}
	return fmt.Sprintf("integrity error: %s: %s", e.Filename, e.Reason)
}
