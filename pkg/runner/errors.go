package runner

import (
	"fmt"
	"strings"
)

// StateMismatchError reports that SQL executed successfully against the
// database but the corresponding ledger update failed, so the two no longer
// agree. It lists every affected file and explicit recovery guidance: a
// blind re-run would double-apply DDL that is already committed.
type StateMismatchError struct {
	// Operation is the runner operation that diverged, "apply" or "rollback".
	Operation string

	// Filenames are the migrations whose database effect is committed but
	// not reflected in the ledger.
	Filenames []string

	// Cause is the ledger failure that produced the divergence.
	Cause error
}

func (e *StateMismatchError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "FATAL: database and ledger now disagree: %s succeeded against the database but the ledger update failed: %v\n", e.Operation, e.Cause)
	b.WriteString("affected migrations:\n")
	for _, name := range e.Filenames {
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	b.WriteString("do NOT re-run; re-running would apply these statements a second time. ")
	b.WriteString("reconcile the ledger manually against the database before any further operation")

	return b.String()
}

func (e *StateMismatchError) Unwrap() error { return e.Cause }
