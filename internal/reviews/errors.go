package reviews

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrLedgerUnavailable wraps storage faults. Losing a review breaks
	// history continuity, so these are surfaced, never swallowed.
	ErrLedgerUnavailable = errors.New("review ledger unavailable")
)
