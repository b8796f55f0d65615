package ledger

import "errors"

var (
	// ErrInsufficientFunds occurs when the debit side of a transfer would
	// violate the account's no-overdraft constraint. Never retried by the
	// client; the application should reject the requested action.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflict covers every other engine rejection: unknown accounts,
	// ledger mismatches, duplicate identifiers with different payloads, or
	// invalid pending references. The wrapped message carries the raw
	// result code for diagnosis. Blind retry will not resolve a conflict.
	ErrConflict = errors.New("ledger conflict")
)
