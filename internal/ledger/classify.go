package ledger

import "fmt"

// classifyAccountResults maps per-event account results into the error
// taxonomy. Results in the allowed set are treated as success, which is how
// retried create calls become idempotent rather than erroring.
func classifyAccountResults(results []AccountEventResult, allowed ...CreateAccountResult) error {
	for _, r := range results {
		if r.Result == AccountOK || accountResultAllowed(r.Result, allowed) {
			continue
		}
		return fmt.Errorf("%w: account event %d: %s", ErrConflict, r.Index, r.Result)
	}
	return nil
}

// classifyTransferResults maps per-event transfer results into the error
// taxonomy. Every code resolves to exactly one outcome: accepted,
// ErrInsufficientFunds, or ErrConflict.
func classifyTransferResults(results []TransferEventResult, allowed ...CreateTransferResult) error {
	for _, r := range results {
		if r.Result == TransferOK || transferResultAllowed(r.Result, allowed) {
			continue
		}
		if r.Result == TransferExceedsCredits {
			return fmt.Errorf("%w: transfer event %d", ErrInsufficientFunds, r.Index)
		}
		return fmt.Errorf("%w: transfer event %d: %s", ErrConflict, r.Index, r.Result)
	}
	return nil
}

func accountResultAllowed(result CreateAccountResult, allowed []CreateAccountResult) bool {
	for _, a := range allowed {
		if result == a {
			return true
		}
	}
	return false
}

func transferResultAllowed(result CreateTransferResult, allowed []CreateTransferResult) bool {
	for _, a := range allowed {
		if result == a {
			return true
		}
	}
	return false
}
