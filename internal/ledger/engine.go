package ledger

import (
	"context"
	"math"
)

// AccountFlags is the bit set attached to an account at creation time.
type AccountFlags uint16

const (
	// AccountDebitsMustNotExceedCredits forbids overdraft: the engine
	// rejects any transfer that would push the account's total debits past
	// its total credits.
	AccountDebitsMustNotExceedCredits AccountFlags = 1 << 0
)

// TransferFlags is the bit set attached to a transfer.
type TransferFlags uint16

const (
	// TransferLinked chains this transfer to the next one in the batch;
	// the engine applies a linked chain all-or-nothing.
	TransferLinked TransferFlags = 1 << 0
	// TransferPending reserves the amount without moving posted balances.
	TransferPending TransferFlags = 1 << 1
	// TransferPostPending settles a prior pending transfer.
	TransferPostPending TransferFlags = 1 << 2
	// TransferVoidPending cancels a prior pending transfer.
	TransferVoidPending TransferFlags = 1 << 3
)

// AmountMax is the sentinel amount on a post-pending transfer meaning
// "settle the full reserved amount".
const AmountMax uint64 = math.MaxUint64

// Account is the engine's durable view of a ledger account. Balances are
// maintained by the engine as a side effect of transfers; the client never
// writes them directly.
type Account struct {
	ID             Uint128
	DebitsPending  uint64
	DebitsPosted   uint64
	CreditsPending uint64
	CreditsPosted  uint64
	Ledger         uint32
	Code           uint16
	Flags          AccountFlags
}

// Transfer is a double-entry movement between two accounts. Post and void
// transfers reference a prior pending transfer instead of naming accounts.
type Transfer struct {
	ID              Uint128
	DebitAccountID  Uint128
	CreditAccountID Uint128
	Amount          uint64
	PendingID       Uint128
	Timeout         uint32
	Ledger          uint32
	Code            uint16
	Flags           TransferFlags
}

// CreateAccountResult is the engine's verdict on a single account creation.
type CreateAccountResult uint32

const (
	AccountOK CreateAccountResult = iota
	AccountLinkedEventFailed
	AccountIDMustNotBeZero
	AccountLedgerMustNotBeZero
	AccountCodeMustNotBeZero
	AccountExists
	AccountExistsWithDifferentFields
	AccountResultUnknown
)

func (r CreateAccountResult) String() string {
	switch r {
	case AccountOK:
		return "ok"
	case AccountLinkedEventFailed:
		return "linked_event_failed"
	case AccountIDMustNotBeZero:
		return "id_must_not_be_zero"
	case AccountLedgerMustNotBeZero:
		return "ledger_must_not_be_zero"
	case AccountCodeMustNotBeZero:
		return "code_must_not_be_zero"
	case AccountExists:
		return "exists"
	case AccountExistsWithDifferentFields:
		return "exists_with_different_fields"
	default:
		return "unknown"
	}
}

// CreateTransferResult is the engine's verdict on a single transfer.
type CreateTransferResult uint32

const (
	TransferOK CreateTransferResult = iota
	TransferLinkedEventFailed
	TransferIDMustNotBeZero
	TransferDebitAccountNotFound
	TransferCreditAccountNotFound
	TransferAccountsMustBeDifferent
	TransferLedgerMismatch
	TransferExceedsCredits
	TransferPendingTransferNotFound
	TransferPendingTransferNotPending
	TransferPendingTransferAlreadyPosted
	TransferPendingTransferAlreadyVoided
	TransferExceedsPendingAmount
	TransferExists
	TransferExistsWithDifferentFields
	TransferResultUnknown
)

func (r CreateTransferResult) String() string {
	switch r {
	case TransferOK:
		return "ok"
	case TransferLinkedEventFailed:
		return "linked_event_failed"
	case TransferIDMustNotBeZero:
		return "id_must_not_be_zero"
	case TransferDebitAccountNotFound:
		return "debit_account_not_found"
	case TransferCreditAccountNotFound:
		return "credit_account_not_found"
	case TransferAccountsMustBeDifferent:
		return "accounts_must_be_different"
	case TransferLedgerMismatch:
		return "ledger_mismatch"
	case TransferExceedsCredits:
		return "exceeds_credits"
	case TransferPendingTransferNotFound:
		return "pending_transfer_not_found"
	case TransferPendingTransferNotPending:
		return "pending_transfer_not_pending"
	case TransferPendingTransferAlreadyPosted:
		return "pending_transfer_already_posted"
	case TransferPendingTransferAlreadyVoided:
		return "pending_transfer_already_voided"
	case TransferExceedsPendingAmount:
		return "exceeds_pending_amount"
	case TransferExists:
		return "exists"
	case TransferExistsWithDifferentFields:
		return "exists_with_different_fields"
	default:
		return "unknown"
	}
}

// AccountEventResult reports the verdict for the account at Index in the
// submitted batch. Engines report only non-OK events.
type AccountEventResult struct {
	Index  uint32
	Result CreateAccountResult
}

// TransferEventResult reports the verdict for the transfer at Index in the
// submitted batch. Engines report only non-OK events.
type TransferEventResult struct {
	Index  uint32
	Result CreateTransferResult
}

// Engine is the handle to the external accounting engine of record. The
// error return signals transport failure only; business verdicts arrive as
// per-event results. Implementations must be safe for concurrent use.
type Engine interface {
	CreateAccounts(ctx context.Context, accounts []Account) ([]AccountEventResult, error)
	CreateTransfers(ctx context.Context, transfers []Transfer) ([]TransferEventResult, error)
	LookupAccounts(ctx context.Context, ids []Uint128) ([]Account, error)
}
