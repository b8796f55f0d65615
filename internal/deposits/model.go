package deposits

import (
	"time"

	"github.com/pesaflow/pesaflow/internal/ledger"
)

// Deposit lifecycle states.
const (
	// StatusPendingCallback: the STK push went out and funds are reserved,
	// waiting for the provider's verdict.
	StatusPendingCallback = "PENDING_CALLBACK"
	// StatusCompleted: the provider confirmed payment and the reservation
	// was posted.
	StatusCompleted = "COMPLETED"
	// StatusFailed: the provider rejected or timed out and the reservation
	// was voided.
	StatusFailed = "FAILED"
)

// Deposit tracks one mobile-money top-up attempt. The three transfer
// identifiers are assigned up front so that every ledger submission during
// the lifecycle, including crash-recovery retries, reuses a stable
// idempotency key.
type Deposit struct {
	ID                string
	UserID            string
	Amount            uint64
	Status            string
	CheckoutRequestID string
	MerchantRequestID string
	Receipt           string
	PendingTransferID ledger.Uint128
	PostTransferID    ledger.Uint128
	VoidTransferID    ledger.Uint128
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
