package identity

import (
	"time"

	"github.com/pesaflow/pesaflow/internal/ledger"
)

// KYC verification states for a registered user.
const (
	KYCPending  = "PENDING"
	KYCVerified = "VERIFIED"
)

// User represents a registered wallet owner. LedgerAccountID is assigned at
// registration; the engine account itself is provisioned by the wallet
// service and may lag behind the row.
type User struct {
	ID              string
	FullName        string
	Phone           string
	KYCStatus       string
	PINHash         []byte
	LedgerAccountID ledger.Uint128
	CreatedAt       time.Time
}
