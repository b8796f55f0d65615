package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
)

// ErrNotProvisioned indicates the user's engine account does not exist yet.
var ErrNotProvisioned = errors.New("wallet not provisioned")

// Service exposes wallet operations. Wallet state lives entirely in the
// ledger engine, keyed by the user's ledger account id; there is no wallet
// table to keep in sync.
type Service struct {
	users  identity.Repository
	ledger *ledger.Client
}

// NewService builds a wallet service instance.
func NewService(users identity.Repository, ledgerClient *ledger.Client) *Service {
	return &Service{users: users, ledger: ledgerClient}
}

// Provision idempotently creates the user's wallet account in the engine.
// Safe to call again after a crashed or timed-out registration.
func (s *Service) Provision(ctx context.Context, userID string) (identity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return identity.User{}, err
	}
	if err := s.ledger.CreateAccount(ctx, user.LedgerAccountID, true); err != nil {
		return identity.User{}, err
	}
	return user, nil
}

// Balance is the engine's snapshot of a wallet.
type Balance struct {
	UserID         string
	AccountID      string
	Available      uint64
	CreditsPosted  uint64
	CreditsPending uint64
	DebitsPosted   uint64
	DebitsPending  uint64
	AsOf           time.Time
}

// Balance returns the current wallet balances. Available counts pending
// credits (reserved deposits) and subtracts all debits.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Balance{}, err
	}

	account, ok, err := s.ledger.LookupAccount(ctx, user.LedgerAccountID)
	if err != nil {
		return Balance{}, err
	}
	if !ok {
		return Balance{}, ErrNotProvisioned
	}

	credits := account.CreditsPosted + account.CreditsPending
	debits := account.DebitsPosted + account.DebitsPending
	var available uint64
	if credits > debits {
		available = credits - debits
	}

	return Balance{
		UserID:         user.ID,
		AccountID:      user.LedgerAccountID.String(),
		Available:      available,
		CreditsPosted:  account.CreditsPosted,
		CreditsPending: account.CreditsPending,
		DebitsPosted:   account.DebitsPosted,
		DebitsPending:  account.DebitsPending,
		AsOf:           time.Now().UTC(),
	}, nil
}
