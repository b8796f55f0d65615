package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
)

func newTestWallets(t *testing.T) (*Service, *identity.Service, *ledger.Client) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	ledgerClient := ledger.NewClient(ledger.NewInMemoryEngine())
	if err := ledger.EnsureSystemAccounts(context.Background(), ledgerClient); err != nil {
		t.Fatalf("ensure system accounts: %v", err)
	}
	return NewService(repo, ledgerClient), identity.NewService(repo), ledgerClient
}

func TestProvisionIsIdempotent(t *testing.T) {
	wallets, users, ledgerClient := newTestWallets(t)
	ctx := context.Background()

	user, err := users.Register(ctx, identity.RegisterInput{FullName: "A", Phone: "+254700000010", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := wallets.Provision(ctx, user.ID); err != nil {
			t.Fatalf("provision attempt %d: %v", i+1, err)
		}
	}

	account, ok, err := ledgerClient.LookupAccount(ctx, user.LedgerAccountID)
	if err != nil || !ok {
		t.Fatalf("expected wallet account in engine: ok=%v err=%v", ok, err)
	}
	if account.Flags&ledger.AccountDebitsMustNotExceedCredits == 0 {
		t.Fatal("wallet account missing no-overdraft flag")
	}
}

func TestBalanceCountsPendingCredits(t *testing.T) {
	wallets, users, ledgerClient := newTestWallets(t)
	ctx := context.Background()

	user, err := users.Register(ctx, identity.RegisterInput{FullName: "A", Phone: "+254700000011", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := wallets.Provision(ctx, user.ID); err != nil {
		t.Fatalf("provision: %v", err)
	}

	if err := ledgerClient.TwoPhasePending(ctx, ledger.NextID(), ledger.ClearingAccountID, user.LedgerAccountID, 300, ledger.TransferCodeDeposit); err != nil {
		t.Fatalf("reserve deposit: %v", err)
	}

	balance, err := wallets.Balance(ctx, user.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.CreditsPending != 300 || balance.CreditsPosted != 0 {
		t.Fatalf("unexpected balances: %+v", balance)
	}
	if balance.Available != 300 {
		t.Fatalf("expected available 300, got %d", balance.Available)
	}
}

func TestBalanceUnprovisionedWallet(t *testing.T) {
	wallets, users, _ := newTestWallets(t)
	ctx := context.Background()

	user, err := users.Register(ctx, identity.RegisterInput{FullName: "A", Phone: "+254700000012", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := wallets.Balance(ctx, user.ID); !errors.Is(err, ErrNotProvisioned) {
		t.Fatalf("expected not provisioned, got %v", err)
	}
}
