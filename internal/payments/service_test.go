package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
	"github.com/pesaflow/pesaflow/internal/wallet"
)

type fixture struct {
	payments *Service
	users    *identity.Service
	wallets  *wallet.Service
	ledger   *ledger.Client
}

func newFixture(t *testing.T, fee uint64) *fixture {
	t.Helper()
	repo := identity.NewMemoryRepository()
	ledgerClient := ledger.NewClient(ledger.NewInMemoryEngine())
	if err := ledger.EnsureSystemAccounts(context.Background(), ledgerClient); err != nil {
		t.Fatalf("ensure system accounts: %v", err)
	}
	return &fixture{
		payments: NewService(ledgerClient, repo, nil, fee),
		users:    identity.NewService(repo),
		wallets:  wallet.NewService(repo, ledgerClient),
		ledger:   ledgerClient,
	}
}

func (f *fixture) newWallet(t *testing.T, phone string, funded uint64) identity.User {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.Register(ctx, identity.RegisterInput{FullName: "User " + phone, Phone: phone, PIN: "1234"})
	if err != nil {
		t.Fatalf("register %s: %v", phone, err)
	}
	if _, err := f.wallets.Provision(ctx, user.ID); err != nil {
		t.Fatalf("provision %s: %v", phone, err)
	}
	if funded > 0 {
		err := f.ledger.CreateTransfer(ctx, ledger.TransferSpec{
			ID:              ledger.NextID(),
			DebitAccountID:  ledger.ClearingAccountID,
			CreditAccountID: user.LedgerAccountID,
			Amount:          funded,
			Code:            ledger.TransferCodeDeposit,
		})
		if err != nil {
			t.Fatalf("fund %s: %v", phone, err)
		}
	}
	return user
}

func (f *fixture) balance(t *testing.T, user identity.User) ledger.Account {
	t.Helper()
	account, ok, err := f.ledger.LookupAccount(context.Background(), user.LedgerAccountID)
	if err != nil || !ok {
		t.Fatalf("lookup wallet: ok=%v err=%v", ok, err)
	}
	return account
}

func TestTransferMovesPrincipalAndFee(t *testing.T) {
	f := newFixture(t, 5)
	sender := f.newWallet(t, "+254700000020", 1_000)
	recipient := f.newWallet(t, "+254700000021", 0)

	res, err := f.payments.Transfer(context.Background(), TransferInput{
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Amount:     100,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if res.TransferID == "" || res.FeeAmount != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if got := f.balance(t, sender).DebitsPosted; got != 105 {
		t.Fatalf("expected sender debited 105, got %d", got)
	}
	if got := f.balance(t, recipient).CreditsPosted; got != 100 {
		t.Fatalf("expected recipient credited 100, got %d", got)
	}

	fees, ok, err := f.ledger.LookupAccount(context.Background(), ledger.FeesAccountID)
	if err != nil || !ok {
		t.Fatalf("lookup fees: ok=%v err=%v", ok, err)
	}
	if fees.CreditsPosted != 5 {
		t.Fatalf("expected fee collected, got %d", fees.CreditsPosted)
	}
}

func TestTransferFailsAtomicallyWhenFeeOverdraws(t *testing.T) {
	f := newFixture(t, 5)
	sender := f.newWallet(t, "+254700000022", 100)
	recipient := f.newWallet(t, "+254700000023", 0)

	// Principal alone fits; principal plus fee does not.
	_, err := f.payments.Transfer(context.Background(), TransferInput{
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Amount:     100,
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if got := f.balance(t, sender).DebitsPosted; got != 0 {
		t.Fatalf("sender must be untouched, got %d", got)
	}
	if got := f.balance(t, recipient).CreditsPosted; got != 0 {
		t.Fatalf("recipient must be untouched, got %d", got)
	}
}

func TestTransferWithoutFeeIsSingleLeg(t *testing.T) {
	f := newFixture(t, 0)
	sender := f.newWallet(t, "+254700000024", 100)
	recipient := f.newWallet(t, "+254700000025", 0)

	if _, err := f.payments.Transfer(context.Background(), TransferInput{
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Amount:     100,
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := f.balance(t, sender).DebitsPosted; got != 100 {
		t.Fatalf("expected sender debited exactly the principal, got %d", got)
	}
}

func TestTransferRejectsSelfAndZero(t *testing.T) {
	f := newFixture(t, 5)
	sender := f.newWallet(t, "+254700000026", 100)

	if _, err := f.payments.Transfer(context.Background(), TransferInput{
		FromUserID: sender.ID,
		ToUserID:   sender.ID,
		Amount:     10,
	}); !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got %v", err)
	}

	if _, err := f.payments.Transfer(context.Background(), TransferInput{
		FromUserID: sender.ID,
		ToUserID:   "someone-else",
		Amount:     0,
	}); err == nil {
		t.Fatal("expected zero amount rejection")
	}
}
