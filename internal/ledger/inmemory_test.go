package ledger

import (
	"context"
	"testing"
)

func TestInMemoryEngineRejectsZeroFields(t *testing.T) {
	e := NewInMemoryEngine()
	ctx := context.Background()

	results, err := e.CreateAccounts(ctx, []Account{
		{ID: Uint128{}, Ledger: LedgerKES, Code: AccountCodeWallet},
		{ID: NextID(), Ledger: 0, Code: AccountCodeWallet},
		{ID: NextID(), Ledger: LedgerKES, Code: 0},
	})
	if err != nil {
		t.Fatalf("create accounts: %v", err)
	}
	want := []CreateAccountResult{AccountIDMustNotBeZero, AccountLedgerMustNotBeZero, AccountCodeMustNotBeZero}
	if len(results) != len(want) {
		t.Fatalf("expected %d verdicts, got %d", len(want), len(results))
	}
	for i, r := range results {
		if r.Index != uint32(i) || r.Result != want[i] {
			t.Fatalf("verdict %d: got index=%d result=%s", i, r.Index, r.Result)
		}
	}
}

func TestInMemoryEngineOpenLinkedChainFails(t *testing.T) {
	e := NewInMemoryEngine()
	ctx := context.Background()
	a, b := NextID(), NextID()
	if _, err := e.CreateAccounts(ctx, []Account{
		{ID: a, Ledger: LedgerKES, Code: AccountCodeSystem},
		{ID: b, Ledger: LedgerKES, Code: AccountCodeSystem},
	}); err != nil {
		t.Fatalf("create accounts: %v", err)
	}

	// A batch that ends while the chain is still linked is malformed.
	results, err := e.CreateTransfers(ctx, []Transfer{
		{ID: NextID(), DebitAccountID: a, CreditAccountID: b, Amount: 10, Ledger: LedgerKES, Code: TransferCodeP2P, Flags: TransferLinked},
	})
	if err != nil {
		t.Fatalf("create transfers: %v", err)
	}
	if len(results) != 1 || results[0].Result != TransferLinkedEventFailed {
		t.Fatalf("expected linked_event_failed, got %v", results)
	}

	accounts, err := e.LookupAccounts(ctx, []Uint128{a})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if accounts[0].DebitsPosted != 0 {
		t.Fatalf("malformed chain must not apply, got %d", accounts[0].DebitsPosted)
	}
}

func TestInMemoryEngineChainRollbackRestoresState(t *testing.T) {
	e := NewInMemoryEngine()
	ctx := context.Background()
	src, dst := NextID(), NextID()
	if _, err := e.CreateAccounts(ctx, []Account{
		{ID: src, Ledger: LedgerKES, Code: AccountCodeSystem},
		{ID: dst, Ledger: LedgerKES, Code: AccountCodeSystem},
	}); err != nil {
		t.Fatalf("create accounts: %v", err)
	}

	goodID := NextID()
	results, err := e.CreateTransfers(ctx, []Transfer{
		{ID: goodID, DebitAccountID: src, CreditAccountID: dst, Amount: 10, Ledger: LedgerKES, Code: TransferCodeP2P, Flags: TransferLinked},
		{ID: NextID(), DebitAccountID: src, CreditAccountID: NextID(), Amount: 5, Ledger: LedgerKES, Code: TransferCodeFee},
	})
	if err != nil {
		t.Fatalf("create transfers: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both members reported, got %v", results)
	}
	if results[0].Result != TransferLinkedEventFailed || results[1].Result != TransferCreditAccountNotFound {
		t.Fatalf("unexpected verdicts: %v", results)
	}

	// The first leg must be fully undone, including its idempotency record:
	// a later resubmission with the same id has to apply, not report exists.
	retry, err := e.CreateTransfers(ctx, []Transfer{
		{ID: goodID, DebitAccountID: src, CreditAccountID: dst, Amount: 10, Ledger: LedgerKES, Code: TransferCodeP2P},
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if len(retry) != 0 {
		t.Fatalf("expected clean apply after rollback, got %v", retry)
	}

	accounts, err := e.LookupAccounts(ctx, []Uint128{src, dst})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	for _, a := range accounts {
		if a.ID == src && a.DebitsPosted != 10 {
			t.Fatalf("expected src debited once, got %d", a.DebitsPosted)
		}
		if a.ID == dst && a.CreditsPosted != 10 {
			t.Fatalf("expected dst credited once, got %d", a.CreditsPosted)
		}
	}
}

func TestInMemoryEngineLookupReturnsOnlyKnownIDs(t *testing.T) {
	e := NewInMemoryEngine()
	ctx := context.Background()
	known := NextID()
	if _, err := e.CreateAccounts(ctx, []Account{{ID: known, Ledger: LedgerKES, Code: AccountCodeWallet}}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	accounts, err := e.LookupAccounts(ctx, []Uint128{NextID(), known, NextID()})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != known {
		t.Fatalf("expected only the known account, got %v", accounts)
	}
}

func TestInMemoryEngineDoubleEntryBalances(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	alice, bob := NextID(), NextID()
	for _, id := range []Uint128{alice, bob} {
		if err := c.CreateAccount(ctx, id, true); err != nil {
			t.Fatalf("create wallet: %v", err)
		}
	}
	fundWallet(t, c, alice, 1_000)
	if err := c.CreateTransfer(ctx, TransferSpec{
		ID: NextID(), DebitAccountID: alice, CreditAccountID: bob, Amount: 250, Code: TransferCodeP2P,
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	var debits, credits uint64
	for _, id := range []Uint128{ClearingAccountID, FeesAccountID, alice, bob} {
		account := mustLookup(t, c, id)
		debits += account.DebitsPosted
		credits += account.CreditsPosted
	}
	if debits != credits {
		t.Fatalf("ledger unbalanced: debits=%d credits=%d", debits, credits)
	}
}
