package ledger

import (
	"context"
	"fmt"
)

const (
	// LedgerKES partitions accounts and transfers by currency (ISO 4217
	// numeric code for the Kenyan shilling). Amounts are integer cents.
	LedgerKES uint32 = 404

	// AccountCodeSystem marks clearing and revenue accounts, which may run
	// a debit balance.
	AccountCodeSystem uint16 = 1000
	// AccountCodeWallet marks end-user wallets, which must never overdraft.
	AccountCodeWallet uint16 = 1100

	// TransferCodeDeposit records a mobile-money deposit from clearing.
	TransferCodeDeposit uint16 = 1
	// TransferCodeP2P records a peer transfer between wallets.
	TransferCodeP2P uint16 = 2
	// TransferCodeFee records a fee collected into the revenue account.
	TransferCodeFee uint16 = 3
)

// TransferSpec describes a transfer to submit. ID is the caller-assigned
// idempotency key: resubmitting the same spec is a no-op success, while
// reusing the ID with different fields is a conflict. A zero Ledger
// defaults to LedgerKES.
type TransferSpec struct {
	ID              Uint128
	DebitAccountID  Uint128
	CreditAccountID Uint128
	Amount          uint64
	Code            uint16
	Flags           TransferFlags
	PendingID       Uint128
	Timeout         uint32
	Ledger          uint32
}

func (s TransferSpec) record() Transfer {
	ledger := s.Ledger
	if ledger == 0 {
		ledger = LedgerKES
	}
	return Transfer{
		ID:              s.ID,
		DebitAccountID:  s.DebitAccountID,
		CreditAccountID: s.CreditAccountID,
		Amount:          s.Amount,
		PendingID:       s.PendingID,
		Timeout:         s.Timeout,
		Ledger:          ledger,
		Code:            s.Code,
		Flags:           s.Flags,
	}
}

// Client issues account and transfer operations against the engine. It is a
// stateless facade over a shared engine handle and is safe for concurrent
// use. Operations return nil, ErrInsufficientFunds, or ErrConflict; raw
// engine codes never escape.
type Client struct {
	engine Engine
}

// NewClient wraps an engine handle.
func NewClient(engine Engine) *Client {
	return &Client{engine: engine}
}

// CreateAccount idempotently creates an account with zero balances. Wallet
// accounts get the wallet code and the no-overdraft flag; system accounts
// get the system code and no flags.
func (c *Client) CreateAccount(ctx context.Context, accountID Uint128, isWallet bool) error {
	code := AccountCodeSystem
	var flags AccountFlags
	if isWallet {
		code = AccountCodeWallet
		flags = AccountDebitsMustNotExceedCredits
	}

	results, err := c.engine.CreateAccounts(ctx, []Account{{
		ID:     accountID,
		Ledger: LedgerKES,
		Code:   code,
		Flags:  flags,
	}})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	// An already-existing account means a previous attempt landed; treat it
	// as success so crashed or timed-out creates can be retried safely.
	return classifyAccountResults(results, AccountExists)
}

// LookupAccount returns the current snapshot of an account, or false if the
// engine does not know the identifier. Matching is by ID, never by position
// in the response.
func (c *Client) LookupAccount(ctx context.Context, accountID Uint128) (Account, bool, error) {
	accounts, err := c.engine.LookupAccounts(ctx, []Uint128{accountID})
	if err != nil {
		return Account{}, false, fmt.Errorf("lookup account: %w", err)
	}
	for _, a := range accounts {
		if a.ID == accountID {
			return a, true, nil
		}
	}
	return Account{}, false, nil
}

// CreateTransfer submits a single transfer. Resubmission with the same ID
// and fields is a no-op success, which makes retry after an ambiguous
// network failure safe.
func (c *Client) CreateTransfer(ctx context.Context, spec TransferSpec) error {
	results, err := c.engine.CreateTransfers(ctx, []Transfer{spec.record()})
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return classifyTransferResults(results, TransferExists)
}

// CreateLinkedTransfers submits an ordered batch that the engine applies
// all-or-nothing. Linkage is resolved here and only here: every member
// except the last gets the linked flag and the last has it cleared,
// whatever the caller set.
func (c *Client) CreateLinkedTransfers(ctx context.Context, specs []TransferSpec) error {
	if len(specs) == 0 {
		return nil
	}

	batch := make([]Transfer, len(specs))
	for i, spec := range specs {
		t := spec.record()
		if i < len(specs)-1 {
			t.Flags |= TransferLinked
		} else {
			t.Flags &^= TransferLinked
		}
		batch[i] = t
	}

	results, err := c.engine.CreateTransfers(ctx, batch)
	if err != nil {
		return fmt.Errorf("create linked transfers: %w", err)
	}
	return classifyTransferResults(results, TransferExists)
}

// TwoPhasePending reserves funds: pending balances move on both accounts
// while posted balances stay untouched. The reservation is settled by
// TwoPhasePost or released by TwoPhaseVoid.
func (c *Client) TwoPhasePending(ctx context.Context, transferID, debit, credit Uint128, amount uint64, code uint16) error {
	return c.CreateTransfer(ctx, TransferSpec{
		ID:              transferID,
		DebitAccountID:  debit,
		CreditAccountID: credit,
		Amount:          amount,
		Code:            code,
		Flags:           TransferPending,
	})
}

// TwoPhasePost settles a prior pending transfer in full, moving the
// reserved amount to posted balances. Account fields stay zero; the engine
// resolves them from the pending transfer.
func (c *Client) TwoPhasePost(ctx context.Context, postID, pendingID Uint128, code uint16) error {
	return c.CreateTransfer(ctx, TransferSpec{
		ID:        postID,
		Amount:    AmountMax,
		PendingID: pendingID,
		Code:      code,
		Flags:     TransferPostPending,
	})
}

// TwoPhaseVoid cancels a prior pending transfer, releasing the reservation
// without posting anything.
func (c *Client) TwoPhaseVoid(ctx context.Context, voidID, pendingID Uint128, code uint16) error {
	return c.CreateTransfer(ctx, TransferSpec{
		ID:        voidID,
		Amount:    0,
		PendingID: pendingID,
		Code:      code,
		Flags:     TransferVoidPending,
	})
}
