package ledger

import (
	"context"
	"sync"
)

type pendingState uint8

const (
	pendingOpen pendingState = iota
	pendingPosted
	pendingVoided
)

// inMemoryEngine is a concurrency-safe engine double for unit tests and
// dev mode. It mirrors the real engine's verdict semantics: per-event
// result codes, idempotent duplicates, overdraft rejection, linked-chain
// all-or-nothing application, and the two-phase transfer state machine.
type inMemoryEngine struct {
	mu        sync.Mutex
	accounts  map[Uint128]*Account
	transfers map[Uint128]Transfer
	pending   map[Uint128]pendingState
}

// NewInMemoryEngine creates an empty in-memory engine.
func NewInMemoryEngine() Engine {
	return &inMemoryEngine{
		accounts:  make(map[Uint128]*Account),
		transfers: make(map[Uint128]Transfer),
		pending:   make(map[Uint128]pendingState),
	}
}

func (e *inMemoryEngine) CreateAccounts(_ context.Context, accounts []Account) ([]AccountEventResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var results []AccountEventResult
	for i, a := range accounts {
		result := e.createAccount(a)
		if result != AccountOK {
			results = append(results, AccountEventResult{Index: uint32(i), Result: result})
		}
	}
	return results, nil
}

func (e *inMemoryEngine) createAccount(a Account) CreateAccountResult {
	switch {
	case a.ID.IsZero():
		return AccountIDMustNotBeZero
	case a.Ledger == 0:
		return AccountLedgerMustNotBeZero
	case a.Code == 0:
		return AccountCodeMustNotBeZero
	}

	if prev, ok := e.accounts[a.ID]; ok {
		if prev.Ledger == a.Ledger && prev.Code == a.Code && prev.Flags == a.Flags {
			return AccountExists
		}
		return AccountExistsWithDifferentFields
	}

	// Balances always start at zero, whatever the caller sent.
	e.accounts[a.ID] = &Account{ID: a.ID, Ledger: a.Ledger, Code: a.Code, Flags: a.Flags}
	return AccountOK
}

func (e *inMemoryEngine) CreateTransfers(_ context.Context, transfers []Transfer) ([]TransferEventResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var results []TransferEventResult
	start := 0
	for start < len(transfers) {
		end := start
		for end < len(transfers) && transfers[end].Flags&TransferLinked != 0 {
			end++
		}
		if end == len(transfers) {
			// Chain left open at the end of the batch.
			for k := start; k < len(transfers); k++ {
				results = append(results, TransferEventResult{Index: uint32(k), Result: TransferLinkedEventFailed})
			}
			break
		}

		results = append(results, e.applyChain(transfers, start, end)...)
		start = end + 1
	}
	return results, nil
}

// applyChain applies transfers[start..end] atomically. A duplicate with
// identical fields is a harmless no-op and does not break the chain; any
// real failure rolls the whole chain back and marks the other members
// linked_event_failed.
func (e *inMemoryEngine) applyChain(transfers []Transfer, start, end int) []TransferEventResult {
	jl := newJournal(e)
	verdicts := make([]CreateTransferResult, end-start+1)
	failedAt := -1

	for k := start; k <= end; k++ {
		verdict := e.applyTransfer(jl, transfers[k])
		verdicts[k-start] = verdict
		if verdict != TransferOK && verdict != TransferExists {
			failedAt = k
			break
		}
	}

	var results []TransferEventResult
	if failedAt >= 0 {
		jl.revert()
		for k := start; k <= end; k++ {
			result := TransferLinkedEventFailed
			if k == failedAt {
				result = verdicts[k-start]
			}
			results = append(results, TransferEventResult{Index: uint32(k), Result: result})
		}
		return results
	}

	for k := start; k <= end; k++ {
		if verdicts[k-start] != TransferOK {
			results = append(results, TransferEventResult{Index: uint32(k), Result: verdicts[k-start]})
		}
	}
	return results
}

func (e *inMemoryEngine) applyTransfer(jl *journal, t Transfer) CreateTransferResult {
	if t.ID.IsZero() {
		return TransferIDMustNotBeZero
	}
	if prev, ok := e.transfers[t.ID]; ok {
		if prev == t {
			return TransferExists
		}
		return TransferExistsWithDifferentFields
	}

	switch {
	case t.Flags&TransferPostPending != 0:
		return e.resolvePending(jl, t, true)
	case t.Flags&TransferVoidPending != 0:
		return e.resolvePending(jl, t, false)
	}

	if t.DebitAccountID == t.CreditAccountID {
		return TransferAccountsMustBeDifferent
	}
	debit, ok := e.accounts[t.DebitAccountID]
	if !ok {
		return TransferDebitAccountNotFound
	}
	credit, ok := e.accounts[t.CreditAccountID]
	if !ok {
		return TransferCreditAccountNotFound
	}
	if t.Ledger != debit.Ledger || t.Ledger != credit.Ledger {
		return TransferLedgerMismatch
	}

	// No overdraft: total debits including this transfer must stay within
	// total credits, pending reservations counted on both sides.
	if debit.Flags&AccountDebitsMustNotExceedCredits != 0 {
		if debit.DebitsPosted+debit.DebitsPending+t.Amount > debit.CreditsPosted+debit.CreditsPending {
			return TransferExceedsCredits
		}
	}

	jl.touch(debit)
	jl.touch(credit)
	if t.Flags&TransferPending != 0 {
		debit.DebitsPending += t.Amount
		credit.CreditsPending += t.Amount
		jl.setPending(t.ID, pendingOpen)
	} else {
		debit.DebitsPosted += t.Amount
		credit.CreditsPosted += t.Amount
	}
	jl.insertTransfer(t)
	return TransferOK
}

// resolvePending settles (post=true) or cancels (post=false) a pending
// transfer. Accounts are resolved from the referenced pending transfer;
// both terminal states reject any further resolution.
func (e *inMemoryEngine) resolvePending(jl *journal, t Transfer, post bool) CreateTransferResult {
	reserved, ok := e.transfers[t.PendingID]
	if t.PendingID.IsZero() || !ok {
		return TransferPendingTransferNotFound
	}
	if reserved.Flags&TransferPending == 0 {
		return TransferPendingTransferNotPending
	}
	switch e.pending[t.PendingID] {
	case pendingPosted:
		return TransferPendingTransferAlreadyPosted
	case pendingVoided:
		return TransferPendingTransferAlreadyVoided
	}

	amount := t.Amount
	if post {
		if amount == AmountMax {
			amount = reserved.Amount
		}
		if amount > reserved.Amount {
			return TransferExceedsPendingAmount
		}
	}

	debit := e.accounts[reserved.DebitAccountID]
	credit := e.accounts[reserved.CreditAccountID]
	jl.touch(debit)
	jl.touch(credit)

	debit.DebitsPending -= reserved.Amount
	credit.CreditsPending -= reserved.Amount
	if post {
		debit.DebitsPosted += amount
		credit.CreditsPosted += amount
		jl.setPending(t.PendingID, pendingPosted)
	} else {
		jl.setPending(t.PendingID, pendingVoided)
	}
	jl.insertTransfer(t)
	return TransferOK
}

func (e *inMemoryEngine) LookupAccounts(_ context.Context, ids []Uint128) ([]Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var found []Account
	for _, id := range ids {
		if a, ok := e.accounts[id]; ok {
			found = append(found, *a)
		}
	}
	return found, nil
}

type pendingSnapshot struct {
	state   pendingState
	existed bool
}

// journal records enough state to undo a partially applied chain.
type journal struct {
	engine   *inMemoryEngine
	balances map[Uint128]Account
	inserted []Uint128
	pending  map[Uint128]pendingSnapshot
}

func newJournal(e *inMemoryEngine) *journal {
	return &journal{
		engine:   e,
		balances: make(map[Uint128]Account),
		pending:  make(map[Uint128]pendingSnapshot),
	}
}

func (j *journal) touch(a *Account) {
	if _, ok := j.balances[a.ID]; !ok {
		j.balances[a.ID] = *a
	}
}

func (j *journal) insertTransfer(t Transfer) {
	j.engine.transfers[t.ID] = t
	j.inserted = append(j.inserted, t.ID)
}

func (j *journal) setPending(id Uint128, state pendingState) {
	if _, ok := j.pending[id]; !ok {
		prior, existed := j.engine.pending[id]
		j.pending[id] = pendingSnapshot{state: prior, existed: existed}
	}
	j.engine.pending[id] = state
}

func (j *journal) revert() {
	for id, snapshot := range j.balances {
		*j.engine.accounts[id] = snapshot
	}
	for _, id := range j.inserted {
		delete(j.engine.transfers, id)
	}
	for id, prior := range j.pending {
		if prior.existed {
			j.engine.pending[id] = prior.state
		} else {
			delete(j.engine.pending, id)
		}
	}
}
