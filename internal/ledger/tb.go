package ledger

import (
	"context"
	"encoding/binary"
	"fmt"

	tigerbeetle "github.com/tigerbeetle/tigerbeetle-go"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

// tigerBeetleEngine adapts the TigerBeetle client to the Engine interface.
// This is the only file that imports the binding; the rest of the package
// speaks the closed types defined in engine.go.
type tigerBeetleEngine struct {
	client tigerbeetle.Client
}

// NewTigerBeetleEngine connects to a TigerBeetle cluster. The returned
// closer releases the underlying client.
func NewTigerBeetleEngine(clusterID uint64, addresses []string) (Engine, func(), error) {
	client, err := tigerbeetle.NewClient(tbtypes.ToUint128(clusterID), addresses)
	if err != nil {
		return nil, nil, fmt.Errorf("tigerbeetle client: %w", err)
	}
	return &tigerBeetleEngine{client: client}, func() { client.Close() }, nil
}

func (e *tigerBeetleEngine) CreateAccounts(ctx context.Context, accounts []Account) ([]AccountEventResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]tbtypes.Account, len(accounts))
	for i, a := range accounts {
		batch[i] = tbtypes.Account{
			ID:     toTBID(a.ID),
			Ledger: a.Ledger,
			Code:   a.Code,
			Flags: tbtypes.AccountFlags{
				DebitsMustNotExceedCredits: a.Flags&AccountDebitsMustNotExceedCredits != 0,
			}.ToUint16(),
		}
	}

	raw, err := e.client.CreateAccounts(batch)
	if err != nil {
		return nil, fmt.Errorf("tigerbeetle create accounts: %w", err)
	}

	results := make([]AccountEventResult, len(raw))
	for i, r := range raw {
		results[i] = AccountEventResult{Index: r.Index, Result: fromTBAccountResult(r.Result)}
	}
	return results, nil
}

func (e *tigerBeetleEngine) CreateTransfers(ctx context.Context, transfers []Transfer) ([]TransferEventResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]tbtypes.Transfer, len(transfers))
	for i, t := range transfers {
		batch[i] = tbtypes.Transfer{
			ID:              toTBID(t.ID),
			DebitAccountID:  toTBID(t.DebitAccountID),
			CreditAccountID: toTBID(t.CreditAccountID),
			Amount:          toTBAmount(t.Amount),
			PendingID:       toTBID(t.PendingID),
			Timeout:         t.Timeout,
			Ledger:          t.Ledger,
			Code:            t.Code,
			Flags: tbtypes.TransferFlags{
				Linked:              t.Flags&TransferLinked != 0,
				Pending:             t.Flags&TransferPending != 0,
				PostPendingTransfer: t.Flags&TransferPostPending != 0,
				VoidPendingTransfer: t.Flags&TransferVoidPending != 0,
			}.ToUint16(),
		}
	}

	raw, err := e.client.CreateTransfers(batch)
	if err != nil {
		return nil, fmt.Errorf("tigerbeetle create transfers: %w", err)
	}

	results := make([]TransferEventResult, len(raw))
	for i, r := range raw {
		results[i] = TransferEventResult{Index: r.Index, Result: fromTBTransferResult(r.Result)}
	}
	return results, nil
}

func (e *tigerBeetleEngine) LookupAccounts(ctx context.Context, ids []Uint128) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]tbtypes.Uint128, len(ids))
	for i, id := range ids {
		batch[i] = toTBID(id)
	}

	raw, err := e.client.LookupAccounts(batch)
	if err != nil {
		return nil, fmt.Errorf("tigerbeetle lookup accounts: %w", err)
	}

	accounts := make([]Account, len(raw))
	for i, a := range raw {
		accounts[i] = Account{
			ID:             fromTBID(a.ID),
			DebitsPending:  fromTBAmount(a.DebitsPending),
			DebitsPosted:   fromTBAmount(a.DebitsPosted),
			CreditsPending: fromTBAmount(a.CreditsPending),
			CreditsPosted:  fromTBAmount(a.CreditsPosted),
			Ledger:         a.Ledger,
			Code:           a.Code,
			Flags:          fromTBAccountFlags(a.Flags),
		}
	}
	return accounts, nil
}

func toTBID(u Uint128) tbtypes.Uint128 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], u.Lo)
	binary.LittleEndian.PutUint64(b[8:16], u.Hi)
	return tbtypes.Uint128(b)
}

func fromTBID(v tbtypes.Uint128) Uint128 {
	b := [16]byte(v)
	return Uint128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// toTBAmount widens a 64-bit amount; the full-pending sentinel becomes the
// engine's 128-bit maximum.
func toTBAmount(amount uint64) tbtypes.Uint128 {
	if amount == AmountMax {
		return tigerbeetle.AmountMax
	}
	return tbtypes.ToUint128(amount)
}

// fromTBAmount narrows an engine amount, saturating at 64 bits. Wallet
// balances in cents never approach that bound.
func fromTBAmount(v tbtypes.Uint128) uint64 {
	b := [16]byte(v)
	if binary.LittleEndian.Uint64(b[8:16]) != 0 {
		return AmountMax
	}
	return binary.LittleEndian.Uint64(b[0:8])
}

func fromTBAccountFlags(flags uint16) AccountFlags {
	var out AccountFlags
	if (tbtypes.AccountFlags{DebitsMustNotExceedCredits: true}).ToUint16()&flags != 0 {
		out |= AccountDebitsMustNotExceedCredits
	}
	return out
}

func fromTBAccountResult(result tbtypes.CreateAccountResult) CreateAccountResult {
	switch result {
	case tbtypes.AccountOK:
		return AccountOK
	case tbtypes.AccountLinkedEventFailed:
		return AccountLinkedEventFailed
	case tbtypes.AccountIDMustNotBeZero:
		return AccountIDMustNotBeZero
	case tbtypes.AccountLedgerMustNotBeZero:
		return AccountLedgerMustNotBeZero
	case tbtypes.AccountCodeMustNotBeZero:
		return AccountCodeMustNotBeZero
	case tbtypes.AccountExists:
		return AccountExists
	case tbtypes.AccountExistsWithDifferentFlags,
		tbtypes.AccountExistsWithDifferentUserData128,
		tbtypes.AccountExistsWithDifferentUserData64,
		tbtypes.AccountExistsWithDifferentUserData32,
		tbtypes.AccountExistsWithDifferentLedger,
		tbtypes.AccountExistsWithDifferentCode:
		return AccountExistsWithDifferentFields
	default:
		return AccountResultUnknown
	}
}

func fromTBTransferResult(result tbtypes.CreateTransferResult) CreateTransferResult {
	switch result {
	case tbtypes.TransferOK:
		return TransferOK
	case tbtypes.TransferLinkedEventFailed:
		return TransferLinkedEventFailed
	case tbtypes.TransferIDMustNotBeZero:
		return TransferIDMustNotBeZero
	case tbtypes.TransferDebitAccountNotFound:
		return TransferDebitAccountNotFound
	case tbtypes.TransferCreditAccountNotFound:
		return TransferCreditAccountNotFound
	case tbtypes.TransferAccountsMustBeDifferent:
		return TransferAccountsMustBeDifferent
	case tbtypes.TransferTransferMustHaveTheSameLedgerAsAccounts:
		return TransferLedgerMismatch
	case tbtypes.TransferExceedsCredits:
		return TransferExceedsCredits
	case tbtypes.TransferPendingTransferNotFound:
		return TransferPendingTransferNotFound
	case tbtypes.TransferPendingTransferNotPending:
		return TransferPendingTransferNotPending
	case tbtypes.TransferPendingTransferAlreadyPosted:
		return TransferPendingTransferAlreadyPosted
	case tbtypes.TransferPendingTransferAlreadyVoided:
		return TransferPendingTransferAlreadyVoided
	case tbtypes.TransferExceedsPendingTransferAmount:
		return TransferExceedsPendingAmount
	case tbtypes.TransferExists:
		return TransferExists
	case tbtypes.TransferExistsWithDifferentFlags,
		tbtypes.TransferExistsWithDifferentDebitAccountID,
		tbtypes.TransferExistsWithDifferentCreditAccountID,
		tbtypes.TransferExistsWithDifferentAmount,
		tbtypes.TransferExistsWithDifferentPendingID,
		tbtypes.TransferExistsWithDifferentUserData128,
		tbtypes.TransferExistsWithDifferentUserData64,
		tbtypes.TransferExistsWithDifferentUserData32,
		tbtypes.TransferExistsWithDifferentTimeout,
		tbtypes.TransferExistsWithDifferentCode:
		return TransferExistsWithDifferentFields
	default:
		return TransferResultUnknown
	}
}
