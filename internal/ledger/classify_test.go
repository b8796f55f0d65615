package ledger

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifyTransferResultsAllowsExists(t *testing.T) {
	results := []TransferEventResult{{Index: 0, Result: TransferExists}}
	if err := classifyTransferResults(results, TransferExists); err != nil {
		t.Fatalf("exists must be swallowed as success, got %v", err)
	}
}

func TestClassifyTransferResultsEmptyIsSuccess(t *testing.T) {
	if err := classifyTransferResults(nil, TransferExists); err != nil {
		t.Fatalf("no results means every event was accepted, got %v", err)
	}
}

func TestClassifyTransferResultsExceedsCredits(t *testing.T) {
	results := []TransferEventResult{{Index: 1, Result: TransferExceedsCredits}}
	err := classifyTransferResults(results, TransferExists)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestClassifyTransferResultsConflictCarriesCode(t *testing.T) {
	results := []TransferEventResult{{Index: 2, Result: TransferPendingTransferAlreadyVoided}}
	err := classifyTransferResults(results, TransferExists)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "pending_transfer_already_voided") {
		t.Fatalf("conflict must carry the raw code, got %q", err.Error())
	}
}

func TestClassifyTransferResultsTotalOverCodeSpace(t *testing.T) {
	// Every code maps to exactly one outcome with no allowed set.
	for code := TransferOK; code <= TransferResultUnknown; code++ {
		err := classifyTransferResults([]TransferEventResult{{Result: code}})
		switch code {
		case TransferOK:
			if err != nil {
				t.Fatalf("code %s: expected accept, got %v", code, err)
			}
		case TransferExceedsCredits:
			if !errors.Is(err, ErrInsufficientFunds) {
				t.Fatalf("code %s: expected insufficient funds, got %v", code, err)
			}
		default:
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("code %s: expected conflict, got %v", code, err)
			}
		}
	}
}

func TestClassifyAccountResults(t *testing.T) {
	if err := classifyAccountResults([]AccountEventResult{{Result: AccountExists}}, AccountExists); err != nil {
		t.Fatalf("exists must be swallowed, got %v", err)
	}

	err := classifyAccountResults([]AccountEventResult{{Result: AccountExistsWithDifferentFields}}, AccountExists)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
