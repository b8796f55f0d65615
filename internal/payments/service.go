package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
	"github.com/pesaflow/pesaflow/internal/notification"
)

// ErrSelfTransfer indicates sender and recipient are the same wallet.
var ErrSelfTransfer = errors.New("cannot transfer to own wallet")

// Service posts P2P transfers against the ledger engine. Principal and fee
// move as one linked batch so the sender is never charged a fee for a
// payment that did not happen.
type Service struct {
	ledger   *ledger.Client
	users    identity.Repository
	notifier notification.Notifier
	fee      uint64
}

// NewService constructs a payment service charging the given fee per transfer.
func NewService(ledgerClient *ledger.Client, users identity.Repository, notifier notification.Notifier, fee uint64) *Service {
	return &Service{ledger: ledgerClient, users: users, notifier: notifier, fee: fee}
}

// TransferInput captures the data needed to move funds between wallets.
type TransferInput struct {
	FromUserID string
	ToUserID   string
	Amount     uint64
}

// TransferResult describes the ledger outcome of a P2P transfer.
type TransferResult struct {
	TransferID  string
	FeeAmount   uint64
	CompletedAt time.Time
}

// Transfer moves Amount between two wallets plus the configured fee into
// the revenue account, atomically. Taxonomy errors from the ledger pass
// through for the handler to map.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if input.Amount == 0 {
		return TransferResult{}, fmt.Errorf("amount must be positive")
	}
	if input.FromUserID == input.ToUserID {
		return TransferResult{}, ErrSelfTransfer
	}

	sender, err := s.users.FindByID(ctx, input.FromUserID)
	if err != nil {
		return TransferResult{}, err
	}
	recipient, err := s.users.FindByID(ctx, input.ToUserID)
	if err != nil {
		return TransferResult{}, err
	}

	principalID := ledger.NextID()
	principal := ledger.TransferSpec{
		ID:              principalID,
		DebitAccountID:  sender.LedgerAccountID,
		CreditAccountID: recipient.LedgerAccountID,
		Amount:          input.Amount,
		Code:            ledger.TransferCodeP2P,
	}

	if s.fee == 0 {
		err = s.ledger.CreateTransfer(ctx, principal)
	} else {
		err = s.ledger.CreateLinkedTransfers(ctx, []ledger.TransferSpec{
			principal,
			{
				ID:              ledger.NextID(),
				DebitAccountID:  sender.LedgerAccountID,
				CreditAccountID: ledger.FeesAccountID,
				Amount:          s.fee,
				Code:            ledger.TransferCodeFee,
			},
		})
	}
	if err != nil {
		return TransferResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindP2PReceived,
			Destination: recipient.ID,
			Body:        fmt.Sprintf("You received %d cents from %s", input.Amount, sender.FullName),
		})
	}

	return TransferResult{
		TransferID:  principalID.String(),
		FeeAmount:   s.fee,
		CompletedAt: time.Now().UTC(),
	}, nil
}
