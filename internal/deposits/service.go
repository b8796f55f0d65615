package deposits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
	"github.com/pesaflow/pesaflow/internal/notification"
)

// ErrAlreadyResolved indicates a callback arrived for a deposit that was
// already settled with the opposite verdict.
var ErrAlreadyResolved = errors.New("deposit already resolved")

// Service drives the deposit lifecycle. Funds move clearing -> wallet as a
// pending transfer when the STK push goes out, then the provider callback
// either posts or voids the reservation. Because the post and void transfer
// ids are fixed at initiation, replayed callbacks resolve to the engine's
// idempotent success path instead of double-settling.
type Service struct {
	repo     Repository
	users    identity.Repository
	ledger   *ledger.Client
	gateway  Gateway
	notifier notification.Notifier
}

// NewService constructs a deposit service.
func NewService(repo Repository, users identity.Repository, ledgerClient *ledger.Client, gateway Gateway, notifier notification.Notifier) *Service {
	return &Service{repo: repo, users: users, ledger: ledgerClient, gateway: gateway, notifier: notifier}
}

// InitiateInput captures a deposit request from the mobile app.
type InitiateInput struct {
	UserID string
	Amount uint64
}

// Initiate pushes an STK prompt to the user's phone and reserves the amount
// on the ledger as a pending transfer awaiting the provider callback.
func (s *Service) Initiate(ctx context.Context, input InitiateInput) (Deposit, error) {
	if input.Amount == 0 {
		return Deposit{}, fmt.Errorf("amount must be positive")
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return Deposit{}, err
	}

	push, err := s.gateway.InitiateSTKPush(ctx, PushRequest{Phone: user.Phone, Amount: input.Amount})
	if err != nil {
		return Deposit{}, fmt.Errorf("initiate stk push: %w", err)
	}

	dep := Deposit{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		Amount:            input.Amount,
		Status:            StatusPendingCallback,
		CheckoutRequestID: push.CheckoutRequestID,
		MerchantRequestID: push.MerchantRequestID,
		PendingTransferID: ledger.NextID(),
		PostTransferID:    ledger.NextID(),
		VoidTransferID:    ledger.NextID(),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, dep); err != nil {
		return Deposit{}, err
	}

	err = s.ledger.TwoPhasePending(ctx, dep.PendingTransferID,
		ledger.ClearingAccountID, user.LedgerAccountID,
		input.Amount, ledger.TransferCodeDeposit)
	if err != nil {
		return Deposit{}, err
	}
	return dep, nil
}

// Confirm settles a successful provider callback: the reservation is posted
// and the deposit marked completed. Confirming an already completed deposit
// is a no-op.
func (s *Service) Confirm(ctx context.Context, checkoutRequestID, receipt string, payload []byte) (Deposit, error) {
	dep, err := s.repo.FindByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		return Deposit{}, err
	}
	switch dep.Status {
	case StatusCompleted:
		return dep, nil
	case StatusFailed:
		return Deposit{}, fmt.Errorf("confirm deposit %s: %w", dep.ID, ErrAlreadyResolved)
	}

	err = s.ledger.TwoPhasePost(ctx, dep.PostTransferID, dep.PendingTransferID, ledger.TransferCodeDeposit)
	if err != nil {
		return Deposit{}, err
	}

	if len(payload) > 0 {
		if err := s.repo.StoreCallbackPayload(ctx, checkoutRequestID, payload); err != nil {
			return Deposit{}, err
		}
	}
	if err := s.repo.UpdateStatus(ctx, checkoutRequestID, StatusCompleted, receipt); err != nil {
		return Deposit{}, err
	}
	dep.Status = StatusCompleted
	dep.Receipt = receipt

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindDepositConfirmed,
			Destination: dep.UserID,
			Body:        fmt.Sprintf("Your deposit of %d cents is confirmed", dep.Amount),
		})
	}
	return dep, nil
}

// Fail settles a rejected or expired provider callback: the reservation is
// voided and the deposit marked failed. Failing an already failed deposit
// is a no-op.
func (s *Service) Fail(ctx context.Context, checkoutRequestID string, payload []byte) (Deposit, error) {
	dep, err := s.repo.FindByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		return Deposit{}, err
	}
	switch dep.Status {
	case StatusFailed:
		return dep, nil
	case StatusCompleted:
		return Deposit{}, fmt.Errorf("fail deposit %s: %w", dep.ID, ErrAlreadyResolved)
	}

	err = s.ledger.TwoPhaseVoid(ctx, dep.VoidTransferID, dep.PendingTransferID, ledger.TransferCodeDeposit)
	if err != nil {
		return Deposit{}, err
	}

	if len(payload) > 0 {
		if err := s.repo.StoreCallbackPayload(ctx, checkoutRequestID, payload); err != nil {
			return Deposit{}, err
		}
	}
	if err := s.repo.UpdateStatus(ctx, checkoutRequestID, StatusFailed, ""); err != nil {
		return Deposit{}, err
	}
	dep.Status = StatusFailed
	return dep, nil
}
