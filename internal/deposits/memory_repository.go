package deposits

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory deposit store for development and tests.
type MemoryRepository struct {
	mu         sync.RWMutex
	byCheckout map[string]Deposit
}

// NewMemoryRepository constructs an empty in-memory deposit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byCheckout: make(map[string]Deposit)}
}

func (r *MemoryRepository) Create(_ context.Context, dep Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCheckout[dep.CheckoutRequestID]; exists {
		return ErrDuplicateCheckoutRequest
	}
	dep.UpdatedAt = dep.CreatedAt
	r.byCheckout[dep.CheckoutRequestID] = dep
	return nil
}

func (r *MemoryRepository) FindByCheckoutRequestID(_ context.Context, checkoutRequestID string) (Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dep, ok := r.byCheckout[checkoutRequestID]
	if !ok {
		return Deposit{}, ErrDepositNotFound
	}
	return dep, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, checkoutRequestID, status, receipt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dep, ok := r.byCheckout[checkoutRequestID]
	if !ok {
		return ErrDepositNotFound
	}
	dep.Status = status
	if receipt != "" {
		dep.Receipt = receipt
	}
	dep.UpdatedAt = time.Now().UTC()
	r.byCheckout[checkoutRequestID] = dep
	return nil
}

func (r *MemoryRepository) StoreCallbackPayload(_ context.Context, checkoutRequestID string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dep, ok := r.byCheckout[checkoutRequestID]
	if !ok {
		return ErrDepositNotFound
	}
	dep.UpdatedAt = time.Now().UTC()
	r.byCheckout[checkoutRequestID] = dep
	return nil
}
