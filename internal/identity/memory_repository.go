package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byPhone map[string]User
}

// NewMemoryRepository builds an in-memory user store for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{byPhone: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPhone[user.Phone]; exists {
		return ErrPhoneExists
	}
	r.byPhone[user.Phone] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.byPhone {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byPhone[phone]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}
