package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pesaflow/pesaflow/internal/ledger"
)

// Service manages user lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to onboard a user.
type RegisterInput struct {
	FullName string
	Phone    string
	PIN      string
}

// Register creates a user with a hashed PIN and a freshly assigned ledger
// account identifier. The engine account is provisioned separately by the
// wallet service.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if input.FullName == "" {
		return User{}, errors.New("full name is required")
	}
	if input.Phone == "" {
		return User{}, errors.New("phone number is required")
	}
	if len(input.PIN) < 4 {
		return User{}, errors.New("PIN must be at least 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:              uuid.New().String(),
		FullName:        input.FullName,
		Phone:           input.Phone,
		KYCStatus:       KYCPending,
		PINHash:         hash,
		LedgerAccountID: ledger.NextID(),
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// VerifyPIN checks the supplied PIN against the stored hash.
func (s *Service) VerifyPIN(ctx context.Context, phone, pin string) (User, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte(pin)); err != nil {
		return User{}, errors.New("invalid PIN")
	}
	return user, nil
}

// Get returns a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
