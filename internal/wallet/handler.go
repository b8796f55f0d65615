package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/identity"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type balanceResponse struct {
	UserID         string `json:"user_id"`
	AccountID      string `json:"account_id"`
	Available      uint64 `json:"available_cents"`
	CreditsPosted  uint64 `json:"credits_posted"`
	CreditsPending uint64 `json:"credits_pending"`
	DebitsPosted   uint64 `json:"debits_posted"`
	DebitsPending  uint64 `json:"debits_pending"`
	AsOf           string `json:"as_of"`
}

// Balance returns the wallet balance snapshot.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID := c.Params("userId")
	balance, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNotFound), errors.Is(err, ErrNotProvisioned):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(balanceResponse{
		UserID:         balance.UserID,
		AccountID:      balance.AccountID,
		Available:      balance.Available,
		CreditsPosted:  balance.CreditsPosted,
		CreditsPending: balance.CreditsPending,
		DebitsPosted:   balance.DebitsPosted,
		DebitsPending:  balance.DebitsPending,
		AsOf:           balance.AsOf.Format(time.RFC3339Nano),
	})
}
