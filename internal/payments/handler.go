package payments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     uint64 `json:"amount_cents"`
}

// P2P processes a wallet-to-wallet transfer.
func (h *Handler) P2P(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusUnprocessableEntity, "insufficient funds")
		case errors.Is(err, ledger.ErrConflict):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, identity.ErrUserNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrSelfTransfer):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transfer_id":  res.TransferID,
		"fee_cents":    res.FeeAmount,
		"completed_at": res.CompletedAt.Format(time.RFC3339Nano),
	})
}
