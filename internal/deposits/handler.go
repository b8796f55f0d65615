package deposits

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
)

// Handler exposes deposit endpoints, including the provider callback.
type Handler struct {
	service *Service
}

// NewHandler constructs a deposit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initiateRequest struct {
	UserID string `json:"user_id"`
	Amount uint64 `json:"amount_cents"`
}

// Initiate starts an STK push deposit for a wallet.
func (h *Handler) Initiate(c *fiber.Ctx) error {
	var req initiateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	dep, err := h.service.Initiate(c.UserContext(), InitiateInput{UserID: req.UserID, Amount: req.Amount})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrDuplicateCheckoutRequest), errors.Is(err, ledger.ErrConflict):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"deposit_id":          dep.ID,
		"checkout_request_id": dep.CheckoutRequestID,
		"status":              dep.Status,
	})
}

type callbackRequest struct {
	CheckoutRequestID string `json:"checkout_request_id"`
	ResultCode        int    `json:"result_code"`
	Receipt           string `json:"receipt"`
}

// Callback receives the provider's settlement verdict. Result code zero
// confirms the deposit, anything else fails it.
func (h *Handler) Callback(c *fiber.Ctx) error {
	var req callbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	payload := append([]byte(nil), c.Body()...)

	var (
		dep Deposit
		err error
	)
	if req.ResultCode == 0 {
		dep, err = h.service.Confirm(c.UserContext(), req.CheckoutRequestID, req.Receipt, payload)
	} else {
		dep, err = h.service.Fail(c.UserContext(), req.CheckoutRequestID, payload)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrDepositNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAlreadyResolved), errors.Is(err, ledger.ErrConflict):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(fiber.Map{
		"deposit_id": dep.ID,
		"status":     dep.Status,
	})
}
