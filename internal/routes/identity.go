package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/wallet"
)

// RegisterIdentityRoutes wires user onboarding. Registration provisions the
// user's ledger account in the same request so a wallet is usable as soon as
// the response arrives.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, wallets *wallet.Service, logger *slog.Logger) {
	r.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			FullName string `json:"full_name"`
			Phone    string `json:"phone"`
			PIN      string `json:"pin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := ids.Register(c.UserContext(), identity.RegisterInput{
			FullName: req.FullName,
			Phone:    req.Phone,
			PIN:      req.PIN,
		})
		if err != nil {
			if errors.Is(err, identity.ErrPhoneExists) {
				return fiber.NewError(http.StatusConflict, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if _, err := wallets.Provision(c.UserContext(), user.ID); err != nil {
			logger.Error("provision wallet after registration",
				slog.String("user_id", user.ID), slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "wallet provisioning failed")
		}

		logger.Info("user registered",
			slog.String("user_id", user.ID),
			slog.String("account_id", user.LedgerAccountID.String()),
		)
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id":    user.ID,
			"phone":      user.Phone,
			"kyc_status": user.KYCStatus,
			"account_id": user.LedgerAccountID.String(),
			"created_at": user.CreatedAt.Format(time.RFC3339Nano),
		})
	})

	r.Post("/users/verify-pin", func(c *fiber.Ctx) error {
		var req struct {
			Phone string `json:"phone"`
			PIN   string `json:"pin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.VerifyPIN(c.UserContext(), req.Phone, req.PIN)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid phone or PIN")
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"phone":      user.Phone,
			"kyc_status": user.KYCStatus,
		})
	})

	r.Get("/users/:userId", func(c *fiber.Ctx) error {
		user, err := ids.Get(c.UserContext(), c.Params("userId"))
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"full_name":  user.FullName,
			"phone":      user.Phone,
			"kyc_status": user.KYCStatus,
			"account_id": user.LedgerAccountID.String(),
			"created_at": user.CreatedAt.Format(time.RFC3339Nano),
		})
	})
}
