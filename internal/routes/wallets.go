package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallets/:userId/balance", h.Balance)
}
