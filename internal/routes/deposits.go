package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/deposits"
)

// RegisterDepositRoutes wires deposit endpoints, including the mobile-money
// provider callback.
func RegisterDepositRoutes(r fiber.Router, h *deposits.Handler) {
	r.Post("/deposits", h.Initiate)
	r.Post("/deposits/callback", h.Callback)
}
