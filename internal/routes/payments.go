package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/payments"
)

// RegisterPaymentRoutes wires payment endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/transfers", h.P2P)
}
