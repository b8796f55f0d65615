package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pesaflow/pesaflow/internal/ledger"
)

// RegisterHealthRoutes adds a readiness endpoint probing every backing store,
// including the ledger engine via a clearing-account lookup.
func RegisterHealthRoutes(app *fiber.App, d Deps, ledgerClient *ledger.Client) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		dbStatus := "ok"
		redisStatus := "ok"
		engineStatus := "ok"

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				dbStatus = err.Error()
			}
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				redisStatus = err.Error()
			}
		}
		if _, ok, err := ledgerClient.LookupAccount(ctx, ledger.ClearingAccountID); err != nil {
			engineStatus = err.Error()
		} else if !ok {
			engineStatus = "clearing account missing"
		}

		status := http.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" || engineStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{"postgres": dbStatus, "redis": redisStatus, "ledger": engineStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
