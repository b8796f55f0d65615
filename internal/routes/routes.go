package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pesaflow/pesaflow/internal/config"
	"github.com/pesaflow/pesaflow/internal/deposits"
	"github.com/pesaflow/pesaflow/internal/identity"
	"github.com/pesaflow/pesaflow/internal/ledger"
	"github.com/pesaflow/pesaflow/internal/middleware"
	"github.com/pesaflow/pesaflow/internal/notification"
	"github.com/pesaflow/pesaflow/internal/payments"
	"github.com/pesaflow/pesaflow/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. Nil DB, Cache
// or Engine are tolerated only in dev, where in-memory fallbacks are used.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Engine ledger.Engine
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Engine == nil {
			return fmt.Errorf("ledger engine is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	engine := d.Engine
	if engine == nil {
		engine = ledger.NewInMemoryEngine()
	}
	ledgerClient := ledger.NewClient(engine)
	if d.Engine == nil {
		// Dev fallback engine starts empty on every boot.
		if err := ledger.EnsureSystemAccounts(context.Background(), ledgerClient); err != nil {
			return fmt.Errorf("bootstrap dev engine: %w", err)
		}
	}

	var userRepo identity.Repository
	var depositRepo deposits.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		depositRepo = deposits.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		depositRepo = deposits.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(userRepo)
	walletSvc := wallet.NewService(userRepo, ledgerClient)
	paymentSvc := payments.NewService(ledgerClient, userRepo, notifier, d.Cfg.TransferFee)
	depositSvc := deposits.NewService(depositRepo, userRepo, ledgerClient, deposits.StaticGateway{}, notifier)

	RegisterHealthRoutes(app, d, ledgerClient)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterIdentityRoutes(api, identitySvc, walletSvc, d.Logger)
	RegisterWalletRoutes(api, wallet.NewHandler(walletSvc))
	RegisterPaymentRoutes(api, payments.NewHandler(paymentSvc))
	RegisterDepositRoutes(api, deposits.NewHandler(depositSvc))

	return nil
}
