package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/kivu-cash/kivu_cash/internal/auth"
	"github.com/kivu-cash/kivu_cash/internal/config"
	"github.com/kivu-cash/kivu_cash/internal/gateway"
	"github.com/kivu-cash/kivu_cash/internal/history"
	"github.com/kivu-cash/kivu_cash/internal/ledger"
	"github.com/kivu-cash/kivu_cash/internal/middleware"
	"github.com/kivu-cash/kivu_cash/internal/notification"
	"github.com/kivu-cash/kivu_cash/internal/walletinfo"
	"github.com/kivu-cash/kivu_cash/internal/withdrawal"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	// Services and handlers. The ledger is seeded once here and lives for
	// the process lifetime.
	led := ledger.New(d.Cfg.SeedBalance, d.Cfg.Currency)
	gatewayClient := gateway.NewClient(d.Cfg, d.Logger)
	historyStore := history.NewStore(d.Cfg.HistoryLimit)
	remoteWallet := walletinfo.NewCache(gatewayClient, d.Cfg.WalletCacheTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)

	withdrawalSvc := withdrawal.NewService(d.Cfg, led, gatewayClient, historyStore, notifier, d.Logger)
	withdrawalHandler := withdrawal.NewHandler(withdrawalSvc)

	sessionSvc := auth.NewService(d.Cfg)
	authHandler := auth.NewHandler(sessionSvc)

	api := app.Group("/api/v1")

	// Public routes
	RegisterStatusRoute(api, d.Cfg, withdrawalSvc)
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, 5))

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(sessionSvc))
	RegisterWalletRoutes(protected, withdrawalHandler, remoteWallet)

	return nil
}
