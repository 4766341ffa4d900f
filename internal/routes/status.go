package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kivu-cash/kivu_cash/internal/config"
	"github.com/kivu-cash/kivu_cash/internal/withdrawal"
)

// RegisterStatusRoute exposes an unauthenticated informational endpoint.
func RegisterStatusRoute(r fiber.Router, cfg config.Config, svc *withdrawal.Service) {
	r.Get("/status", func(c *fiber.Ctx) error {
		balance, currency := svc.Balance()
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"withdrawals_enabled": svc.Enabled(),
			"gateway_base":        cfg.GatewayBaseURL,
			"balance":             balance,
			"currency":            currency,
		})
	})
}
