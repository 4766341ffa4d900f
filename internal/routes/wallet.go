package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kivu-cash/kivu_cash/internal/walletinfo"
	"github.com/kivu-cash/kivu_cash/internal/withdrawal"
)

// RegisterWalletRoutes wires the authenticated wallet panel endpoints.
func RegisterWalletRoutes(r fiber.Router, h *withdrawal.Handler, remote *walletinfo.Cache) {
	r.Get("/wallet/balance", h.Balance)
	r.Post("/wallet/withdraw", h.Withdraw)
	r.Get("/wallet/history", h.History)

	// Remote-wallet variant: the provider-side balance behind a short-TTL
	// cache. A failed lookup surfaces as 502 with the last-known snapshot
	// when one exists, so the panel can decide what to show.
	r.Get("/wallet/remote", func(c *fiber.Ctx) error {
		force := c.QueryBool("refresh", false)
		info, err := remote.Get(c.UserContext(), force)
		if err != nil {
			if last, ok := remote.Last(); ok {
				return c.Status(http.StatusBadGateway).JSON(fiber.Map{
					"error":      "wallet lookup failed",
					"last_known": last,
				})
			}
			return fiber.NewError(http.StatusBadGateway, "wallet lookup failed")
		}
		return c.Status(http.StatusOK).JSON(info)
	})
}
