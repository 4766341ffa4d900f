package withdrawal

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kivu-cash/kivu_cash/internal/gateway"
	"github.com/kivu-cash/kivu_cash/internal/ledger"
)

// Handler exposes the wallet panel endpoints backed by the orchestrator.
type Handler struct {
	service *Service
}

// NewHandler builds a withdrawal HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type withdrawRequest struct {
	Operator string `json:"operator"`
	Amount   int64  `json:"amount"`
	Phone    string `json:"phone"`
}

// Withdraw relays a cash-out request to the orchestrator and maps its
// error kinds onto HTTP statuses.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("session_id").(string)
	if sessionID == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	out, err := h.service.Withdraw(c.UserContext(), Input{
		SessionID: sessionID,
		Operator:  req.Operator,
		Phone:     req.Phone,
		Amount:    req.Amount,
	})
	if err != nil {
		var gwErr *GatewayError
		switch {
		case errors.Is(err, ErrWithdrawalsDisabled):
			return fiber.NewError(http.StatusServiceUnavailable, "withdrawals are disabled")
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		case errors.Is(err, gateway.ErrUnknownOperator):
			return fiber.NewError(http.StatusBadRequest, "unsupported operator")
		case errors.As(err, &gwErr):
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{
				"error":           "the provider rejected the withdrawal",
				"provider_status": gwErr.Status,
				"details":         gwErr.Details,
			})
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(out)
}

// Balance returns the local ledger balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	amount, currency := h.service.Balance()
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":  amount,
		"currency": currency,
	})
}

// History returns the session's withdrawal attempts, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("session_id").(string)
	if sessionID == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": h.service.History(sessionID),
	})
}
