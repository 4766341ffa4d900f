package withdrawal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kivu-cash/kivu_cash/internal/config"
	"github.com/kivu-cash/kivu_cash/internal/gateway"
	"github.com/kivu-cash/kivu_cash/internal/history"
	"github.com/kivu-cash/kivu_cash/internal/ledger"
	"github.com/kivu-cash/kivu_cash/internal/notification"
)

var (
	// ErrWithdrawalsDisabled indicates the feature flag is off.
	ErrWithdrawalsDisabled = errors.New("withdrawals are disabled")

	// ErrInvalidInput indicates a missing or malformed amount or phone.
	ErrInvalidInput = errors.New("invalid input")
)

// GatewayError reports a payout the provider rejected, timed out on, or
// that never reached it. The ledger has already been compensated by the
// time this error surfaces.
type GatewayError struct {
	Status  int
	Details json.RawMessage
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway reported failure (status %d)", e.Status)
}

// PayoutGateway is the slice of the gateway client the orchestrator needs.
type PayoutGateway interface {
	Payout(ctx context.Context, op gateway.Operator, req gateway.PayoutRequest) gateway.Result
}

// Service orchestrates a withdrawal as a two-phase local-debit, external
// call, commit-or-compensate sequence. The ledger is the source of truth:
// the balance visibly decreases before the PSP confirms, so a concurrent
// withdrawal cannot over-spend funds already committed to an in-flight
// payout.
type Service struct {
	enabled  bool
	currency string
	ledger   *ledger.Ledger
	gateway  PayoutGateway
	history  *history.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService wires the orchestrator with its collaborators.
func NewService(cfg config.Config, led *ledger.Ledger, gw PayoutGateway, hist *history.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		enabled:  cfg.WithdrawalsEnabled,
		currency: cfg.Currency,
		ledger:   led,
		gateway:  gw,
		history:  hist,
		notifier: notifier,
		logger:   logger,
	}
}

// Input is one withdrawal request attributed to an authenticated session.
type Input struct {
	SessionID string
	Operator  string
	Phone     string
	Amount    int64
}

// Outcome is returned to the HTTP layer on a committed withdrawal.
type Outcome struct {
	Message          string          `json:"message"`
	Reference        string          `json:"reference"`
	Balance          int64           `json:"balance"`
	Currency         string          `json:"currency"`
	ProviderResponse json.RawMessage `json:"psp_response"`
}

// Withdraw runs the Validating -> Debited -> Calling PSP -> Committed or
// Compensated state machine. Validation rejections have no side effects;
// after the debit every exit path either commits or credits the amount
// back, including the panic path.
func (s *Service) Withdraw(ctx context.Context, input Input) (out Outcome, err error) {
	if !s.enabled {
		return Outcome{}, ErrWithdrawalsDisabled
	}
	if input.Amount <= 0 {
		return Outcome{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	phone := normalizePhone(input.Phone)
	if phone == "" {
		return Outcome{}, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	op, perr := gateway.ParseOperator(input.Operator)
	if perr != nil {
		return Outcome{}, perr
	}

	amount := input.Amount
	newBalance, derr := s.ledger.Debit(amount)
	if derr != nil {
		return Outcome{}, derr
	}

	// From here the ledger holds committed intent. An unexpected fault
	// must not bypass the compensating credit.
	defer func() {
		if r := recover(); r != nil {
			s.compensate(input.SessionID, string(op), amount, "", failureDetails(fmt.Sprintf("internal fault: %v", r)))
			out = Outcome{}
			err = fmt.Errorf("internal fault during withdrawal: %v", r)
		}
	}()

	reference := newReference(op)
	res := s.gateway.Payout(ctx, op, gateway.PayoutRequest{
		Amount:    amount,
		Currency:  s.currency,
		Phone:     phone,
		Reference: reference,
		Note:      "wallet panel withdrawal",
	})

	if !accepted(op, res) {
		s.compensate(input.SessionID, string(op), amount, reference, res.Body)
		return Outcome{}, &GatewayError{Status: res.Status, Details: res.Body}
	}

	s.history.Append(input.SessionID, history.Record{
		ID:        reference,
		Amount:    amount,
		Operator:  string(op),
		Status:    history.StatusSuccess,
		Details:   res.Body,
		Timestamp: time.Now().UTC(),
	})

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPayoutSent,
			Destination: phone,
			Body:        fmt.Sprintf("Sent %d %s via %s (%s)", amount, s.currency, op, reference),
		})
	}

	return Outcome{
		Message:          "withdrawal completed",
		Reference:        reference,
		Balance:          newBalance,
		Currency:         s.currency,
		ProviderResponse: res.Body,
	}, nil
}

// Balance returns the local ledger snapshot.
func (s *Service) Balance() (int64, string) {
	return s.ledger.Balance()
}

// History lists the session's past attempts, newest first.
func (s *Service) History(sessionID string) []history.Record {
	return s.history.List(sessionID)
}

// Enabled reports the withdrawal feature flag.
func (s *Service) Enabled() bool {
	return s.enabled
}

// compensate credits a debited amount back and records the failed attempt.
// The credit assumes the provider never moved funds; if its side partially
// processed the payout the local ledger diverges from the PSP's, which is
// why the reconciliation warning is logged on every compensation.
func (s *Service) compensate(sessionID, operator string, amount int64, reference string, details json.RawMessage) {
	if reference == "" {
		reference = newReference(gateway.Operator(operator))
	}
	restored, cerr := s.ledger.Credit(amount)
	if cerr != nil {
		s.logger.Error("compensating credit failed", "reference", reference, "amount", amount, "error", cerr)
	}
	s.logger.Warn("withdrawal compensated, provider state unreconciled",
		"reference", reference,
		"operator", operator,
		"amount", amount,
		"balance", restored,
	)
	s.history.Append(sessionID, history.Record{
		ID:        reference,
		Amount:    amount,
		Operator:  operator,
		Status:    history.StatusError,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// accepted decides whether the gateway result commits the withdrawal. The
// generic payout route additionally carries a provider status field; the
// USSD routes signal solely through the HTTP status.
func accepted(op gateway.Operator, res gateway.Result) bool {
	if !res.OK {
		return false
	}
	if op != gateway.OperatorPayout {
		return true
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(res.Body, &body); err != nil || body.Status == "" {
		// The discriminator is optional; a 2xx without one counts as success.
		return true
	}
	return strings.EqualFold(body.Status, "success")
}

// normalizePhone strips surrounding whitespace and internal whitespace runs.
func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

// newReference builds an operator-tagged, timestamp-based reference that is
// unique for the lifetime of the process.
func newReference(op gateway.Operator) string {
	return fmt.Sprintf("%s-%s-%s",
		strings.ToUpper(string(op)),
		time.Now().UTC().Format("20060102T150405"),
		uuid.NewString()[:8],
	)
}

func failureDetails(message string) json.RawMessage {
	body, _ := json.Marshal(map[string]string{"message": message})
	return body
}
