package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kivu-cash/kivu_cash/internal/config"
)

const (
	merchantHeader = "X-Merchant-Id"
	appNameHeader  = "X-Application"

	// Responses larger than this are truncated; provider bodies are small
	// JSON documents in practice.
	maxResponseBytes = 1 << 20
)

// Result is the uniform outcome of a gateway call. Transport errors,
// timeouts and non-2xx statuses all collapse into OK=false with a
// diagnostic or provider body; callers never see a transport error type.
type Result struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// PayoutRequest carries the fields common to every payout route.
type PayoutRequest struct {
	Amount    int64
	Currency  string
	Phone     string
	Reference string
	Note      string
}

// WalletInfo is the provider's view of the merchant wallet, used by the
// remote-wallet balance variant.
type WalletInfo struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Client issues calls to the external payout gateway. It performs exactly
// one attempt per call; retry policy belongs to the caller and is
// deliberately absent for user-initiated withdrawals.
type Client struct {
	baseURL       string
	token         string
	merchantID    string
	appName       string
	walletID      string
	payoutTimeout time.Duration
	lookupTimeout time.Duration
	httpc         *http.Client
	logger        *slog.Logger
}

// NewClient builds a gateway client from the application configuration.
func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       cfg.GatewayBaseURL,
		token:         cfg.GatewayToken,
		merchantID:    cfg.MerchantID,
		appName:       cfg.AppName,
		walletID:      cfg.WalletID,
		payoutTimeout: cfg.PayoutTimeout,
		lookupTimeout: cfg.LookupTimeout,
		httpc:         &http.Client{},
		logger:        logger,
	}
}

// Send issues a single POST to baseURL+routeSuffix with the provider
// headers, bounded by the supplied timeout. The returned Result absorbs
// every failure mode.
func (c *Client) Send(ctx context.Context, routeSuffix string, payload any, timeout time.Duration) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return failure(http.StatusInternalServerError, fmt.Sprintf("encode payload: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+routeSuffix, bytes.NewReader(body))
	if err != nil {
		return failure(http.StatusInternalServerError, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set(merchantHeader, c.merchantID)
	req.Header.Set(appNameHeader, c.appName)

	resp, err := c.httpc.Do(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.logger.Warn("gateway call failed", "route", routeSuffix, "error", err)
		return failure(status, fmt.Sprintf("gateway unreachable: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("gateway response unreadable", "route", routeSuffix, "error", err)
		return failure(http.StatusInternalServerError, fmt.Sprintf("read response: %v", err))
	}

	return Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Body:   normalizeBody(raw),
	}
}

// Payout dispatches a withdrawal to the operator's route with the payload
// shape that route expects, under the configured payout timeout.
func (c *Client) Payout(ctx context.Context, op Operator, req PayoutRequest) Result {
	var payload any
	if op.USSD() {
		payload = ussdPayload{
			Phone:     req.Phone,
			Merchant:  c.merchantID,
			WalletID:  c.walletID,
			Reference: req.Reference,
			Amount:    req.Amount,
			Currency:  req.Currency,
			Note:      req.Note,
		}
	} else {
		payload = transferPayload{
			Destination:       destination{Phone: req.Phone},
			MerchantReference: req.Reference,
			Amount:            req.Amount,
			Currency:          req.Currency,
			Note:              req.Note,
		}
	}
	return c.Send(ctx, op.Route(), payload, c.payoutTimeout)
}

// LookupWallet fetches the provider-side wallet snapshot. Unlike payouts,
// a failed lookup surfaces as an error so callers can decide whether to
// fall back to a previously cached value.
func (c *Client) LookupWallet(ctx context.Context) (WalletInfo, error) {
	res := c.Send(ctx, "/wallets/balance", lookupPayload{Merchant: c.merchantID, WalletID: c.walletID}, c.lookupTimeout)
	if !res.OK {
		return WalletInfo{}, fmt.Errorf("wallet lookup failed with status %d", res.Status)
	}
	var info WalletInfo
	if err := json.Unmarshal(res.Body, &info); err != nil {
		return WalletInfo{}, fmt.Errorf("decode wallet info: %w", err)
	}
	return info, nil
}

type ussdPayload struct {
	Phone     string `json:"phone"`
	Merchant  string `json:"merchant"`
	WalletID  string `json:"wallet_id"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Note      string `json:"note"`
}

type destination struct {
	Phone string `json:"phone"`
}

type transferPayload struct {
	Destination       destination `json:"destination"`
	MerchantReference string      `json:"merchant_reference"`
	Amount            int64       `json:"amount"`
	Currency          string      `json:"currency"`
	Note              string      `json:"note"`
}

type lookupPayload struct {
	Merchant string `json:"merchant"`
	WalletID string `json:"wallet_id"`
}

func failure(status int, message string) Result {
	body, _ := json.Marshal(map[string]string{"message": message})
	return Result{OK: false, Status: status, Body: body}
}

// normalizeBody guarantees the stored body is valid JSON so it can be
// re-embedded in history records and API responses as-is.
func normalizeBody(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(raw)})
	return wrapped
}
