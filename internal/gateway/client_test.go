package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kivu-cash/kivu_cash/internal/config"
	"github.com/kivu-cash/kivu_cash/internal/logging"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppName:        "KivuCash",
		GatewayBaseURL: baseURL,
		GatewayToken:   "test-token",
		MerchantID:     "merchant-42",
		WalletID:       "wallet-7",
		PayoutTimeout:  2 * time.Second,
		LookupTimeout:  time.Second,
	}
}

func TestParseOperator(t *testing.T) {
	cases := []struct {
		in      string
		want    Operator
		wantErr bool
	}{
		{"mtn", OperatorMTN, false},
		{" Orange ", OperatorOrange, false},
		{"PAYOUT", OperatorPayout, false},
		{"western-union", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseOperator(tc.in)
		if tc.wantErr {
			if err != ErrUnknownOperator {
				t.Fatalf("ParseOperator(%q): expected ErrUnknownOperator, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseOperator(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestSendSuccessPassesProviderBody(t *testing.T) {
	var gotAuth, gotMerchant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMerchant = r.Header.Get(merchantHeader)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reference":"psp-1","status":"success"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	res := c.Send(context.Background(), "/payouts/transfer", map[string]any{"amount": 100}, time.Second)

	if !res.OK || res.Status != http.StatusOK {
		t.Fatalf("expected OK 200, got %+v", res)
	}
	if string(res.Body) != `{"reference":"psp-1","status":"success"}` {
		t.Fatalf("body not passed through: %s", res.Body)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("missing bearer credential, got %q", gotAuth)
	}
	if gotMerchant != "merchant-42" {
		t.Fatalf("missing merchant header, got %q", gotMerchant)
	}
}

func TestSendNonTwoHundredIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"provider balance too low"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	res := c.Send(context.Background(), "/payouts/ussd/mtn", map[string]any{}, time.Second)

	if res.OK {
		t.Fatal("non-2xx must not be OK")
	}
	if res.Status != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", res.Status)
	}
	if string(res.Body) != `{"message":"provider balance too low"}` {
		t.Fatalf("provider error body lost: %s", res.Body)
	}
}

func TestSendTimeoutBecomesFailureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	res := c.Send(context.Background(), "/payouts/transfer", map[string]any{}, 30*time.Millisecond)

	if res.OK {
		t.Fatal("timeout must not be OK")
	}
	if res.Status != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", res.Status)
	}
	var diag map[string]string
	if err := json.Unmarshal(res.Body, &diag); err != nil {
		t.Fatalf("diagnostic body is not JSON: %v", err)
	}
	if diag["message"] == "" {
		t.Fatal("diagnostic body missing message")
	}
}

func TestSendUnreachableHostBecomesFailureResult(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"), logging.Discard())
	res := c.Send(context.Background(), "/payouts/transfer", map[string]any{}, time.Second)

	if res.OK {
		t.Fatal("transport error must not be OK")
	}
	if res.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Status)
	}
}

func TestSendWrapsNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	res := c.Send(context.Background(), "/payouts/transfer", map[string]any{}, time.Second)

	if !json.Valid(res.Body) {
		t.Fatalf("body must always be valid JSON: %s", res.Body)
	}
	var wrapped map[string]string
	if err := json.Unmarshal(res.Body, &wrapped); err != nil || wrapped["raw"] != "upstream exploded" {
		t.Fatalf("expected wrapped raw body, got %s", res.Body)
	}
}

func TestPayoutUsesOperatorPayloadShapes(t *testing.T) {
	bodies := map[string]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		bodies[r.URL.Path] = body
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	req := PayoutRequest{Amount: 5_000, Currency: "XAF", Phone: "243900000001", Reference: "MTN-ref", Note: "cash out"}

	if res := c.Payout(context.Background(), OperatorMTN, req); !res.OK {
		t.Fatalf("ussd payout failed: %+v", res)
	}
	if res := c.Payout(context.Background(), OperatorPayout, req); !res.OK {
		t.Fatalf("transfer payout failed: %+v", res)
	}

	ussd, ok := bodies["/payouts/ussd/mtn"]
	if !ok {
		t.Fatal("ussd route not called")
	}
	if ussd["phone"] != "243900000001" || ussd["merchant"] != "merchant-42" || ussd["wallet_id"] != "wallet-7" || ussd["reference"] == "" {
		t.Fatalf("ussd payload malformed: %v", ussd)
	}

	transfer, ok := bodies["/payouts/transfer"]
	if !ok {
		t.Fatal("transfer route not called")
	}
	dest, ok := transfer["destination"].(map[string]any)
	if !ok || dest["phone"] != "243900000001" {
		t.Fatalf("transfer destination malformed: %v", transfer)
	}
	if transfer["merchant_reference"] == "" {
		t.Fatalf("transfer payload missing merchant_reference: %v", transfer)
	}
}

func TestLookupWallet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallets/balance" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"balance":750000,"currency":"XAF","status":"active"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	info, err := c.LookupWallet(context.Background())
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if info.Balance != 750_000 || info.Currency != "XAF" {
		t.Fatalf("unexpected wallet info: %+v", info)
	}
}

func TestLookupWalletPropagatesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logging.Discard())
	if _, err := c.LookupWallet(context.Background()); err == nil {
		t.Fatal("expected lookup error")
	}
}
