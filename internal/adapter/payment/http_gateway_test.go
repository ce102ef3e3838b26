package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var testCredentials = Credentials{MerchantID: "m1", PublicKey: "pub", PrivateKey: "priv"}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw, err := NewHTTPGateway(Config{URL: srv.URL, Credentials: testCredentials, Timeout: time.Second}, testLogger())
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}
	return gw
}

func TestNewHTTPGatewayValidatesURL(t *testing.T) {
	if _, err := NewHTTPGateway(Config{URL: "://bad-url"}, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPGateway(Config{URL: "/relative"}, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	gw, err := NewHTTPGateway(Config{URL: "https://gateway.local"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.httpClient.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", gw.httpClient.Timeout)
	}
}

func TestHTTPGatewayClientToken(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
		anyErr  bool
	}{
		{name: "ok", status: http.StatusOK, body: `{"clientToken":"tok-1"}`, want: "tok-1"},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: domainErrors.ErrGatewayAuth},
		{name: "forbidden", status: http.StatusForbidden, wantErr: domainErrors.ErrGatewayAuth},
		{name: "empty token", status: http.StatusOK, body: `{"clientToken":""}`, anyErr: true},
		{name: "bad json", status: http.StatusOK, body: `{`, anyErr: true},
		{name: "server error", status: http.StatusInternalServerError, anyErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/merchants/m1/client_token" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				user, pass, ok := r.BasicAuth()
				if !ok || user != "pub" || pass != "priv" {
					t.Errorf("unexpected basic auth %q/%q", user, pass)
				}
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			token, err := gw.ClientToken(context.Background())
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			case tc.anyErr:
				if err == nil {
					t.Fatal("expected error")
				}
				if errors.Is(err, domainErrors.ErrGatewayAuth) {
					t.Fatalf("unexpected auth error: %v", err)
				}
			default:
				if err != nil || token != tc.want {
					t.Fatalf("unexpected result token=%q err=%v", token, err)
				}
			}
		})
	}
}

func TestHTTPGatewayMissingCredentials(t *testing.T) {
	gw, err := NewHTTPGateway(Config{URL: "https://gateway.local"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := gw.ClientToken(context.Background()); !errors.Is(err, domainErrors.ErrGatewayAuth) {
		t.Fatalf("expected ErrGatewayAuth, got %v", err)
	}
	if _, err := gw.Charge(context.Background(), model.ChargeRequest{Nonce: "n"}); !errors.Is(err, domainErrors.ErrGatewayAuth) {
		t.Fatalf("expected ErrGatewayAuth, got %v", err)
	}
}

func TestHTTPGatewayChargeSendsRequest(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/merchants/m1/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "key-1" {
			t.Errorf("unexpected idempotency key %q", got)
		}
		var body chargeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Amount != "14.70" || body.PaymentMethodNonce != "nonce" || !body.Options.SubmitForSettlement {
			t.Errorf("unexpected body %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"transaction":{"id":"tx-1","status":"submitted_for_settlement"}}`)
	})

	result, err := gw.Charge(context.Background(), model.ChargeRequest{
		Nonce:          "nonce",
		Amount:         decimal.RequireFromString("14.7"),
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.TransactionID != "tx-1" || result.Status != "submitted_for_settlement" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPGatewayChargeOutcomes(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantMessage string
		wantErr     error
	}{
		{name: "declined in body", status: http.StatusOK, body: `{"success":false,"message":"Do Not Honor","transaction":{"id":"tx-2","status":"processor_declined"}}`, wantMessage: "Do Not Honor"},
		{name: "payment required", status: http.StatusPaymentRequired, body: `{"message":"Insufficient Funds"}`, wantMessage: "Insufficient Funds"},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, body: `not json`, wantMessage: "payment declined"},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: domainErrors.ErrGatewayAuth},
		{name: "server error", status: http.StatusBadGateway, wantErr: domainErrors.ErrChargeOutcomeUnknown},
		{name: "garbled success", status: http.StatusOK, body: `{`, wantErr: domainErrors.ErrChargeOutcomeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			result, err := gw.Charge(context.Background(), model.ChargeRequest{Nonce: "n", Amount: decimal.NewFromInt(1)})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Success != tc.wantSuccess || result.Message != tc.wantMessage {
				t.Fatalf("unexpected result: %+v", result)
			}
		})
	}
}

func TestHTTPGatewayChargeTimeoutIsUnknown(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	gw, err := NewHTTPGateway(Config{URL: srv.URL, Credentials: testCredentials, Timeout: 50 * time.Millisecond}, testLogger())
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}

	_, err = gw.Charge(context.Background(), model.ChargeRequest{Nonce: "n", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, domainErrors.ErrChargeOutcomeUnknown) {
		t.Fatalf("expected ErrChargeOutcomeUnknown, got %v", err)
	}
}
