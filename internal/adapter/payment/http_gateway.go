package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const defaultTimeout = 15 * time.Second

// HTTPGateway talks to the processor REST API.
type HTTPGateway struct {
	baseURL     *url.URL
	credentials Credentials
	httpClient  *http.Client
	logger      *slog.Logger
}

type clientTokenResponse struct {
	ClientToken string `json:"clientToken"`
}

type chargeRequest struct {
	Amount             string        `json:"amount"`
	PaymentMethodNonce string        `json:"paymentMethodNonce"`
	Options            chargeOptions `json:"options"`
}

type chargeOptions struct {
	SubmitForSettlement bool `json:"submitForSettlement"`
}

type chargeResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Transaction struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"transaction"`
}

// NewHTTPGateway creates gateway client bounded by cfg.Timeout.
func NewHTTPGateway(cfg Config, logger *slog.Logger) (*HTTPGateway, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPGateway{
		baseURL:     parsed,
		credentials: cfg.Credentials,
		logger:      logger.With(slog.String("component", "payment_gateway")),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ClientToken requests a short-lived token for client-side card collection.
func (g *HTTPGateway) ClientToken(ctx context.Context) (string, error) {
	if !g.credentials.complete() {
		return "", fmt.Errorf("missing gateway credentials: %w", domainErrors.ErrGatewayAuth)
	}

	resp, err := g.post(ctx, "client_token", nil, nil)
	if err != nil {
		return "", fmt.Errorf("request client token: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var data clientTokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", fmt.Errorf("decode client token: %w", err)
		}
		if data.ClientToken == "" {
			return "", errors.New("gateway returned empty client token")
		}
		return data.ClientToken, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		g.logFailure("client token rejected", resp)
		return "", domainErrors.ErrGatewayAuth
	default:
		g.logFailure("client token request failed", resp)
		return "", fmt.Errorf("gateway error: %s", resp.Status)
	}
}

// Charge submits a sale for req.Amount and settles it immediately.
func (g *HTTPGateway) Charge(ctx context.Context, req model.ChargeRequest) (model.ChargeResult, error) {
	if !g.credentials.complete() {
		return model.ChargeResult{}, fmt.Errorf("missing gateway credentials: %w", domainErrors.ErrGatewayAuth)
	}

	payload, err := json.Marshal(chargeRequest{
		Amount:             req.Amount.StringFixed(2),
		PaymentMethodNonce: req.Nonce,
		Options:            chargeOptions{SubmitForSettlement: true},
	})
	if err != nil {
		return model.ChargeResult{}, err
	}

	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	resp, err := g.post(ctx, "transactions", bytes.NewReader(payload), headers)
	if err != nil {
		g.logger.Error("charge outcome unknown", slog.String("idempotency_key", req.IdempotencyKey), slog.Any("error", err))
		return model.ChargeResult{}, fmt.Errorf("%w: %v", domainErrors.ErrChargeOutcomeUnknown, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var data chargeResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return model.ChargeResult{}, fmt.Errorf("%w: decode charge response: %v", domainErrors.ErrChargeOutcomeUnknown, err)
		}
		return model.ChargeResult{
			Success:       data.Success,
			TransactionID: data.Transaction.ID,
			Status:        data.Transaction.Status,
			Message:       data.Message,
		}, nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		var data chargeResponse
		_ = json.NewDecoder(resp.Body).Decode(&data)
		message := data.Message
		if message == "" {
			message = "payment declined"
		}
		return model.ChargeResult{
			Success:       false,
			TransactionID: data.Transaction.ID,
			Status:        data.Transaction.Status,
			Message:       message,
		}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		g.logFailure("charge rejected credentials", resp)
		return model.ChargeResult{}, domainErrors.ErrGatewayAuth
	default:
		g.logFailure("charge request failed", resp)
		return model.ChargeResult{}, fmt.Errorf("%w: gateway responded %s", domainErrors.ErrChargeOutcomeUnknown, resp.Status)
	}
}

func (g *HTTPGateway) post(ctx context.Context, resource string, body io.Reader, headers map[string]string) (*http.Response, error) {
	endpoint := *g.baseURL
	endpoint.Path = path.Join(endpoint.Path, "merchants", g.credentials.MerchantID, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.credentials.PublicKey, g.credentials.PrivateKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return g.httpClient.Do(req)
}

func (g *HTTPGateway) logFailure(msg string, resp *http.Response) {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	g.logger.Error(msg, slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
}
