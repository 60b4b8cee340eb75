package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-service/config"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CreatePaymentIntentResponse is the backend's create-payment-intent reply
type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
}

// CompleteCheckoutResponse is the backend's complete-checkout reply
type CompleteCheckoutResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
}

// PaymentIntentGateway wraps the two payment backend operations
type PaymentIntentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*CreatePaymentIntentResponse, error)
	CompleteCheckout(ctx context.Context, payload *models.CompleteCheckoutPayload) (*CompleteCheckoutResponse, error)
}

// PaymentGateway is the HTTP client for the payment backend. In forced-mock
// mode both operations short-circuit to synthetic responses without any
// network call. Neither operation touches local state.
type PaymentGateway struct {
	baseURL    string
	currency   string
	forceMock  bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaymentGateway creates a new payment gateway client
func NewPaymentGateway(cfg config.PaymentsConfig) *PaymentGateway {
	return &PaymentGateway{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		currency:   cfg.Currency,
		forceMock:  cfg.ForceMock,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     util.GetLogger(),
	}
}

// CreatePaymentIntent creates a payment intent for the amount and returns
// its client secret
func (g *PaymentGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*CreatePaymentIntentResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentGateway.CreatePaymentIntent")
	defer span.End()

	if currency == "" {
		currency = g.currency
	}

	if g.forceMock {
		util.PaymentIntentsCreatedTotal.Inc()
		return &CreatePaymentIntentResponse{
			ClientSecret: fmt.Sprintf("cs_mock_%d", time.Now().UnixMilli()),
		}, nil
	}

	body := map[string]interface{}{"amount": amount, "currency": currency}
	var resp CreatePaymentIntentResponse
	if err := g.post(ctx, "/api/create-payment-intent", body, &resp); err != nil {
		return nil, fmt.Errorf("createPaymentIntent failed: %w", err)
	}

	util.PaymentIntentsCreatedTotal.Inc()
	g.logger.Info("Payment intent created", zap.Int64("amount", amount), zap.String("currency", currency))
	return &resp, nil
}

// CompleteCheckout finalizes the checkout with the backend
func (g *PaymentGateway) CompleteCheckout(ctx context.Context, payload *models.CompleteCheckoutPayload) (*CompleteCheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentGateway.CompleteCheckout")
	defer span.End()

	if g.forceMock {
		return &CompleteCheckoutResponse{
			Success: true,
			OrderID: fmt.Sprintf("order_mock_%d", time.Now().UnixMilli()),
		}, nil
	}

	var resp CompleteCheckoutResponse
	if err := g.post(ctx, "/api/complete-checkout", payload, &resp); err != nil {
		return nil, fmt.Errorf("completeCheckout failed: %w", err)
	}
	return &resp, nil
}

// post sends a JSON POST and decodes the reply. Non-2xx replies surface the
// upstream response body as the error message.
func (g *PaymentGateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s", strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}
	return nil
}
