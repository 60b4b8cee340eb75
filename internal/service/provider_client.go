package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-service/internal/models"
)

// ProviderClient is the surface of the real payment provider used by
// provider-mode card forms.
type ProviderClient interface {
	CreatePaymentMethod(ctx context.Context, input CardInput) (*models.CardDetails, error)
	ConfirmCardPayment(ctx context.Context, clientSecret string, input CardInput) (*models.PaymentIntent, error)
}

// HTTPProviderClient talks to the provider's REST API with a secret key.
type HTTPProviderClient struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewProviderClient creates a provider client, or fails when no key is
// configured so the tokenizer can fall back to mock mode.
func NewProviderClient(baseURL, key string) (*HTTPProviderClient, error) {
	if key == "" {
		return nil, errors.New("payment provider key not configured")
	}
	return &HTTPProviderClient{
		baseURL:    baseURL,
		key:        key,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type providerPaymentMethod struct {
	ID   string `json:"id"`
	Card struct {
		Last4 string `json:"last4"`
		Brand string `json:"brand"`
	} `json:"card"`
}

// CreatePaymentMethod tokenizes the card with the provider
func (c *HTTPProviderClient) CreatePaymentMethod(ctx context.Context, input CardInput) (*models.CardDetails, error) {
	body := map[string]interface{}{
		"type": "card",
		"card": map[string]string{
			"number": input.Number,
			"expiry": input.Expiry,
			"cvc":    input.CVC,
		},
		"billing_details": map[string]string{"name": input.Cardholder},
	}

	var pm providerPaymentMethod
	if err := c.post(ctx, "/v1/payment_methods", body, &pm); err != nil {
		return nil, fmt.Errorf("createPaymentMethod failed: %w", err)
	}

	return &models.CardDetails{
		Token:      pm.ID,
		Last4:      pm.Card.Last4,
		Brand:      pm.Card.Brand,
		Cardholder: input.Cardholder,
	}, nil
}

// ConfirmCardPayment confirms the payment intent identified by the client
// secret. Challenge statuses such as requires_action come back as-is.
func (c *HTTPProviderClient) ConfirmCardPayment(ctx context.Context, clientSecret string, input CardInput) (*models.PaymentIntent, error) {
	body := map[string]interface{}{
		"client_secret": clientSecret,
		"payment_method": map[string]interface{}{
			"type": "card",
			"card": map[string]string{
				"number": input.Number,
				"expiry": input.Expiry,
				"cvc":    input.CVC,
			},
			"billing_details": map[string]string{"name": input.Cardholder},
		},
	}

	var pi models.PaymentIntent
	if err := c.post(ctx, "/v1/payment_intents/confirm", body, &pi); err != nil {
		return nil, fmt.Errorf("confirmCardPayment failed: %w", err)
	}
	return &pi, nil
}

func (c *HTTPProviderClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}
	return json.Unmarshal(data, out)
}
