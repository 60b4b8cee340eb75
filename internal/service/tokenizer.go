package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/config"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CardInput is the raw card form input used by the mock path and forwarded
// to the provider in provider mode.
type CardInput struct {
	Cardholder string `json:"cardholder"`
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVC        string `json:"cvc"`
}

// CardForm confirms a payment against a client secret.
type CardForm interface {
	ConfirmPayment(ctx context.Context, clientSecret string) (*models.PaymentIntent, error)
}

// TokenizingCardForm is a card form that can also tokenize its input.
// The orchestrator checks for this capability before auto-tokenizing.
type TokenizingCardForm interface {
	CardForm
	Tokenize(ctx context.Context) (*models.CardDetails, error)
}

type tokenizerMode int

const (
	modeMock tokenizerMode = iota
	modeProvider
)

// CardTokenizer builds card forms. The mode is decided once at construction
// and never changes for the lifetime of the tokenizer: mock when forced by
// configuration, when no provider key is set, or when the provider client
// could not be initialized; provider otherwise.
type CardTokenizer struct {
	mode        tokenizerMode
	provider    ProviderClient
	mockLatency time.Duration
	logger      *zap.Logger
}

// NewCardTokenizer creates a tokenizer in mock or provider mode
func NewCardTokenizer(cfg config.PaymentsConfig, provider ProviderClient) *CardTokenizer {
	t := &CardTokenizer{
		mode:        modeProvider,
		provider:    provider,
		mockLatency: time.Duration(cfg.MockLatencyMS) * time.Millisecond,
		logger:      util.GetLogger(),
	}
	if cfg.ForceMock || cfg.ProviderKey == "" || provider == nil {
		t.mode = modeMock
		t.provider = nil
	}
	t.logger.Info("Card tokenizer initialized", zap.String("mode", t.ModeName()))
	return t
}

// ModeName returns "mock" or "provider"
func (t *CardTokenizer) ModeName() string {
	if t.mode == modeProvider {
		return "provider"
	}
	return "mock"
}

// NewForm binds card input to a form for the tokenizer's mode
func (t *CardTokenizer) NewForm(input CardInput) TokenizingCardForm {
	if t.mode == modeProvider {
		return &providerCardForm{provider: t.provider, input: input}
	}
	return &mockCardForm{input: input, latency: t.mockLatency}
}

// mockCardForm simulates tokenization and confirmation locally.
type mockCardForm struct {
	input   CardInput
	latency time.Duration
}

var errIncompleteCard = errors.New("card number, expiry and cvc are required")

func (f *mockCardForm) Tokenize(ctx context.Context) (*models.CardDetails, error) {
	start := time.Now()
	defer func() {
		util.TokenizationLatency.Observe(time.Since(start).Seconds())
	}()

	if f.input.Number == "" || f.input.Expiry == "" || f.input.CVC == "" {
		util.TokenizationTotal.WithLabelValues("mock", "error").Inc()
		return nil, errIncompleteCard
	}

	sanitized := strings.Join(strings.Fields(f.input.Number), "")
	last4 := sanitized
	if len(sanitized) > 4 {
		last4 = sanitized[len(sanitized)-4:]
	}

	if err := sleepCtx(ctx, f.latency); err != nil {
		return nil, err
	}

	util.TokenizationTotal.WithLabelValues("mock", "success").Inc()
	return &models.CardDetails{
		Token:      fmt.Sprintf("tok_mock_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8]),
		Last4:      last4,
		Brand:      detectBrand(sanitized),
		Cardholder: f.input.Cardholder,
	}, nil
}

func (f *mockCardForm) ConfirmPayment(ctx context.Context, clientSecret string) (*models.PaymentIntent, error) {
	start := time.Now()
	defer func() {
		util.PaymentConfirmLatency.Observe(time.Since(start).Seconds())
	}()

	if err := sleepCtx(ctx, f.latency); err != nil {
		return nil, err
	}

	return &models.PaymentIntent{
		ID:           fmt.Sprintf("pi_mock_%d", time.Now().UnixMilli()),
		Status:       models.PaymentIntentSucceeded,
		ClientSecret: clientSecret,
	}, nil
}

// providerCardForm delegates to the real payment provider.
type providerCardForm struct {
	provider ProviderClient
	input    CardInput
}

func (f *providerCardForm) Tokenize(ctx context.Context) (*models.CardDetails, error) {
	start := time.Now()
	defer func() {
		util.TokenizationLatency.Observe(time.Since(start).Seconds())
	}()

	details, err := f.provider.CreatePaymentMethod(ctx, f.input)
	if err != nil {
		util.TokenizationTotal.WithLabelValues("provider", "error").Inc()
		return nil, err
	}
	util.TokenizationTotal.WithLabelValues("provider", "success").Inc()
	return details, nil
}

func (f *providerCardForm) ConfirmPayment(ctx context.Context, clientSecret string) (*models.PaymentIntent, error) {
	start := time.Now()
	defer func() {
		util.PaymentConfirmLatency.Observe(time.Since(start).Seconds())
	}()

	// 3-D-Secure and other challenge statuses pass through untouched; the
	// orchestrator decides what a non-succeeded status means.
	return f.provider.ConfirmCardPayment(ctx, clientSecret, f.input)
}

// detectBrand derives the card brand from the number prefix
func detectBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "mastercard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	default:
		return "unknown"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
