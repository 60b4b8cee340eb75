package service

import (
	"context"
	"strings"
	"testing"

	"storefront-service/config"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockTokenizer() *CardTokenizer {
	return NewCardTokenizer(config.PaymentsConfig{ForceMock: true, MockLatencyMS: 0}, nil)
}

func TestTokenizerModeSelection(t *testing.T) {
	assert.Equal(t, "mock", NewCardTokenizer(config.PaymentsConfig{ForceMock: true}, nil).ModeName())
	assert.Equal(t, "mock", NewCardTokenizer(config.PaymentsConfig{}, nil).ModeName())

	// a configured key without a client still falls back to mock
	assert.Equal(t, "mock", NewCardTokenizer(config.PaymentsConfig{ProviderKey: "pk_test"}, nil).ModeName())
}

func TestMockTokenizeProducesDetails(t *testing.T) {
	form := mockTokenizer().NewForm(CardInput{
		Cardholder: "Ada Lovelace",
		Number:     "4242 4242 4242 4242",
		Expiry:     "12/30",
		CVC:        "123",
	})

	details, err := form.Tokenize(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(details.Token, "tok_mock_"))
	assert.Equal(t, "4242", details.Last4)
	assert.Equal(t, "visa", details.Brand)
	assert.Equal(t, "Ada Lovelace", details.Cardholder)
}

func TestMockTokenizeRejectsIncompleteInput(t *testing.T) {
	tok := mockTokenizer()

	for _, input := range []CardInput{
		{Expiry: "12/30", CVC: "123"},
		{Number: "4242424242424242", CVC: "123"},
		{Number: "4242424242424242", Expiry: "12/30"},
	} {
		_, err := tok.NewForm(input).Tokenize(context.Background())
		assert.ErrorIs(t, err, errIncompleteCard)
	}
}

func TestMockTokensAreUnique(t *testing.T) {
	tok := mockTokenizer()
	input := CardInput{Number: "4242424242424242", Expiry: "12/30", CVC: "123"}

	first, err := tok.NewForm(input).Tokenize(context.Background())
	require.NoError(t, err)
	second, err := tok.NewForm(input).Tokenize(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestMockConfirmPaymentSucceeds(t *testing.T) {
	form := mockTokenizer().NewForm(CardInput{
		Number: "4242424242424242", Expiry: "12/30", CVC: "123",
	})

	intent, err := form.ConfirmPayment(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.ID, "pi_mock_"))
	assert.Equal(t, models.PaymentIntentSucceeded, intent.Status)
	assert.Equal(t, "cs_test_123", intent.ClientSecret)
}

func TestMockTokenizeHonorsCancelledContext(t *testing.T) {
	tok := NewCardTokenizer(config.PaymentsConfig{ForceMock: true, MockLatencyMS: 600}, nil)
	form := tok.NewForm(CardInput{Number: "4242424242424242", Expiry: "12/30", CVC: "123"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := form.Tokenize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectBrand(t *testing.T) {
	cases := map[string]string{
		"4242424242424242": "visa",
		"5100000000000000": "mastercard",
		"5500000000000000": "mastercard",
		"5600000000000000": "unknown",
		"340000000000000":  "amex",
		"370000000000000":  "amex",
		"6011000000000000": "unknown",
		"":                 "unknown",
	}
	for number, brand := range cases {
		assert.Equal(t, brand, detectBrand(number), number)
	}
}

func TestLast4ShortNumberKeptWhole(t *testing.T) {
	form := mockTokenizer().NewForm(CardInput{Number: "42", Expiry: "12/30", CVC: "1"})

	details, err := form.Tokenize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", details.Last4)
}
