package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FailureReason classifies why a checkout attempt failed
type FailureReason string

const (
	ReasonNotReady            FailureReason = "NOT_READY"
	ReasonInvalidCardForm     FailureReason = "INVALID_CARD_FORM"
	ReasonTokenizationFailed  FailureReason = "TOKENIZATION_FAILED"
	ReasonMissingClientSecret FailureReason = "MISSING_CLIENT_SECRET"
	ReasonPaymentIncomplete   FailureReason = "PAYMENT_INCOMPLETE"
	ReasonPaymentNotSucceeded FailureReason = "PAYMENT_NOT_SUCCEEDED"
	ReasonException           FailureReason = "EXCEPTION"
)

// StageError marks which checkout stage produced an error
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("checkout stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// CheckoutResult is the outcome of a single checkout attempt. On success the
// payload is handed back for the caller to complete the order; the
// orchestrator never completes, persists or clears anything itself so that a
// retry cannot double-submit.
type CheckoutResult struct {
	OK            bool
	Reason        FailureReason
	Err           error
	PaymentIntent *models.PaymentIntent
	Payload       *models.CompleteCheckoutPayload
}

// RequiresAction reports whether the payment failed because the provider
// wants an additional authentication step (e.g. a 3-D-Secure challenge).
// Surfaced separately so callers can prompt instead of showing a generic
// failure.
func (r *CheckoutResult) RequiresAction() bool {
	return r.PaymentIntent != nil && r.PaymentIntent.Status == models.PaymentIntentRequiresAction
}

// CheckoutSession is the ephemeral per-session checkout state. It is reset
// explicitly when the client leaves the checkout flow.
type CheckoutSession struct {
	Customer     *models.Customer
	Payment      *models.PaymentMethod
	CardForm     CardForm
	Processing   bool
	ErrorMessage string
	Succeeded    bool
}

// CheckoutSessionView is the read snapshot exposed over the API
type CheckoutSessionView struct {
	Customer     *models.Customer `json:"customer,omitempty"`
	Method       string           `json:"method,omitempty"`
	Tokenized    bool             `json:"tokenized"`
	CanPay       bool             `json:"can_pay"`
	Processing   bool             `json:"processing"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Succeeded    bool             `json:"succeeded"`
}

// CheckoutEventPublisher publishes checkout lifecycle events, best-effort
type CheckoutEventPublisher interface {
	PublishCheckoutFailed(ctx context.Context, event *models.CheckoutFailedEvent) error
	PublishOrderRecorded(ctx context.Context, event *models.OrderRecordedEvent) error
}

// CheckoutService orchestrates checkout attempts per session:
// idle -> processing -> succeeded | failed.
type CheckoutService struct {
	gateway   PaymentIntentGateway
	publisher CheckoutEventPublisher
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*CheckoutSession
}

// NewCheckoutService creates a new checkout orchestrator. The publisher may
// be nil; events are then skipped.
func NewCheckoutService(gateway PaymentIntentGateway, publisher CheckoutEventPublisher) *CheckoutService {
	return &CheckoutService{
		gateway:   gateway,
		publisher: publisher,
		logger:    util.GetLogger(),
		sessions:  make(map[string]*CheckoutSession),
	}
}

func (s *CheckoutService) session(sessionID string) *CheckoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &CheckoutSession{}
		s.sessions[sessionID] = sess
	}
	return sess
}

// SetCustomer attaches the validated customer to the session
func (s *CheckoutService) SetCustomer(sessionID string, customer *models.Customer) {
	sess := s.session(sessionID)
	s.mu.Lock()
	sess.Customer = customer
	s.mu.Unlock()
}

// SelectPaymentMethod attaches the chosen payment method to the session
func (s *CheckoutService) SelectPaymentMethod(sessionID string, payment *models.PaymentMethod) {
	sess := s.session(sessionID)
	s.mu.Lock()
	sess.Payment = payment
	s.mu.Unlock()
}

// AttachCardForm binds a card form handle to the session
func (s *CheckoutService) AttachCardForm(sessionID string, form CardForm) {
	sess := s.session(sessionID)
	s.mu.Lock()
	sess.CardForm = form
	s.mu.Unlock()
}

// Reset clears all ephemeral checkout state for the session
func (s *CheckoutService) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// View returns a read snapshot of the session state
func (s *CheckoutService) View(sessionID string) *CheckoutSessionView {
	sess := s.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &CheckoutSessionView{
		Customer:     sess.Customer,
		Tokenized:    sess.Payment != nil && sess.Payment.Details != nil,
		CanPay:       sess.Customer != nil && sess.Payment != nil && sess.Payment.Method != "",
		Processing:   sess.Processing,
		ErrorMessage: sess.ErrorMessage,
		Succeeded:    sess.Succeeded,
	}
	if sess.Payment != nil {
		view.Method = sess.Payment.Method
	}
	return view
}

// HandlePayment runs one checkout attempt for the session total. Card
// methods are auto-tokenized when no token is attached yet; non-card methods
// succeed immediately with a basic payload. Every failure comes back as a
// typed reason; nothing panics past this boundary.
func (s *CheckoutService) HandlePayment(ctx context.Context, sessionID string, total int64) *CheckoutResult {
	ctx, span := util.StartSpan(ctx, "CheckoutService.HandlePayment")
	defer span.End()

	util.CheckoutAttemptsTotal.Inc()

	sess := s.session(sessionID)
	s.mu.Lock()
	sess.Processing = true
	sess.ErrorMessage = ""
	sess.Succeeded = false
	customer := sess.Customer
	payment := sess.Payment
	form := sess.CardForm
	s.mu.Unlock()

	res := s.runAttempt(ctx, customer, payment, form, total)

	s.mu.Lock()
	sess.Processing = false
	sess.Succeeded = res.OK
	if res.OK {
		// keep the tokenized details for a later retry of order completion
		sess.Payment = res.Payload.Payment
	} else {
		sess.ErrorMessage = failureMessage(res)
	}
	s.mu.Unlock()

	if res.OK {
		util.CheckoutSucceededTotal.Inc()
		s.logger.Info("Checkout attempt succeeded", zap.String("session_id", sessionID))
	} else {
		util.CheckoutFailedTotal.WithLabelValues(string(res.Reason)).Inc()
		s.logger.Warn("Checkout attempt failed",
			zap.String("session_id", sessionID),
			zap.String("reason", string(res.Reason)),
			zap.Error(res.Err))
		s.publishFailure(ctx, sessionID, res)
	}
	return res
}

// runAttempt executes the checkout steps in order. Reasons NOT_READY,
// INVALID_CARD_FORM and TOKENIZATION_FAILED are decided before or during
// tokenization; everything after is the card payment flow.
func (s *CheckoutService) runAttempt(ctx context.Context, customer *models.Customer, payment *models.PaymentMethod, form CardForm, total int64) *CheckoutResult {
	if customer == nil || payment == nil || payment.Method == "" {
		return &CheckoutResult{OK: false, Reason: ReasonNotReady}
	}

	// Non-card methods skip the payment intent flow entirely.
	if payment.Method != models.PaymentMethodCard {
		return &CheckoutResult{
			OK:      true,
			Payload: &models.CompleteCheckoutPayload{Customer: customer, Payment: payment},
		}
	}

	// The form handle is needed for confirmation even when the card is
	// already tokenized.
	if form == nil {
		return &CheckoutResult{OK: false, Reason: ReasonInvalidCardForm}
	}

	if payment.Details == nil {
		tokForm, ok := form.(TokenizingCardForm)
		if !ok {
			return &CheckoutResult{OK: false, Reason: ReasonInvalidCardForm}
		}
		details, err := tokForm.Tokenize(ctx)
		if err != nil {
			return &CheckoutResult{OK: false, Reason: ReasonTokenizationFailed, Err: err}
		}
		payment = &models.PaymentMethod{Method: models.PaymentMethodCard, Details: details}
	}

	outcome, err := s.performCardPayment(ctx, form, total)
	if err != nil {
		if errors.Is(err, errMissingClientSecret) {
			return &CheckoutResult{OK: false, Reason: ReasonMissingClientSecret, Err: err}
		}
		return &CheckoutResult{OK: false, Reason: ReasonException, Err: err}
	}

	if !outcome.success {
		if outcome.intent == nil || outcome.intent.Status == "" {
			return &CheckoutResult{OK: false, Reason: ReasonPaymentIncomplete, PaymentIntent: outcome.intent}
		}
		return &CheckoutResult{OK: false, Reason: ReasonPaymentNotSucceeded, PaymentIntent: outcome.intent}
	}

	return &CheckoutResult{
		OK:            true,
		PaymentIntent: outcome.intent,
		Payload: &models.CompleteCheckoutPayload{
			Customer:      customer,
			Payment:       payment,
			PaymentIntent: outcome.intent,
		},
	}
}

var errMissingClientSecret = errors.New("client_secret not returned by the backend")

type cardPaymentOutcome struct {
	success bool
	intent  *models.PaymentIntent
}

// performCardPayment creates the payment intent and confirms it through the
// card form. Only a status of exactly `succeeded` counts as success; other
// statuses are returned for the caller to classify.
func (s *CheckoutService) performCardPayment(ctx context.Context, form CardForm, total int64) (*cardPaymentOutcome, error) {
	if total <= 0 {
		return nil, fmt.Errorf("invalid amount for payment intent: %d", total)
	}

	resp, err := s.gateway.CreatePaymentIntent(ctx, total, "")
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.ClientSecret == "" {
		return nil, errMissingClientSecret
	}

	intent, err := form.ConfirmPayment(ctx, resp.ClientSecret)
	if err != nil {
		return nil, &StageError{Stage: "confirm", Err: err}
	}

	if intent == nil || intent.Status != models.PaymentIntentSucceeded {
		return &cardPaymentOutcome{success: false, intent: intent}, nil
	}
	return &cardPaymentOutcome{success: true, intent: intent}, nil
}

func (s *CheckoutService) publishFailure(ctx context.Context, sessionID string, res *CheckoutResult) {
	if s.publisher == nil {
		return
	}
	event := &models.CheckoutFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutFailed,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		Reason:    string(res.Reason),
	}
	if res.Err != nil {
		event.Message = res.Err.Error()
	}
	if err := s.publisher.PublishCheckoutFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish CheckoutFailed event", zap.Error(err))
	}
}

func failureMessage(res *CheckoutResult) string {
	switch res.Reason {
	case ReasonPaymentNotSucceeded, ReasonPaymentIncomplete:
		status := "unknown"
		if res.PaymentIntent != nil && res.PaymentIntent.Status != "" {
			status = res.PaymentIntent.Status
		}
		return fmt.Sprintf("payment left in state: %s", status)
	default:
		if res.Err != nil {
			return res.Err.Error()
		}
		return string(res.Reason)
	}
}
