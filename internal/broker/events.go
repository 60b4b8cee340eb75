package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing storefront domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderRecorded publishes an OrderRecorded event
func (ep *EventPublisher) PublishOrderRecorded(ctx context.Context, event *models.OrderRecordedEvent) error {
	key := fmt.Sprintf("session-%s", event.SessionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCheckoutFailed publishes a CheckoutFailed event
func (ep *EventPublisher) PublishCheckoutFailed(ctx context.Context, event *models.CheckoutFailedEvent) error {
	key := fmt.Sprintf("session-%s", event.SessionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onOrderRecorded  func(context.Context, *models.OrderRecordedEvent) error
	onCheckoutFailed func(context.Context, *models.CheckoutFailedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderRecorded registers a handler for OrderRecorded events
func (eh *EventHandler) OnOrderRecorded(handler func(context.Context, *models.OrderRecordedEvent) error) {
	eh.onOrderRecorded = handler
}

// OnCheckoutFailed registers a handler for CheckoutFailed events
func (eh *EventHandler) OnCheckoutFailed(handler func(context.Context, *models.CheckoutFailedEvent) error) {
	eh.onCheckoutFailed = handler
}

// HandleMessage routes messages to the appropriate handler
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeOrderRecorded:
		if eh.onOrderRecorded != nil {
			var event models.OrderRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderRecorded event: %w", err)
			}
			return eh.onOrderRecorded(ctx, &event)
		}

	case models.EventTypeCheckoutFailed:
		if eh.onCheckoutFailed != nil {
			var event models.CheckoutFailedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CheckoutFailed event: %w", err)
			}
			return eh.onCheckoutFailed(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
