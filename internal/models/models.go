package models

import "time"

// Product represents a product in the catalog. Prices are minor units.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Price       int64     `db:"price" json:"price"`
	Image       string    `db:"image" json:"image"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CartItem pairs a product with its selected quantity.
// Quantity is always >= 1; an update to zero removes the item.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Customer is the checkout shipping/billing contact. All fields required.
type Customer struct {
	FullName string `json:"fullName" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// Payment method identifiers
const (
	PaymentMethodCard = "card"
)

// CardDetails is the opaque tokenized-card payload attached after tokenization.
type CardDetails struct {
	Token      string `json:"token"`
	Last4      string `json:"last4,omitempty"`
	Brand      string `json:"brand,omitempty"`
	Cardholder string `json:"cardholder,omitempty"`
}

// PaymentMethod is the selected payment method. Details is nil until
// tokenization succeeds.
type PaymentMethod struct {
	Method  string       `json:"method"`
	Details *CardDetails `json:"details,omitempty"`
}

// Payment intent statuses (provider vocabulary)
const (
	PaymentIntentSucceeded             = "succeeded"
	PaymentIntentRequiresAction        = "requires_action"
	PaymentIntentRequiresPaymentMethod = "requires_payment_method"
	PaymentIntentProcessing            = "processing"
)

// PaymentIntent mirrors the provider's payment intent object. Only a
// `succeeded` status authorizes order completion.
type PaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount,omitempty"`
	Currency     string `json:"currency,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// CompleteCheckoutPayload is handed to the backend to finalize an order.
type CompleteCheckoutPayload struct {
	Customer      *Customer      `json:"customer"`
	Payment       *PaymentMethod `json:"payment"`
	PaymentIntent *PaymentIntent `json:"paymentIntent,omitempty"`
}

// Order statuses
const (
	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is the flattened snapshot of a cart item inside an order.
type OrderItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Order is an immutable record of a completed checkout.
type Order struct {
	ID     string      `json:"id"`
	Date   time.Time   `json:"date"`
	Status string      `json:"status"`
	Items  []OrderItem `json:"items"`
	Total  int64       `json:"total"`
}

// OrderHistoryLimit caps the per-session order ledger, newest first.
const OrderHistoryLimit = 20
