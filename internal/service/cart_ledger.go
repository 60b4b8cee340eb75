package service

import (
	"storefront-service/internal/models"
)

// CartLedger is an in-memory list of (product, quantity) pairs with a
// derived total. At most one entry exists per product id and quantities are
// always positive; an update to zero or below removes the entry.
//
// The ledger is pure state: persistence is layered on top by CartService.
type CartLedger struct {
	items []models.CartItem
	total int64
}

// NewCartLedger creates a ledger seeded with previously stored items
func NewCartLedger(items []models.CartItem) *CartLedger {
	l := &CartLedger{items: append([]models.CartItem{}, items...)}
	l.recomputeTotal()
	return l
}

// Add increments the quantity of an existing entry by 1, or inserts the
// product with quantity 1
func (l *CartLedger) Add(product models.Product) {
	for i := range l.items {
		if l.items[i].Product.ID == product.ID {
			l.items[i].Quantity++
			l.recomputeTotal()
			return
		}
	}
	l.items = append(l.items, models.CartItem{Product: product, Quantity: 1})
	l.recomputeTotal()
}

// Remove deletes the entry for the product. Returns false if the product is
// not in the ledger, in which case nothing changed.
func (l *CartLedger) Remove(productID int64) bool {
	for i := range l.items {
		if l.items[i].Product.ID == productID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.recomputeTotal()
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity for a product. The quantity is truncated
// toward zero and floored at 0; a resulting 0 removes the entry. Returns
// false if the product is not in the ledger.
func (l *CartLedger) UpdateQuantity(productID int64, quantity float64) bool {
	for i := range l.items {
		if l.items[i].Product.ID == productID {
			q := int(quantity)
			if q <= 0 {
				l.Remove(productID)
				return true
			}
			l.items[i].Quantity = q
			l.recomputeTotal()
			return true
		}
	}
	return false
}

// Clear empties the ledger
func (l *CartLedger) Clear() {
	l.items = l.items[:0]
	l.total = 0
}

// Items returns a copy of the ledger entries
func (l *CartLedger) Items() []models.CartItem {
	return append([]models.CartItem{}, l.items...)
}

// TotalPrice returns the derived total in minor units
func (l *CartLedger) TotalPrice() int64 {
	return l.total
}

// Count returns the total quantity across all entries
func (l *CartLedger) Count() int {
	count := 0
	for i := range l.items {
		count += l.items[i].Quantity
	}
	return count
}

func (l *CartLedger) recomputeTotal() {
	var total int64
	for i := range l.items {
		total += l.items[i].Product.Price * int64(l.items[i].Quantity)
	}
	l.total = total
}
