package service

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCartLedgerAddAndTotal(t *testing.T) {
	ledger := NewCartLedger(nil)

	a := models.Product{ID: 1, Title: "A", Price: 50}
	b := models.Product{ID: 2, Title: "B", Price: 100}

	ledger.Add(a)
	ledger.Add(a)
	ledger.Add(b)

	assert.Equal(t, 3, ledger.Count())
	assert.Equal(t, int64(200), ledger.TotalPrice())
	assert.Len(t, ledger.Items(), 2)
}

func TestCartLedgerAddIncrementsExistingEntry(t *testing.T) {
	ledger := NewCartLedger(nil)
	p := models.Product{ID: 7, Price: 10}

	ledger.Add(p)
	ledger.Add(p)

	items := ledger.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartLedgerRemove(t *testing.T) {
	ledger := NewCartLedger([]models.CartItem{
		{Product: models.Product{ID: 1, Price: 10}, Quantity: 2},
		{Product: models.Product{ID: 2, Price: 5}, Quantity: 1},
	})

	assert.True(t, ledger.Remove(1))
	assert.Equal(t, int64(5), ledger.TotalPrice())
	assert.Equal(t, 1, ledger.Count())

	// absent product changes nothing
	assert.False(t, ledger.Remove(99))
	assert.Equal(t, int64(5), ledger.TotalPrice())
}

func TestCartLedgerUpdateQuantityTruncatesTowardZero(t *testing.T) {
	ledger := NewCartLedger([]models.CartItem{
		{Product: models.Product{ID: 1, Price: 100}, Quantity: 1},
	})

	assert.True(t, ledger.UpdateQuantity(1, 3.7))
	assert.Equal(t, 3, ledger.Items()[0].Quantity)
	assert.Equal(t, int64(300), ledger.TotalPrice())
}

func TestCartLedgerUpdateQuantityZeroRemoves(t *testing.T) {
	ledger := NewCartLedger([]models.CartItem{
		{Product: models.Product{ID: 1, Price: 100}, Quantity: 2},
	})

	assert.True(t, ledger.UpdateQuantity(1, 0))
	assert.Empty(t, ledger.Items())
	assert.Zero(t, ledger.TotalPrice())
}

func TestCartLedgerUpdateQuantityFractionBelowOneRemoves(t *testing.T) {
	ledger := NewCartLedger([]models.CartItem{
		{Product: models.Product{ID: 1, Price: 100}, Quantity: 2},
	})

	// 0.9 truncates to 0, which removes the entry
	assert.True(t, ledger.UpdateQuantity(1, 0.9))
	assert.Empty(t, ledger.Items())
}

func TestCartLedgerUpdateQuantityUnknownProduct(t *testing.T) {
	ledger := NewCartLedger(nil)
	assert.False(t, ledger.UpdateQuantity(42, 3))
	assert.Empty(t, ledger.Items())
}

func TestCartLedgerClear(t *testing.T) {
	ledger := NewCartLedger([]models.CartItem{
		{Product: models.Product{ID: 1, Price: 100}, Quantity: 2},
	})

	ledger.Clear()
	assert.Empty(t, ledger.Items())
	assert.Zero(t, ledger.TotalPrice())
	assert.Zero(t, ledger.Count())
}

func TestCartLedgerItemsReturnsCopy(t *testing.T) {
	ledger := NewCartLedger([]models.CartItem{
		{Product: models.Product{ID: 1, Price: 100}, Quantity: 2},
	})

	items := ledger.Items()
	items[0].Quantity = 99

	assert.Equal(t, 2, ledger.Items()[0].Quantity)
}
