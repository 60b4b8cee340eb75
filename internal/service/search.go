package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// ProductSearcher finds catalog products by title
type ProductSearcher interface {
	SearchProducts(ctx context.Context, term string) ([]models.Product, error)
}

// SearchService filters the catalog by a search term. Terms shorter than the
// minimum character threshold return nothing without hitting the catalog.
type SearchService struct {
	catalog  ProductSearcher
	minChars int
}

// NewSearchService creates a new search service
func NewSearchService(catalog ProductSearcher, minChars int) *SearchService {
	return &SearchService{catalog: catalog, minChars: minChars}
}

// Search returns products whose title contains the term, case-insensitive
func (s *SearchService) Search(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if len(term) < s.minChars {
		return []models.Product{}, nil
	}
	util.SearchQueriesTotal.Inc()
	return s.catalog.SearchProducts(ctx, term)
}

type inputState int

const (
	inputIdle inputState = iota
	inputComposing
	inputPendingFlush
)

// DebouncedInput buffers a text input behind a single timer. New input
// cancels and restarts the timer; IME composition suppresses it entirely
// until composition ends, which force-flushes. Blur/submit call Flush.
// At most one timer is live per input instance.
type DebouncedInput struct {
	mu      sync.Mutex
	state   inputState
	value   string
	delay   time.Duration
	timer   *time.Timer
	onFlush func(string)
	onClear func()
}

// NewDebouncedInput creates a buffered input with flush and clear callbacks
func NewDebouncedInput(delay time.Duration, onFlush func(string), onClear func()) *DebouncedInput {
	return &DebouncedInput{
		state:   inputIdle,
		delay:   delay,
		onFlush: onFlush,
		onClear: onClear,
	}
}

// SetValue records a keystroke. Outside composition the debounce timer is
// restarted; during composition only the value is tracked.
func (d *DebouncedInput) SetValue(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.value = value
	if d.state == inputComposing {
		return
	}

	d.stopTimerLocked()
	d.state = inputPendingFlush
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// CompositionStart suspends debouncing while the IME composes
func (d *DebouncedInput) CompositionStart() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.state = inputComposing
}

// CompositionEnd leaves composition and force-flushes the composed value
func (d *DebouncedInput) CompositionEnd(value string) {
	d.mu.Lock()
	d.value = value
	d.stopTimerLocked()
	d.state = inputIdle
	flush := d.onFlush
	v := d.value
	d.mu.Unlock()

	if flush != nil {
		flush(v)
	}
}

// Flush forces the pending value out immediately (blur or submit)
func (d *DebouncedInput) Flush() {
	d.mu.Lock()
	d.stopTimerLocked()
	d.state = inputIdle
	flush := d.onFlush
	v := d.value
	d.mu.Unlock()

	if flush != nil {
		flush(v)
	}
}

// Clear cancels any pending flush and resets the value
func (d *DebouncedInput) Clear() {
	d.mu.Lock()
	d.stopTimerLocked()
	d.state = inputIdle
	d.value = ""
	clear := d.onClear
	d.mu.Unlock()

	if clear != nil {
		clear()
	}
}

// Stop cancels the pending timer without flushing
func (d *DebouncedInput) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.state = inputIdle
}

// Value returns the currently buffered value
func (d *DebouncedInput) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

func (d *DebouncedInput) fire() {
	d.mu.Lock()
	if d.state != inputPendingFlush {
		d.mu.Unlock()
		return
	}
	d.state = inputIdle
	d.timer = nil
	flush := d.onFlush
	v := d.value
	d.mu.Unlock()

	if flush != nil {
		flush(v)
	}
}

func (d *DebouncedInput) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
