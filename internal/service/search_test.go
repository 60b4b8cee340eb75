package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	products []models.Product
	queries  []string
}

func (s *fakeSearcher) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	s.queries = append(s.queries, term)
	var out []models.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestSearchBelowMinCharsSkipsCatalog(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := NewSearchService(searcher, 2)

	results, err := svc.Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, searcher.queries)

	// whitespace does not count toward the threshold
	results, err = svc.Search(context.Background(), "  a  ")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, searcher.queries)
}

func TestSearchTrimsAndQueries(t *testing.T) {
	searcher := &fakeSearcher{products: []models.Product{
		{ID: 1, Title: "Coffee Mug"},
		{ID: 2, Title: "T-Shirt"},
	}}
	svc := NewSearchService(searcher, 2)

	results, err := svc.Search(context.Background(), "  mug ")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Coffee Mug", results[0].Title)
	assert.Equal(t, []string{"mug"}, searcher.queries)
}

type flushRecorder struct {
	mu      sync.Mutex
	flushes []string
	clears  int
}

func (r *flushRecorder) onFlush(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes = append(r.flushes, v)
}

func (r *flushRecorder) onClear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
}

func (r *flushRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.flushes...)
}

func TestDebouncedInputFlushesAfterDelay(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(20*time.Millisecond, rec.onFlush, rec.onClear)
	defer input.Stop()

	input.SetValue("m")
	input.SetValue("mu")
	input.SetValue("mug")

	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	// only the final value flushes
	assert.Equal(t, []string{"mug"}, rec.snapshot())
}

func TestDebouncedInputKeystrokeRestartsTimer(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(50*time.Millisecond, rec.onFlush, rec.onClear)
	defer input.Stop()

	input.SetValue("m")
	time.Sleep(30 * time.Millisecond)
	input.SetValue("mu")
	time.Sleep(30 * time.Millisecond)

	// neither delay has fully elapsed since the last keystroke
	assert.Empty(t, rec.snapshot())
}

func TestDebouncedInputCompositionSuppressesTimer(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(10*time.Millisecond, rec.onFlush, rec.onClear)
	defer input.Stop()

	input.CompositionStart()
	input.SetValue("に")
	input.SetValue("にほ")
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, rec.snapshot())

	input.CompositionEnd("にほん")
	assert.Equal(t, []string{"にほん"}, rec.snapshot())
}

func TestDebouncedInputCompositionStartCancelsPendingFlush(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(20*time.Millisecond, rec.onFlush, rec.onClear)
	defer input.Stop()

	input.SetValue("mug")
	input.CompositionStart()
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, rec.snapshot())
}

func TestDebouncedInputFlushIsImmediate(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(time.Hour, rec.onFlush, rec.onClear)
	defer input.Stop()

	input.SetValue("mug")
	input.Flush()

	assert.Equal(t, []string{"mug"}, rec.snapshot())

	// the cancelled timer never fires a second flush
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []string{"mug"}, rec.snapshot())
}

func TestDebouncedInputClear(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(20*time.Millisecond, rec.onFlush, rec.onClear)
	defer input.Stop()

	input.SetValue("mug")
	input.Clear()

	assert.Empty(t, input.Value())
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.clears)
}

func TestDebouncedInputStopCancelsWithoutFlushing(t *testing.T) {
	rec := &flushRecorder{}
	input := NewDebouncedInput(10*time.Millisecond, rec.onFlush, rec.onClear)

	input.SetValue("mug")
	input.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.Equal(t, "mug", input.Value())
}
