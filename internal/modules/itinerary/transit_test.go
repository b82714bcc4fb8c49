package itinerary

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/internal/types"
)

// stubResearcher answers from fn and counts calls.
type stubResearcher struct {
	fn    func(from, to string) (TransitQuote, error)
	calls atomic.Int64
}

func (s *stubResearcher) ResearchTransit(ctx context.Context, from, to, _ string) (TransitQuote, error) {
	s.calls.Add(1)
	return s.fn(from, to)
}

func fixedQuote(method string, minutes int, cents int64) *stubResearcher {
	return &stubResearcher{fn: func(_, _ string) (TransitQuote, error) {
		return TransitQuote{Method: method, Minutes: minutes, Cost: types.Cents(cents)}, nil
	}}
}

func TestEstimator_QuickEstimate(t *testing.T) {
	e := NewEstimator(nil)
	tests := []struct {
		name   string
		from   string
		to     string
		want   int
		wantOK bool
	}{
		{"empty from", "", "Pier 39", 0, true},
		{"empty to", "Pier 39", "", 0, true},
		{"identical", "Pier 39", "Pier 39", 0, true},
		{"identical modulo case and spaces", "  Pier   39 ", "pier 39", 0, true},
		{"same street", "100 Market St", "200 Market St", 10, true},
		{"one shared token", "100 Market St", "1 Market Plaza", 0, false},
		{"unrelated", "Pier 39", "Golden Gate Park", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.QuickEstimate(tt.from, tt.to, "San Francisco")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimator_FullEstimate(t *testing.T) {
	ctx := context.Background()

	t.Run("passes quote through", func(t *testing.T) {
		e := NewEstimator(fixedQuote("public_transit", 25, 275))
		leg := e.FullEstimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
		assert.Equal(t, MethodTransit, leg.Method)
		assert.Equal(t, 25, leg.Minutes)
		assert.Equal(t, int64(275), leg.Cost.Amount)
		assert.Equal(t, "Pier 39", leg.From)
		assert.Equal(t, "Coit Tower", leg.To)
		assert.NotEmpty(t, leg.Description)
	})

	t.Run("clamps to ceiling and forces driving", func(t *testing.T) {
		e := NewEstimator(fixedQuote("walking", 400, 0))
		leg := e.FullEstimate(ctx, "Pier 39", "Napa Valley", "San Francisco")
		assert.Equal(t, DefaultMaxTransitMinutes, leg.Minutes)
		assert.Equal(t, MethodDriving, leg.Method)
		assert.Equal(t, longDistanceNote, leg.Description)
	})

	t.Run("raises zero duration to one minute", func(t *testing.T) {
		e := NewEstimator(fixedQuote("walking", 0, -50))
		leg := e.FullEstimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
		assert.Equal(t, 1, leg.Minutes)
		assert.Equal(t, int64(0), leg.Cost.Amount)
	})

	t.Run("error falls back to walking", func(t *testing.T) {
		r := &stubResearcher{fn: func(_, _ string) (TransitQuote, error) {
			return TransitQuote{}, errors.New("quota exceeded")
		}}
		leg := NewEstimator(r).FullEstimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
		assert.Equal(t, MethodWalking, leg.Method)
		assert.Equal(t, 15, leg.Minutes)
		assert.Equal(t, int64(0), leg.Cost.Amount)
	})

	t.Run("timeout falls back to walking", func(t *testing.T) {
		r := &blockingResearcher{}
		e := NewEstimator(r, WithEstimateTimeout(20*time.Millisecond))
		start := time.Now()
		leg := e.FullEstimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, 15, leg.Minutes)
		assert.Equal(t, MethodWalking, leg.Method)
	})

	t.Run("nil researcher falls back", func(t *testing.T) {
		leg := NewEstimator(nil).FullEstimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
		assert.Equal(t, 15, leg.Minutes)
	})
}

type blockingResearcher struct{}

func (blockingResearcher) ResearchTransit(ctx context.Context, _, _, _ string) (TransitQuote, error) {
	<-ctx.Done()
	return TransitQuote{}, ctx.Err()
}

func TestEstimator_Estimate(t *testing.T) {
	r := fixedQuote("taxi", 22, 1800)
	e := NewEstimator(r)
	ctx := context.Background()

	leg := e.Estimate(ctx, "100 Market St", "200 Market St", "San Francisco")
	assert.Equal(t, 10, leg.Minutes)
	assert.Equal(t, MethodWalking, leg.Method)
	assert.Equal(t, int64(0), r.calls.Load())

	leg = e.Estimate(ctx, "Pier 39", "", "San Francisco")
	assert.Equal(t, 0, leg.Minutes)

	leg = e.Estimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
	assert.Equal(t, 22, leg.Minutes)
	assert.Equal(t, MethodTaxi, leg.Method)
	assert.Equal(t, int64(1), r.calls.Load())
}

func TestEstimator_CacheReadThrough(t *testing.T) {
	r := fixedQuote("driving", 18, 900)
	cache := NewMemoryQuoteCache()
	e := NewEstimator(r, WithQuoteCache(cache))
	ctx := context.Background()

	first := e.FullEstimate(ctx, "Pier 39", "Coit Tower", "San Francisco")
	second := e.FullEstimate(ctx, "pier 39", "COIT TOWER", "san francisco")
	assert.Equal(t, first.Minutes, second.Minutes)
	assert.Equal(t, int64(1), r.calls.Load())

	_, ok := cache.Lookup(ctx, QuoteKey("Pier 39", "Coit Tower", "San Francisco"))
	assert.True(t, ok)
}

func TestEstimator_FailuresAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	r := &stubResearcher{fn: func(_, _ string) (TransitQuote, error) {
		if fail.Load() {
			return TransitQuote{}, errors.New("unavailable")
		}
		return TransitQuote{Method: "walking", Minutes: 7}, nil
	}}
	e := NewEstimator(r, WithQuoteCache(NewMemoryQuoteCache()))
	ctx := context.Background()

	assert.Equal(t, 15, e.FullEstimate(ctx, "Pier 39", "Coit Tower", "").Minutes)
	fail.Store(false)
	assert.Equal(t, 7, e.FullEstimate(ctx, "Pier 39", "Coit Tower", "").Minutes)
}

func TestMemoryQuoteCache_FirstWriterWins(t *testing.T) {
	cache := NewMemoryQuoteCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			cache.Store(ctx, "k", TransitQuote{Minutes: n})
		}(i)
	}
	close(start)
	wg.Wait()

	first, ok := cache.Lookup(ctx, "k")
	require.True(t, ok)
	cache.Store(ctx, "k", TransitQuote{Minutes: 99})
	again, _ := cache.Lookup(ctx, "k")
	assert.Equal(t, first, again)
}

func TestNormalizeMethod(t *testing.T) {
	tests := map[string]TransitMethod{
		"walking":        MethodWalking,
		"Walk":           MethodWalking,
		"public_transit": MethodTransit,
		"subway":         MethodTransit,
		"bus":            MethodTransit,
		"rideshare":      MethodTaxi,
		"Uber":           MethodTaxi,
		"taxi":           MethodTaxi,
		"driving":        MethodDriving,
		"teleport":       MethodWalking,
		"":               MethodWalking,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeMethod(in), in)
	}
}
