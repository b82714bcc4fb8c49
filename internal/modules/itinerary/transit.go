// README: Transit estimation between venues (same-area heuristic, researched quotes, fallback).
package itinerary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"wayfare/internal/types"
)

const (
	DefaultEstimateTimeout   = 5 * time.Second
	DefaultMaxTransitMinutes = 120
	sameAreaMinutes          = 10
	fallbackMinutes          = 15
	longDistanceNote         = "Long-distance trip, driving recommended"
)

// TransitQuote is a researched estimate as returned by a transit collaborator.
type TransitQuote struct {
	Method      string
	Minutes     int
	Cost        types.Money
	Description string
}

// TransitResearcher produces full transit estimates, usually over the network.
type TransitResearcher interface {
	ResearchTransit(ctx context.Context, from, to, location string) (TransitQuote, error)
}

// QuoteCache is a read-through cache of researched quotes. Implementations must be safe
// for concurrent use and keep the first quote stored for a key.
type QuoteCache interface {
	Lookup(ctx context.Context, key string) (TransitQuote, bool)
	Store(ctx context.Context, key string, q TransitQuote)
}

// QuoteKey identifies an address pair within a location.
func QuoteKey(from, to, location string) string {
	return normalizeAddress(location) + "|" + normalizeAddress(from) + "|" + normalizeAddress(to)
}

// MemoryQuoteCache is an in-process QuoteCache.
type MemoryQuoteCache struct {
	quotes sync.Map
}

func NewMemoryQuoteCache() *MemoryQuoteCache {
	return &MemoryQuoteCache{}
}

func (c *MemoryQuoteCache) Lookup(_ context.Context, key string) (TransitQuote, bool) {
	v, ok := c.quotes.Load(key)
	if !ok {
		return TransitQuote{}, false
	}
	return v.(TransitQuote), true
}

func (c *MemoryQuoteCache) Store(_ context.Context, key string, q TransitQuote) {
	c.quotes.LoadOrStore(key, q)
}

// Estimator resolves transit legs. It never fails: collaborator errors degrade to a
// short walking estimate.
type Estimator struct {
	researcher TransitResearcher
	cache      QuoteCache
	timeout    time.Duration
	maxMinutes int
	logger     *zap.Logger
}

type EstimatorOption func(*Estimator)

func WithQuoteCache(c QuoteCache) EstimatorOption {
	return func(e *Estimator) { e.cache = c }
}

func WithEstimateTimeout(d time.Duration) EstimatorOption {
	return func(e *Estimator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithMaxTransitMinutes(n int) EstimatorOption {
	return func(e *Estimator) {
		if n > 0 {
			e.maxMinutes = n
		}
	}
}

func WithEstimatorLogger(l *zap.Logger) EstimatorOption {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEstimator builds an Estimator. researcher may be nil, in which case every
// unresolved pair gets the fallback estimate.
func NewEstimator(researcher TransitResearcher, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		researcher: researcher,
		timeout:    DefaultEstimateTimeout,
		maxMinutes: DefaultMaxTransitMinutes,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuickEstimate answers cheaply when it can. ok=false means the pair needs FullEstimate.
func (e *Estimator) QuickEstimate(from, to, location string) (int, bool) {
	f, t := normalizeAddress(from), normalizeAddress(to)
	if f == "" || t == "" || f == t {
		return 0, true
	}
	if sharedTokens(f, t) >= 2 {
		return sameAreaMinutes, true
	}
	return 0, false
}

// FullEstimate asks the researcher, clamping the answer to the configured ceiling.
func (e *Estimator) FullEstimate(ctx context.Context, from, to, location string) TransitLeg {
	key := QuoteKey(from, to, location)
	if e.cache != nil {
		if q, ok := e.cache.Lookup(ctx, key); ok {
			return e.legFromQuote(q, from, to)
		}
	}
	if e.researcher == nil {
		return fallbackLeg(from, to)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	q, err := e.researcher.ResearchTransit(callCtx, from, to, location)
	if err != nil {
		e.logger.Warn("transit research failed, using walking fallback",
			zap.String("from", from), zap.String("to", to), zap.Error(err))
		return fallbackLeg(from, to)
	}
	if e.cache != nil {
		e.cache.Store(ctx, key, q)
	}
	return e.legFromQuote(q, from, to)
}

// Estimate tries the quick path first and falls back to FullEstimate.
func (e *Estimator) Estimate(ctx context.Context, from, to, location string) TransitLeg {
	if minutes, ok := e.QuickEstimate(from, to, location); ok {
		leg := TransitLeg{Method: MethodWalking, Minutes: minutes, Cost: types.Cents(0), From: from, To: to}
		if minutes > 0 {
			leg.Description = fmt.Sprintf("Short walk to %s", to)
		}
		return leg
	}
	return e.FullEstimate(ctx, from, to, location)
}

func (e *Estimator) legFromQuote(q TransitQuote, from, to string) TransitLeg {
	leg := TransitLeg{
		Method:      NormalizeMethod(q.Method),
		Minutes:     q.Minutes,
		Cost:        q.Cost,
		Description: q.Description,
		From:        from,
		To:          to,
	}
	if leg.Minutes < 1 {
		leg.Minutes = 1
	}
	if leg.Cost.IsNegative() {
		leg.Cost = types.Cents(0)
	}
	if leg.Cost.Currency == "" {
		leg.Cost.Currency = types.DefaultCurrency
	}
	if leg.Minutes >= e.maxMinutes {
		leg.Minutes = e.maxMinutes
		leg.Method = MethodDriving
		leg.Description = longDistanceNote
	}
	if leg.Description == "" {
		leg.Description = fmt.Sprintf("%s to %s", capitalize(string(leg.Method)), to)
	}
	return leg
}

func fallbackLeg(from, to string) TransitLeg {
	return TransitLeg{
		Method:      MethodWalking,
		Minutes:     fallbackMinutes,
		Cost:        types.Cents(0),
		Description: fmt.Sprintf("Walk to %s", to),
		From:        from,
		To:          to,
	}
}

// NormalizeMethod maps collaborator vocabulary onto the four leg methods.
func NormalizeMethod(m string) TransitMethod {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "walk", "walking":
		return MethodWalking
	case "transit", "public_transit", "public transit", "subway", "bus", "train", "metro":
		return MethodTransit
	case "taxi", "rideshare", "ride-share", "uber", "lyft", "cab":
		return MethodTaxi
	case "drive", "driving", "car":
		return MethodDriving
	}
	return MethodWalking
}

func normalizeAddress(a string) string {
	return strings.Join(strings.Fields(strings.ToLower(a)), " ")
}

func sharedTokens(a, b string) int {
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(a) {
		seen[tok] = true
	}
	n := 0
	for _, tok := range strings.Fields(b) {
		if seen[tok] {
			n++
			delete(seen, tok)
		}
	}
	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
