// README: Transit quote cache backed by Redis with an in-process layer in front.
package estimates

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

const (
	keyPrefix  = "estimates:quote:"
	DefaultTTL = 24 * time.Hour
)

// quoteRecord is the Redis value; money is stored in cents.
type quoteRecord struct {
	Method      string `json:"method"`
	Minutes     int    `json:"minutes"`
	CostCents   int64  `json:"cost_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Store implements itinerary.QuoteCache. Redis errors are logged and treated as misses,
// so a cache outage only costs extra research calls.
type Store struct {
	redis *redis.Client
	local *itinerary.MemoryQuoteCache
	ttl   time.Duration
	log   *zap.Logger
}

func NewStore(redis *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{redis: redis, local: itinerary.NewMemoryQuoteCache(), ttl: ttl, log: log}
}

func (s *Store) Lookup(ctx context.Context, key string) (itinerary.TransitQuote, bool) {
	if q, ok := s.local.Lookup(ctx, key); ok {
		return q, true
	}
	if s.redis == nil {
		return itinerary.TransitQuote{}, false
	}

	raw, err := s.redis.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return itinerary.TransitQuote{}, false
	}
	if err != nil {
		s.log.Warn("quote cache get failed", zap.String("key", key), zap.Error(err))
		return itinerary.TransitQuote{}, false
	}
	q, err := decode(raw)
	if err != nil {
		s.log.Warn("quote cache entry unreadable", zap.String("key", key), zap.Error(err))
		return itinerary.TransitQuote{}, false
	}
	s.local.Store(ctx, key, q)
	return q, true
}

// Store keeps the first quote written for a key. When another process got there first,
// its quote is adopted locally.
func (s *Store) Store(ctx context.Context, key string, q itinerary.TransitQuote) {
	if s.redis == nil {
		s.local.Store(ctx, key, q)
		return
	}

	raw, err := json.Marshal(quoteRecord{
		Method:      q.Method,
		Minutes:     q.Minutes,
		CostCents:   q.Cost.Amount,
		Currency:    q.Cost.Currency,
		Description: q.Description,
	})
	if err != nil {
		s.local.Store(ctx, key, q)
		return
	}

	set, err := s.redis.SetNX(ctx, keyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		s.log.Warn("quote cache set failed", zap.String("key", key), zap.Error(err))
		s.local.Store(ctx, key, q)
		return
	}
	if !set {
		if existing, err := s.redis.Get(ctx, keyPrefix+key).Bytes(); err == nil {
			if winner, err := decode(existing); err == nil {
				q = winner
			}
		}
	}
	s.local.Store(ctx, key, q)
}

func decode(raw []byte) (itinerary.TransitQuote, error) {
	var r quoteRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return itinerary.TransitQuote{}, err
	}
	return itinerary.TransitQuote{
		Method:      r.Method,
		Minutes:     r.Minutes,
		Cost:        types.Money{Amount: r.CostCents, Currency: r.Currency},
		Description: r.Description,
	}, nil
}

var _ itinerary.QuoteCache = (*Store)(nil)
