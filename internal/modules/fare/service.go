// README: Fare service computes transit leg cost estimates.
package fare

import (
	"context"
	"errors"
	"math"
	"time"

	"wayfare/internal/types"
)

const (
	nightSurcharge = 200 // cents, 22:00-06:00 for taxi rides
	kmStep         = 0.2
)

// defaultRates apply when no store is configured or a mode has no stored row.
var defaultRates = map[string]Rate{
	ModeWalking: {Mode: ModeWalking, Currency: types.DefaultCurrency},
	ModeTransit: {Mode: ModeTransit, Flat: 275, Currency: types.DefaultCurrency},
	ModeTaxi:    {Mode: ModeTaxi, BaseFare: 350, PerKm: 175, PerMin: 40, Currency: types.DefaultCurrency},
	ModeDriving: {Mode: ModeDriving, PerKm: 30, Flat: 600, Currency: types.DefaultCurrency},
}

var ErrUnknownMode = errors.New("unknown fare mode")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) rate(ctx context.Context, mode string) (Rate, error) {
	if s.store != nil {
		r, err := s.store.GetRate(ctx, mode)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrRateNotFound) {
			return Rate{}, err
		}
	}
	r, ok := defaultRates[mode]
	if !ok {
		return Rate{}, ErrUnknownMode
	}
	return r, nil
}

func (s *Service) Estimate(ctx context.Context, req FareRequest) (FareResult, error) {
	r, err := s.rate(ctx, req.Mode)
	if err != nil {
		return FareResult{}, err
	}

	breakdown := map[string]int64{}
	total := r.BaseFare + r.Flat
	breakdown["base"] = r.BaseFare
	if r.Flat > 0 {
		breakdown["flat"] = r.Flat
	}

	if r.PerKm > 0 && req.DistanceKm > 0 {
		// charged per started 0.2 km, one fifth of the km rate each
		steps := int64(math.Ceil(math.Round(req.DistanceKm/kmStep*1e6) / 1e6))
		dist := steps * r.PerKm / 5
		breakdown["distance"] = dist
		total += dist
	}
	if r.PerMin > 0 && req.DurationMin > 0 {
		tm := int64(math.Ceil(req.DurationMin)) * r.PerMin
		breakdown["time"] = tm
		total += tm
	}
	if req.Mode == ModeTaxi && isNight(req.RequestTime) {
		breakdown["night"] = nightSurcharge
		total += nightSurcharge
	}

	return FareResult{TotalAmount: total, Currency: r.Currency, Breakdown: breakdown}, nil
}

// EstimateMoney is Estimate reduced to a Money value.
func (s *Service) EstimateMoney(ctx context.Context, req FareRequest) (types.Money, error) {
	res, err := s.Estimate(ctx, req)
	if err != nil {
		return types.Money{}, err
	}
	return types.Money{Amount: res.TotalAmount, Currency: res.Currency}, nil
}

func isNight(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	h := t.Hour()
	return h >= 22 || h < 6
}
