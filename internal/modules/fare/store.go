// README: Fare rate store backed by PostgreSQL.
package fare

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRateNotFound = errors.New("fare rate not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetRate(ctx context.Context, mode string) (Rate, error) {
	var r Rate
	err := s.db.QueryRow(ctx, `
		SELECT mode, base_fare, per_km, per_min, flat, currency
		FROM fare_rates WHERE mode = $1`, mode).
		Scan(&r.Mode, &r.BaseFare, &r.PerKm, &r.PerMin, &r.Flat, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, fmt.Errorf("get fare rate %s: %w", mode, err)
	}
	return r, nil
}
