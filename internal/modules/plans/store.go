// README: Plan store backed by PostgreSQL.
package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wayfare/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO plans (
			id, location, interests, budget, spent, currency,
			window_start, window_end, body, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(r.ID),
		r.Location,
		r.Interests,
		r.Budget.Amount,
		r.Spent.Amount,
		r.Budget.Currency,
		r.WindowStart,
		r.WindowEnd,
		[]byte(r.Body),
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, location, interests, budget, spent, currency,
		       window_start, window_end, body, created_at
		FROM plans
		WHERE id = $1`, string(id),
	)

	var r Record
	var body []byte
	err := row.Scan(
		&r.ID, &r.Location, &r.Interests, &r.Budget.Amount, &r.Spent.Amount, &r.Budget.Currency,
		&r.WindowStart, &r.WindowEnd, &body, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	r.Spent.Currency = r.Budget.Currency
	r.Body = body
	return &r, nil
}

// ListRecent returns the newest plans without their bodies.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, location, interests, budget, spent, currency,
		       window_start, window_end, created_at
		FROM plans
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.Location, &r.Interests, &r.Budget.Amount, &r.Spent.Amount, &r.Budget.Currency,
			&r.WindowStart, &r.WindowEnd, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.Spent.Currency = r.Budget.Currency
		out = append(out, r)
	}
	return out, rows.Err()
}
