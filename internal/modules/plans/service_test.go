package plans

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

type memRepo struct {
	records map[types.ID]*Record
	limit   int
}

func (m *memRepo) Create(_ context.Context, r *Record) error {
	m.records[r.ID] = r
	return nil
}

func (m *memRepo) Get(_ context.Context, id types.ID) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *memRepo) ListRecent(_ context.Context, limit int) ([]Record, error) {
	m.limit = limit
	return nil, nil
}

func samplePlan() *itinerary.Plan {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := &itinerary.Candidate{Name: "Exploratorium", Category: "museums", Cost: types.FromDollars(30), DurationText: "2 hours"}
	return &itinerary.Plan{
		Location:  "San Francisco",
		Interests: []string{"museums"},
		Budget:    types.FromDollars(200),
		Window:    itinerary.Window{Start: start, End: start.Add(8 * time.Hour)},
		Items: []itinerary.ScheduledItem{
			{Kind: itinerary.KindVenue, Candidate: c, Start: start, End: start.Add(2 * time.Hour)},
		},
		Spent: types.FromDollars(30),
	}
}

func TestService_SaveAndGet(t *testing.T) {
	repo := &memRepo{records: map[types.ID]*Record{}}
	svc := NewService(repo)

	id, err := svc.Save(context.Background(), samplePlan())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	r, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "San Francisco", r.Location)
	assert.Equal(t, int64(3000), r.Spent.Amount)

	var view itinerary.PlanView
	require.NoError(t, json.Unmarshal(r.Body, &view))
	assert.Equal(t, "San Francisco", view.Location)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_RecentClampsLimit(t *testing.T) {
	repo := &memRepo{records: map[types.ID]*Record{}}
	svc := NewService(repo)

	_, _ = svc.Recent(context.Background(), 0)
	assert.Equal(t, defaultListLimit, repo.limit)
	_, _ = svc.Recent(context.Background(), 1000)
	assert.Equal(t, maxListLimit, repo.limit)
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("WAYFARE_TEST_DSN")
	if dsn == "" {
		t.Skip("WAYFARE_TEST_DSN not set; skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	svc := NewService(NewStore(pool))
	id, err := svc.Save(ctx, samplePlan())
	require.NoError(t, err)
	defer pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, string(id))

	r, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"museums"}, r.Interests)
	assert.True(t, r.WindowStart.Equal(samplePlan().Window.Start))

	_, err = svc.Get(ctx, types.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}
