package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfare/internal/http/handlers"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/plans"
	"wayfare/internal/service"
	"wayfare/internal/types"
)

type stubPlanner struct {
	got service.PlanRequest
	err error
}

func (s *stubPlanner) PlanTrip(_ context.Context, req service.PlanRequest) (*service.PlanResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	c := &itinerary.Candidate{Name: "Exploratorium", Category: "museums", Cost: types.FromDollars(30)}
	return &service.PlanResult{
		ID: "p-1",
		Plan: &itinerary.Plan{
			Location: req.Location,
			Budget:   req.Budget,
			Window:   itinerary.Window{Start: req.Start, End: req.End},
			Items: []itinerary.ScheduledItem{
				{Kind: itinerary.KindVenue, Candidate: c, Start: req.Start, End: req.Start.Add(time.Hour)},
			},
			Spent: c.Cost,
		},
	}, nil
}

type stubPlans struct {
	records map[types.ID]*plans.Record
}

func (s *stubPlans) Get(_ context.Context, id types.ID) (*plans.Record, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, plans.ErrNotFound
	}
	return r, nil
}

func (s *stubPlans) Recent(context.Context, int) ([]plans.Record, error) {
	var out []plans.Record
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, nil
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func buildTestRouter(p handlers.Planner, r handlers.PlanReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewScheduleHandler(p, r, time.Second)
	e := gin.New()
	e.POST("/api/schedule", h.Create)
	e.GET("/api/schedule", h.List)
	e.GET("/api/schedule/:id", h.Get)
	return e
}

func doRequest(t *testing.T, e *gin.Engine, method, path string, body any) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func validBody() map[string]any {
	return map[string]any{
		"user_request": "a relaxed day of museums",
		"location":     "San Francisco",
		"budget":       200,
		"interests":    []string{"museums"},
		"start_time":   "2026-03-14T09:00:00Z",
		"end_time":     "2026-03-14T17:00:00.000Z",
	}
}

func TestCreate_OK(t *testing.T) {
	p := &stubPlanner{}
	code, resp := doRequest(t, buildTestRouter(p, nil), http.MethodPost, "/api/schedule", validBody())
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	assert.Equal(t, int64(20000), p.got.Budget.Amount)
	assert.Equal(t, 8*time.Hour, p.got.End.Sub(p.got.Start))
	assert.Equal(t, "a relaxed day of museums", p.got.UserRequest)

	var data struct {
		ID         string                     `json:"id"`
		TotalCost  float64                    `json:"total_cost"`
		Activities map[string]json.RawMessage `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "p-1", data.ID)
	assert.Equal(t, 30.0, data.TotalCost)
	assert.Contains(t, data.Activities, "Activity 1")
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing location", func(b map[string]any) { delete(b, "location") }},
		{"missing budget", func(b map[string]any) { delete(b, "budget") }},
		{"missing end", func(b map[string]any) { delete(b, "end_time") }},
		{"bad start", func(b map[string]any) { b["start_time"] = "9am" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			tt.mutate(body)
			code, resp := doRequest(t, buildTestRouter(&stubPlanner{}, nil), http.MethodPost, "/api/schedule", body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{itinerary.ErrInvalidWindow, http.StatusBadRequest},
		{itinerary.ErrNegativeBudget, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, _ := doRequest(t, buildTestRouter(&stubPlanner{err: tt.err}, nil), http.MethodPost, "/api/schedule", validBody())
		if code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, code)
		}
	}
}

func TestGet(t *testing.T) {
	view := itinerary.PlanView{Location: "Lisbon", Budget: 120, TotalCost: 45}
	body, err := json.Marshal(view)
	require.NoError(t, err)
	store := &stubPlans{records: map[types.ID]*plans.Record{
		"abc": {ID: "abc", Location: "Lisbon", Body: body},
	}}
	e := buildTestRouter(&stubPlanner{}, store)

	code, resp := doRequest(t, e, http.MethodGet, "/api/schedule/abc", nil)
	require.Equal(t, http.StatusOK, code)
	var data struct {
		ID       string `json:"id"`
		Location string `json:"location"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "abc", data.ID)
	assert.Equal(t, "Lisbon", data.Location)

	code, _ = doRequest(t, e, http.MethodGet, "/api/schedule/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = doRequest(t, e, http.MethodGet, "/api/schedule", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), "Lisbon")

	code, _ = doRequest(t, e, http.MethodGet, "/api/schedule?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGet_StorageDisabled(t *testing.T) {
	code, _ := doRequest(t, buildTestRouter(&stubPlanner{}, nil), http.MethodGet, "/api/schedule/abc", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
