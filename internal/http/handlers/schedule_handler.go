// README: Schedule handlers (plan create/get/list).
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/plans"
	"wayfare/internal/service"
	"wayfare/internal/types"
)

type Planner interface {
	PlanTrip(ctx context.Context, req service.PlanRequest) (*service.PlanResult, error)
}

type PlanReader interface {
	Get(ctx context.Context, id types.ID) (*plans.Record, error)
	Recent(ctx context.Context, limit int) ([]plans.Record, error)
}

type ScheduleHandler struct {
	planner Planner
	plans   PlanReader
	timeout time.Duration
}

// NewScheduleHandler builds the handler. plans may be nil when persistence is disabled.
func NewScheduleHandler(planner Planner, plans PlanReader, timeout time.Duration) *ScheduleHandler {
	return &ScheduleHandler{planner: planner, plans: plans, timeout: timeout}
}

type scheduleReq struct {
	UserRequest  string   `json:"user_request"`
	Location     string   `json:"location"`
	Budget       *float64 `json:"budget"`
	Interests    []string `json:"interests"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	StartAddress string   `json:"start_address"`
}

// scheduleResp is a plan view with its stored ID.
type scheduleResp struct {
	ID string `json:"id,omitempty"`
	itinerary.PlanView
}

type planSummary struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Interests   []string  `json:"interests"`
	Budget      float64   `json:"budget"`
	TotalCost   float64   `json:"total_cost"`
	WindowStart time.Time `json:"start_time"`
	WindowEnd   time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// Create handles POST /api/schedule.
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req scheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		writeError(c, http.StatusBadRequest, "location is required")
		return
	}
	if req.Budget == nil {
		writeError(c, http.StatusBadRequest, "budget is required")
		return
	}
	if req.StartTime == "" || req.EndTime == "" {
		writeError(c, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	start, err := parseTime(req.StartTime)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseTime(req.EndTime)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.planner.PlanTrip(ctx, service.PlanRequest{
		UserRequest:  req.UserRequest,
		Location:     req.Location,
		Budget:       types.FromDollars(*req.Budget),
		Interests:    req.Interests,
		Start:        start,
		End:          end,
		StartAddress: req.StartAddress,
	})
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, scheduleResp{ID: string(res.ID), PlanView: res.Plan.View()})
}

// Get handles GET /api/schedule/:id.
func (h *ScheduleHandler) Get(c *gin.Context) {
	if h.plans == nil {
		writeError(c, http.StatusServiceUnavailable, "plan storage is disabled")
		return
	}
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing plan id")
		return
	}
	r, err := h.plans.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	var view itinerary.PlanView
	if err := json.Unmarshal(r.Body, &view); err != nil {
		writeScheduleError(c, fmt.Errorf("decode stored plan %s: %w", id, err))
		return
	}
	writeJSON(c, http.StatusOK, scheduleResp{ID: string(r.ID), PlanView: view})
}

// List handles GET /api/schedule?limit=N.
func (h *ScheduleHandler) List(c *gin.Context) {
	if h.plans == nil {
		writeError(c, http.StatusServiceUnavailable, "plan storage is disabled")
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	records, err := h.plans.Recent(c.Request.Context(), limit)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	out := make([]planSummary, 0, len(records))
	for _, r := range records {
		out = append(out, planSummary{
			ID:          string(r.ID),
			Location:    r.Location,
			Interests:   r.Interests,
			Budget:      r.Budget.Dollars(),
			TotalCost:   r.Spent.Dollars(),
			WindowStart: r.WindowStart,
			WindowEnd:   r.WindowEnd,
			CreatedAt:   r.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, out)
}

// parseTime accepts RFC 3339 with or without fractional seconds.
func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339", v)
	}
	return t, nil
}
