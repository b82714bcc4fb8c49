package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type activity struct {
	Venue     string  `json:"venue"`
	Type      string  `json:"type"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Cost      float64 `json:"cost"`
}

type scheduleResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		ID              string              `json:"id"`
		Location        string              `json:"location"`
		Budget          float64             `json:"budget"`
		Activities      map[string]activity `json:"activities"`
		TotalCost       float64             `json:"total_cost"`
		RemainingBudget float64             `json:"remaining_budget"`
	} `json:"data"`
}

func TestScheduleEndpoint(t *testing.T) {
	loadDotEnv(t)
	baseURL := strings.TrimRight(os.Getenv("WAYFARE_API_BASE_URL"), "/")
	if baseURL == "" {
		t.Skip("WAYFARE_API_BASE_URL not set; skipping integration test")
	}
	client := &http.Client{Timeout: 3 * time.Minute}
	waitForAPIReady(t, client, baseURL)

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(33 * time.Hour)
	code, body := postSchedule(t, client, baseURL, map[string]any{
		"user_request": "art and a long walk",
		"location":     "San Francisco, CA",
		"budget":       200,
		"interests":    []string{"museums", "parks"},
		"start_time":   start.Format(time.RFC3339),
		"end_time":     start.Add(8 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, code, string(body))

	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.True(t, resp.Success)
	assert.LessOrEqual(t, resp.Data.TotalCost, resp.Data.Budget)
	assert.InDelta(t, resp.Data.Budget-resp.Data.TotalCost, resp.Data.RemainingBudget, 0.001)

	// Keys are "Activity 1".."Activity N"; adjacent items share a boundary.
	for i := 2; i <= len(resp.Data.Activities); i++ {
		prev := resp.Data.Activities[fmt.Sprintf("Activity %d", i-1)]
		cur, ok := resp.Data.Activities[fmt.Sprintf("Activity %d", i)]
		require.True(t, ok, "missing Activity %d", i)
		assert.Equal(t, prev.EndTime, cur.StartTime)
	}

	if resp.Data.ID == "" {
		return
	}
	got, err := client.Get(baseURL + "/api/schedule/" + resp.Data.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)

	dsn := strings.TrimSpace(os.Getenv("WAYFARE_TEST_DSN"))
	if dsn == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	var location string
	require.NoError(t, db.QueryRow(ctx, `SELECT location FROM plans WHERE id = $1`, resp.Data.ID).Scan(&location))
	assert.Equal(t, "San Francisco, CA", location)
}

func TestScheduleEndpoint_RejectsBadWindow(t *testing.T) {
	loadDotEnv(t)
	baseURL := strings.TrimRight(os.Getenv("WAYFARE_API_BASE_URL"), "/")
	if baseURL == "" {
		t.Skip("WAYFARE_API_BASE_URL not set; skipping integration test")
	}
	client := &http.Client{Timeout: 30 * time.Second}
	waitForAPIReady(t, client, baseURL)

	start := time.Now().UTC().Add(24 * time.Hour)
	code, body := postSchedule(t, client, baseURL, map[string]any{
		"location":   "Lisbon",
		"budget":     100,
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(-time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, code, string(body))
}

func postSchedule(t *testing.T, client *http.Client, baseURL string, payload any) (int, []byte) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := client.Post(baseURL+"/api/schedule", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func waitForAPIReady(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("api not ready: GET %s/health did not return 200 in time", baseURL)
}

func loadDotEnv(t *testing.T) {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		return
	}
	path := ""
	for i := 0; i < 8; i++ {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		if _, set := os.LookupEnv(k); set {
			continue
		}
		t.Setenv(k, strings.TrimSpace(v))
	}
}
