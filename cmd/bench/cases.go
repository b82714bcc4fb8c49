// README: Benchmark cases for the schedule API; covers HTTP, DB, Redis, plan invariants and throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"wayfare/internal/modules/itinerary"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// planID is set by the create case and read by the fetch case.
	planID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

type scheduleEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		ID string `json:"id"`
		itinerary.PlanView
	} `json:"data"`
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				var missing []string
				for _, t := range tables {
					var exists bool
					if err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, t).Scan(&exists); err != nil || !exists {
						missing = append(missing, t)
					}
				}
				if len(missing) > 0 {
					return Result{Status: "FAIL", Note: "missing: " + strings.Join(missing, ",")}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("%d tables", len(tables))}
			},
		},
		httpCase("API: server reachable", http.MethodGet, base+"/health", nil, []int{http.StatusOK}),
		httpCase("API: reject inverted window", http.MethodPost, base+"/api/schedule", scheduleBody(200, 8*time.Hour, true), []int{http.StatusBadRequest}),
		httpCase("API: reject negative budget", http.MethodPost, base+"/api/schedule", scheduleBody(-5, 8*time.Hour, false), []int{http.StatusBadRequest}),
		{
			Name: "Plan: 8h / $200 within budget and window",
			Run: func(ctx context.Context, r *Runner) Result {
				env, lat, err := r.schedule(ctx, base, scheduleBody(200, 8*time.Hour, false))
				if err != nil {
					return Result{Status: "FAIL", Latency: lat, Note: err.Error()}
				}
				if note := checkPlan(env); note != "" {
					return Result{Status: "FAIL", Latency: lat, Note: note}
				}
				r.planID = env.Data.ID
				return Result{Status: "PASS", Latency: lat, Note: fmt.Sprintf("venues=%d spent=$%.2f", env.Data.Summary.TotalActivities, env.Data.TotalCost)}
			},
		},
		{
			Name: "Plan: $10 stays within budget",
			Run: func(ctx context.Context, r *Runner) Result {
				env, lat, err := r.schedule(ctx, base, scheduleBody(10, 8*time.Hour, false))
				if err != nil {
					return Result{Status: "FAIL", Latency: lat, Note: err.Error()}
				}
				if env.Data.TotalCost > 10 {
					return Result{Status: "FAIL", Latency: lat, Note: fmt.Sprintf("spent $%.2f", env.Data.TotalCost)}
				}
				return Result{Status: "PASS", Latency: lat, Note: fmt.Sprintf("venues=%d", env.Data.Summary.TotalActivities)}
			},
		},
		{
			Name: "Plan: fetch stored plan",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.planID == "" {
					return Result{Status: "SKIP", Note: "no stored plan id"}
				}
				return httpCase("", http.MethodGet, base+"/api/schedule/"+r.planID, nil, []int{http.StatusOK}).Run(ctx, r)
			},
		},
		{
			Name: "Cache: transit quotes in redis",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				keys, err := r.redis.Keys(ctx, "estimates:quote:*").Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("keys=%d", len(keys))}
			},
		},
		{
			Name: "Perf: schedule throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/schedule", scheduleBody(150, 6*time.Hour, false))
			},
		},
	}
}

func scheduleBody(budget float64, window time.Duration, inverted bool) map[string]any {
	start := time.Now().UTC().Truncate(24 * time.Hour).Add(24*time.Hour + 9*time.Hour)
	end := start.Add(window)
	if inverted {
		start, end = end, start
	}
	return map[string]any{
		"user_request": "museums, parks and good food",
		"location":     "San Francisco, CA",
		"budget":       budget,
		"interests":    []string{"museums", "parks"},
		"start_time":   start.Format(time.RFC3339),
		"end_time":     end.Format(time.RFC3339),
	}
}

func (r *Runner) schedule(ctx context.Context, base string, body any) (scheduleEnvelope, time.Duration, error) {
	var env scheduleEnvelope
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/schedule", bytes.NewReader(b))
	if err != nil {
		return env, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpc.Do(req)
	lat := time.Since(start)
	if err != nil {
		return env, lat, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, lat, fmt.Errorf("decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return env, lat, fmt.Errorf("status=%d error=%s", resp.StatusCode, env.Error)
	}
	return env, lat, nil
}

// checkPlan verifies budget, window, adjacency and name uniqueness on the wire view.
func checkPlan(env scheduleEnvelope) string {
	v := env.Data.PlanView
	if v.TotalCost > v.Budget+1e-9 {
		return fmt.Sprintf("overspent: $%.2f > $%.2f", v.TotalCost, v.Budget)
	}
	seen := map[string]bool{}
	var prevEnd string
	for i, a := range v.Activities {
		if i > 0 && a.Item.StartTime != prevEnd {
			return fmt.Sprintf("%s starts %s, previous ended %s", a.Key, a.Item.StartTime, prevEnd)
		}
		prevEnd = a.Item.EndTime
		if a.Item.Type == string(itinerary.KindVenue) {
			if seen[a.Item.Venue] {
				return "duplicate venue " + a.Item.Venue
			}
			seen[a.Item.Venue] = true
		}
	}
	return ""
}

func httpCase(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var rdr io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				rdr = bytes.NewReader(b)
			}
			req, err := http.NewRequestWithContext(ctx, method, url, rdr)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			lat := time.Since(start)
			if err != nil {
				return Result{Status: "FAIL", Latency: lat, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: lat}
			}
			return Result{Status: "FAIL", Latency: lat, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.2f errors=%d", rps, errCount.Load())}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
