package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"wayfare/internal/modules/itinerary"
	"wayfare/internal/types"
)

const (
	defaultModel         = "gemini-2.0-flash"
	defaultMaxRetries    = 3
	defaultRetryInterval = 2 * time.Second
)

var ErrEmptyResponse = errors.New("no response candidates from Gemini")

// generator is the slice of *genai.GenerativeModel the provider uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements ResearchProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  generator
	log    *zap.Logger

	modelName     string
	maxRetries    int
	retryInterval time.Duration
}

type Option func(*GeminiProvider)

func WithModel(name string) Option {
	return func(p *GeminiProvider) {
		if name != "" {
			p.modelName = name
		}
	}
}

// WithRetry bounds the attempts made when the API reports quota or availability errors.
// Waits between attempts start at interval and double each time.
func WithRetry(maxRetries int, interval time.Duration) Option {
	return func(p *GeminiProvider) {
		if maxRetries > 0 {
			p.maxRetries = maxRetries
		}
		if interval > 0 {
			p.retryInterval = interval
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *GeminiProvider) {
		if log != nil {
			p.log = log
		}
	}
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from configuration.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...Option) (*GeminiProvider, error) {
	p := newProvider(nil, opts...)

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(p.modelName)

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)

	p.client = client
	p.model = model
	return p, nil
}

func newProvider(model generator, opts ...Option) *GeminiProvider {
	p := &GeminiProvider{
		model:         model,
		log:           zap.NewNop(),
		modelName:     defaultModel,
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

// ResearchVenues asks for four or five activities per interest in a single prompt and
// files each one under the interest its category matches.
func (p *GeminiProvider) ResearchVenues(ctx context.Context, location string, interests []string) (map[string][]itinerary.Candidate, error) {
	var list ActivityList
	if err := p.generateJSON(ctx, venuePrompt(location, interests), &list); err != nil {
		return nil, err
	}

	out := make(map[string][]itinerary.Candidate, len(interests))
	for _, a := range list.Activities {
		key := interestFor(a.Category, interests)
		c, ok := a.Candidate(key)
		if !ok {
			continue
		}
		out[key] = append(out[key], c)
	}
	return out, nil
}

// ResearchTransit estimates one hop. The method is normalised by the estimator.
func (p *GeminiProvider) ResearchTransit(ctx context.Context, from, to, location string) (itinerary.TransitQuote, error) {
	var res TransitResult
	if err := p.generateJSON(ctx, transitPrompt(from, to, location), &res); err != nil {
		return itinerary.TransitQuote{}, err
	}
	if res.DurationMinutes <= 0 {
		return itinerary.TransitQuote{}, fmt.Errorf("gemini transit estimate has no duration: %+v", res)
	}
	return res.Quote(), nil
}

// AllocateCosts asks for a transit reserve and per-category shares of the budget.
func (p *GeminiProvider) AllocateCosts(ctx context.Context, location string, categories []string, budget types.Money) (itinerary.Allocation, error) {
	var res AllocationResult
	if err := p.generateJSON(ctx, allocationPrompt(location, categories, budget), &res); err != nil {
		return itinerary.Allocation{}, err
	}
	alloc := res.Allocation()
	if len(alloc.ByCategory) == 0 {
		return itinerary.Allocation{}, errors.New("gemini allocation has no categories")
	}
	return alloc, nil
}

func (p *GeminiProvider) generateJSON(ctx context.Context, prompt string, v any) error {
	text, err := p.generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, text)
	}
	return nil
}

// generate sends the prompt, retrying quota and availability errors with a doubling wait.
func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	limiter := rate.NewLimiter(rate.Every(p.retryInterval), 1)
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return "", fmt.Errorf("gemini retry aborted: %w (last error: %v)", err, lastErr)
			}
			return "", err
		}

		resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			text := responseText(resp)
			if text == "" {
				return "", ErrEmptyResponse
			}
			return cleanJSONString(text), nil
		}
		if !retryable(err) {
			return "", fmt.Errorf("gemini generation error: %w", err)
		}

		lastErr = err
		wait := p.retryInterval << attempt
		limiter.SetLimit(rate.Every(wait))
		p.log.Warn("gemini rate limited, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return "", fmt.Errorf("gemini generation error after %d attempts: %w", p.maxRetries, lastErr)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

func retryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"429", "quota", "rate limit", "resource_exhausted", "unavailable"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// interestFor returns the requested interest an activity category belongs to, or the
// category itself when none matches.
func interestFor(category string, interests []string) string {
	for _, in := range interests {
		if strings.EqualFold(strings.TrimSpace(category), strings.TrimSpace(in)) {
			return in
		}
	}
	for _, in := range interests {
		if itinerary.MatchesCategory(category, in) {
			return in
		}
	}
	return strings.ToLower(strings.TrimSpace(category))
}

func venuePrompt(location string, interests []string) string {
	return fmt.Sprintf(`Role: You research things to do for a trip planner.
Location: %s
Interests: %s

Return real, currently operating venues, events or activities in the location.
Generate exactly 4-5 activities for EACH interest. Mix price ranges within each interest.
Set "category" to the interest the activity belongs to, spelled exactly as given.
"estimated_cost" is the per-person price in US dollars (0 when free).
"duration" is a typical visit length such as "90 minutes", "2 hours" or "half day".
Include a street address whenever one exists.

Output JSON Schema:
{
  "activities": [
    {
      "name": "string",
      "category": "string",
      "description": "string (one sentence)",
      "estimated_cost": number,
      "duration": "string",
      "address": "string",
      "phone": "string or empty",
      "url": "string or empty"
    }
  ]
}
`, location, strings.Join(interests, ", "))
}

func transitPrompt(from, to, location string) string {
	return fmt.Sprintf(`Role: You estimate local travel between two places.
Location: %s
From: %s
To: %s

Pick the most sensible single method: "walking", "transit", "taxi" or "driving".
Typical costs: walking 0, public transit 2-5 dollars, taxi 10-30 dollars.

Output JSON Schema:
{
  "method": "walking" | "transit" | "taxi" | "driving",
  "duration_minutes": integer,
  "cost": number (US dollars),
  "description": "string (e.g. 'Take the N line two stops')"
}
`, location, from, to)
}

func allocationPrompt(location string, categories []string, budget types.Money) string {
	return fmt.Sprintf(`Role: You split a day's activity budget for a trip planner.
Location: %s
Total budget: %.2f US dollars
Categories: %s

Reserve a realistic amount for local transport, then give each category a per-activity
spending target. Amounts are in US dollars and the transit budget plus category targets
must not exceed the total.

Output JSON Schema:
{
  "transit_budget": number,
  "categories": { "<category>": number }
}
`, location, budget.Dollars(), strings.Join(categories, ", "))
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
