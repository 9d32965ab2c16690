// Package hevy implements a client for the Hevy fitness API.
// All list endpoints are paginated; fetch-all helpers follow pagination
// until the API reports no further pages, throttled by a shared rate
// limiter so tight loops do not trip upstream throttling.
package hevy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkallio/liftwise/internal/config"
	"github.com/mkallio/liftwise/internal/logging"
)

// KgToLbs is the kilogram to pound conversion factor applied to workout sets.
const KgToLbs = 2.20462

// maxPageSize is the largest page size the routines, templates, and folders
// endpoints accept.
const maxPageSize = 10

// ErrNotFound is returned when a lookup by id or title matches nothing.
var ErrNotFound = errors.New("hevy: not found")

// Client talks to the Hevy API.
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	observe  func(method string, d time.Duration)
	log      *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithObserver registers a callback invoked with the HTTP method and
// duration of every completed request.
func WithObserver(fn func(method string, d time.Duration)) Option {
	return func(c *Client) { c.observe = fn }
}

// NewClient creates a Hevy API client from configuration.
func NewClient(cfg config.HevyConfig, opts ...Option) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	c := &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		log:      logging.Global().WithComponent("hevy"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one rate-limited request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.observe != nil {
		c.observe(method, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// GetWorkouts fetches one page of workouts, most recent first.
// Set weights are annotated with pounds alongside the stored kilograms.
func (c *Client) GetWorkouts(ctx context.Context, limit, page int) (*WorkoutPage, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(limit))

	var raw struct {
		Workouts  []Workout `json:"workouts"`
		Page      int       `json:"page"`
		PageCount int       `json:"page_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/workouts", q, nil, &raw); err != nil {
		return nil, err
	}

	workouts := raw.Workouts
	if len(workouts) > limit {
		workouts = workouts[:limit]
	}
	for wi := range workouts {
		annotatePounds(&workouts[wi])
	}

	if raw.Page == 0 {
		raw.Page = page
	}
	if raw.PageCount == 0 {
		raw.PageCount = 1
	}

	return &WorkoutPage{
		Workouts:  workouts,
		Page:      raw.Page,
		PageCount: raw.PageCount,
		HasMore:   raw.Page < raw.PageCount,
	}, nil
}

// annotatePounds fills WeightLbs from WeightKg on every set of w.
func annotatePounds(w *Workout) {
	for ei := range w.Exercises {
		for si := range w.Exercises[ei].Sets {
			set := &w.Exercises[ei].Sets[si]
			if set.WeightKg != nil {
				lbs := *set.WeightKg * KgToLbs
				set.WeightLbs = &lbs
			}
		}
	}
}

// GetRecentWorkouts fetches the n most recent workouts.
func (c *Client) GetRecentWorkouts(ctx context.Context, n int) ([]Workout, error) {
	page, err := c.GetWorkouts(ctx, n, 1)
	if err != nil {
		return nil, err
	}
	return page.Workouts, nil
}

// GetWorkoutCount returns the total number of workouts on the account.
func (c *Client) GetWorkoutCount(ctx context.Context) (int, error) {
	var raw struct {
		Count int `json:"workout_count"`
		Alt   int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/workouts/count", nil, nil, &raw); err != nil {
		return 0, err
	}
	if raw.Count > 0 {
		return raw.Count, nil
	}
	return raw.Alt, nil
}

// GetRoutines fetches one page of routines.
func (c *Client) GetRoutines(ctx context.Context, page int) (*RoutinePage, error) {
	if page <= 0 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.pageSize))

	var raw struct {
		Routines  []Routine `json:"routines"`
		Page      int       `json:"page"`
		PageCount int       `json:"page_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/routines", q, nil, &raw); err != nil {
		return nil, err
	}

	if raw.Page == 0 {
		raw.Page = page
	}
	if raw.PageCount == 0 {
		raw.PageCount = 1
	}

	return &RoutinePage{
		Routines:  raw.Routines,
		Page:      raw.Page,
		PageCount: raw.PageCount,
		HasMore:   raw.Page < raw.PageCount,
	}, nil
}

// GetAllRoutines fetches every routine, following pagination.
func (c *Client) GetAllRoutines(ctx context.Context) ([]Routine, error) {
	var all []Routine
	for page := 1; ; page++ {
		rp, err := c.GetRoutines(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, rp.Routines...)
		if !rp.HasMore {
			break
		}
	}
	return all, nil
}

// GetRoutine fetches one routine by id.
func (c *Client) GetRoutine(ctx context.Context, id string) (*Routine, error) {
	// Single-routine responses arrive wrapped in a "routine" envelope.
	var raw struct {
		Routine *Routine `json:"routine"`
	}
	if err := c.do(ctx, http.MethodGet, "/routines/"+id, nil, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Routine == nil {
		return nil, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	return raw.Routine, nil
}

// UpdateRoutine writes the full routine body back under the given id.
func (c *Client) UpdateRoutine(ctx context.Context, id string, update RoutineUpdate) error {
	payload := struct {
		Routine RoutineUpdate `json:"routine"`
	}{Routine: update}

	c.log.Debug("updating routine %s (%d exercises)", id, len(update.Exercises))
	return c.do(ctx, http.MethodPut, "/routines/"+id, nil, payload, nil)
}

// GetExerciseTemplates fetches one page of exercise templates.
func (c *Client) GetExerciseTemplates(ctx context.Context, page int) ([]ExerciseTemplate, bool, error) {
	if page <= 0 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.pageSize))

	var raw struct {
		Templates []ExerciseTemplate `json:"exercise_templates"`
		Page      int                `json:"page"`
		PageCount int                `json:"page_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/exercise_templates", q, nil, &raw); err != nil {
		return nil, false, err
	}

	if raw.Page == 0 {
		raw.Page = page
	}
	if raw.PageCount == 0 {
		raw.PageCount = 1
	}
	return raw.Templates, raw.Page < raw.PageCount, nil
}

// GetAllExerciseTemplates fetches the full exercise template catalog,
// keeping only the fields downstream consumers need (id, title, muscle group).
func (c *Client) GetAllExerciseTemplates(ctx context.Context) ([]ExerciseTemplate, error) {
	var all []ExerciseTemplate
	for page := 1; ; page++ {
		templates, hasMore, err := c.GetExerciseTemplates(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(templates) == 0 {
			break
		}
		all = append(all, templates...)
		if !hasMore {
			break
		}
	}
	c.log.Debug("fetched %d exercise templates", len(all))
	return all, nil
}

// GetRoutineFolders fetches one page of routine folders.
func (c *Client) GetRoutineFolders(ctx context.Context, page int) (*FolderPage, error) {
	if page <= 0 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.pageSize))

	var raw struct {
		Folders   []Folder `json:"routine_folders"`
		Page      int      `json:"page"`
		PageCount int      `json:"page_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/routine_folders", q, nil, &raw); err != nil {
		return nil, err
	}

	if raw.Page == 0 {
		raw.Page = page
	}
	if raw.PageCount == 0 {
		raw.PageCount = 1
	}

	return &FolderPage{
		Folders:   raw.Folders,
		Page:      raw.Page,
		PageCount: raw.PageCount,
		HasMore:   raw.Page < raw.PageCount,
	}, nil
}

// CreateRoutineFolder creates a new routine folder (training program).
func (c *Client) CreateRoutineFolder(ctx context.Context, title string) (*Folder, error) {
	payload := map[string]map[string]string{
		"routine_folder": {"title": title},
	}
	var raw struct {
		Folder *Folder `json:"routine_folder"`
	}
	if err := c.do(ctx, http.MethodPost, "/routine_folders", nil, payload, &raw); err != nil {
		return nil, err
	}
	return raw.Folder, nil
}

// DeleteRoutineFolder deletes a routine folder by id.
func (c *Client) DeleteRoutineFolder(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/routine_folders/"+strconv.Itoa(id), nil, nil, nil)
}
