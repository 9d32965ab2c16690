// Package assistant implements the conversational core: per-session dialogue
// orchestration, intent-directed context resolution, and the two-phase
// exercise-swap protocol that mutates remote routines.
package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/logging"
)

// TemplateLoader fetches the full exercise template catalog.
type TemplateLoader interface {
	GetAllExerciseTemplates(ctx context.Context) ([]hevy.ExerciseTemplate, error)
}

// TemplateCache holds a process-wide snapshot of exercise templates for
// muscle-group lookups. It is loaded lazily on first use and only ever
// replaced wholesale. A failed load leaves an empty (non-nil) snapshot so
// callers can tell "loaded nothing" apart from "never loaded"; the next
// access retries the load.
type TemplateCache struct {
	mu        sync.RWMutex
	templates []hevy.ExerciseTemplate
	loaded    bool

	loader TemplateLoader
	log    *logging.Logger
}

// NewTemplateCache returns an unloaded cache backed by loader.
func NewTemplateCache(loader TemplateLoader) *TemplateCache {
	return &TemplateCache{
		loader: loader,
		log:    logging.Global().WithComponent("templates"),
	}
}

// Templates returns the current snapshot, loading it on first use. A load
// failure is logged and yields an empty snapshot for this call; the cache
// stays unloaded so a later call retries.
func (c *TemplateCache) Templates(ctx context.Context) []hevy.ExerciseTemplate {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.templates
	}
	c.mu.RUnlock()

	if err := c.Reload(ctx); err != nil {
		c.log.Warn("template load failed: %v", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.templates
}

// Reload replaces the snapshot with a fresh fetch. On error the previous
// snapshot is discarded and the cache reverts to the unloaded state with an
// empty snapshot.
func (c *TemplateCache) Reload(ctx context.Context) error {
	templates, err := c.loader.GetAllExerciseTemplates(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.templates = []hevy.ExerciseTemplate{}
		c.loaded = false
		return err
	}
	if templates == nil {
		templates = []hevy.ExerciseTemplate{}
	}
	c.templates = templates
	c.loaded = true
	c.log.Debug("template cache loaded with %d entries", len(templates))
	return nil
}

// Loaded reports whether the cache holds a successfully loaded snapshot.
func (c *TemplateCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// FindByTitle returns the template whose title matches exactly, ignoring
// case. It does not trigger a load.
func (c *TemplateCache) FindByTitle(title string) (hevy.ExerciseTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.templates {
		if strings.EqualFold(t.Title, title) {
			return t, true
		}
	}
	return hevy.ExerciseTemplate{}, false
}

// MuscleGroup returns the primary muscle group for an exercise title.
func (c *TemplateCache) MuscleGroup(title string) (string, bool) {
	t, ok := c.FindByTitle(title)
	if !ok {
		return "", false
	}
	return t.PrimaryMuscleGroup, true
}

// AlternativesFor returns up to limit templates sharing muscleGroup,
// excluding the named exercise itself, in cache order.
func (c *TemplateCache) AlternativesFor(title, muscleGroup string, limit int) []hevy.ExerciseTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []hevy.ExerciseTemplate
	for _, t := range c.templates {
		if !strings.EqualFold(t.PrimaryMuscleGroup, muscleGroup) {
			continue
		}
		if strings.EqualFold(t.Title, title) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
