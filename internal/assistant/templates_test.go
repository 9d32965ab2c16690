package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/liftwise/internal/hevy"
)

func chestAndLegTemplates() []hevy.ExerciseTemplate {
	return []hevy.ExerciseTemplate{
		{ID: "t1", Title: "Bench Press", PrimaryMuscleGroup: "chest"},
		{ID: "t2", Title: "Incline Press", PrimaryMuscleGroup: "chest"},
		{ID: "t3", Title: "Cable Fly", PrimaryMuscleGroup: "chest"},
		{ID: "t4", Title: "Leg Press", PrimaryMuscleGroup: "quadriceps"},
		{ID: "t5", Title: "Hack Squat", PrimaryMuscleGroup: "quadriceps"},
		{ID: "t6", Title: "Front Squat", PrimaryMuscleGroup: "quadriceps"},
	}
}

func TestTemplateCacheLazyLoad(t *testing.T) {
	api := &fakeAPI{templates: chestAndLegTemplates()}
	cache := NewTemplateCache(api)

	assert.False(t, cache.Loaded())
	got := cache.Templates(context.Background())
	assert.Len(t, got, 6)
	assert.True(t, cache.Loaded())
}

func TestTemplateCacheLoadFailureRetries(t *testing.T) {
	api := &fakeAPI{templatesErr: errors.New("api down")}
	cache := NewTemplateCache(api)

	got := cache.Templates(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, cache.Loaded())

	api.templatesErr = nil
	api.templates = chestAndLegTemplates()
	got = cache.Templates(context.Background())
	assert.Len(t, got, 6)
	assert.True(t, cache.Loaded())
}

func TestTemplateCacheFindByTitle(t *testing.T) {
	api := &fakeAPI{templates: chestAndLegTemplates()}
	cache := NewTemplateCache(api)
	require.NoError(t, cache.Reload(context.Background()))

	tmpl, ok := cache.FindByTitle("bench press")
	require.True(t, ok)
	assert.Equal(t, "t1", tmpl.ID)

	_, ok = cache.FindByTitle("Burpee")
	assert.False(t, ok)
}

func TestTemplateCacheAlternativesFor(t *testing.T) {
	api := &fakeAPI{templates: chestAndLegTemplates()}
	cache := NewTemplateCache(api)
	require.NoError(t, cache.Reload(context.Background()))

	alts := cache.AlternativesFor("Bench Press", "chest", 5)
	require.Len(t, alts, 2)
	assert.Equal(t, "Incline Press", alts[0].Title)
	assert.Equal(t, "Cable Fly", alts[1].Title)

	capped := cache.AlternativesFor("Bench Press", "chest", 1)
	assert.Len(t, capped, 1)
}
