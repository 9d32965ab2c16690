package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/intent"
	"github.com/mkallio/liftwise/internal/llm"
)

func intPtr(n int) *int { return &n }

func pushAndLegRoutines() []hevy.Routine {
	return []hevy.Routine{
		{
			ID:    "r1",
			Title: "Push Day",
			Exercises: []hevy.Exercise{
				{Index: intPtr(0), Title: "Bench Press", ExerciseTemplateID: "t1", Sets: []hevy.Set{{Type: "normal"}, {Type: "normal"}, {Type: "normal"}}},
				{Index: intPtr(1), Title: "Shoulder Press", ExerciseTemplateID: "t9", Sets: []hevy.Set{{Type: "normal"}}},
			},
		},
		{
			ID:    "r2",
			Title: "Leg Day",
			Exercises: []hevy.Exercise{
				{Index: intPtr(0), Title: "Leg Press", ExerciseTemplateID: "t4", Sets: []hevy.Set{{Type: "normal"}}},
			},
		},
	}
}

// newSwapFixture wires an orchestrator over fake data with a classifier
// that recognizes the swap requests used in these tests.
func newSwapFixture() (*Orchestrator, *fakeAPI, *TemplateCache) {
	api := &fakeAPI{
		templates: chestAndLegTemplates(),
		routines:  pushAndLegRoutines(),
	}
	provider := llm.NewMockProvider().
		WithResponse("user message: swap bench press", "EXERCISE_SWAP").
		WithResponse("user message: swap leg press", "EXERCISE_SWAP").
		WithResponse("user message: swap burpee", "EXERCISE_SWAP").
		WithResponse("user message: hi", "GREETING").
		WithFallback("UNKNOWN")
	cache := NewTemplateCache(api)
	return New(provider, api, cache), api, cache
}

func TestProposeSwapCreatesPending(t *testing.T) {
	o, _, _ := newSwapFixture()
	ctx := context.Background()

	result := o.HandleTurn(ctx, "s1", "swap Bench Press")
	assert.Equal(t, intent.ExerciseSwap, result.Intent)
	assert.Contains(t, result.Response, "Incline Press")
	assert.Contains(t, result.Response, "Cable Fly")

	sess := o.session("s1")
	require.NotNil(t, sess.pending)
	assert.Equal(t, "r1", sess.pending.RoutineID)
	assert.Equal(t, "Push Day", sess.pending.RoutineName)
	assert.Equal(t, "Bench Press", sess.pending.ExerciseToSwap)
	assert.Len(t, sess.pending.Suggestions, 2)
	assert.Len(t, sess.pending.CurrentExercises, 2)
}

func TestProposeSwapCapsSuggestions(t *testing.T) {
	o, api, cache := newSwapFixture()
	for i := 0; i < 8; i++ {
		api.templates = append(api.templates, hevy.ExerciseTemplate{
			ID:                 fmt.Sprintf("tc%d", i),
			Title:              fmt.Sprintf("Chest Variation %d", i),
			PrimaryMuscleGroup: "chest",
		})
	}
	require.NoError(t, cache.Reload(context.Background()))

	o.HandleTurn(context.Background(), "s1", "swap Bench Press")

	sess := o.session("s1")
	require.NotNil(t, sess.pending)
	assert.Len(t, sess.pending.Suggestions, maxSwapSuggestions)
}

func TestProposeSwapUnknownExercise(t *testing.T) {
	o, _, _ := newSwapFixture()

	result := o.HandleTurn(context.Background(), "s1", "swap Burpee")
	assert.Equal(t, intent.ExerciseSwap, result.Intent)
	assert.Contains(t, result.Response, "Burpee")

	assert.Nil(t, o.session("s1").pending)
}

func TestImplementSwapEndToEnd(t *testing.T) {
	o, api, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	result := o.HandleTurn(ctx, "s1", "use Incline Press")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)
	assert.NotEmpty(t, result.Response)

	require.Len(t, api.updates, 1)
	call := api.updates[0]
	assert.Equal(t, "r1", call.id)
	assert.Equal(t, "Push Day", call.update.Title)
	require.Len(t, call.update.Exercises, 2)

	replacement := call.update.Exercises[0]
	assert.Equal(t, "Incline Press", replacement.Title)
	assert.Equal(t, "t2", replacement.ExerciseTemplateID)
	require.Len(t, replacement.Sets, 3)
	for _, s := range replacement.Sets {
		assert.Equal(t, "normal", s.Type)
		assert.Nil(t, s.WeightKg)
		assert.Nil(t, s.Reps)
	}
	assert.Nil(t, replacement.Index)

	carried := call.update.Exercises[1]
	assert.Equal(t, "Shoulder Press", carried.Title)
	assert.Nil(t, carried.Index)

	assert.Nil(t, o.session("s1").pending)
}

func TestImplementSwapChoiceByPhrase(t *testing.T) {
	o, api, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Leg Press")
	sess := o.session("s1")
	require.NotNil(t, sess.pending)
	assert.ElementsMatch(t, []string{"Hack Squat", "Front Squat"}, sess.pending.SuggestionTitles())

	result := o.HandleTurn(ctx, "s1", "let's go with Hack Squat")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)

	require.Len(t, api.updates, 1)
	assert.Equal(t, "r2", api.updates[0].id)
	assert.Equal(t, "Hack Squat", api.updates[0].update.Exercises[0].Title)
	assert.Nil(t, sess.pending)
}

func TestImplementSwapChoiceOutsideSuggestions(t *testing.T) {
	o, api, cache := newSwapFixture()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		api.templates = append(api.templates, hevy.ExerciseTemplate{
			ID:                 fmt.Sprintf("tc%d", i),
			Title:              fmt.Sprintf("Chest Variation %d", i),
			PrimaryMuscleGroup: "chest",
		})
	}
	require.NoError(t, cache.Reload(ctx))

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	sess := o.session("s1")
	require.NotNil(t, sess.pending)
	titles := sess.pending.SuggestionTitles()
	require.Len(t, titles, maxSwapSuggestions)
	require.NotContains(t, titles, "Chest Variation 7")

	// Picking a catalog exercise the suggestion cap excluded still swaps.
	result := o.HandleTurn(ctx, "s1", "use Chest Variation 7")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)

	require.Len(t, api.updates, 1)
	assert.Equal(t, "r1", api.updates[0].id)
	replacement := api.updates[0].update.Exercises[0]
	assert.Equal(t, "Chest Variation 7", replacement.Title)
	assert.Equal(t, "tc7", replacement.ExerciseTemplateID)
	assert.Nil(t, sess.pending)
}

func TestImplementSwapUnknownChoiceKeepsPending(t *testing.T) {
	o, api, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	sess := o.session("s1")
	require.NotNil(t, sess.pending)

	// A named choice outside the catalog gets a clarification, not a
	// cancellation; the proposal survives for a retry.
	result := o.HandleTurn(ctx, "s1", "use Smith Machine Press")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)
	assert.Contains(t, result.Response, "Smith Machine Press")
	assert.NotNil(t, sess.pending)
	assert.Empty(t, api.updates)

	result = o.HandleTurn(ctx, "s1", "use Incline Press")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)
	require.Len(t, api.updates, 1)
	assert.Nil(t, sess.pending)
}

func TestUnrelatedFollowUpClearsPending(t *testing.T) {
	o, api, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	require.NotNil(t, o.session("s1").pending)

	result := o.HandleTurn(ctx, "s1", "what's the weather")
	assert.NotEqual(t, intent.SuggestionImplement, result.Intent)
	assert.Nil(t, o.session("s1").pending)
	assert.Empty(t, api.updates)
}

func TestNewProposalReplacesPending(t *testing.T) {
	o, _, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	o.HandleTurn(ctx, "s1", "swap Leg Press")

	sess := o.session("s1")
	require.NotNil(t, sess.pending)
	assert.Equal(t, "Leg Press", sess.pending.ExerciseToSwap)
	assert.Equal(t, "r2", sess.pending.RoutineID)
}

func TestImplementSwapEmptyCachePreservesPending(t *testing.T) {
	o, api, cache := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	require.NotNil(t, o.session("s1").pending)

	api.templatesErr = errors.New("api down")
	require.Error(t, cache.Reload(ctx))

	result := o.HandleTurn(ctx, "s1", "use Incline Press")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)
	assert.NotNil(t, o.session("s1").pending)
	assert.Empty(t, api.updates)

	// Once the catalog is back, the same choice goes through.
	api.templatesErr = nil
	result = o.HandleTurn(ctx, "s1", "use Incline Press")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)
	assert.Len(t, api.updates, 1)
	assert.Nil(t, o.session("s1").pending)
}

func TestImplementSwapStaleSnapshotClearsWithoutWrite(t *testing.T) {
	o, api, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	sess := o.session("s1")
	require.NotNil(t, sess.pending)
	sess.pending.CurrentExercises = []hevy.Exercise{
		{Title: "Cable Crossover", ExerciseTemplateID: "t3", Sets: []hevy.Set{{Type: "normal"}}},
	}

	result := o.HandleTurn(ctx, "s1", "use Incline Press")
	assert.Equal(t, intent.SuggestionImplement, result.Intent)
	assert.Contains(t, result.Response, "no longer contains")
	assert.Empty(t, api.updates)
	assert.Nil(t, sess.pending)
}

func TestImplementSwapWriteErrorClearsPending(t *testing.T) {
	o, api, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	api.updateErr = errors.New("upstream 500")

	result := o.HandleTurn(ctx, "s1", "use Incline Press")
	assert.Contains(t, result.Response, "not applied")
	assert.Nil(t, o.session("s1").pending)
}

func TestImplementSwapWithoutPending(t *testing.T) {
	o, api, _ := newSwapFixture()

	reply := o.implementSwap(context.Background(), o.session("s1"), "use Incline Press", &TurnContext{})
	assert.Contains(t, reply, "no exercise swap in progress")
	assert.Empty(t, api.updates)
}

func TestImplementSwapAmbiguousChoiceKeepsPending(t *testing.T) {
	o, _, _ := newSwapFixture()
	ctx := context.Background()

	o.HandleTurn(ctx, "s1", "swap Bench Press")
	sess := o.session("s1")
	require.NotNil(t, sess.pending)

	// Direct handler invocation with a message naming no suggestion: the
	// clarification must not clear the slot.
	reply := o.implementSwap(ctx, sess, "I want something different", &TurnContext{PendingSwap: sess.pending})
	assert.Contains(t, reply, "Which alternative")
	assert.NotNil(t, sess.pending)
}
