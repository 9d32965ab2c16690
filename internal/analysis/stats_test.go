package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/liftwise/internal/hevy"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func tp(v time.Time) *time.Time {
	return &v
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 18, 0, 0, 0, time.UTC)
}

func benchWorkout(n int, weight float64, reps int) hevy.Workout {
	return hevy.Workout{
		ID:        "w",
		Title:     "Push Day",
		StartTime: tp(day(n)),
		Exercises: []hevy.Exercise{
			{
				Title:              "Bench Press",
				ExerciseTemplateID: "t1",
				Sets:               []hevy.Set{{Type: "normal", WeightKg: fp(weight), Reps: ip(reps)}},
			},
		},
	}
}

func TestFilterByDate(t *testing.T) {
	workouts := []hevy.Workout{
		benchWorkout(1, 100, 5),
		benchWorkout(10, 100, 5),
		benchWorkout(20, 100, 5),
		{ID: "no-date", Title: "Untimed"},
	}

	got := FilterByDate(workouts, day(5), day(15))
	require.Len(t, got, 1)
	assert.Equal(t, day(10), *got[0].StartTime)
}

func TestAnalyzeEmpty(t *testing.T) {
	report := Analyze(nil)
	assert.Equal(t, 0, report.TotalWorkouts)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAnalyzeAggregates(t *testing.T) {
	report := Analyze([]hevy.Workout{
		benchWorkout(1, 100, 5),
		benchWorkout(8, 102.5, 5),
	})

	assert.Equal(t, 2, report.TotalWorkouts)
	assert.InDelta(t, 1.75, report.WorkoutsPerWeek, 0.01)

	require.Len(t, report.Exercises, 1)
	ex := report.Exercises[0]
	assert.Equal(t, "Bench Press", ex.Title)
	assert.Equal(t, 2, ex.Sessions)
	assert.Equal(t, 2, ex.TotalSets)
	assert.InDelta(t, 101.25, ex.AvgWeightKg, 0.01)
	assert.InDelta(t, 5.0, ex.AvgReps, 0.01)
	assert.InDelta(t, 102.5, ex.MaxWeightKg, 0.01)
}

func TestAnalyzeTrends(t *testing.T) {
	improving := Analyze([]hevy.Workout{
		benchWorkout(1, 100, 5),
		benchWorkout(8, 102.5, 5),
		benchWorkout(15, 105, 6),
	})
	require.Len(t, improving.Exercises, 1)
	assert.Equal(t, TrendImproving, improving.Exercises[0].Trend)
	assert.NotEmpty(t, improving.Exercises[0].Progression)

	declining := Analyze([]hevy.Workout{
		benchWorkout(1, 105, 6),
		benchWorkout(8, 100, 5),
	})
	assert.Equal(t, TrendDeclining, declining.Exercises[0].Trend)

	stable := Analyze([]hevy.Workout{
		benchWorkout(1, 100, 5),
		benchWorkout(8, 100, 5),
	})
	assert.Equal(t, TrendStable, stable.Exercises[0].Trend)
}

func TestRecommendationsPaddedToThree(t *testing.T) {
	report := Analyze([]hevy.Workout{benchWorkout(1, 100, 5)})
	assert.GreaterOrEqual(t, len(report.Recommendations), 3)
}

func TestExtractGoals(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"single goal", "My goal is to build muscle. Analyze my program.", []string{"build muscle"}},
		{"want to", "I want to get stronger, is my program ok?", []string{"get stronger"}},
		{"multiple markers", "I want to bulk up and focus on my chest.", []string{"bulk up and focus on my chest", "my chest"}},
		{"no goal", "analyze my program", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractGoals(tt.message))
		})
	}
}

func TestRoutineRanges(t *testing.T) {
	routine := hevy.Routine{
		Title: "Push Day",
		Exercises: []hevy.Exercise{
			{
				Title: "Bench Press",
				Sets: []hevy.Set{
					{Type: "normal", WeightKg: fp(95), Reps: ip(8)},
					{Type: "normal", WeightKg: fp(100), Reps: ip(5)},
				},
			},
			{Title: "Cable Fly", Sets: []hevy.Set{{Type: "normal"}}},
		},
	}

	ranges := RoutineRanges(routine)
	require.Len(t, ranges, 2)

	assert.Equal(t, 5, ranges[0].MinReps)
	assert.Equal(t, 8, ranges[0].MaxReps)
	assert.InDelta(t, 95, ranges[0].MinWeightKg, 0.01)
	assert.InDelta(t, 100, ranges[0].MaxWeightKg, 0.01)

	assert.Equal(t, 0, ranges[1].MaxReps)

	rendered := FormatRanges(ranges)
	assert.Contains(t, rendered, "Bench Press: 5-8 reps 95.0-100.0 kg")
	assert.Contains(t, rendered, "Cable Fly: no prescribed sets")
}
