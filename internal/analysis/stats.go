// Package analysis computes workout statistics and training recommendations
// from logged workout history. Everything here is pure computation over
// already-fetched data.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkallio/liftwise/internal/hevy"
)

// Trend classifies how an exercise's numbers have moved across sessions.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ExerciseStats aggregates one exercise across the analyzed workouts.
type ExerciseStats struct {
	Title       string   `json:"title"`
	TemplateID  string   `json:"template_id"`
	Sessions    int      `json:"sessions"`
	TotalSets   int      `json:"total_sets"`
	AvgWeightKg float64  `json:"avg_weight_kg"`
	AvgReps     float64  `json:"avg_reps"`
	MaxWeightKg float64  `json:"max_weight_kg"`
	Progression []string `json:"progression"`
	Trend       Trend    `json:"trend"`
}

// Report is the full result of a workout-history analysis.
type Report struct {
	TotalWorkouts   int             `json:"total_workouts"`
	WorkoutsPerWeek float64         `json:"workouts_per_week"`
	Exercises       []ExerciseStats `json:"exercises"`
	Recommendations []string        `json:"recommendations"`
}

// FilterByDate returns the workouts whose start time falls within
// [since, until]. Workouts without a start time are dropped.
func FilterByDate(workouts []hevy.Workout, since, until time.Time) []hevy.Workout {
	var out []hevy.Workout
	for _, w := range workouts {
		if w.StartTime == nil {
			continue
		}
		t := *w.StartTime
		if t.Before(since) || t.After(until) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// setSample is one logged set with the workout date it came from.
type setSample struct {
	weightKg float64
	reps     int
	date     time.Time
}

// Analyze builds a Report from the given workouts. The exercise list is
// sorted by title so output is deterministic.
func Analyze(workouts []hevy.Workout) *Report {
	report := &Report{TotalWorkouts: len(workouts)}
	if len(workouts) == 0 {
		report.Recommendations = []string{"Start tracking your workouts to receive personalized recommendations."}
		return report
	}

	report.WorkoutsPerWeek = workoutsPerWeek(workouts)

	samples := make(map[string][]setSample)
	stats := make(map[string]*ExerciseStats)

	for _, w := range workouts {
		date := time.Time{}
		if w.StartTime != nil {
			date = *w.StartTime
		}
		for _, e := range w.Exercises {
			if e.ExerciseTemplateID == "" {
				continue
			}
			s, ok := stats[e.ExerciseTemplateID]
			if !ok {
				s = &ExerciseStats{Title: e.Title, TemplateID: e.ExerciseTemplateID}
				stats[e.ExerciseTemplateID] = s
			}
			s.Sessions++
			for _, set := range e.Sets {
				s.TotalSets++
				sample := setSample{date: date}
				if set.WeightKg != nil {
					sample.weightKg = *set.WeightKg
				}
				if set.Reps != nil {
					sample.reps = *set.Reps
				}
				samples[e.ExerciseTemplateID] = append(samples[e.ExerciseTemplateID], sample)
			}
		}
	}

	for id, s := range stats {
		finishStats(s, samples[id])
	}

	report.Exercises = make([]ExerciseStats, 0, len(stats))
	for _, s := range stats {
		report.Exercises = append(report.Exercises, *s)
	}
	sort.Slice(report.Exercises, func(i, j int) bool {
		return report.Exercises[i].Title < report.Exercises[j].Title
	})

	report.Recommendations = recommend(report.Exercises)
	return report
}

func workoutsPerWeek(workouts []hevy.Workout) float64 {
	var first, last time.Time
	count := 0
	for _, w := range workouts {
		if w.StartTime == nil {
			continue
		}
		t := *w.StartTime
		if count == 0 || t.Before(first) {
			first = t
		}
		if count == 0 || t.After(last) {
			last = t
		}
		count++
	}
	if count < 2 {
		return 0
	}
	days := last.Sub(first).Hours()/24 + 1
	return float64(count) / days * 7
}

func finishStats(s *ExerciseStats, samples []setSample) {
	if len(samples) == 0 {
		s.Trend = TrendStable
		return
	}

	var totalWeight, totalReps float64
	for _, sm := range samples {
		totalWeight += sm.weightKg
		totalReps += float64(sm.reps)
		if sm.weightKg > s.MaxWeightKg {
			s.MaxWeightKg = sm.weightKg
		}
	}
	s.AvgWeightKg = totalWeight / float64(len(samples))
	s.AvgReps = totalReps / float64(len(samples))

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].date.Before(samples[j].date)
	})

	var weightUps, weightDowns, repUps, repDowns int
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		switch {
		case curr.weightKg > prev.weightKg:
			weightUps++
			s.Progression = append(s.Progression, fmt.Sprintf("Increased weight by %.1fkg", curr.weightKg-prev.weightKg))
		case curr.weightKg < prev.weightKg:
			weightDowns++
			s.Progression = append(s.Progression, fmt.Sprintf("Decreased weight by %.1fkg", prev.weightKg-curr.weightKg))
		}
		switch {
		case curr.reps > prev.reps:
			repUps++
			s.Progression = append(s.Progression, fmt.Sprintf("Increased reps by %d", curr.reps-prev.reps))
		case curr.reps < prev.reps:
			repDowns++
			s.Progression = append(s.Progression, fmt.Sprintf("Decreased reps by %d", prev.reps-curr.reps))
		}
	}

	// Keep only the most recent few progression notes.
	if len(s.Progression) > 3 {
		s.Progression = s.Progression[len(s.Progression)-3:]
	}

	switch {
	case weightUps > weightDowns && repUps >= repDowns:
		s.Trend = TrendImproving
	case weightDowns > weightUps && repDowns >= repUps:
		s.Trend = TrendDeclining
	default:
		s.Trend = TrendStable
	}
}

// upper/lower/core keyword sets used by the balance recommendations.
var (
	upperKeywords = []string{"chest", "back", "shoulder", "arm", "bicep", "tricep", "press", "row", "curl", "pulldown"}
	lowerKeywords = []string{"leg", "squat", "deadlift", "calf", "lunge", "hamstring", "glute"}
	coreKeywords  = []string{"core", "ab", "plank", "crunch"}
)

func recommend(exercises []ExerciseStats) []string {
	var recs []string
	total := len(exercises)
	if total == 0 {
		return []string{"Start tracking your workouts to receive personalized recommendations."}
	}

	if total < 5 {
		recs = append(recs, "Try incorporating more variety into your workouts. Aim for at least 5 different exercises.")
	}

	var totalSessions int
	for _, s := range exercises {
		totalSessions += s.Sessions
	}
	if float64(totalSessions)/float64(total) < 2 {
		recs = append(recs, "You're not repeating exercises often enough. Consistency is key for progress.")
	}

	progressing := 0
	for _, s := range exercises {
		if len(s.Progression) > 0 {
			progressing++
		}
	}
	if float64(progressing) < float64(total)*0.5 {
		recs = append(recs, "Focus on progressive overload. Try to gradually increase weight or reps for at least half of your exercises.")
	}

	upper := countMatching(exercises, upperKeywords)
	lower := countMatching(exercises, lowerKeywords)
	core := countMatching(exercises, coreKeywords)

	if float64(upper) > float64(lower)*1.5 {
		recs = append(recs, "Your workouts might be upper-body focused. Consider adding more leg exercises for balanced training.")
	} else if float64(lower) > float64(upper)*1.5 {
		recs = append(recs, "Your workouts might be lower-body focused. Consider adding more upper body exercises for balanced training.")
	}

	if core < 2 {
		recs = append(recs, "Consider adding more core exercises to strengthen your midsection.")
	}

	for _, pad := range []string{
		"Stay consistent with your workouts and focus on proper form.",
		"Consider tracking your nutrition to support your training goals.",
	} {
		if len(recs) >= 3 {
			break
		}
		recs = append(recs, pad)
	}
	return recs
}

func countMatching(exercises []ExerciseStats, keywords []string) int {
	n := 0
	for _, s := range exercises {
		if containsAny(s.Title, keywords) {
			n++
		}
	}
	return n
}
