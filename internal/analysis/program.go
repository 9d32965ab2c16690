package analysis

import (
	"fmt"
	"strings"

	"github.com/mkallio/liftwise/internal/hevy"
)

// goalMarkers introduce a training goal in free text; the phrase up to the
// next sentence boundary is treated as the goal.
var goalMarkers = []string{
	"goal is to ",
	"want to ",
	"focus on ",
	"develop my ",
	"improve my ",
	"get better at ",
	"increase my ",
}

// ExtractGoals pulls stated training goals out of a user message. Results
// keep the user's wording, trimmed at sentence punctuation.
func ExtractGoals(message string) []string {
	lower := strings.ToLower(message)
	var goals []string
	for _, marker := range goalMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		rest := message[idx+len(marker):]
		if cut := strings.IndexAny(rest, ".?!,\n"); cut >= 0 {
			rest = rest[:cut]
		}
		goal := strings.TrimSpace(rest)
		if goal != "" {
			goals = append(goals, goal)
		}
	}
	return goals
}

// ExerciseRange summarizes the prescribed rep and weight span for one
// routine exercise.
type ExerciseRange struct {
	Title       string
	MinReps     int
	MaxReps     int
	MinWeightKg float64
	MaxWeightKg float64
}

// RoutineRanges computes per-exercise rep and weight ranges from a routine's
// prescribed sets. Exercises with no filled-in sets report zero ranges.
func RoutineRanges(r hevy.Routine) []ExerciseRange {
	out := make([]ExerciseRange, 0, len(r.Exercises))
	for _, e := range r.Exercises {
		er := ExerciseRange{Title: e.Title}
		first := true
		for _, s := range e.Sets {
			if s.Reps != nil {
				if first || *s.Reps < er.MinReps {
					er.MinReps = *s.Reps
				}
				if *s.Reps > er.MaxReps {
					er.MaxReps = *s.Reps
				}
			}
			if s.WeightKg != nil {
				if first || *s.WeightKg < er.MinWeightKg {
					er.MinWeightKg = *s.WeightKg
				}
				if *s.WeightKg > er.MaxWeightKg {
					er.MaxWeightKg = *s.WeightKg
				}
			}
			if s.Reps != nil || s.WeightKg != nil {
				first = false
			}
		}
		out = append(out, er)
	}
	return out
}

// FormatRanges renders exercise ranges as a compact, line-per-exercise
// summary for inclusion in an analysis prompt.
func FormatRanges(ranges []ExerciseRange) string {
	var b strings.Builder
	for _, er := range ranges {
		fmt.Fprintf(&b, "- %s:", er.Title)
		if er.MaxReps > 0 {
			fmt.Fprintf(&b, " %d-%d reps", er.MinReps, er.MaxReps)
		}
		if er.MaxWeightKg > 0 {
			fmt.Fprintf(&b, " %.1f-%.1f kg", er.MinWeightKg, er.MaxWeightKg)
		}
		if er.MaxReps == 0 && er.MaxWeightKg == 0 {
			b.WriteString(" no prescribed sets")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
