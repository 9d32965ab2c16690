package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkallio/liftwise/internal/analysis"
	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/intent"
)

// maxTemplatesInPrompt caps how many catalog entries are folded into a
// prompt; the full catalog runs to thousands of entries.
const maxTemplatesInPrompt = 500

// handleInfo answers the informational intents: the resolved context is
// rendered into text and the completion endpoint writes the prose.
func (o *Orchestrator) handleInfo(ctx context.Context, sess *session, it intent.Intent, message string, tc *TurnContext) (string, error) {
	var b strings.Builder
	b.WriteString("Context:\n")
	summary := summarizeContext(tc)
	if summary == "" {
		b.WriteString("(no data available)\n")
	} else {
		b.WriteString(summary)
	}

	if recent := o.recentMessages(sess); len(recent) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, m := range recent {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser question: %s", message)
	return o.complete(ctx, b.String())
}

// handleAnalysis answers the analysis intents. Workout-level intents run the
// statistics pass first; program analysis assembles routine ranges, stated
// goals, and optional web research into the prompt.
func (o *Orchestrator) handleAnalysis(ctx context.Context, it intent.Intent, message string, tc *TurnContext) (string, error) {
	if it == intent.ProgramAnalysis {
		return o.analyzeProgram(ctx, message, tc)
	}

	report := analysis.Analyze(tc.Workouts)

	var b strings.Builder
	fmt.Fprintf(&b, "Workout analysis over %d workouts", report.TotalWorkouts)
	if report.WorkoutsPerWeek > 0 {
		fmt.Fprintf(&b, " (%.1f per week)", report.WorkoutsPerWeek)
	}
	b.WriteString(":\n")
	for _, ex := range report.Exercises {
		fmt.Fprintf(&b, "- %s: %d sessions, %d sets, avg %.1fkg x %.1f reps, max %.1fkg, trend %s\n",
			ex.Title, ex.Sessions, ex.TotalSets, ex.AvgWeightKg, ex.AvgReps, ex.MaxWeightKg, ex.Trend)
		for _, note := range ex.Progression {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}
	if len(report.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	fmt.Fprintf(&b, "\nUser question: %s", message)

	return o.complete(ctx, b.String())
}

// analyzeProgram prepares the richer program-analysis prompt.
func (o *Orchestrator) analyzeProgram(ctx context.Context, message string, tc *TurnContext) (string, error) {
	var b strings.Builder

	if tc.Program != nil {
		fmt.Fprintf(&b, "Current program: %s\n", tc.Program.Folder.Title)
		for _, r := range tc.Program.Routines {
			fmt.Fprintf(&b, "\nRoutine %q:\n", r.Title)
			b.WriteString(analysis.FormatRanges(analysis.RoutineRanges(r)))
		}
	} else {
		b.WriteString("No current program could be resolved from recent workouts.\n")
	}

	if len(tc.Workouts) > 0 {
		report := analysis.Analyze(tc.Workouts)
		fmt.Fprintf(&b, "\nRecent training: %d workouts", report.TotalWorkouts)
		if report.WorkoutsPerWeek > 0 {
			fmt.Fprintf(&b, ", %.1f per week", report.WorkoutsPerWeek)
		}
		b.WriteString("\n")
	}

	goals := analysis.ExtractGoals(message)
	if len(goals) > 0 {
		fmt.Fprintf(&b, "\nStated goals: %s\n", strings.Join(goals, "; "))
	}

	if o.searcher != nil && len(goals) > 0 {
		results, err := o.searcher.Search(ctx, "training program design for "+goals[0])
		if err != nil {
			o.log.Warn("search enrichment failed: %v", err)
		} else if len(results) > 0 {
			b.WriteString("\nRelevant research:\n")
			for _, r := range results {
				fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.Snippet)
			}
		}
	}

	templates := o.cache.Templates(ctx)
	if len(templates) > 0 {
		if len(templates) > maxTemplatesInPrompt {
			templates = templates[:maxTemplatesInPrompt]
		}
		fmt.Fprintf(&b, "\nAvailable exercises (%d shown):\n", len(templates))
		for _, t := range templates {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.PrimaryMuscleGroup)
		}
	}

	fmt.Fprintf(&b, "\nUser question: %s", message)
	return o.complete(ctx, b.String())
}

// summarizeContext renders resolved context into prompt text. Sections are
// emitted only for populated fields.
func summarizeContext(tc *TurnContext) string {
	var b strings.Builder

	if len(tc.Workouts) > 0 {
		b.WriteString("Workouts:\n")
		for _, w := range tc.Workouts {
			b.WriteString(formatWorkout(w))
		}
	}
	if tc.Routine != nil {
		b.WriteString("Matched routine:\n")
		b.WriteString(formatRoutine(*tc.Routine))
	}
	if len(tc.Routines) > 0 {
		b.WriteString("Routines:\n")
		for _, r := range tc.Routines {
			fmt.Fprintf(&b, "- %s (%d exercises)\n", r.Title, len(r.Exercises))
		}
	}
	if len(tc.Folders) > 0 {
		b.WriteString("Programs:\n")
		for _, f := range tc.Folders {
			fmt.Fprintf(&b, "- %s\n", f.Title)
		}
	}
	if tc.Program != nil {
		fmt.Fprintf(&b, "Current program: %s with routines:\n", tc.Program.Folder.Title)
		for _, r := range tc.Program.Routines {
			fmt.Fprintf(&b, "- %s (%d exercises)\n", r.Title, len(r.Exercises))
		}
		if tc.Program.CurrentRoutine != nil {
			fmt.Fprintf(&b, "Most recently trained: %s\n", tc.Program.CurrentRoutine.Title)
		}
	}
	if len(tc.Templates) > 0 {
		templates := tc.Templates
		if len(templates) > maxTemplatesInPrompt {
			templates = templates[:maxTemplatesInPrompt]
		}
		fmt.Fprintf(&b, "Exercise catalog (%d shown):\n", len(templates))
		for _, t := range templates {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.PrimaryMuscleGroup)
		}
	}

	return b.String()
}

func formatWorkout(w hevy.Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s", w.Title)
	if w.StartTime != nil {
		fmt.Fprintf(&b, " on %s", w.StartTime.Format("2006-01-02"))
	}
	b.WriteString("\n")
	for _, e := range w.Exercises {
		fmt.Fprintf(&b, "  - %s:", e.Title)
		for _, s := range e.Sets {
			b.WriteString(" ")
			if s.WeightKg != nil && s.WeightLbs != nil {
				fmt.Fprintf(&b, "%.1fkg/%.0flbs", *s.WeightKg, *s.WeightLbs)
			}
			if s.Reps != nil {
				fmt.Fprintf(&b, "x%d", *s.Reps)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatRoutine(r hevy.Routine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s\n", r.Title)
	for _, e := range r.Exercises {
		fmt.Fprintf(&b, "  - %s (%d sets)\n", e.Title, len(e.Sets))
	}
	return b.String()
}
