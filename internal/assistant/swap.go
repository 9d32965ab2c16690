package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/intent"
)

// maxSwapSuggestions caps how many alternatives a proposal shows.
const maxSwapSuggestions = 5

// SwapSuggestion is one candidate replacement offered to the user.
type SwapSuggestion struct {
	Title       string `json:"title"`
	TemplateID  string `json:"template_id"`
	MuscleGroup string `json:"muscle_group"`
}

// PendingSwapContext is an in-flight exercise-swap proposal awaiting the
// user's choice. At most one exists per session; a new proposal replaces any
// prior one. CurrentExercises is the routine's exercise list snapshotted at
// proposal time, so the implement phase works without a re-fetch.
type PendingSwapContext struct {
	RoutineID      string
	RoutineName    string
	ExerciseToSwap string
	Suggestions    []SwapSuggestion
	CurrentExercises []hevy.Exercise
}

// SuggestionTitles returns the offered candidate titles in display order.
func (p *PendingSwapContext) SuggestionTitles() []string {
	titles := make([]string, len(p.Suggestions))
	for i, s := range p.Suggestions {
		titles[i] = s.Title
	}
	return titles
}

// proposeSwap handles phase one of the swap protocol: find same-muscle
// alternatives for the requested exercise and park them in the session's
// pending slot. Every failure path returns an explanatory reply without
// touching session state.
func (o *Orchestrator) proposeSwap(ctx context.Context, sess *session, tc *TurnContext) string {
	if tc.ExerciseName == "" {
		return "Which exercise would you like to swap? Please name it, for example \"swap Leg Press\"."
	}

	templates := o.cache.Templates(ctx)
	if len(templates) == 0 {
		return "I can't look up exercise alternatives right now because the exercise catalog is unavailable. Please try again in a moment."
	}

	muscleGroup, ok := o.cache.MuscleGroup(tc.ExerciseName)
	if !ok {
		return fmt.Sprintf("I couldn't find %q in the exercise catalog, so I don't know which muscle group to match. Could you check the exercise name?", tc.ExerciseName)
	}

	routine := tc.Routine
	if routine == nil {
		routine = findRoutineContaining(tc.Routines, tc.ExerciseName)
	}
	if routine == nil {
		return fmt.Sprintf("I found %q in the catalog, but not in any of your routines. Which routine should I change?", tc.ExerciseName)
	}

	alternatives := o.cache.AlternativesFor(tc.ExerciseName, muscleGroup, maxSwapSuggestions)
	if len(alternatives) == 0 {
		return fmt.Sprintf("I couldn't find any other %s exercises to suggest in place of %s.", strings.ToLower(muscleGroup), tc.ExerciseName)
	}

	suggestions := make([]SwapSuggestion, len(alternatives))
	for i, alt := range alternatives {
		suggestions[i] = SwapSuggestion{
			Title:       alt.Title,
			TemplateID:  alt.ID,
			MuscleGroup: alt.PrimaryMuscleGroup,
		}
	}

	snapshot := make([]hevy.Exercise, len(routine.Exercises))
	copy(snapshot, routine.Exercises)

	sess.pending = &PendingSwapContext{
		RoutineID:        routine.ID,
		RoutineName:      routine.Title,
		ExerciseToSwap:   tc.ExerciseName,
		Suggestions:      suggestions,
		CurrentExercises: snapshot,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are some alternatives to %s in your %s routine:\n", tc.ExerciseName, routine.Title)
	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, s.Title, s.MuscleGroup)
	}
	b.WriteString("\nWhich one would you like to use?")
	return b.String()
}

// implementSwap handles phase two: resolve the user's choice against the
// pending proposal and write the rebuilt exercise list back. The pending
// slot is cleared on every exit except the explicitly preserved transient
// failures (missing choice, empty catalog, choice not in catalog), which
// leave it in place for a retry.
func (o *Orchestrator) implementSwap(ctx context.Context, sess *session, message string, tc *TurnContext) string {
	pending := tc.PendingSwap
	if pending == nil {
		pending = sess.pending
	}
	if pending == nil {
		return "There's no exercise swap in progress. Ask me to swap an exercise first and I'll suggest alternatives."
	}

	preserve := false
	defer func() {
		if !preserve {
			sess.pending = nil
		}
	}()

	// The chosen name need not be one of the shown suggestions; anything the
	// user names is resolved against the full catalog below.
	chosen := tc.ChosenName
	if chosen == "" {
		matched, ok := intent.MatchSuggestion(message, pending.SuggestionTitles())
		if !ok {
			preserve = true
			return fmt.Sprintf("Which alternative would you like? Your options are: %s.", strings.Join(pending.SuggestionTitles(), ", "))
		}
		chosen = matched
	}

	if pending.RoutineID == "" || pending.ExerciseToSwap == "" || chosen == "" {
		return "I lost track of the details of that swap, so I've cancelled it. Please start the swap again."
	}

	templates := o.cache.Templates(ctx)
	if len(templates) == 0 {
		preserve = true
		return "The exercise catalog is unavailable right now, so I can't complete the swap. Please try again in a moment."
	}

	tmpl, ok := o.cache.FindByTitle(chosen)
	if !ok {
		preserve = true
		return fmt.Sprintf("I couldn't find %q in the exercise catalog. Please pick one of: %s.", chosen, strings.Join(pending.SuggestionTitles(), ", "))
	}
	if tmpl.ID == "" {
		return fmt.Sprintf("The catalog entry for %s is missing its identifier, so I can't apply this swap. I've cancelled it.", tmpl.Title)
	}

	updated, found := rebuildExercises(pending.CurrentExercises, pending.ExerciseToSwap, tmpl)
	if !found {
		return fmt.Sprintf("Your %s routine no longer contains %s, so I've cancelled the swap. Ask again and I'll work from the current routine.", pending.RoutineName, pending.ExerciseToSwap)
	}

	err := o.api.UpdateRoutine(ctx, pending.RoutineID, hevy.RoutineUpdate{
		Title:     pending.RoutineName,
		Exercises: updated,
	})
	if err != nil {
		o.log.Error("routine update failed: %v", err)
		return "Something went wrong while saving the change to your routine, so the swap was not applied."
	}

	status := fmt.Sprintf("Swapped %s for %s in the %s routine. The new exercise starts with three empty sets for the user to fill in.",
		pending.ExerciseToSwap, tmpl.Title, pending.RoutineName)
	return o.renderStatus(ctx, status,
		fmt.Sprintf("Done! I've replaced %s with %s in your %s routine. It has three empty sets ready for your first session.",
			pending.ExerciseToSwap, tmpl.Title, pending.RoutineName))
}

// rebuildExercises returns a copy of the snapshot with the entry titled
// toSwap replaced by a fresh exercise built from tmpl, carrying three empty
// "normal" sets. The read-side index field is stripped from every entry so
// the write body contains only what the API accepts. found is false when the
// snapshot no longer contains toSwap.
func rebuildExercises(snapshot []hevy.Exercise, toSwap string, tmpl hevy.ExerciseTemplate) ([]hevy.Exercise, bool) {
	updated := make([]hevy.Exercise, 0, len(snapshot))
	found := false
	for _, e := range snapshot {
		if strings.EqualFold(e.Title, toSwap) {
			updated = append(updated, hevy.Exercise{
				Title:              tmpl.Title,
				ExerciseTemplateID: tmpl.ID,
				Sets: []hevy.Set{
					{Type: "normal"},
					{Type: "normal"},
					{Type: "normal"},
				},
			})
			found = true
			continue
		}
		e.Index = nil
		updated = append(updated, e)
	}
	return updated, found
}

// findRoutineContaining returns the first routine whose exercise list holds
// the named exercise, or nil.
func findRoutineContaining(routines []hevy.Routine, exerciseTitle string) *hevy.Routine {
	for i := range routines {
		for _, e := range routines[i].Exercises {
			if strings.EqualFold(e.Title, exerciseTitle) {
				return &routines[i]
			}
		}
	}
	return nil
}
