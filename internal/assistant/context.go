package assistant

import (
	"context"
	"strings"

	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/intent"
	"github.com/mkallio/liftwise/internal/logging"
)

// FitnessAPI is the slice of the Hevy client the assistant depends on.
// *hevy.Client satisfies it.
type FitnessAPI interface {
	GetRecentWorkouts(ctx context.Context, n int) ([]hevy.Workout, error)
	GetAllRoutines(ctx context.Context) ([]hevy.Routine, error)
	GetAllExerciseTemplates(ctx context.Context) ([]hevy.ExerciseTemplate, error)
	GetRoutineFolders(ctx context.Context, page int) (*hevy.FolderPage, error)
	GetCurrentProgram(ctx context.Context) (*hevy.Program, error)
	FindRoutineByTitle(ctx context.Context, title string) (*hevy.Routine, error)
	UpdateRoutine(ctx context.Context, id string, update hevy.RoutineUpdate) error
}

// TurnContext carries the supporting data resolved for a single turn. Fields
// are populated per intent; everything not fetched stays zero.
type TurnContext struct {
	Workouts  []hevy.Workout
	Routines  []hevy.Routine
	Routine   *hevy.Routine
	Folders   []hevy.Folder
	Program   *hevy.Program
	Templates []hevy.ExerciseTemplate

	ExerciseName string
	RoutineName  string
	ChosenName   string

	// PendingSwap is set by the orchestrator's pending pre-check, never by
	// the resolver.
	PendingSwap *PendingSwapContext
}

// recencyKeywords select a single-workout fetch for WORKOUT_INFO.
var recencyKeywords = []string{"last workout", "most recent", "yesterday"}

// analysisWorkoutLimit is how many recent workouts the analysis intents pull;
// trend and frequency numbers need a longer window than info answers.
const analysisWorkoutLimit = 30

// Resolver gathers the minimal remote data a handler needs for an intent.
// Fetch failures are logged and swallowed; whatever was already gathered is
// returned as partial context.
type Resolver struct {
	api   FitnessAPI
	cache *TemplateCache
	log   *logging.Logger
}

// NewResolver returns a Resolver over the given API and template cache.
func NewResolver(api FitnessAPI, cache *TemplateCache) *Resolver {
	return &Resolver{
		api:   api,
		cache: cache,
		log:   logging.Global().WithComponent("resolver"),
	}
}

// Resolve fetches supporting data for the intent. It never returns an
// error; a failed fetch leaves its field empty.
func (r *Resolver) Resolve(ctx context.Context, it intent.Intent, message string) *TurnContext {
	tc := &TurnContext{}
	lower := strings.ToLower(message)

	switch it {
	case intent.WorkoutInfo:
		limit := 5
		for _, kw := range recencyKeywords {
			if strings.Contains(lower, kw) {
				limit = 1
				break
			}
		}
		r.fetchWorkouts(ctx, tc, limit)

	case intent.RoutineInfo:
		// Targeted lookup by name is a known gap; the full list is always
		// returned instead.
		r.fetchRoutines(ctx, tc)

	case intent.ExerciseInfo:
		tc.Templates = r.cache.Templates(ctx)

	case intent.ProgramAnalysis:
		r.fetchProgram(ctx, tc)
		r.fetchWorkouts(ctx, tc, analysisWorkoutLimit)

	case intent.ProgramInfo:
		if strings.Contains(lower, "current") || strings.Contains(lower, "active") {
			r.fetchProgram(ctx, tc)
		} else {
			r.fetchFolders(ctx, tc)
		}

	case intent.WorkoutAnalysis, intent.ExerciseAnalysis, intent.ComparativeAnalysis:
		r.fetchWorkouts(ctx, tc, analysisWorkoutLimit)

	case intent.ExerciseSwap, intent.RoutineUpdate:
		tc.ExerciseName = intent.ExtractExerciseName(message)
		tc.RoutineName = intent.ExtractRoutineName(message)
		if tc.RoutineName != "" {
			routine, err := r.api.FindRoutineByTitle(ctx, tc.RoutineName)
			if err != nil {
				r.log.Debug("routine %q not resolved: %v", tc.RoutineName, err)
			} else {
				tc.Routine = routine
			}
		}
		r.fetchRoutines(ctx, tc)
		r.fetchFolders(ctx, tc)

	case intent.SuggestionImplement:
		// Routine and exercise identity belong to the pending context; only
		// the chosen name is recovered from the raw message.
		tc.ChosenName = intent.ExtractChosenName(message)
	}

	return tc
}

func (r *Resolver) fetchWorkouts(ctx context.Context, tc *TurnContext, limit int) {
	workouts, err := r.api.GetRecentWorkouts(ctx, limit)
	if err != nil {
		r.log.Warn("workout fetch failed: %v", err)
		return
	}
	tc.Workouts = workouts
}

func (r *Resolver) fetchRoutines(ctx context.Context, tc *TurnContext) {
	routines, err := r.api.GetAllRoutines(ctx)
	if err != nil {
		r.log.Warn("routine fetch failed: %v", err)
		return
	}
	tc.Routines = routines
}

func (r *Resolver) fetchFolders(ctx context.Context, tc *TurnContext) {
	page, err := r.api.GetRoutineFolders(ctx, 1)
	if err != nil {
		r.log.Warn("folder fetch failed: %v", err)
		return
	}
	folders := page.Folders
	if len(folders) > 10 {
		folders = folders[:10]
	}
	tc.Folders = folders
}

func (r *Resolver) fetchProgram(ctx context.Context, tc *TurnContext) {
	program, err := r.api.GetCurrentProgram(ctx)
	if err != nil {
		r.log.Warn("program resolution failed: %v", err)
		return
	}
	tc.Program = program
}
