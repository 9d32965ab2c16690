// Package intent classifies free-text user messages against a fixed intent
// catalog and extracts fitness entities (exercise, routine, and chosen
// suggestion names) from message text.
package intent

// Intent represents the classification of a user message.
type Intent string

const (
	// WorkoutInfo asks about logged workouts.
	WorkoutInfo Intent = "WORKOUT_INFO"
	// ExerciseInfo asks about specific exercises.
	ExerciseInfo Intent = "EXERCISE_INFO"
	// RoutineInfo asks about workout routines.
	RoutineInfo Intent = "ROUTINE_INFO"
	// ProgramInfo asks about training programs (routine folders).
	ProgramInfo Intent = "PROGRAM_INFO"
	// GeneralInfo asks for general fitness information.
	GeneralInfo Intent = "GENERAL_INFO"
	// WorkoutAnalysis requests analysis of workouts or performance over time.
	WorkoutAnalysis Intent = "WORKOUT_ANALYSIS"
	// ProgramAnalysis requests analysis of the whole current program.
	ProgramAnalysis Intent = "PROGRAM_ANALYSIS"
	// ExerciseAnalysis requests analysis of one exercise.
	ExerciseAnalysis Intent = "EXERCISE_ANALYSIS"
	// ComparativeAnalysis compares performance against standards or goals.
	ComparativeAnalysis Intent = "COMPARATIVE_ANALYSIS"
	// ExerciseSwap asks to replace an exercise in a routine.
	ExerciseSwap Intent = "EXERCISE_SWAP"
	// ProgramCreate asks to build a new program.
	ProgramCreate Intent = "PROGRAM_CREATE"
	// RoutineUpdate asks to modify an existing routine.
	RoutineUpdate Intent = "ROUTINE_UPDATE"
	// SuggestionImplement confirms a change the assistant previously proposed.
	SuggestionImplement Intent = "SUGGESTION_IMPLEMENT"
	// Greeting is small talk with no fitness content.
	Greeting Intent = "GREETING"
	// Unknown is the fallback for unclear or out-of-scope messages.
	Unknown Intent = "UNKNOWN"
)

// AllIntents returns every valid intent, in catalog order.
func AllIntents() []Intent {
	return []Intent{
		WorkoutInfo,
		ExerciseInfo,
		RoutineInfo,
		ProgramInfo,
		GeneralInfo,
		WorkoutAnalysis,
		ProgramAnalysis,
		ExerciseAnalysis,
		ComparativeAnalysis,
		ExerciseSwap,
		ProgramCreate,
		RoutineUpdate,
		SuggestionImplement,
		Greeting,
		Unknown,
	}
}

// String returns the string representation of an Intent.
func (i Intent) String() string {
	return string(i)
}

// IsValid checks if an Intent is a known catalog entry.
func (i Intent) IsValid() bool {
	for _, valid := range AllIntents() {
		if i == valid {
			return true
		}
	}
	return false
}

// IsInfo reports whether the intent belongs to the information family.
func (i Intent) IsInfo() bool {
	switch i {
	case WorkoutInfo, ExerciseInfo, RoutineInfo, ProgramInfo, GeneralInfo:
		return true
	}
	return false
}

// IsAnalysis reports whether the intent belongs to the analysis family.
func (i Intent) IsAnalysis() bool {
	switch i {
	case WorkoutAnalysis, ProgramAnalysis, ExerciseAnalysis, ComparativeAnalysis:
		return true
	}
	return false
}

// IsModification reports whether the intent belongs to the modification family.
func (i Intent) IsModification() bool {
	switch i {
	case ExerciseSwap, ProgramCreate, RoutineUpdate, SuggestionImplement:
		return true
	}
	return false
}

// Description returns the one-line catalog description used in the
// classification prompt.
func (i Intent) Description() string {
	switch i {
	case WorkoutInfo:
		return "Get information about specific workouts (e.g., 'what was my last workout?', 'details about workout X')"
	case ExerciseInfo:
		return "Get information about specific exercises (e.g., 'how to do bench press', 'what muscles does squat work?')"
	case RoutineInfo:
		return "Get information about specific workout routines (e.g., 'details of my Upper A routine', 'show me the Lower B workout')"
	case ProgramInfo:
		return "Get information about workout programs/folders (e.g., 'list my programs', 'what is my current program?')"
	case GeneralInfo:
		return "Get general fitness information or definitions (e.g., 'what is hypertrophy?', 'benefits of cardio')"
	case WorkoutAnalysis:
		return "Analyze specific workouts or performance over time (e.g., 'analyze my last bench session', 'how is my progress on squats?')"
	case ProgramAnalysis:
		return "Analyze the entire current workout program structure or effectiveness (e.g., 'analyze my program', 'is my routine balanced?')"
	case ExerciseAnalysis:
		return "Analyze performance or technique for a specific exercise (e.g., 'what was my best bench ever?')"
	case ComparativeAnalysis:
		return "Compare the user's performance or program against research, standards, or goals (e.g., 'is my volume enough for hypertrophy?')"
	case ExerciseSwap:
		return "Request to replace specific exercises in a routine (e.g., 'swap leg press for squats', 'find alternative for exercise X')"
	case ProgramCreate:
		return "Request to create a new workout program (e.g., 'create a 3-day split for me', 'build a beginner program')"
	case RoutineUpdate:
		return "Request to update or modify an existing routine (e.g., 'add another set to bench press', 'remove exercise Y')"
	case SuggestionImplement:
		return "User confirms or agrees to implement a specific change previously suggested by the assistant (e.g., 'ok, apply that change', 'Use option B', 'Let's go with Skullcrushers', 'Ok do it')"
	case Greeting:
		return "The user is simply greeting, making small talk, or saying goodbye."
	case Unknown:
		return "The user's intent is unclear, ambiguous, or not related to the app's fitness capabilities."
	default:
		return ""
	}
}
