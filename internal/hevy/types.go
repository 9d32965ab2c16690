package hevy

import "time"

// Set is a single set within an exercise. Weight and reps stay nil for
// planned sets the user has not filled in yet.
type Set struct {
	Type      string   `json:"type"`
	WeightKg  *float64 `json:"weight_kg"`
	WeightLbs *float64 `json:"weight_lbs,omitempty"` // derived client-side, never sent upstream
	Reps      *int     `json:"reps"`
	RPE       *float64 `json:"rpe,omitempty"`
}

// Exercise is one entry in a workout or routine.
// Index is positional metadata the API attaches on reads; it must not be
// echoed back on routine writes, so carriers strip it (set to nil).
type Exercise struct {
	Index              *int    `json:"index,omitempty"`
	Title              string  `json:"title"`
	Notes              *string `json:"notes"`
	ExerciseTemplateID string  `json:"exercise_template_id"`
	SupersetID         *int    `json:"superset_id"`
	Sets               []Set   `json:"sets"`
}

// Workout is a logged training session.
type Workout struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Exercises []Exercise `json:"exercises"`
}

// Routine is an editable workout plan: a named, ordered exercise list.
type Routine struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Notes     *string    `json:"notes,omitempty"`
	FolderID  *int       `json:"folder_id"`
	Exercises []Exercise `json:"exercises"`
}

// RoutineUpdate is the write shape for routine updates. The API expects the
// full exercise list; there is no partial-field update.
type RoutineUpdate struct {
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
}

// Folder groups routines into a training program.
type Folder struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Notes *string `json:"notes,omitempty"`
}

// ExerciseTemplate is a catalog definition of an exercise, distinct from a
// logged performance instance.
type ExerciseTemplate struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	PrimaryMuscleGroup string `json:"primary_muscle_group"`
}

// Program describes the user's current training program: the folder holding
// the routine that matches the most recent workout, plus its siblings.
type Program struct {
	Folder         *Folder   `json:"folder"`
	Routines       []Routine `json:"routines"`
	CurrentRoutine *Routine  `json:"current_routine"`
}

// WorkoutPage is one page of workouts.
type WorkoutPage struct {
	Workouts  []Workout `json:"workouts"`
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
	HasMore   bool      `json:"has_more"`
}

// RoutinePage is one page of routines.
type RoutinePage struct {
	Routines  []Routine `json:"routines"`
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
	HasMore   bool      `json:"has_more"`
}

// FolderPage is one page of routine folders.
type FolderPage struct {
	Folders   []Folder `json:"routine_folders"`
	Page      int      `json:"page"`
	PageCount int      `json:"page_count"`
	HasMore   bool     `json:"has_more"`
}
