package assistant

import (
	"context"
	"strings"

	"github.com/mkallio/liftwise/internal/hevy"
)

// fakeAPI is an in-memory FitnessAPI for tests. Fields are plain data so
// individual tests can reshape them between turns.
type fakeAPI struct {
	workouts     []hevy.Workout
	routines     []hevy.Routine
	templates    []hevy.ExerciseTemplate
	templatesErr error
	folders      []hevy.Folder
	program      *hevy.Program
	programErr   error
	updateErr    error

	updates []updateCall
}

type updateCall struct {
	id     string
	update hevy.RoutineUpdate
}

var _ FitnessAPI = (*fakeAPI)(nil)

func (f *fakeAPI) GetRecentWorkouts(_ context.Context, n int) ([]hevy.Workout, error) {
	if n > len(f.workouts) {
		n = len(f.workouts)
	}
	return f.workouts[:n], nil
}

func (f *fakeAPI) GetAllRoutines(context.Context) ([]hevy.Routine, error) {
	return f.routines, nil
}

func (f *fakeAPI) GetAllExerciseTemplates(context.Context) ([]hevy.ExerciseTemplate, error) {
	if f.templatesErr != nil {
		return nil, f.templatesErr
	}
	return f.templates, nil
}

func (f *fakeAPI) GetRoutineFolders(context.Context, int) (*hevy.FolderPage, error) {
	return &hevy.FolderPage{Folders: f.folders, Page: 1, PageCount: 1}, nil
}

func (f *fakeAPI) GetCurrentProgram(context.Context) (*hevy.Program, error) {
	if f.programErr != nil {
		return nil, f.programErr
	}
	return f.program, nil
}

func (f *fakeAPI) FindRoutineByTitle(_ context.Context, title string) (*hevy.Routine, error) {
	for i := range f.routines {
		if strings.EqualFold(f.routines[i].Title, title) {
			return &f.routines[i], nil
		}
	}
	return nil, hevy.ErrNotFound
}

func (f *fakeAPI) UpdateRoutine(_ context.Context, id string, update hevy.RoutineUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updateCall{id: id, update: update})
	return nil
}
