package hevy

import (
	"context"
	"errors"
)

// FindRoutineByTitle scans all routine pages for an exact title match.
// Returns ErrNotFound when no routine carries the title.
func (c *Client) FindRoutineByTitle(ctx context.Context, title string) (*Routine, error) {
	for page := 1; ; page++ {
		rp, err := c.GetRoutines(ctx, page)
		if err != nil {
			return nil, err
		}
		for i := range rp.Routines {
			if rp.Routines[i].Title == title {
				return &rp.Routines[i], nil
			}
		}
		if !rp.HasMore {
			return nil, ErrNotFound
		}
	}
}

// FindRoutineFolderByID scans folder pages for the folder with the given id.
func (c *Client) FindRoutineFolderByID(ctx context.Context, id int) (*Folder, error) {
	for page := 1; ; page++ {
		fp, err := c.GetRoutineFolders(ctx, page)
		if err != nil {
			return nil, err
		}
		for i := range fp.Folders {
			if fp.Folders[i].ID == id {
				return &fp.Folders[i], nil
			}
		}
		if !fp.HasMore {
			return nil, ErrNotFound
		}
	}
}

// GetRoutinesInFolder returns every routine whose folder id matches.
func (c *Client) GetRoutinesInFolder(ctx context.Context, folderID int) ([]Routine, error) {
	var out []Routine
	for page := 1; ; page++ {
		rp, err := c.GetRoutines(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, r := range rp.Routines {
			if r.FolderID != nil && *r.FolderID == folderID {
				out = append(out, r)
			}
		}
		if !rp.HasMore {
			return out, nil
		}
	}
}

// GetCurrentProgram determines the user's current training program from the
// most recent workout: the routine whose title matches that workout, the
// folder containing it, and the folder's other routines.
//
// Returns (nil, nil) when the chain cannot be followed (no workouts, no
// matching routine, or the routine sits outside any folder); errors are
// reserved for API failures.
func (c *Client) GetCurrentProgram(ctx context.Context) (*Program, error) {
	page, err := c.GetWorkouts(ctx, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Workouts) == 0 {
		c.log.Debug("no recent workouts; cannot determine current program")
		return nil, nil
	}

	recent := page.Workouts[0]
	if recent.Title == "" {
		return nil, nil
	}

	routine, err := c.FindRoutineByTitle(ctx, recent.Title)
	if errors.Is(err, ErrNotFound) {
		c.log.Debug("no routine matches workout title %q", recent.Title)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if routine.FolderID == nil {
		c.log.Debug("routine %q is not in a folder", routine.Title)
		return nil, nil
	}

	folder, err := c.FindRoutineFolderByID(ctx, *routine.FolderID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	routines, err := c.GetRoutinesInFolder(ctx, *routine.FolderID)
	if err != nil {
		return nil, err
	}

	return &Program{
		Folder:         folder,
		Routines:       routines,
		CurrentRoutine: routine,
	}, nil
}
