package engine

import (
	"context"
	"errors"
	"strings"

	"alice/internal/domain"
	"alice/internal/fault"
	"alice/internal/repo"
)

// EpicCreateOptions are parameters for creating an epic.
type EpicCreateOptions struct {
	ProjectID   int64
	Title       string
	Description string
	Status      string
	Assignee    string
}

func (e Engine) CreateEpic(ctx context.Context, opts EpicCreateOptions) (domain.Epic, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return domain.Epic{}, fault.Invalid("title", "is required")
	}
	if opts.Status == "" {
		opts.Status = domain.StatusToDo
	}
	if !domain.ValidStatus(opts.Status) {
		return domain.Epic{}, fault.Invalid("status", "unknown status "+opts.Status)
	}
	if err := e.requireProject(ctx, opts.ProjectID); err != nil {
		return domain.Epic{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Epic{}, err
	}
	defer tx.Rollback()

	now := e.timestamp()
	ep := domain.Epic{
		ProjectID:   opts.ProjectID,
		Title:       opts.Title,
		Description: opts.Description,
		Status:      opts.Status,
		Assignee:    opts.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := e.Repo.InsertEpic(ctx, tx, ep)
	if err != nil {
		return domain.Epic{}, err
	}
	ep.ID = id
	if err := tx.Commit(); err != nil {
		return domain.Epic{}, err
	}
	return ep, nil
}

// EpicUpdateOptions carries partial epic updates.
type EpicUpdateOptions struct {
	ProjectID   int64
	ID          int64
	Title       *string
	Description *string
	Status      *string
	Assignee    *string
}

func (e Engine) UpdateEpic(ctx context.Context, opts EpicUpdateOptions) (domain.Epic, error) {
	if err := e.requireProject(ctx, opts.ProjectID); err != nil {
		return domain.Epic{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Epic{}, err
	}
	defer tx.Rollback()

	ep, err := e.Repo.GetEpicTx(ctx, tx, opts.ProjectID, opts.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Epic{}, fault.Missing("epic", opts.ID)
		}
		return domain.Epic{}, err
	}
	if opts.Title != nil {
		if strings.TrimSpace(*opts.Title) == "" {
			return domain.Epic{}, fault.Invalid("title", "must not be empty")
		}
		ep.Title = *opts.Title
	}
	if opts.Description != nil {
		ep.Description = *opts.Description
	}
	if opts.Status != nil {
		if !domain.ValidStatus(*opts.Status) {
			return domain.Epic{}, fault.Invalid("status", "unknown status "+*opts.Status)
		}
		ep.Status = *opts.Status
	}
	if opts.Assignee != nil {
		ep.Assignee = *opts.Assignee
	}
	ep.UpdatedAt = e.timestamp()
	if err := e.Repo.UpdateEpic(ctx, tx, ep); err != nil {
		return domain.Epic{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Epic{}, err
	}
	return ep, nil
}

// DeleteEpic removes an epic and detaches its tasks; the tasks survive
// without epic linkage.
func (e Engine) DeleteEpic(ctx context.Context, projectID, id int64) error {
	if err := e.requireProject(ctx, projectID); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := e.Repo.GetEpicTx(ctx, tx, projectID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fault.Missing("epic", id)
		}
		return err
	}
	if err := e.Repo.DetachEpicTasks(ctx, tx, projectID, id, e.timestamp()); err != nil {
		return err
	}
	if err := e.Repo.DeleteEpic(ctx, tx, projectID, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (e Engine) GetEpic(ctx context.Context, projectID, id int64) (domain.Epic, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return domain.Epic{}, err
	}
	ep, err := e.Repo.GetEpic(ctx, projectID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Epic{}, fault.Missing("epic", id)
	}
	return ep, err
}

func (e Engine) ListEpics(ctx context.Context, f repo.EpicFilters) ([]domain.Epic, error) {
	if err := e.requireProject(ctx, f.ProjectID); err != nil {
		return nil, err
	}
	f.Limit = e.normalizeLimit(f.Limit)
	return e.Repo.ListEpics(ctx, f)
}

// ListEpicTasks returns the tasks attached to one epic.
func (e Engine) ListEpicTasks(ctx context.Context, projectID, epicID int64) ([]domain.Task, error) {
	if _, err := e.GetEpic(ctx, projectID, epicID); err != nil {
		return nil, err
	}
	return e.Repo.ListTasks(ctx, repo.TaskFilters{ProjectID: projectID, EpicID: &epicID})
}
