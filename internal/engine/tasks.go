package engine

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"alice/internal/domain"
	"alice/internal/fault"
	"alice/internal/repo"
)

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	ProjectID   int64
	EpicID      *int64
	Title       string
	Description string
	Status      string
	Assignee    string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return domain.Task{}, fault.Invalid("title", "is required")
	}
	if opts.Status == "" {
		opts.Status = domain.StatusToDo
	}
	if !domain.ValidStatus(opts.Status) {
		return domain.Task{}, fault.Invalid("status", "unknown status "+opts.Status)
	}
	if err := e.requireProject(ctx, opts.ProjectID); err != nil {
		return domain.Task{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	if opts.EpicID != nil {
		if err := e.requireEpicInProject(ctx, tx, opts.ProjectID, *opts.EpicID); err != nil {
			return domain.Task{}, err
		}
	}
	now := e.timestamp()
	t := domain.Task{
		ProjectID:   opts.ProjectID,
		EpicID:      opts.EpicID,
		Title:       opts.Title,
		Description: opts.Description,
		Status:      opts.Status,
		Assignee:    opts.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := e.Repo.InsertTask(ctx, tx, t)
	if err != nil {
		return domain.Task{}, err
	}
	t.ID = id
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// TaskUpdateOptions carries partial task updates. EpicID with
// ClearEpic=false sets a new epic; ClearEpic detaches the task.
type TaskUpdateOptions struct {
	ProjectID   int64
	ID          int64
	Title       *string
	Description *string
	Status      *string
	Assignee    *string
	EpicID      *int64
	ClearEpic   bool
}

func (e Engine) UpdateTask(ctx context.Context, opts TaskUpdateOptions) (domain.Task, error) {
	if err := e.requireProject(ctx, opts.ProjectID); err != nil {
		return domain.Task{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	t, err := e.Repo.GetTaskTx(ctx, tx, opts.ProjectID, opts.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, fault.Missing("task", opts.ID)
		}
		return domain.Task{}, err
	}
	oldStatus := t.Status
	if opts.Title != nil {
		if strings.TrimSpace(*opts.Title) == "" {
			return domain.Task{}, fault.Invalid("title", "must not be empty")
		}
		t.Title = *opts.Title
	}
	if opts.Description != nil {
		t.Description = *opts.Description
	}
	if opts.Status != nil {
		if !domain.ValidStatus(*opts.Status) {
			return domain.Task{}, fault.Invalid("status", "unknown status "+*opts.Status)
		}
		t.Status = *opts.Status
	}
	if opts.Assignee != nil {
		t.Assignee = *opts.Assignee
	}
	switch {
	case opts.ClearEpic:
		t.EpicID = nil
	case opts.EpicID != nil:
		if err := e.requireEpicInProject(ctx, tx, opts.ProjectID, *opts.EpicID); err != nil {
			return domain.Task{}, err
		}
		t.EpicID = opts.EpicID
	}
	t.UpdatedAt = e.timestamp()
	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return domain.Task{}, err
	}
	if err := e.recorder().Append(ctx, tx, t.ID, oldStatus, t.Status); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// DeleteTask removes a task with its messages, history, and plan entry.
func (e Engine) DeleteTask(ctx context.Context, projectID, id int64) error {
	if err := e.requireProject(ctx, projectID); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := e.Repo.DeleteTask(ctx, tx, projectID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fault.Missing("task", id)
		}
		return err
	}
	return tx.Commit()
}

// MoveTask moves a task into the project named targetName. The epic
// linkage is cleared and the source project's plan entry is dropped
// because both are project-scoped; messages and history stay with the
// task.
func (e Engine) MoveTask(ctx context.Context, projectID, taskID int64, targetName string) (domain.Task, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return domain.Task{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	t, err := e.Repo.GetTaskTx(ctx, tx, projectID, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, fault.Missing("task", taskID)
		}
		return domain.Task{}, err
	}
	target, err := e.Repo.GetProjectByNameTx(ctx, tx, targetName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Task{}, fault.NotFoundError{Kind: "project", Ref: targetName}
		}
		return domain.Task{}, err
	}
	t.ProjectID = target.ID
	t.EpicID = nil
	t.UpdatedAt = e.timestamp()
	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return domain.Task{}, err
	}
	if err := e.Repo.DeletePlanEntryForTask(ctx, tx, projectID, taskID); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (e Engine) GetTask(ctx context.Context, projectID, id int64) (domain.Task, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return domain.Task{}, err
	}
	t, err := e.Repo.GetTask(ctx, projectID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Task{}, fault.Missing("task", id)
	}
	return t, err
}

// ListTasks pages through a project's tasks. With details, messages and
// status history are attached via batched lookups.
func (e Engine) ListTasks(ctx context.Context, f repo.TaskFilters, includeDetails bool) ([]domain.Task, error) {
	if err := e.requireProject(ctx, f.ProjectID); err != nil {
		return nil, err
	}
	f.Limit = e.normalizeLimit(f.Limit)
	tasks, err := e.Repo.ListTasks(ctx, f)
	if err != nil {
		return nil, err
	}
	if !includeDetails || len(tasks) == 0 {
		return tasks, nil
	}
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	messages, err := e.Repo.MessagesForTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	changes, err := e.Repo.HistoryForTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Messages = messages[tasks[i].ID]
		tasks[i].StatusHistory = changes[tasks[i].ID]
	}
	return tasks, nil
}

// AddMessage appends a message to a task's log.
func (e Engine) AddMessage(ctx context.Context, projectID, taskID int64, author, text string) (domain.Message, error) {
	if strings.TrimSpace(author) == "" {
		return domain.Message{}, fault.Invalid("author", "is required")
	}
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, fault.Invalid("message", "is required")
	}
	if _, err := e.GetTask(ctx, projectID, taskID); err != nil {
		return domain.Message{}, err
	}
	m := domain.Message{
		TaskID:    taskID,
		Author:    author,
		Message:   text,
		Timestamp: e.timestamp(),
	}
	id, err := e.Repo.InsertMessage(ctx, m)
	if err != nil {
		return domain.Message{}, err
	}
	m.ID = id
	return m, nil
}

// ListMessages returns a task's messages in chronological order.
func (e Engine) ListMessages(ctx context.Context, projectID, taskID int64) ([]domain.Message, error) {
	if _, err := e.GetTask(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return e.Repo.ListMessages(ctx, taskID)
}

// StatusHistory returns a task's recorded transitions.
func (e Engine) StatusHistory(ctx context.Context, projectID, taskID int64) ([]domain.StatusChange, error) {
	if _, err := e.GetTask(ctx, projectID, taskID); err != nil {
		return nil, err
	}
	return e.Repo.ListStatusHistory(ctx, taskID)
}

func (e Engine) requireEpicInProject(ctx context.Context, tx *sql.Tx, projectID, epicID int64) error {
	_, err := e.Repo.GetEpicTx(ctx, tx, projectID, epicID)
	if errors.Is(err, repo.ErrNotFound) {
		return fault.Missing("epic", epicID)
	}
	return err
}
