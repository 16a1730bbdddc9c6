package engine

import (
	"context"
	"errors"

	"alice/internal/domain"
	"alice/internal/fault"
	"alice/internal/repo"
)

// PlanItem is one resolved plan slot: the entry plus its task with the
// current status.
type PlanItem struct {
	Task      domain.Task `json:"task"`
	Position  int         `json:"position"`
	Rationale string      `json:"rationale,omitempty"`
}

// PlanUpdate is one requested plan slot; positions come from slice order.
type PlanUpdate struct {
	TaskID    int64
	Rationale string
}

// GetPlan returns the project's plan in position order with tasks embedded.
func (e Engine) GetPlan(ctx context.Context, projectID int64) ([]PlanItem, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	entries, err := e.Repo.ListPlanEntries(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(entries))
	for i, en := range entries {
		ids[i] = en.TaskID
	}
	tasks, err := e.Repo.TasksByIDs(ctx, projectID, ids)
	if err != nil {
		return nil, err
	}
	items := make([]PlanItem, 0, len(entries))
	for _, en := range entries {
		t, ok := tasks[en.TaskID]
		if !ok {
			// Entry rows cascade with their task; a miss would mean a
			// torn write, so surface it rather than skip silently.
			return nil, fault.Missing("task", en.TaskID)
		}
		items = append(items, PlanItem{Task: t, Position: en.Position, Rationale: en.Rationale})
	}
	return items, nil
}

// ReplacePlan atomically swaps the whole plan. Every referenced task
// must belong to the project or nothing is written.
func (e Engine) ReplacePlan(ctx context.Context, projectID int64, updates []PlanUpdate) ([]PlanItem, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, len(updates))
	for i, u := range updates {
		ids[i] = u.TaskID
	}
	tasks, err := e.Repo.TasksByIDsTx(ctx, tx, projectID, ids)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	for _, u := range updates {
		if _, ok := tasks[u.TaskID]; !ok {
			return nil, fault.Missing("task", u.TaskID)
		}
		if seen[u.TaskID] {
			return nil, fault.Invalid("task_id", "appears more than once in the plan")
		}
		seen[u.TaskID] = true
	}
	if err := e.Repo.ClearPlan(ctx, tx, projectID); err != nil {
		return nil, err
	}
	now := e.timestamp()
	items := make([]PlanItem, 0, len(updates))
	for i, u := range updates {
		entry := domain.PlanEntry{
			ProjectID: projectID,
			TaskID:    u.TaskID,
			Position:  i,
			Rationale: u.Rationale,
			CreatedAt: now,
		}
		if _, err := e.Repo.InsertPlanEntry(ctx, tx, entry); err != nil {
			return nil, err
		}
		items = append(items, PlanItem{Task: tasks[u.TaskID], Position: i, Rationale: u.Rationale})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return items, nil
}

// NextTask returns the first planned task that is still open. When the
// plan is exhausted it reports not-found; unplanned tasks are never
// suggested.
func (e Engine) NextTask(ctx context.Context, projectID int64) (domain.Task, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return domain.Task{}, err
	}
	t, err := e.Repo.NextPlannedTask(ctx, projectID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Task{}, fault.NotFoundError{Kind: "next task"}
	}
	return t, err
}
