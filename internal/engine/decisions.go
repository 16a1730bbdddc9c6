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

// DecisionCreateOptions are parameters for recording a decision.
type DecisionCreateOptions struct {
	ProjectID      int64
	TaskID         *int64
	Title          string
	ContextMD      string
	DecisionMD     string
	ConsequencesMD string
	Status         string
}

func (e Engine) CreateDecision(ctx context.Context, opts DecisionCreateOptions) (domain.Decision, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return domain.Decision{}, fault.Invalid("title", "is required")
	}
	if opts.Status == "" {
		opts.Status = domain.DecisionProposed
	}
	if !domain.ValidDecisionStatus(opts.Status) {
		return domain.Decision{}, fault.Invalid("status", "unknown decision status "+opts.Status)
	}
	if err := e.requireProject(ctx, opts.ProjectID); err != nil {
		return domain.Decision{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Decision{}, err
	}
	defer tx.Rollback()

	if opts.TaskID != nil {
		if err := e.requireTaskInProject(ctx, tx, opts.ProjectID, *opts.TaskID); err != nil {
			return domain.Decision{}, err
		}
	}
	now := e.timestamp()
	d := domain.Decision{
		ProjectID:      opts.ProjectID,
		TaskID:         opts.TaskID,
		Title:          opts.Title,
		ContextMD:      opts.ContextMD,
		DecisionMD:     opts.DecisionMD,
		ConsequencesMD: opts.ConsequencesMD,
		Status:         opts.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	id, err := e.Repo.InsertDecision(ctx, tx, d)
	if err != nil {
		return domain.Decision{}, err
	}
	d.ID = id
	if err := tx.Commit(); err != nil {
		return domain.Decision{}, err
	}
	return d, nil
}

// DecisionUpdateOptions carries partial decision updates.
type DecisionUpdateOptions struct {
	ProjectID      int64
	ID             int64
	TaskID         *int64
	Title          *string
	ContextMD      *string
	DecisionMD     *string
	ConsequencesMD *string
	Status         *string
}

func (e Engine) UpdateDecision(ctx context.Context, opts DecisionUpdateOptions) (domain.Decision, error) {
	if err := e.requireProject(ctx, opts.ProjectID); err != nil {
		return domain.Decision{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Decision{}, err
	}
	defer tx.Rollback()

	d, err := applyDecisionUpdate(ctx, e, tx, opts)
	if err != nil {
		return domain.Decision{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Decision{}, err
	}
	return d, nil
}

// applyDecisionUpdate runs inside an existing transaction so the bulk
// engine can reuse it per item.
func applyDecisionUpdate(ctx context.Context, e Engine, tx *sql.Tx, opts DecisionUpdateOptions) (domain.Decision, error) {
	d, err := e.Repo.GetDecisionTx(ctx, tx, opts.ProjectID, opts.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Decision{}, fault.Missing("decision", opts.ID)
		}
		return domain.Decision{}, err
	}
	if opts.Title != nil {
		if strings.TrimSpace(*opts.Title) == "" {
			return domain.Decision{}, fault.Invalid("title", "must not be empty")
		}
		d.Title = *opts.Title
	}
	if opts.ContextMD != nil {
		d.ContextMD = *opts.ContextMD
	}
	if opts.DecisionMD != nil {
		d.DecisionMD = *opts.DecisionMD
	}
	if opts.ConsequencesMD != nil {
		d.ConsequencesMD = *opts.ConsequencesMD
	}
	if opts.Status != nil {
		if !domain.ValidDecisionStatus(*opts.Status) {
			return domain.Decision{}, fault.Invalid("status", "unknown decision status "+*opts.Status)
		}
		d.Status = *opts.Status
	}
	if opts.TaskID != nil {
		if err := e.requireTaskInProject(ctx, tx, opts.ProjectID, *opts.TaskID); err != nil {
			return domain.Decision{}, err
		}
		d.TaskID = opts.TaskID
	}
	d.UpdatedAt = e.timestamp()
	if err := e.Repo.UpdateDecision(ctx, tx, d); err != nil {
		return domain.Decision{}, err
	}
	return d, nil
}

func (e Engine) GetDecision(ctx context.Context, projectID, id int64) (domain.Decision, error) {
	if err := e.requireProject(ctx, projectID); err != nil {
		return domain.Decision{}, err
	}
	d, err := e.Repo.GetDecision(ctx, projectID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Decision{}, fault.Missing("decision", id)
	}
	return d, err
}

func (e Engine) ListDecisions(ctx context.Context, f repo.DecisionFilters) ([]domain.Decision, error) {
	if err := e.requireProject(ctx, f.ProjectID); err != nil {
		return nil, err
	}
	if f.Status != "" && !domain.ValidDecisionStatus(f.Status) {
		return nil, fault.Invalid("status", "unknown decision status "+f.Status)
	}
	f.Limit = e.normalizeLimit(f.Limit)
	return e.Repo.ListDecisions(ctx, f)
}

func (e Engine) requireTaskInProject(ctx context.Context, tx *sql.Tx, projectID, taskID int64) error {
	_, err := e.Repo.GetTaskTx(ctx, tx, projectID, taskID)
	if errors.Is(err, repo.ErrNotFound) {
		return fault.Missing("task", taskID)
	}
	return err
}
