package engine

import (
	"context"
	"errors"
	"strings"

	"alice/internal/domain"
	"alice/internal/fault"
)

// Bulk item error codes, stable across the wire.
const (
	BulkValidationError  = "VALIDATION_ERROR"
	BulkEpicNotFound     = "EPIC_NOT_FOUND"
	BulkTaskNotFound     = "TASK_NOT_FOUND"
	BulkDecisionNotFound = "DECISION_NOT_FOUND"
	BulkDatabaseError    = "DATABASE_ERROR"
)

const (
	BulkOpCreate = "create"
	BulkOpUpdate = "update"
)

// BulkItemError describes one failed item. Index points into the
// request array; sibling items are unaffected.
type BulkItemError struct {
	Index        int    `json:"index"`
	ItemID       *int64 `json:"item_id,omitempty"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type BulkTaskReport struct {
	SuccessfulTasks []domain.Task   `json:"successful_tasks"`
	FailedItems     []BulkItemError `json:"failed_items"`
	TotalRequested  int             `json:"total_requested"`
	TotalSuccessful int             `json:"total_successful"`
	TotalFailed     int             `json:"total_failed"`
	OperationType   string          `json:"operation_type"`
}

type BulkDecisionReport struct {
	SuccessfulDecisions []domain.Decision `json:"successful_decisions"`
	FailedItems         []BulkItemError   `json:"failed_items"`
	TotalRequested      int               `json:"total_requested"`
	TotalSuccessful     int               `json:"total_successful"`
	TotalFailed         int               `json:"total_failed"`
	OperationType       string            `json:"operation_type"`
}

// BulkTaskItem is one task to create in a batch.
type BulkTaskItem struct {
	Title       string
	Description string
	Status      string
	Assignee    string
	EpicID      *int64
}

// BulkTaskUpdate is one partial update addressed by task id.
type BulkTaskUpdate struct {
	ID          int64
	Title       *string
	Description *string
	Status      *string
	Assignee    *string
	EpicID      *int64
}

// BulkCreateTasks creates up to a batch of tasks in one transaction.
// Epic ids are prevalidated with a single query; bad items fail
// individually without disturbing the rest of the batch.
func (e Engine) BulkCreateTasks(ctx context.Context, projectID int64, items []BulkTaskItem) (BulkTaskReport, error) {
	report := BulkTaskReport{
		SuccessfulTasks: []domain.Task{},
		FailedItems:     []BulkItemError{},
		TotalRequested:  len(items),
		OperationType:   BulkOpCreate,
	}
	if err := e.requireProject(ctx, projectID); err != nil {
		return report, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	var epicIDs []int64
	for _, it := range items {
		if it.EpicID != nil {
			epicIDs = append(epicIDs, *it.EpicID)
		}
	}
	knownEpics, err := e.Repo.ExistingEpicIDs(ctx, tx, projectID, epicIDs)
	if err != nil {
		return report, err
	}

	now := e.timestamp()
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ErrorCode: BulkValidationError, ErrorMessage: "title: is required",
			})
			continue
		}
		status := it.Status
		if status == "" {
			status = domain.StatusToDo
		}
		if !domain.ValidStatus(status) {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ErrorCode: BulkValidationError, ErrorMessage: "status: unknown status " + status,
			})
			continue
		}
		if it.EpicID != nil && !knownEpics[*it.EpicID] {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ErrorCode: BulkEpicNotFound, ErrorMessage: fault.Missing("epic", *it.EpicID).Error(),
			})
			continue
		}
		t := domain.Task{
			ProjectID:   projectID,
			EpicID:      it.EpicID,
			Title:       it.Title,
			Description: it.Description,
			Status:      status,
			Assignee:    it.Assignee,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		id, err := e.Repo.InsertTask(ctx, tx, t)
		if err != nil {
			return report, err
		}
		t.ID = id
		report.SuccessfulTasks = append(report.SuccessfulTasks, t)
	}
	if err := tx.Commit(); err != nil {
		return report, err
	}
	report.TotalSuccessful = len(report.SuccessfulTasks)
	report.TotalFailed = len(report.FailedItems)
	return report, nil
}

// BulkUpdateTasks applies partial updates in one transaction. Target
// task ids and referenced epic ids are each resolved with one batched
// query up front.
func (e Engine) BulkUpdateTasks(ctx context.Context, projectID int64, updates []BulkTaskUpdate) (BulkTaskReport, error) {
	report := BulkTaskReport{
		SuccessfulTasks: []domain.Task{},
		FailedItems:     []BulkItemError{},
		TotalRequested:  len(updates),
		OperationType:   BulkOpUpdate,
	}
	if err := e.requireProject(ctx, projectID); err != nil {
		return report, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	var taskIDs []int64
	var epicIDs []int64
	for _, u := range updates {
		taskIDs = append(taskIDs, u.ID)
		if u.EpicID != nil {
			epicIDs = append(epicIDs, *u.EpicID)
		}
	}
	targets, err := e.Repo.TasksByIDsTx(ctx, tx, projectID, taskIDs)
	if err != nil {
		return report, err
	}
	knownEpics, err := e.Repo.ExistingEpicIDs(ctx, tx, projectID, epicIDs)
	if err != nil {
		return report, err
	}

	now := e.timestamp()
	for i, u := range updates {
		id := u.ID
		t, ok := targets[id]
		if !ok {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ItemID: &updates[i].ID, ErrorCode: BulkTaskNotFound, ErrorMessage: fault.Missing("task", id).Error(),
			})
			continue
		}
		if u.Status != nil && !domain.ValidStatus(*u.Status) {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ItemID: &updates[i].ID, ErrorCode: BulkValidationError, ErrorMessage: "status: unknown status " + *u.Status,
			})
			continue
		}
		if u.EpicID != nil && !knownEpics[*u.EpicID] {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ItemID: &updates[i].ID, ErrorCode: BulkEpicNotFound, ErrorMessage: fault.Missing("epic", *u.EpicID).Error(),
			})
			continue
		}
		oldStatus := t.Status
		if u.Title != nil {
			if strings.TrimSpace(*u.Title) == "" {
				report.FailedItems = append(report.FailedItems, BulkItemError{
					Index: i, ItemID: &updates[i].ID, ErrorCode: BulkValidationError, ErrorMessage: "title: must not be empty",
				})
				continue
			}
			t.Title = *u.Title
		}
		if u.Description != nil {
			t.Description = *u.Description
		}
		if u.Status != nil {
			t.Status = *u.Status
		}
		if u.Assignee != nil {
			t.Assignee = *u.Assignee
		}
		if u.EpicID != nil {
			t.EpicID = u.EpicID
		}
		t.UpdatedAt = now
		if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
			return report, err
		}
		if err := e.recorder().Append(ctx, tx, t.ID, oldStatus, t.Status); err != nil {
			return report, err
		}
		targets[id] = t
		report.SuccessfulTasks = append(report.SuccessfulTasks, t)
	}
	if err := tx.Commit(); err != nil {
		return report, err
	}
	report.TotalSuccessful = len(report.SuccessfulTasks)
	report.TotalFailed = len(report.FailedItems)
	return report, nil
}

// BulkDecisionItem is one decision to record in a batch.
type BulkDecisionItem struct {
	TaskID         *int64
	Title          string
	ContextMD      string
	DecisionMD     string
	ConsequencesMD string
	Status         string
}

// BulkDecisionUpdate is one partial update addressed by decision id.
type BulkDecisionUpdate struct {
	ID             int64
	TaskID         *int64
	Title          *string
	ContextMD      *string
	DecisionMD     *string
	ConsequencesMD *string
	Status         *string
}

// BulkCreateDecisions records a batch of decisions in one transaction.
func (e Engine) BulkCreateDecisions(ctx context.Context, projectID int64, items []BulkDecisionItem) (BulkDecisionReport, error) {
	report := BulkDecisionReport{
		SuccessfulDecisions: []domain.Decision{},
		FailedItems:         []BulkItemError{},
		TotalRequested:      len(items),
		OperationType:       BulkOpCreate,
	}
	if err := e.requireProject(ctx, projectID); err != nil {
		return report, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	var taskIDs []int64
	for _, it := range items {
		if it.TaskID != nil {
			taskIDs = append(taskIDs, *it.TaskID)
		}
	}
	knownTasks, err := e.Repo.TasksByIDsTx(ctx, tx, projectID, taskIDs)
	if err != nil {
		return report, err
	}

	now := e.timestamp()
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ErrorCode: BulkValidationError, ErrorMessage: "title: is required",
			})
			continue
		}
		status := it.Status
		if status == "" {
			status = domain.DecisionProposed
		}
		if !domain.ValidDecisionStatus(status) {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ErrorCode: BulkValidationError, ErrorMessage: "status: unknown decision status " + status,
			})
			continue
		}
		if it.TaskID != nil {
			if _, ok := knownTasks[*it.TaskID]; !ok {
				report.FailedItems = append(report.FailedItems, BulkItemError{
					Index: i, ErrorCode: BulkTaskNotFound, ErrorMessage: fault.Missing("task", *it.TaskID).Error(),
				})
				continue
			}
		}
		d := domain.Decision{
			ProjectID:      projectID,
			TaskID:         it.TaskID,
			Title:          it.Title,
			ContextMD:      it.ContextMD,
			DecisionMD:     it.DecisionMD,
			ConsequencesMD: it.ConsequencesMD,
			Status:         status,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		id, err := e.Repo.InsertDecision(ctx, tx, d)
		if err != nil {
			return report, err
		}
		d.ID = id
		report.SuccessfulDecisions = append(report.SuccessfulDecisions, d)
	}
	if err := tx.Commit(); err != nil {
		return report, err
	}
	report.TotalSuccessful = len(report.SuccessfulDecisions)
	report.TotalFailed = len(report.FailedItems)
	return report, nil
}

// BulkUpdateDecisions applies partial updates in one transaction.
func (e Engine) BulkUpdateDecisions(ctx context.Context, projectID int64, updates []BulkDecisionUpdate) (BulkDecisionReport, error) {
	report := BulkDecisionReport{
		SuccessfulDecisions: []domain.Decision{},
		FailedItems:         []BulkItemError{},
		TotalRequested:      len(updates),
		OperationType:       BulkOpUpdate,
	}
	if err := e.requireProject(ctx, projectID); err != nil {
		return report, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	var ids []int64
	for _, u := range updates {
		ids = append(ids, u.ID)
	}
	targets, err := e.Repo.DecisionsByIDsTx(ctx, tx, projectID, ids)
	if err != nil {
		return report, err
	}

	for i, u := range updates {
		if _, ok := targets[u.ID]; !ok {
			report.FailedItems = append(report.FailedItems, BulkItemError{
				Index: i, ItemID: &updates[i].ID, ErrorCode: BulkDecisionNotFound, ErrorMessage: fault.Missing("decision", u.ID).Error(),
			})
			continue
		}
		d, err := applyDecisionUpdate(ctx, e, tx, DecisionUpdateOptions{
			ProjectID:      projectID,
			ID:             u.ID,
			TaskID:         u.TaskID,
			Title:          u.Title,
			ContextMD:      u.ContextMD,
			DecisionMD:     u.DecisionMD,
			ConsequencesMD: u.ConsequencesMD,
			Status:         u.Status,
		})
		if err != nil {
			var ve fault.ValidationError
			var nf fault.NotFoundError
			switch {
			case errors.As(err, &ve):
				report.FailedItems = append(report.FailedItems, BulkItemError{
					Index: i, ItemID: &updates[i].ID, ErrorCode: BulkValidationError, ErrorMessage: ve.Error(),
				})
				continue
			case errors.As(err, &nf):
				code := BulkTaskNotFound
				if nf.Kind == "decision" {
					code = BulkDecisionNotFound
				}
				report.FailedItems = append(report.FailedItems, BulkItemError{
					Index: i, ItemID: &updates[i].ID, ErrorCode: code, ErrorMessage: nf.Error(),
				})
				continue
			default:
				return report, err
			}
		}
		report.SuccessfulDecisions = append(report.SuccessfulDecisions, d)
	}
	if err := tx.Commit(); err != nil {
		return report, err
	}
	report.TotalSuccessful = len(report.SuccessfulDecisions)
	report.TotalFailed = len(report.FailedItems)
	return report, nil
}
