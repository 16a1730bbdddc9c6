package repo

import (
	"context"
	"database/sql"

	"alice/internal/domain"
)

// ClearPlan removes every plan entry for a project.
func (r Repo) ClearPlan(ctx context.Context, tx *sql.Tx, projectID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM plan_entries WHERE project_id=?`, projectID)
	return err
}

func (r Repo) InsertPlanEntry(ctx context.Context, tx *sql.Tx, e domain.PlanEntry) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO plan_entries(project_id,task_id,position,rationale,created_at) VALUES (?,?,?,?,?)`,
		e.ProjectID, e.TaskID, e.Position, nullable(e.Rationale), e.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListPlanEntries returns a project's plan in position order.
func (r Repo) ListPlanEntries(ctx context.Context, projectID int64) ([]domain.PlanEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,project_id,task_id,position,rationale,created_at FROM plan_entries WHERE project_id=? ORDER BY position ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.PlanEntry
	for rows.Next() {
		var e domain.PlanEntry
		var rationale sql.NullString
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.TaskID, &e.Position, &rationale, &e.CreatedAt); err != nil {
			return nil, err
		}
		if rationale.Valid {
			e.Rationale = rationale.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// DeletePlanEntryForTask drops a task's plan entry, if any.
func (r Repo) DeletePlanEntryForTask(ctx context.Context, tx *sql.Tx, projectID, taskID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM plan_entries WHERE project_id=? AND task_id=?`, projectID, taskID)
	return err
}

// NextPlannedTask returns the first plan entry whose task is still open.
func (r Repo) NextPlannedTask(ctx context.Context, projectID int64) (domain.Task, error) {
	query := `SELECT ` + prefixedTaskColumns + ` FROM plan_entries p
JOIN tasks t ON t.id=p.task_id AND t.project_id=p.project_id
WHERE p.project_id=? AND t.status NOT IN (?,?)
ORDER BY p.position ASC LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, projectID, domain.StatusDone, domain.StatusCanceled)
	return scanTask(row.Scan)
}

const prefixedTaskColumns = `t.id,t.project_id,t.epic_id,t.title,t.description,t.status,t.assignee,t.created_at,t.updated_at`
