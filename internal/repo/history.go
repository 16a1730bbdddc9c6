package repo

import (
	"context"
	"fmt"
	"strings"

	"alice/internal/domain"
)

// ListStatusHistory returns a task's transitions in the order they happened.
func (r Repo) ListStatusHistory(ctx context.Context, taskID int64) ([]domain.StatusChange, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,task_id,old_status,new_status,changed_at FROM status_history WHERE task_id=? ORDER BY changed_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.StatusChange
	for rows.Next() {
		var c domain.StatusChange
		if err := rows.Scan(&c.ID, &c.TaskID, &c.OldStatus, &c.NewStatus, &c.ChangedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// HistoryForTasks loads transitions for a page of tasks with one
// batched query, grouped by task id.
func (r Repo) HistoryForTasks(ctx context.Context, taskIDs []int64) (map[int64][]domain.StatusChange, error) {
	res := map[int64][]domain.StatusChange{}
	if len(taskIDs) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(taskIDs)), ",")
	args := make([]any, 0, len(taskIDs))
	for _, id := range taskIDs {
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT id,task_id,old_status,new_status,changed_at FROM status_history WHERE task_id IN (%s) ORDER BY changed_at ASC, id ASC`, placeholders)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.StatusChange
		if err := rows.Scan(&c.ID, &c.TaskID, &c.OldStatus, &c.NewStatus, &c.ChangedAt); err != nil {
			return nil, err
		}
		res[c.TaskID] = append(res[c.TaskID], c)
	}
	return res, rows.Err()
}
