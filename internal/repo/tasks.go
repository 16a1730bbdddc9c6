package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"alice/internal/domain"
)

const taskColumns = `id,project_id,epic_id,title,description,status,assignee,created_at,updated_at`

func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var t domain.Task
	var epicID sql.NullInt64
	var desc, assignee sql.NullString
	err := scan(&t.ID, &t.ProjectID, &epicID, &t.Title, &desc, &t.Status, &assignee, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if epicID.Valid {
		t.EpicID = &epicID.Int64
	}
	if desc.Valid {
		t.Description = desc.String
	}
	if assignee.Valid {
		t.Assignee = assignee.String
	}
	return t, nil
}

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO tasks(project_id,epic_id,title,description,status,assignee,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)`,
		t.ProjectID, nullableInt64Ptr(t.EpicID), t.Title, nullable(t.Description), t.Status, nullable(t.Assignee), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetTask is project-scoped: a task under another project is not found.
func (r Repo) GetTask(ctx context.Context, projectID, id int64) (domain.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=? AND project_id=?`, id, projectID)
	return scanTask(row.Scan)
}

func (r Repo) GetTaskTx(ctx context.Context, tx *sql.Tx, projectID, id int64) (domain.Task, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=? AND project_id=?`, id, projectID)
	return scanTask(row.Scan)
}

func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET project_id=?, epic_id=?, title=?, description=?, status=?, assignee=?, updated_at=? WHERE id=?`,
		t.ProjectID, nullableInt64Ptr(t.EpicID), t.Title, nullable(t.Description), t.Status, nullable(t.Assignee), t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task; messages, status history, and the plan
// entry follow through FK cascades.
func (r Repo) DeleteTask(ctx context.Context, tx *sql.Tx, projectID, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=? AND project_id=?`, id, projectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type TaskFilters struct {
	ProjectID     int64
	EpicID        *int64
	Status        string
	Assignee      string
	CreatedAfter  string
	CreatedBefore string
	Skip          int
	Limit         int
}

func (r Repo) ListTasks(ctx context.Context, f TaskFilters) ([]domain.Task, error) {
	clauses := []string{"project_id=?"}
	args := []any{f.ProjectID}
	if f.EpicID != nil {
		clauses = append(clauses, "epic_id=?")
		args = append(args, *f.EpicID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.Assignee != "" {
		clauses = append(clauses, "assignee=?")
		args = append(args, f.Assignee)
	}
	if f.CreatedAfter != "" {
		clauses = append(clauses, "created_at>=?")
		args = append(args, f.CreatedAfter)
	}
	if f.CreatedBefore != "" {
		clauses = append(clauses, "created_at<?")
		args = append(args, f.CreatedBefore)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks ` + buildWhere(clauses) + ` ORDER BY created_at ASC, id ASC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Skip)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// TasksByIDs loads tasks with one batched query, keyed by id.
// Ids from other projects are silently absent from the result.
func (r Repo) TasksByIDs(ctx context.Context, projectID int64, ids []int64) (map[int64]domain.Task, error) {
	res := map[int64]domain.Task{}
	if len(ids) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, projectID)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id IN (%s) AND project_id=?`, taskColumns, placeholders)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		res[t.ID] = t
	}
	return res, rows.Err()
}

// TasksByIDsTx is TasksByIDs inside a transaction, used by the bulk
// engine and plan replacement to prevalidate ids.
func (r Repo) TasksByIDsTx(ctx context.Context, tx *sql.Tx, projectID int64, ids []int64) (map[int64]domain.Task, error) {
	res := map[int64]domain.Task{}
	if len(ids) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, projectID)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id IN (%s) AND project_id=?`, taskColumns, placeholders)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		res[t.ID] = t
	}
	return res, rows.Err()
}
