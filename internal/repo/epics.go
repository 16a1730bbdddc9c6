package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"alice/internal/domain"
)

const epicColumns = `id,project_id,title,description,status,assignee,created_at,updated_at`

func scanEpic(scan func(dest ...any) error) (domain.Epic, error) {
	var e domain.Epic
	var desc, assignee sql.NullString
	err := scan(&e.ID, &e.ProjectID, &e.Title, &desc, &e.Status, &assignee, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	if err != nil {
		return e, err
	}
	if desc.Valid {
		e.Description = desc.String
	}
	if assignee.Valid {
		e.Assignee = assignee.String
	}
	return e, nil
}

func (r Repo) InsertEpic(ctx context.Context, tx *sql.Tx, e domain.Epic) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO epics(project_id,title,description,status,assignee,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		e.ProjectID, e.Title, nullable(e.Description), e.Status, nullable(e.Assignee), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEpic is project-scoped: an epic under another project is not found.
func (r Repo) GetEpic(ctx context.Context, projectID, id int64) (domain.Epic, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+epicColumns+` FROM epics WHERE id=? AND project_id=?`, id, projectID)
	return scanEpic(row.Scan)
}

func (r Repo) GetEpicTx(ctx context.Context, tx *sql.Tx, projectID, id int64) (domain.Epic, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+epicColumns+` FROM epics WHERE id=? AND project_id=?`, id, projectID)
	return scanEpic(row.Scan)
}

func (r Repo) UpdateEpic(ctx context.Context, tx *sql.Tx, e domain.Epic) error {
	res, err := tx.ExecContext(ctx, `UPDATE epics SET title=?, description=?, status=?, assignee=?, updated_at=? WHERE id=? AND project_id=?`,
		e.Title, nullable(e.Description), e.Status, nullable(e.Assignee), e.UpdatedAt, e.ID, e.ProjectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DetachEpicTasks clears epic linkage from all tasks of an epic.
func (r Repo) DetachEpicTasks(ctx context.Context, tx *sql.Tx, projectID, epicID int64, updatedAt string) error {
	_, err := tx.ExecContext(ctx, `UPDATE tasks SET epic_id=NULL, updated_at=? WHERE epic_id=? AND project_id=?`,
		updatedAt, epicID, projectID)
	return err
}

func (r Repo) DeleteEpic(ctx context.Context, tx *sql.Tx, projectID, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM epics WHERE id=? AND project_id=?`, id, projectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type EpicFilters struct {
	ProjectID     int64
	Status        string
	Assignee      string
	CreatedAfter  string
	CreatedBefore string
	Skip          int
	Limit         int
}

func (r Repo) ListEpics(ctx context.Context, f EpicFilters) ([]domain.Epic, error) {
	clauses := []string{"project_id=?"}
	args := []any{f.ProjectID}
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
	query := `SELECT ` + epicColumns + ` FROM epics ` + buildWhere(clauses) + ` ORDER BY created_at ASC, id ASC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Skip)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Epic
	for rows.Next() {
		e, err := scanEpic(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// ExistingEpicIDs resolves which of the given epic ids exist in the
// project, with one batched query.
func (r Repo) ExistingEpicIDs(ctx context.Context, tx *sql.Tx, projectID int64, ids []int64) (map[int64]bool, error) {
	res := map[int64]bool{}
	if len(ids) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, projectID)
	query := fmt.Sprintf(`SELECT id FROM epics WHERE id IN (%s) AND project_id=?`, placeholders)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res[id] = true
	}
	return res, rows.Err()
}
