package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"alice/internal/domain"
)

const decisionColumns = `id,project_id,task_id,title,context_md,decision_md,consequences_md,status,created_at,updated_at`

func scanDecision(scan func(dest ...any) error) (domain.Decision, error) {
	var d domain.Decision
	var taskID sql.NullInt64
	var contextMD, decisionMD, consequencesMD sql.NullString
	err := scan(&d.ID, &d.ProjectID, &taskID, &d.Title, &contextMD, &decisionMD, &consequencesMD, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	if taskID.Valid {
		d.TaskID = &taskID.Int64
	}
	if contextMD.Valid {
		d.ContextMD = contextMD.String
	}
	if decisionMD.Valid {
		d.DecisionMD = decisionMD.String
	}
	if consequencesMD.Valid {
		d.ConsequencesMD = consequencesMD.String
	}
	return d, nil
}

func (r Repo) InsertDecision(ctx context.Context, tx *sql.Tx, d domain.Decision) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO decisions(project_id,task_id,title,context_md,decision_md,consequences_md,status,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		d.ProjectID, nullableInt64Ptr(d.TaskID), d.Title, nullable(d.ContextMD), nullable(d.DecisionMD), nullable(d.ConsequencesMD), d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetDecision(ctx context.Context, projectID, id int64) (domain.Decision, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+decisionColumns+` FROM decisions WHERE id=? AND project_id=?`, id, projectID)
	return scanDecision(row.Scan)
}

func (r Repo) GetDecisionTx(ctx context.Context, tx *sql.Tx, projectID, id int64) (domain.Decision, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+decisionColumns+` FROM decisions WHERE id=? AND project_id=?`, id, projectID)
	return scanDecision(row.Scan)
}

func (r Repo) UpdateDecision(ctx context.Context, tx *sql.Tx, d domain.Decision) error {
	res, err := tx.ExecContext(ctx, `UPDATE decisions SET task_id=?, title=?, context_md=?, decision_md=?, consequences_md=?, status=?, updated_at=? WHERE id=? AND project_id=?`,
		nullableInt64Ptr(d.TaskID), d.Title, nullable(d.ContextMD), nullable(d.DecisionMD), nullable(d.ConsequencesMD), d.Status, d.UpdatedAt, d.ID, d.ProjectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type DecisionFilters struct {
	ProjectID int64
	Status    string
	Skip      int
	Limit     int
}

func (r Repo) ListDecisions(ctx context.Context, f DecisionFilters) ([]domain.Decision, error) {
	clauses := []string{"project_id=?"}
	args := []any{f.ProjectID}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	query := `SELECT ` + decisionColumns + ` FROM decisions ` + buildWhere(clauses) + ` ORDER BY created_at ASC, id ASC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Skip)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// DecisionsByIDsTx loads decisions with one batched query, keyed by id,
// used by the bulk engine to prevalidate update targets.
func (r Repo) DecisionsByIDsTx(ctx context.Context, tx *sql.Tx, projectID int64, ids []int64) (map[int64]domain.Decision, error) {
	res := map[int64]domain.Decision{}
	if len(ids) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, projectID)
	query := fmt.Sprintf(`SELECT %s FROM decisions WHERE id IN (%s) AND project_id=?`, decisionColumns, placeholders)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDecision(rows.Scan)
		if err != nil {
			return nil, err
		}
		res[d.ID] = d
	}
	return res, rows.Err()
}
