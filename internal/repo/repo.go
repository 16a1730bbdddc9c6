package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"alice/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func scanProject(scan func(dest ...any) error) (domain.Project, error) {
	var p domain.Project
	var desc, path sql.NullString
	err := scan(&p.ID, &p.Name, &desc, &path, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	if path.Valid {
		p.Path = path.String
	}
	return p, nil
}

const projectColumns = `id,name,description,path,created_at,updated_at`

func (r Repo) InsertProject(ctx context.Context, tx *sql.Tx, p domain.Project) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO projects(name,description,path,created_at,updated_at) VALUES (?,?,?,?,?)`,
		p.Name, nullable(p.Description), nullable(p.Path), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=?`, id)
	return scanProject(row.Scan)
}

func (r Repo) GetProjectTx(ctx context.Context, tx *sql.Tx, id int64) (domain.Project, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=?`, id)
	return scanProject(row.Scan)
}

func (r Repo) GetProjectByName(ctx context.Context, name string) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name=?`, name)
	return scanProject(row.Scan)
}

func (r Repo) GetProjectByNameTx(ctx context.Context, tx *sql.Tx, name string) (domain.Project, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name=?`, name)
	return scanProject(row.Scan)
}

func (r Repo) ListProjects(ctx context.Context, skip, limit int) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at ASC, id ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, skip)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r Repo) UpdateProject(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	res, err := tx.ExecContext(ctx, `UPDATE projects SET name=?, description=?, path=?, updated_at=? WHERE id=?`,
		p.Name, nullable(p.Description), nullable(p.Path), p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// buildWhere joins clauses into a WHERE fragment, empty when no clauses.
func buildWhere(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}
