package engine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"alice/internal/config"
	"alice/internal/domain"
	"alice/internal/fault"
	"alice/internal/history"
	"alice/internal/repo"
)

type Engine struct {
	DB      *sql.DB
	Repo    repo.Repo
	History history.Recorder
	Config  *config.Config
	Now     func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:      db,
		Repo:    repo.Repo{DB: db},
		History: history.Recorder{},
		Config:  cfg,
		Now:     time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

func (e Engine) recorder() history.Recorder {
	rec := e.History
	if rec.Now == nil {
		rec.Now = e.Now
	}
	return rec
}

// CreateProject creates a project. Names are globally unique.
func (e Engine) CreateProject(ctx context.Context, name, description, path string) (domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, fault.Invalid("name", "is required")
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()

	if _, err := e.Repo.GetProjectByNameTx(ctx, tx, name); err == nil {
		return domain.Project{}, fault.ConflictError{Reason: "project name already exists: " + name}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.Project{}, err
	}
	now := e.timestamp()
	p := domain.Project{
		Name:        name,
		Description: description,
		Path:        path,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := e.Repo.InsertProject(ctx, tx, p)
	if err != nil {
		return domain.Project{}, err
	}
	p.ID = id
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// ProjectUpdateOptions carries partial project updates. Nil fields are
// left untouched.
type ProjectUpdateOptions struct {
	ID          int64
	Name        *string
	Description *string
	Path        *string
}

// UpdateProject applies a partial update. Renames re-check name
// uniqueness against other projects.
func (e Engine) UpdateProject(ctx context.Context, opts ProjectUpdateOptions) (domain.Project, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()

	p, err := e.Repo.GetProjectTx(ctx, tx, opts.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Project{}, fault.Missing("project", opts.ID)
		}
		return domain.Project{}, err
	}
	if opts.Name != nil {
		name := strings.TrimSpace(*opts.Name)
		if name == "" {
			return domain.Project{}, fault.Invalid("name", "must not be empty")
		}
		if name != p.Name {
			if other, err := e.Repo.GetProjectByNameTx(ctx, tx, name); err == nil && other.ID != p.ID {
				return domain.Project{}, fault.ConflictError{Reason: "project name already exists: " + name}
			} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return domain.Project{}, err
			}
		}
		p.Name = name
	}
	if opts.Description != nil {
		p.Description = *opts.Description
	}
	if opts.Path != nil {
		p.Path = *opts.Path
	}
	p.UpdatedAt = e.timestamp()
	if err := e.Repo.UpdateProject(ctx, tx, p); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// GetProject fetches a project by numeric id.
func (e Engine) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	p, err := e.Repo.GetProject(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Project{}, fault.Missing("project", id)
	}
	return p, err
}

// GetProjectByName resolves a project by its unique name.
func (e Engine) GetProjectByName(ctx context.Context, name string) (domain.Project, error) {
	p, err := e.Repo.GetProjectByName(ctx, name)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Project{}, fault.NotFoundError{Kind: "project", Ref: name}
	}
	return p, err
}

// ListProjects pages through projects in creation order.
func (e Engine) ListProjects(ctx context.Context, skip, limit int) ([]domain.Project, error) {
	return e.Repo.ListProjects(ctx, skip, e.normalizeLimit(limit))
}

// requireProject verifies the project exists before scoped operations.
func (e Engine) requireProject(ctx context.Context, id int64) error {
	_, err := e.Repo.GetProject(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fault.Missing("project", id)
	}
	return err
}

func (e Engine) normalizeLimit(limit int) int {
	def, max := 100, 1000
	if e.Config != nil {
		def = e.Config.Pagination.DefaultLimit
		max = e.Config.Pagination.MaxLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
