package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"alice/internal/domain"
	"alice/internal/engine"
)

func registerProjects(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateProjectRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		p, err := e.CreateProject(ctx, input.Body.Name, input.Body.Description, input.Body.Path)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Skip  int `query:"skip" default:"0" minimum:"0"`
		Limit int `query:"limit" default:"100" minimum:"1"`
	}) (*struct {
		Body []ProjectSummary `json:"body"`
	}, error) {
		items, err := e.ListProjects(ctx, input.Skip, input.Limit)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		res := make([]ProjectSummary, 0, len(items))
		for _, p := range items {
			res = append(res, ProjectSummary{ID: p.ID, Name: p.Name})
		}
		return &struct {
			Body []ProjectSummary `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := e.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project-by-name",
		Method:      http.MethodGet,
		Path:        "/projects/by-name/{name}",
		Summary:     "Resolve project by name",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := e.GetProjectByName(ctx, input.Name)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/projects/{project_id}",
		Summary:     "Update project",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                `path:"project_id"`
		Body      UpdateProjectRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		p, err := e.UpdateProject(ctx, engine.ProjectUpdateOptions{
			ID:          input.ProjectID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Path:        input.Body.Path,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})
}
