package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/repo"
)

func registerEpics(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-epic",
		Method:        http.MethodPost,
		Path:          "/{project_id}/epics",
		Summary:       "Create epic",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64             `path:"project_id"`
		Body      CreateEpicRequest `json:"body"`
	}) (*struct {
		Body domain.Epic `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		ep, err := e.CreateEpic(ctx, engine.EpicCreateOptions{
			ProjectID:   input.ProjectID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			Assignee:    input.Body.Assignee,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Epic `json:"body"`
		}{Body: ep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-epics",
		Method:      http.MethodGet,
		Path:        "/{project_id}/epics",
		Summary:     "List epics",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID     int64  `path:"project_id"`
		Status        string `query:"status"`
		Assignee      string `query:"assignee"`
		CreatedAfter  string `query:"created_after"`
		CreatedBefore string `query:"created_before"`
		Skip          int    `query:"skip" default:"0" minimum:"0"`
		Limit         int    `query:"limit" default:"100" minimum:"1"`
	}) (*struct {
		Body []domain.Epic `json:"body"`
	}, error) {
		after, err := parseTimeFilter("created_after", input.CreatedAfter)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		before, err := parseTimeFilter("created_before", input.CreatedBefore)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		items, err := e.ListEpics(ctx, repo.EpicFilters{
			ProjectID:     input.ProjectID,
			Status:        input.Status,
			Assignee:      input.Assignee,
			CreatedAfter:  after,
			CreatedBefore: before,
			Skip:          input.Skip,
			Limit:         input.Limit,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []domain.Epic{}
		}
		return &struct {
			Body []domain.Epic `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-epic",
		Method:      http.MethodGet,
		Path:        "/{project_id}/epics/{epic_id}",
		Summary:     "Get epic",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		EpicID    int64 `path:"epic_id"`
	}) (*struct {
		Body domain.Epic `json:"body"`
	}, error) {
		ep, err := e.GetEpic(ctx, input.ProjectID, input.EpicID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Epic `json:"body"`
		}{Body: ep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-epic",
		Method:      http.MethodPut,
		Path:        "/{project_id}/epics/{epic_id}",
		Summary:     "Update epic",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64             `path:"project_id"`
		EpicID    int64             `path:"epic_id"`
		Body      UpdateEpicRequest `json:"body"`
	}) (*struct {
		Body domain.Epic `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		ep, err := e.UpdateEpic(ctx, engine.EpicUpdateOptions{
			ProjectID:   input.ProjectID,
			ID:          input.EpicID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			Assignee:    input.Body.Assignee,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Epic `json:"body"`
		}{Body: ep}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-epic",
		Method:      http.MethodDelete,
		Path:        "/{project_id}/epics/{epic_id}",
		Summary:     "Delete epic, detaching its tasks",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		EpicID    int64 `path:"epic_id"`
	}) (*struct{}, error) {
		if err := e.DeleteEpic(ctx, input.ProjectID, input.EpicID); err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-epic-tasks",
		Method:      http.MethodGet,
		Path:        "/{project_id}/epics/{epic_id}/tasks",
		Summary:     "List tasks in an epic",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		EpicID    int64 `path:"epic_id"`
	}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		items, err := e.ListEpicTasks(ctx, input.ProjectID, input.EpicID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []domain.Task{}
		}
		return &struct {
			Body []domain.Task `json:"body"`
		}{Body: items}, nil
	})
}
