package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/repo"
)

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/{project_id}/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64             `path:"project_id"`
		Body      CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		t, err := e.CreateTask(ctx, engine.TaskCreateOptions{
			ProjectID:   input.ProjectID,
			EpicID:      input.Body.EpicID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			Assignee:    input.Body.Assignee,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/{project_id}/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID      int64  `path:"project_id"`
		Status         string `query:"status"`
		Assignee       string `query:"assignee"`
		EpicID         *int64 `query:"epic_id"`
		CreatedAfter   string `query:"created_after"`
		CreatedBefore  string `query:"created_before"`
		Skip           int    `query:"skip" default:"0" minimum:"0"`
		Limit          int    `query:"limit" default:"100" minimum:"1"`
		IncludeDetails bool   `query:"include_details" default:"false"`
	}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		after, err := parseTimeFilter("created_after", input.CreatedAfter)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		before, err := parseTimeFilter("created_before", input.CreatedBefore)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		items, err := e.ListTasks(ctx, repo.TaskFilters{
			ProjectID:     input.ProjectID,
			EpicID:        input.EpicID,
			Status:        input.Status,
			Assignee:      input.Assignee,
			CreatedAfter:  after,
			CreatedBefore: before,
			Skip:          input.Skip,
			Limit:         input.Limit,
		}, input.IncludeDetails)
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

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/{project_id}/tasks/{task_id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		TaskID    int64 `path:"task_id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		t, err := e.GetTask(ctx, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/{project_id}/tasks/{task_id}",
		Summary:     "Update task",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64             `path:"project_id"`
		TaskID    int64             `path:"task_id"`
		Body      UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		opts := engine.TaskUpdateOptions{
			ProjectID:   input.ProjectID,
			ID:          input.TaskID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			Assignee:    input.Body.Assignee,
		}
		// An explicit null epic_id detaches the task; an absent field
		// leaves it alone.
		if raw, ok := rawBodyMap(ctx)["epic_id"]; ok {
			if isNullRaw(raw) {
				opts.ClearEpic = true
			} else {
				var epicID int64
				if err := json.Unmarshal(raw, &epicID); err != nil {
					return nil, newAPIError(http.StatusBadRequest, "validation_error", "epic_id must be an integer or null", map[string]any{"field": "epic_id"})
				}
				opts.EpicID = &epicID
			}
		}
		t, err := e.UpdateTask(ctx, opts)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/{project_id}/tasks/{task_id}",
		Summary:     "Delete task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		TaskID    int64 `path:"task_id"`
	}) (*struct{}, error) {
		if err := e.DeleteTask(ctx, input.ProjectID, input.TaskID); err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPut,
		Path:        "/{project_id}/tasks/{task_id}/move/{target_project_name}",
		Summary:     "Move task to another project",
		Description: "The target project is addressed by name. Epic linkage is cleared and the source project's plan entry is dropped; messages and status history move with the task.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID         int64  `path:"project_id"`
		TaskID            int64  `path:"task_id"`
		TargetProjectName string `path:"target_project_name"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		t, err := e.MoveTask(ctx, input.ProjectID, input.TaskID, input.TargetProjectName)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-message",
		Method:        http.MethodPost,
		Path:          "/{project_id}/tasks/{task_id}/messages",
		Summary:       "Add message to task",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                `path:"project_id"`
		TaskID    int64                `path:"task_id"`
		Body      CreateMessageRequest `json:"body"`
	}) (*struct {
		Body domain.Message `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		m, err := e.AddMessage(ctx, input.ProjectID, input.TaskID, input.Body.Author, input.Body.Message)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Message `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-messages",
		Method:      http.MethodGet,
		Path:        "/{project_id}/tasks/{task_id}/messages",
		Summary:     "List task messages",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		TaskID    int64 `path:"task_id"`
	}) (*struct {
		Body []domain.Message `json:"body"`
	}, error) {
		items, err := e.ListMessages(ctx, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []domain.Message{}
		}
		return &struct {
			Body []domain.Message `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-status-history",
		Method:      http.MethodGet,
		Path:        "/{project_id}/tasks/{task_id}/status-history",
		Summary:     "List task status transitions",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
		TaskID    int64 `path:"task_id"`
	}) (*struct {
		Body []domain.StatusChange `json:"body"`
	}, error) {
		items, err := e.StatusHistory(ctx, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []domain.StatusChange{}
		}
		return &struct {
			Body []domain.StatusChange `json:"body"`
		}{Body: items}, nil
	})
}
