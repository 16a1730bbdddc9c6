package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"alice/internal/engine"
)

func registerBulk(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "bulk-create-tasks",
		Method:        http.MethodPost,
		Path:          "/{project_id}/tasks/bulk",
		Summary:       "Create tasks in bulk",
		Description:   "Runs in a single transaction. Invalid items fail individually and are reported without blocking the rest of the batch.",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                 `path:"project_id"`
		Body      BulkTaskCreateRequest `json:"body"`
	}) (*struct {
		Body engine.BulkTaskReport `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		items := make([]engine.BulkTaskItem, 0, len(input.Body.Tasks))
		for _, t := range input.Body.Tasks {
			items = append(items, engine.BulkTaskItem{
				Title:       t.Title,
				Description: t.Description,
				Status:      t.Status,
				Assignee:    t.Assignee,
				EpicID:      t.EpicID,
			})
		}
		report, err := e.BulkCreateTasks(ctx, input.ProjectID, items)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body engine.BulkTaskReport `json:"body"`
		}{Body: report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "bulk-update-tasks",
		Method:      http.MethodPut,
		Path:        "/{project_id}/tasks/bulk",
		Summary:     "Update tasks in bulk",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                 `path:"project_id"`
		Body      BulkTaskUpdateRequest `json:"body"`
	}) (*struct {
		Body engine.BulkTaskReport `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		updates := make([]engine.BulkTaskUpdate, 0, len(input.Body.Updates))
		for _, u := range input.Body.Updates {
			updates = append(updates, engine.BulkTaskUpdate{
				ID:          u.ID,
				Title:       u.Update.Title,
				Description: u.Update.Description,
				Status:      u.Update.Status,
				Assignee:    u.Update.Assignee,
				EpicID:      u.Update.EpicID,
			})
		}
		report, err := e.BulkUpdateTasks(ctx, input.ProjectID, updates)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body engine.BulkTaskReport `json:"body"`
		}{Body: report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "bulk-create-decisions",
		Method:        http.MethodPost,
		Path:          "/{project_id}/decisions/bulk",
		Summary:       "Record decisions in bulk",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                     `path:"project_id"`
		Body      BulkDecisionCreateRequest `json:"body"`
	}) (*struct {
		Body engine.BulkDecisionReport `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		items := make([]engine.BulkDecisionItem, 0, len(input.Body.Decisions))
		for _, d := range input.Body.Decisions {
			items = append(items, engine.BulkDecisionItem{
				TaskID:         d.TaskID,
				Title:          d.Title,
				ContextMD:      d.ContextMD,
				DecisionMD:     d.DecisionMD,
				ConsequencesMD: d.ConsequencesMD,
				Status:         d.Status,
			})
		}
		report, err := e.BulkCreateDecisions(ctx, input.ProjectID, items)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body engine.BulkDecisionReport `json:"body"`
		}{Body: report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "bulk-update-decisions",
		Method:      http.MethodPut,
		Path:        "/{project_id}/decisions/bulk",
		Summary:     "Update decisions in bulk",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                     `path:"project_id"`
		Body      BulkDecisionUpdateRequest `json:"body"`
	}) (*struct {
		Body engine.BulkDecisionReport `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		updates := make([]engine.BulkDecisionUpdate, 0, len(input.Body.Updates))
		for _, u := range input.Body.Updates {
			updates = append(updates, engine.BulkDecisionUpdate{
				ID:             u.ID,
				TaskID:         u.Update.TaskID,
				Title:          u.Update.Title,
				ContextMD:      u.Update.ContextMD,
				DecisionMD:     u.Update.DecisionMD,
				ConsequencesMD: u.Update.ConsequencesMD,
				Status:         u.Update.Status,
			})
		}
		report, err := e.BulkUpdateDecisions(ctx, input.ProjectID, updates)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body engine.BulkDecisionReport `json:"body"`
		}{Body: report}, nil
	})
}
