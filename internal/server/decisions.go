package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/repo"
)

func registerDecisions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-decision",
		Method:        http.MethodPost,
		Path:          "/{project_id}/decisions",
		Summary:       "Record decision",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64                 `path:"project_id"`
		Body      CreateDecisionRequest `json:"body"`
	}) (*struct {
		Body domain.Decision `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		d, err := e.CreateDecision(ctx, engine.DecisionCreateOptions{
			ProjectID:      input.ProjectID,
			TaskID:         input.Body.TaskID,
			Title:          input.Body.Title,
			ContextMD:      input.Body.ContextMD,
			DecisionMD:     input.Body.DecisionMD,
			ConsequencesMD: input.Body.ConsequencesMD,
			Status:         input.Body.Status,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Decision `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-decisions",
		Method:      http.MethodGet,
		Path:        "/{project_id}/decisions",
		Summary:     "List decisions",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64  `path:"project_id"`
		Status    string `query:"status"`
		Skip      int    `query:"skip" default:"0" minimum:"0"`
		Limit     int    `query:"limit" default:"100" minimum:"1"`
	}) (*struct {
		Body []domain.Decision `json:"body"`
	}, error) {
		items, err := e.ListDecisions(ctx, repo.DecisionFilters{
			ProjectID: input.ProjectID,
			Status:    input.Status,
			Skip:      input.Skip,
			Limit:     input.Limit,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []domain.Decision{}
		}
		return &struct {
			Body []domain.Decision `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-decision",
		Method:      http.MethodGet,
		Path:        "/{project_id}/decisions/{decision_id}",
		Summary:     "Get decision",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID  int64 `path:"project_id"`
		DecisionID int64 `path:"decision_id"`
	}) (*struct {
		Body domain.Decision `json:"body"`
	}, error) {
		d, err := e.GetDecision(ctx, input.ProjectID, input.DecisionID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Decision `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-decision",
		Method:      http.MethodPut,
		Path:        "/{project_id}/decisions/{decision_id}",
		Summary:     "Update decision",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID  int64                 `path:"project_id"`
		DecisionID int64                 `path:"decision_id"`
		Body       UpdateDecisionRequest `json:"body"`
	}) (*struct {
		Body domain.Decision `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "body required", nil)
		}
		d, err := e.UpdateDecision(ctx, engine.DecisionUpdateOptions{
			ProjectID:      input.ProjectID,
			ID:             input.DecisionID,
			TaskID:         input.Body.TaskID,
			Title:          input.Body.Title,
			ContextMD:      input.Body.ContextMD,
			DecisionMD:     input.Body.DecisionMD,
			ConsequencesMD: input.Body.ConsequencesMD,
			Status:         input.Body.Status,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Decision `json:"body"`
		}{Body: d}, nil
	})
}
