package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"alice/internal/domain"
	"alice/internal/engine"
)

func registerPlan(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-priority-plan",
		Method:      http.MethodGet,
		Path:        "/{project_id}/priority-plan",
		Summary:     "Get the priority plan",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
	}) (*struct {
		Body []engine.PlanItem `json:"body"`
	}, error) {
		items, err := e.GetPlan(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []engine.PlanItem{}
		}
		return &struct {
			Body []engine.PlanItem `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-priority-plan",
		Method:      http.MethodPut,
		Path:        "/{project_id}/priority-plan",
		Summary:     "Replace the priority plan",
		Description: "Replaces the whole plan atomically. Positions follow the order of the submitted entries.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		ProjectID int64              `path:"project_id"`
		Body      []PlanEntryRequest `json:"body"`
	}) (*struct {
		Body []engine.PlanItem `json:"body"`
	}, error) {
		updates := make([]engine.PlanUpdate, 0, len(input.Body))
		for _, entry := range input.Body {
			updates = append(updates, engine.PlanUpdate{
				TaskID:    entry.TaskID,
				Rationale: entry.Rationale,
			})
		}
		items, err := e.ReplacePlan(ctx, input.ProjectID, updates)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		if items == nil {
			items = []engine.PlanItem{}
		}
		return &struct {
			Body []engine.PlanItem `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "next-planned-task",
		Method:      http.MethodGet,
		Path:        "/{project_id}/priority-plan/next-task",
		Summary:     "Get the next actionable planned task",
		Description: "Returns the first plan entry whose task is neither done nor canceled.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID int64 `path:"project_id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		t, err := e.NextTask(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: t}, nil
	})
}
