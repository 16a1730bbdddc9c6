package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// GetPlanTool handles the get_priority_plan MCP tool.
type GetPlanTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewGetPlanTool creates a GetPlanTool.
func NewGetPlanTool(api *alicesdk.Client, resolver *Resolver) *GetPlanTool {
	return &GetPlanTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *GetPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("get_priority_plan",
		mcp.WithDescription(
			"Get the project's priority plan: the ordered list of tasks to "+
				"work on, each with its position and rationale.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
	)
}

// Handle processes the get_priority_plan tool call.
func (t *GetPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := t.api.GetPlan(ctx, p.ID)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// SetPlanTool handles the set_priority_plan MCP tool.
type SetPlanTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewSetPlanTool creates a SetPlanTool.
func NewSetPlanTool(api *alicesdk.Client, resolver *Resolver) *SetPlanTool {
	return &SetPlanTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *SetPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("set_priority_plan",
		mcp.WithDescription(
			"Replace the project's priority plan atomically. Entries are "+
				"ranked by their order in the list. Every task_id must exist "+
				"in the project and appear at most once; otherwise nothing "+
				"changes. Pass an empty list to clear the plan.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithArray("entries",
			mcp.Required(),
			mcp.Description("Ordered plan entries, most important first."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id":   map[string]any{"type": "integer", "description": "Task to plan."},
					"rationale": map[string]any{"type": "string", "description": "Why the task sits at this position."},
				},
				"required": []string{"task_id"},
			}),
		),
	)
}

// Handle processes the set_priority_plan tool call.
func (t *SetPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var args struct {
		Entries []alicesdk.PlanEntry `json:"entries"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'entries': %v", err)), nil
	}
	items, err := t.api.ReplacePlan(ctx, p.ID, args.Entries)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// NextTaskTool handles the next_task MCP tool.
type NextTaskTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewNextTaskTool creates a NextTaskTool.
func NewNextTaskTool(api *alicesdk.Client, resolver *Resolver) *NextTaskTool {
	return &NextTaskTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *NextTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("next_task",
		mcp.WithDescription(
			"Get the next actionable task from the priority plan: the first "+
				"entry whose task is neither Done nor Canceled. Errors when "+
				"the plan is empty or exhausted.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
	)
}

// Handle processes the next_task tool call.
func (t *NextTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := t.api.NextTask(ctx, p.ID)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(task)
}
