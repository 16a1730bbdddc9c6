package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// Bulk tools pass their items through to the backend as-is; per-item
// validation happens there and comes back in the failed_items report.

var bulkTaskItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string", "description": "Task title."},
		"description": map[string]any{"type": "string"},
		"status":      map[string]any{"type": "string", "description": "To-Do, In Progress, Done, Canceled."},
		"assignee":    map[string]any{"type": "string"},
		"epic_id":     map[string]any{"type": "integer", "description": "Epic to attach the task to."},
	},
	"required": []string{"title"},
}

var bulkTaskUpdateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{"type": "integer", "description": "Task to update."},
		"update": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"status":      map[string]any{"type": "string"},
				"assignee":    map[string]any{"type": "string"},
				"epic_id":     map[string]any{"type": "integer"},
			},
		},
	},
	"required": []string{"id", "update"},
}

var bulkDecisionItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":           map[string]any{"type": "string", "description": "Decision title."},
		"context_md":      map[string]any{"type": "string"},
		"decision_md":     map[string]any{"type": "string"},
		"consequences_md": map[string]any{"type": "string"},
		"status":          map[string]any{"type": "string", "description": "Proposed, Accepted, Rejected, Superseded."},
		"task_id":         map[string]any{"type": "integer", "description": "Task this decision came out of."},
	},
	"required": []string{"title"},
}

var bulkDecisionUpdateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{"type": "integer", "description": "Decision to update."},
		"update": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":           map[string]any{"type": "string"},
				"context_md":      map[string]any{"type": "string"},
				"decision_md":     map[string]any{"type": "string"},
				"consequences_md": map[string]any{"type": "string"},
				"status":          map[string]any{"type": "string"},
				"task_id":         map[string]any{"type": "integer"},
			},
		},
	},
	"required": []string{"id", "update"},
}

// BulkCreateTasksTool handles the bulk_create_tasks MCP tool.
type BulkCreateTasksTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewBulkCreateTasksTool creates a BulkCreateTasksTool.
func NewBulkCreateTasksTool(api *alicesdk.Client, resolver *Resolver) *BulkCreateTasksTool {
	return &BulkCreateTasksTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *BulkCreateTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_create_tasks",
		mcp.WithDescription(
			"Create many tasks at once. Invalid items fail individually and "+
				"are reported in failed_items; valid items still go through.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithArray("tasks",
			mcp.Required(),
			mcp.Description("Tasks to create."),
			mcp.Items(bulkTaskItemSchema),
		),
	)
}

// Handle processes the bulk_create_tasks tool call.
func (t *BulkCreateTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var args struct {
		Tasks []map[string]any `json:"tasks"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'tasks': %v", err)), nil
	}
	if len(args.Tasks) == 0 {
		return mcp.NewToolResultError("'tasks' is required: provide at least one task"), nil
	}
	report, err := t.api.BulkCreateTasks(ctx, p.ID, args.Tasks)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(report)
}

// BulkUpdateTasksTool handles the bulk_update_tasks MCP tool.
type BulkUpdateTasksTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewBulkUpdateTasksTool creates a BulkUpdateTasksTool.
func NewBulkUpdateTasksTool(api *alicesdk.Client, resolver *Resolver) *BulkUpdateTasksTool {
	return &BulkUpdateTasksTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *BulkUpdateTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_update_tasks",
		mcp.WithDescription(
			"Update many tasks at once. Each item names a task id and the "+
				"fields to change; unknown ids fail individually.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithArray("updates",
			mcp.Required(),
			mcp.Description("Updates to apply."),
			mcp.Items(bulkTaskUpdateSchema),
		),
	)
}

// Handle processes the bulk_update_tasks tool call.
func (t *BulkUpdateTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var args struct {
		Updates []map[string]any `json:"updates"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'updates': %v", err)), nil
	}
	if len(args.Updates) == 0 {
		return mcp.NewToolResultError("'updates' is required: provide at least one update"), nil
	}
	report, err := t.api.BulkUpdateTasks(ctx, p.ID, args.Updates)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(report)
}

// BulkCreateDecisionsTool handles the bulk_create_decisions MCP tool.
type BulkCreateDecisionsTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewBulkCreateDecisionsTool creates a BulkCreateDecisionsTool.
func NewBulkCreateDecisionsTool(api *alicesdk.Client, resolver *Resolver) *BulkCreateDecisionsTool {
	return &BulkCreateDecisionsTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *BulkCreateDecisionsTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_create_decisions",
		mcp.WithDescription(
			"Record many decisions at once. Invalid items fail individually "+
				"and are reported in failed_items.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithArray("decisions",
			mcp.Required(),
			mcp.Description("Decisions to record."),
			mcp.Items(bulkDecisionItemSchema),
		),
	)
}

// Handle processes the bulk_create_decisions tool call.
func (t *BulkCreateDecisionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var args struct {
		Decisions []map[string]any `json:"decisions"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'decisions': %v", err)), nil
	}
	if len(args.Decisions) == 0 {
		return mcp.NewToolResultError("'decisions' is required: provide at least one decision"), nil
	}
	report, err := t.api.BulkCreateDecisions(ctx, p.ID, args.Decisions)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(report)
}

// BulkUpdateDecisionsTool handles the bulk_update_decisions MCP tool.
type BulkUpdateDecisionsTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewBulkUpdateDecisionsTool creates a BulkUpdateDecisionsTool.
func NewBulkUpdateDecisionsTool(api *alicesdk.Client, resolver *Resolver) *BulkUpdateDecisionsTool {
	return &BulkUpdateDecisionsTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *BulkUpdateDecisionsTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_update_decisions",
		mcp.WithDescription(
			"Update many decisions at once. Each item names a decision id "+
				"and the fields to change; unknown ids fail individually.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithArray("updates",
			mcp.Required(),
			mcp.Description("Updates to apply."),
			mcp.Items(bulkDecisionUpdateSchema),
		),
	)
}

// Handle processes the bulk_update_decisions tool call.
func (t *BulkUpdateDecisionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var args struct {
		Updates []map[string]any `json:"updates"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'updates': %v", err)), nil
	}
	if len(args.Updates) == 0 {
		return mcp.NewToolResultError("'updates' is required: provide at least one update"), nil
	}
	report, err := t.api.BulkUpdateDecisions(ctx, p.ID, args.Updates)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(report)
}
