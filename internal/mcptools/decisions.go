package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// RecordDecisionTool handles the record_decision MCP tool.
type RecordDecisionTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewRecordDecisionTool creates a RecordDecisionTool.
func NewRecordDecisionTool(api *alicesdk.Client, resolver *Resolver) *RecordDecisionTool {
	return &RecordDecisionTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *RecordDecisionTool) Definition() mcp.Tool {
	return mcp.NewTool("record_decision",
		mcp.WithDescription(
			"Record an architectural or product decision for a project, "+
				"optionally linked to a task. Context, decision, and "+
				"consequences are markdown.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short decision title. Example: 'Use SQLite for local storage'"),
		),
		mcp.WithString("context_md",
			mcp.Description("Problem context: what situation required a decision."),
		),
		mcp.WithString("decision_md",
			mcp.Description("What was decided."),
		),
		mcp.WithString("consequences_md",
			mcp.Description("What follows from the decision, good and bad."),
		),
		mcp.WithString("status",
			mcp.Description("Decision status: Proposed (default), Accepted, Rejected, Superseded."),
		),
		mcp.WithNumber("task_id",
			mcp.Description("Task this decision came out of, if any."),
		),
	)
}

// Handle processes the record_decision tool call.
func (t *RecordDecisionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required: provide a short decision title"), nil
	}
	fields := map[string]any{"title": title}
	optString(fields, "context_md", req.GetString("context_md", ""))
	optString(fields, "decision_md", req.GetString("decision_md", ""))
	optString(fields, "consequences_md", req.GetString("consequences_md", ""))
	optString(fields, "status", req.GetString("status", ""))
	if taskID := req.GetInt("task_id", 0); taskID > 0 {
		fields["task_id"] = taskID
	}
	d, err := t.api.CreateDecision(ctx, p.ID, fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(d)
}

// ListDecisionsTool handles the list_decisions MCP tool.
type ListDecisionsTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewListDecisionsTool creates a ListDecisionsTool.
func NewListDecisionsTool(api *alicesdk.Client, resolver *Resolver) *ListDecisionsTool {
	return &ListDecisionsTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *ListDecisionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_decisions",
		mcp.WithDescription("List a project's decisions, optionally filtered by status."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("status",
			mcp.Description("Only decisions with this status: Proposed, Accepted, Rejected, Superseded."),
		),
		mcp.WithNumber("skip",
			mcp.Description("Number of decisions to skip for pagination."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of decisions to return."),
		),
	)
}

// Handle processes the list_decisions tool call.
func (t *ListDecisionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := t.api.ListDecisions(ctx, p.ID, req.GetString("status", ""), req.GetInt("skip", 0), req.GetInt("limit", 0))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// GetDecisionTool handles the get_decision MCP tool.
type GetDecisionTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewGetDecisionTool creates a GetDecisionTool.
func NewGetDecisionTool(api *alicesdk.Client, resolver *Resolver) *GetDecisionTool {
	return &GetDecisionTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *GetDecisionTool) Definition() mcp.Tool {
	return mcp.NewTool("get_decision",
		mcp.WithDescription("Fetch one decision by id."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("decision_id",
			mcp.Required(),
			mcp.Description("Numeric decision id."),
		),
	)
}

// Handle processes the get_decision tool call.
func (t *GetDecisionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := t.api.GetDecision(ctx, p.ID, int64(req.GetInt("decision_id", 0)))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(d)
}

// UpdateDecisionTool handles the update_decision MCP tool.
type UpdateDecisionTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewUpdateDecisionTool creates an UpdateDecisionTool.
func NewUpdateDecisionTool(api *alicesdk.Client, resolver *Resolver) *UpdateDecisionTool {
	return &UpdateDecisionTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateDecisionTool) Definition() mcp.Tool {
	return mcp.NewTool("update_decision",
		mcp.WithDescription(
			"Update a decision. Typical use: flip status from Proposed to "+
				"Accepted, or mark an old decision Superseded.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("decision_id",
			mcp.Required(),
			mcp.Description("Numeric decision id."),
		),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("context_md",
			mcp.Description("New context markdown."),
		),
		mcp.WithString("decision_md",
			mcp.Description("New decision markdown."),
		),
		mcp.WithString("consequences_md",
			mcp.Description("New consequences markdown."),
		),
		mcp.WithString("status",
			mcp.Description("New status: Proposed, Accepted, Rejected, Superseded."),
		),
		mcp.WithNumber("task_id",
			mcp.Description("Task to link the decision to."),
		),
	)
}

// Handle processes the update_decision tool call.
func (t *UpdateDecisionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := map[string]any{}
	optString(fields, "title", req.GetString("title", ""))
	optString(fields, "context_md", req.GetString("context_md", ""))
	optString(fields, "decision_md", req.GetString("decision_md", ""))
	optString(fields, "consequences_md", req.GetString("consequences_md", ""))
	optString(fields, "status", req.GetString("status", ""))
	if taskID := req.GetInt("task_id", 0); taskID > 0 {
		fields["task_id"] = taskID
	}
	if len(fields) == 0 {
		return mcp.NewToolResultError("nothing to update: provide at least one field"), nil
	}
	d, err := t.api.UpdateDecision(ctx, p.ID, int64(req.GetInt("decision_id", 0)), fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(d)
}
