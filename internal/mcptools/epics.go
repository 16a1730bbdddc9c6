package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// CreateEpicTool handles the create_epic MCP tool.
type CreateEpicTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewCreateEpicTool creates a CreateEpicTool.
func NewCreateEpicTool(api *alicesdk.Client, resolver *Resolver) *CreateEpicTool {
	return &CreateEpicTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("create_epic",
		mcp.WithDescription("Create an epic (a grouping of related tasks) in a project."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Epic title."),
		),
		mcp.WithString("description",
			mcp.Description("What the epic covers."),
		),
		mcp.WithString("status",
			mcp.Description("Initial status: To-Do (default), In Progress, Done, Canceled."),
		),
		mcp.WithString("assignee",
			mcp.Description("Who owns the epic."),
		),
	)
}

// Handle processes the create_epic tool call.
func (t *CreateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required: provide an epic title"), nil
	}
	fields := map[string]any{"title": title}
	optString(fields, "description", req.GetString("description", ""))
	optString(fields, "status", req.GetString("status", ""))
	optString(fields, "assignee", req.GetString("assignee", ""))
	ep, err := t.api.CreateEpic(ctx, p.ID, fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(ep)
}

// ListEpicsTool handles the list_epics MCP tool.
type ListEpicsTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewListEpicsTool creates a ListEpicsTool.
func NewListEpicsTool(api *alicesdk.Client, resolver *Resolver) *ListEpicsTool {
	return &ListEpicsTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *ListEpicsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_epics",
		mcp.WithDescription("List a project's epics, optionally filtered."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("status",
			mcp.Description("Only epics with this status."),
		),
		mcp.WithString("assignee",
			mcp.Description("Only epics assigned to this person."),
		),
		mcp.WithString("created_after",
			mcp.Description("Only epics created at or after this RFC 3339 timestamp."),
		),
		mcp.WithString("created_before",
			mcp.Description("Only epics created before this RFC 3339 timestamp."),
		),
		mcp.WithNumber("skip",
			mcp.Description("Number of epics to skip for pagination."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of epics to return."),
		),
	)
}

// Handle processes the list_epics tool call.
func (t *ListEpicsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := t.api.ListEpics(ctx, p.ID, alicesdk.ListFilters{
		Status:        req.GetString("status", ""),
		Assignee:      req.GetString("assignee", ""),
		CreatedAfter:  req.GetString("created_after", ""),
		CreatedBefore: req.GetString("created_before", ""),
		Skip:          req.GetInt("skip", 0),
		Limit:         req.GetInt("limit", 0),
	})
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// GetEpicTool handles the get_epic MCP tool.
type GetEpicTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewGetEpicTool creates a GetEpicTool.
func NewGetEpicTool(api *alicesdk.Client, resolver *Resolver) *GetEpicTool {
	return &GetEpicTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *GetEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("get_epic",
		mcp.WithDescription("Fetch one epic by id."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
	)
}

// Handle processes the get_epic tool call.
func (t *GetEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ep, err := t.api.GetEpic(ctx, p.ID, int64(req.GetInt("epic_id", 0)))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(ep)
}

// UpdateEpicTool handles the update_epic MCP tool.
type UpdateEpicTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewUpdateEpicTool creates an UpdateEpicTool.
func NewUpdateEpicTool(api *alicesdk.Client, resolver *Resolver) *UpdateEpicTool {
	return &UpdateEpicTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("update_epic",
		mcp.WithDescription("Update an epic's title, description, status, or assignee."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
		mcp.WithString("status",
			mcp.Description("New status: To-Do, In Progress, Done, Canceled."),
		),
		mcp.WithString("assignee",
			mcp.Description("New assignee."),
		),
	)
}

// Handle processes the update_epic tool call.
func (t *UpdateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := map[string]any{}
	optString(fields, "title", req.GetString("title", ""))
	optString(fields, "description", req.GetString("description", ""))
	optString(fields, "status", req.GetString("status", ""))
	optString(fields, "assignee", req.GetString("assignee", ""))
	if len(fields) == 0 {
		return mcp.NewToolResultError("nothing to update: provide at least one field"), nil
	}
	ep, err := t.api.UpdateEpic(ctx, p.ID, int64(req.GetInt("epic_id", 0)), fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(ep)
}

// DeleteEpicTool handles the delete_epic MCP tool.
type DeleteEpicTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewDeleteEpicTool creates a DeleteEpicTool.
func NewDeleteEpicTool(api *alicesdk.Client, resolver *Resolver) *DeleteEpicTool {
	return &DeleteEpicTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_epic",
		mcp.WithDescription(
			"Delete an epic. Its tasks are kept and detached, not deleted.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
	)
}

// Handle processes the delete_epic tool call.
func (t *DeleteEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epicID := int64(req.GetInt("epic_id", 0))
	if err := t.api.DeleteEpic(ctx, p.ID, epicID); err != nil {
		return backendError(err)
	}
	return jsonResult(map[string]any{"deleted": true, "epic_id": epicID})
}

// EpicTasksTool handles the list_epic_tasks MCP tool.
type EpicTasksTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewEpicTasksTool creates an EpicTasksTool.
func NewEpicTasksTool(api *alicesdk.Client, resolver *Resolver) *EpicTasksTool {
	return &EpicTasksTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *EpicTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_epic_tasks",
		mcp.WithDescription("List the tasks attached to an epic."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
	)
}

// Handle processes the list_epic_tasks tool call.
func (t *EpicTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := t.api.ListEpicTasks(ctx, p.ID, int64(req.GetInt("epic_id", 0)))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}
