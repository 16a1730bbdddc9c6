package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewCreateTaskTool creates a CreateTaskTool.
func NewCreateTaskTool(api *alicesdk.Client, resolver *Resolver) *CreateTaskTool {
	return &CreateTaskTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Create a task in a project, optionally under an epic."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title."),
		),
		mcp.WithString("description",
			mcp.Description("What the task involves."),
		),
		mcp.WithString("status",
			mcp.Description("Initial status: To-Do (default), In Progress, Done, Canceled."),
		),
		mcp.WithString("assignee",
			mcp.Description("Who the task is assigned to."),
		),
		mcp.WithNumber("epic_id",
			mcp.Description("Epic to attach the task to. Must belong to the same project."),
		),
	)
}

// Handle processes the create_task tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required: provide a task title"), nil
	}
	fields := map[string]any{"title": title}
	optString(fields, "description", req.GetString("description", ""))
	optString(fields, "status", req.GetString("status", ""))
	optString(fields, "assignee", req.GetString("assignee", ""))
	if epicID := req.GetInt("epic_id", 0); epicID > 0 {
		fields["epic_id"] = epicID
	}
	task, err := t.api.CreateTask(ctx, p.ID, fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(task)
}

// ListTasksTool handles the list_tasks MCP tool.
type ListTasksTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewListTasksTool creates a ListTasksTool.
func NewListTasksTool(api *alicesdk.Client, resolver *Resolver) *ListTasksTool {
	return &ListTasksTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription(
			"List a project's tasks, optionally filtered. Set include_details "+
				"to embed each task's messages and status history.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("status",
			mcp.Description("Only tasks with this status."),
		),
		mcp.WithString("assignee",
			mcp.Description("Only tasks assigned to this person."),
		),
		mcp.WithNumber("epic_id",
			mcp.Description("Only tasks in this epic."),
		),
		mcp.WithString("created_after",
			mcp.Description("Only tasks created at or after this RFC 3339 timestamp."),
		),
		mcp.WithString("created_before",
			mcp.Description("Only tasks created before this RFC 3339 timestamp."),
		),
		mcp.WithNumber("skip",
			mcp.Description("Number of tasks to skip for pagination."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return."),
		),
		mcp.WithBoolean("include_details",
			mcp.Description("Embed messages and status history per task."),
		),
	)
}

// Handle processes the list_tasks tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := alicesdk.ListFilters{
		Status:        req.GetString("status", ""),
		Assignee:      req.GetString("assignee", ""),
		CreatedAfter:  req.GetString("created_after", ""),
		CreatedBefore: req.GetString("created_before", ""),
		Skip:          req.GetInt("skip", 0),
		Limit:         req.GetInt("limit", 0),
	}
	if epicID := req.GetInt("epic_id", 0); epicID > 0 {
		id := int64(epicID)
		f.EpicID = &id
	}
	items, err := t.api.ListTasks(ctx, p.ID, f, req.GetBool("include_details", false))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// GetTaskTool handles the get_task MCP tool.
type GetTaskTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewGetTaskTool creates a GetTaskTool.
func NewGetTaskTool(api *alicesdk.Client, resolver *Resolver) *GetTaskTool {
	return &GetTaskTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Fetch one task by id."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
		),
	)
}

// Handle processes the get_task tool call.
func (t *GetTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := t.api.GetTask(ctx, p.ID, int64(req.GetInt("task_id", 0)))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(task)
}

// UpdateTaskTool handles the update_task MCP tool.
type UpdateTaskTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewUpdateTaskTool creates an UpdateTaskTool.
func NewUpdateTaskTool(api *alicesdk.Client, resolver *Resolver) *UpdateTaskTool {
	return &UpdateTaskTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription(
			"Update a task. Omitted fields are left unchanged. Status changes "+
				"are recorded in the task's status history. Set detach_epic to "+
				"remove the task from its epic.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
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
		mcp.WithNumber("epic_id",
			mcp.Description("Move the task into this epic."),
		),
		mcp.WithBoolean("detach_epic",
			mcp.Description("Remove the task from its current epic."),
		),
	)
}

// Handle processes the update_task tool call.
func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := map[string]any{}
	optString(fields, "title", req.GetString("title", ""))
	optString(fields, "description", req.GetString("description", ""))
	optString(fields, "status", req.GetString("status", ""))
	optString(fields, "assignee", req.GetString("assignee", ""))
	if req.GetBool("detach_epic", false) {
		fields["epic_id"] = nil
	} else if epicID := req.GetInt("epic_id", 0); epicID > 0 {
		fields["epic_id"] = epicID
	}
	if len(fields) == 0 {
		return mcp.NewToolResultError("nothing to update: provide at least one field"), nil
	}
	task, err := t.api.UpdateTask(ctx, p.ID, int64(req.GetInt("task_id", 0)), fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(task)
}

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewDeleteTaskTool creates a DeleteTaskTool.
func NewDeleteTaskTool(api *alicesdk.Client, resolver *Resolver) *DeleteTaskTool {
	return &DeleteTaskTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription(
			"Delete a task along with its messages and status history.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
		),
	)
}

// Handle processes the delete_task tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID := int64(req.GetInt("task_id", 0))
	if err := t.api.DeleteTask(ctx, p.ID, taskID); err != nil {
		return backendError(err)
	}
	return jsonResult(map[string]any{"deleted": true, "task_id": taskID})
}

// MoveTaskTool handles the move_task MCP tool.
type MoveTaskTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewMoveTaskTool creates a MoveTaskTool.
func NewMoveTaskTool(api *alicesdk.Client, resolver *Resolver) *MoveTaskTool {
	return &MoveTaskTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *MoveTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("move_task",
		mcp.WithDescription(
			"Move a task into another project. The task's messages and status "+
				"history move with it; its epic linkage and priority-plan entry "+
				"are cleared because both are project-scoped.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Name of the project the task currently belongs to."),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
		),
		mcp.WithString("target_project",
			mcp.Required(),
			mcp.Description("Name of the project to move the task into."),
		),
	)
}

// Handle processes the move_task tool call.
func (t *MoveTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target := req.GetString("target_project", "")
	if strings.TrimSpace(target) == "" {
		return mcp.NewToolResultError("'target_project' is required: name the destination project"), nil
	}
	task, err := t.api.MoveTask(ctx, p.ID, int64(req.GetInt("task_id", 0)), target)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(task)
}
