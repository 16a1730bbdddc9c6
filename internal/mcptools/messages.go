package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// AddMessageTool handles the add_task_message MCP tool.
type AddMessageTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewAddMessageTool creates an AddMessageTool.
func NewAddMessageTool(api *alicesdk.Client, resolver *Resolver) *AddMessageTool {
	return &AddMessageTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *AddMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("add_task_message",
		mcp.WithDescription(
			"Append a discussion message to a task. Use this to record "+
				"progress notes, findings, or handoff context.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
		),
		mcp.WithString("author",
			mcp.Required(),
			mcp.Description("Who is writing the message."),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message text."),
		),
	)
}

// Handle processes the add_task_message tool call.
func (t *AddMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	author := req.GetString("author", "")
	message := req.GetString("message", "")
	if strings.TrimSpace(author) == "" {
		return mcp.NewToolResultError("'author' is required"), nil
	}
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("'message' is required"), nil
	}
	m, err := t.api.AddMessage(ctx, p.ID, int64(req.GetInt("task_id", 0)), author, message)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(m)
}

// ListMessagesTool handles the list_task_messages MCP tool.
type ListMessagesTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewListMessagesTool creates a ListMessagesTool.
func NewListMessagesTool(api *alicesdk.Client, resolver *Resolver) *ListMessagesTool {
	return &ListMessagesTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *ListMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_task_messages",
		mcp.WithDescription("List a task's messages in chronological order."),
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

// Handle processes the list_task_messages tool call.
func (t *ListMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := t.api.ListMessages(ctx, p.ID, int64(req.GetInt("task_id", 0)))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// StatusHistoryTool handles the task_status_history MCP tool.
type StatusHistoryTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewStatusHistoryTool creates a StatusHistoryTool.
func NewStatusHistoryTool(api *alicesdk.Client, resolver *Resolver) *StatusHistoryTool {
	return &StatusHistoryTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("task_status_history",
		mcp.WithDescription("List a task's status transitions, oldest first."),
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

// Handle processes the task_status_history tool call.
func (t *StatusHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := t.api.StatusHistory(ctx, p.ID, int64(req.GetInt("task_id", 0)))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}
