package mcptools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// CreateProjectTool handles the create_project MCP tool.
type CreateProjectTool struct {
	api *alicesdk.Client
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(api *alicesdk.Client) *CreateProjectTool {
	return &CreateProjectTool{api: api}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription(
			"Create a new project. The name must be unique; it is how every "+
				"other tool addresses the project.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Unique project name. Example: 'billing-service'"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about."),
		),
		mcp.WithString("path",
			mcp.Description("Local filesystem path of the project's codebase, if any."),
		),
	)
}

// Handle processes the create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'name' is required: provide a unique project name"), nil
	}
	p, err := t.api.CreateProject(ctx, name, req.GetString("description", ""), req.GetString("path", ""))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(p)
}

// ListProjectsTool handles the list_projects MCP tool.
type ListProjectsTool struct {
	api *alicesdk.Client
}

// NewListProjectsTool creates a ListProjectsTool.
func NewListProjectsTool(api *alicesdk.Client) *ListProjectsTool {
	return &ListProjectsTool{api: api}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects (id and name)."),
		mcp.WithNumber("skip",
			mcp.Description("Number of projects to skip for pagination."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of projects to return."),
		),
	)
}

// Handle processes the list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := t.api.ListProjects(ctx, req.GetInt("skip", 0), req.GetInt("limit", 0))
	if err != nil {
		return backendError(err)
	}
	return jsonResult(items)
}

// GetProjectTool handles the get_project MCP tool.
type GetProjectTool struct {
	resolver *Resolver
}

// NewGetProjectTool creates a GetProjectTool.
func NewGetProjectTool(resolver *Resolver) *GetProjectTool {
	return &GetProjectTool{resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *GetProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project",
		mcp.WithDescription("Fetch a project's full record by name."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name."),
		),
	)
}

// Handle processes the get_project tool call.
func (t *GetProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

// UpdateProjectTool handles the update_project MCP tool.
type UpdateProjectTool struct {
	api      *alicesdk.Client
	resolver *Resolver
}

// NewUpdateProjectTool creates an UpdateProjectTool.
func NewUpdateProjectTool(api *alicesdk.Client, resolver *Resolver) *UpdateProjectTool {
	return &UpdateProjectTool{api: api, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("update_project",
		mcp.WithDescription(
			"Update a project's name, description, or path. Omitted fields "+
				"are left unchanged.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Current project name."),
		),
		mcp.WithString("name",
			mcp.Description("New unique name for the project."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
		mcp.WithString("path",
			mcp.Description("New filesystem path."),
		),
	)
}

// Handle processes the update_project tool call.
func (t *UpdateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.resolver.Resolve(ctx, req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := map[string]any{}
	optString(fields, "name", req.GetString("name", ""))
	optString(fields, "description", req.GetString("description", ""))
	optString(fields, "path", req.GetString("path", ""))
	if len(fields) == 0 {
		return mcp.NewToolResultError("nothing to update: provide at least one of name, description, path"), nil
	}
	updated, err := t.api.UpdateProject(ctx, p.ID, fields)
	if err != nil {
		return backendError(err)
	}
	return jsonResult(updated)
}
