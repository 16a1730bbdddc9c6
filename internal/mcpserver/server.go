// Package mcpserver wires the MCP tools and creates the server instance.
//
// This is the composition root: it builds the backend API client, the
// project name resolver, and every tool, then registers them on the
// MCP server. No business logic lives here.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"alice/internal/mcptools"
	alicesdk "alice/sdk/go"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every task-tracking tool registered,
// talking to the HTTP backend at backendURL.
func New(backendURL string) *server.MCPServer {
	api := alicesdk.New(backendURL)
	resolver := mcptools.NewResolver(api)

	s := server.NewMCPServer(
		"alice",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// Projects.
	createProject := mcptools.NewCreateProjectTool(api)
	s.AddTool(createProject.Definition(), createProject.Handle)

	listProjects := mcptools.NewListProjectsTool(api)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	getProject := mcptools.NewGetProjectTool(resolver)
	s.AddTool(getProject.Definition(), getProject.Handle)

	updateProject := mcptools.NewUpdateProjectTool(api, resolver)
	s.AddTool(updateProject.Definition(), updateProject.Handle)

	// Epics.
	createEpic := mcptools.NewCreateEpicTool(api, resolver)
	s.AddTool(createEpic.Definition(), createEpic.Handle)

	listEpics := mcptools.NewListEpicsTool(api, resolver)
	s.AddTool(listEpics.Definition(), listEpics.Handle)

	getEpic := mcptools.NewGetEpicTool(api, resolver)
	s.AddTool(getEpic.Definition(), getEpic.Handle)

	updateEpic := mcptools.NewUpdateEpicTool(api, resolver)
	s.AddTool(updateEpic.Definition(), updateEpic.Handle)

	deleteEpic := mcptools.NewDeleteEpicTool(api, resolver)
	s.AddTool(deleteEpic.Definition(), deleteEpic.Handle)

	epicTasks := mcptools.NewEpicTasksTool(api, resolver)
	s.AddTool(epicTasks.Definition(), epicTasks.Handle)

	// Tasks.
	createTask := mcptools.NewCreateTaskTool(api, resolver)
	s.AddTool(createTask.Definition(), createTask.Handle)

	listTasks := mcptools.NewListTasksTool(api, resolver)
	s.AddTool(listTasks.Definition(), listTasks.Handle)

	getTask := mcptools.NewGetTaskTool(api, resolver)
	s.AddTool(getTask.Definition(), getTask.Handle)

	updateTask := mcptools.NewUpdateTaskTool(api, resolver)
	s.AddTool(updateTask.Definition(), updateTask.Handle)

	deleteTask := mcptools.NewDeleteTaskTool(api, resolver)
	s.AddTool(deleteTask.Definition(), deleteTask.Handle)

	moveTask := mcptools.NewMoveTaskTool(api, resolver)
	s.AddTool(moveTask.Definition(), moveTask.Handle)

	// Messages and history.
	addMessage := mcptools.NewAddMessageTool(api, resolver)
	s.AddTool(addMessage.Definition(), addMessage.Handle)

	listMessages := mcptools.NewListMessagesTool(api, resolver)
	s.AddTool(listMessages.Definition(), listMessages.Handle)

	statusHistory := mcptools.NewStatusHistoryTool(api, resolver)
	s.AddTool(statusHistory.Definition(), statusHistory.Handle)

	// Decisions.
	recordDecision := mcptools.NewRecordDecisionTool(api, resolver)
	s.AddTool(recordDecision.Definition(), recordDecision.Handle)

	listDecisions := mcptools.NewListDecisionsTool(api, resolver)
	s.AddTool(listDecisions.Definition(), listDecisions.Handle)

	getDecision := mcptools.NewGetDecisionTool(api, resolver)
	s.AddTool(getDecision.Definition(), getDecision.Handle)

	updateDecision := mcptools.NewUpdateDecisionTool(api, resolver)
	s.AddTool(updateDecision.Definition(), updateDecision.Handle)

	// Priority plan.
	getPlan := mcptools.NewGetPlanTool(api, resolver)
	s.AddTool(getPlan.Definition(), getPlan.Handle)

	setPlan := mcptools.NewSetPlanTool(api, resolver)
	s.AddTool(setPlan.Definition(), setPlan.Handle)

	nextTask := mcptools.NewNextTaskTool(api, resolver)
	s.AddTool(nextTask.Definition(), nextTask.Handle)

	// Bulk operations.
	bulkCreateTasks := mcptools.NewBulkCreateTasksTool(api, resolver)
	s.AddTool(bulkCreateTasks.Definition(), bulkCreateTasks.Handle)

	bulkUpdateTasks := mcptools.NewBulkUpdateTasksTool(api, resolver)
	s.AddTool(bulkUpdateTasks.Definition(), bulkUpdateTasks.Handle)

	bulkCreateDecisions := mcptools.NewBulkCreateDecisionsTool(api, resolver)
	s.AddTool(bulkCreateDecisions.Definition(), bulkCreateDecisions.Handle)

	bulkUpdateDecisions := mcptools.NewBulkUpdateDecisionsTool(api, resolver)
	s.AddTool(bulkUpdateDecisions.Definition(), bulkUpdateDecisions.Handle)

	return s
}

// serverInstructions tells the AI how to use the tracker effectively.
func serverInstructions() string {
	return `You have access to Alice, a local task tracker for projects, epics,
tasks, decisions, and a priority plan.

## Addressing
Every tool takes a project NAME, not a numeric id. Names are unique and
resolved fresh on every call, so renames take effect immediately. If a
tool reports "project not found", list_projects shows what exists.

## Typical workflow
1. create_project (or get_project to check it exists)
2. create_epic for each larger theme of work
3. create_task / bulk_create_tasks for the actual work items
4. set_priority_plan to rank the tasks, most important first
5. next_task to find what to work on; update_task to record progress
6. add_task_message to leave notes; record_decision for choices made

## Statuses
Tasks and epics: To-Do, In Progress, Done, Canceled.
Decisions: Proposed, Accepted, Rejected, Superseded.

## Priority plan
set_priority_plan replaces the whole plan atomically - submit the full
ordered list each time. next_task walks the plan and returns the first
task that is neither Done nor Canceled; finish or cancel tasks via
update_task to advance it.

## Bulk operations
bulk_create_tasks and friends validate items individually: the response
reports successful items and failed_items side by side. Check
total_failed before assuming everything went through.`
}
