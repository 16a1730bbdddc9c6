package mcptools

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"alice/internal/config"
	"alice/internal/db"
	"alice/internal/engine"
	"alice/internal/migrate"
	"alice/internal/server"
	alicesdk "alice/sdk/go"
)

// newBackend starts a real API server on a test listener and returns a
// client plus resolver pointed at it.
func newBackend(t *testing.T) (*alicesdk.Client, *Resolver) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	handler, err := server.New(server.Config{Engine: engine.New(conn, config.Default())})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := alicesdk.New(srv.URL)
	return api, NewResolver(api)
}

func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestResolverResolve(t *testing.T) {
	api, resolver := newBackend(t)
	ctx := context.Background()
	created, err := api.CreateProject(ctx, "alpha", "", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	p, err := resolver.Resolve(ctx, "alpha")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.ID != created.ID {
		t.Fatalf("resolved id = %d, want %d", p.ID, created.ID)
	}

	_, err = resolver.Resolve(ctx, "ghost")
	if err == nil || !strings.Contains(err.Error(), `project "ghost" not found`) {
		t.Fatalf("unknown project err = %v", err)
	}
}

func TestCreateTaskToolHandle(t *testing.T) {
	api, resolver := newBackend(t)
	ctx := context.Background()
	if _, err := api.CreateProject(ctx, "alpha", "", ""); err != nil {
		t.Fatal(err)
	}

	tool := NewCreateTaskTool(api, resolver)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"project":  "alpha",
		"title":    "Ship feature",
		"assignee": "ana",
	}
	result, err := tool.Handle(ctx, req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}
	var task alicesdk.Task
	if err := json.Unmarshal([]byte(getResultText(result)), &task); err != nil {
		t.Fatalf("result is not task JSON: %v", err)
	}
	if task.Title != "Ship feature" || task.Assignee != "ana" || task.Status != "To-Do" {
		t.Fatalf("task = %+v", task)
	}
}

func TestCreateTaskToolMissingTitle(t *testing.T) {
	api, resolver := newBackend(t)
	ctx := context.Background()
	if _, err := api.CreateProject(ctx, "alpha", "", ""); err != nil {
		t.Fatal(err)
	}

	tool := NewCreateTaskTool(api, resolver)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"project": "alpha"}
	result, err := tool.Handle(ctx, req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), "'title' is required") {
		t.Fatalf("expected title error, got: %s", getResultText(result))
	}
}

func TestCreateTaskToolUnknownProject(t *testing.T) {
	api, resolver := newBackend(t)
	tool := NewCreateTaskTool(api, resolver)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"project": "nope", "title": "x"}
	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), `project "nope" not found`) {
		t.Fatalf("expected not-found error, got: %s", getResultText(result))
	}
}

func TestUpdateTaskToolDetachEpic(t *testing.T) {
	api, resolver := newBackend(t)
	ctx := context.Background()
	p, err := api.CreateProject(ctx, "alpha", "", "")
	if err != nil {
		t.Fatal(err)
	}
	ep, err := api.CreateEpic(ctx, p.ID, map[string]any{"title": "theme"})
	if err != nil {
		t.Fatal(err)
	}
	task, err := api.CreateTask(ctx, p.ID, map[string]any{"title": "work", "epic_id": ep.ID})
	if err != nil {
		t.Fatal(err)
	}
	if task.EpicID == nil {
		t.Fatalf("fixture task not attached: %+v", task)
	}

	tool := NewUpdateTaskTool(api, resolver)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"project":     "alpha",
		"task_id":     task.ID,
		"detach_epic": true,
	}
	result, err := tool.Handle(ctx, req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}
	var updated alicesdk.Task
	if err := json.Unmarshal([]byte(getResultText(result)), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.EpicID != nil {
		t.Fatalf("epic still attached: %+v", updated)
	}
}

func TestSetPlanToolRoundTrip(t *testing.T) {
	api, resolver := newBackend(t)
	ctx := context.Background()
	p, err := api.CreateProject(ctx, "alpha", "", "")
	if err != nil {
		t.Fatal(err)
	}
	first, err := api.CreateTask(ctx, p.ID, map[string]any{"title": "first"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := api.CreateTask(ctx, p.ID, map[string]any{"title": "second"})
	if err != nil {
		t.Fatal(err)
	}

	setPlan := NewSetPlanTool(api, resolver)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"project": "alpha",
		"entries": []interface{}{
			map[string]interface{}{"task_id": second.ID, "rationale": "blocking"},
			map[string]interface{}{"task_id": first.ID},
		},
	}
	result, err := setPlan.Handle(ctx, req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	nextTool := NewNextTaskTool(api, resolver)
	req = mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"project": "alpha"}
	result, err = nextTool.Handle(ctx, req)
	if err != nil {
		t.Fatalf("next_task failed: %v", err)
	}
	var next alicesdk.Task
	if err := json.Unmarshal([]byte(getResultText(result)), &next); err != nil {
		t.Fatal(err)
	}
	if next.ID != second.ID {
		t.Fatalf("next = %d, want %d", next.ID, second.ID)
	}
}
