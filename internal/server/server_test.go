package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"

	"alice/internal/config"
	"alice/internal/db"
	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/migrate"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	handler, err := New(Config{Engine: e, BasePath: "/v0"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func createProject(t *testing.T, srv *testServer, name string) domain.Project {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/projects", map[string]any{
		"name": name,
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project status %d: %s", res.StatusCode, string(data))
	}
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	return p
}

func createTask(t *testing.T, srv *testServer, projectID int64, body map[string]any) domain.Task {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, fmt.Sprintf("%s/v0/%d/tasks", srv.URL, projectID), body, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task status %d: %s", res.StatusCode, string(data))
	}
	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	return task
}

func TestProjectLifecycle(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	p := createProject(t, srv, "alpha")

	// duplicate name conflicts with the envelope shape
	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/projects", map[string]any{"name": "alpha"}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status %d: %s", res.StatusCode, string(data))
	}
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if env.Error.Code != "conflict" {
		t.Fatalf("error code = %q", env.Error.Code)
	}

	// lookup by name
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/projects/by-name/alpha", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("by-name status %d: %s", res.StatusCode, string(data))
	}
	var fetched domain.Project
	if err := json.Unmarshal(data, &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.ID != p.ID {
		t.Fatalf("by-name id = %d, want %d", fetched.ID, p.ID)
	}

	// rename, then the old name is gone
	res, data = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/v0/projects/%d", srv.URL, p.ID), map[string]any{"name": "beta"}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("rename status %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v0/projects/by-name/alpha", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("old name status %d", res.StatusCode)
	}
}

func TestTaskEpicNullDetaches(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	p := createProject(t, srv, "alpha")

	res, data := doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/v0/%d/epics", srv.URL, p.ID), map[string]any{"title": "theme"}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create epic status %d: %s", res.StatusCode, string(data))
	}
	var ep domain.Epic
	if err := json.Unmarshal(data, &ep); err != nil {
		t.Fatal(err)
	}

	task := createTask(t, srv, p.ID, map[string]any{"title": "work", "epic_id": ep.ID})
	if task.EpicID == nil || *task.EpicID != ep.ID {
		t.Fatalf("task not attached: %+v", task)
	}

	taskURL := fmt.Sprintf("%s/v0/%d/tasks/%d", srv.URL, p.ID, task.ID)

	// an update that omits epic_id leaves the link alone
	res, data = doJSON(t, client, http.MethodPut, taskURL, map[string]any{"title": "renamed"}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update status %d: %s", res.StatusCode, string(data))
	}
	var updated domain.Task
	_ = json.Unmarshal(data, &updated)
	if updated.EpicID == nil {
		t.Fatalf("epic detached by unrelated update: %+v", updated)
	}

	// an explicit null detaches
	res, data = doJSON(t, client, http.MethodPut, taskURL, map[string]any{"epic_id": nil}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("detach status %d: %s", res.StatusCode, string(data))
	}
	_ = json.Unmarshal(data, &updated)
	if updated.EpicID != nil {
		t.Fatalf("epic not detached: %+v", updated)
	}

	// a non-integer epic_id is rejected
	res, data = doJSON(t, client, http.MethodPut, taskURL, map[string]any{"epic_id": "seven"}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad epic_id status %d: %s", res.StatusCode, string(data))
	}
}

func TestStatusHistoryEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	p := createProject(t, srv, "alpha")
	task := createTask(t, srv, p.ID, map[string]any{"title": "work"})

	taskURL := fmt.Sprintf("%s/v0/%d/tasks/%d", srv.URL, p.ID, task.ID)
	for _, status := range []string{domain.StatusInProgress, domain.StatusDone} {
		res, data := doJSON(t, client, http.MethodPut, taskURL, map[string]any{"status": status}, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("update to %s status %d: %s", status, res.StatusCode, string(data))
		}
	}

	res, data := doJSON(t, client, http.MethodGet, taskURL+"/status-history", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("history status %d: %s", res.StatusCode, string(data))
	}
	var hist []domain.StatusChange
	if err := json.Unmarshal(data, &hist); err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("history length = %d: %s", len(hist), string(data))
	}
	if hist[0].OldStatus != domain.StatusToDo || hist[1].NewStatus != domain.StatusDone {
		t.Fatalf("history = %+v", hist)
	}
}

func TestListTasksFilterValidation(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	p := createProject(t, srv, "alpha")

	res, data := doJSON(t, srv.Client(), http.MethodGet,
		fmt.Sprintf("%s/v0/%d/tasks?created_after=yesterday", srv.URL, p.ID), nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Code != "validation_error" {
		t.Fatalf("error code = %q", env.Error.Code)
	}
}

func TestPlanEndpoints(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	p := createProject(t, srv, "alpha")
	first := createTask(t, srv, p.ID, map[string]any{"title": "first"})
	second := createTask(t, srv, p.ID, map[string]any{"title": "second"})

	planURL := fmt.Sprintf("%s/v0/%d/priority-plan", srv.URL, p.ID)
	res, data := doJSON(t, client, http.MethodPut, planURL, []map[string]any{
		{"task_id": second.ID, "rationale": "blocking"},
		{"task_id": first.ID},
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("replace plan status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, planURL, nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get plan status %d: %s", res.StatusCode, string(data))
	}
	var items []engine.PlanItem
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Task.ID != second.ID || items[0].Rationale != "blocking" {
		t.Fatalf("plan = %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, planURL+"/next-task", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("next-task status %d: %s", res.StatusCode, string(data))
	}
	var next domain.Task
	_ = json.Unmarshal(data, &next)
	if next.ID != second.ID {
		t.Fatalf("next = %d, want %d", next.ID, second.ID)
	}

	// complete everything; the plan is exhausted
	for _, id := range []int64{first.ID, second.ID} {
		res, data = doJSON(t, client, http.MethodPut,
			fmt.Sprintf("%s/v0/%d/tasks/%d", srv.URL, p.ID, id),
			map[string]any{"status": domain.StatusDone}, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("finish task %d status %d: %s", id, res.StatusCode, string(data))
		}
	}
	res, _ = doJSON(t, client, http.MethodGet, planURL+"/next-task", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("exhausted plan status %d", res.StatusCode)
	}

	// unknown task id leaves the plan untouched
	res, _ = doJSON(t, client, http.MethodPut, planURL, []map[string]any{
		{"task_id": second.ID + 99},
	}, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("bad replace status %d", res.StatusCode)
	}
	res, data = doJSON(t, client, http.MethodGet, planURL, nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatal("get plan after failed replace")
	}
	_ = json.Unmarshal(data, &items)
	if len(items) != 2 {
		t.Fatalf("plan changed by failed replace: %s", string(data))
	}
}

func TestBulkCreateTasksEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	p := createProject(t, srv, "alpha")

	res, data := doJSON(t, srv.Client(), http.MethodPost,
		fmt.Sprintf("%s/v0/%d/tasks/bulk", srv.URL, p.ID),
		map[string]any{"tasks": []map[string]any{
			{"title": "good"},
			{"title": ""},
		}}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("bulk status %d: %s", res.StatusCode, string(data))
	}
	var report engine.BulkTaskReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if report.TotalRequested != 2 || report.TotalSuccessful != 1 || report.TotalFailed != 1 {
		t.Fatalf("report = %s", string(data))
	}
	if report.OperationType != "create" || report.FailedItems[0].ErrorCode != engine.BulkValidationError {
		t.Fatalf("report = %s", string(data))
	}
}
