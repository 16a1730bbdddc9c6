package alicesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Alice HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Project represents the API project model.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ProjectSummary is the trimmed shape used by project listings.
type ProjectSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Epic represents the API epic model.
type Epic struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Assignee    string `json:"assignee,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Task represents the API task model.
type Task struct {
	ID            int64          `json:"id"`
	ProjectID     int64          `json:"project_id"`
	EpicID        *int64         `json:"epic_id,omitempty"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"`
	Assignee      string         `json:"assignee,omitempty"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	Messages      []Message      `json:"messages,omitempty"`
	StatusHistory []StatusChange `json:"status_history,omitempty"`
}

// Message represents a task discussion entry.
type Message struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	Author    string `json:"author"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// StatusChange represents one task status transition.
type StatusChange struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedAt string `json:"changed_at"`
}

// Decision represents the API decision model.
type Decision struct {
	ID             int64  `json:"id"`
	ProjectID      int64  `json:"project_id"`
	TaskID         *int64 `json:"task_id,omitempty"`
	Title          string `json:"title"`
	ContextMD      string `json:"context_md,omitempty"`
	DecisionMD     string `json:"decision_md,omitempty"`
	ConsequencesMD string `json:"consequences_md,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// PlanItem is one slot of the priority plan with its task embedded.
type PlanItem struct {
	Task      Task   `json:"task"`
	Position  int    `json:"position"`
	Rationale string `json:"rationale,omitempty"`
}

// PlanEntry is one requested plan slot for plan replacement.
type PlanEntry struct {
	TaskID    int64  `json:"task_id"`
	Rationale string `json:"rationale,omitempty"`
}

// BulkItemError reports one failed item of a bulk request.
type BulkItemError struct {
	Index        int    `json:"index"`
	ItemID       *int64 `json:"item_id,omitempty"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// BulkTaskReport summarizes a bulk task operation.
type BulkTaskReport struct {
	SuccessfulTasks []Task          `json:"successful_tasks"`
	FailedItems     []BulkItemError `json:"failed_items"`
	TotalRequested  int             `json:"total_requested"`
	TotalSuccessful int             `json:"total_successful"`
	TotalFailed     int             `json:"total_failed"`
	OperationType   string          `json:"operation_type"`
}

// BulkDecisionReport summarizes a bulk decision operation.
type BulkDecisionReport struct {
	SuccessfulDecisions []Decision      `json:"successful_decisions"`
	FailedItems         []BulkItemError `json:"failed_items"`
	TotalRequested      int             `json:"total_requested"`
	TotalSuccessful     int             `json:"total_successful"`
	TotalFailed         int             `json:"total_failed"`
	OperationType       string          `json:"operation_type"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ListFilters narrows epic/task listings. Zero values are omitted.
type ListFilters struct {
	Status        string
	Assignee      string
	EpicID        *int64
	CreatedAfter  string
	CreatedBefore string
	Skip          int
	Limit         int
}

func (f ListFilters) query() string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Assignee != "" {
		q.Set("assignee", f.Assignee)
	}
	if f.EpicID != nil {
		q.Set("epic_id", strconv.FormatInt(*f.EpicID, 10))
	}
	if f.CreatedAfter != "" {
		q.Set("created_after", f.CreatedAfter)
	}
	if f.CreatedBefore != "" {
		q.Set("created_before", f.CreatedBefore)
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "health", nil, nil)
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description, path string) (Project, error) {
	body := map[string]any{"name": name}
	if description != "" {
		body["description"] = description
	}
	if path != "" {
		body["path"] = path
	}
	var resp Project
	err := c.do(ctx, http.MethodPost, "projects", body, &resp)
	return resp, err
}

// ListProjects returns project summaries.
func (c *Client) ListProjects(ctx context.Context, skip, limit int) ([]ProjectSummary, error) {
	var resp []ProjectSummary
	err := c.do(ctx, http.MethodGet, "projects"+ListFilters{Skip: skip, Limit: limit}.query(), nil, &resp)
	return resp, err
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, id int64) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("projects/%d", id), nil, &resp)
	return resp, err
}

// GetProjectByName resolves a project by its unique name.
func (c *Client) GetProjectByName(ctx context.Context, name string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, "projects/by-name/"+url.PathEscape(name), nil, &resp)
	return resp, err
}

// UpdateProject applies a partial project update.
func (c *Client) UpdateProject(ctx context.Context, id int64, fields map[string]any) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("projects/%d", id), fields, &resp)
	return resp, err
}

// CreateEpic creates an epic in a project.
func (c *Client) CreateEpic(ctx context.Context, projectID int64, fields map[string]any) (Epic, error) {
	var resp Epic
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%d/epics", projectID), fields, &resp)
	return resp, err
}

// ListEpics returns a project's epics.
func (c *Client) ListEpics(ctx context.Context, projectID int64, f ListFilters) ([]Epic, error) {
	var resp []Epic
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/epics%s", projectID, f.query()), nil, &resp)
	return resp, err
}

// GetEpic fetches an epic.
func (c *Client) GetEpic(ctx context.Context, projectID, epicID int64) (Epic, error) {
	var resp Epic
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/epics/%d", projectID, epicID), nil, &resp)
	return resp, err
}

// UpdateEpic applies a partial epic update.
func (c *Client) UpdateEpic(ctx context.Context, projectID, epicID int64, fields map[string]any) (Epic, error) {
	var resp Epic
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%d/epics/%d", projectID, epicID), fields, &resp)
	return resp, err
}

// DeleteEpic removes an epic; its tasks survive detached.
func (c *Client) DeleteEpic(ctx context.Context, projectID, epicID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%d/epics/%d", projectID, epicID), nil, nil)
}

// ListEpicTasks returns the tasks attached to an epic.
func (c *Client) ListEpicTasks(ctx context.Context, projectID, epicID int64) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/epics/%d/tasks", projectID, epicID), nil, &resp)
	return resp, err
}

// CreateTask creates a task in a project.
func (c *Client) CreateTask(ctx context.Context, projectID int64, fields map[string]any) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%d/tasks", projectID), fields, &resp)
	return resp, err
}

// ListTasks returns a project's tasks.
func (c *Client) ListTasks(ctx context.Context, projectID int64, f ListFilters, includeDetails bool) ([]Task, error) {
	endpoint := fmt.Sprintf("%d/tasks%s", projectID, f.query())
	if includeDetails {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "include_details=true"
	}
	var resp []Task
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetTask fetches a task.
func (c *Client) GetTask(ctx context.Context, projectID, taskID int64) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/tasks/%d", projectID, taskID), nil, &resp)
	return resp, err
}

// UpdateTask applies a partial task update. Pass "epic_id": nil in
// fields to detach the task from its epic.
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID int64, fields map[string]any) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%d/tasks/%d", projectID, taskID), fields, &resp)
	return resp, err
}

// DeleteTask removes a task and its messages and history.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%d/tasks/%d", projectID, taskID), nil, nil)
}

// MoveTask moves a task into the project with the given name.
func (c *Client) MoveTask(ctx context.Context, projectID, taskID int64, targetProjectName string) (Task, error) {
	var resp Task
	endpoint := fmt.Sprintf("%d/tasks/%d/move/%s", projectID, taskID, url.PathEscape(targetProjectName))
	err := c.do(ctx, http.MethodPut, endpoint, map[string]any{}, &resp)
	return resp, err
}

// AddMessage appends a message to a task.
func (c *Client) AddMessage(ctx context.Context, projectID, taskID int64, author, message string) (Message, error) {
	body := map[string]any{"author": author, "message": message}
	var resp Message
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%d/tasks/%d/messages", projectID, taskID), body, &resp)
	return resp, err
}

// ListMessages returns a task's messages in chronological order.
func (c *Client) ListMessages(ctx context.Context, projectID, taskID int64) ([]Message, error) {
	var resp []Message
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/tasks/%d/messages", projectID, taskID), nil, &resp)
	return resp, err
}

// StatusHistory returns a task's status transitions.
func (c *Client) StatusHistory(ctx context.Context, projectID, taskID int64) ([]StatusChange, error) {
	var resp []StatusChange
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/tasks/%d/status-history", projectID, taskID), nil, &resp)
	return resp, err
}

// CreateDecision records a decision in a project.
func (c *Client) CreateDecision(ctx context.Context, projectID int64, fields map[string]any) (Decision, error) {
	var resp Decision
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%d/decisions", projectID), fields, &resp)
	return resp, err
}

// ListDecisions returns a project's decisions.
func (c *Client) ListDecisions(ctx context.Context, projectID int64, status string, skip, limit int) ([]Decision, error) {
	f := ListFilters{Status: status, Skip: skip, Limit: limit}
	var resp []Decision
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/decisions%s", projectID, f.query()), nil, &resp)
	return resp, err
}

// GetDecision fetches a decision.
func (c *Client) GetDecision(ctx context.Context, projectID, decisionID int64) (Decision, error) {
	var resp Decision
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/decisions/%d", projectID, decisionID), nil, &resp)
	return resp, err
}

// UpdateDecision applies a partial decision update.
func (c *Client) UpdateDecision(ctx context.Context, projectID, decisionID int64, fields map[string]any) (Decision, error) {
	var resp Decision
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%d/decisions/%d", projectID, decisionID), fields, &resp)
	return resp, err
}

// GetPlan returns the project's priority plan in position order.
func (c *Client) GetPlan(ctx context.Context, projectID int64) ([]PlanItem, error) {
	var resp []PlanItem
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/priority-plan", projectID), nil, &resp)
	return resp, err
}

// ReplacePlan atomically replaces the project's priority plan.
func (c *Client) ReplacePlan(ctx context.Context, projectID int64, entries []PlanEntry) ([]PlanItem, error) {
	if entries == nil {
		entries = []PlanEntry{}
	}
	var resp []PlanItem
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%d/priority-plan", projectID), entries, &resp)
	return resp, err
}

// NextTask returns the first planned task that is still actionable.
func (c *Client) NextTask(ctx context.Context, projectID int64) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%d/priority-plan/next-task", projectID), nil, &resp)
	return resp, err
}

// BulkCreateTasks creates a batch of tasks.
func (c *Client) BulkCreateTasks(ctx context.Context, projectID int64, tasks []map[string]any) (BulkTaskReport, error) {
	var resp BulkTaskReport
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%d/tasks/bulk", projectID), map[string]any{"tasks": tasks}, &resp)
	return resp, err
}

// BulkUpdateTasks updates a batch of tasks.
func (c *Client) BulkUpdateTasks(ctx context.Context, projectID int64, updates []map[string]any) (BulkTaskReport, error) {
	var resp BulkTaskReport
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%d/tasks/bulk", projectID), map[string]any{"updates": updates}, &resp)
	return resp, err
}

// BulkCreateDecisions records a batch of decisions.
func (c *Client) BulkCreateDecisions(ctx context.Context, projectID int64, decisions []map[string]any) (BulkDecisionReport, error) {
	var resp BulkDecisionReport
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%d/decisions/bulk", projectID), map[string]any{"decisions": decisions}, &resp)
	return resp, err
}

// BulkUpdateDecisions updates a batch of decisions.
func (c *Client) BulkUpdateDecisions(ctx context.Context, projectID int64, updates []map[string]any) (BulkDecisionReport, error) {
	var resp BulkDecisionReport
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("%d/decisions/bulk", projectID), map[string]any{"updates": updates}, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
