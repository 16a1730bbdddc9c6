package server

// Request bodies. Responses reuse the domain types directly; their json
// tags are the wire format.

type CreateProjectRequest struct {
	Name        string `json:"name" minLength:"1"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Path        *string `json:"path,omitempty"`
}

type CreateEpicRequest struct {
	Title       string `json:"title" minLength:"1"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" enum:"To-Do,In Progress,Done,Canceled"`
	Assignee    string `json:"assignee,omitempty"`
}

type UpdateEpicRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" enum:"To-Do,In Progress,Done,Canceled"`
	Assignee    *string `json:"assignee,omitempty"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" minLength:"1"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" enum:"To-Do,In Progress,Done,Canceled"`
	Assignee    string `json:"assignee,omitempty"`
	EpicID      *int64 `json:"epic_id,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" enum:"To-Do,In Progress,Done,Canceled"`
	Assignee    *string `json:"assignee,omitempty"`
	// Nullable so an explicit null can detach the epic.
	EpicID *int64 `json:"epic_id,omitempty" nullable:"true"`
}

type CreateMessageRequest struct {
	Author  string `json:"author" minLength:"1"`
	Message string `json:"message" minLength:"1"`
}

type CreateDecisionRequest struct {
	Title          string `json:"title" minLength:"1"`
	ContextMD      string `json:"context_md,omitempty"`
	DecisionMD     string `json:"decision_md,omitempty"`
	ConsequencesMD string `json:"consequences_md,omitempty"`
	Status         string `json:"status,omitempty" enum:"Proposed,Accepted,Rejected,Superseded"`
	TaskID         *int64 `json:"task_id,omitempty"`
}

type UpdateDecisionRequest struct {
	Title          *string `json:"title,omitempty"`
	ContextMD      *string `json:"context_md,omitempty"`
	DecisionMD     *string `json:"decision_md,omitempty"`
	ConsequencesMD *string `json:"consequences_md,omitempty"`
	Status         *string `json:"status,omitempty" enum:"Proposed,Accepted,Rejected,Superseded"`
	TaskID         *int64  `json:"task_id,omitempty"`
}

type PlanEntryRequest struct {
	TaskID    int64  `json:"task_id"`
	Rationale string `json:"rationale,omitempty"`
}

type BulkTaskCreateRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" minItems:"1"`
}

type BulkTaskUpdateItem struct {
	ID     int64             `json:"id"`
	Update UpdateTaskRequest `json:"update"`
}

type BulkTaskUpdateRequest struct {
	Updates []BulkTaskUpdateItem `json:"updates" minItems:"1"`
}

type BulkDecisionCreateRequest struct {
	Decisions []CreateDecisionRequest `json:"decisions" minItems:"1"`
}

type BulkDecisionUpdateItem struct {
	ID     int64                 `json:"id"`
	Update UpdateDecisionRequest `json:"update"`
}

type BulkDecisionUpdateRequest struct {
	Updates []BulkDecisionUpdateItem `json:"updates" minItems:"1"`
}

// ProjectSummary is the trimmed shape used by project listings.
type ProjectSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
