package domain

// Task and epic statuses share one lifecycle. Wire values keep the
// human-readable spelling used by existing clients.
const (
	StatusToDo       = "To-Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
	StatusCanceled   = "Canceled"
)

const (
	DecisionProposed   = "Proposed"
	DecisionAccepted   = "Accepted"
	DecisionRejected   = "Rejected"
	DecisionSuperseded = "Superseded"
)

// ValidStatus reports whether s is a known task/epic status.
func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// TerminalStatus reports whether a task in status s is finished work.
func TerminalStatus(s string) bool {
	return s == StatusDone || s == StatusCanceled
}

// ValidDecisionStatus reports whether s is a known decision status.
func ValidDecisionStatus(s string) bool {
	switch s {
	case DecisionProposed, DecisionAccepted, DecisionRejected, DecisionSuperseded:
		return true
	}
	return false
}

type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`
}

type Epic struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status" enum:"To-Do,In Progress,Done,Canceled"`
	Assignee    string `json:"assignee,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`
}

type Task struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	EpicID      *int64 `json:"epic_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status" enum:"To-Do,In Progress,Done,Canceled"`
	Assignee    string `json:"assignee,omitempty"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	UpdatedAt   string `json:"updated_at" format:"date-time"`

	// Loaded only when details are requested.
	Messages      []Message      `json:"messages,omitempty"`
	StatusHistory []StatusChange `json:"status_history,omitempty"`
}

type Message struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	Author    string `json:"author"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp" format:"date-time"`
}

type StatusChange struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedAt string `json:"changed_at" format:"date-time"`
}

type Decision struct {
	ID             int64  `json:"id"`
	ProjectID      int64  `json:"project_id"`
	TaskID         *int64 `json:"task_id,omitempty"`
	Title          string `json:"title"`
	ContextMD      string `json:"context_md,omitempty"`
	DecisionMD     string `json:"decision_md,omitempty"`
	ConsequencesMD string `json:"consequences_md,omitempty"`
	Status         string `json:"status" enum:"Proposed,Accepted,Rejected,Superseded"`
	CreatedAt      string `json:"created_at" format:"date-time"`
	UpdatedAt      string `json:"updated_at" format:"date-time"`
}

// PlanEntry is one slot in a project's priority plan. Position is the
// zero-based rank; lower positions are worked first.
type PlanEntry struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	TaskID    int64  `json:"task_id"`
	Position  int    `json:"position"`
	Rationale string `json:"rationale,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
