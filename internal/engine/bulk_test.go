package engine_test

import (
	"testing"

	"alice/internal/domain"
	"alice/internal/engine"
)

func TestBulkCreateTasksMixedBatch(t *testing.T) {
	env := newTestEnv(t)
	ep, err := env.Engine.CreateEpic(env.Ctx, engine.EpicCreateOptions{ProjectID: env.Project.ID, Title: "theme"})
	if err != nil {
		t.Fatal(err)
	}
	missingEpic := ep.ID + 100
	report, err := env.Engine.BulkCreateTasks(env.Ctx, env.Project.ID, []engine.BulkTaskItem{
		{Title: "good one", EpicID: &ep.ID},
		{Title: ""},
		{Title: "bad epic", EpicID: &missingEpic},
		{Title: "good two", Assignee: "ana"},
	})
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if report.OperationType != "create" {
		t.Fatalf("operation_type = %q", report.OperationType)
	}
	if report.TotalRequested != 4 || report.TotalSuccessful != 2 || report.TotalFailed != 2 {
		t.Fatalf("counters = %d/%d/%d", report.TotalRequested, report.TotalSuccessful, report.TotalFailed)
	}
	if len(report.SuccessfulTasks) != 2 {
		t.Fatalf("successful_tasks = %d", len(report.SuccessfulTasks))
	}
	if report.SuccessfulTasks[0].Title != "good one" || report.SuccessfulTasks[0].EpicID == nil {
		t.Fatalf("first created task wrong: %+v", report.SuccessfulTasks[0])
	}
	if report.FailedItems[0].Index != 1 || report.FailedItems[0].ErrorCode != engine.BulkValidationError {
		t.Fatalf("empty title failure wrong: %+v", report.FailedItems[0])
	}
	if report.FailedItems[1].Index != 2 || report.FailedItems[1].ErrorCode != engine.BulkEpicNotFound {
		t.Fatalf("missing epic failure wrong: %+v", report.FailedItems[1])
	}
	// the good items really landed
	got, err := env.Engine.GetTask(env.Ctx, env.Project.ID, report.SuccessfulTasks[1].ID)
	if err != nil {
		t.Fatalf("fetch created task: %v", err)
	}
	if got.Assignee != "ana" || got.Status != domain.StatusToDo {
		t.Fatalf("created task = %+v", got)
	}
}

func TestBulkCreateTasksInvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	report, err := env.Engine.BulkCreateTasks(env.Ctx, env.Project.ID, []engine.BulkTaskItem{
		{Title: "blocked", Status: "Blocked"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalFailed != 1 || report.FailedItems[0].ErrorCode != engine.BulkValidationError {
		t.Fatalf("report = %+v", report)
	}
}

func TestBulkUpdateTasks(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: "work"})
	if err != nil {
		t.Fatal(err)
	}
	done := domain.StatusDone
	report, err := env.Engine.BulkUpdateTasks(env.Ctx, env.Project.ID, []engine.BulkTaskUpdate{
		{ID: task.ID, Status: &done},
		{ID: task.ID + 99, Status: &done},
	})
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if report.OperationType != "update" {
		t.Fatalf("operation_type = %q", report.OperationType)
	}
	if report.TotalSuccessful != 1 || report.TotalFailed != 1 {
		t.Fatalf("counters = %d/%d", report.TotalSuccessful, report.TotalFailed)
	}
	fail := report.FailedItems[0]
	if fail.ErrorCode != engine.BulkTaskNotFound || fail.ItemID == nil || *fail.ItemID != task.ID+99 {
		t.Fatalf("failure = %+v", fail)
	}
	// status change went through and was recorded
	got, err := env.Engine.GetTask(env.Ctx, env.Project.ID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusDone {
		t.Fatalf("status = %q", got.Status)
	}
	hist, err := env.Engine.StatusHistory(env.Ctx, env.Project.ID, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].NewStatus != domain.StatusDone {
		t.Fatalf("history = %+v", hist)
	}
}

func TestBulkCreateDecisions(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: "work"})
	if err != nil {
		t.Fatal(err)
	}
	missing := task.ID + 50
	report, err := env.Engine.BulkCreateDecisions(env.Ctx, env.Project.ID, []engine.BulkDecisionItem{
		{Title: "use sqlite", TaskID: &task.ID},
		{Title: "linked to nothing", TaskID: &missing},
		{Title: ""},
	})
	if err != nil {
		t.Fatalf("bulk create decisions: %v", err)
	}
	if report.TotalSuccessful != 1 || report.TotalFailed != 2 {
		t.Fatalf("counters = %d/%d", report.TotalSuccessful, report.TotalFailed)
	}
	if report.SuccessfulDecisions[0].Status != domain.DecisionProposed {
		t.Fatalf("default status = %q", report.SuccessfulDecisions[0].Status)
	}
	if report.FailedItems[0].Index != 1 || report.FailedItems[0].ErrorCode != engine.BulkTaskNotFound {
		t.Fatalf("task link failure = %+v", report.FailedItems[0])
	}
	if report.FailedItems[1].Index != 2 || report.FailedItems[1].ErrorCode != engine.BulkValidationError {
		t.Fatalf("title failure = %+v", report.FailedItems[1])
	}
}

func TestBulkUpdateDecisions(t *testing.T) {
	env := newTestEnv(t)
	d, err := env.Engine.CreateDecision(env.Ctx, engine.DecisionCreateOptions{ProjectID: env.Project.ID, Title: "use sqlite"})
	if err != nil {
		t.Fatal(err)
	}
	accepted := domain.DecisionAccepted
	report, err := env.Engine.BulkUpdateDecisions(env.Ctx, env.Project.ID, []engine.BulkDecisionUpdate{
		{ID: d.ID, Status: &accepted},
		{ID: d.ID + 7, Status: &accepted},
	})
	if err != nil {
		t.Fatalf("bulk update decisions: %v", err)
	}
	if report.TotalSuccessful != 1 || report.TotalFailed != 1 {
		t.Fatalf("counters = %d/%d", report.TotalSuccessful, report.TotalFailed)
	}
	if report.SuccessfulDecisions[0].Status != domain.DecisionAccepted {
		t.Fatalf("updated status = %q", report.SuccessfulDecisions[0].Status)
	}
	if report.FailedItems[0].ErrorCode != engine.BulkDecisionNotFound {
		t.Fatalf("failure = %+v", report.FailedItems[0])
	}
}
