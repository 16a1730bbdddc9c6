package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"alice/internal/config"
	"alice/internal/db"
	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/fault"
	"alice/internal/migrate"
	"alice/internal/repo"
)

type testEnv struct {
	Engine  engine.Engine
	Ctx     context.Context
	Project domain.Project
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	p, err := eng.CreateProject(ctx, "demo", "test project", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return &testEnv{Engine: eng, Ctx: ctx, Project: p}
}

func TestCreateProjectDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateProject(env.Ctx, "demo", "again", "")
	var ce fault.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// a different name is fine
	if _, err := env.Engine.CreateProject(env.Ctx, "demo-2", "", ""); err != nil {
		t.Fatalf("create second project: %v", err)
	}
}

func TestProjectRenameConflict(t *testing.T) {
	env := newTestEnv(t)
	other, err := env.Engine.CreateProject(env.Ctx, "other", "", "")
	if err != nil {
		t.Fatal(err)
	}
	name := "demo"
	_, err = env.Engine.UpdateProject(env.Ctx, engine.ProjectUpdateOptions{ID: other.ID, Name: &name})
	var ce fault.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict on rename, got %v", err)
	}
	// renaming to an unused name works and is visible by the new name
	name = "renamed"
	if _, err := env.Engine.UpdateProject(env.Ctx, engine.ProjectUpdateOptions{ID: other.ID, Name: &name}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := env.Engine.GetProjectByName(env.Ctx, "renamed")
	if err != nil || got.ID != other.ID {
		t.Fatalf("lookup by new name: %v", err)
	}
}

func TestTaskEpicMustShareProject(t *testing.T) {
	env := newTestEnv(t)
	other, err := env.Engine.CreateProject(env.Ctx, "other", "", "")
	if err != nil {
		t.Fatal(err)
	}
	ep, err := env.Engine.CreateEpic(env.Ctx, engine.EpicCreateOptions{ProjectID: other.ID, Title: "foreign epic"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		ProjectID: env.Project.ID,
		Title:     "task",
		EpicID:    &ep.ID,
	})
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected epic not found, got %v", err)
	}
}

func TestStatusHistoryRecording(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: "work"})
	if err != nil {
		t.Fatal(err)
	}
	inProgress := domain.StatusInProgress
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ProjectID: env.Project.ID, ID: task.ID, Status: &inProgress,
	}); err != nil {
		t.Fatalf("to in progress: %v", err)
	}
	// same status again must not add a history row
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ProjectID: env.Project.ID, ID: task.ID, Status: &inProgress,
	}); err != nil {
		t.Fatalf("repeat status: %v", err)
	}
	done := domain.StatusDone
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ProjectID: env.Project.ID, ID: task.ID, Status: &done,
	}); err != nil {
		t.Fatalf("to done: %v", err)
	}
	history, err := env.Engine.StatusHistory(env.Ctx, env.Project.ID, task.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(history))
	}
	if history[0].OldStatus != domain.StatusToDo || history[0].NewStatus != domain.StatusInProgress {
		t.Fatalf("first transition wrong: %+v", history[0])
	}
	if history[1].OldStatus != domain.StatusInProgress || history[1].NewStatus != domain.StatusDone {
		t.Fatalf("second transition wrong: %+v", history[1])
	}
}

func TestInvalidStatusRejected(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		ProjectID: env.Project.ID,
		Title:     "bad status",
		Status:    "Blocked",
	})
	var ve fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteEpicDetachesTasks(t *testing.T) {
	env := newTestEnv(t)
	ep, err := env.Engine.CreateEpic(env.Ctx, engine.EpicCreateOptions{ProjectID: env.Project.ID, Title: "epic"})
	if err != nil {
		t.Fatal(err)
	}
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		ProjectID: env.Project.ID, Title: "in epic", EpicID: &ep.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.DeleteEpic(env.Ctx, env.Project.ID, ep.ID); err != nil {
		t.Fatalf("delete epic: %v", err)
	}
	got, err := env.Engine.GetTask(env.Ctx, env.Project.ID, task.ID)
	if err != nil {
		t.Fatalf("task must survive epic deletion: %v", err)
	}
	if got.EpicID != nil {
		t.Fatalf("task still linked to deleted epic: %v", *got.EpicID)
	}
	_, err = env.Engine.GetEpic(env.Ctx, env.Project.ID, ep.ID)
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected epic gone, got %v", err)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: "doomed"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.AddMessage(env.Ctx, env.Project.ID, task.ID, "tester", "note"); err != nil {
		t.Fatalf("add message: %v", err)
	}
	if err := env.Engine.DeleteTask(env.Ctx, env.Project.ID, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	msgs, err := env.Engine.Repo.ListMessages(env.Ctx, task.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("messages survived task deletion: %d", len(msgs))
	}
}

func TestMoveTaskBetweenProjects(t *testing.T) {
	env := newTestEnv(t)
	target, err := env.Engine.CreateProject(env.Ctx, "target", "", "")
	if err != nil {
		t.Fatal(err)
	}
	ep, err := env.Engine.CreateEpic(env.Ctx, engine.EpicCreateOptions{ProjectID: env.Project.ID, Title: "epic"})
	if err != nil {
		t.Fatal(err)
	}
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		ProjectID: env.Project.ID, Title: "mover", EpicID: &ep.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.AddMessage(env.Ctx, env.Project.ID, task.ID, "tester", "before move"); err != nil {
		t.Fatal(err)
	}

	moved, err := env.Engine.MoveTask(env.Ctx, env.Project.ID, task.ID, "target")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.ProjectID != target.ID {
		t.Fatalf("project not changed: %d", moved.ProjectID)
	}
	if moved.EpicID != nil {
		t.Fatalf("epic linkage must be cleared on move")
	}
	// messages follow the task
	msgs, err := env.Engine.ListMessages(env.Ctx, target.ID, task.ID)
	if err != nil {
		t.Fatalf("list messages in target: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message after move, got %d", len(msgs))
	}
	// the task is gone from the source project
	if _, err := env.Engine.GetTask(env.Ctx, env.Project.ID, task.ID); err == nil {
		t.Fatalf("task still visible in source project")
	}

	// unknown target name
	_, err = env.Engine.MoveTask(env.Ctx, target.ID, task.ID, "nope")
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected target project not found, got %v", err)
	}
}

func TestListTasksFiltersAndPagination(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Hour)
		env.Engine.Now = func() time.Time { return tick }
		status := domain.StatusToDo
		if i%2 == 1 {
			status = domain.StatusDone
		}
		if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
			ProjectID: env.Project.ID,
			Title:     "t",
			Status:    status,
			Assignee:  "alex",
		}); err != nil {
			t.Fatal(err)
		}
	}

	done, err := env.Engine.ListTasks(env.Ctx, repo.TaskFilters{
		ProjectID: env.Project.ID,
		Status:    domain.StatusDone,
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 2 {
		t.Fatalf("status filter: expected 2, got %d", len(done))
	}

	// created_after is inclusive, created_before exclusive
	after, err := env.Engine.ListTasks(env.Ctx, repo.TaskFilters{
		ProjectID:    env.Project.ID,
		CreatedAfter: base.Add(2 * time.Hour).Format(time.RFC3339),
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 3 {
		t.Fatalf("created_after: expected 3, got %d", len(after))
	}
	before, err := env.Engine.ListTasks(env.Ctx, repo.TaskFilters{
		ProjectID:     env.Project.ID,
		CreatedBefore: base.Add(2 * time.Hour).Format(time.RFC3339),
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 2 {
		t.Fatalf("created_before: expected 2, got %d", len(before))
	}

	// pagination: stable creation order
	page, err := env.Engine.ListTasks(env.Ctx, repo.TaskFilters{
		ProjectID: env.Project.ID,
		Skip:      1,
		Limit:     2,
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("pagination: expected 2, got %d", len(page))
	}
	if page[0].ID >= page[1].ID {
		t.Fatalf("pagination order unstable: %d then %d", page[0].ID, page[1].ID)
	}
}

func TestListTasksIncludeDetails(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: "detailed"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.AddMessage(env.Ctx, env.Project.ID, task.ID, "tester", "hello"); err != nil {
		t.Fatal(err)
	}
	done := domain.StatusDone
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ProjectID: env.Project.ID, ID: task.ID, Status: &done,
	}); err != nil {
		t.Fatal(err)
	}

	plain, err := env.Engine.ListTasks(env.Ctx, repo.TaskFilters{ProjectID: env.Project.ID}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(plain) != 1 || plain[0].Messages != nil {
		t.Fatalf("details must not load by default")
	}

	detailed, err := env.Engine.ListTasks(env.Ctx, repo.TaskFilters{ProjectID: env.Project.ID}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(detailed) != 1 {
		t.Fatalf("expected 1 task, got %d", len(detailed))
	}
	if len(detailed[0].Messages) != 1 {
		t.Fatalf("expected 1 embedded message, got %d", len(detailed[0].Messages))
	}
	if len(detailed[0].StatusHistory) != 1 {
		t.Fatalf("expected 1 embedded transition, got %d", len(detailed[0].StatusHistory))
	}
}

func TestDecisionTaskLink(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: "work"})
	if err != nil {
		t.Fatal(err)
	}
	d, err := env.Engine.CreateDecision(env.Ctx, engine.DecisionCreateOptions{
		ProjectID: env.Project.ID,
		Title:     "use sqlite",
		TaskID:    &task.ID,
	})
	if err != nil {
		t.Fatalf("create decision: %v", err)
	}
	if d.Status != domain.DecisionProposed {
		t.Fatalf("default status: got %q", d.Status)
	}

	// linking a foreign task is rejected
	other, err := env.Engine.CreateProject(env.Ctx, "other", "", "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = env.Engine.CreateDecision(env.Ctx, engine.DecisionCreateOptions{
		ProjectID: other.ID,
		Title:     "bad link",
		TaskID:    &task.ID,
	})
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected task not found, got %v", err)
	}

	accepted := domain.DecisionAccepted
	updated, err := env.Engine.UpdateDecision(env.Ctx, engine.DecisionUpdateOptions{
		ProjectID: env.Project.ID, ID: d.ID, Status: &accepted,
	})
	if err != nil || updated.Status != domain.DecisionAccepted {
		t.Fatalf("accept decision: %v", err)
	}
}
