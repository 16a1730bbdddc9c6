package engine_test

import (
	"errors"
	"testing"

	"alice/internal/domain"
	"alice/internal/engine"
	"alice/internal/fault"
)

func planFixture(t *testing.T, env *testEnv, titles ...string) []domain.Task {
	t.Helper()
	tasks := make([]domain.Task, 0, len(titles))
	for _, title := range titles {
		task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{ProjectID: env.Project.ID, Title: title})
		if err != nil {
			t.Fatalf("create task %q: %v", title, err)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func TestReplacePlanOrdering(t *testing.T) {
	env := newTestEnv(t)
	tasks := planFixture(t, env, "a", "b", "c")

	items, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{
		{TaskID: tasks[2].ID, Rationale: "unblocks the rest"},
		{TaskID: tasks[0].ID},
		{TaskID: tasks[1].ID},
	})
	if err != nil {
		t.Fatalf("replace plan: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("plan size = %d", len(items))
	}
	want := []int64{tasks[2].ID, tasks[0].ID, tasks[1].ID}
	for i, it := range items {
		if it.Position != i || it.Task.ID != want[i] {
			t.Fatalf("item %d = pos %d task %d", i, it.Position, it.Task.ID)
		}
	}
	if items[0].Rationale != "unblocks the rest" {
		t.Fatalf("rationale = %q", items[0].Rationale)
	}

	// reading back gives the same order
	got, err := env.Engine.GetPlan(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, it := range got {
		if it.Task.ID != want[i] {
			t.Fatalf("read back item %d = task %d, want %d", i, it.Task.ID, want[i])
		}
	}
}

func TestReplacePlanUnknownTaskIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	tasks := planFixture(t, env, "a", "b")
	if _, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{
		{TaskID: tasks[0].ID},
	}); err != nil {
		t.Fatal(err)
	}

	_, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{
		{TaskID: tasks[1].ID},
		{TaskID: tasks[1].ID + 99},
	})
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
	// the old plan survives untouched
	got, err := env.Engine.GetPlan(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Task.ID != tasks[0].ID {
		t.Fatalf("plan after failed replace = %+v", got)
	}
}

func TestReplacePlanRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	tasks := planFixture(t, env, "a")
	_, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{
		{TaskID: tasks[0].ID},
		{TaskID: tasks[0].ID},
	})
	var ve fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplacePlanEmptyClears(t *testing.T) {
	env := newTestEnv(t)
	tasks := planFixture(t, env, "a")
	if _, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{{TaskID: tasks[0].ID}}); err != nil {
		t.Fatal(err)
	}
	items, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, nil)
	if err != nil {
		t.Fatalf("clear plan: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cleared plan has %d items", len(items))
	}
	got, err := env.Engine.GetPlan(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("plan not cleared: %+v", got)
	}
}

func TestNextTaskWalksThePlan(t *testing.T) {
	env := newTestEnv(t)
	tasks := planFixture(t, env, "first", "second")
	if _, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{
		{TaskID: tasks[0].ID},
		{TaskID: tasks[1].ID},
	}); err != nil {
		t.Fatal(err)
	}

	next, err := env.Engine.NextTask(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if next.ID != tasks[0].ID {
		t.Fatalf("next = %d, want %d", next.ID, tasks[0].ID)
	}

	// finishing the first task advances the plan
	done := domain.StatusDone
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ProjectID: env.Project.ID, ID: tasks[0].ID, Status: &done,
	}); err != nil {
		t.Fatal(err)
	}
	next, err = env.Engine.NextTask(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if next.ID != tasks[1].ID {
		t.Fatalf("next = %d, want %d", next.ID, tasks[1].ID)
	}

	// canceling the second exhausts it
	canceled := domain.StatusCanceled
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ProjectID: env.Project.ID, ID: tasks[1].ID, Status: &canceled,
	}); err != nil {
		t.Fatal(err)
	}
	_, err = env.Engine.NextTask(env.Ctx, env.Project.ID)
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found on exhausted plan, got %v", err)
	}
}

func TestMoveTaskDropsPlanEntry(t *testing.T) {
	env := newTestEnv(t)
	tasks := planFixture(t, env, "stays", "moves")
	if _, err := env.Engine.CreateProject(env.Ctx, "other", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.ReplacePlan(env.Ctx, env.Project.ID, []engine.PlanUpdate{
		{TaskID: tasks[1].ID},
		{TaskID: tasks[0].ID},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := env.Engine.MoveTask(env.Ctx, env.Project.ID, tasks[1].ID, "other"); err != nil {
		t.Fatalf("move task: %v", err)
	}

	// the source plan stays readable and only lists its own tasks
	got, err := env.Engine.GetPlan(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatalf("plan after move: %v", err)
	}
	if len(got) != 1 || got[0].Task.ID != tasks[0].ID {
		t.Fatalf("plan after move = %+v", got)
	}

	// next-task never suggests a task that left the project
	next, err := env.Engine.NextTask(env.Ctx, env.Project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if next.ID != tasks[0].ID {
		t.Fatalf("next = %d, want %d", next.ID, tasks[0].ID)
	}
}

func TestNextTaskEmptyPlan(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.NextTask(env.Ctx, env.Project.ID)
	var nf fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}
