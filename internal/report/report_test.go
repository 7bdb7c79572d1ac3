package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/testutil"
)

func fastOpts() Options {
	return Options{
		PageSize: 2,
		Retry:    retry.Config{MaxAttempts: 1, BaseDelay: time.Microsecond},
		Now:      time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestBuild(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{Summary: "overdue", Status: service.StatusTodo, Assignee: "ou_a", Due: at("2026-08-30T12:00:00Z")})
	fake.AddTask(service.Task{Summary: "due soon", Status: service.StatusInProgress, Assignee: "ou_a", Due: at("2026-09-02T12:00:00Z")})
	fake.AddTask(service.Task{Summary: "far out", Status: service.StatusTodo, Assignee: "ou_b", Due: at("2026-10-01T12:00:00Z")})
	fake.AddTask(service.Task{Summary: "done late", Status: service.StatusCompleted, Assignee: "ou_b", Due: at("2026-08-20T12:00:00Z")})
	fake.AddTask(service.Task{Summary: "floating", Status: service.StatusTodo})

	r, err := Build(context.Background(), fake, fastOpts())
	require.NoError(t, err)

	assert.Equal(t, 5, r.Total)
	assert.Equal(t, 3, r.ByStatus[service.StatusTodo])
	assert.Equal(t, 1, r.ByStatus[service.StatusInProgress])
	assert.Equal(t, 1, r.ByStatus[service.StatusCompleted])
	assert.Equal(t, 2, r.ByAssignee["ou_a"])
	assert.Equal(t, 2, r.ByAssignee["ou_b"])
	assert.Equal(t, 1, r.Unassigned)
	assert.Equal(t, 1, r.Overdue, "a completed task past due is not overdue")
	assert.Equal(t, 1, r.DueSoon)
}

func TestBuildScopedToTasklist(t *testing.T) {
	fake := testutil.NewFakeService()
	list := fake.AddTasklist("sprint")
	in := fake.AddTask(service.Task{Summary: "in list", Status: service.StatusTodo})
	fake.AddTask(service.Task{Summary: "outside", Status: service.StatusTodo})
	require.NoError(t, fake.AddTaskToTasklist(context.Background(), list.ID, in.ID))

	opts := fastOpts()
	opts.TasklistID = list.ID
	r, err := Build(context.Background(), fake, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Total)
}

func TestBuildEmpty(t *testing.T) {
	fake := testutil.NewFakeService()
	r, err := Build(context.Background(), fake, fastOpts())
	require.NoError(t, err)
	assert.Equal(t, 0, r.Total)
	assert.Empty(t, r.ByStatus)
}
