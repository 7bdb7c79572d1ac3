package tasktree

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/testutil"
)

func fastCfg() retry.Config {
	return retry.Config{MaxAttempts: 2, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond}
}

type visit struct {
	id    string
	depth int
}

func collect(t *testing.T, svc service.Service, rootID string) []visit {
	t.Helper()
	var visits []visit
	err := Walk(context.Background(), svc, rootID, fastCfg(), func(task service.Task, depth int) error {
		visits = append(visits, visit{task.ID, depth})
		return nil
	})
	require.NoError(t, err)
	return visits
}

func TestWalkBreadthFirst(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{ID: "task_root", Summary: "root"})
	fake.AddTask(service.Task{ID: "task_a", ParentID: "task_root"})
	fake.AddTask(service.Task{ID: "task_b", ParentID: "task_root"})
	fake.AddTask(service.Task{ID: "task_a1", ParentID: "task_a"})
	fake.AddTask(service.Task{ID: "task_b1", ParentID: "task_b"})

	visits := collect(t, fake, "task_root")
	assert.Equal(t, []visit{
		{"task_a", 1},
		{"task_b", 1},
		{"task_a1", 2},
		{"task_b1", 2},
	}, visits)
}

func TestWalkLeafHasNoVisits(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{ID: "task_leaf"})
	assert.Empty(t, collect(t, fake, "task_leaf"))
}

func TestWalkSurvivesCycle(t *testing.T) {
	// The service does not promise acyclic parent links. a and b point
	// at each other; each must still be visited at most once.
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{ID: "task_a", ParentID: "task_b"})
	fake.AddTask(service.Task{ID: "task_b", ParentID: "task_a"})

	visits := collect(t, fake, "task_a")
	assert.Equal(t, []visit{{"task_b", 1}}, visits)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(service.Task{ID: "task_root"})
	fake.AddTask(service.Task{ID: "task_a", ParentID: "task_root"})
	fake.AddTask(service.Task{ID: "task_b", ParentID: "task_root"})

	stop := errors.New("stop here")
	count := 0
	err := Walk(context.Background(), fake, "task_root", fastCfg(), func(service.Task, int) error {
		count++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)
}
