package batch

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/retry"
	"tasksync/internal/taskerr"
)

func fastOpts(workers int) Options {
	return Options{
		Concurrency: workers,
		Retry:       retry.Config{MaxAttempts: 1, BaseDelay: time.Microsecond},
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	inputs := []int{5, 1, 9, 2, 7, 3, 8}
	outcomes, sum := Run(context.Background(), inputs, func(ctx context.Context, n int) (string, error) {
		// Later inputs finish first to shuffle completion order.
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return fmt.Sprintf("v%d", n), nil
	}, fastOpts(4))

	require.Len(t, outcomes, len(inputs))
	for i, o := range outcomes {
		assert.Equal(t, inputs[i], o.Input)
		assert.Equal(t, fmt.Sprintf("v%d", inputs[i]), o.Value)
		assert.NoError(t, o.Err)
	}
	assert.Equal(t, len(inputs), sum.Succeeded)
	assert.Equal(t, 0, sum.Failed)
}

func TestRunIsolatesFailures(t *testing.T) {
	inputs := []string{"a", "bad", "c", "missing", "e"}
	outcomes, sum := Run(context.Background(), inputs, func(ctx context.Context, id string) (string, error) {
		switch id {
		case "bad":
			return "", taskerr.New(taskerr.KindInvalidParameter, "bad input")
		case "missing":
			return "", taskerr.New(taskerr.KindNotFound, "no such task")
		default:
			return id + "!", nil
		}
	}, fastOpts(2))

	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
	assert.Error(t, outcomes[3].Err)
	assert.NoError(t, outcomes[4].Err)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 3, sum.Succeeded)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 1, sum.ByKind[taskerr.KindInvalidParameter])
	assert.Equal(t, 1, sum.ByKind[taskerr.KindNotFound])
	assert.InDelta(t, 0.6, sum.SuccessRate(), 1e-9)
}

func TestRunBoundsConcurrency(t *testing.T) {
	const workers = 3
	var active, peak atomic.Int32

	inputs := make([]int, 20)
	Run(context.Background(), inputs, func(ctx context.Context, _ int) (int, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return 0, nil
	}, fastOpts(workers))

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Greater(t, peak.Load(), int32(1), "work should actually overlap")
}

func TestRunRetriesPerInput(t *testing.T) {
	var calls atomic.Int32
	opts := Options{
		Concurrency: 1,
		Retry:       retry.Config{MaxAttempts: 3, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond},
	}
	outcomes, sum := Run(context.Background(), []string{"x"}, func(ctx context.Context, _ string) (int, error) {
		if calls.Add(1) < 3 {
			return 0, taskerr.Classify(http.StatusServiceUnavailable, 0, "flaky")
		}
		return 1, nil
	}, opts)

	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, sum.Succeeded)
}

func TestRunDuplicateInputs(t *testing.T) {
	inputs := []string{"dup", "dup", "dup"}
	var calls atomic.Int32
	outcomes, sum := Run(context.Background(), inputs, func(ctx context.Context, id string) (string, error) {
		calls.Add(1)
		return id, nil
	}, fastOpts(3))

	assert.Equal(t, int32(3), calls.Load(), "duplicates are processed independently")
	require.Len(t, outcomes, 3)
	assert.Equal(t, 3, sum.Succeeded)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := make([]int, 5)
	outcomes, sum := Run(ctx, inputs, func(ctx context.Context, _ int) (int, error) {
		return 1, nil
	}, fastOpts(2))

	require.Len(t, outcomes, 5)
	assert.Equal(t, 5, sum.Failed)
	for _, o := range outcomes {
		assert.True(t, taskerr.IsCancelled(o.Err))
	}
}

func TestSummaryEmptyBatch(t *testing.T) {
	outcomes, sum := Run(context.Background(), nil, func(ctx context.Context, _ int) (int, error) {
		return 0, nil
	}, fastOpts(2))
	assert.Empty(t, outcomes)
	assert.Equal(t, 0, sum.Total)
	assert.Equal(t, 1.0, sum.SuccessRate())
}
