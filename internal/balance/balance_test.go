package balance

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// countingService serves a fixed open-task count per assignee. Only
// ListTasks is implemented; anything else panics through the embedded
// nil interface.
type countingService struct {
	service.Service
	counts map[string]int
	fail   map[string]bool
}

func (s *countingService) ListTasks(ctx context.Context, filter service.TaskFilter, pageSize int, pageToken string) (service.Page[service.Task], error) {
	if s.fail[filter.Assignee] {
		return service.Page[service.Task]{}, taskerr.New(taskerr.KindPermissionDenied, "cannot read tasks")
	}
	total := s.counts[filter.Assignee]
	start := 0
	if pageToken != "" {
		start, _ = strconv.Atoi(pageToken)
	}
	end := min(start+pageSize, total)
	page := service.Page[service.Task]{}
	for i := start; i < end; i++ {
		page.Items = append(page.Items, service.Task{ID: filter.Assignee + "_" + strconv.Itoa(i)})
	}
	if end < total {
		page.NextToken = strconv.Itoa(end)
		page.HasMore = true
	}
	return page, nil
}

func fastCfg() Config {
	return Config{Retry: retry.Config{MaxAttempts: 2, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond}}
}

func TestSelectLeastLoaded(t *testing.T) {
	svc := &countingService{counts: map[string]int{"ou_a": 3, "ou_b": 1, "ou_c": 2}}
	got, err := SelectLeastLoaded(context.Background(), svc, []string{"ou_a", "ou_b", "ou_c"}, nil, fastCfg())
	require.NoError(t, err)
	assert.Equal(t, "ou_b", got)
}

func TestSelectLeastLoadedTieGoesToFirst(t *testing.T) {
	svc := &countingService{counts: map[string]int{"ou_a": 3, "ou_b": 1, "ou_c": 1}}
	got, err := SelectLeastLoaded(context.Background(), svc, []string{"ou_a", "ou_b", "ou_c"}, nil, fastCfg())
	require.NoError(t, err)
	assert.Equal(t, "ou_b", got, "ties break by candidate order")
}

func TestSelectLeastLoadedMultiPageCounts(t *testing.T) {
	svc := &countingService{counts: map[string]int{"ou_a": 250, "ou_b": 249}}
	cfg := fastCfg()
	cfg.PageSize = 100
	got, err := SelectLeastLoaded(context.Background(), svc, []string{"ou_a", "ou_b"}, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ou_b", got)
}

func TestSelectLeastLoadedExcludesFailedCandidate(t *testing.T) {
	svc := &countingService{
		counts: map[string]int{"ou_a": 0, "ou_b": 5},
		fail:   map[string]bool{"ou_a": true},
	}
	got, err := SelectLeastLoaded(context.Background(), svc, []string{"ou_a", "ou_b"}, nil, fastCfg())
	require.NoError(t, err)
	assert.Equal(t, "ou_b", got, "an unreadable candidate is skipped, not selected")
}

func TestSelectLeastLoadedAllFail(t *testing.T) {
	svc := &countingService{fail: map[string]bool{"ou_a": true, "ou_b": true}}
	_, err := SelectLeastLoaded(context.Background(), svc, []string{"ou_a", "ou_b"}, nil, fastCfg())
	require.Error(t, err)
	assert.Equal(t, taskerr.KindAllCandidatesUnavailable, taskerr.KindOf(err))
}

func TestSelectLeastLoadedNoCandidates(t *testing.T) {
	svc := &countingService{}
	_, err := SelectLeastLoaded(context.Background(), svc, nil, nil, fastCfg())
	require.Error(t, err)
	assert.Equal(t, taskerr.KindInvalidParameter, taskerr.KindOf(err))
}

func TestSelectLeastLoadedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := &countingService{counts: map[string]int{"ou_a": 1}}
	_, err := SelectLeastLoaded(ctx, svc, []string{"ou_a"}, nil, fastCfg())
	require.Error(t, err)
	assert.True(t, taskerr.IsCancelled(err))
}
