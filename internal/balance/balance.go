// Package balance picks assignment targets by current open-task load.
package balance

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// DefaultPageSize is the listing page size for count queries.
const DefaultPageSize = 100

// Config tunes the count queries behind a selection.
type Config struct {
	PageSize int
	Retry    retry.Config
}

// SelectLeastLoaded returns the candidate with the fewest tasks whose
// status is in openStatuses, counting via filtered listing queries run
// in parallel. Ties go to the candidate listed first.
//
// A candidate whose count query fails terminally is excluded rather than
// aborting the selection; if every candidate fails, the error is
// KindAllCandidatesUnavailable. This is a read-to-decide step only: the
// caller performs the subsequent assignment write, and the balance
// achieved is eventual, not strict.
func SelectLeastLoaded(ctx context.Context, svc service.Service, candidates []string, openStatuses []service.Status, cfg Config) (string, error) {
	if len(candidates) == 0 {
		return "", taskerr.New(taskerr.KindInvalidParameter, "no candidates")
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if len(openStatuses) == 0 {
		openStatuses = service.OpenStatuses()
	}

	counts := make([]int, len(candidates))
	failed := make([]bool, len(candidates))

	g := new(errgroup.Group)
	for i, candidate := range candidates {
		g.Go(func() error {
			filter := service.TaskFilter{Assignee: candidate, Statuses: openStatuses}
			n, err := paginate.Count(ctx, cfg.Retry, func(ctx context.Context, token string) (service.Page[service.Task], error) {
				return svc.ListTasks(ctx, filter, pageSize, token)
			})
			if err != nil {
				failed[i] = true
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return "", taskerr.FromTransport(err)
	}

	best := -1
	for i := range candidates {
		if failed[i] {
			continue
		}
		if best == -1 || counts[i] < counts[best] {
			best = i
		}
	}
	if best == -1 {
		return "", taskerr.New(taskerr.KindAllCandidatesUnavailable,
			fmt.Sprintf("all %d candidate count queries failed", len(candidates)))
	}
	return candidates[best], nil
}
