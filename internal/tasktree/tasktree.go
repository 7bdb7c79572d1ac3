// Package tasktree walks the parent/child task relation.
package tasktree

import (
	"context"

	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

const pageSize = 100

// Walk visits every task reachable from rootID through subtask edges,
// breadth-first, calling fn with each task and its depth below the root.
// The service does not guarantee the relation is acyclic or even a tree,
// so visited ids are tracked and revisits skipped. fn returning an error
// stops the walk and returns that error.
func Walk(ctx context.Context, svc service.Service, rootID string, cfg retry.Config, fn func(t service.Task, depth int) error) error {
	type node struct {
		id    string
		depth int
	}

	visited := map[string]bool{rootID: true}
	queue := []node{{id: rootID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		err := paginate.Each(ctx, cfg, func(ctx context.Context, token string) (service.Page[service.Task], error) {
			return svc.ListSubtasks(ctx, cur.id, pageSize, token)
		}, func(t service.Task) error {
			if visited[t.ID] {
				return nil
			}
			visited[t.ID] = true
			if err := fn(t, cur.depth+1); err != nil {
				return err
			}
			queue = append(queue, node{id: t.ID, depth: cur.depth + 1})
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
