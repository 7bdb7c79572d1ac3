// Package paginate drives cursor-based listing endpoints into lazy item
// sequences, retrying each page fetch.
package paginate

import (
	"context"
	"iter"

	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// PageFunc fetches one page for the given cursor token. Token "" means
// start from the beginning. The token must only be presented back to the
// same query (same endpoint, same filters) that produced it.
type PageFunc[T any] func(ctx context.Context, pageToken string) (service.Page[T], error)

// All returns a lazy sequence over every item of the listing, in service
// order, one full traversal per range. Each page fetch goes through the
// retrier with cfg.
//
// The traversal is read-committed, not snapshot-isolated: items created
// or deleted concurrently may or may not appear, and no deduplication is
// attempted. If a page fetch fails terminally (budget spent, cancelled),
// the sequence ends with that error as the final element; items already
// yielded remain valid.
//
// Ranging again over the returned sequence restarts from the first page;
// it does not resume.
func All[T any](ctx context.Context, cfg retry.Config, fetch PageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		token := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(zero, taskerr.FromTransport(err))
				return
			}
			page, err := retry.Do(ctx, cfg, func(ctx context.Context) (service.Page[T], error) {
				return fetch(ctx, token)
			})
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
			if !page.HasMore || page.NextToken == "" {
				return
			}
			token = page.NextToken
		}
	}
}

// Collect drains the listing into a slice. On a terminal error the items
// yielded so far are returned alongside it.
func Collect[T any](ctx context.Context, cfg retry.Config, fetch PageFunc[T]) ([]T, error) {
	var items []T
	for item, err := range All(ctx, cfg, fetch) {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Count drains the listing without retaining items, returning how many
// were yielded. The remote service has no count-only response, so this
// is the cheapest full count available.
func Count[T any](ctx context.Context, cfg retry.Config, fetch PageFunc[T]) (int, error) {
	n := 0
	for _, err := range All(ctx, cfg, fetch) {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Each calls fn for every item. fn returning an error stops the
// traversal and returns that error.
func Each[T any](ctx context.Context, cfg retry.Config, fetch PageFunc[T], fn func(T) error) error {
	for item, err := range All(ctx, cfg, fetch) {
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}
