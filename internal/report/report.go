// Package report aggregates task statistics over paginated listings.
package report

import (
	"context"
	"time"

	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

// DefaultDueSoonWindow matches the original "due in the next 3 days"
// reminder horizon.
const DefaultDueSoonWindow = 72 * time.Hour

const defaultPageSize = 100

// Report summarizes a set of tasks.
type Report struct {
	Total      int
	ByStatus   map[service.Status]int
	ByAssignee map[string]int
	Unassigned int
	Overdue    int
	// DueSoon counts open tasks due within the window but not overdue.
	DueSoon int
}

// Options scopes and tunes a report build.
type Options struct {
	// TasklistID scopes the report to one tasklist; empty means all
	// tasks visible to the credential.
	TasklistID string

	Filter        service.TaskFilter
	DueSoonWindow time.Duration
	PageSize      int
	Retry         retry.Config

	// Now anchors overdue/due-soon checks; zero means time.Now().
	Now time.Time
}

func (o Options) fetch(svc service.Service) paginate.PageFunc[service.Task] {
	pageSize := o.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if o.TasklistID != "" {
		return func(ctx context.Context, token string) (service.Page[service.Task], error) {
			return svc.ListTasksInTasklist(ctx, o.TasklistID, pageSize, token)
		}
	}
	return func(ctx context.Context, token string) (service.Page[service.Task], error) {
		return svc.ListTasks(ctx, o.Filter, pageSize, token)
	}
}

// Build drains the selected listing and tallies it. On a terminal
// listing error the tallies so far are returned alongside it.
func Build(ctx context.Context, svc service.Service, opts Options) (Report, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := opts.DueSoonWindow
	if window <= 0 {
		window = DefaultDueSoonWindow
	}

	r := Report{
		ByStatus:   make(map[service.Status]int),
		ByAssignee: make(map[string]int),
	}
	err := paginate.Each(ctx, opts.Retry, opts.fetch(svc), func(t service.Task) error {
		r.Total++
		r.ByStatus[t.Status]++
		if t.Assignee == "" {
			r.Unassigned++
		} else {
			r.ByAssignee[t.Assignee]++
		}
		switch {
		case t.Overdue(now):
			r.Overdue++
		case t.Due != nil && t.Status.Open() && t.Due.Before(now.Add(window)):
			r.DueSoon++
		}
		return nil
	})
	return r, err
}
