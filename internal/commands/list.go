package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd lists tasks matching a filter, or the members of one tasklist.
type ListCmd struct {
	assignedToMe bool
	createdByMe  bool
	statuses     string
	assignee     string
	dueInDays    int
	tasklistID   string
	limit        int
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "tasksync list [--assigned-to-me] [--created-by-me] [--status <s,...>] [--assignee <user>] [--due-in <days>] [--tasklist <id>] [--limit <n>]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.assignedToMe, "assigned-to-me", false, "")
	fs.BoolVar(&c.createdByMe, "created-by-me", false, "")
	fs.StringVar(&c.statuses, "status", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.IntVar(&c.dueInDays, "due-in", 0, "")
	fs.StringVar(&c.tasklistID, "tasklist", "", "")
	fs.IntVar(&c.limit, "limit", 0, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fetch, code := c.fetch(ctx, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	num := 0
	for task, err := range paginate.All(ctx, retry.Config{}, fetch) {
		if err != nil {
			return fail(errOut, err)
		}
		num++
		output.FormatTask(out, num, task)
		if c.limit > 0 && num >= c.limit {
			break
		}
	}
	if num == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks")
	}
	return exitcode.Success
}

func (c *ListCmd) fetch(ctx context.Context, svc service.Service, errOut io.Writer) (paginate.PageFunc[service.Task], int) {
	if c.tasklistID != "" {
		return func(ctx context.Context, token string) (service.Page[service.Task], error) {
			return svc.ListTasksInTasklist(ctx, c.tasklistID, defaultPageSize, token)
		}, exitcode.Success
	}

	statuses, err := parseStatuses(c.statuses)
	if err != nil {
		return nil, fail(errOut, err)
	}
	assignee := c.assignee
	if assignee != "" {
		assignee, err = resolveAssignee(ctx, svc, assignee)
		if err != nil {
			return nil, fail(errOut, err)
		}
	}
	filter := service.TaskFilter{
		AssignedToMe: c.assignedToMe,
		CreatedByMe:  c.createdByMe,
		Statuses:     statuses,
		Assignee:     assignee,
	}
	if c.dueInDays > 0 {
		before := time.Now().Add(time.Duration(c.dueInDays) * 24 * time.Hour)
		filter.DueBefore = &before
		if len(filter.Statuses) == 0 {
			filter.Statuses = service.OpenStatuses()
		}
	}
	return func(ctx context.Context, token string) (service.Page[service.Task], error) {
		return svc.ListTasks(ctx, filter, defaultPageSize, token)
	}, exitcode.Success
}
