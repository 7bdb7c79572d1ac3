package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/balance"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd creates a task. With --balance, the assignee is chosen as the
// least-loaded of the given candidates.
type AddCmd struct {
	description string
	assignee    string
	due         string
	parent      string
	tasklistID  string
	balanceOver string
	followers   string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasksync add [--description <text>] [--assignee <user>] [--due <time>] [--parent <task-id>] [--tasklist <id>] [--balance <user,...>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.parent, "parent", "", "")
	fs.StringVar(&c.tasklistID, "tasklist", "", "")
	fs.StringVar(&c.balanceOver, "balance", "", "")
	fs.StringVar(&c.followers, "followers", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if c.assignee != "" && c.balanceOver != "" {
		fmt.Fprintln(errOut, "error: cannot use both --assignee and --balance")
		return exitcode.UserError
	}

	task := service.NewTask{
		Summary:     title,
		Description: c.description,
		ParentID:    c.parent,
	}

	if c.due != "" {
		due, err := parseDue(c.due)
		if err != nil {
			return fail(errOut, err)
		}
		task.Due = &due
	}
	if c.followers != "" {
		for _, f := range splitIDs(c.followers) {
			id, err := resolveAssignee(ctx, svc, f)
			if err != nil {
				return fail(errOut, err)
			}
			task.Followers = append(task.Followers, id)
		}
	}

	switch {
	case c.assignee != "":
		id, err := resolveAssignee(ctx, svc, c.assignee)
		if err != nil {
			return fail(errOut, err)
		}
		task.Assignee = id
	case c.balanceOver != "":
		candidates := splitIDs(c.balanceOver)
		for i, cand := range candidates {
			id, err := resolveAssignee(ctx, svc, cand)
			if err != nil {
				return fail(errOut, err)
			}
			candidates[i] = id
		}
		// Read to decide, write to act: selection and creation are
		// separate, independently retryable steps.
		chosen, err := balance.SelectLeastLoaded(ctx, svc, candidates, service.OpenStatuses(), balance.Config{})
		if err != nil {
			return fail(errOut, err)
		}
		task.Assignee = chosen
	}

	created, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (service.Task, error) {
		return svc.CreateTask(ctx, task)
	})
	if err != nil {
		return fail(errOut, err)
	}

	if c.tasklistID != "" {
		_, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, svc.AddTaskToTasklist(ctx, c.tasklistID, created.ID)
		})
		if err != nil {
			fmt.Fprintf(errOut, "warning: created %s but could not add to tasklist: %v\n", created.ID, err)
			return exitcode.BackendError
		}
	}

	if cfg.Quiet {
		fmt.Fprintln(out, created.ID)
	} else {
		fmt.Fprintf(out, "created %s", created.ID)
		if created.Assignee != "" {
			fmt.Fprintf(out, " assigned to %s", created.Assignee)
		}
		fmt.Fprintln(out)
	}
	return exitcode.Success
}
