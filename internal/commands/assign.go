package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/balance"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&AssignCmd{})
}

// AssignCmd assigns a task to a user, or with --balance to the
// least-loaded of several candidates.
type AssignCmd struct {
	balanceMode bool
}

func (c *AssignCmd) Name() string      { return "assign" }
func (c *AssignCmd) Aliases() []string { return nil }
func (c *AssignCmd) Synopsis() string  { return "Assign a task" }
func (c *AssignCmd) Usage() string {
	return "tasksync assign [--balance] <task-id> <user> [<user>...]"
}
func (c *AssignCmd) NeedsAuth() bool { return true }

func (c *AssignCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.balanceMode, "balance", false, "")
}

func (c *AssignCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task id and user required")
		return exitcode.UserError
	}
	if !c.balanceMode && len(args) > 2 {
		fmt.Fprintln(errOut, "error: multiple users need --balance")
		return exitcode.UserError
	}

	taskID := args[0]
	candidates := args[1:]
	for i, cand := range candidates {
		id, err := resolveAssignee(ctx, svc, cand)
		if err != nil {
			return fail(errOut, err)
		}
		candidates[i] = id
	}

	assignee := candidates[0]
	if c.balanceMode {
		chosen, err := balance.SelectLeastLoaded(ctx, svc, candidates, service.OpenStatuses(), balance.Config{})
		if err != nil {
			return fail(errOut, err)
		}
		assignee = chosen
	}

	patch := service.TaskPatch{Assignee: service.Ptr(assignee)}
	_, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (service.Task, error) {
		return svc.UpdateTask(ctx, taskID, patch)
	})
	if err != nil {
		return fail(errOut, err)
	}

	if cfg.Quiet {
		fmt.Fprintln(out, assignee)
	} else {
		fmt.Fprintf(out, "assigned %s to %s\n", taskID, assignee)
	}
	return exitcode.Success
}
