package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/tasktree"
)

func init() {
	Register(&SubtasksCmd{})
}

// SubtasksCmd prints the subtask graph below a task. The walk guards
// against cycles, so it terminates even on malformed parent links.
type SubtasksCmd struct{}

func (c *SubtasksCmd) Name() string      { return "subtasks" }
func (c *SubtasksCmd) Aliases() []string { return []string{"tree"} }
func (c *SubtasksCmd) Synopsis() string  { return "List all subtasks of a task" }
func (c *SubtasksCmd) Usage() string     { return "tasksync subtasks <task-id>" }
func (c *SubtasksCmd) NeedsAuth() bool   { return true }

func (c *SubtasksCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SubtasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}

	root, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (service.Task, error) {
		return svc.GetTask(ctx, args[0])
	})
	if err != nil {
		return fail(errOut, err)
	}
	output.FormatTaskIndented(out, 0, root)

	n := 0
	err = tasktree.Walk(ctx, svc, root.ID, retry.Config{}, func(t service.Task, depth int) error {
		output.FormatTaskIndented(out, depth, t)
		n++
		return nil
	})
	if err != nil {
		return fail(errOut, err)
	}
	if n == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no subtasks")
	}
	return exitcode.Success
}
