package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/batch"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&ListAddCmd{})
	Register(&ListRmCmd{})
}

// ListAddCmd adds tasks to a tasklist.
type ListAddCmd struct{}

func (c *ListAddCmd) Name() string      { return "listadd" }
func (c *ListAddCmd) Aliases() []string { return nil }
func (c *ListAddCmd) Synopsis() string  { return "Add tasks to a tasklist" }
func (c *ListAddCmd) Usage() string     { return "tasksync listadd <tasklist-id> <task-id...>" }
func (c *ListAddCmd) NeedsAuth() bool   { return true }

func (c *ListAddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListAddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runMembership(ctx, cfg, svc, args, svc.AddTaskToTasklist, out, errOut)
}

// ListRmCmd removes tasks from a tasklist.
type ListRmCmd struct{}

func (c *ListRmCmd) Name() string      { return "listrm" }
func (c *ListRmCmd) Aliases() []string { return nil }
func (c *ListRmCmd) Synopsis() string  { return "Remove tasks from a tasklist" }
func (c *ListRmCmd) Usage() string     { return "tasksync listrm <tasklist-id> <task-id...>" }
func (c *ListRmCmd) NeedsAuth() bool   { return true }

func (c *ListRmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListRmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runMembership(ctx, cfg, svc, args, svc.RemoveTaskFromTasklist, out, errOut)
}

// runMembership is the shared implementation for listadd and listrm.
func runMembership(ctx context.Context, cfg *config.Config, svc service.Service, args []string, op func(ctx context.Context, tasklistID, taskID string) error, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: tasklist id and task id required")
		return exitcode.UserError
	}
	tasklistID := args[0]

	outcomes, summary := batch.Run(ctx, args[1:], func(ctx context.Context, taskID string) (struct{}, error) {
		return struct{}{}, op(ctx, tasklistID, taskID)
	}, batch.Options{})

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errOut, "error: %s: %v\n", o.Input, o.Err)
		} else if !cfg.Quiet {
			fmt.Fprintf(out, "ok %s\n", o.Input)
		}
	}
	if summary.Failed > 0 {
		return exitcode.BackendError
	}
	return exitcode.Success
}
