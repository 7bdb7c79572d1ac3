package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/batch"
	"tasksync/internal/bulk"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd deletes one or more tasks. A task already gone counts as
// deleted.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete tasks" }
func (c *RmCmd) Usage() string     { return "tasksync rm <task-id...>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}

	outcomes, summary := bulk.Delete(ctx, svc, args, batch.Options{})
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errOut, "error: %s: %v\n", o.Input, o.Err)
			continue
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "ok %s\n", o.Input)
		}
	}
	if summary.Failed > 0 {
		return exitcode.BackendError
	}
	return exitcode.Success
}
