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
	Register(&DoneCmd{})
}

// DoneCmd marks one or more tasks completed.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string     { return "tasksync done <task-id...>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}

	outcomes, summary := bulk.UpdateStatus(ctx, svc, args, service.StatusCompleted, batch.Options{})
	return reportOutcomes(cfg, outcomes, summary, out, errOut)
}

// reportOutcomes prints per-task results and maps the summary to an
// exit code: any failure is a backend error, full success is ok.
func reportOutcomes(cfg *config.Config, outcomes []batch.Outcome[string, service.Task], summary batch.Summary, out, errOut io.Writer) int {
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
