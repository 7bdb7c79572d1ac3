package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd deletes a tasklist. Member tasks are untouched; only the
// membership relation goes away.
type RmListCmd struct{}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a tasklist" }
func (c *RmListCmd) Usage() string     { return "tasksync rmlist <tasklist-id>" }
func (c *RmListCmd) NeedsAuth() bool   { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: tasklist id required")
		return exitcode.UserError
	}

	_, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, svc.DeleteTasklist(ctx, args[0])
	})
	if err != nil && !taskerr.IsNotFound(err) {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
