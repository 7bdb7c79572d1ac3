package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd prints all tasklists.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "List tasklists" }
func (c *ListsCmd) Usage() string     { return "tasksync lists" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	n := 0
	for list, err := range paginate.All(ctx, retry.Config{}, func(ctx context.Context, token string) (service.Page[service.Tasklist], error) {
		return svc.ListTasklists(ctx, defaultPageSize, token)
	}) {
		if err != nil {
			return fail(errOut, err)
		}
		n++
		output.FormatTasklist(out, list)
	}
	if n == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasklists")
	}
	return exitcode.Success
}
