package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&CreateListCmd{})
}

// CreateListCmd creates a tasklist.
type CreateListCmd struct {
	description string
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return nil }
func (c *CreateListCmd) Synopsis() string  { return "Create a tasklist" }
func (c *CreateListCmd) Usage() string {
	return "tasksync createlist [--description <text>] <name...>"
}
func (c *CreateListCmd) NeedsAuth() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: name required")
		return exitcode.UserError
	}

	list, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (service.Tasklist, error) {
		return svc.CreateTasklist(ctx, name, c.description)
	})
	if err != nil {
		return fail(errOut, err)
	}

	if cfg.Quiet {
		fmt.Fprintln(out, list.ID)
	} else {
		fmt.Fprintf(out, "created %s\n", list.ID)
	}
	return exitcode.Success
}
