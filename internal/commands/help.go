package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasksync help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasksync list [--assigned-to-me] [--created-by-me] [--status <s,...>] [--assignee <user>] [--due-in <days>] [--tasklist <id>]
  tasksync add [--assignee <user> | --balance <user,...>] [--due <time>] [--tasklist <id>] <title...>
  tasksync done <task-id...>
  tasksync rm <task-id...>
  tasksync assign [--balance] <task-id> <user> [<user>...]
  tasksync bulk (import|export|assign|status|due|delete) ...
  tasksync report [--tasklist <id>] [--assignee <user>]
  tasksync subtasks <task-id>
  tasksync comment (add|list|rm) <task-id> ...
  tasksync lists
  tasksync createlist <name...>
  tasksync rmlist <tasklist-id>
  tasksync listadd <tasklist-id> <task-id...>
  tasksync listrm <tasklist-id> <task-id...>
  tasksync help
  tasksync version

Common flags:
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Users may be given as opaque ids (ou_...) or email addresses.
Credentials come from TASKSYNC_APP_ID / TASKSYNC_APP_SECRET (or a .env file).
`
