package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/report"
	"tasksync/internal/service"
)

func init() {
	Register(&ReportCmd{})
}

// ReportCmd prints task statistics: totals by status and assignee,
// overdue and due-soon counts.
type ReportCmd struct {
	tasklistID  string
	dueSoonDays int
	assignee    string
}

func (c *ReportCmd) Name() string      { return "report" }
func (c *ReportCmd) Aliases() []string { return nil }
func (c *ReportCmd) Synopsis() string  { return "Print task statistics" }
func (c *ReportCmd) Usage() string {
	return "tasksync report [--tasklist <id>] [--assignee <user>] [--due-soon-days <n>]"
}
func (c *ReportCmd) NeedsAuth() bool { return true }

func (c *ReportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.tasklistID, "tasklist", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.IntVar(&c.dueSoonDays, "due-soon-days", 3, "")
}

func (c *ReportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	opts := report.Options{
		TasklistID:    c.tasklistID,
		DueSoonWindow: time.Duration(c.dueSoonDays) * 24 * time.Hour,
	}
	if c.assignee != "" {
		assignee, err := resolveAssignee(ctx, svc, c.assignee)
		if err != nil {
			return fail(errOut, err)
		}
		opts.Filter.Assignee = assignee
	}

	r, err := report.Build(ctx, svc, opts)
	if err != nil {
		return fail(errOut, err)
	}
	output.FormatReport(out, r)
	return exitcode.Success
}
