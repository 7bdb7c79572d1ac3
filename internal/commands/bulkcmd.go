package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"tasksync/internal/batch"
	"tasksync/internal/bulk"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&BulkCmd{})
}

// BulkCmd runs mass operations: import, export, assign, status, due,
// delete. The first positional argument selects the action.
type BulkCmd struct {
	csvPath    string
	jsonPath   string
	outPath    string
	tasklistID string
	assignee   string
	status     string
	due        string
	workers    int
	minSuccess float64
}

func (c *BulkCmd) Name() string      { return "bulk" }
func (c *BulkCmd) Aliases() []string { return nil }
func (c *BulkCmd) Synopsis() string  { return "Bulk task operations" }
func (c *BulkCmd) Usage() string {
	return `tasksync bulk import (--csv <file> | --json <file>) [--tasklist <id>] [--assignee <user>]
  tasksync bulk export --out <file> [--assignee <user>] [--status <s,...>]
  tasksync bulk assign --to <user> <task-id...>
  tasksync bulk status --set <status> <task-id...>
  tasksync bulk due --at <time> <task-id...>
  tasksync bulk delete <task-id...>`
}
func (c *BulkCmd) NeedsAuth() bool { return true }

func (c *BulkCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.csvPath, "csv", "", "")
	fs.StringVar(&c.jsonPath, "json", "", "")
	fs.StringVar(&c.outPath, "out", "", "")
	fs.StringVar(&c.tasklistID, "tasklist", "", "")
	fs.StringVar(&c.assignee, "assignee", "", "")
	fs.StringVar(&c.assignee, "to", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "set", "", "")
	fs.StringVar(&c.due, "at", "", "")
	fs.IntVar(&c.workers, "workers", 0, "")
	fs.Float64Var(&c.minSuccess, "min-success", 0.9, "")
}

func (c *BulkCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: bulk action required (import, export, assign, status, due, delete)")
		return exitcode.UserError
	}
	action, rest := args[0], args[1:]
	opts := batch.Options{Concurrency: c.workers}

	switch action {
	case "import":
		return c.runImport(ctx, cfg, svc, opts, out, errOut)
	case "export":
		return c.runExport(ctx, svc, out, errOut)
	case "assign":
		if c.assignee == "" {
			fmt.Fprintln(errOut, "error: --to <user> required")
			return exitcode.UserError
		}
		if len(rest) == 0 {
			fmt.Fprintln(errOut, "error: task id required")
			return exitcode.UserError
		}
		assignee, err := resolveAssignee(ctx, svc, c.assignee)
		if err != nil {
			return fail(errOut, err)
		}
		outcomes, summary := bulk.Assign(ctx, svc, rest, assignee, opts)
		printTaskOutcomes(cfg, outcomes, out, errOut)
		return c.finish(cfg, len(outcomes), summary, out, errOut)
	case "status":
		statuses, err := parseStatuses(c.status)
		if err != nil || len(statuses) != 1 {
			fmt.Fprintln(errOut, "error: --set <todo|in_progress|completed> required")
			return exitcode.UserError
		}
		if len(rest) == 0 {
			fmt.Fprintln(errOut, "error: task id required")
			return exitcode.UserError
		}
		outcomes, summary := bulk.UpdateStatus(ctx, svc, rest, statuses[0], opts)
		printTaskOutcomes(cfg, outcomes, out, errOut)
		return c.finish(cfg, len(outcomes), summary, out, errOut)
	case "due":
		if c.due == "" {
			fmt.Fprintln(errOut, "error: --at <time> required")
			return exitcode.UserError
		}
		due, err := parseDue(c.due)
		if err != nil {
			return fail(errOut, err)
		}
		if len(rest) == 0 {
			fmt.Fprintln(errOut, "error: task id required")
			return exitcode.UserError
		}
		outcomes, summary := bulk.SetDue(ctx, svc, rest, due, opts)
		printTaskOutcomes(cfg, outcomes, out, errOut)
		return c.finish(cfg, len(outcomes), summary, out, errOut)
	case "delete":
		if len(rest) == 0 {
			fmt.Fprintln(errOut, "error: task id required")
			return exitcode.UserError
		}
		outcomes, summary := bulk.Delete(ctx, svc, rest, opts)
		for _, o := range outcomes {
			if o.Err != nil {
				fmt.Fprintf(errOut, "error: %s: %v\n", o.Input, o.Err)
			} else if !cfg.Quiet {
				fmt.Fprintf(out, "ok %s\n", o.Input)
			}
		}
		return c.finish(cfg, len(outcomes), summary, out, errOut)
	default:
		fmt.Fprintf(errOut, "error: unknown bulk action: %s\n", action)
		return exitcode.UserError
	}
}

func (c *BulkCmd) runImport(ctx context.Context, cfg *config.Config, svc service.Service, opts batch.Options, out, errOut io.Writer) int {
	var rows []bulk.ImportRow
	switch {
	case c.csvPath != "" && c.jsonPath != "":
		fmt.Fprintln(errOut, "error: --csv and --json are mutually exclusive")
		return exitcode.UserError
	case c.csvPath != "":
		f, err := os.Open(c.csvPath)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		defer f.Close()
		rows, err = bulk.ReadCSV(f)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	case c.jsonPath != "":
		f, err := os.Open(c.jsonPath)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		defer f.Close()
		rows, err = bulk.ReadJSON(f)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	default:
		fmt.Fprintln(errOut, "error: --csv or --json required")
		return exitcode.UserError
	}

	assignee := c.assignee
	if assignee != "" {
		var err error
		assignee, err = resolveAssignee(ctx, svc, assignee)
		if err != nil {
			return fail(errOut, err)
		}
	}

	outcomes, summary := bulk.Import(ctx, svc, rows, c.tasklistID, assignee, opts)
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errOut, "error: %q: %v\n", o.Input.Title, o.Err)
			continue
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "created %s  %s\n", o.Value.ID, o.Value.Summary)
		}
	}
	return c.finish(cfg, len(outcomes), summary, out, errOut)
}

func (c *BulkCmd) runExport(ctx context.Context, svc service.Service, out, errOut io.Writer) int {
	if c.outPath == "" {
		fmt.Fprintln(errOut, "error: --out <file> required")
		return exitcode.UserError
	}
	statuses, err := parseStatuses(c.status)
	if err != nil {
		return fail(errOut, err)
	}
	assignee := c.assignee
	if assignee != "" {
		assignee, err = resolveAssignee(ctx, svc, assignee)
		if err != nil {
			return fail(errOut, err)
		}
	}

	f, err := os.Create(c.outPath)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	defer f.Close()

	filter := service.TaskFilter{Statuses: statuses, Assignee: assignee}
	n, err := bulk.ExportCSV(ctx, svc, f, filter, defaultPageSize, retry.Config{})
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "exported %d tasks to %s\n", n, c.outPath)
	return exitcode.Success
}

func printTaskOutcomes(cfg *config.Config, outcomes []batch.Outcome[string, service.Task], out, errOut io.Writer) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errOut, "error: %s: %v\n", o.Input, o.Err)
		} else if !cfg.Quiet {
			fmt.Fprintf(out, "ok %s\n", o.Input)
		}
	}
}

// finish prints the summary and applies the acceptance threshold.
func (c *BulkCmd) finish(cfg *config.Config, total int, summary batch.Summary, out, errOut io.Writer) int {
	if !cfg.Quiet {
		output.FormatSummary(out, summary)
	}
	if total > 0 && summary.SuccessRate() < c.minSuccess {
		fmt.Fprintf(errOut, "error: success rate %.0f%% below threshold %.0f%%\n",
			summary.SuccessRate()*100, c.minSuccess*100)
		return exitcode.BackendError
	}
	return exitcode.Success
}
