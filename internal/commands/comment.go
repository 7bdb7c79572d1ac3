package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
)

func init() {
	Register(&CommentCmd{})
}

// CommentCmd adds, lists, or removes comments on a task.
type CommentCmd struct{}

func (c *CommentCmd) Name() string      { return "comment" }
func (c *CommentCmd) Aliases() []string { return nil }
func (c *CommentCmd) Synopsis() string  { return "Manage task comments" }
func (c *CommentCmd) Usage() string {
	return `tasksync comment add <task-id> <text...>
  tasksync comment list <task-id>
  tasksync comment rm <task-id> <comment-id>`
}
func (c *CommentCmd) NeedsAuth() bool { return true }

func (c *CommentCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CommentCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: usage: comment (add|list|rm) <task-id> ...")
		return exitcode.UserError
	}
	action, taskID := args[0], args[1]

	switch action {
	case "add":
		text := strings.TrimSpace(strings.Join(args[2:], " "))
		if text == "" {
			fmt.Fprintln(errOut, "error: comment text required")
			return exitcode.UserError
		}
		comment, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (service.Comment, error) {
			return svc.CreateComment(ctx, taskID, text)
		})
		if err != nil {
			return fail(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "commented %s\n", comment.ID)
		}
		return exitcode.Success

	case "list":
		num := 0
		// A deleted task fails NotFound here; that is terminal, the
		// comments are gone with the task.
		for comment, err := range paginate.All(ctx, retry.Config{}, func(ctx context.Context, token string) (service.Page[service.Comment], error) {
			return svc.ListComments(ctx, taskID, defaultPageSize, token)
		}) {
			if err != nil {
				return fail(errOut, err)
			}
			num++
			output.FormatComment(out, num, comment)
		}
		if num == 0 && !cfg.Quiet {
			fmt.Fprintln(out, "no comments")
		}
		return exitcode.Success

	case "rm":
		if len(args) != 3 {
			fmt.Fprintln(errOut, "error: comment id required")
			return exitcode.UserError
		}
		_, err := retry.Do(ctx, retry.Config{}, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, svc.DeleteComment(ctx, taskID, args[2])
		})
		if err != nil {
			return fail(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success

	default:
		fmt.Fprintf(errOut, "error: unknown comment action: %s\n", action)
		return exitcode.UserError
	}
}
