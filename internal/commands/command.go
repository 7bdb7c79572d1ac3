// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires app credentials.
	// help and version return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided; svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// fail prints err classified and returns the matching exit code.
func fail(errOut io.Writer, err error) int {
	switch taskerr.KindOf(err) {
	case taskerr.KindNotFound:
		fmt.Fprintf(errOut, "error: not found: %v\n", err)
		return exitcode.UserError
	case taskerr.KindInvalidParameter:
		fmt.Fprintf(errOut, "error: invalid input: %v\n", err)
		return exitcode.UserError
	case taskerr.KindPermissionDenied:
		fmt.Fprintf(errOut, "error: permission denied: %v\n", err)
		return exitcode.AuthError
	case taskerr.KindCancelled:
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	case taskerr.KindRetryBudgetExceeded, taskerr.KindRateLimited:
		fmt.Fprintf(errOut, "error: service busy, try again later: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
