package commands

import (
	"context"
	"strings"
	"time"

	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// defaultPageSize is the listing page size commands request.
const defaultPageSize = 100

// resolveAssignee turns a user argument into a user id, looking up email
// addresses through the service. Plain ids pass through opaque.
func resolveAssignee(ctx context.Context, svc service.Service, arg string) (string, error) {
	if !strings.Contains(arg, "@") {
		return arg, nil
	}
	return svc.LookupUserByEmail(ctx, arg)
}

// parseDue accepts an RFC 3339 timestamp or a bare date (end of day).
func parseDue(arg string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, arg); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", arg, time.Local); err == nil {
		return d.Add(24*time.Hour - time.Second), nil
	}
	return time.Time{}, taskerr.New(taskerr.KindInvalidParameter, "bad due time: "+arg+" (want RFC 3339 or YYYY-MM-DD)")
}

// parseStatuses parses a comma-separated status list.
func parseStatuses(arg string) ([]service.Status, error) {
	if arg == "" {
		return nil, nil
	}
	var statuses []service.Status
	for _, part := range strings.Split(arg, ",") {
		switch s := service.Status(strings.TrimSpace(part)); s {
		case service.StatusTodo, service.StatusInProgress, service.StatusCompleted:
			statuses = append(statuses, s)
		default:
			return nil, taskerr.New(taskerr.KindInvalidParameter, "bad status: "+part)
		}
	}
	return statuses, nil
}

// splitIDs parses a comma-separated id list, trimming blanks.
func splitIDs(arg string) []string {
	var ids []string
	for _, part := range strings.Split(arg, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
