// Package bulk provides CSV/JSON task import, CSV export, and mass
// mutations, all running through the batch executor.
package bulk

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"tasksync/internal/batch"
	"tasksync/internal/paginate"
	"tasksync/internal/retry"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// ImportRow is one task to create, as read from CSV or JSON input.
type ImportRow struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	// DueTime is RFC 3339; JSON input may also supply a bare date,
	// which is taken as end of that day in the service's home offset.
	DueTime string `json:"due_time,omitempty"`
}

// csvColumns is the expected header of CSV imports.
var csvColumns = []string{"title", "description", "assignee", "due_date"}

// ReadCSV parses import rows from CSV with a header line. Columns:
// title, description, assignee, due_date (bare date).
func ReadCSV(r io.Reader) ([]ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["title"]; !ok {
		return nil, fmt.Errorf("csv header missing %q column (expected %s)", "title", strings.Join(csvColumns, ","))
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []ImportRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read csv row: %w", err)
		}
		row := ImportRow{
			Title:       field(rec, "title"),
			Description: field(rec, "description"),
			Assignee:    field(rec, "assignee"),
		}
		if d := field(rec, "due_date"); d != "" {
			row.DueTime = endOfDay(d)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadJSON parses import rows from a JSON array.
func ReadJSON(r io.Reader) ([]ImportRow, error) {
	var rows []ImportRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json import: %w", err)
	}
	return rows, nil
}

// endOfDay expands a bare date to 23:59:59 in the service's home
// offset, matching what due_date columns have always meant here.
func endOfDay(date string) string {
	return date + "T23:59:59+08:00"
}

// dueFrom parses the row's due time, accepting RFC 3339 or a bare date.
func dueFrom(row ImportRow) (*time.Time, error) {
	if row.DueTime == "" {
		return nil, nil
	}
	s := row.DueTime
	if len(s) == len("2006-01-02") {
		s = endOfDay(s)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, taskerr.New(taskerr.KindInvalidParameter, fmt.Sprintf("bad due time %q", row.DueTime))
	}
	return &t, nil
}

// Import creates one task per row. When tasklistID is set, each created
// task is also added to that tasklist; when defaultAssignee is set, rows
// without an assignee get it.
func Import(ctx context.Context, svc service.Service, rows []ImportRow, tasklistID, defaultAssignee string, opts batch.Options) ([]batch.Outcome[ImportRow, service.Task], batch.Summary) {
	return batch.Run(ctx, rows, func(ctx context.Context, row ImportRow) (service.Task, error) {
		if strings.TrimSpace(row.Title) == "" {
			return service.Task{}, taskerr.New(taskerr.KindInvalidParameter, "title required")
		}
		due, err := dueFrom(row)
		if err != nil {
			return service.Task{}, err
		}
		assignee := row.Assignee
		if assignee == "" {
			assignee = defaultAssignee
		}
		task, err := svc.CreateTask(ctx, service.NewTask{
			Summary:     row.Title,
			Description: row.Description,
			Assignee:    assignee,
			Due:         due,
		})
		if err != nil {
			return service.Task{}, err
		}
		if tasklistID != "" {
			if err := svc.AddTaskToTasklist(ctx, tasklistID, task.ID); err != nil {
				return task, err
			}
		}
		return task, nil
	}, opts)
}

// Assign sets the assignee on every task id.
func Assign(ctx context.Context, svc service.Service, taskIDs []string, assignee string, opts batch.Options) ([]batch.Outcome[string, service.Task], batch.Summary) {
	patch := service.TaskPatch{Assignee: service.Ptr(assignee)}
	return update(ctx, svc, taskIDs, patch, opts)
}

// UpdateStatus sets the status on every task id.
func UpdateStatus(ctx context.Context, svc service.Service, taskIDs []string, status service.Status, opts batch.Options) ([]batch.Outcome[string, service.Task], batch.Summary) {
	patch := service.TaskPatch{Status: service.Ptr(status)}
	return update(ctx, svc, taskIDs, patch, opts)
}

// SetDue sets the due time on every task id.
func SetDue(ctx context.Context, svc service.Service, taskIDs []string, due time.Time, opts batch.Options) ([]batch.Outcome[string, service.Task], batch.Summary) {
	patch := service.TaskPatch{Due: service.Ptr(due)}
	return update(ctx, svc, taskIDs, patch, opts)
}

func update(ctx context.Context, svc service.Service, taskIDs []string, patch service.TaskPatch, opts batch.Options) ([]batch.Outcome[string, service.Task], batch.Summary) {
	return batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (service.Task, error) {
		return svc.UpdateTask(ctx, id, patch)
	}, opts)
}

// Delete removes every task id. This is a cleanup flow, so a NotFound
// response counts as success: the task is gone either way.
func Delete(ctx context.Context, svc service.Service, taskIDs []string, opts batch.Options) ([]batch.Outcome[string, struct{}], batch.Summary) {
	return batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (struct{}, error) {
		err := svc.DeleteTask(ctx, id)
		if err != nil && !taskerr.IsNotFound(err) {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, opts)
}

// ExportCSV writes every task matching the filter as CSV, returning the
// row count. Export drains the listing through the paginator, so a
// terminal error may leave a partial file behind.
func ExportCSV(ctx context.Context, svc service.Service, w io.Writer, filter service.TaskFilter, pageSize int, cfg retry.Config) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"task_id", "title", "status", "assignee", "due_time", "created_at"}); err != nil {
		return 0, err
	}

	n := 0
	err := paginate.Each(ctx, cfg, func(ctx context.Context, token string) (service.Page[service.Task], error) {
		return svc.ListTasks(ctx, filter, pageSize, token)
	}, func(t service.Task) error {
		due := ""
		if t.Due != nil {
			due = t.Due.Format(time.RFC3339)
		}
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format(time.RFC3339)
		}
		if err := cw.Write([]string{t.ID, t.Summary, string(t.Status), t.Assignee, due, created}); err != nil {
			return err
		}
		n++
		return nil
	})
	cw.Flush()
	if err != nil {
		return n, err
	}
	return n, cw.Error()
}
