package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tasksync/internal/batch"
	"tasksync/internal/report"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
	"tasksync/internal/testutil"
)

func TestFormatTaskGolden(t *testing.T) {
	due := time.Date(2026, 9, 1, 23, 59, 59, 0, time.UTC)
	var buf bytes.Buffer
	FormatTask(&buf, 1, service.Task{
		ID: "task_1", Summary: "Fix login", Status: service.StatusTodo,
		Assignee: "ou_a", Due: &due,
	})
	FormatTask(&buf, 2, service.Task{ID: "task_2", Summary: "", Status: service.StatusInProgress})
	FormatTask(&buf, 3, service.Task{ID: "task_3", Summary: "Write\ndocs", Status: service.StatusCompleted})

	testutil.GoldenString(t, "task_list.golden", buf.String())
}

func TestFormatSummaryGolden(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(&buf, batch.Summary{
		Total: 5, Succeeded: 3, Failed: 2,
		ByKind: map[taskerr.Kind]int{
			taskerr.KindTransport: 1,
			taskerr.KindNotFound:  1,
		},
	})
	testutil.GoldenString(t, "summary.golden", buf.String())
}

func TestFormatReportGolden(t *testing.T) {
	var buf bytes.Buffer
	FormatReport(&buf, report.Report{
		Total: 5,
		ByStatus: map[service.Status]int{
			service.StatusTodo:       3,
			service.StatusInProgress: 1,
			service.StatusCompleted:  1,
		},
		ByAssignee: map[string]int{"ou_b": 2, "ou_a": 2},
		Unassigned: 1,
		Overdue:    1,
		DueSoon:    1,
	})
	testutil.GoldenString(t, "report.golden", buf.String())
}

func TestFormatTaskIndented(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskIndented(&buf, 0, service.Task{ID: "task_a", Summary: "Parent", Status: service.StatusTodo})
	FormatTaskIndented(&buf, 2, service.Task{ID: "task_b", Summary: "Deep child", Status: service.StatusCompleted})
	assert.Equal(t,
		"- Parent  [todo]  (task_a)\n"+
			"        - Deep child  [completed]  (task_b)\n",
		buf.String())
}

func TestFormatTasklist(t *testing.T) {
	var buf bytes.Buffer
	FormatTasklist(&buf, service.Tasklist{ID: "tasklist_1", Name: "Sprint 12"})
	FormatTasklist(&buf, service.Tasklist{ID: "tasklist_2", Name: "  "})
	assert.Equal(t, "Sprint 12  (tasklist_1)\n(untitled)  (tasklist_2)\n", buf.String())
}

func TestFormatComment(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	FormatComment(&buf, 1, service.Comment{
		ID: "comment_1", Content: "Looks good", Creator: "ou_a", CreatedAt: created,
	})
	assert.Equal(t, "   1  Looks good  by ou_a  2026-08-01T09:30:00Z  (comment_1)\n", buf.String())
}
