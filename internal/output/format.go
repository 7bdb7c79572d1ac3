// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"tasksync/internal/batch"
	"tasksync/internal/report"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// Separator is the separator line for sections.
const Separator = "------------"

// FormatTask formats one task line.
// Format: "{N:>4}  [{STATUS:<11}]  {SUMMARY}" plus assignee/due markers.
func FormatTask(w io.Writer, num int, t service.Task) {
	line := fmt.Sprintf("%4d  [%-11s]  %s", num, t.Status, normalizeTitle(t.Summary))
	if t.Assignee != "" {
		line += "  @" + t.Assignee
	}
	if t.Due != nil {
		line += "  due " + t.Due.Format("2006-01-02")
	}
	fmt.Fprintf(w, "%s  (%s)\n", line, t.ID)
}

// FormatTaskIndented formats a task line at the given tree depth.
func FormatTaskIndented(w io.Writer, depth int, t service.Task) {
	indent := strings.Repeat("    ", depth)
	fmt.Fprintf(w, "%s- %s  [%s]  (%s)\n", indent, normalizeTitle(t.Summary), t.Status, t.ID)
}

// FormatTasklist formats one tasklist line.
func FormatTasklist(w io.Writer, l service.Tasklist) {
	name := l.Name
	if strings.TrimSpace(name) == "" {
		name = "(untitled)"
	}
	fmt.Fprintf(w, "%s  (%s)\n", name, l.ID)
}

// FormatComment formats one comment line.
func FormatComment(w io.Writer, num int, c service.Comment) {
	when := ""
	if !c.CreatedAt.IsZero() {
		when = "  " + c.CreatedAt.Format(time.RFC3339)
	}
	fmt.Fprintf(w, "%4d  %s  by %s%s  (%s)\n", num, normalizeTitle(c.Content), c.Creator, when, c.ID)
}

// FormatSummary formats a batch summary block.
func FormatSummary(w io.Writer, s batch.Summary) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "total %d, ok %d, failed %d\n", s.Total, s.Succeeded, s.Failed)
	for _, kind := range sortedKinds(s.ByKind) {
		fmt.Fprintf(w, "  %s: %d\n", kind, s.ByKind[kind])
	}
}

// FormatReport formats a report block.
func FormatReport(w io.Writer, r report.Report) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "tasks: %d\n", r.Total)
	for _, s := range []service.Status{service.StatusTodo, service.StatusInProgress, service.StatusCompleted} {
		if n := r.ByStatus[s]; n > 0 {
			fmt.Fprintf(w, "  %-11s %d\n", s, n)
		}
	}
	fmt.Fprintf(w, "overdue: %d\n", r.Overdue)
	fmt.Fprintf(w, "due soon: %d\n", r.DueSoon)
	if r.Unassigned > 0 {
		fmt.Fprintf(w, "unassigned: %d\n", r.Unassigned)
	}
	assignees := make([]string, 0, len(r.ByAssignee))
	for a := range r.ByAssignee {
		assignees = append(assignees, a)
	}
	sort.Strings(assignees)
	for _, a := range assignees {
		fmt.Fprintf(w, "  @%-14s %d\n", a, r.ByAssignee[a])
	}
	fmt.Fprintln(w, Separator)
}

func sortedKinds(m map[taskerr.Kind]int) []taskerr.Kind {
	kinds := make([]taskerr.Kind, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// normalizeTitle normalizes text for single-line display.
// Empty or whitespace-only text becomes "(untitled)".
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
