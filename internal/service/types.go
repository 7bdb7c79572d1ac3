// Package service defines the backend-agnostic types and interface for
// remote task operations.
package service

import "time"

// Status is a task lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Open reports whether the status counts as open for workload purposes.
func (s Status) Open() bool { return s != StatusCompleted }

// OpenStatuses returns the statuses considered open, in canonical order.
func OpenStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress}
}

// CustomField is one name/value/type triple attached to a task.
// Order is significant and preserved as returned by the service.
type CustomField struct {
	Name  string
	Value string
	Type  string
}

// Task represents a single task. Identifiers are opaque strings
// (documented prefix "task_", user ids "ou_") and are never parsed.
type Task struct {
	ID          string
	Summary     string
	Description string
	Status      Status

	// Assignee is a user id, empty when unassigned.
	Assignee  string
	Followers []string

	Due         *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	// ParentID links to the parent task. The service does not guarantee
	// the relation is acyclic; traversals must guard against revisits.
	ParentID string

	CustomFields []CustomField
	URL          string
}

// Overdue reports whether the task is open with a due time in the past.
func (t Task) Overdue(now time.Time) bool {
	return t.Due != nil && t.Due.Before(now) && t.Status.Open()
}

// Tasklist is a named collection of tasks. Membership is many-to-many;
// deleting a tasklist does not delete its member tasks.
type Tasklist struct {
	ID          string
	Name        string
	Description string
	Owner       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment belongs to exactly one task. Deleting the task invalidates its
// comments.
type Comment struct {
	ID        string
	Content   string
	Creator   string
	CreatedAt time.Time
}

// Page is one page of a cursor-based listing. NextToken is opaque and
// only valid against the same query parameters that produced it.
type Page[T any] struct {
	Items     []T
	NextToken string
	HasMore   bool
}

// NewTask carries the fields for task creation. Zero-valued optional
// fields are omitted from the request.
type NewTask struct {
	Summary      string
	Description  string
	Assignee     string
	Due          *time.Time
	Followers    []string
	ParentID     string
	CustomFields []CustomField
}

// TaskFilter narrows a task listing. Cursor tokens returned for one
// filter must not be reused with a different one.
type TaskFilter struct {
	CreatedByMe  bool
	AssignedToMe bool
	Statuses     []Status
	Assignee     string
	DueBefore    *time.Time
	DueAfter     *time.Time
}

// TaskPatch is a partial task update. Only fields with a non-nil pointer
// or an explicit clear flag are transmitted; everything else is left
// untouched server-side. A nil pointer never means "clear".
type TaskPatch struct {
	Summary     *string
	Description *string
	Status      *Status

	Assignee      *string
	ClearAssignee bool

	Due      *time.Time
	ClearDue bool

	Followers *[]string
}

// Empty reports whether the patch sets no fields.
func (p TaskPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the names of the fields the patch sets, in wire order.
func (p TaskPatch) Fields() []string {
	var fields []string
	if p.Summary != nil {
		fields = append(fields, "summary")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Assignee != nil || p.ClearAssignee {
		fields = append(fields, "assignee")
	}
	if p.Due != nil || p.ClearDue {
		fields = append(fields, "due_time")
	}
	if p.Followers != nil {
		fields = append(fields, "followers")
	}
	return fields
}

// TasklistPatch is a partial tasklist update with the same presence
// semantics as TaskPatch.
type TasklistPatch struct {
	Name        *string
	Description *string
}

// Fields returns the names of the fields the patch sets.
func (p TasklistPatch) Fields() []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	return fields
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T { return &v }
