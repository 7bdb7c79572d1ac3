// Package service defines the backend-agnostic types and interface for
// remote task operations.
package service

import "context"

// Service is the interface to the remote task service. All network calls
// go through this interface; higher layers (paginator, batch executor,
// workload balancer, commands) never build requests themselves.
//
// Every method performs exactly one attempt. Errors are classified
// (internal/taskerr); retry policy is layered on top by callers.
type Service interface {
	// CreateTask creates a task. The service assigns the identifier.
	CreateTask(ctx context.Context, t NewTask) (Task, error)

	// GetTask fetches a task by id. Fails NotFound if absent.
	GetTask(ctx context.Context, taskID string) (Task, error)

	// UpdateTask applies a partial update. Only fields the patch sets
	// are transmitted; a second fetch sees all other fields unchanged.
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task. A repeated delete fails NotFound, which
	// idempotent cleanup flows may treat as success.
	DeleteTask(ctx context.Context, taskID string) error

	// ListTasks returns one page of tasks matching the filter.
	// pageToken "" means start; the token is only valid for this filter.
	ListTasks(ctx context.Context, filter TaskFilter, pageSize int, pageToken string) (Page[Task], error)

	// ListSubtasks returns one page of the direct subtasks of a task.
	ListSubtasks(ctx context.Context, taskID string, pageSize int, pageToken string) (Page[Task], error)

	CreateTasklist(ctx context.Context, name, description string) (Tasklist, error)
	GetTasklist(ctx context.Context, tasklistID string) (Tasklist, error)
	UpdateTasklist(ctx context.Context, tasklistID string, patch TasklistPatch) (Tasklist, error)
	DeleteTasklist(ctx context.Context, tasklistID string) error
	ListTasklists(ctx context.Context, pageSize int, pageToken string) (Page[Tasklist], error)

	// AddTaskToTasklist and RemoveTaskFromTasklist maintain the
	// many-to-many membership relation.
	AddTaskToTasklist(ctx context.Context, tasklistID, taskID string) error
	RemoveTaskFromTasklist(ctx context.Context, tasklistID, taskID string) error
	ListTasksInTasklist(ctx context.Context, tasklistID string, pageSize int, pageToken string) (Page[Task], error)

	// CreateComment adds a comment to a task. Fetching comments of a
	// deleted task fails NotFound, which is terminal.
	CreateComment(ctx context.Context, taskID, content string) (Comment, error)
	ListComments(ctx context.Context, taskID string, pageSize int, pageToken string) (Page[Comment], error)
	DeleteComment(ctx context.Context, taskID, commentID string) error

	// LookupUserByEmail resolves an email address to an opaque user id.
	LookupUserByEmail(ctx context.Context, email string) (string, error)
}
