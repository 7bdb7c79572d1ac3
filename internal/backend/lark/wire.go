package lark

import (
	"time"

	"tasksync/internal/service"
)

type wireCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// wireTask is the task shape on the wire. All timestamps are RFC 3339
// strings with timezone offset.
type wireTask struct {
	TaskID       string            `json:"task_id,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Description  string            `json:"description,omitempty"`
	Status       string            `json:"status,omitempty"`
	Assignee     string            `json:"assignee,omitempty"`
	Followers    []string          `json:"followers,omitempty"`
	DueTime      string            `json:"due_time,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
	CompletedAt  string            `json:"completed_at,omitempty"`
	ParentTaskID string            `json:"parent_task_id,omitempty"`
	CustomFields []wireCustomField `json:"custom_fields,omitempty"`
	URL          string            `json:"url,omitempty"`
}

type wireTasklist struct {
	TasklistID  string `json:"tasklist_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type wireComment struct {
	CommentID string `json:"comment_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Creator   string `json:"creator,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type wirePage[T any] struct {
	Items     []T    `json:"items"`
	PageToken string `json:"page_token"`
	HasMore   bool   `json:"has_more"`
}

// parseTime decodes an RFC 3339 timestamp, returning the zero time for
// empty or malformed values. Timestamps are display data here; a bad one
// must not fail the whole response.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func taskFromWire(w wireTask) service.Task {
	t := service.Task{
		ID:          w.TaskID,
		Summary:     w.Summary,
		Description: w.Description,
		Status:      service.Status(w.Status),
		Assignee:    w.Assignee,
		Followers:   w.Followers,
		Due:         parseTimePtr(w.DueTime),
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
		CompletedAt: parseTimePtr(w.CompletedAt),
		ParentID:    w.ParentTaskID,
		URL:         w.URL,
	}
	for _, f := range w.CustomFields {
		t.CustomFields = append(t.CustomFields, service.CustomField(f))
	}
	return t
}

func tasksFromWire(ws []wireTask) []service.Task {
	tasks := make([]service.Task, 0, len(ws))
	for _, w := range ws {
		tasks = append(tasks, taskFromWire(w))
	}
	return tasks
}

func newTaskToWire(t service.NewTask) wireTask {
	w := wireTask{
		Summary:      t.Summary,
		Description:  t.Description,
		Assignee:     t.Assignee,
		Followers:    t.Followers,
		ParentTaskID: t.ParentID,
	}
	if t.Due != nil {
		w.DueTime = formatTime(*t.Due)
	}
	for _, f := range t.CustomFields {
		w.CustomFields = append(w.CustomFields, wireCustomField(f))
	}
	return w
}

// patchToWire renders only the fields the patch sets. The accompanying
// update_fields list (service.TaskPatch.Fields) tells the service which
// of them to touch, so cleared fields may ride along as zero values.
func patchToWire(p service.TaskPatch) wireTask {
	var w wireTask
	if p.Summary != nil {
		w.Summary = *p.Summary
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.Status != nil {
		w.Status = string(*p.Status)
	}
	if p.Assignee != nil {
		w.Assignee = *p.Assignee
	}
	if p.Due != nil {
		w.DueTime = formatTime(*p.Due)
	}
	if p.Followers != nil {
		w.Followers = *p.Followers
	}
	return w
}

func tasklistFromWire(w wireTasklist) service.Tasklist {
	return service.Tasklist{
		ID:          w.TasklistID,
		Name:        w.Name,
		Description: w.Description,
		Owner:       w.Owner,
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
}

func commentFromWire(w wireComment) service.Comment {
	return service.Comment{
		ID:        w.CommentID,
		Content:   w.Content,
		Creator:   w.Creator,
		CreatedAt: parseTime(w.CreatedAt),
	}
}
