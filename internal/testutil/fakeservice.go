// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// FakeService is an in-memory implementation of service.Service for
// testing. Listings page deterministically in insertion order; errors
// are injected per operation name, either sticky or for the next N
// calls (the transient form drives retry tests).
type FakeService struct {
	mu sync.Mutex

	// Me is the identity AssignedToMe filters match against.
	Me string

	tasks     map[string]service.Task
	taskOrder []string
	tasklists map[string]service.Tasklist
	listOrder []string
	members   map[string][]string
	comments  map[string][]service.Comment
	users     map[string]string

	nextID int

	calls  map[string]int
	sticky map[string]error
	queued map[string][]error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		Me:        "ou_me",
		tasks:     make(map[string]service.Task),
		tasklists: make(map[string]service.Tasklist),
		members:   make(map[string][]string),
		comments:  make(map[string][]service.Comment),
		users:     make(map[string]string),
		calls:     make(map[string]int),
		sticky:    make(map[string]error),
		queued:    make(map[string][]error),
	}
}

// AddTask seeds a task, assigning an id and todo status when absent.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = f.newID("task_")
	}
	if t.Status == "" {
		t.Status = service.StatusTodo
	}
	f.tasks[t.ID] = t
	f.taskOrder = append(f.taskOrder, t.ID)
	return t
}

// AddTasklist seeds a tasklist.
func (f *FakeService) AddTasklist(name string) service.Tasklist {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := service.Tasklist{ID: f.newID("tasklist_"), Name: name, Owner: f.Me}
	f.tasklists[l.ID] = l
	f.listOrder = append(f.listOrder, l.ID)
	return l
}

// AddUser seeds an email to user id mapping.
func (f *FakeService) AddUser(email, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = userID
}

// FailWith makes every call to op fail with err until cleared with a
// nil err.
func (f *FakeService) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.sticky, op)
		return
	}
	f.sticky[op] = err
}

// FailNext makes the next n calls to op fail with err, then recover.
func (f *FakeService) FailNext(op string, err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for range n {
		f.queued[op] = append(f.queued[op], err)
	}
}

// Calls reports how many times op was invoked.
func (f *FakeService) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// newID must be called with the lock held.
func (f *FakeService) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%04d", prefix, f.nextID)
}

// begin counts the call and pops any injected error. Lock held.
func (f *FakeService) begin(op string) error {
	f.calls[op]++
	if q := f.queued[op]; len(q) > 0 {
		err := q[0]
		f.queued[op] = q[1:]
		return err
	}
	return f.sticky[op]
}

func notFound(what, id string) error {
	return taskerr.New(taskerr.KindNotFound, what+" not found: "+id)
}

// paginate slices items by an integer-offset token.
func paginate[T any](items []T, pageSize int, token string) (service.Page[T], error) {
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(items) {
			return service.Page[T]{}, taskerr.New(taskerr.KindInvalidParameter, "bad page token: "+token)
		}
		start = n
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	end := min(start+pageSize, len(items))
	page := service.Page[T]{Items: append([]T(nil), items[start:end]...)}
	if end < len(items) {
		page.NextToken = strconv.Itoa(end)
		page.HasMore = true
	}
	return page, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, t service.NewTask) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateTask"); err != nil {
		return service.Task{}, err
	}
	now := time.Now()
	task := service.Task{
		ID:           f.newID("task_"),
		Summary:      t.Summary,
		Description:  t.Description,
		Status:       service.StatusTodo,
		Assignee:     t.Assignee,
		Followers:    t.Followers,
		Due:          t.Due,
		CreatedAt:    now,
		UpdatedAt:    now,
		ParentID:     t.ParentID,
		CustomFields: t.CustomFields,
	}
	f.tasks[task.ID] = task
	f.taskOrder = append(f.taskOrder, task.ID)
	return task, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("GetTask"); err != nil {
		return service.Task{}, err
	}
	task, ok := f.tasks[taskID]
	if !ok {
		return service.Task{}, notFound("task", taskID)
	}
	return task, nil
}

// UpdateTask implements service.Service with preserve-by-default patch
// semantics: only fields the patch sets change.
func (f *FakeService) UpdateTask(ctx context.Context, taskID string, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateTask"); err != nil {
		return service.Task{}, err
	}
	task, ok := f.tasks[taskID]
	if !ok {
		return service.Task{}, notFound("task", taskID)
	}
	if patch.Empty() {
		return service.Task{}, taskerr.New(taskerr.KindInvalidParameter, "empty patch")
	}
	if patch.Summary != nil {
		task.Summary = *patch.Summary
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
		if task.Status == service.StatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	switch {
	case patch.ClearAssignee:
		task.Assignee = ""
	case patch.Assignee != nil:
		task.Assignee = *patch.Assignee
	}
	switch {
	case patch.ClearDue:
		task.Due = nil
	case patch.Due != nil:
		task.Due = patch.Due
	}
	if patch.Followers != nil {
		task.Followers = *patch.Followers
	}
	task.UpdatedAt = time.Now()
	f.tasks[taskID] = task
	return task, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteTask"); err != nil {
		return err
	}
	if _, ok := f.tasks[taskID]; !ok {
		return notFound("task", taskID)
	}
	delete(f.tasks, taskID)
	delete(f.comments, taskID)
	for i, id := range f.taskOrder {
		if id == taskID {
			f.taskOrder = append(f.taskOrder[:i], f.taskOrder[i+1:]...)
			break
		}
	}
	for listID, ids := range f.members {
		for i, id := range ids {
			if id == taskID {
				f.members[listID] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, filter service.TaskFilter, pageSize int, pageToken string) (service.Page[service.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListTasks"); err != nil {
		return service.Page[service.Task]{}, err
	}
	var matched []service.Task
	for _, id := range f.taskOrder {
		t := f.tasks[id]
		if f.matches(t, filter) {
			matched = append(matched, t)
		}
	}
	return paginate(matched, pageSize, pageToken)
}

func (f *FakeService) matches(t service.Task, filter service.TaskFilter) bool {
	if filter.AssignedToMe && t.Assignee != f.Me {
		return false
	}
	if filter.Assignee != "" && t.Assignee != filter.Assignee {
		return false
	}
	if len(filter.Statuses) > 0 {
		ok := false
		for _, s := range filter.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if filter.DueBefore != nil && (t.Due == nil || !t.Due.Before(*filter.DueBefore)) {
		return false
	}
	if filter.DueAfter != nil && (t.Due == nil || !t.Due.After(*filter.DueAfter)) {
		return false
	}
	return true
}

// ListSubtasks implements service.Service.
func (f *FakeService) ListSubtasks(ctx context.Context, taskID string, pageSize int, pageToken string) (service.Page[service.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListSubtasks"); err != nil {
		return service.Page[service.Task]{}, err
	}
	if _, ok := f.tasks[taskID]; !ok {
		return service.Page[service.Task]{}, notFound("task", taskID)
	}
	var children []service.Task
	for _, id := range f.taskOrder {
		if t := f.tasks[id]; t.ParentID == taskID {
			children = append(children, t)
		}
	}
	return paginate(children, pageSize, pageToken)
}

// CreateTasklist implements service.Service.
func (f *FakeService) CreateTasklist(ctx context.Context, name, description string) (service.Tasklist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateTasklist"); err != nil {
		return service.Tasklist{}, err
	}
	now := time.Now()
	l := service.Tasklist{
		ID:          f.newID("tasklist_"),
		Name:        name,
		Description: description,
		Owner:       f.Me,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasklists[l.ID] = l
	f.listOrder = append(f.listOrder, l.ID)
	return l, nil
}

// GetTasklist implements service.Service.
func (f *FakeService) GetTasklist(ctx context.Context, tasklistID string) (service.Tasklist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("GetTasklist"); err != nil {
		return service.Tasklist{}, err
	}
	l, ok := f.tasklists[tasklistID]
	if !ok {
		return service.Tasklist{}, notFound("tasklist", tasklistID)
	}
	return l, nil
}

// UpdateTasklist implements service.Service.
func (f *FakeService) UpdateTasklist(ctx context.Context, tasklistID string, patch service.TasklistPatch) (service.Tasklist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateTasklist"); err != nil {
		return service.Tasklist{}, err
	}
	l, ok := f.tasklists[tasklistID]
	if !ok {
		return service.Tasklist{}, notFound("tasklist", tasklistID)
	}
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	l.UpdatedAt = time.Now()
	f.tasklists[tasklistID] = l
	return l, nil
}

// DeleteTasklist implements service.Service.
func (f *FakeService) DeleteTasklist(ctx context.Context, tasklistID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteTasklist"); err != nil {
		return err
	}
	if _, ok := f.tasklists[tasklistID]; !ok {
		return notFound("tasklist", tasklistID)
	}
	delete(f.tasklists, tasklistID)
	delete(f.members, tasklistID)
	for i, id := range f.listOrder {
		if id == tasklistID {
			f.listOrder = append(f.listOrder[:i], f.listOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ListTasklists implements service.Service.
func (f *FakeService) ListTasklists(ctx context.Context, pageSize int, pageToken string) (service.Page[service.Tasklist], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListTasklists"); err != nil {
		return service.Page[service.Tasklist]{}, err
	}
	lists := make([]service.Tasklist, 0, len(f.listOrder))
	for _, id := range f.listOrder {
		lists = append(lists, f.tasklists[id])
	}
	return paginate(lists, pageSize, pageToken)
}

// AddTaskToTasklist implements service.Service.
func (f *FakeService) AddTaskToTasklist(ctx context.Context, tasklistID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("AddTaskToTasklist"); err != nil {
		return err
	}
	if _, ok := f.tasklists[tasklistID]; !ok {
		return notFound("tasklist", tasklistID)
	}
	if _, ok := f.tasks[taskID]; !ok {
		return notFound("task", taskID)
	}
	for _, id := range f.members[tasklistID] {
		if id == taskID {
			return nil
		}
	}
	f.members[tasklistID] = append(f.members[tasklistID], taskID)
	return nil
}

// RemoveTaskFromTasklist implements service.Service.
func (f *FakeService) RemoveTaskFromTasklist(ctx context.Context, tasklistID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("RemoveTaskFromTasklist"); err != nil {
		return err
	}
	ids, ok := f.members[tasklistID]
	if !ok {
		return notFound("tasklist", tasklistID)
	}
	for i, id := range ids {
		if id == taskID {
			f.members[tasklistID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return notFound("task", taskID)
}

// ListTasksInTasklist implements service.Service.
func (f *FakeService) ListTasksInTasklist(ctx context.Context, tasklistID string, pageSize int, pageToken string) (service.Page[service.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListTasksInTasklist"); err != nil {
		return service.Page[service.Task]{}, err
	}
	if _, ok := f.tasklists[tasklistID]; !ok {
		return service.Page[service.Task]{}, notFound("tasklist", tasklistID)
	}
	var tasks []service.Task
	for _, id := range f.members[tasklistID] {
		if t, ok := f.tasks[id]; ok {
			tasks = append(tasks, t)
		}
	}
	return paginate(tasks, pageSize, pageToken)
}

// CreateComment implements service.Service.
func (f *FakeService) CreateComment(ctx context.Context, taskID, content string) (service.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateComment"); err != nil {
		return service.Comment{}, err
	}
	if _, ok := f.tasks[taskID]; !ok {
		return service.Comment{}, notFound("task", taskID)
	}
	c := service.Comment{
		ID:        f.newID("comment_"),
		Content:   content,
		Creator:   f.Me,
		CreatedAt: time.Now(),
	}
	f.comments[taskID] = append(f.comments[taskID], c)
	return c, nil
}

// ListComments implements service.Service.
func (f *FakeService) ListComments(ctx context.Context, taskID string, pageSize int, pageToken string) (service.Page[service.Comment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListComments"); err != nil {
		return service.Page[service.Comment]{}, err
	}
	if _, ok := f.tasks[taskID]; !ok {
		return service.Page[service.Comment]{}, notFound("task", taskID)
	}
	return paginate(f.comments[taskID], pageSize, pageToken)
}

// DeleteComment implements service.Service.
func (f *FakeService) DeleteComment(ctx context.Context, taskID, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteComment"); err != nil {
		return err
	}
	comments, ok := f.comments[taskID]
	if !ok {
		if _, exists := f.tasks[taskID]; !exists {
			return notFound("task", taskID)
		}
	}
	for i, c := range comments {
		if c.ID == commentID {
			f.comments[taskID] = append(comments[:i], comments[i+1:]...)
			return nil
		}
	}
	return notFound("comment", commentID)
}

// LookupUserByEmail implements service.Service.
func (f *FakeService) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("LookupUserByEmail"); err != nil {
		return "", err
	}
	id, ok := f.users[email]
	if !ok {
		return "", notFound("user", email)
	}
	return id, nil
}
