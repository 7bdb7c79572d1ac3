// Package lark implements service.Service against the remote task API.
//
// Requests carry a tenant access token obtained through the token source
// in token.go; responses use the {code, msg, data} envelope and are
// classified by internal/taskerr. Each method performs exactly one
// attempt; retry policy belongs to the callers.
package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tasksync/internal/config"
	"tasksync/internal/metrics"
	"tasksync/internal/service"
	"tasksync/internal/taskerr"
)

// DefaultTimeout bounds a single API call when the config carries none.
const DefaultTimeout = 10 * time.Second

// Client implements service.Service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	timeout    time.Duration
	log        *slog.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a client from app credentials in cfg.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("app credentials required (set TASKSYNC_APP_ID and TASKSYNC_APP_SECRET)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	httpClient := &http.Client{}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     TokenSource(base, cfg.AppID, cfg.AppSecret, httpClient),
		timeout:    timeout,
		log:        slog.Default(),
	}, nil
}

// NewWithHTTPClient creates a client with an explicit HTTP client and
// token source (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		timeout:    DefaultTimeout,
		log:        slog.Default(),
	}
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, t service.NewTask) (service.Task, error) {
	var out struct {
		Task wireTask `json:"task"`
	}
	body := map[string]any{"task": newTaskToWire(t)}
	if err := c.do(ctx, "create_task", http.MethodPost, "/task/v2/tasks", nil, body, &out); err != nil {
		return service.Task{}, err
	}
	return taskFromWire(out.Task), nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	var out struct {
		Task wireTask `json:"task"`
	}
	if err := c.do(ctx, "get_task", http.MethodGet, "/task/v2/tasks/"+url.PathEscape(taskID), nil, nil, &out); err != nil {
		return service.Task{}, err
	}
	return taskFromWire(out.Task), nil
}

// UpdateTask implements service.Service. Only fields the patch sets are
// transmitted, named in update_fields so the service preserves the rest.
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch service.TaskPatch) (service.Task, error) {
	if patch.Empty() {
		return service.Task{}, taskerr.New(taskerr.KindInvalidParameter, "empty patch")
	}
	var out struct {
		Task wireTask `json:"task"`
	}
	body := map[string]any{
		"task":          patchToWire(patch),
		"update_fields": patch.Fields(),
	}
	if err := c.do(ctx, "update_task", http.MethodPatch, "/task/v2/tasks/"+url.PathEscape(taskID), nil, body, &out); err != nil {
		return service.Task{}, err
	}
	return taskFromWire(out.Task), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, "delete_task", http.MethodDelete, "/task/v2/tasks/"+url.PathEscape(taskID), nil, nil, nil)
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, filter service.TaskFilter, pageSize int, pageToken string) (service.Page[service.Task], error) {
	q := pageQuery(pageSize, pageToken)
	if filter.CreatedByMe {
		q.Set("created_by_me", "true")
	}
	if filter.AssignedToMe {
		q.Set("assigned_to_me", "true")
	}
	if filter.Assignee != "" {
		q.Set("assignee_id", filter.Assignee)
	}
	for _, s := range filter.Statuses {
		q.Add("status", string(s))
	}
	if filter.DueBefore != nil {
		q.Set("due_before", formatTime(*filter.DueBefore))
	}
	if filter.DueAfter != nil {
		q.Set("due_after", formatTime(*filter.DueAfter))
	}

	var out wirePage[wireTask]
	if err := c.do(ctx, "list_tasks", http.MethodGet, "/task/v2/tasks", q, nil, &out); err != nil {
		return service.Page[service.Task]{}, err
	}
	return taskPage(out), nil
}

// ListSubtasks implements service.Service.
func (c *Client) ListSubtasks(ctx context.Context, taskID string, pageSize int, pageToken string) (service.Page[service.Task], error) {
	var out wirePage[wireTask]
	path := "/task/v2/tasks/" + url.PathEscape(taskID) + "/subtasks"
	if err := c.do(ctx, "list_subtasks", http.MethodGet, path, pageQuery(pageSize, pageToken), nil, &out); err != nil {
		return service.Page[service.Task]{}, err
	}
	return taskPage(out), nil
}

// CreateTasklist implements service.Service.
func (c *Client) CreateTasklist(ctx context.Context, name, description string) (service.Tasklist, error) {
	var out struct {
		Tasklist wireTasklist `json:"tasklist"`
	}
	body := map[string]any{"tasklist": wireTasklist{Name: name, Description: description}}
	if err := c.do(ctx, "create_tasklist", http.MethodPost, "/task/v2/tasklists", nil, body, &out); err != nil {
		return service.Tasklist{}, err
	}
	return tasklistFromWire(out.Tasklist), nil
}

// GetTasklist implements service.Service.
func (c *Client) GetTasklist(ctx context.Context, tasklistID string) (service.Tasklist, error) {
	var out struct {
		Tasklist wireTasklist `json:"tasklist"`
	}
	if err := c.do(ctx, "get_tasklist", http.MethodGet, "/task/v2/tasklists/"+url.PathEscape(tasklistID), nil, nil, &out); err != nil {
		return service.Tasklist{}, err
	}
	return tasklistFromWire(out.Tasklist), nil
}

// UpdateTasklist implements service.Service.
func (c *Client) UpdateTasklist(ctx context.Context, tasklistID string, patch service.TasklistPatch) (service.Tasklist, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return service.Tasklist{}, taskerr.New(taskerr.KindInvalidParameter, "empty patch")
	}
	var w wireTasklist
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	var out struct {
		Tasklist wireTasklist `json:"tasklist"`
	}
	body := map[string]any{"tasklist": w, "update_fields": fields}
	if err := c.do(ctx, "update_tasklist", http.MethodPatch, "/task/v2/tasklists/"+url.PathEscape(tasklistID), nil, body, &out); err != nil {
		return service.Tasklist{}, err
	}
	return tasklistFromWire(out.Tasklist), nil
}

// DeleteTasklist implements service.Service.
func (c *Client) DeleteTasklist(ctx context.Context, tasklistID string) error {
	return c.do(ctx, "delete_tasklist", http.MethodDelete, "/task/v2/tasklists/"+url.PathEscape(tasklistID), nil, nil, nil)
}

// ListTasklists implements service.Service.
func (c *Client) ListTasklists(ctx context.Context, pageSize int, pageToken string) (service.Page[service.Tasklist], error) {
	var out wirePage[wireTasklist]
	if err := c.do(ctx, "list_tasklists", http.MethodGet, "/task/v2/tasklists", pageQuery(pageSize, pageToken), nil, &out); err != nil {
		return service.Page[service.Tasklist]{}, err
	}
	page := service.Page[service.Tasklist]{NextToken: out.PageToken, HasMore: out.HasMore}
	for _, w := range out.Items {
		page.Items = append(page.Items, tasklistFromWire(w))
	}
	return page, nil
}

// AddTaskToTasklist implements service.Service.
func (c *Client) AddTaskToTasklist(ctx context.Context, tasklistID, taskID string) error {
	body := map[string]any{"task_ids": []string{taskID}}
	path := "/task/v2/tasklists/" + url.PathEscape(tasklistID) + "/add_tasks"
	return c.do(ctx, "add_task_to_tasklist", http.MethodPost, path, nil, body, nil)
}

// RemoveTaskFromTasklist implements service.Service.
func (c *Client) RemoveTaskFromTasklist(ctx context.Context, tasklistID, taskID string) error {
	body := map[string]any{"task_ids": []string{taskID}}
	path := "/task/v2/tasklists/" + url.PathEscape(tasklistID) + "/remove_tasks"
	return c.do(ctx, "remove_task_from_tasklist", http.MethodPost, path, nil, body, nil)
}

// ListTasksInTasklist implements service.Service.
func (c *Client) ListTasksInTasklist(ctx context.Context, tasklistID string, pageSize int, pageToken string) (service.Page[service.Task], error) {
	var out wirePage[wireTask]
	path := "/task/v2/tasklists/" + url.PathEscape(tasklistID) + "/tasks"
	if err := c.do(ctx, "list_tasks_in_tasklist", http.MethodGet, path, pageQuery(pageSize, pageToken), nil, &out); err != nil {
		return service.Page[service.Task]{}, err
	}
	return taskPage(out), nil
}

// CreateComment implements service.Service.
func (c *Client) CreateComment(ctx context.Context, taskID, content string) (service.Comment, error) {
	var out struct {
		Comment wireComment `json:"comment"`
	}
	body := map[string]any{"content": content}
	path := "/task/v2/tasks/" + url.PathEscape(taskID) + "/comments"
	if err := c.do(ctx, "create_comment", http.MethodPost, path, nil, body, &out); err != nil {
		return service.Comment{}, err
	}
	return commentFromWire(out.Comment), nil
}

// ListComments implements service.Service.
func (c *Client) ListComments(ctx context.Context, taskID string, pageSize int, pageToken string) (service.Page[service.Comment], error) {
	var out wirePage[wireComment]
	path := "/task/v2/tasks/" + url.PathEscape(taskID) + "/comments"
	if err := c.do(ctx, "list_comments", http.MethodGet, path, pageQuery(pageSize, pageToken), nil, &out); err != nil {
		return service.Page[service.Comment]{}, err
	}
	page := service.Page[service.Comment]{NextToken: out.PageToken, HasMore: out.HasMore}
	for _, w := range out.Items {
		page.Items = append(page.Items, commentFromWire(w))
	}
	return page, nil
}

// DeleteComment implements service.Service.
func (c *Client) DeleteComment(ctx context.Context, taskID, commentID string) error {
	path := "/task/v2/tasks/" + url.PathEscape(taskID) + "/comments/" + url.PathEscape(commentID)
	return c.do(ctx, "delete_comment", http.MethodDelete, path, nil, nil, nil)
}

// LookupUserByEmail implements service.Service.
func (c *Client) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	var out struct {
		UserList []struct {
			UserID string `json:"user_id"`
			Email  string `json:"email"`
		} `json:"user_list"`
	}
	body := map[string]any{"emails": []string{email}}
	if err := c.do(ctx, "lookup_user", http.MethodPost, "/contact/v3/users/batch_get_id", nil, body, &out); err != nil {
		return "", err
	}
	for _, u := range out.UserList {
		if u.UserID != "" {
			return u.UserID, nil
		}
	}
	return "", taskerr.New(taskerr.KindNotFound, "user not found: "+email)
}

// do performs one API call: marshal body, attach token and request id,
// decode the envelope, classify failures.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Request-Id", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cerr := taskerr.FromTransport(err)
		metrics.RequestsTotal.WithLabelValues(op, string(cerr.Kind)).Inc()
		return cerr
	}
	defer resp.Body.Close()
	metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		cerr := taskerr.FromTransport(err)
		metrics.RequestsTotal.WithLabelValues(op, string(cerr.Kind)).Inc()
		return cerr
	}

	var env struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	// A non-JSON body on an error status still classifies by status.
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode >= 300 || env.Code != 0 {
		cerr := taskerr.Classify(resp.StatusCode, env.Code, env.Msg)
		cerr.RetryAfter = retryAfterFrom(resp, data)
		if cerr.Kind == taskerr.KindRateLimited {
			metrics.RateLimitedTotal.Inc()
		}
		metrics.RequestsTotal.WithLabelValues(op, string(cerr.Kind)).Inc()
		c.log.Debug("request failed", "op", op, "status", resp.StatusCode, "code", env.Code, "kind", string(cerr.Kind))
		return cerr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			metrics.RequestsTotal.WithLabelValues(op, string(taskerr.KindUnknown)).Inc()
			return fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	metrics.RequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

// retryAfterFrom extracts a server-suggested delay from the Retry-After
// header (seconds or HTTP date) or a retry_after body field (seconds).
// The duration is treated as opaque; anything unparsable yields zero and
// the caller falls back to computed backoff.
func retryAfterFrom(resp *http.Response, body []byte) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
		return 0
	}
	var probe struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && probe.RetryAfter > 0 {
		return time.Duration(probe.RetryAfter * float64(time.Second))
	}
	return 0
}

func pageQuery(pageSize int, pageToken string) url.Values {
	q := url.Values{}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}
	return q
}

func taskPage(out wirePage[wireTask]) service.Page[service.Task] {
	return service.Page[service.Task]{
		Items:     tasksFromWire(out.Items),
		NextToken: out.PageToken,
		HasMore:   out.HasMore,
	}
}
