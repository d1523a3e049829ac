package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"taskman/internal/service"
)

func taskPath(id int64) string {
	return tasksPath + "/" + strconv.FormatInt(id, 10)
}

// ListTasks returns all tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// GetTask returns a task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPost, tasksPath, req, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces a task.
func (c *Client) UpdateTask(ctx context.Context, id int64, req service.TaskRequest) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), req, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task. Any response body is discarded.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}
