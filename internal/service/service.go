package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AuthService covers the unauthenticated /auth endpoints.
type AuthService interface {
	// Register creates an account.
	Register(ctx context.Context, creds Credentials) (Result, error)

	// Login exchanges credentials for a bearer token. It does not touch
	// the local session; callers store the token.
	Login(ctx context.Context, creds Credentials) (AuthResponse, error)
}

// TaskService covers /api/tasks. Every method is exactly one round trip.
type TaskService interface {
	// ListTasks returns all tasks of the current user in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, req TaskRequest) (Task, error)

	// UpdateTask replaces a task's fields and returns it as stored.
	UpdateTask(ctx context.Context, id int64, req TaskRequest) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error
}

// Error is a transport or HTTP failure. Status is 0 for transport faults.
type Error struct {
	Status  int
	Message string // server-provided message, if any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Status == 0 && e.Err != nil:
		return e.Err.Error()
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		// Authorization failures are not handled specially; only the hint differs.
		if msg == "" {
			msg = "unauthorized"
		}
		return msg + " (run: taskman login)"
	case e.Status == http.StatusNotFound && msg == "":
		return "not found"
	case msg != "":
		return fmt.Sprintf("%s (status %d)", msg, e.Status)
	default:
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ServerMessage returns the server-provided message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message, true
	}
	return "", false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
