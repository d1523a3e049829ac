// Package service defines the backend-agnostic types and contracts for
// authentication and task operations.
package service

import (
	"fmt"
	"strings"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusPending {
		return StatusCompleted
	}
	return StatusPending
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return st, nil
}

// Task is a single task as returned by the server.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`

	// Editing is a local display flag; it is never sent to the server.
	Editing bool `json:"-"`
}

// Request returns the write-side projection of t.
func (t Task) Request() TaskRequest {
	return TaskRequest{Title: t.Title, Description: t.Description, Status: t.Status}
}

// TaskRequest is the payload for creating or updating a task.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status,omitempty"`
}

// Credentials is the register and login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the login response.
type AuthResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	Username string `json:"username"`
}

// Result is the generic acknowledgement returned by registration.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
