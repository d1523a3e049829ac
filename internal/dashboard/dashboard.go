// Package dashboard holds the state behind the task list screen: the
// fetched tasks, the active filter, the create form and per-task edits.
package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"taskman/internal/service"
)

// Errors returned by Controller.
var (
	ErrCreateInProgress = errors.New("a task is already being created")
	ErrTaskBusy         = errors.New("task has a pending change")
	ErrNotConfirmed     = errors.New("deletion not confirmed")
	ErrTaskNotFound     = errors.New("task not in list")
	ErrNotEditing       = errors.New("task is not being edited")
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this task?"

// DefaultUsername is shown when no username is stored.
const DefaultUsername = "User"

// Filter selects which tasks are shown.
type Filter string

const (
	FilterAll       Filter = "ALL"
	FilterPending   Filter = "PENDING"
	FilterCompleted Filter = "COMPLETED"
)

// ParseFilter parses a filter name case-insensitively. Empty means ALL.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToUpper(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	default:
		// Every other filter is a task status.
		st, err := service.ParseStatus(s)
		if err != nil {
			return "", fmt.Errorf("invalid filter: %s (want all, pending or completed)", s)
		}
		return Filter(st), nil
	}
}

// Match reports whether t is shown under f.
func (f Filter) Match(t service.Task) bool {
	if f == FilterAll || f == "" {
		return true
	}
	return string(t.Status) == string(f)
}

// EmptyMessage is shown when no task matches f.
func (f Filter) EmptyMessage() string {
	switch f {
	case FilterPending:
		return "No pending tasks. Great job!"
	case FilterCompleted:
		return "No completed tasks yet."
	default:
		return "No tasks yet. Create your first task!"
	}
}

// TaskForm is the input for creating a task or editing one.
type TaskForm struct {
	Title       string `json:"title" label:"Title" validate:"notblank"`
	Description string `json:"description"`
}

// Counts are the number of pending and completed tasks in the list.
type Counts struct {
	Pending   int
	Completed int
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })
