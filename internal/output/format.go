// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskman/internal/dashboard"
	"taskman/internal/service"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [ ] {TITLE}\n", "[x]" when completed and a trailing
// " (editing)" while the task has an open edit.
func FormatTask(w io.Writer, task service.Task) {
	line := fmt.Sprintf("%4d  %s %s", task.ID, checkbox(task.Status), normalizeTitle(task.Title))
	if task.Editing {
		line += " (editing)"
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "ID:          %d\n", task.ID)
	fmt.Fprintf(w, "Title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "Status:      %s\n", task.Status)
	if d := strings.TrimSpace(task.Description); d != "" {
		fmt.Fprintf(w, "Description: %s\n", normalizeText(d))
	}
}

// FormatSummary formats the dashboard header line.
// Format: "{USER}: {P} pending, {C} completed" plus " [{filter}]" when a
// filter other than ALL is active.
func FormatSummary(w io.Writer, username string, counts dashboard.Counts, filter dashboard.Filter) {
	line := fmt.Sprintf("%s: %d pending, %d completed", username, counts.Pending, counts.Completed)
	if filter != dashboard.FilterAll && filter != "" {
		line += " [" + strings.ToLower(string(filter)) + "]"
	}
	fmt.Fprintln(w, line)
}

// FormatDraft formats an open edit of a task.
func FormatDraft(w io.Writer, id int64, draft dashboard.TaskForm) {
	fmt.Fprintf(w, "editing %d\n", id)
	fmt.Fprintf(w, "  title:       %s\n", normalizeText(draft.Title))
	fmt.Fprintf(w, "  description: %s\n", normalizeText(draft.Description))
}

// Dashboard writes the summary line followed by the filtered tasks, or the
// empty message when none match.
func Dashboard(w io.Writer, d *dashboard.Controller) {
	FormatSummary(w, d.Username(), d.Counts(), d.Filter())
	tasks := d.Filtered()
	if len(tasks) == 0 {
		fmt.Fprintln(w, d.EmptyMessage())
		return
	}
	for _, t := range tasks {
		FormatTask(w, t)
	}
}

func checkbox(s service.Status) string {
	if s == service.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
