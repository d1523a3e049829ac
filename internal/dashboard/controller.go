package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskman/internal/logging"
	"taskman/internal/route"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/validate"
)

// Controller is the dashboard state. It is safe for concurrent use; the
// lock is not held while a request is outstanding.
//
// Requests that change one task are fenced per id: while a toggle, save or
// delete of a task is in flight, another one on the same task returns
// ErrTaskBusy without contacting the server.
type Controller struct {
	tasks   service.TaskService
	session *session.Store
	nav     route.Navigator
	log     *zap.SugaredLogger

	mu       sync.Mutex
	username string
	list     []service.Task
	filter   Filter
	loading  bool
	form     TaskForm
	drafts   map[int64]TaskForm
	inflight map[int64]bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Controller. The username is read from sess once.
func New(tasks service.TaskService, sess *session.Store, nav route.Navigator, opts ...Option) *Controller {
	c := &Controller{
		tasks:    tasks,
		session:  sess,
		nav:      nav,
		log:      logging.Nop(),
		username: DefaultUsername,
		filter:   FilterAll,
		drafts:   make(map[int64]TaskForm),
		inflight: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if name, ok := sess.Username(); ok {
		c.username = name
	}
	return c
}

// Username returns the logged-in username, or DefaultUsername.
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Load fetches all tasks and replaces the list. On failure the list is
// left as it was.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.tasks.ListTasks(ctx)
	if err != nil {
		c.log.Warnw("loading tasks failed", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append([]service.Task(nil), tasks...)
	c.drafts = make(map[int64]TaskForm)
	return nil
}

// Tasks returns a copy of the full list in display order.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Task(nil), c.list...)
}

// Filtered returns the tasks matching the current filter, in list order.
func (c *Controller) Filtered() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Task, 0, len(c.list))
	for _, t := range c.list {
		if c.filter.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Filter returns the current filter.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetFilter changes the current filter.
func (c *Controller) SetFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// Counts returns the pending and completed totals of the full list.
func (c *Controller) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n Counts
	for _, t := range c.list {
		switch t.Status {
		case service.StatusPending:
			n.Pending++
		case service.StatusCompleted:
			n.Completed++
		}
	}
	return n
}

// EmptyMessage returns the text shown when the filtered list is empty.
func (c *Controller) EmptyMessage() string {
	return c.Filter().EmptyMessage()
}

// Loading reports whether a create is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Form returns the create form.
func (c *Controller) Form() TaskForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetForm replaces the create form.
func (c *Controller) SetForm(f TaskForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = f
}

// SubmitCreate creates a PENDING task from the create form. The new task
// goes to the front of the list and the form is cleared. On failure the
// list and the form are kept.
func (c *Controller) SubmitCreate(ctx context.Context) (service.Task, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return service.Task{}, ErrCreateInProgress
	}
	form := c.form
	if err := validate.Struct(form); err != nil {
		c.mu.Unlock()
		return service.Task{}, err
	}
	c.loading = true
	c.mu.Unlock()

	task, err := c.tasks.CreateTask(ctx, service.TaskRequest{
		Title:       form.Title,
		Description: form.Description,
		Status:      service.StatusPending,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.log.Warnw("creating task failed", "title", form.Title, "error", err)
		return service.Task{}, err
	}
	c.list = append([]service.Task{task}, c.list...)
	c.form = TaskForm{}
	return task, nil
}

// Toggle flips the status of task id. On success the entry is replaced in
// place; on failure the list is unchanged.
func (c *Controller) Toggle(ctx context.Context, id int64) (service.Task, error) {
	c.mu.Lock()
	cur, err := c.acquire(id)
	if err != nil {
		c.mu.Unlock()
		return service.Task{}, err
	}
	c.mu.Unlock()

	req := cur.Request()
	req.Status = cur.Status.Toggle()
	task, err := c.tasks.UpdateTask(ctx, id, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		c.log.Warnw("updating task failed", "id", id, "error", err)
		return service.Task{}, err
	}
	if i := c.index(id); i >= 0 {
		task.Editing = c.list[i].Editing
		c.list[i] = task
	}
	return task, nil
}

// BeginEdit puts task id into editing with a draft of its current fields.
func (c *Controller) BeginEdit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	c.list[i].Editing = true
	c.drafts[id] = TaskForm{Title: c.list[i].Title, Description: c.list[i].Description}
	return nil
}

// Draft returns the edit draft of task id.
func (c *Controller) Draft(id int64) (TaskForm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[id]
	return d, ok
}

// SetDraft replaces the edit draft of task id.
func (c *Controller) SetDraft(id int64, f TaskForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.drafts[id]; !ok {
		return ErrNotEditing
	}
	c.drafts[id] = f
	return nil
}

// SaveEdit sends the draft of task id, keeping its status. On success the
// entry is replaced and leaves editing. On any failure, validation
// included, the task stays in editing with its draft.
func (c *Controller) SaveEdit(ctx context.Context, id int64) (service.Task, error) {
	c.mu.Lock()
	draft, ok := c.drafts[id]
	if !ok {
		c.mu.Unlock()
		if c.hasTask(id) {
			return service.Task{}, ErrNotEditing
		}
		return service.Task{}, ErrTaskNotFound
	}
	if err := validate.Struct(draft); err != nil {
		c.mu.Unlock()
		return service.Task{}, err
	}
	cur, err := c.acquire(id)
	if err != nil {
		c.mu.Unlock()
		return service.Task{}, err
	}
	c.mu.Unlock()

	task, err := c.tasks.UpdateTask(ctx, id, service.TaskRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      cur.Status,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		c.log.Warnw("saving task failed", "id", id, "error", err)
		return service.Task{}, err
	}
	if i := c.index(id); i >= 0 {
		task.Editing = false
		c.list[i] = task
	}
	delete(c.drafts, id)
	return task, nil
}

// CancelEdit drops the draft of task id and leaves editing.
func (c *Controller) CancelEdit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	c.list[i].Editing = false
	delete(c.drafts, id)
	return nil
}

// Delete asks confirm and then deletes task id. A declined prompt returns
// ErrNotConfirmed without contacting the server. On failure the list is
// unchanged.
func (c *Controller) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	c.mu.Lock()
	if c.index(id) < 0 {
		c.mu.Unlock()
		return ErrTaskNotFound
	}
	if c.inflight[id] {
		c.mu.Unlock()
		return ErrTaskBusy
	}
	c.mu.Unlock()

	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return ErrNotConfirmed
	}

	c.mu.Lock()
	if _, err := c.acquire(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := c.tasks.DeleteTask(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		c.log.Warnw("deleting task failed", "id", id, "error", err)
		return err
	}
	if i := c.index(id); i >= 0 {
		c.list = append(c.list[:i:i], c.list[i+1:]...)
	}
	delete(c.drafts, id)
	return nil
}

// Logout clears the session and goes to the login screen.
func (c *Controller) Logout() error {
	err := c.session.Logout()
	if err != nil {
		c.log.Warnw("clearing session failed", "error", err)
	}
	c.nav.Navigate(route.Login)
	return err
}

// acquire marks id in flight and returns its current entry.
// c.mu must be held.
func (c *Controller) acquire(id int64) (service.Task, error) {
	i := c.index(id)
	if i < 0 {
		return service.Task{}, ErrTaskNotFound
	}
	if c.inflight[id] {
		return service.Task{}, ErrTaskBusy
	}
	c.inflight[id] = true
	return c.list[i], nil
}

// index returns the position of id in the list, or -1.
// c.mu must be held.
func (c *Controller) index(id int64) int {
	for i, t := range c.list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) hasTask(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index(id) >= 0
}
