// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"

	"taskman/internal/service"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = &service.Error{Status: 404, Message: "Task not found"}

// ErrBadCredentials is returned by Login for unknown users or wrong passwords.
var ErrBadCredentials = &service.Error{Status: 401, Message: "Bad credentials"}

// FakeService is an in-memory implementation of service.AuthService and
// service.TaskService for testing.
type FakeService struct {
	mu     sync.RWMutex
	users  map[string]string // username -> password
	tasks  []service.Task    // newest first
	nextID int64
	calls  map[string]int

	// Error injection for testing
	RegisterErr   error
	LoginErr      error
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// BeforeCreate, BeforeUpdate and BeforeDelete run before the fake
	// applies the call, outside its lock. Tests use them to act while a
	// call is in flight.
	BeforeCreate func(req service.TaskRequest)
	BeforeUpdate func(id int64)
	BeforeDelete func(id int64)
}

var (
	_ service.AuthService = (*FakeService)(nil)
	_ service.TaskService = (*FakeService)(nil)
)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]string),
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddUser adds an account.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// AddTask appends a task (server order is insertion order) and returns it.
func (f *FakeService) AddTask(title string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: f.nextID, Title: title, Status: status}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Calls returns how many times method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// StoredTasks returns a copy of the tasks held by the fake.
func (f *FakeService) StoredTasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

func (f *FakeService) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

// Register implements service.AuthService.
func (f *FakeService) Register(ctx context.Context, creds service.Credentials) (service.Result, error) {
	f.count("Register")
	if f.RegisterErr != nil {
		return service.Result{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[creds.Username]; exists {
		return service.Result{}, &service.Error{Status: 400, Message: "Username is already taken!"}
	}
	f.users[creds.Username] = creds.Password
	return service.Result{Success: true, Message: "User registered successfully!"}, nil
}

// Login implements service.AuthService.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.AuthResponse, error) {
	f.count("Login")
	if f.LoginErr != nil {
		return service.AuthResponse{}, f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if pw, ok := f.users[creds.Username]; !ok || pw != creds.Password {
		return service.AuthResponse{}, ErrBadCredentials
	}
	return service.AuthResponse{
		Token:    "token-" + creds.Username,
		Type:     "Bearer",
		Username: creds.Username,
	}, nil
}

// ListTasks implements service.TaskService.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.count("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task{}, f.tasks...), nil
}

// GetTask implements service.TaskService.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.count("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// CreateTask implements service.TaskService.
func (f *FakeService) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	f.count("CreateTask")
	if f.BeforeCreate != nil {
		f.BeforeCreate(req)
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if strings.TrimSpace(req.Title) == "" {
		return service.Task{}, &service.Error{Status: 400, Message: "Title is required"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	status := req.Status
	if status == "" {
		status = service.StatusPending
	}
	t := service.Task{ID: f.nextID, Title: req.Title, Description: req.Description, Status: status}
	f.nextID++
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t, nil
}

// UpdateTask implements service.TaskService.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, req service.TaskRequest) (service.Task, error) {
	f.count("UpdateTask")
	if f.BeforeUpdate != nil {
		f.BeforeUpdate(id)
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			t.Title = req.Title
			t.Description = req.Description
			if req.Status != "" {
				t.Status = req.Status
			}
			f.tasks[i] = t
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.TaskService.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.count("DeleteTask")
	if f.BeforeDelete != nil {
		f.BeforeDelete(id)
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
