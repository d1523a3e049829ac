package testutil

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"taskman/internal/json"
	"taskman/internal/service"
)

// FakeServerSecret signs the tokens issued by FakeServer.
const FakeServerSecret = "fake-server-secret"

// RecordedRequest is a request seen by FakeServer.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// FakeServer is an in-memory implementation of the task API over HTTP.
// Tokens are HS256 JWTs whose subject is the username.
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string][]byte // username -> bcrypt hash
	tasks    map[string][]service.Task
	nextID   int64
	requests []RecordedRequest

	// FailStatus forces the next matching request ("METHOD /path") to fail
	// with the given status; the entry is consumed by that request.
	FailStatus map[string]int
}

// NewFakeServer starts a FakeServer. It is closed when the test ends.
func NewFakeServer(t interface{ Cleanup(func()) }) *FakeServer {
	s := &FakeServer{
		users:      make(map[string][]byte),
		tasks:      make(map[string][]service.Task),
		nextID:     1,
		FailStatus: make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api/tasks").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a user directly.
func (s *FakeServer) AddUser(username, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = hash
}

// AddTask stores a task for username and returns it with its new id.
func (s *FakeServer) AddTask(username, title string, status service.Status) service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := service.Task{ID: s.nextID, Title: title, Status: status}
	s.nextID++
	s.tasks[username] = append(s.tasks[username], task)
	return task
}

// Tasks returns a copy of username's tasks.
func (s *FakeServer) Tasks(username string) []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Task(nil), s.tasks[username]...)
}

// Requests returns the requests seen so far.
func (s *FakeServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// IssueToken returns a valid token for username.
func (s *FakeServer) IssueToken(username string) string {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(FakeServerSecret))
	return token
}

type ctxUser struct{}

func (s *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		key := r.Method + " " + r.URL.Path
		status, fail := s.FailStatus[key]
		if fail {
			delete(s.FailStatus, key)
		}
		s.mu.Unlock()

		if fail {
			writeJSON(w, status, service.Result{Success: false, Message: http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *FakeServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if header == "" || raw == header {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(FakeServerSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		r = r.WithContext(contextWithUser(r, claims.Subject))
		next.ServeHTTP(w, r)
	})
}

func (s *FakeServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, service.Result{Message: "Invalid request"})
		return
	}
	s.mu.Lock()
	_, taken := s.users[creds.Username]
	s.mu.Unlock()
	if taken {
		writeJSON(w, http.StatusBadRequest, service.Result{Message: "Username is already taken!"})
		return
	}
	s.AddUser(creds.Username, creds.Password)
	writeJSON(w, http.StatusOK, service.Result{Success: true, Message: "User registered successfully!"})
}

func (s *FakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, service.Result{Message: "Invalid request"})
		return
	}
	s.mu.Lock()
	hash, ok := s.users[creds.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, service.Result{Message: "Bad credentials"})
		return
	}
	writeJSON(w, http.StatusOK, service.AuthResponse{
		Token:    s.IssueToken(creds.Username),
		Type:     "Bearer",
		Username: creds.Username,
	})
}

func (s *FakeServer) handleList(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	s.mu.Lock()
	tasks := append([]service.Task{}, s.tasks[user]...)
	s.mu.Unlock()
	// Newest first, like the real server.
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	writeJSON(w, http.StatusOK, tasks)
}

func (s *FakeServer) handleGet(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks[user] {
		if t.ID == id {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, service.Result{Message: "Task not found"})
}

func (s *FakeServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var req service.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, service.Result{Message: "Title is required"})
		return
	}
	if req.Status == "" {
		req.Status = service.StatusPending
	}
	s.mu.Lock()
	task := service.Task{ID: s.nextID, Title: req.Title, Description: req.Description, Status: req.Status}
	s.nextID++
	s.tasks[user] = append(s.tasks[user], task)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, task)
}

func (s *FakeServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id := pathID(r)
	var req service.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, service.Result{Message: "Title is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks[user] {
		if t.ID == id {
			t.Title = req.Title
			t.Description = req.Description
			if req.Status != "" {
				t.Status = req.Status
			}
			s.tasks[user][i] = t
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, service.Result{Message: "Task not found"})
}

func (s *FakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.tasks[user]
	for i, t := range tasks {
		if t.ID == id {
			s.tasks[user] = append(tasks[:i:i], tasks[i+1:]...)
			writeJSON(w, http.StatusOK, service.Result{Success: true, Message: "Task deleted successfully!"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, service.Result{Message: "Task not found"})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
