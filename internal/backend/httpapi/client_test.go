package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskman/internal/account"
	"taskman/internal/authn"
	"taskman/internal/backend/httpapi"
	"taskman/internal/config"
	"taskman/internal/route"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/testutil"
)

func newClient(t *testing.T, srv *testutil.FakeServer, store *session.Store) *httpapi.Client {
	t.Helper()
	cfg := &config.Config{Server: srv.URL, Timeout: 2 * time.Second}
	c, err := httpapi.New(cfg, store, nil)
	require.NoError(t, err)
	return c
}

func TestClient_RegisterThenLogin(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	store := session.NewStore(session.NewMemoryStorage())
	c := newClient(t, srv, store)
	ctx := context.Background()

	res, err := c.Register(ctx, service.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "User registered successfully!", res.Message)

	auth, err := c.Login(ctx, service.Credentials{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "Bearer", auth.Type)
	assert.Equal(t, "alice", auth.Username)

	// The client never writes the session itself.
	assert.False(t, store.IsAuthenticated())
}

func TestClient_RegisterDuplicateSurfacesServerMessage(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddUser("alice", "secret1")
	c := newClient(t, srv, session.NewStore(session.NewMemoryStorage()))

	_, err := c.Register(context.Background(), service.Credentials{Username: "alice", Password: "whatever"})
	require.Error(t, err)

	msg, ok := service.ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Username is already taken!", msg)
	assert.Equal(t, http.StatusBadRequest, service.StatusCode(err))
}

func TestClient_LoginBadCredentials(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddUser("alice", "secret1")
	c := newClient(t, srv, session.NewStore(session.NewMemoryStorage()))

	_, err := c.Login(context.Background(), service.Credentials{Username: "alice", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, service.StatusCode(err))
}

func TestClient_TaskCRUDWithBearer(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	store := session.NewStore(session.NewMemoryStorage())
	token := srv.IssueToken("alice")
	require.NoError(t, store.Login(token, "alice"))
	c := newClient(t, srv, store)
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)

	created, err := c.CreateTask(ctx, service.TaskRequest{Title: "Buy milk", Status: service.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, service.StatusPending, created.Status)
	assert.NotZero(t, created.ID)

	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	req := created.Request()
	req.Status = service.StatusCompleted
	updated, err := c.UpdateTask(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, service.StatusCompleted, updated.Status)

	require.NoError(t, c.DeleteTask(ctx, created.ID))
	assert.Empty(t, srv.Tasks("alice"))

	for _, r := range srv.Requests() {
		assert.Equal(t, "Bearer "+token, r.Authorization, "%s %s", r.Method, r.Path)
		assert.NotEmpty(t, r.RequestID)
	}
}

func TestClient_NoTokenIsUnauthorized(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	c := newClient(t, srv, session.NewStore(session.NewMemoryStorage()))

	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, service.StatusCode(err))
	assert.Contains(t, err.Error(), "run: taskman login")

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization)
}

func TestClient_InvalidTokenIsUnauthorized(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	store := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, store.Login("not-a-jwt", "alice"))
	c := newClient(t, srv, store)

	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, service.StatusCode(err))
	// The session is left alone; no automatic logout.
	assert.True(t, store.IsAuthenticated())
}

func TestClient_NotFound(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	store := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, store.Login(srv.IssueToken("alice"), "alice"))
	c := newClient(t, srv, store)

	_, err := c.GetTask(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, service.StatusCode(err))
	assert.Equal(t, "Task not found (status 404)", err.Error())
}

func TestClient_InjectedServerError(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	store := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, store.Login(srv.IssueToken("alice"), "alice"))
	task := srv.AddTask("alice", "Keep me", service.StatusPending)
	srv.FailStatus["DELETE /api/tasks/1"] = http.StatusInternalServerError
	c := newClient(t, srv, store)

	err := c.DeleteTask(context.Background(), task.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, service.StatusCode(err))
	assert.Len(t, srv.Tasks("alice"), 1)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	url := srv.URL
	srv.Close()

	cfg := &config.Config{Server: url, Timeout: time.Second}
	c, err := httpapi.New(cfg, session.NewStore(session.NewMemoryStorage()), nil)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background())
	require.Error(t, err)
	var se *service.Error
	require.True(t, errors.As(err, &se))
	assert.Zero(t, se.Status)
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	slow := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		select {
		case <-r.Context().Done():
			return nil, r.Context().Err()
		case <-block:
			return nil, errors.New("unreachable")
		}
	})}
	defer close(block)

	c, err := httpapi.NewWithHTTPClient("http://api.test", slow, httpapi.WithTimeout(10*time.Millisecond))
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, httpapi.ErrTimeout)
	assert.Equal(t, "request timed out", err.Error())
}

func TestNewWithHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := httpapi.NewWithHTTPClient("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestNewWithHTTPClient_UsesAuthenticatorChain(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	store := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, store.Login(srv.IssueToken("bob"), "bob"))

	c, err := httpapi.NewWithHTTPClient(srv.URL+"/", authn.NewClient(store, nil, nil))
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background())
	assert.NoError(t, err)
}

func TestClient_FrameworkErrorBodyHasNoServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"timestamp":"2024-01-01T00:00:00.000+00:00","status":500,"error":"Internal Server Error","path":"/auth/register"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := httpapi.NewWithHTTPClient(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = c.Register(context.Background(), service.Credentials{Username: "alice", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, service.StatusCode(err))
	_, ok := service.ServerMessage(err)
	assert.False(t, ok)

	nav := &route.Recorder{}
	ctrl := account.NewRegisterController(c, nav, account.WithScheduler(account.Immediately))
	err = ctrl.Submit(context.Background(), account.RegisterForm{
		Username: "alice", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.Error(t, err)
	assert.Equal(t, account.RegisterFailedMessage, ctrl.ErrorMessage())
	assert.Empty(t, nav.Routes())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
