package authn_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskman/internal/authn"
	"taskman/internal/session"
)

// recorder is a RoundTripper capturing the request it was handed.
type recorder struct {
	got *http.Request
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.got = req
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       http.NoBody,
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "http://api.test/api/tasks", nil)
	require.NoError(t, err)
	return req
}

func TestTransport_AttachesBearerWhenTokenPresent(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, store.Login("abc.def.ghi", "alice"))
	rec := &recorder{}
	tr := authn.NewTransport(store, rec, nil)

	req := newRequest(t)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, rec.got)
	assert.Equal(t, "Bearer abc.def.ghi", rec.got.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be modified")
}

func TestTransport_NoHeaderWithoutToken(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	rec := &recorder{}
	tr := authn.NewTransport(store, rec, nil)

	req := newRequest(t)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Same(t, req, rec.got)
	_, present := rec.got.Header["Authorization"]
	assert.False(t, present)
}

func TestTransport_NilSourceForwards(t *testing.T) {
	rec := &recorder{}
	tr := &authn.Transport{Base: rec}

	resp, err := tr.RoundTrip(newRequest(t))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, rec.got.Header.Get("Authorization"))
}

func TestTransport_ReadsTokenOnEveryRequest(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	rec := &recorder{}
	client := &http.Client{Transport: authn.NewTransport(store, rec, nil)}

	require.NoError(t, store.Login("first", "a"))
	resp, err := client.Do(newRequest(t))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer first", rec.got.Header.Get("Authorization"))

	require.NoError(t, store.Login("second", "a"))
	resp, err = client.Do(newRequest(t))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer second", rec.got.Header.Get("Authorization"))

	require.NoError(t, store.Logout())
	resp, err = client.Do(newRequest(t))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, rec.got.Header.Get("Authorization"))
}

func TestNewClient_OverRealServer(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, store.Login("tok", "u"))
	client := authn.NewClient(store, nil, nil)

	resp, err := client.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok", seen)
}
