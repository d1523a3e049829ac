// Package authn attaches the stored bearer credential to outgoing API requests.
package authn

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"taskman/internal/logging"
)

// TokenSource supplies the current bearer token, if any.
// *session.Store satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

// Transport is an http.RoundTripper that reads the token from Source on
// every request and, when one exists, forwards a clone of the request
// carrying "Authorization: Bearer <token>". Without a token the request is
// forwarded untouched. The caller's request is never modified.
type Transport struct {
	// Source provides the token. A nil Source behaves like an empty session.
	Source TokenSource

	// Base is the underlying transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Log receives one debug line per request. May be nil.
	Log *zap.SugaredLogger
}

// NewTransport returns a Transport over base.
func NewTransport(source TokenSource, base http.RoundTripper, log *zap.SugaredLogger) *Transport {
	return &Transport{Source: source, Base: base, Log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.token()
	t.logger().Debugw("outgoing request", "method", req.Method, "url", req.URL.String(), "token", ok)

	if !ok {
		return t.base().RoundTrip(req)
	}

	bearer := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base(),
	}
	return bearer.RoundTrip(req)
}

func (t *Transport) token() (string, bool) {
	if t.Source == nil {
		return "", false
	}
	return t.Source.Token()
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *zap.SugaredLogger {
	if t.Log != nil {
		return t.Log
	}
	return logging.Nop()
}

// NewClient returns an http.Client whose requests pass through a Transport.
func NewClient(source TokenSource, base http.RoundTripper, log *zap.SugaredLogger) *http.Client {
	return &http.Client{Transport: NewTransport(source, base, log)}
}
