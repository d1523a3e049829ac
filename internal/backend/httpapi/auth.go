package httpapi

import (
	"context"
	"net/http"

	"taskman/internal/service"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, creds service.Credentials) (service.Result, error) {
	var res service.Result
	if err := c.do(ctx, http.MethodPost, authPath+"/register", creds, &res); err != nil {
		return service.Result{}, err
	}
	return res, nil
}

// Login exchanges credentials for a token. The session is left untouched.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.AuthResponse, error) {
	var res service.AuthResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/login", creds, &res); err != nil {
		return service.AuthResponse{}, err
	}
	return res, nil
}
