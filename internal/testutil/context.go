package testutil

import (
	"context"
	"net/http"
)

func contextWithUser(r *http.Request, username string) context.Context {
	return context.WithValue(r.Context(), ctxUser{}, username)
}

func userFrom(r *http.Request) string {
	u, _ := r.Context().Value(ctxUser{}).(string)
	return u
}
