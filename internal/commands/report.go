package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskman/internal/account"
	"taskman/internal/dashboard"
	"taskman/internal/exitcode"
	"taskman/internal/route"
	"taskman/internal/service"
	"taskman/internal/validate"
)

// discardNav ignores navigation; one-shot commands exit instead.
var discardNav = route.NavigatorFunc(func(route.Route) {})

// report prints err and returns the matching exit code.
func report(errOut io.Writer, err error) int {
	return reportTask(errOut, 0, err)
}

// reportTask is report for errors about task id. id 0 means no task.
func reportTask(errOut io.Writer, id int64, err error) int {
	var verrs validate.Errors
	var submit *account.SubmitError
	var serr *service.Error

	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fmt.Fprintf(errOut, "error: %s\n", fe.Message)
		}
		return exitcode.UserError

	case errors.Is(err, dashboard.ErrNotConfirmed):
		fmt.Fprintln(errOut, "cancelled")
		return exitcode.UserError

	case errors.Is(err, dashboard.ErrTaskNotFound) && id > 0,
		id > 0 && service.StatusCode(err) == http.StatusNotFound:
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError

	case errors.Is(err, dashboard.ErrTaskBusy),
		errors.Is(err, dashboard.ErrCreateInProgress),
		errors.Is(err, dashboard.ErrNotEditing),
		errors.Is(err, account.ErrInProgress),
		errors.Is(err, ErrTaskIDRequired):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError

	case errors.As(err, &submit):
		fmt.Fprintf(errOut, "error: %s\n", submit.Message)
		return submitExitCode(submit)

	case errors.As(err, &serr):
		if isAuthStatus(serr.Status) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError

	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
}

func submitExitCode(e *account.SubmitError) int {
	status := service.StatusCode(e.Err)
	switch {
	case isAuthStatus(status):
		return exitcode.AuthError
	case status >= 400 && status < 500:
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func quiet(env *Env) bool {
	return env != nil && env.Config != nil && env.Config.Quiet
}
