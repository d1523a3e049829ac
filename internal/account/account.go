// Package account implements the login and registration forms.
package account

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"taskman/internal/logging"
)

// Messages shown after a submission.
const (
	InvalidCredentialsMessage = "Invalid username or password"
	RegisteredMessage         = "Registration successful! You can now login."
	RegisterFailedMessage     = "Registration failed. Please try again."
)

// RedirectDelay is how long the registration confirmation stays on screen
// before moving to the login form.
const RedirectDelay = 2 * time.Second

// ErrInProgress is returned when a form is submitted while a previous
// submission is still running.
var ErrInProgress = errors.New("submission already in progress")

// SubmitError is a failed submission. Message is what the form displays.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func())

// AfterFunc schedules with time.AfterFunc.
func AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Immediately runs f synchronously, ignoring d.
func Immediately(_ time.Duration, f func()) { f() }

type options struct {
	log      *zap.SugaredLogger
	schedule Scheduler
}

// Option configures a controller.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) { o.log = log }
}

// WithScheduler replaces the scheduler used for the delayed redirect after
// registration.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.schedule = s }
}

func newOptions(opts []Option) options {
	o := options{log: logging.Nop(), schedule: AfterFunc}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Nop()
	}
	if o.schedule == nil {
		o.schedule = AfterFunc
	}
	return o
}
