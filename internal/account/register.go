package account

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskman/internal/route"
	"taskman/internal/service"
	"taskman/internal/validate"
)

// RegisterForm is the registration input.
type RegisterForm struct {
	Username        string `json:"username" label:"Username" validate:"required,min=3"`
	Password        string `json:"password" label:"Password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" label:"Confirm password" validate:"required,eqfield=Password"`
}

// Messages implements validate.Messager.
func (RegisterForm) Messages() map[string]string {
	return map[string]string{
		"confirmPassword.required": "Please confirm your password",
	}
}

// RegisterController creates accounts.
type RegisterController struct {
	auth     service.AuthService
	nav      route.Navigator
	log      *zap.SugaredLogger
	schedule Scheduler

	mu             sync.Mutex
	loading        bool
	errorMessage   string
	successMessage string
}

// NewRegisterController creates a RegisterController.
func NewRegisterController(auth service.AuthService, nav route.Navigator, opts ...Option) *RegisterController {
	o := newOptions(opts)
	return &RegisterController{auth: auth, nav: nav, log: o.log, schedule: o.schedule}
}

// Loading reports whether a submission is running.
func (c *RegisterController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ErrorMessage returns the message of the last failed submission.
func (c *RegisterController) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMessage
}

// SuccessMessage returns the confirmation shown after a successful submission.
func (c *RegisterController) SuccessMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successMessage
}

// Submit validates form and registers the account. Invalid input returns
// validate.Errors without contacting the server. On success the login
// screen is scheduled after RedirectDelay. A failure returns a *SubmitError
// carrying the server's message, or RegisterFailedMessage when it sent none.
func (c *RegisterController) Submit(ctx context.Context, form RegisterForm) error {
	if err := validate.Struct(form); err != nil {
		return err
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrInProgress
	}
	c.loading = true
	c.errorMessage = ""
	c.successMessage = ""
	c.mu.Unlock()

	res, err := c.auth.Register(ctx, service.Credentials{Username: form.Username, Password: form.Password})

	c.mu.Lock()
	c.loading = false
	if err != nil {
		msg, ok := service.ServerMessage(err)
		if !ok {
			msg = RegisterFailedMessage
		}
		c.errorMessage = msg
		c.mu.Unlock()
		c.log.Debugw("registration failed", "username", form.Username, "error", err)
		return &SubmitError{Message: msg, Err: err}
	}
	c.successMessage = RegisteredMessage
	c.mu.Unlock()

	c.log.Debugw("registered", "username", form.Username, "message", res.Message)
	c.schedule(RedirectDelay, func() { c.nav.Navigate(route.Login) })
	return nil
}
