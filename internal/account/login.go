package account

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskman/internal/route"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/validate"
)

// LoginForm is the login input.
type LoginForm struct {
	Username string `json:"username" label:"Username" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required"`
}

// LoginController submits credentials and stores the resulting session.
type LoginController struct {
	auth    service.AuthService
	session *session.Store
	nav     route.Navigator
	log     *zap.SugaredLogger

	mu           sync.Mutex
	loading      bool
	errorMessage string
}

// NewLoginController creates a LoginController.
func NewLoginController(auth service.AuthService, sess *session.Store, nav route.Navigator, opts ...Option) *LoginController {
	o := newOptions(opts)
	return &LoginController{auth: auth, session: sess, nav: nav, log: o.log}
}

// Loading reports whether a submission is running.
func (c *LoginController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ErrorMessage returns the message of the last failed submission.
func (c *LoginController) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMessage
}

// Submit validates form and logs in. Invalid input returns validate.Errors
// without contacting the server. On success the token is stored and the
// user is sent to the dashboard. Any failure returns a *SubmitError with
// InvalidCredentialsMessage.
func (c *LoginController) Submit(ctx context.Context, form LoginForm) error {
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
	c.mu.Unlock()

	err := c.login(ctx, form)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.errorMessage = InvalidCredentialsMessage
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Debugw("login failed", "username", form.Username, "error", err)
		return &SubmitError{Message: InvalidCredentialsMessage, Err: err}
	}

	c.nav.Navigate(route.Dashboard)
	return nil
}

func (c *LoginController) login(ctx context.Context, form LoginForm) error {
	resp, err := c.auth.Login(ctx, service.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		return err
	}
	if resp.Token == "" {
		// Nothing to store; navigation still happens.
		return nil
	}
	username := resp.Username
	if username == "" {
		username = form.Username
	}
	return c.session.Login(resp.Token, username)
}
