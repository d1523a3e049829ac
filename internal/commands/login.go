package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/account"
	"taskman/internal/dashboard"
	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/route"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session" }
func (c *LoginCmd) Usage() string     { return "taskman login [--username <u>] [--password <p>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	p := newPrompter(env.In, errOut)

	form := account.LoginForm{Username: c.username, Password: c.password}
	var err error
	if form.Username == "" {
		if form.Username, err = p.Line("Username"); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if form.Password == "" {
		if form.Password, err = p.Secret("Password"); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	nav := &route.Recorder{}
	ctrl := account.NewLoginController(env.Auth, env.Session, nav, account.WithLogger(env.logger()))
	if err := ctrl.Submit(ctx, form); err != nil {
		return report(errOut, err)
	}

	if nav.Last() != route.Dashboard || quiet(env) {
		return exitcode.Success
	}

	d := dashboard.New(env.Tasks, env.Session, nav, dashboard.WithLogger(env.logger()))
	fmt.Fprintf(out, "Welcome, %s!\n", d.Username())
	if err := d.Load(ctx); err != nil {
		// The session is stored; a failed first fetch does not undo the login.
		env.logger().Warnw("loading tasks after login failed", "error", err)
		return exitcode.Success
	}
	output.Dashboard(out, d)
	return exitcode.Success
}
