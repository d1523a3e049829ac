package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/account"
	"taskman/internal/exitcode"
	"taskman/internal/route"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	password string
	confirm  string
	fs       *pflag.FlagSet
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskman register [--username <u>] [--password <p>] [--confirm <p>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
	c.fs = fs
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	p := newPrompter(env.In, errOut)

	form := account.RegisterForm{Username: c.username, Password: c.password, ConfirmPassword: c.confirm}
	var err error
	if !c.changed("username") {
		if form.Username, err = p.Line("Username"); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if !c.changed("password") {
		if form.Password, err = p.Secret("Password"); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if !c.changed("confirm") {
			if form.ConfirmPassword, err = p.Secret("Confirm password"); err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
		}
	} else if !c.changed("confirm") {
		// A password given as a flag needs no second entry.
		form.ConfirmPassword = form.Password
	}

	nav := &route.Recorder{}
	ctrl := account.NewRegisterController(env.Auth, nav,
		account.WithLogger(env.logger()),
		account.WithScheduler(account.Immediately))
	if err := ctrl.Submit(ctx, form); err != nil {
		return report(errOut, err)
	}

	if !quiet(env) {
		fmt.Fprintln(out, ctrl.SuccessMessage())
		if nav.Last() == route.Login {
			fmt.Fprintln(out, "Next: taskman login")
		}
	}
	return exitcode.Success
}

func (c *RegisterCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}
