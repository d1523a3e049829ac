package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskman/internal/dashboard"
	"taskman/internal/exitcode"
	"taskman/internal/output"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(d string) {
	c.description = d
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "taskman add [--description <text>] <title...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	// A new task goes to the front of the list; no fetch is needed first.
	d := dashboard.New(env.Tasks, env.Session, discardNav, dashboard.WithLogger(env.logger()))
	d.SetForm(dashboard.TaskForm{Title: title, Description: c.description})

	task, err := d.SubmitCreate(ctx)
	if err != nil {
		return report(errOut, err)
	}

	if !quiet(env) {
		output.FormatTask(out, task)
	}
	return exitcode.Success
}
