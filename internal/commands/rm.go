package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/dashboard"
	"taskman/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes sets the yes flag (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskman rm [--yes] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.yes, "yes", "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	d, err := openDashboard(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	var confirm dashboard.Confirmer = newPrompter(env.In, errOut)
	if c.yes {
		confirm = dashboard.AlwaysConfirm
	}
	if err := d.Delete(ctx, id, confirm); err != nil {
		return reportTask(errOut, id, err)
	}

	if !quiet(env) {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
