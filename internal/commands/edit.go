package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/exitcode"
	"taskman/internal/output"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       string
	description string
	fs          *pflag.FlagSet
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's title or description" }
func (c *EditCmd) Usage() string {
	return "taskman edit <id> [--title <text>] [--description <text>]"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.title, "title", "t", "", "")
	fs.StringVarP(&c.description, "description", "d", "", "")
	c.fs = fs
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.changed("title") && !c.changed("description") {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}

	d, err := openDashboard(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	if err := d.BeginEdit(id); err != nil {
		return reportTask(errOut, id, err)
	}
	draft, _ := d.Draft(id)
	if c.changed("title") {
		draft.Title = c.title
	}
	if c.changed("description") {
		draft.Description = c.description
	}
	if err := d.SetDraft(id, draft); err != nil {
		return reportTask(errOut, id, err)
	}

	task, err := d.SaveEdit(ctx, id)
	if err != nil {
		_ = d.CancelEdit(id)
		return reportTask(errOut, id, err)
	}

	if !quiet(env) {
		output.FormatTask(out, task)
	}
	return exitcode.Success
}

func (c *EditCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}
