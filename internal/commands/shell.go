package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskman/internal/dashboard"
	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/route"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the interactive dashboard.
type ShellCmd struct{}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"dashboard"} }
func (c *ShellCmd) Synopsis() string  { return "Interactive dashboard" }
func (c *ShellCmd) Usage() string     { return "taskman shell" }
func (c *ShellCmd) NeedsAuth() bool   { return true }

func (c *ShellCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	s := &shell{
		p:      newPrompter(env.In, errOut),
		out:    out,
		errOut: errOut,
	}
	s.dash = dashboard.New(env.Tasks, env.Session, route.NavigatorFunc(func(to route.Route) {
		if to == route.Login {
			s.loggedOut = true
			s.done = true
		}
	}), dashboard.WithLogger(env.logger()))

	if err := s.dash.Load(ctx); err != nil {
		return report(errOut, err)
	}
	fmt.Fprintf(out, "Welcome, %s!\n", s.dash.Username())
	output.Dashboard(out, s.dash)

	for !s.done {
		if ctx.Err() != nil {
			return exitcode.Success
		}
		line, err := s.p.ReadLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return exitcode.Success
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		s.exec(ctx, line)
	}
	if s.loggedOut {
		fmt.Fprintln(out, "Logged out.")
	}
	return exitcode.Success
}

type shell struct {
	dash   *dashboard.Controller
	p      *prompter
	out    io.Writer
	errOut io.Writer

	done      bool
	loggedOut bool
}

// exec runs one shell line. Errors are printed and the loop continues.
func (s *shell) exec(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "list", "ls":
		output.Dashboard(s.out, s.dash)

	case "filter":
		f, err := dashboard.ParseFilter(rest)
		if err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
			return
		}
		s.dash.SetFilter(f)
		output.Dashboard(s.out, s.dash)

	case "add":
		title, desc, _ := strings.Cut(rest, "|")
		s.dash.SetForm(dashboard.TaskForm{Title: strings.TrimSpace(title), Description: strings.TrimSpace(desc)})
		task, err := s.dash.SubmitCreate(ctx)
		if err != nil {
			report(s.errOut, err)
			return
		}
		output.FormatTask(s.out, task)

	case "toggle", "done":
		s.withID(rest, func(id int64) error {
			task, err := s.dash.Toggle(ctx, id)
			if err == nil {
				output.FormatTask(s.out, task)
			}
			return err
		})

	case "edit":
		s.withID(rest, func(id int64) error {
			if err := s.dash.BeginEdit(id); err != nil {
				return err
			}
			draft, _ := s.dash.Draft(id)
			output.FormatDraft(s.out, id, draft)
			return nil
		})

	case "title", "desc":
		idArg, text, _ := strings.Cut(rest, " ")
		s.withID(idArg, func(id int64) error {
			draft, ok := s.dash.Draft(id)
			if !ok {
				return dashboard.ErrNotEditing
			}
			if verb == "title" {
				draft.Title = strings.TrimSpace(text)
			} else {
				draft.Description = strings.TrimSpace(text)
			}
			if err := s.dash.SetDraft(id, draft); err != nil {
				return err
			}
			output.FormatDraft(s.out, id, draft)
			return nil
		})

	case "save":
		s.withID(rest, func(id int64) error {
			task, err := s.dash.SaveEdit(ctx, id)
			if err == nil {
				output.FormatTask(s.out, task)
			}
			return err
		})

	case "cancel":
		s.withID(rest, s.dash.CancelEdit)

	case "rm", "delete":
		s.withID(rest, func(id int64) error {
			if err := s.dash.Delete(ctx, id, s.p); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "ok")
			return nil
		})

	case "reload":
		if err := s.dash.Load(ctx); err != nil {
			report(s.errOut, err)
			return
		}
		output.Dashboard(s.out, s.dash)

	case "logout":
		if err := s.dash.Logout(); err != nil {
			fmt.Fprintf(s.errOut, "error: failed to remove session: %v\n", err)
		}

	case "help", "?":
		fmt.Fprint(s.out, shellHelp)

	case "quit", "exit":
		s.done = true

	default:
		fmt.Fprintf(s.errOut, "error: unknown command: %s (try: help)\n", verb)
	}
}

func (s *shell) withID(arg string, fn func(id int64) error) {
	id, err := ParseTaskID(strings.Fields(arg))
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return
	}
	if err := fn(id); err != nil {
		reportTask(s.errOut, id, err)
	}
}

const shellHelp = `Commands:
  list                       Show tasks under the current filter
  filter all|pending|completed
  add <title> [| <description>]
  toggle <id>                Switch pending/completed
  edit <id>                  Start editing a task
  title <id> <text>          Change the title of an open edit
  desc <id> <text>           Change the description of an open edit
  save <id>                  Send an open edit
  cancel <id>                Discard an open edit
  rm <id>                    Delete a task (asks first)
  reload                     Fetch tasks again
  logout                     Clear the session and leave
  quit                       Leave
`
