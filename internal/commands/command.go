// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"taskman/internal/config"
	"taskman/internal/logging"
	"taskman/internal/service"
	"taskman/internal/session"
)

// Env carries everything a command may use. It is built once per
// invocation from the loaded configuration.
type Env struct {
	Config  *config.Config
	Session *session.Store
	Auth    service.AuthService
	Tasks   service.TaskService
	Log     *zap.SugaredLogger

	// In is read for prompts and by the interactive shell.
	In io.Reader
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	// Commands like help, version, register, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// logger returns env.Log, or a no-op logger when unset.
func (e *Env) logger() *zap.SugaredLogger {
	if e == nil || e.Log == nil {
		return logging.Nop()
	}
	return e.Log
}
