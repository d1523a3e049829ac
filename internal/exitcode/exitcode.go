// Package exitcode defines exit codes for the CLI.
package exitcode

// Process exit codes shared by every command.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad input: arguments, validation, unknown task
	// or a declined confirmation.
	UserError = 1

	// AuthError indicates a missing session or a token the server refused.
	AuthError = 2

	// BackendError indicates an API, network or timeout failure.
	BackendError = 3
)
