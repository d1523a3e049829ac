package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"taskman/internal/dashboard"
	"taskman/internal/exitcode"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskman whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	username, ok := env.Session.Username()
	if !ok {
		username = dashboard.DefaultUsername
	}
	fmt.Fprintln(out, username)

	token, _ := env.Session.Token()
	claims, err := peekClaims(token)
	if err != nil {
		// Opaque tokens are fine; there is just nothing more to show.
		env.logger().Debugw("token is not a readable JWT", "error", err)
		return exitcode.Success
	}
	if claims.Subject != "" {
		fmt.Fprintf(out, "subject: %s\n", claims.Subject)
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		state := "valid"
		if time.Now().After(exp) {
			state = "expired"
		}
		fmt.Fprintf(out, "expires: %s (%s)\n", exp.UTC().Format(time.RFC3339), state)
	}
	return exitcode.Success
}

// peekClaims decodes the claims of a JWT without verifying its signature.
// The server is the only party that can verify it.
func peekClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
