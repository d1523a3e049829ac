package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"taskman/internal/cli"
	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/testutil"
)

// testFactory returns an env factory backed by svc and store. The loaded
// config is captured in *got when got is non-nil.
func testFactory(svc *testutil.FakeService, store *session.Store, got **config.Config) cli.EnvFactory {
	return func(ctx context.Context, cfg *config.Config) (*commands.Env, error) {
		if got != nil {
			*got = cfg
		}
		return &commands.Env{
			Config:  cfg,
			Session: store,
			Auth:    svc,
			Tasks:   svc,
			In:      strings.NewReader(""),
		}, nil
	}
}

func newDispatcher(t *testing.T, loggedIn bool) (*cli.Dispatcher, *testutil.FakeService, string) {
	t.Helper()
	svc := testutil.NewFakeService()
	store := session.NewStore(session.NewMemoryStorage())
	if loggedIn {
		if err := store.Login("token-alice", "alice"); err != nil {
			t.Fatal(err)
		}
	}
	return cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, store, nil)), svc, t.TempDir()
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher, _, _ := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher, _, _ := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher, _, dir := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help", "--config", dir}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher, _, dir := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version", "--config", dir}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if stdout.String() != "taskman 0.1.0\n" {
		t.Errorf("expected 'taskman 0.1.0\\n', got %q", stdout.String())
	}
}

func TestDispatcher_CommandHelpFlag(t *testing.T) {
	dispatcher, svc, _ := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"add", "--help"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout.String(), "Usage: taskman add") {
		t.Errorf("unexpected usage output %q", stdout.String())
	}
	if svc.TotalCalls() != 0 {
		t.Error("expected no backend calls")
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher, _, _ := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help", "--unknown"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: --unknown\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	dispatcher, svc, dir := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list", "--config", dir}, &stdout, &stderr)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: not logged in (run: taskman login)\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
	if svc.TotalCalls() != 0 {
		t.Error("expected no backend calls")
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dispatcher, svc, _ := newDispatcher(t, true)
	svc.AddTask("Buy milk", service.StatusPending)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	expected := "alice: 1 pending, 0 completed\n   1  [ ] Buy milk\n"
	if stdout.String() != expected {
		t.Errorf("expected %q, got %q", expected, stdout.String())
	}
}

func TestDispatcher_InterspersedFlags(t *testing.T) {
	dispatcher, svc, dir := newDispatcher(t, true)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(),
		[]string{"add", "Buy", "--config", dir, "-d", "2 litres", "milk"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	stored := svc.StoredTasks()
	if len(stored) != 1 || stored[0].Title != "Buy milk" || stored[0].Description != "2 litres" {
		t.Errorf("unexpected stored tasks %+v", stored)
	}
}

func TestDispatcher_CommonFlagsReachConfig(t *testing.T) {
	svc := testutil.NewFakeService()
	store := session.NewStore(session.NewMemoryStorage())
	var got *config.Config
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, store, &got))
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{
		"version", "--config", dir, "--server", "http://tasks.example:9000/", "--timeout", "2s", "--quiet", "--debug",
	}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if got == nil {
		t.Fatal("factory was not called")
	}
	if got.Dir != dir {
		t.Errorf("expected Dir %q, got %q", dir, got.Dir)
	}
	if got.Server != "http://tasks.example:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", got.Server)
	}
	if got.Timeout.String() != "2s" {
		t.Errorf("expected timeout 2s, got %s", got.Timeout)
	}
	if !got.Quiet || !got.Debug {
		t.Errorf("expected quiet and debug set, got %+v", got)
	}
}

func TestDispatcher_InvalidTimeout(t *testing.T) {
	dispatcher, _, dir := newDispatcher(t, false)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version", "--config", dir, "--timeout", "0s"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr.String(), "error: invalid timeout") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (*commands.Env, error) {
		return nil, errors.New("cannot open session")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version", "--config", t.TempDir()}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr.String() != "error: cannot open session\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}
