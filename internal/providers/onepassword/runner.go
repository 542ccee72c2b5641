package onepassword

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/systmms/confsecrets/internal/secure"
	pkgexec "github.com/systmms/confsecrets/pkg/exec"
)

// State is the signin state of a Runner.
type State int

const (
	StateUnauthenticated State = iota
	StateProbingSession
	StateNeedsInteractiveSignin
	StateAuthenticated
	StateSigninFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateProbingSession:
		return "probing-session"
	case StateNeedsInteractiveSignin:
		return "needs-interactive-signin"
	case StateAuthenticated:
		return "authenticated"
	case StateSigninFailed:
		return "signin-failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// probeInput is written to the probe so that op never blocks on the terminal
// when the session is invalid.
var probeInput = []byte(" ")

// Runner runs op commands with a valid session token.
//
// The token is guarded for memory safety only. Concurrent RunCommand calls
// that find no session may each perform their own signin.
type Runner struct {
	cfg Config

	mu    sync.Mutex
	token *secure.SecureBuffer
	state State
}

// NewRunner creates a Runner, seeding its token from OP_SESSION_<account>.
func NewRunner(cfg Config) *Runner {
	cfg = cfg.withDefaults()
	return &Runner{
		cfg:   cfg,
		token: secure.NewSecureString(cfg.Getenv(SessionEnvVar(cfg.Account))),
	}
}

// Account returns the configured account shorthand.
func (r *Runner) Account() string {
	return r.cfg.Account
}

// State returns the current signin state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SessionToken returns the current session token, which may be empty.
func (r *Runner) SessionToken() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token.Reveal()
}

// Close destroys the in-memory session token.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token.Destroy()
	r.state = StateUnauthenticated
}

// RunCommand ensures a session exists, then runs
// `op <command> <common args> --session <token> <args...>` and returns its stdout.
func (r *Runner) RunCommand(ctx context.Context, command string, args ...string) (string, error) {
	if err := r.EnsureSignedIn(ctx); err != nil {
		return "", err
	}

	token, err := r.SessionToken()
	if err != nil {
		return "", err
	}

	full := make([]string, 0, len(args)+8)
	full = append(full, command)
	full = append(full, r.commonArgs()...)
	full = append(full, "--session", token)
	full = append(full, args...)

	res, err := r.execute(ctx, command, pkgexec.Command{Name: r.cfg.Command, Args: full})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// EnsureSignedIn probes the current session and signs in when it is invalid.
func (r *Runner) EnsureSignedIn(ctx context.Context) error {
	token, err := r.SessionToken()
	if err != nil {
		return err
	}

	r.setState(StateProbingSession)
	r.cfg.Logger.Debug("Probing 1Password session for account %q", r.cfg.Account)

	args := append([]string{"signin", "--raw"}, r.commonArgs()...)
	args = append(args, "--session", token)

	res, err := r.execute(ctx, "signin", pkgexec.Command{Name: r.cfg.Command, Args: args, Input: probeInput})
	if err == nil {
		r.setToken(strings.TrimSpace(res.Stdout), StateAuthenticated)
		r.cfg.Logger.Debug("1Password session for account %q is valid", r.cfg.Account)
		return nil
	}

	var exitErr *pkgexec.ExitError
	if !errors.As(err, &exitErr) {
		r.setState(StateUnauthenticated)
		return err
	}

	r.setState(StateNeedsInteractiveSignin)
	r.cfg.Logger.Debug("No valid 1Password session for account %q (exit code %d)", r.cfg.Account, exitErr.ExitCode)

	token, err = r.signin(ctx)
	r.cfg.Metrics.RecordSignin(r.cfg.Account, err)
	if err != nil {
		r.setState(StateSigninFailed)
		return err
	}
	r.setToken(token, StateAuthenticated)
	r.cfg.Logger.Debug("Signed in to 1Password account %q", r.cfg.Account)
	return nil
}

func (r *Runner) signin(ctx context.Context) (string, error) {
	if !r.cfg.AllowSignin {
		return "", &SigninRequiredError{Account: r.cfg.Account, Command: r.cfg.Command}
	}

	cmd := pkgexec.Command{
		Name: r.cfg.Command,
		Args: append([]string{"signin", "--raw"}, r.commonArgs()...),
	}

	if r.cfg.Ask != nil {
		prompt := fmt.Sprintf("Enter the master key for your 1password %q account", r.cfg.Account)
		password, err := r.cfg.Ask.Ask(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read 1password master key: %w", err)
		}
		if password == "" {
			return "", noPasswordError(r.cfg.Account)
		}
		cmd.Input = []byte(password)
		defer secure.Wipe(cmd.Input)
	}

	res, err := r.execute(ctx, "signin", cmd)
	if err != nil {
		var exitErr *pkgexec.ExitError
		if errors.As(err, &exitErr) {
			return "", &SigninFailedError{
				Account:  r.cfg.Account,
				ExitCode: exitErr.ExitCode,
				Stderr:   exitErr.Stderr,
				Err:      err,
			}
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// execute runs one op invocation under the configured timeout.
func (r *Runner) execute(ctx context.Context, label string, cmd pkgexec.Command) (pkgexec.Result, error) {
	runCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	r.cfg.Logger.Debug("Running %s", cmd)
	start := time.Now()
	res, err := r.cfg.Executor.Execute(runCtx, cmd)
	if err != nil && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = &TimeoutError{Command: cmd.String(), After: r.cfg.Timeout}
	}
	r.cfg.Metrics.RecordCommand(label, time.Since(start), err)
	return res, err
}

func (r *Runner) commonArgs() []string {
	args := []string{"--account", r.cfg.Account}
	if r.cfg.Cache {
		args = append(args, "--cache")
	}
	if r.cfg.ConfigPath != "" {
		args = append(args, "--config", r.cfg.ConfigPath)
	}
	return args
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

func (r *Runner) setToken(token string, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token.Destroy()
	r.token = secure.NewSecureString(token)
	r.state = s
}
