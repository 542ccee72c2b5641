package onepassword

import (
	"context"
	"os"
	"time"

	"github.com/systmms/confsecrets/internal/logging"
	"github.com/systmms/confsecrets/internal/metrics"
	pkgexec "github.com/systmms/confsecrets/pkg/exec"
)

const (
	// DefaultAccount is the account shorthand used when none is configured.
	DefaultAccount = "my"
	// DefaultCommand is the 1Password CLI executable.
	DefaultCommand = "op"
	// DefaultTimeout bounds a single op invocation.
	DefaultTimeout = 5 * time.Minute
)

// Asker collects a secret from the operator, typically the master password.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// AskFunc adapts a function to Asker.
type AskFunc func(ctx context.Context, prompt string) (string, error)

// Ask calls f.
func (f AskFunc) Ask(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config configures a Runner.
type Config struct {
	Account    string
	Command    string
	Cache      bool
	ConfigPath string

	// AllowSignin permits an interactive signin when no valid session exists.
	AllowSignin bool

	// Ask collects the master password. When nil, op prompts on the
	// inherited terminal itself.
	Ask Asker

	Executor pkgexec.CommandExecutor

	// Timeout bounds each op invocation. Zero disables the bound.
	Timeout time.Duration

	Logger  *logging.Logger
	Metrics *metrics.Recorder

	// Getenv reads OP_SESSION_<account>. Defaults to os.Getenv.
	Getenv func(string) string
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Account:     DefaultAccount,
		Command:     DefaultCommand,
		AllowSignin: true,
		Timeout:     DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.Account == "" {
		c.Account = DefaultAccount
	}
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if c.Executor == nil {
		c.Executor = pkgexec.DefaultExecutor()
	}
	if c.Logger == nil {
		c.Logger = logging.Discard()
	}
	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}
	return c
}

// SessionEnvVar names the environment variable op reads the session of
// account from.
func SessionEnvVar(account string) string {
	return "OP_SESSION_" + account
}
