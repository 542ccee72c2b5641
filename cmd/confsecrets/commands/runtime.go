package commands

import (
	"os"
	"os/exec"

	"github.com/systmms/confsecrets/internal/config"
	"github.com/systmms/confsecrets/internal/metrics"
	"github.com/systmms/confsecrets/internal/prompt"
	"github.com/systmms/confsecrets/internal/providers"
	"github.com/systmms/confsecrets/internal/providers/onepassword"
	"github.com/systmms/confsecrets/internal/transform"
	pkgexec "github.com/systmms/confsecrets/pkg/exec"
)

// Runtime carries the collaborators shared by every command. Zero fields
// fall back to the real environment.
type Runtime struct {
	Config *config.Config

	Executor  pkgexec.CommandExecutor
	Keychain  *providers.KeychainProvider
	Asker     onepassword.Asker
	LookupEnv func(string) (string, bool)
	LookPath  func(string) (string, error)

	// Metrics is set when --metrics-textfile is given.
	Metrics *metrics.Recorder
}

// NewRuntime creates a runtime bound to cfg.
func NewRuntime(cfg *config.Config) *Runtime {
	return &Runtime{Config: cfg}
}

func (r *Runtime) lookupEnv() func(string) (string, bool) {
	if r.LookupEnv != nil {
		return r.LookupEnv
	}
	return os.LookupEnv
}

func (r *Runtime) lookPath() func(string) (string, error) {
	if r.LookPath != nil {
		return r.LookPath
	}
	return exec.LookPath
}

func (r *Runtime) keychain() *providers.KeychainProvider {
	if r.Keychain == nil {
		r.Keychain = providers.NewKeychainProvider()
	}
	return r.Keychain
}

// asker returns nil in non-interactive mode. The terminal prompt is created
// once so every prompt of a run reads from the same input buffer.
func (r *Runtime) asker() onepassword.Asker {
	if r.Config.NonInteractive {
		return nil
	}
	if r.Asker == nil {
		r.Asker = prompt.NewTerminal()
	}
	return r.Asker
}

// transformer builds a Transformer wired to the runtime.
func (r *Runtime) transformer() *transform.Transformer {
	return transform.New(transform.Deps{
		LookupEnv:      r.lookupEnv(),
		Keychain:       r.keychain(),
		Ask:            r.asker(),
		OnePassword:    onepassword.Config{Executor: r.Executor},
		NonInteractive: r.Config.NonInteractive,
		Logger:         r.Config.Logger,
		Metrics:        r.Metrics,
	})
}

// onePasswordConfig derives runner configuration from the 1password
// resolution options, with account overriding the configured one when set.
func (r *Runtime) onePasswordConfig(opts transform.Options, account string) onepassword.Config {
	opts = opts.For("1password")

	cfg := onepassword.DefaultConfig()
	cfg.Account = opts.String("account", onepassword.DefaultAccount)
	if account != "" {
		cfg.Account = account
	}
	cfg.Command = opts.String("command", onepassword.DefaultCommand)
	cfg.Cache = opts.Bool("cache", false)
	cfg.ConfigPath = opts.String("config", "")
	cfg.AllowSignin = opts.Bool("allowSignin", true) && !r.Config.NonInteractive
	cfg.Timeout = opts.Duration("timeout", onepassword.DefaultTimeout)
	cfg.Ask = r.asker()
	cfg.Executor = r.Executor
	cfg.Logger = r.Config.Logger
	cfg.Metrics = r.Metrics

	lookup := r.lookupEnv()
	cfg.Getenv = func(k string) string {
		v, _ := lookup(k)
		return v
	}
	return cfg
}

// documentOptions loads the configuration when it exists and returns its
// resolution options. A missing file yields empty options.
func (r *Runtime) documentOptions() (transform.Options, error) {
	if r.Config.Document == nil {
		if _, err := os.Stat(r.Config.Path); os.IsNotExist(err) {
			return transform.Options{}, nil
		}
		if err := r.Config.Load(); err != nil {
			return nil, err
		}
	}
	return transform.Options(r.Config.Document.Options), nil
}
