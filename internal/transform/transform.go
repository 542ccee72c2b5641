// Package transform resolves tagged configuration values.
//
// A configuration value is either a literal, returned unchanged, or a
// single-key mapping whose key selects a backend:
//
//	{ENV: "DB_PASSWORD"}
//	{KEYCHAIN: {service: "db", account: "admin"}}
//	{1PASSWORD: {uuid: "abc123", field: "password"}}
//	{ASK: "Database password"}
//
// Backends report a missing target as *UnresolvedReferenceError unless the
// allowUndefined option is set, in which case the value resolves to nil.
package transform

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/systmms/confsecrets/internal/logging"
	"github.com/systmms/confsecrets/internal/metrics"
	"github.com/systmms/confsecrets/internal/providers/onepassword"
	"github.com/systmms/confsecrets/internal/shape"
)

// KeychainReader looks up generic passwords in an OS keychain.
type KeychainReader interface {
	GetPassword(ctx context.Context, service, account string) (string, bool, error)
}

// Deps are the collaborators of a Transformer. Every field is optional.
type Deps struct {
	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	Keychain KeychainReader

	// Ask answers ASK references and the 1Password master password prompt.
	Ask onepassword.Asker

	// OnePassword is the base configuration of 1Password clients. Account,
	// Command, Cache, ConfigPath, AllowSignin and Timeout are taken from
	// the resolution options.
	OnePassword onepassword.Config

	// NonInteractive disables ASK references and interactive signin.
	NonInteractive bool

	Logger  *logging.Logger
	Metrics *metrics.Recorder
}

// Transformer resolves configuration values. It is safe for concurrent use.
type Transformer struct {
	deps Deps

	mu      sync.Mutex
	clients map[clientKey]*onepassword.Client
}

type clientKey struct {
	account     string
	command     string
	cache       bool
	configPath  string
	allowSignin bool
	timeout     time.Duration
}

// New creates a Transformer.
func New(deps Deps) *Transformer {
	if deps.LookupEnv == nil {
		deps.LookupEnv = os.LookupEnv
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Transformer{
		deps:    deps,
		clients: make(map[clientKey]*onepassword.Client),
	}
}

// Close releases the session tokens of every 1Password client.
func (t *Transformer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, c := range t.clients {
		c.Close()
		delete(t.clients, key)
	}
}

// Transform resolves value. Raw values are returned unchanged; references
// resolve to a string, or to nil when undefined and allowUndefined is set.
func (t *Transformer) Transform(ctx context.Context, value any, opts Options) (any, error) {
	variant := Classify(value)

	var (
		result any
		err    error
	)
	switch v := variant.(type) {
	case Raw:
		return v.Value, nil
	case Unknown:
		err = &UnsupportedVariantError{Keys: v.Keys}
		t.deps.Metrics.RecordResolution("UNKNOWN", metrics.OutcomeError)
		return nil, err
	case Env:
		result, err = t.resolveEnv(v.Payload, opts.For(optionsKey(TagEnv)))
	case Keychain:
		result, err = t.resolveKeychain(ctx, v.Payload, opts.For(optionsKey(TagKeychain)))
	case OnePassword:
		result, err = t.resolveOnePassword(ctx, v.Payload, opts.For(optionsKey(TagOnePassword)))
	case Ask:
		result, err = t.resolveAsk(ctx, v.Payload, opts.For(optionsKey(TagAsk)))
	}

	outcome := metrics.OutcomeFor(err)
	if err == nil && result == nil {
		outcome = metrics.OutcomeUndefined
	}
	t.deps.Metrics.RecordResolution(variant.Tag(), outcome)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *Transformer) resolveEnv(payload any, opts Options) (any, error) {
	name, ok := payload.(string)
	if !ok {
		return nil, &shape.TypeError{Context: TagEnv, Expected: "string", Found: shape.Describe(payload)}
	}

	t.deps.Logger.Debug("Resolving ENV reference %q", name)
	if value, ok := t.deps.LookupEnv(name); ok {
		return value, nil
	}
	if opts.Bool("allowUndefined", false) {
		return nil, nil
	}
	return nil, &UnresolvedReferenceError{Variant: TagEnv, Fields: map[string]string{"name": name}}
}

func (t *Transformer) resolveKeychain(ctx context.Context, payload any, opts Options) (any, error) {
	ref, err := shape.Validate(payload, []string{"service", "account"}, nil, opts.Bool("allowUnknownProperties", false))
	if err != nil {
		return nil, err
	}
	service, err := stringField(TagKeychain, ref, "service")
	if err != nil {
		return nil, err
	}
	account, err := stringField(TagKeychain, ref, "account")
	if err != nil {
		return nil, err
	}

	if t.deps.Keychain == nil {
		return nil, ErrNoKeychain
	}

	t.deps.Logger.Debug("Resolving KEYCHAIN reference service=%q account=%q", service, account)
	password, found, err := t.deps.Keychain.GetPassword(ctx, service, account)
	if err != nil {
		return nil, fmt.Errorf("keychain lookup for account %s and service %s: %w", account, service, err)
	}
	if !found {
		if opts.Bool("allowUndefined", false) {
			return nil, nil
		}
		return nil, &UnresolvedReferenceError{
			Variant: TagKeychain,
			Fields:  map[string]string{"service": service, "account": account},
		}
	}
	return password, nil
}

func (t *Transformer) resolveOnePassword(ctx context.Context, payload any, opts Options) (any, error) {
	ref, err := shape.Validate(payload, []string{"uuid"}, []string{"vault", "includeTrash", "field"}, opts.Bool("allowUnknownProperties", false))
	if err != nil {
		return nil, err
	}
	uuid, err := stringField(TagOnePassword, ref, "uuid")
	if err != nil {
		return nil, err
	}
	getOpts := onepassword.GetItemOptions{}
	if _, ok := ref["vault"]; ok {
		if getOpts.Vault, err = stringField(TagOnePassword, ref, "vault"); err != nil {
			return nil, err
		}
	}
	if v, ok := ref["includeTrash"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, &shape.TypeError{Context: TagOnePassword, Expected: "boolean", Found: shape.Describe(v)}
		}
		getOpts.IncludeTrash = b
	}
	field := "password"
	if _, ok := ref["field"]; ok {
		if field, err = stringField(TagOnePassword, ref, "field"); err != nil {
			return nil, err
		}
	}

	client := t.onePasswordClient(opts)
	t.deps.Logger.Debug("Resolving 1PASSWORD reference uuid=%q field=%q", uuid, field)
	item, err := client.GetItem(ctx, uuid, getOpts)
	if err != nil {
		return nil, err
	}

	if value, ok := item.Field(field); ok {
		return value, nil
	}
	if opts.Bool("allowUndefined", false) {
		return nil, nil
	}
	return nil, &UnresolvedReferenceError{
		Variant: TagOnePassword,
		Fields:  map[string]string{"uuid": uuid, "field": field},
	}
}

// onePasswordClient returns the client for the effective client options,
// creating it on first use.
func (t *Transformer) onePasswordClient(opts Options) *onepassword.Client {
	key := clientKey{
		account:     opts.String("account", onepassword.DefaultAccount),
		command:     opts.String("command", onepassword.DefaultCommand),
		cache:       opts.Bool("cache", false),
		configPath:  opts.String("config", ""),
		allowSignin: opts.Bool("allowSignin", true) && !t.deps.NonInteractive,
		timeout:     opts.Duration("timeout", onepassword.DefaultTimeout),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[key]; ok {
		return c
	}

	cfg := t.deps.OnePassword
	cfg.Account = key.account
	cfg.Command = key.command
	cfg.Cache = key.cache
	cfg.ConfigPath = key.configPath
	cfg.AllowSignin = key.allowSignin
	cfg.Timeout = key.timeout
	if cfg.Ask == nil && !t.deps.NonInteractive {
		cfg.Ask = t.deps.Ask
	}
	if cfg.Logger == nil {
		cfg.Logger = t.deps.Logger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = t.deps.Metrics
	}
	if cfg.Getenv == nil {
		lookup := t.deps.LookupEnv
		cfg.Getenv = func(k string) string {
			v, _ := lookup(k)
			return v
		}
	}

	c := onepassword.NewClient(cfg)
	t.clients[key] = c
	return c
}

func (t *Transformer) resolveAsk(ctx context.Context, payload any, opts Options) (any, error) {
	var prompt string
	switch p := payload.(type) {
	case string:
		prompt = p
	default:
		ref, err := shape.Validate(payload, []string{"prompt"}, nil, opts.Bool("allowUnknownProperties", false))
		if err != nil {
			return nil, err
		}
		if prompt, err = stringField(TagAsk, ref, "prompt"); err != nil {
			return nil, err
		}
	}

	if t.deps.NonInteractive || t.deps.Ask == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInteractive, prompt)
	}
	answer, err := t.deps.Ask.Ask(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func stringField(tag string, ref map[string]any, key string) (string, error) {
	s, ok := ref[key].(string)
	if !ok {
		return "", &shape.TypeError{
			Context:  tag,
			Expected: "string",
			Found:    fmt.Sprintf("%s for %q", shape.Describe(ref[key]), key),
		}
	}
	return s, nil
}
