package commands

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/systmms/confsecrets/internal/config"
	"github.com/systmms/confsecrets/internal/logging"
	"github.com/systmms/confsecrets/internal/providers"
	"github.com/systmms/confsecrets/internal/providers/onepassword"
	"github.com/systmms/confsecrets/tests/fakes"
	"github.com/systmms/confsecrets/tests/testutil"
)

type testRuntime struct {
	*Runtime
	exec     *testutil.MockCommandExecutor
	keychain *fakes.FakeKeychainClient
	env      testutil.Env
	asked    []string
}

// newTestRuntime writes content as the configuration file (unless empty)
// and wires every collaborator to a fake.
func newTestRuntime(t *testing.T, content string) *testRuntime {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultPath)
	if content != "" {
		path = testutil.WriteTestConfig(t, content)
	}

	tr := &testRuntime{
		exec:     testutil.NewMockCommandExecutor(),
		keychain: fakes.NewFakeKeychainClient(),
		env:      testutil.Env{},
	}
	tr.Runtime = &Runtime{
		Config:   &config.Config{Path: path, Logger: logging.Discard()},
		Executor: tr.exec,
		Keychain: providers.NewKeychainProviderWithClient(tr.keychain),
		Asker: onepassword.AskFunc(func(_ context.Context, prompt string) (string, error) {
			tr.asked = append(tr.asked, prompt)
			return "typed-answer", nil
		}),
		LookupEnv: tr.env.Lookup,
		LookPath: func(name string) (string, error) {
			return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
		},
	}
	return tr
}

// runCommand executes cmd with args and returns its stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return out.String(), err
}

var errAskFailed = errors.New("prompt closed")
