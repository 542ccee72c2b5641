package commands

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	cserrors "github.com/systmms/confsecrets/internal/errors"
	"github.com/systmms/confsecrets/internal/providers/onepassword"
	"github.com/systmms/confsecrets/internal/transform"
	"github.com/systmms/confsecrets/tests/testutil"
)

const resolveConfig = `version: 0
options:
  env:
    allowUndefined: true
values:
  HOST: localhost
  PORT: 5432
  DB_PASSWORD:
    ENV: DB_PASSWORD
  OPTIONAL:
    ENV: NOT_SET
  ADMIN_PASSWORD:
    KEYCHAIN:
      service: db
      account: admin
`

func TestResolveCommand_RedactsReferences(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)
	tr.env["DB_PASSWORD"] = "s3cret"
	tr.keychain.SetSecret("db", "admin", []byte("adm1n"))

	output, err := runCommand(t, NewResolveCommand(tr.Runtime))
	require.NoError(t, err)

	assert.Equal(t, "HOST=localhost\nPORT=5432\nDB_PASSWORD=[REDACTED]\nADMIN_PASSWORD=[REDACTED]\n", output)
	assert.NotContains(t, output, "s3cret")
	assert.NotContains(t, output, "OPTIONAL")
}

func TestResolveCommand_Reveal(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)
	tr.env["DB_PASSWORD"] = "s3cret"
	tr.keychain.SetSecret("db", "admin", []byte("adm1n"))

	output, err := runCommand(t, NewResolveCommand(tr.Runtime), "--reveal")
	require.NoError(t, err)

	assert.Contains(t, output, "DB_PASSWORD=s3cret\n")
	assert.Contains(t, output, "ADMIN_PASSWORD=adm1n\n")
	assert.Equal(t, [][2]string{{"db", "admin"}}, tr.keychain.Queries)
}

func TestResolveCommand_SelectedNames(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)
	tr.env["DB_PASSWORD"] = "s3cret"

	output, err := runCommand(t, NewResolveCommand(tr.Runtime), "DB_PASSWORD", "HOST", "--reveal")
	require.NoError(t, err)

	assert.Equal(t, "DB_PASSWORD=s3cret\nHOST=localhost\n", output)
	assert.Empty(t, tr.keychain.Queries, "unselected values are not resolved")
}

func TestResolveCommand_UnknownName(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)

	_, err := runCommand(t, NewResolveCommand(tr.Runtime), "NOPE")

	var configErr cserrors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "NOPE", configErr.Value)
	assert.Contains(t, configErr.Suggestion, "HOST")
}

func TestResolveCommand_JSON(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)
	tr.env["DB_PASSWORD"] = "s3cret"
	tr.keychain.SetSecret("db", "admin", []byte("adm1n"))

	output, err := runCommand(t, NewResolveCommand(tr.Runtime), "--format", "json", "--reveal")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, map[string]any{
		"HOST":           "localhost",
		"PORT":           float64(5432),
		"DB_PASSWORD":    "s3cret",
		"OPTIONAL":       nil,
		"ADMIN_PASSWORD": "adm1n",
	}, got)

	assert.Less(t, strings.Index(output, `"HOST"`), strings.Index(output, `"PORT"`), "document order")
	assert.Less(t, strings.Index(output, `"OPTIONAL"`), strings.Index(output, `"ADMIN_PASSWORD"`), "document order")
}

func TestResolveCommand_YAML(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)
	tr.env["DB_PASSWORD"] = "s3cret"
	tr.keychain.SetSecret("db", "admin", []byte("adm1n"))

	output, err := runCommand(t, NewResolveCommand(tr.Runtime), "--format", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(output), &got))
	assert.Equal(t, "localhost", got["HOST"])
	assert.Equal(t, 5432, got["PORT"])
	assert.Equal(t, "[REDACTED]", got["DB_PASSWORD"])
	assert.Nil(t, got["OPTIONAL"])
	assert.True(t, strings.HasPrefix(output, "HOST: localhost\n"))
}

func TestResolveCommand_UnsupportedFormat(t *testing.T) {
	tr := newTestRuntime(t, resolveConfig)

	_, err := runCommand(t, NewResolveCommand(tr.Runtime), "--format", "toml")

	var userErr cserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "toml")
}

func TestResolveCommand_FailurePrintsNothing(t *testing.T) {
	content := `version: 0
values:
  HOST: localhost
  TOKEN:
    ENV: TOKEN
`
	tr := newTestRuntime(t, content)

	output, err := runCommand(t, NewResolveCommand(tr.Runtime))
	require.Error(t, err)
	assert.Empty(t, output)

	var userErr cserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "env provider error during resolution of TOKEN", userErr.Message)
	assert.NotEmpty(t, userErr.Suggestion)

	var unresolved *transform.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "TOKEN", unresolved.Fields["name"])
}

func TestResolveCommand_UnknownVariant(t *testing.T) {
	content := `version: 0
values:
  BROKEN:
    VAULT: secret/data
`
	tr := newTestRuntime(t, content)

	_, err := runCommand(t, NewResolveCommand(tr.Runtime))
	assert.ErrorIs(t, err, transform.ErrUnsupportedVariant)
}

func TestResolveCommand_OnePassword(t *testing.T) {
	content := `version: 0
options:
  1password:
    account: team
values:
  API_TOKEN:
    1PASSWORD:
      uuid: item-1
`
	tr := newTestRuntime(t, content)
	tr.env["OP_SESSION_team"] = "seed"
	op := testutil.OnePasswordMockResponses{}
	tr.exec.Enqueue(op.SigninOK("fresh"), op.ItemV2("item-1", "alice", "hunter2"))

	output, err := runCommand(t, NewResolveCommand(tr.Runtime), "--reveal")
	require.NoError(t, err)
	assert.Equal(t, "API_TOKEN=hunter2\n", output)

	calls := tr.exec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "op signin --raw --account team --session seed", calls[0].Line())
	assert.Equal(t, "op get --account team --session fresh item item-1", calls[1].Line())
}

func TestResolveCommand_Ask(t *testing.T) {
	content := `version: 0
values:
  PIN:
    ASK: Enter your PIN
`

	t.Run("interactive", func(t *testing.T) {
		tr := newTestRuntime(t, content)

		output, err := runCommand(t, NewResolveCommand(tr.Runtime), "--reveal")
		require.NoError(t, err)
		assert.Equal(t, "PIN=typed-answer\n", output)
		assert.Equal(t, []string{"Enter your PIN"}, tr.asked)
	})

	t.Run("non-interactive", func(t *testing.T) {
		tr := newTestRuntime(t, content)
		tr.Config.NonInteractive = true

		_, err := runCommand(t, NewResolveCommand(tr.Runtime))
		assert.ErrorIs(t, err, transform.ErrNotInteractive)
		assert.Empty(t, tr.asked)
	})

	t.Run("prompt failure", func(t *testing.T) {
		tr := newTestRuntime(t, content)
		tr.Asker = onepassword.AskFunc(func(context.Context, string) (string, error) {
			return "", errAskFailed
		})

		_, err := runCommand(t, NewResolveCommand(tr.Runtime))
		assert.ErrorIs(t, err, errAskFailed)
	})
}

func TestResolveCommand_MissingConfig(t *testing.T) {
	tr := newTestRuntime(t, "")

	_, err := runCommand(t, NewResolveCommand(tr.Runtime))

	var configErr cserrors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "configuration file not found", configErr.Message)
}

func TestScalarString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string", value: "plain", want: "plain"},
		{name: "int", value: 42, want: "42"},
		{name: "bool", value: true, want: "true"},
		{name: "mapping", value: map[string]any{"a": 1}, want: `{"a":1}`},
		{name: "sequence", value: []any{"x", 2}, want: `["x",2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scalarString(tt.value))
		})
	}
}

func TestResolveCommand_BuiltConfigNeverLogsSecrets(t *testing.T) {
	tr := newTestRuntime(t, "")
	tr.Config = testutil.NewTestConfig(t).
		WithTypeOption("keychain", "allowUndefined", true).
		WithValue("USER", "alice").
		WithValue("PASSWORD", map[string]any{"ENV": "APP_PASSWORD"}).
		WithValue("SIGNING_KEY", map[string]any{"KEYCHAIN": map[string]any{"service": "app", "account": "signer"}}).
		Load()
	logger := testutil.NewTestLogger(t, true)
	tr.Config.Logger = logger.Logger
	tr.env["APP_PASSWORD"] = "pa55w0rd"

	output, err := runCommand(t, NewResolveCommand(tr.Runtime))
	require.NoError(t, err)

	assert.Equal(t, "USER=alice\nPASSWORD=[REDACTED]\n", output)
	testutil.AssertSecretRedacted(t, output, "pa55w0rd")
	testutil.AssertNoSecretLeak(t, logger.GetOutput(), []string{"pa55w0rd"})
	logger.AssertContains(t, "SIGNING_KEY is undefined")
}
