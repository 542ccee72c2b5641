package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/systmms/confsecrets/internal/errors"
	"github.com/systmms/confsecrets/internal/logging"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Details: Connection timeout")
	assert.Contains(t, errMsg, "Try: Check network connectivity")
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("boom")
	err := errors.ConfigError{
		Field:      "values.db_password",
		Value:      "KEYCHAIN",
		Message:    "Invalid reference",
		Suggestion: "Use service and account keys",
		Err:        base,
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "values.db_password")
	assert.Contains(t, errMsg, "KEYCHAIN")
	assert.Contains(t, errMsg, "Invalid reference")
	assert.Contains(t, errMsg, "service and account")
	assert.ErrorIs(t, err, base)
}

// TestCommandErrorFormatting verifies CommandError includes exit code
func TestCommandErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.CommandError{
		Command:    "op get item",
		ExitCode:   1,
		Message:    "not signed in",
		Suggestion: "Run 'op signin'",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "op get item")
	assert.Contains(t, errMsg, "exit code: 1")
	assert.Contains(t, errMsg, "not signed in")
	assert.Contains(t, errMsg, "op signin")
}

func TestProviderErrorKeepsCause(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("keychain query error for s/a: %s", logging.Secret("hunter2"))
	err := errors.ProviderError("keychain", "resolve", base)

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "keychain provider error during resolve")
	assert.Contains(t, err.Error(), "Details: keychain query error for s/a: [REDACTED]")
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestProviderSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		provider           string
		errorMsg           string
		expectedSuggestion string
	}{
		{"1password signin required", "1password", "you are not signed into the 1password cli; see `op signin --help` for details", "confsecrets signin"},
		{"1password no password", "1password", `no password provided for 1password "my" account`, "master password"},
		{"1password signin failed", "1password", "unexpected exit code 145 while running 1password signin command", "op account list"},
		{"1password timeout", "1password", "op get timed out after 5s", "timeout option"},
		{"1password item", "1password", `"abc" isn't an item`, "op list items"},
		{"1password missing cli", "1password", `exec: "op": executable file not found in $PATH`, "Install 1Password CLI"},
		{"keychain denied", "keychain", "keychain access denied", "OS prompts"},
		{"keychain headless", "keychain", "keychain requires GUI environment for authentication", "ENV reference"},
		{"keychain missing", "keychain", "could not find keychain entry for account a and service s", "secret-tool"},
		{"env missing", "env", `The requested environment variable "X" is not defined.`, "allowUndefined"},
		{"shape", "ask", "missing required properties: prompt", "documented keys"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errors.ProviderError(tt.provider, "resolve", stderrors.New(tt.errorMsg))
			assert.Contains(t, err.Error(), tt.expectedSuggestion)
		})
	}
}

func TestProviderErrorWithoutSuggestion(t *testing.T) {
	t.Parallel()

	err := errors.ProviderError("env", "resolve", stderrors.New("weird"))
	assert.NotContains(t, err.Error(), "Try:")
}

// TestWrapCommandNotFound verifies command not found errors have helpful suggestions
func TestWrapCommandNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command            string
		expectedSuggestion string
	}{
		{"op", "1Password CLI"},
		{"secret-tool", "libsecret-tools"},
		{"unknown-cmd", "in your PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			err := errors.WrapCommandNotFound(tt.command, nil)

			errMsg := err.Error()
			assert.Contains(t, errMsg, tt.command)
			assert.Contains(t, errMsg, "command not found")
			assert.Contains(t, errMsg, tt.expectedSuggestion)
		})
	}
}

// TestSimplifyError verifies error simplification for common cases
func TestSimplifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		inputError    error
		expectedType  string
		expectedInMsg string
	}{
		{
			name:          "yaml_error",
			inputError:    fmt.Errorf("load: %w", stderrors.New("yaml: line 5: mapping values are not allowed")),
			expectedType:  "ConfigError",
			expectedInMsg: "Invalid YAML",
		},
		{
			name:          "permission_denied",
			inputError:    fmt.Errorf("permission denied"),
			expectedType:  "UserError",
			expectedInMsg: "Permission denied",
		},
		{
			name:          "file_not_found",
			inputError:    fmt.Errorf("open confsecrets.yaml: no such file or directory"),
			expectedType:  "UserError",
			expectedInMsg: "not found",
		},
		{
			name:          "yaml_type_error",
			inputError:    fmt.Errorf("decode: %w", &yaml.TypeError{Errors: []string{"line 2: cannot unmarshal !!seq into string"}}),
			expectedType:  "ConfigError",
			expectedInMsg: "Invalid YAML",
		},
		{
			name:          "yaml_path_permission_denied",
			inputError:    fmt.Errorf("read config: %w", stderrors.New("open /etc/confsecrets.yaml: permission denied")),
			expectedType:  "UserError",
			expectedInMsg: "Permission denied",
		},
		{
			name:          "already_user_error",
			inputError:    fmt.Errorf("wrapped: %w", errors.UserError{Message: "kept as is"}),
			expectedType:  "",
			expectedInMsg: "kept as is",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			simplified := errors.SimplifyError(tt.inputError)
			require.Error(t, simplified)
			assert.Contains(t, simplified.Error(), tt.expectedInMsg)

			switch tt.expectedType {
			case "ConfigError":
				_, ok := simplified.(errors.ConfigError)
				assert.True(t, ok, "Should be ConfigError type")
			case "UserError":
				_, ok := simplified.(errors.UserError)
				assert.True(t, ok, "Should be UserError type")
			default:
				assert.Equal(t, tt.inputError, simplified)
			}
		})
	}
}

// TestUserErrorUnwrap verifies error unwrapping works correctly
func TestUserErrorUnwrap(t *testing.T) {
	t.Parallel()

	baseErr := fmt.Errorf("base error")
	userErr := errors.UserError{
		Message: "wrapped error",
		Err:     baseErr,
	}

	assert.Equal(t, baseErr, userErr.Unwrap())
}

func TestSimplifyErrorNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.SimplifyError(nil))
}
