package errors

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// ProviderError enhances backend errors with context. provider is one of
// "1password", "keychain", "env" or "ask".
func ProviderError(provider string, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s provider error during %s", provider, operation),
		Details:    err.Error(),
		Suggestion: getProviderSuggestion(provider, err),
		Err:        err,
	}
}

// getProviderSuggestion returns helpful suggestions based on provider and error
func getProviderSuggestion(provider string, err error) string {
	errStr := err.Error()

	switch provider {
	case "1password", "onepassword":
		if strings.Contains(errStr, "not signed into") || strings.Contains(errStr, "not signed in") {
			return "Run 'confsecrets signin' and export the printed OP_SESSION variable, or allow interactive signin"
		}
		if strings.Contains(errStr, "no password provided") {
			return "Enter the master password when prompted, or run without --non-interactive"
		}
		if strings.Contains(errStr, "signin command") {
			return "Check the master password and the account shorthand. List accounts with 'op account list'"
		}
		if strings.Contains(errStr, "timed out") {
			return "1Password CLI can be slow. Increase the 1password timeout option (milliseconds)"
		}
		if strings.Contains(errStr, "executable file not found") || strings.Contains(errStr, "command not found") {
			return "Install 1Password CLI: https://developer.1password.com/docs/cli/get-started/"
		}
		if strings.Contains(errStr, "isn't an item") || strings.Contains(errStr, "not found") {
			return "Verify the item uuid exists. Use 'op list items' to see available items"
		}

	case "keychain":
		if strings.Contains(errStr, "access denied") {
			return "Allow confsecrets to read the keychain entry when the OS prompts for access"
		}
		if strings.Contains(errStr, "not supported") || strings.Contains(errStr, "GUI environment") {
			return "Use an ENV reference in headless or CI environments"
		}
		if strings.Contains(errStr, "could not find keychain entry") {
			return "Add the entry with 'security add-generic-password -s <service> -a <account> -w' (macOS) or 'secret-tool store' (Linux)"
		}

	case "env":
		if strings.Contains(errStr, "is not defined") {
			return "Export the variable before running, or set allowUndefined for optional values"
		}
	}

	// Generic suggestions
	if strings.Contains(errStr, "missing required properties") || strings.Contains(errStr, "unexpected properties") {
		return "Check the reference against the documented keys for its type"
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") {
		return "The operation timed out. Check your network connection and try again"
	}

	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"op":          "Install 1Password CLI: https://developer.1password.com/docs/cli/get-started/",
		"security":    "The security tool ships with macOS",
		"secret-tool": "Install libsecret-tools with your package manager",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	msg := "command not found"
	if err != nil {
		msg = err.Error()
	}
	return CommandError{
		Command:    command,
		Message:    msg,
		Suggestion: suggestion,
	}
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var configErr ConfigError
	if errors.As(err, &configErr) {
		return err
	}
	var cmdErr CommandError
	if errors.As(err, &cmdErr) {
		return err
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Simplify common technical errors
	errStr := rootErr.Error()

	// Parser errors carry a "yaml: " prefix; file paths ending in .yaml do not count.
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) || strings.HasPrefix(errStr, "yaml: ") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
