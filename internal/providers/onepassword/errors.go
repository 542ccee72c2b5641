package onepassword

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrSigninRequired is matched by *SigninRequiredError.
	ErrSigninRequired = errors.New("1password signin required")
	// ErrSigninFailed is matched by *SigninFailedError.
	ErrSigninFailed = errors.New("1password signin failed")
	// ErrNoPassword reports an empty answer to the master password prompt.
	ErrNoPassword = errors.New("no password provided")
)

// SigninRequiredError reports a missing session when interactive signin is
// not allowed.
type SigninRequiredError struct {
	Account string
	Command string
}

func (e *SigninRequiredError) Error() string {
	return fmt.Sprintf("you are not signed into the 1password cli; see `%s signin --help` for details", e.Command)
}

func (e *SigninRequiredError) Unwrap() error { return ErrSigninRequired }

// SigninFailedError reports an `op signin` that exited unsuccessfully.
type SigninFailedError struct {
	Account  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *SigninFailedError) Error() string {
	msg := fmt.Sprintf("unexpected exit code %d while running 1password signin command for account %q", e.ExitCode, e.Account)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *SigninFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSigninFailed}
	}
	return []error{ErrSigninFailed, e.Err}
}

// TimeoutError reports an op invocation killed after exceeding its timeout.
type TimeoutError struct {
	Command string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Command, e.After)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// Timeout reports true.
func (e *TimeoutError) Timeout() bool { return true }

func noPasswordError(account string) error {
	return fmt.Errorf("%w for 1password %q account", ErrNoPassword, account)
}
