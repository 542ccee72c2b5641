// Package exec provides abstractions for command execution.
// This package enables testable code by allowing CLI commands to be mocked.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// WaitDelay bounds how long output is still drained after the context ends.
// A descendant that inherited stdout or stderr can otherwise keep the pipes
// open after the process itself was killed.
const WaitDelay = 2 * time.Second

// Command describes a single invocation of an external tool.
type Command struct {
	Name string
	Args []string

	// Input, when non-nil, is written to the process through a stdin pipe
	// which is closed once the bytes are delivered. A nil Input leaves the
	// process attached to the caller's stdin.
	Input []byte
}

// String renders the command line with the value of any --session flag masked.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for i, arg := range c.Args {
		if i > 0 && c.Args[i-1] == "--session" && arg != "" {
			arg = "[REDACTED]"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Result holds the fully captured output channels of a finished process.
type Result struct {
	Stdout string
	Stderr string
}

// CommandExecutor defines an interface for executing external commands.
// This abstraction allows for mocking CLI tool behavior in tests.
type CommandExecutor interface {
	// Execute runs the command to completion. A non-zero exit is reported as
	// *ExitError and a process that could not be started as *SpawnError.
	Execute(ctx context.Context, cmd Command) (Result, error)
}

// RealCommandExecutor executes actual commands using os/exec.
// This is the production implementation.
type RealCommandExecutor struct {
	// Stdin is inherited by commands that carry no Input. Defaults to os.Stdin.
	Stdin *os.File
}

// Execute starts the process, delivers Input if any, captures stdout and
// stderr concurrently and waits for the process to exit.
func (r *RealCommandExecutor) Execute(ctx context.Context, c Command) (Result, error) {
	cmd := osexec.CommandContext(ctx, c.Name, c.Args...)
	cmd.WaitDelay = WaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, &SpawnError{Command: c.String(), Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, &SpawnError{Command: c.String(), Err: err}
	}

	var stdin io.WriteCloser
	if c.Input != nil {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return Result{}, &SpawnError{Command: c.String(), Err: err}
		}
	} else {
		cmd.Stdin = r.stdin()
	}

	if err := cmd.Start(); err != nil {
		return Result{}, &SpawnError{Command: c.String(), Err: err}
	}

	var res Result
	g := new(errgroup.Group)
	if stdin != nil {
		g.Go(func() error {
			_, werr := stdin.Write(c.Input)
			cerr := stdin.Close()
			// A process may exit without reading its input.
			if werr != nil && !errors.Is(werr, syscall.EPIPE) && !errors.Is(werr, os.ErrClosed) {
				return fmt.Errorf("failed to write stdin of %s: %w", c.Name, werr)
			}
			if cerr != nil && !errors.Is(cerr, os.ErrClosed) {
				return fmt.Errorf("failed to close stdin of %s: %w", c.Name, cerr)
			}
			return nil
		})
	}
	g.Go(func() error {
		out, err := Capture(stdout)
		res.Stdout = out
		return err
	})
	g.Go(func() error {
		out, err := Capture(stderr)
		res.Stderr = out
		return err
	})

	captured := make(chan struct{})
	go closeAfterDelay(ctx, captured, stdout, stderr)

	// Both pipes must be drained before Wait closes them.
	ioErr := g.Wait()
	close(captured)
	waitErr := cmd.Wait()

	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", c.String(), ctxErr)
		}
		var exitErr *osexec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, &ExitError{
				Command:  c.String(),
				ExitCode: exitErr.ExitCode(),
				Stdout:   res.Stdout,
				Stderr:   res.Stderr,
			}
		}
		return res, fmt.Errorf("failed waiting for %s: %w", c.String(), waitErr)
	}
	if ioErr != nil {
		return res, ioErr
	}
	return res, nil
}

// closeAfterDelay closes the read ends of the output pipes once ctx has
// been done for WaitDelay and capture has not finished, unblocking Capture.
func closeAfterDelay(ctx context.Context, captured <-chan struct{}, pipes ...io.Closer) {
	select {
	case <-captured:
		return
	case <-ctx.Done():
	}

	timer := time.NewTimer(WaitDelay)
	defer timer.Stop()
	select {
	case <-captured:
	case <-timer.C:
		for _, p := range pipes {
			_ = p.Close()
		}
	}
}

func (r *RealCommandExecutor) stdin() *os.File {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

// DefaultExecutor returns the standard production executor.
// This is used as the default when no executor is injected.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// ErrProcessSpawn is matched by every *SpawnError.
var ErrProcessSpawn = errors.New("process could not be started")

// SpawnError reports a process that could not be started, e.g. a missing binary.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() []error {
	return []error{ErrProcessSpawn, e.Err}
}

// ErrNonZeroExit is matched by every *ExitError.
var ErrNonZeroExit = errors.New("process exited with non-zero status")

// ExitError reports a process that ran but exited with a non-zero code.
type ExitError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return ErrNonZeroExit
}
