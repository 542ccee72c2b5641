// Package prompt asks the operator for secrets on the controlling terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Terminal reads answers from In, masking input when In is a terminal.
//
// Piped answers are read line by line from one buffer shared by every Ask,
// so consecutive prompts consume consecutive lines.
type Terminal struct {
	In  *os.File
	Out io.Writer

	mu       sync.Mutex
	attached bool
	fd       int
	isTTY    bool
	lines    *bufio.Reader
	// pending is a line read still in flight from an Ask whose context
	// ended. The next Ask takes it over.
	pending chan answer
}

type answer struct {
	value string
	err   error
}

// NewTerminal returns a prompt on stdin that writes to stderr, leaving
// stdout free for resolved output.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Ask writes prompt and reads one line. It returns ctx.Err() if ctx ends
// before an answer arrives, and io.ErrUnexpectedEOF when the input ends
// before any answer was typed.
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(t.Out, "%s: ", prompt); err != nil {
		return "", err
	}

	t.mu.Lock()
	t.attach()
	if t.isTTY {
		fd := t.fd
		t.mu.Unlock()
		return t.askMasked(ctx, fd)
	}
	ch := t.pending
	t.pending = nil
	if ch == nil {
		ch = make(chan answer, 1)
		go func(r *bufio.Reader) { ch <- readLine(r) }(t.lines)
	}
	t.mu.Unlock()

	select {
	case a := <-ch:
		return a.value, a.err
	case <-ctx.Done():
		t.mu.Lock()
		t.pending = ch
		t.mu.Unlock()
		_, _ = fmt.Fprintln(t.Out)
		return "", ctx.Err()
	}
}

// attach inspects In once. Callers hold t.mu.
func (t *Terminal) attach() {
	if t.attached {
		return
	}
	t.attached = true
	t.fd = int(t.In.Fd())
	t.isTTY = term.IsTerminal(t.fd)
	if !t.isTTY {
		t.lines = bufio.NewReader(t.In)
	}
}

// askMasked reads with echo disabled. Echo is restored when ctx ends while
// the read is still blocked; the reading goroutine never writes to Out.
func (t *Terminal) askMasked(ctx context.Context, fd int) (string, error) {
	state, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read terminal state: %w", err)
	}

	ch := make(chan answer, 1)
	go func() {
		b, err := term.ReadPassword(fd)
		if err != nil {
			ch <- answer{err: fmt.Errorf("failed to read from terminal: %w", err)}
			return
		}
		ch <- answer{value: string(b)}
	}()

	select {
	case a := <-ch:
		_, _ = fmt.Fprintln(t.Out)
		return a.value, a.err
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		_, _ = fmt.Fprintln(t.Out)
		return "", ctx.Err()
	}
}

func readLine(r *bufio.Reader) answer {
	line, err := r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return answer{err: fmt.Errorf("no answer before end of input: %w", io.ErrUnexpectedEOF)}
		}
		err = nil
	}
	if err != nil {
		return answer{err: fmt.Errorf("failed to read answer: %w", err)}
	}
	return answer{value: strings.TrimRight(line, "\r\n")}
}
