// Package testutil provides testing utilities for confsecrets.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgexec "github.com/systmms/confsecrets/pkg/exec"
)

// MockCommandExecutor provides a configurable mock for testing CLI-driven clients.
//
// Queued responses are consumed first, in order, one per Execute call. When the
// queue is empty, Responses is consulted by command-line prefix.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Queue holds responses returned in order regardless of the command line.
	Queue []MockResponse

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args)
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching pattern is found.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool
}

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout string
	Stderr string

	// ExitCode, when non-zero and Err is nil, is reported as *pkgexec.ExitError.
	ExitCode int

	// Err is returned verbatim when set.
	Err error
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Input   []byte
	Context context.Context
}

// Line returns the recorded command line joined by spaces.
func (c RecordedCall) Line() string {
	return strings.Join(append([]string{c.Command}, c.Args...), " ")
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, cmd pkgexec.Command) (pkgexec.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var input []byte
	if cmd.Input != nil {
		input = append([]byte{}, cmd.Input...)
	}
	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: cmd.Name,
		Args:    append([]string{}, cmd.Args...),
		Input:   input,
		Context: ctx,
	})

	if len(m.Queue) > 0 {
		resp := m.Queue[0]
		m.Queue = m.Queue[1:]
		return resp.result(cmd)
	}

	key := m.buildKey(cmd.Name, cmd.Args)

	if resp, ok := m.Responses[key]; ok {
		return resp.result(cmd)
	}

	// Longest matching prefix wins so that overlapping patterns stay deterministic.
	var (
		best     string
		bestResp MockResponse
		found    bool
	)
	for pattern, resp := range m.Responses {
		if strings.HasPrefix(key, pattern) && len(pattern) > len(best) {
			best, bestResp, found = pattern, resp, true
		}
	}
	if found {
		return bestResp.result(cmd)
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.result(cmd)
	}

	if m.StrictMode {
		return pkgexec.Result{}, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return pkgexec.Result{}, nil
}

func (r MockResponse) result(cmd pkgexec.Command) (pkgexec.Result, error) {
	res := pkgexec.Result{Stdout: r.Stdout, Stderr: r.Stderr}
	if r.Err != nil {
		return res, r.Err
	}
	if r.ExitCode != 0 {
		return res, &pkgexec.ExitError{
			Command:  cmd.String(),
			ExitCode: r.ExitCode,
			Stdout:   r.Stdout,
			Stderr:   r.Stderr,
		}
	}
	return res, nil
}

func (m *MockCommandExecutor) buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Enqueue appends responses to the ordered queue.
func (m *MockCommandExecutor) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queue = append(m.Queue, responses...)
}

// AddResponse registers a mock response for a specific command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddJSONResponse is a convenience method to add a JSON response.
func (m *MockCommandExecutor) AddJSONResponse(commandPattern string, jsonData string) {
	m.AddResponse(commandPattern, MockResponse{Stdout: jsonData})
}

// AddErrorResponse adds a non-zero exit response for a command pattern.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern string, errMsg string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{Stderr: errMsg, ExitCode: exitCode})
}

// Calls returns a copy of every recorded call.
func (m *MockCommandExecutor) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall{}, m.RecordedCalls...)
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// Reset clears all recorded calls and responses.
func (m *MockCommandExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queue = nil
	m.Responses = make(map[string]MockResponse)
	m.RecordedCalls = make([]RecordedCall, 0)
	m.DefaultResponse = nil
}

// OnePasswordMockResponses provides pre-configured responses for the 1Password CLI.
type OnePasswordMockResponses struct{}

// SigninOK returns a successful `op signin --raw` response carrying token.
func (OnePasswordMockResponses) SigninOK(token string) MockResponse {
	return MockResponse{Stdout: token + "\n"}
}

// NotSignedIn returns the failure `op` reports for a missing or expired session.
func (OnePasswordMockResponses) NotSignedIn() MockResponse {
	return MockResponse{
		Stderr:   "[ERROR] 2024/01/15 10:30:00 You are not currently signed in. Please run `op signin --help` for instructions\n",
		ExitCode: 1,
	}
}

// ItemV1 returns an item as printed by `op get item` (1Password CLI v1).
func (OnePasswordMockResponses) ItemV1(uuid, username, password string) MockResponse {
	return MockResponse{
		Stdout: fmt.Sprintf(`{
			"uuid": "%s",
			"templateUuid": "001",
			"trashed": "N",
			"vaultUuid": "vault-1",
			"overview": {"title": "Test Login", "url": "https://example.com", "tags": ["work"]},
			"details": {
				"fields": [
					{"designation": "username", "name": "username", "type": "T", "value": "%s"},
					{"designation": "password", "name": "password", "type": "P", "value": "%s"}
				],
				"notesPlain": "Test notes for the item",
				"sections": [
					{"name": "api", "title": "API", "fields": [
						{"k": "concealed", "n": "api_key_id", "t": "api_key", "v": "custom-value-123"}
					]}
				]
			}
		}`, uuid, username, password),
	}
}

// ItemV2 returns an item as printed by `op item get --format json` (1Password CLI v2).
func (OnePasswordMockResponses) ItemV2(id, username, password string) MockResponse {
	return MockResponse{
		Stdout: fmt.Sprintf(`{
			"id": "%s",
			"title": "Test Login",
			"vault": {"id": "vault-1", "name": "Test Vault"},
			"category": "LOGIN",
			"fields": [
				{"id": "username", "type": "STRING", "purpose": "USERNAME", "label": "username", "value": "%s"},
				{"id": "password", "type": "CONCEALED", "purpose": "PASSWORD", "label": "password", "value": "%s"},
				{"id": "notesPlain", "type": "STRING", "purpose": "NOTES", "label": "notesPlain", "value": "v2 notes"},
				{"id": "custom", "type": "STRING", "label": "api_key", "value": "custom-value-123"}
			]
		}`, id, username, password),
	}
}
