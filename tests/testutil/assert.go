package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertSecretRedacted verifies that secretValue does not appear in output
// and that the [REDACTED] marker does.
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()

	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)
	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker when secret is used")
}

// AssertNoSecretLeak verifies that none of secrets appears in output.
// Empty secrets are ignored.
func AssertNoSecretLeak(t *testing.T, output string, secrets []string) {
	t.Helper()

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		assert.NotContains(t, output, secret, "Secret value leaked in output")
	}
}

// AssertErrorContains verifies that err is non-nil and its message holds
// every one of substrs.
func AssertErrorContains(t *testing.T, err error, substrs ...string) {
	t.Helper()

	if !assert.Error(t, err) {
		return
	}
	for _, substr := range substrs {
		assert.True(t, strings.Contains(err.Error(), substr),
			"Expected error %q to contain %q", err.Error(), substr)
	}
}
