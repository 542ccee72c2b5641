package providers

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/systmms/confsecrets/internal/providers/contracts"
)

// keyringClient reads generic passwords through go-keyring: the login
// keychain on macOS and the Secret Service on Linux.
type keyringClient struct {
	get    func(service, account string) (string, error)
	getenv func(string) string
}

func newPlatformKeychainClient() contracts.KeychainClient {
	return &keyringClient{get: keyring.Get, getenv: os.Getenv}
}

// Query returns the password stored for service and account.
func (c *keyringClient) Query(service, account string) ([]byte, error) {
	if !platformSupported {
		return nil, ErrKeychainUnsupportedPlatform
	}

	secret, err := c.get(service, account)
	switch {
	case err == nil:
		return []byte(secret), nil
	case errors.Is(err, keyring.ErrNotFound):
		return nil, ErrKeychainItemNotFound
	case isAccessDenied(err):
		return nil, ErrKeychainAccessDenied
	}
	return nil, err
}

func (c *keyringClient) Validate() error {
	return platformValidate(c)
}

func (c *keyringClient) IsAvailable() bool {
	return platformAvailable(c.getenv)
}

func (c *keyringClient) IsHeadless() bool {
	return platformHeadless(c.getenv)
}

// isAccessDenied matches the messages security(1) and the Secret Service
// report when the user dismisses or denies the unlock prompt.
func isAccessDenied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "canceled") ||
		strings.Contains(msg, "dismissed")
}

var _ contracts.KeychainClient = (*keyringClient)(nil)
