// Package providers holds the OS keychain backend used to resolve KEYCHAIN
// references. The 1Password backend lives in the onepassword subpackage.
package providers

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/systmms/confsecrets/internal/providers/contracts"
)

// KeychainProvider reads generic passwords from the OS keychain
// (macOS Keychain and Linux Secret Service).
type KeychainProvider struct {
	client contracts.KeychainClient
}

// NewKeychainProvider creates a keychain provider backed by the platform keychain.
func NewKeychainProvider() *KeychainProvider {
	return &KeychainProvider{client: newPlatformKeychainClient()}
}

// NewKeychainProviderWithClient creates a keychain provider with a custom client.
// This is primarily for testing, allowing the keychain client to be mocked.
func NewKeychainProviderWithClient(client contracts.KeychainClient) *KeychainProvider {
	return &KeychainProvider{client: client}
}

// Platform returns the current platform (darwin, linux, or unsupported)
func (kc *KeychainProvider) Platform() string {
	return runtime.GOOS
}

// GetPassword looks up the password stored for service and account.
// A missing entry is reported as found == false with a nil error.
func (kc *KeychainProvider) GetPassword(ctx context.Context, service, account string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	value, err := kc.client.Query(service, account)
	if err != nil {
		if errors.Is(err, ErrKeychainItemNotFound) {
			return "", false, nil
		}
		return "", false, &KeychainError{
			Op:      "query",
			Service: service,
			Account: account,
			Err:     err,
		}
	}

	return string(value), true, nil
}

// Available reports whether a keychain exists on this platform.
func (kc *KeychainProvider) Available() bool {
	return kc.client.IsAvailable()
}

// Headless reports whether keychain prompts cannot be shown.
func (kc *KeychainProvider) Headless() bool {
	return kc.client.IsHeadless()
}

// Validate checks if the keychain is accessible
func (kc *KeychainProvider) Validate(ctx context.Context) error {
	if !kc.client.IsAvailable() {
		return ErrKeychainUnsupportedPlatform
	}

	if kc.client.IsHeadless() {
		return fmt.Errorf("%w (headless environment detected); consider ENV references for CI/CD environments", ErrKeychainHeadless)
	}

	if err := kc.client.Validate(); err != nil {
		return fmt.Errorf("keychain validation failed: %w", err)
	}

	return nil
}
