// Package contracts holds the interfaces backend clients are injected through.
package contracts

// KeychainClient reads generic passwords from an OS keychain.
//
// Query reports a missing entry with an error matching
// providers.ErrKeychainItemNotFound, or whose message says "not found".
type KeychainClient interface {
	Query(service, account string) ([]byte, error)

	// Validate checks that the keychain can be queried now.
	Validate() error

	// IsAvailable reports whether this platform has a keychain at all.
	IsAvailable() bool

	// IsHeadless reports whether unlock prompts cannot be shown.
	IsHeadless() bool
}
