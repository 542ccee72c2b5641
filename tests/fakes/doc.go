// Package fakes provides test doubles for confsecrets backend clients.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeKeychainClient()
//	fake.SetSecret("myapp", "api-key", []byte("secret123"))
//	keychain := providers.NewKeychainProviderWithClient(fake)
package fakes
