package fakes

import (
	"fmt"
	"sync"

	"github.com/systmms/confsecrets/internal/providers"
	"github.com/systmms/confsecrets/internal/providers/contracts"
)

// Errors returned by FakeKeychainClient. They wrap the provider sentinels
// the platform client maps its failures to.
var (
	ErrFakeKeychainItemNotFound = fmt.Errorf("fake keychain: %w", providers.ErrKeychainItemNotFound)
	ErrFakeKeychainAccessDenied = fmt.Errorf("fake keychain: %w", providers.ErrKeychainAccessDenied)
)

// FakeKeychainClient is an in-memory contracts.KeychainClient.
//
// Create it with NewFakeKeychainClient and set the exported fields to script
// failures.
type FakeKeychainClient struct {
	mu      sync.Mutex
	entries map[[2]string][]byte

	Available   bool
	Headless    bool
	ValidateErr error

	// QueryErr, when set, fails every Query.
	QueryErr error

	// Queries records every service/account pair passed to Query.
	Queries [][2]string
}

// NewFakeKeychainClient returns an empty, available keychain.
func NewFakeKeychainClient() *FakeKeychainClient {
	return &FakeKeychainClient{
		entries:   make(map[[2]string][]byte),
		Available: true,
	}
}

// SetSecret stores value for service and account.
func (f *FakeKeychainClient) SetSecret(service, account string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[[2]string][]byte)
	}
	f.entries[[2]string{service, account}] = value
}

func (f *FakeKeychainClient) Query(service, account string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := [2]string{service, account}
	f.Queries = append(f.Queries, key)
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	if value, ok := f.entries[key]; ok {
		return value, nil
	}
	return nil, ErrFakeKeychainItemNotFound
}

func (f *FakeKeychainClient) Validate() error {
	return f.ValidateErr
}

func (f *FakeKeychainClient) IsAvailable() bool {
	return f.Available
}

func (f *FakeKeychainClient) IsHeadless() bool {
	return f.Headless
}

var _ contracts.KeychainClient = (*FakeKeychainClient)(nil)
