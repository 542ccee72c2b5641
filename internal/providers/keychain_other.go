//go:build !darwin && !linux

package providers

const platformSupported = false

func platformValidate(*keyringClient) error { return ErrKeychainUnsupportedPlatform }

func platformAvailable(func(string) string) bool { return false }

func platformHeadless(func(string) string) bool { return false }
