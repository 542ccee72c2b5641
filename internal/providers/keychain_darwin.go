//go:build darwin

package providers

const platformSupported = true

// The login keychain exists for every macOS account.
func platformValidate(*keyringClient) error { return nil }

func platformAvailable(func(string) string) bool { return true }

// Remote and CI sessions cannot answer the keychain unlock dialog.
func platformHeadless(getenv func(string) string) bool {
	return getenv("SSH_TTY") != "" || getenv("CI") != ""
}
