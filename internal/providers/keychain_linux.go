//go:build linux

package providers

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const platformSupported = true

// platformValidate looks up an entry that never exists. A running Secret
// Service (gnome-keyring, KWallet) answers with ErrNotFound.
func platformValidate(c *keyringClient) error {
	_, err := c.get("confsecrets-doctor", "probe")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// The Secret Service is reached over the session bus of a desktop session.
func platformAvailable(getenv func(string) string) bool {
	return getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != "" ||
		getenv("DBUS_SESSION_BUS_ADDRESS") != ""
}

func platformHeadless(getenv func(string) string) bool {
	if getenv("SSH_TTY") != "" || getenv("CI") != "" {
		return true
	}
	return getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == ""
}
