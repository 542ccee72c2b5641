package commands

import (
	"errors"
	"os/exec"

	cserrors "github.com/systmms/confsecrets/internal/errors"
)

// onePasswordError converts a failed op invocation into a user error. A
// missing op binary gets installation instructions.
func onePasswordError(command, operation string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return cserrors.WrapCommandNotFound(command, err)
	}
	return cserrors.ProviderError("1password", operation, err)
}
