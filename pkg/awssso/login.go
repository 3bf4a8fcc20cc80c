package awssso

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// ErrLoginFailed reports that the interactive SSO login did not complete.
var ErrLoginFailed = errors.New("sso login failed")

// Login runs `aws sso login --profile <profile>` and blocks until the
// browser flow finishes. The child inherits stdio so the CLI can show its
// verification code and prompt.
func Login(profile string) error {
	slog.Debug("Running aws sso login", "profile", profile)

	cmd := exec.Command("aws", "sso", "login", "--profile", profile)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	return nil
}
