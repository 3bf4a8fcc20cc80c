package appconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the absolute locations of the AWS folder and the files the
// tool reads and writes inside it.
type Paths struct {
	AWSDir          string
	ConfigFile      string
	CredentialsFile string
	SSOCacheDir     string
}

// ResolvePaths locates the AWS folder under the user's home directory,
// creating it when absent, and derives the profile store and token cache
// locations from the configured names.
func ResolvePaths(settings *Settings) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}

	awsDir := filepath.Join(home, settings.Paths.AWSFolderName)
	if _, err := os.Stat(awsDir); os.IsNotExist(err) {
		slog.Debug("Creating AWS folder", "path", awsDir)
		if err := os.MkdirAll(awsDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", awsDir, err)
		}
	}

	return &Paths{
		AWSDir:          awsDir,
		ConfigFile:      filepath.Join(awsDir, settings.Paths.ConfigFileName),
		CredentialsFile: filepath.Join(awsDir, settings.Paths.CredentialsFileName),
		SSOCacheDir:     filepath.Join(awsDir, settings.Paths.SSOCacheFolder),
	}, nil
}
