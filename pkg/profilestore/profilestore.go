// Package profilestore merges named profiles into the AWS config and
// credentials files. Each update replaces one section and leaves every
// other section in the file untouched.
package profilestore

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/ini.v1"

	"profiterole/pkg/awssso"
)

// ConfigAttrs are the per-profile keys written to the config file. They come
// from static settings, so every profile written in one run shares them.
type ConfigAttrs struct {
	Region      string
	Output      string
	SSOStartURL string
	SSORegion   string
}

// Writer upserts profile sections into the two stores: "profile <name>" in
// the config file and plain "<name>" in the credentials file.
type Writer struct {
	ConfigPath      string
	CredentialsPath string

	mu sync.Mutex // serializes read-merge-write cycles on both files
}

// UpsertProfile writes one profile into both stores. Existing files are
// loaded and rewritten whole around the replaced section; absent files are
// created.
func (w *Writer) UpsertProfile(name string, attrs ConfigAttrs, creds awssso.Credentials) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	configKeys := map[string]string{
		"region":        attrs.Region,
		"output":        attrs.Output,
		"sso_start_url": attrs.SSOStartURL,
		"sso_region":    attrs.SSORegion,
	}
	if err := w.upsertSection(w.ConfigPath, "profile "+name, configKeys); err != nil {
		return fmt.Errorf("failed to update config store: %w", err)
	}

	credentialKeys := map[string]string{
		"aws_access_key_id":     creds.AccessKeyID,
		"aws_secret_access_key": creds.SecretAccessKey,
		"aws_session_token":     creds.SessionToken,
	}
	if err := w.upsertSection(w.CredentialsPath, name, credentialKeys); err != nil {
		return fmt.Errorf("failed to update credentials store: %w", err)
	}

	slog.Debug("Updated profile stores",
		"profile", name, "config", w.ConfigPath, "credentials", w.CredentialsPath)
	return nil
}

// upsertSection loads the file when it exists, replaces the named section
// wholesale, and saves the result. Replacing rather than merging keys means
// a profile never keeps stale keys from an earlier run.
func (w *Writer) upsertSection(path, sectionName string, keys map[string]string) error {
	inidata := ini.Empty()
	if _, err := os.Stat(path); err == nil {
		slog.Debug("Loading existing store", "path", path)
		inidata, err = ini.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	inidata.DeleteSection(sectionName)

	slog.Debug("Creating section", "section", sectionName, "path", path)
	sec, err := inidata.NewSection(sectionName)
	if err != nil {
		return fmt.Errorf("failed to create section '%s': %w", sectionName, err)
	}
	for key, value := range keys {
		if _, err := sec.NewKey(key, value); err != nil {
			return fmt.Errorf("failed to create key '%s' in section '%s': %w", key, sectionName, err)
		}
	}

	// Credentials land in this file, so keep it out of group/other reach.
	var buf bytes.Buffer
	if _, err := inidata.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}
