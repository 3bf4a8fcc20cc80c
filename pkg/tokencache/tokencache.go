// Package tokencache reads the access tokens the AWS CLI leaves behind in
// its SSO cache directory after a successful `aws sso login`.
package tokencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const recordSuffix = ".json"

var (
	// ErrNotFound reports a missing cache directory or a directory with no
	// token records in it.
	ErrNotFound = errors.New("no cached access token")

	// ErrMalformed reports a selected record that cannot yield a token.
	ErrMalformed = errors.New("malformed token cache record")
)

// cacheRecord carries the one field this tool reads from a cache file;
// everything else in the record is ignored.
type cacheRecord struct {
	AccessToken string `json:"accessToken"`
}

// Reader locates access tokens under a single cache directory.
type Reader struct {
	Dir string
}

// LatestAccessToken returns the token from the most recently modified .json
// record in the cache directory. Records tied on modification time resolve
// to the lexicographically greater file name so selection is deterministic.
// Only the selected record is opened; an unreadable or tokenless record is
// reported as malformed rather than skipped, since a stale older token
// would be worse than a clear error.
func (r *Reader) LatestAccessToken() (string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return "", fmt.Errorf("%w: reading cache directory %s: %v", ErrNotFound, r.Dir, err)
	}

	var (
		latestName string
		latestTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat.
			continue
		}
		mod := info.ModTime()
		if latestName == "" || mod.After(latestTime) ||
			(mod.Equal(latestTime) && entry.Name() > latestName) {
			latestName = entry.Name()
			latestTime = mod
		}
	}
	if latestName == "" {
		return "", fmt.Errorf("%w: no %s records in %s", ErrNotFound, recordSuffix, r.Dir)
	}

	path := filepath.Join(r.Dir, latestName)
	slog.Debug("Selected token cache record", "path", path, "modified", latestTime)

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrMalformed, path, err)
	}
	var record cacheRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", ErrMalformed, path, err)
	}
	if record.AccessToken == "" {
		return "", fmt.Errorf("%w: %s has no accessToken field", ErrMalformed, path)
	}

	return record.AccessToken, nil
}
