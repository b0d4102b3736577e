// Package appupdate checks whether a newer quotadeck release exists.
// The check is best-effort: callers treat any error as "no update
// information", never as a user-facing failure.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultReleaseURL = "https://api.github.com/repos/quotadeck/quotadeck/releases/latest"
	requestTimeout    = 1500 * time.Millisecond
)

type Options struct {
	CurrentVersion string
	ReleaseURL     string
	HTTPClient     *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
}

// Check compares the running version against the latest published
// release tag. Dev builds (non-semver versions) skip the remote call.
func Check(ctx context.Context, opts Options) (Result, error) {
	current := normalizeVersion(opts.CurrentVersion)
	result := Result{CurrentVersion: current}
	if current == "" {
		return result, nil
	}

	latest, err := fetchLatestVersion(ctx, opts)
	if err != nil {
		return result, err
	}

	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

func fetchLatestVersion(ctx context.Context, opts Options) (string, error) {
	releaseURL := strings.TrimSpace(opts.ReleaseURL)
	if releaseURL == "" {
		releaseURL = defaultReleaseURL
	}

	requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return "", fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode release payload: %w", err)
	}

	latest := normalizeVersion(payload.TagName)
	if latest == "" {
		return "", fmt.Errorf("release tag is not a stable semver: %q", payload.TagName)
	}
	return latest, nil
}

// normalizeVersion returns a canonical vX.Y.Z, or "" for anything that
// is not a stable semver release.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
