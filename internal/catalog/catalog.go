// Package catalog fetches the model list served by the active endpoint.
// Catalog failures are deliberately invisible to the user: the
// dashboard shows an empty model list, never an error banner.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const fetchTimeout = 10 * time.Second

type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// Fetch retrieves the model catalog from baseURL, authenticating with
// key when one is available.
func Fetch(ctx context.Context, baseURL, key string) ([]Model, error) {
	url := strings.TrimRight(baseURL, "/") + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating catalog request: %w", err)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching model catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model catalog: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}

	var payload struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}
	return payload.Data, nil
}

// Load is the swallowing wrapper the dashboard uses: any failure
// degrades to an empty catalog, logged at debug only.
func Load(ctx context.Context, baseURL, key string, log zerolog.Logger) []Model {
	models, err := Fetch(ctx, baseURL, key)
	if err != nil {
		log.Debug().Err(err).Msg("model catalog unavailable")
		return nil
	}
	return models
}
