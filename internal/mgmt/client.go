// Package mgmt is the client for the proxy management API: auth-file
// listing, API-key listing, key counts, and the raw per-credential
// quota passthrough the provider adapters parse. It also owns the
// three-valued connection state that gates refresh operations.
package mgmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotadeck/quotadeck/internal/core"
)

// ConnState is the connectivity status toward the management server.
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateConnecting   ConnState = "connecting"
	StateDisconnected ConnState = "disconnected"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	mu      sync.RWMutex
	baseURL string
	token   string
	state   ConnState
	httpc   *http.Client
	log     zerolog.Logger
}

func New(baseURL, token string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		state:   StateDisconnected,
		httpc:   &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// SetEndpoint switches the client to a new server. The connection state
// drops to disconnected until the next successful probe.
func (c *Client) SetEndpoint(baseURL, token string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.token = token
	c.state = StateDisconnected
	c.mu.Unlock()
}

func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Probe checks the management status endpoint and updates the
// connection state accordingly.
func (c *Client) Probe(ctx context.Context) error {
	c.setState(StateConnecting)
	var status struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, "/v0/management/status", nil, &status); err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("probing management server: %w", err)
	}
	c.setState(StateConnected)
	c.log.Debug().Str("version", status.Version).Msg("management server reachable")
	return nil
}

// ListAuthFiles returns the server's stored credential files.
func (c *Client) ListAuthFiles(ctx context.Context) ([]core.AuthFile, error) {
	var resp struct {
		Files []struct {
			Name  string `json:"name"`
			Type  string `json:"type"`
			Label string `json:"label"`
			Email string `json:"email"`
		} `json:"files"`
	}
	if err := c.getJSON(ctx, "/v0/management/auth-files", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing auth files: %w", err)
	}

	files := make([]core.AuthFile, 0, len(resp.Files))
	for _, f := range resp.Files {
		label := f.Label
		if label == "" {
			label = f.Email
		}
		files = append(files, core.AuthFile{Name: f.Name, Provider: f.Type, Label: label})
	}
	return files, nil
}

// ListAPIKeys returns the configured API keys in whatever shape the
// server reports them; callers normalize.
func (c *Client) ListAPIKeys(ctx context.Context) (any, error) {
	var raw any
	if err := c.getJSON(ctx, "/v0/management/api-keys", nil, &raw); err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	return raw, nil
}

// CountKeys reports how many keys the server holds for one provider.
// Used by the stats readout only.
func (c *Client) CountKeys(ctx context.Context, provider string) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	q := url.Values{"provider": {provider}}
	if err := c.getJSON(ctx, "/v0/management/key-count", q, &resp); err != nil {
		return 0, fmt.Errorf("counting %s keys: %w", provider, err)
	}
	return resp.Count, nil
}

// QuotaRaw fetches the raw provider-specific quota payload for one
// credential file. The adapters own the parsing.
func (c *Client) QuotaRaw(ctx context.Context, provider, name string) ([]byte, error) {
	q := url.Values{"provider": {provider}, "name": {name}}
	body, err := c.get(ctx, "/v0/management/quota", q)
	if err != nil {
		return nil, fmt.Errorf("fetching %s quota for %s: %w", provider, name, err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	c.mu.RLock()
	base, token := c.baseURL, c.token
	c.mu.RUnlock()

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(firstLine(body)))
	}
	return body, nil
}

func firstLine(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
