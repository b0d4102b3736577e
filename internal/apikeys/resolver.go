// Package apikeys resolves the ordered list of usable API keys from
// static configuration or the remote key listing, with a single-flight
// in-memory cache. The cache epoch ends when the active endpoint or the
// configured key list changes; both events funnel into Invalidate.
package apikeys

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Lister is the remote key-listing call. The returned shape is not
// guaranteed; NormalizeKeyList deals with whatever comes back.
type Lister interface {
	ListAPIKeys(ctx context.Context) (any, error)
}

type Resolver struct {
	mu     sync.Mutex
	lister Lister
	static func() []any
	cache  []string
	log    zerolog.Logger
}

// New builds a resolver. static supplies the currently configured key
// list (raw, unnormalized) and is consulted on every cache miss.
func New(lister Lister, static func() []any, log zerolog.Logger) *Resolver {
	if static == nil {
		static = func() []any { return nil }
	}
	return &Resolver{lister: lister, static: static, log: log}
}

// Keys returns the resolved key list for the current cache epoch.
// First non-empty source wins: cache, then static config, then the
// remote listing. A failed remote call yields an empty list, never an
// error. The mutex is held across the remote call, so concurrent
// callers within one epoch trigger at most one fetch.
func (r *Resolver) Keys(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.cache) > 0 {
		return append([]string(nil), r.cache...)
	}

	if keys := NormalizeKeyList(r.static()); len(keys) > 0 {
		r.cache = keys
		return append([]string(nil), keys...)
	}

	raw, err := r.lister.ListAPIKeys(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("remote key listing failed")
		return nil
	}
	keys := NormalizeKeyList(raw)
	if len(keys) > 0 {
		r.cache = keys
	}
	return append([]string(nil), keys...)
}

// Invalidate clears the cache, ending the current epoch.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

// NormalizeKeyList extracts usable keys from a raw key-list value of
// unknown shape. Non-sequence input is ignored entirely. Elements may
// be plain strings or objects carrying the key under "api-key" or,
// failing that, "apiKey". Keys are trimmed, blanks dropped, and
// duplicates removed with first occurrence winning.
func NormalizeKeyList(raw any) []string {
	var elems []any
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		elems = v
	case []string:
		elems = lo.ToAnySlice(v)
	default:
		return nil
	}

	keys := lo.FilterMap(elems, func(e any, _ int) (string, bool) {
		key := strings.TrimSpace(extractKey(e))
		return key, key != ""
	})
	return lo.Uniq(keys)
}

func extractKey(e any) string {
	switch v := e.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["api-key"].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
		if s, ok := v["apiKey"].(string); ok {
			return s
		}
	}
	return ""
}
