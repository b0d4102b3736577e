// Package store holds the latest per-credential quota state for each
// provider. Updates follow a copy-on-write discipline: a live map is
// never mutated, every write installs a freshly built copy, so readers
// holding a snapshot never observe a torn intermediate state.
package store

import (
	"sync"

	"github.com/quotadeck/quotadeck/internal/core"
)

type Store struct {
	mu     sync.RWMutex
	states map[string]map[string]core.QuotaState // provider ID -> credential name -> state
	order  map[string][]string                   // provider ID -> listing order at refresh start
}

func New() *Store {
	return &Store{
		states: make(map[string]map[string]core.QuotaState),
		order:  make(map[string][]string),
	}
}

// SetLoading records the credential set for one provider's refresh
// cycle and marks every credential as in flight in a single install, so
// observers see the whole subset enter Loading atomically.
func (s *Store) SetLoading(provider string, names []string) {
	next := make(map[string]core.QuotaState, len(names))
	for _, name := range names {
		next[name] = core.LoadingState()
	}

	s.mu.Lock()
	s.states[provider] = next
	s.order[provider] = append([]string(nil), names...)
	s.mu.Unlock()
}

// SetResult installs a terminal state for one credential. The provider
// map is copied, modified, and swapped whole.
func (s *Store) SetResult(provider, name string, state core.QuotaState) {
	s.mu.Lock()
	prev := s.states[provider]
	next := make(map[string]core.QuotaState, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[name] = state
	s.states[provider] = next
	s.mu.Unlock()
}

// Provider returns one provider's quota view: a copy of its state map
// plus the listing order recorded by the last SetLoading.
func (s *Store) Provider(provider string) core.ProviderQuota {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.ProviderQuota{
		Order:  append([]string(nil), s.order[provider]...),
		States: copyStates(s.states[provider]),
	}
}

// Snapshot returns every provider's quota view keyed by provider ID.
func (s *Store) Snapshot() map[string]core.ProviderQuota {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]core.ProviderQuota, len(s.states))
	for provider, states := range s.states {
		out[provider] = core.ProviderQuota{
			Order:  append([]string(nil), s.order[provider]...),
			States: copyStates(states),
		}
	}
	return out
}

func copyStates(in map[string]core.QuotaState) map[string]core.QuotaState {
	out := make(map[string]core.QuotaState, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
