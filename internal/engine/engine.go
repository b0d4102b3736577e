// Package engine drives on-demand quota refresh cycles: partition the
// auth-file listing across provider adapters, fan out one fetch per
// credential, and write each outcome into the quota store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/quotadeck/quotadeck/internal/core"
	"github.com/quotadeck/quotadeck/internal/mgmt"
	"github.com/quotadeck/quotadeck/internal/store"
)

// ErrNotConnected is returned when a refresh is requested while the
// management server is not in the connected state.
var ErrNotConnected = errors.New("management server not connected")

// Management is the slice of the management client the engine needs.
type Management interface {
	State() mgmt.ConnState
	ListAuthFiles(ctx context.Context) ([]core.AuthFile, error)
	ListAPIKeys(ctx context.Context) (any, error)
	CountKeys(ctx context.Context, provider string) (int, error)
}

type Orchestrator struct {
	client   Management
	adapters []core.Adapter
	store    *store.Store
	log      zerolog.Logger

	refreshing atomic.Bool
}

func New(client Management, adapters []core.Adapter, st *store.Store, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		client:   client,
		adapters: adapters,
		store:    st,
		log:      log,
	}
}

// RefreshAll runs one refresh cycle. It is a no-op (nil) when a cycle
// is already in flight and refuses to start while disconnected. Every
// issued fetch reaches a terminal state before RefreshAll returns;
// individual failures land in the store as error states and never
// cancel sibling fetches.
func (o *Orchestrator) RefreshAll(ctx context.Context) error {
	if o.client.State() != mgmt.StateConnected {
		return ErrNotConnected
	}
	if !o.refreshing.CompareAndSwap(false, true) {
		return nil
	}
	defer o.refreshing.Store(false)

	files, err := o.client.ListAuthFiles(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	subsets := o.partition(files)

	// All loading states land before any fetch is issued, so the
	// presentation layer sees every affected credential flip to
	// in-flight at once.
	for _, sub := range subsets {
		if len(sub.files) == 0 {
			continue
		}
		names := make([]string, len(sub.files))
		for i, f := range sub.files {
			names[i] = f.Name
		}
		o.store.SetLoading(sub.adapter.ID(), names)
	}

	var wg sync.WaitGroup
	for _, sub := range subsets {
		for _, f := range sub.files {
			wg.Add(1)
			go func(a core.Adapter, f core.AuthFile) {
				defer wg.Done()
				metrics, err := a.Fetch(ctx, f)
				if err != nil {
					o.log.Debug().Err(err).Str("provider", a.ID()).Str("credential", f.Name).Msg("quota fetch failed")
					o.store.SetResult(a.ID(), f.Name, a.Failure(err))
					return
				}
				o.store.SetResult(a.ID(), f.Name, a.Success(metrics))
			}(sub.adapter, f)
		}
	}
	wg.Wait()

	return nil
}

// Refreshing reports whether a cycle is currently in flight.
func (o *Orchestrator) Refreshing() bool {
	return o.refreshing.Load()
}

// Summaries aggregates the store's current contents.
func (o *Orchestrator) Summaries() []core.ProviderSummary {
	return core.Aggregate(o.adapters, o.store.Snapshot())
}

type subset struct {
	adapter core.Adapter
	files   []core.AuthFile
}

// partition assigns each auth file to the first adapter whose predicate
// claims it; unclaimed files are ignored.
func (o *Orchestrator) partition(files []core.AuthFile) []subset {
	subsets := make([]subset, len(o.adapters))
	for i, a := range o.adapters {
		subsets[i].adapter = a
	}
	for _, f := range files {
		for i, a := range o.adapters {
			if a.Matches(f) {
				subsets[i].files = append(subsets[i].files, f)
				break
			}
		}
	}
	return subsets
}
