package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotadeck/quotadeck/internal/core"
	"github.com/quotadeck/quotadeck/internal/mgmt"
	"github.com/quotadeck/quotadeck/internal/store"
)

type fakeManagement struct {
	mu        sync.Mutex
	state     mgmt.ConnState
	files     []core.AuthFile
	filesErr  error
	listCalls int
	keys      any
	keysErr   error
	counts    map[string]int
	countErr  error
}

func (f *fakeManagement) State() mgmt.ConnState { return f.state }

func (f *fakeManagement) ListAuthFiles(context.Context) ([]core.AuthFile, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	return f.files, f.filesErr
}

func (f *fakeManagement) ListAPIKeys(context.Context) (any, error) {
	return f.keys, f.keysErr
}

func (f *fakeManagement) CountKeys(_ context.Context, provider string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[provider], nil
}

func (f *fakeManagement) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeAdapter struct {
	id      string
	fetch   func(ctx context.Context, f core.AuthFile) ([]core.MetricGroup, error)
	fetched atomic.Int32
}

func (a *fakeAdapter) ID() string { return a.id }
func (a *fakeAdapter) DisplayName() string { return a.id }
func (a *fakeAdapter) Matches(f core.AuthFile) bool { return f.Provider == a.id }
func (a *fakeAdapter) Loading() core.QuotaState { return core.LoadingState() }
func (a *fakeAdapter) Success(m []core.MetricGroup) core.QuotaState { return core.SuccessState(m) }
func (a *fakeAdapter) Failure(err error) core.QuotaState { return core.ErrorState(err) }
func (a *fakeAdapter) MaxSummaryItems() int { return 0 }

func (a *fakeAdapter) Fetch(ctx context.Context, f core.AuthFile) ([]core.MetricGroup, error) {
	a.fetched.Add(1)
	if a.fetch != nil {
		return a.fetch(ctx, f)
	}
	return []core.MetricGroup{{ID: "w", Label: "w", Percent: core.Ptr(50)}}, nil
}

func newTestOrchestrator(client Management, adapters ...core.Adapter) (*Orchestrator, *store.Store) {
	st := store.New()
	return New(client, adapters, st, zerolog.Nop()), st
}

func TestRefreshAllLeavesNoLoadingStates(t *testing.T) {
	client := &fakeManagement{
		state: mgmt.StateConnected,
		files: []core.AuthFile{
			{Name: "a.json", Provider: "claude"},
			{Name: "b.json", Provider: "claude"},
			{Name: "c.json", Provider: "codex"},
		},
	}
	claude := &fakeAdapter{id: "claude"}
	codex := &fakeAdapter{id: "codex", fetch: func(context.Context, core.AuthFile) ([]core.MetricGroup, error) {
		return nil, errors.New("upstream 500")
	}}
	orch, st := newTestOrchestrator(client, claude, codex)

	if err := orch.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}

	for provider, pq := range st.Snapshot() {
		for name, state := range pq.States {
			if state.Kind == core.StateLoading {
				t.Errorf("%s/%s left in loading", provider, name)
			}
		}
	}
	if got := st.Provider("codex").States["c.json"]; got.Kind != core.StateError || got.Message != "upstream 500" {
		t.Errorf("codex state = %+v, want error with message", got)
	}
	if got := st.Provider("claude").States["a.json"]; got.Kind != core.StateSuccess {
		t.Errorf("claude state = %+v, want success", got)
	}
}

func TestRefreshAllFailureDoesNotCancelSiblings(t *testing.T) {
	client := &fakeManagement{
		state: mgmt.StateConnected,
		files: []core.AuthFile{
			{Name: "bad.json", Provider: "claude"},
			{Name: "good.json", Provider: "claude"},
		},
	}
	adapter := &fakeAdapter{id: "claude", fetch: func(_ context.Context, f core.AuthFile) ([]core.MetricGroup, error) {
		if f.Name == "bad.json" {
			return nil, errors.New("expired token")
		}
		return []core.MetricGroup{{ID: "w", Label: "w", Percent: core.Ptr(75)}}, nil
	}}
	orch, st := newTestOrchestrator(client, adapter)

	if err := orch.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}

	states := st.Provider("claude").States
	if states["bad.json"].Kind != core.StateError {
		t.Errorf("bad.json = %+v, want error", states["bad.json"])
	}
	if states["good.json"].Kind != core.StateSuccess {
		t.Errorf("good.json = %+v, want success", states["good.json"])
	}
}

func TestRefreshAllRefusedWhileDisconnected(t *testing.T) {
	for _, state := range []mgmt.ConnState{mgmt.StateDisconnected, mgmt.StateConnecting} {
		client := &fakeManagement{state: state}
		orch, _ := newTestOrchestrator(client, &fakeAdapter{id: "claude"})

		if err := orch.RefreshAll(context.Background()); !errors.Is(err, ErrNotConnected) {
			t.Errorf("state %s: err = %v, want ErrNotConnected", state, err)
		}
		if client.calls() != 0 {
			t.Errorf("state %s: listing called while not connected", state)
		}
	}
}

func TestRefreshAllInProgressIsNoOp(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	client := &fakeManagement{
		state: mgmt.StateConnected,
		files: []core.AuthFile{{Name: "a.json", Provider: "claude"}},
	}
	adapter := &fakeAdapter{id: "claude", fetch: func(context.Context, core.AuthFile) ([]core.MetricGroup, error) {
		once.Do(func() { close(started) })
		<-release
		return nil, nil
	}}
	orch, _ := newTestOrchestrator(client, adapter)

	done := make(chan error, 1)
	go func() { done <- orch.RefreshAll(context.Background()) }()
	<-started

	// Second call while the first is blocked: returns immediately,
	// no extra listing call, no extra fetches.
	if err := orch.RefreshAll(context.Background()); err != nil {
		t.Fatalf("second RefreshAll() error: %v", err)
	}
	if got := client.calls(); got != 1 {
		t.Errorf("listing calls = %d, want 1", got)
	}
	if got := adapter.fetched.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first RefreshAll() error: %v", err)
	}
	if orch.Refreshing() {
		t.Error("guard not released after cycle")
	}
}

func TestRefreshAllGuardReleasedOnListingFailure(t *testing.T) {
	client := &fakeManagement{
		state:    mgmt.StateConnected,
		filesErr: errors.New("listing down"),
	}
	orch, _ := newTestOrchestrator(client, &fakeAdapter{id: "claude"})

	if err := orch.RefreshAll(context.Background()); err == nil {
		t.Fatal("expected listing error")
	}
	if orch.Refreshing() {
		t.Error("guard not released after failure")
	}

	// A later cycle must be able to start.
	client.filesErr = nil
	if err := orch.RefreshAll(context.Background()); err != nil {
		t.Fatalf("follow-up RefreshAll() error: %v", err)
	}
}

func TestRefreshAllPartitionFirstMatchWins(t *testing.T) {
	client := &fakeManagement{
		state: mgmt.StateConnected,
		files: []core.AuthFile{
			{Name: "a.json", Provider: "claude"},
			{Name: "other.json", Provider: "gemini"},
		},
	}
	first := &fakeAdapter{id: "claude"}
	second := &fakeAdapter{id: "claude"} // same predicate, must never see the file
	orch, _ := newTestOrchestrator(client, first, second)

	if err := orch.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}
	if first.fetched.Load() != 1 {
		t.Errorf("first adapter fetches = %d, want 1", first.fetched.Load())
	}
	if second.fetched.Load() != 0 {
		t.Errorf("second adapter fetches = %d, want 0", second.fetched.Load())
	}
}

func TestRefreshAllFansOutConcurrently(t *testing.T) {
	const n = 8
	var inFlight, peak atomic.Int32

	files := make([]core.AuthFile, n)
	for i := range files {
		files[i] = core.AuthFile{Name: fmt.Sprintf("%d.json", i), Provider: "claude"}
	}
	client := &fakeManagement{state: mgmt.StateConnected, files: files}

	gate := make(chan struct{})
	adapter := &fakeAdapter{id: "claude", fetch: func(context.Context, core.AuthFile) ([]core.MetricGroup, error) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		<-gate
		inFlight.Add(-1)
		return nil, nil
	}}
	orch, _ := newTestOrchestrator(client, adapter)

	done := make(chan error, 1)
	go func() { done <- orch.RefreshAll(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for inFlight.Load() < n {
		select {
		case <-deadline:
			t.Fatalf("only %d fetches in flight, want %d", inFlight.Load(), n)
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("RefreshAll() error: %v", err)
	}
	if peak.Load() != n {
		t.Errorf("peak concurrency = %d, want %d", peak.Load(), n)
	}
}

func TestLoadStatsNilOnFailure(t *testing.T) {
	client := &fakeManagement{
		state:    mgmt.StateConnected,
		filesErr: errors.New("unavailable"),
		keysErr:  errors.New("unavailable"),
		countErr: errors.New("unavailable"),
	}
	orch, _ := newTestOrchestrator(client, &fakeAdapter{id: "claude"})

	stats := orch.LoadStats(context.Background())
	if stats.AuthFiles != nil {
		t.Errorf("AuthFiles = %v, want nil", *stats.AuthFiles)
	}
	if stats.APIKeys != nil {
		t.Errorf("APIKeys = %v, want nil (not zero)", *stats.APIKeys)
	}
	if stats.ProviderKeys["claude"] != nil {
		t.Errorf("ProviderKeys[claude] = %v, want nil", *stats.ProviderKeys["claude"])
	}
}

func TestLoadStatsCounts(t *testing.T) {
	client := &fakeManagement{
		state:  mgmt.StateConnected,
		files:  []core.AuthFile{{Name: "a.json", Provider: "claude"}},
		keys:   []any{"k1", map[string]any{"apiKey": "k2"}, "k1"},
		counts: map[string]int{"claude": 3},
	}
	orch, _ := newTestOrchestrator(client, &fakeAdapter{id: "claude"})

	stats := orch.LoadStats(context.Background())
	if stats.AuthFiles == nil || *stats.AuthFiles != 1 {
		t.Errorf("AuthFiles = %v, want 1", stats.AuthFiles)
	}
	if stats.APIKeys == nil || *stats.APIKeys != 2 {
		t.Errorf("APIKeys = %v, want 2 after normalization", stats.APIKeys)
	}
	if got := stats.ProviderKeys["claude"]; got == nil || *got != 3 {
		t.Errorf("ProviderKeys[claude] = %v, want 3", got)
	}
}
