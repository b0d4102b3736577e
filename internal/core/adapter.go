package core

import "context"

// AdapterSpec is the static description of one provider adapter.
// AuthTags lists the auth-file provider tags the adapter claims; it
// defaults to {ID} when empty. MaxSummaryItems caps the aggregated item
// list for providers whose metric cardinality is unbounded; zero means
// no cap.
type AdapterSpec struct {
	ID              string
	Name            string
	AuthTags        []string
	MaxSummaryItems int
}

// QuotaSource supplies the raw provider-specific quota payload for one
// credential file. The management client implements it; adapters own
// the parsing and normalization of what comes back.
type QuotaSource interface {
	QuotaRaw(ctx context.Context, provider, name string) ([]byte, error)
}

// Adapter is the capability set every provider exposes: a selection
// predicate over auth files, the three quota-state constructors, and an
// asynchronous fetch for one credential. The orchestrator and the
// aggregator are written once against this interface.
type Adapter interface {
	ID() string
	DisplayName() string

	// Matches reports whether the auth file belongs to this provider.
	// A file matches at most one adapter; the registry order breaks ties.
	Matches(f AuthFile) bool

	Loading() QuotaState
	Success(metrics []MetricGroup) QuotaState
	Failure(err error) QuotaState

	// Fetch reads raw quota for one credential and normalizes it to
	// remaining-percent metric groups. No retries; a single failure is
	// reported back as an error.
	Fetch(ctx context.Context, f AuthFile) ([]MetricGroup, error)

	// MaxSummaryItems is 0 for providers with inherently bounded metrics.
	MaxSummaryItems() int
}
