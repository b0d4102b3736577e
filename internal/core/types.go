package core

import "time"

// StateKind tags the lifecycle phase of one credential's quota read.
type StateKind string

const (
	StateLoading StateKind = "LOADING"
	StateSuccess StateKind = "SUCCESS"
	StateError   StateKind = "ERROR"
)

// AuthFile identifies one stored credential on the management server.
// Instances are immutable snapshots of a single listing call.
type AuthFile struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Label    string `json:"label,omitempty"`
}

// MetricGroup is one percent-like usage dimension after adapter
// normalization. Percent is the *remaining* percent in [0,100];
// nil means unknown and is excluded from aggregation.
type MetricGroup struct {
	ID      string
	Label   string
	Percent *float64
}

// QuotaState is the tagged result of one credential's quota fetch.
// Exactly one variant is active: Loading carries nothing, Success
// carries Metrics, Error carries Message. Transitions go Loading to a
// terminal state, and any state back to Loading on a new refresh cycle.
type QuotaState struct {
	Kind    StateKind
	Metrics []MetricGroup
	Message string
	Updated time.Time
}

func LoadingState() QuotaState {
	return QuotaState{Kind: StateLoading, Updated: time.Now()}
}

func SuccessState(metrics []MetricGroup) QuotaState {
	return QuotaState{Kind: StateSuccess, Metrics: metrics, Updated: time.Now()}
}

// ErrorState builds the error variant from a failed fetch. A nil error
// or one with an empty message falls back to a generic description.
func ErrorState(err error) QuotaState {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "quota fetch failed"
	}
	return QuotaState{Kind: StateError, Message: msg, Updated: time.Now()}
}

// SummaryItem is one display-ready metric in a provider summary.
type SummaryItem struct {
	ID      string
	Label   string
	Percent int // remaining, 0-100
}

// ProviderSummary is the aggregated view of one provider across all of
// its credentials that reported data. Derived on every read, never stored.
type ProviderSummary struct {
	Provider string
	Accounts int
	Items    []SummaryItem
}

// Ptr returns a pointer to v. Convenience for literal MetricGroups.
func Ptr(v float64) *float64 { return &v }
