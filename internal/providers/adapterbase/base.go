// Package adapterbase centralizes adapter identity, auth-file matching
// and quota-state construction. Provider packages embed Base and
// implement only Fetch().
package adapterbase

import (
	"github.com/quotadeck/quotadeck/internal/core"
)

type Base struct {
	spec core.AdapterSpec
}

func New(spec core.AdapterSpec) Base {
	normalized := spec
	if normalized.ID == "" {
		normalized.ID = "unknown"
	}
	if normalized.Name == "" {
		normalized.Name = normalized.ID
	}
	if len(normalized.AuthTags) == 0 {
		normalized.AuthTags = []string{normalized.ID}
	}
	return Base{spec: normalized}
}

func (b Base) ID() string {
	return b.spec.ID
}

func (b Base) DisplayName() string {
	return b.spec.Name
}

func (b Base) Matches(f core.AuthFile) bool {
	for _, tag := range b.spec.AuthTags {
		if f.Provider == tag {
			return true
		}
	}
	return false
}

func (b Base) Loading() core.QuotaState {
	return core.LoadingState()
}

func (b Base) Success(metrics []core.MetricGroup) core.QuotaState {
	return core.SuccessState(metrics)
}

func (b Base) Failure(err error) core.QuotaState {
	return core.ErrorState(err)
}

func (b Base) MaxSummaryItems() int {
	return b.spec.MaxSummaryItems
}
