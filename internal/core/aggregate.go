package core

import "math"

// ProviderQuota is one provider's view of the store at a point in time:
// the latest state per credential plus the listing order recorded when
// the refresh cycle started. Order makes "first qualifying credential"
// deterministic.
type ProviderQuota struct {
	Order  []string
	States map[string]QuotaState
}

// Aggregate derives display-ready summaries from raw per-credential
// states. Pure function: no I/O, deterministic for a given input.
//
// A credential qualifies when its state is Success with a non-empty
// metric list. Providers with zero qualifying credentials are omitted
// outright rather than shown as zero. Labels and item ordering come from
// the first qualifying credential; metric ids that only later
// credentials report are dropped. A nil percent excludes that
// credential from that metric's average without dragging it to zero.
func Aggregate(adapters []Adapter, quotas map[string]ProviderQuota) []ProviderSummary {
	summaries := make([]ProviderSummary, 0, len(adapters))

	for _, adapter := range adapters {
		pq, ok := quotas[adapter.ID()]
		if !ok {
			continue
		}

		var qualified [][]MetricGroup
		for _, name := range pq.Order {
			st, ok := pq.States[name]
			if !ok || st.Kind != StateSuccess || len(st.Metrics) == 0 {
				continue
			}
			qualified = append(qualified, st.Metrics)
		}
		if len(qualified) == 0 {
			continue
		}

		type acc struct {
			sum   float64
			count int
		}
		byID := make(map[string]*acc)
		for _, metrics := range qualified {
			for _, m := range metrics {
				if m.Percent == nil {
					continue
				}
				a, ok := byID[m.ID]
				if !ok {
					a = &acc{}
					byID[m.ID] = a
				}
				a.sum += *m.Percent
				a.count++
			}
		}

		// Canonical ordering and labels come from the first qualifying
		// credential only.
		items := make([]SummaryItem, 0, len(qualified[0]))
		seen := make(map[string]bool, len(qualified[0]))
		for _, m := range qualified[0] {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			a, ok := byID[m.ID]
			if !ok || a.count == 0 {
				continue
			}
			items = append(items, SummaryItem{
				ID:      m.ID,
				Label:   m.Label,
				Percent: int(math.Round(a.sum / float64(a.count))),
			})
		}

		if limit := adapter.MaxSummaryItems(); limit > 0 && len(items) > limit {
			items = items[:limit]
		}

		summaries = append(summaries, ProviderSummary{
			Provider: adapter.DisplayName(),
			Accounts: len(qualified),
			Items:    items,
		})
	}

	return summaries
}
