// Package antigravity reads per-model quota for Antigravity accounts.
// The payload reports a remaining fraction in [0,1] per model; metric
// cardinality follows the model catalog, so summaries are capped.
package antigravity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quotadeck/quotadeck/internal/core"
	"github.com/quotadeck/quotadeck/internal/providers/adapterbase"
)

type Adapter struct {
	adapterbase.Base
	source core.QuotaSource
}

func New(source core.QuotaSource) *Adapter {
	return &Adapter{
		Base: adapterbase.New(core.AdapterSpec{
			ID:              "antigravity",
			Name:            "Antigravity",
			MaxSummaryItems: 5,
		}),
		source: source,
	}
}

type quotaPayload struct {
	Models []struct {
		Name              string   `json:"name"`
		DisplayName       string   `json:"display_name"`
		RemainingFraction *float64 `json:"remaining_fraction"`
	} `json:"models"`
}

func (a *Adapter) Fetch(ctx context.Context, f core.AuthFile) ([]core.MetricGroup, error) {
	raw, err := a.source.QuotaRaw(ctx, a.ID(), f.Name)
	if err != nil {
		return nil, err
	}

	var payload quotaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("antigravity: decoding quota payload: %w", err)
	}

	metrics := make([]core.MetricGroup, 0, len(payload.Models))
	for _, m := range payload.Models {
		label := m.DisplayName
		if label == "" {
			label = m.Name
		}
		metrics = append(metrics, core.MetricGroup{
			ID:      m.Name,
			Label:   label,
			Percent: remainingPercent(m.RemainingFraction),
		})
	}
	return metrics, nil
}

func remainingPercent(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	pct := *fraction * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return &pct
}
