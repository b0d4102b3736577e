// Package codex reads rate-limit window quota for Codex accounts. Like
// Claude, the payload reports used percent per window and is inverted
// to remaining percent; window labels derive from the window length.
package codex

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
			ID:   "codex",
			Name: "Codex",
		}),
		source: source,
	}
}

type rateWindow struct {
	UsedPercent   *float64 `json:"used_percent"`
	WindowMinutes int      `json:"window_minutes"`
}

type quotaPayload struct {
	RateLimits struct {
		Primary   *rateWindow `json:"primary"`
		Secondary *rateWindow `json:"secondary"`
	} `json:"rate_limits"`
}

func (a *Adapter) Fetch(ctx context.Context, f core.AuthFile) ([]core.MetricGroup, error) {
	raw, err := a.source.QuotaRaw(ctx, a.ID(), f.Name)
	if err != nil {
		return nil, err
	}

	var payload quotaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("codex: decoding quota payload: %w", err)
	}

	var metrics []core.MetricGroup
	if w := payload.RateLimits.Primary; w != nil {
		metrics = append(metrics, windowMetric("primary", w))
	}
	if w := payload.RateLimits.Secondary; w != nil {
		metrics = append(metrics, windowMetric("secondary", w))
	}
	return metrics, nil
}

func windowMetric(id string, w *rateWindow) core.MetricGroup {
	return core.MetricGroup{
		ID:      id,
		Label:   windowLabel(w.WindowMinutes),
		Percent: invertUsed(w.UsedPercent),
	}
}

func windowLabel(minutes int) string {
	switch {
	case minutes <= 0:
		return "rate limit"
	case minutes < 60:
		return fmt.Sprintf("%dm window", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh window", minutes/60)
	default:
		return fmt.Sprintf("%dd window", minutes/(24*60))
	}
}

func invertUsed(used *float64) *float64 {
	if used == nil {
		return nil
	}
	remaining := 100 - *used
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
