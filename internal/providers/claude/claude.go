// Package claude reads usage-window quota for Claude OAuth accounts.
// The payload reports utilization as a used percent per window, which
// is inverted to the common remaining percent.
package claude

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
			ID:   "claude",
			Name: "Claude",
		}),
		source: source,
	}
}

type usageWindow struct {
	Utilization *float64 `json:"utilization"`
}

type quotaPayload struct {
	FiveHour usageWindow `json:"five_hour"`
	SevenDay usageWindow `json:"seven_day"`
}

func (a *Adapter) Fetch(ctx context.Context, f core.AuthFile) ([]core.MetricGroup, error) {
	raw, err := a.source.QuotaRaw(ctx, a.ID(), f.Name)
	if err != nil {
		return nil, err
	}

	var payload quotaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("claude: decoding quota payload: %w", err)
	}

	return []core.MetricGroup{
		{ID: "five_hour", Label: "5h window", Percent: invertUsed(payload.FiveHour.Utilization)},
		{ID: "seven_day", Label: "7d window", Percent: invertUsed(payload.SevenDay.Utilization)},
	}, nil
}

// invertUsed converts a used percent into the remaining percent,
// clamping at zero for over-quota accounts.
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
