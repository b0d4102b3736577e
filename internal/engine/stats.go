package engine

import (
	"context"

	"github.com/quotadeck/quotadeck/internal/apikeys"
)

// Stats is the dashboard's stat-tile readout. A nil field means the
// underlying listing call failed; the display shows an unknown marker,
// never zero, and the failure is not propagated.
type Stats struct {
	AuthFiles    *int
	APIKeys      *int
	ProviderKeys map[string]*int
}

func (o *Orchestrator) LoadStats(ctx context.Context) Stats {
	st := Stats{ProviderKeys: make(map[string]*int, len(o.adapters))}

	if files, err := o.client.ListAuthFiles(ctx); err == nil {
		n := len(files)
		st.AuthFiles = &n
	} else {
		o.log.Debug().Err(err).Msg("auth file count unavailable")
	}

	if raw, err := o.client.ListAPIKeys(ctx); err == nil {
		n := len(apikeys.NormalizeKeyList(raw))
		st.APIKeys = &n
	} else {
		o.log.Debug().Err(err).Msg("api key count unavailable")
	}

	for _, a := range o.adapters {
		if n, err := o.client.CountKeys(ctx, a.ID()); err == nil {
			count := n
			st.ProviderKeys[a.ID()] = &count
		} else {
			o.log.Debug().Err(err).Str("provider", a.ID()).Msg("key count unavailable")
			st.ProviderKeys[a.ID()] = nil
		}
	}

	return st
}
