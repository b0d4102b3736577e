package providers

import (
	"github.com/quotadeck/quotadeck/internal/core"
	"github.com/quotadeck/quotadeck/internal/providers/antigravity"
	"github.com/quotadeck/quotadeck/internal/providers/claude"
	"github.com/quotadeck/quotadeck/internal/providers/codex"
)

// All returns the adapters in display order. The order is also the
// tie-break for auth-file matching and the provider order of the
// aggregated summaries.
func All(source core.QuotaSource) []core.Adapter {
	return []core.Adapter{
		antigravity.New(source),
		claude.New(source),
		codex.New(source),
	}
}
