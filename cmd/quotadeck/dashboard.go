package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/quotadeck/quotadeck/internal/apikeys"
	"github.com/quotadeck/quotadeck/internal/config"
	"github.com/quotadeck/quotadeck/internal/engine"
	"github.com/quotadeck/quotadeck/internal/mgmt"
	"github.com/quotadeck/quotadeck/internal/providers"
	"github.com/quotadeck/quotadeck/internal/store"
	"github.com/quotadeck/quotadeck/internal/tui"
)

// runDashboard wires the engine together and hands the terminal to the
// TUI. Config changes observed while running re-point the management
// client and invalidate the key cache.
func runDashboard(holder *config.Holder, endpointOverride string, log zerolog.Logger) error {
	cfg := holder.Get()

	endpoint := cfg.Endpoint
	if endpointOverride != "" {
		endpoint = endpointOverride
	}

	client := mgmt.New(endpoint, cfg.ManagementKey, log)
	resolver := apikeys.New(client, func() []any { return holder.Get().APIKeys }, log)

	st := store.New()
	adapters := providers.All(client)
	orch := engine.New(client, adapters, st, log)

	// The two documented cache-invalidation triggers: endpoint change
	// and static key-list change.
	holder.OnChange(func(prev, next config.Config) {
		if endpointOverride == "" && config.EndpointChanged(prev, next) {
			client.SetEndpoint(next.Endpoint, next.ManagementKey)
			resolver.Invalidate()
		}
		if config.KeyListChanged(prev, next) {
			resolver.Invalidate()
		}
	})
	if err := holder.Watch(); err != nil {
		log.Debug().Err(err).Msg("config watch unavailable")
	}
	defer holder.Close()

	interval := time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second
	model := tui.New(orch, client, resolver, interval, log)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
