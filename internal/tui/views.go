package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/quotadeck/quotadeck/internal/core"
	"github.com/quotadeck/quotadeck/internal/mgmt"
)

const (
	tileWidth  = 34
	gaugeWidth = 14
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("quotadeck"))
	b.WriteString("  ")
	b.WriteString(m.connBadge())
	if m.refreshing {
		b.WriteString("  " + m.spinner.View() + subtleStyle.Render(" refreshing"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.statsRow())
	b.WriteString("\n\n")

	if len(m.summaries) == 0 {
		if m.refreshing {
			b.WriteString(subtleStyle.Render("waiting for quota data..."))
		} else {
			b.WriteString(subtleStyle.Render("no quota data • press r to refresh"))
		}
	} else {
		b.WriteString(m.renderTiles())
	}

	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("r refresh • q quit"))
	return b.String()
}

func (m Model) connBadge() string {
	switch m.conn {
	case mgmt.StateConnected:
		return lipgloss.NewStyle().Foreground(colorGreen).Render("● connected")
	case mgmt.StateConnecting:
		return lipgloss.NewStyle().Foreground(colorYellow).Render("◐ connecting")
	default:
		return errorStyle.Render("○ disconnected")
	}
}

func (m Model) statsRow() string {
	parts := []string{
		statLine("auth files", countLabel(m.stats.AuthFiles)),
		statLine("api keys", countLabel(m.stats.APIKeys)),
		statLine("models", fmt.Sprintf("%d", len(m.models))),
	}
	return strings.Join(parts, subtleStyle.Render("  │  "))
}

func statLine(label, value string) string {
	return subtleStyle.Render(label+" ") + statStyle.Render(value)
}

// countLabel renders a stat count; nil means the listing call failed
// and shows as unknown, never as zero.
func countLabel(n *int) string {
	if n == nil {
		return "—"
	}
	return fmt.Sprintf("%d", *n)
}

func (m Model) renderTiles() string {
	tiles := lo.Map(m.summaries, func(s core.ProviderSummary, _ int) string {
		return renderTile(s)
	})

	cols := m.width / (tileWidth + 2)
	if cols < 1 {
		cols = 1
	}

	var rows []string
	for _, rowTiles := range lo.Chunk(tiles, cols) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowTiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderTile(s core.ProviderSummary) string {
	var b strings.Builder

	accounts := "1 account"
	if s.Accounts != 1 {
		accounts = fmt.Sprintf("%d accounts", s.Accounts)
	}
	b.WriteString(tileTitleStyle.Render(s.Provider))
	b.WriteString(subtleStyle.Render("  " + accounts))
	b.WriteString("\n")

	for _, item := range s.Items {
		label := item.Label
		if len(label) > tileWidth-gaugeWidth-8 {
			label = label[:tileWidth-gaugeWidth-11] + "..."
		}
		b.WriteString(fmt.Sprintf("%-*s %s %3d%%\n",
			tileWidth-gaugeWidth-7, label, renderGauge(item.Percent, gaugeWidth), item.Percent))
	}

	return tileStyle.Width(tileWidth).Render(strings.TrimRight(b.String(), "\n"))
}

// renderGauge draws a remaining-percent bar: green when plenty is
// left, red when nearly exhausted.
func renderGauge(pct, w int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := pct * w / 100
	if filled < 1 && pct > 0 {
		filled = 1
	}

	barColor := colorGreen
	if pct <= 20 {
		barColor = colorRed
	} else if pct <= 50 {
		barColor = colorYellow
	}

	bar := lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled))
	track := lipgloss.NewStyle().Foreground(colorTrack).Render(strings.Repeat("░", w-filled))
	return bar + track
}
