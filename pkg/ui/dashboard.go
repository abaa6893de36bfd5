package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
)

const (
	refreshInterval = 500 * time.Millisecond
	maxRows         = 15
)

// StatsProvider supplies the dashboard with engine state. The detection
// engine satisfies it.
type StatsProvider interface {
	Stats() domain.StatsSnapshot
	Recent(limit int) []domain.Opportunity
}

// Model is the Bubble Tea model for the scanner dashboard.
type Model struct {
	provider StatsProvider
	keys     KeyMap
	help     help.Model

	stats  domain.StatsSnapshot
	opps   []domain.Opportunity
	paused bool
	width  int

	started time.Time
}

// NewModel creates a dashboard bound to provider.
func NewModel(provider StatsProvider) Model {
	return Model{
		provider: provider,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		started:  time.Now(),
	}
}

// Init starts the periodic refresh.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Clear):
			m.opps = nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case OpportunityMsg:
		if !m.paused {
			m.opps = append([]domain.Opportunity{msg.Opportunity}, m.opps...)
			if len(m.opps) > maxRows {
				m.opps = m.opps[:maxRows]
			}
		}

	case TickMsg:
		m.stats = m.provider.Stats()
		if !m.paused && len(m.opps) == 0 {
			// Recent is in publication order; the table shows newest on top.
			recent := m.provider.Recent(maxRows)
			for i := len(recent) - 1; i >= 0; i-- {
				m.opps = append(m.opps, recent[i])
			}
		}
		return m, tick()
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	title := " Crypto Arbitrage Scanner "
	if m.paused {
		title += PausedBadge.Render("[PAUSED]")
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.statsView())
	b.WriteString("\n")
	b.WriteString(m.opportunitiesView())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) statsView() string {
	age := "never"
	if !m.stats.LastUpdate.IsZero() {
		age = time.Since(m.stats.LastUpdate).Truncate(time.Millisecond).String()
	}

	lines := []string{
		fmt.Sprintf("Uptime           %s", time.Since(m.started).Truncate(time.Second)),
		fmt.Sprintf("Ticks processed  %d", m.stats.MessagesProcessed),
		fmt.Sprintf("Opportunities    %s", PositiveValue.Render(fmt.Sprintf("%d", m.stats.OpportunitiesFound))),
		fmt.Sprintf("False positives  %s", WarningValue.Render(fmt.Sprintf("%d", m.stats.FalsePositives))),
		fmt.Sprintf("Avg latency      %.1f us", m.stats.AvgLatencyUS),
		fmt.Sprintf("Last update      %s", MutedValue.Render(age)),
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) opportunitiesView() string {
	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-12s %-9s %-6s %-5s %s",
		"TIME", "PROFIT", "CONF", "HOPS", "PATH")))
	b.WriteString("\n")

	if len(m.opps) == 0 {
		b.WriteString(MutedValue.Render("waiting for opportunities..."))
	}
	for _, opp := range m.opps {
		profit := PositiveValue.Render(fmt.Sprintf("%+.4f%%", opp.ProfitPct*100))
		b.WriteString(fmt.Sprintf("%-12s %-9s %-6d %-5d %s\n",
			opp.DetectedAt.Format("15:04:05.000"),
			profit,
			opp.Confidence,
			len(opp.Cycle),
			opp.Path))
	}

	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
