// Package tui is an interactive viewer over an aggregate.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/report"
)

// detailLimit caps the contracts listed for one type.
const detailLimit = 15

type modelT struct {
	analysis *model.Analysis
	labels   report.Labels
	types    []model.VulnType
	cursor   int
	detail   bool
}

func initialModel(a *model.Analysis, labels report.Labels) modelT {
	return modelT{analysis: a, labels: labels, types: a.Aggregate.Types()}
}

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if !m.detail && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if !m.detail && m.cursor < len(m.types)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.types) > 0 {
			m.detail = true
		}
	case "esc", "backspace":
		m.detail = false
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	agg := &m.analysis.Aggregate
	if m.detail {
		t := m.types[m.cursor]
		list := agg.PerTypeAffectedContracts[t]
		fmt.Fprintf(&b, "%s (%s): %d contracts, %d occurrences\n\n", t, m.labels.Label(t), len(list), agg.PerTypeOccurrenceCount[t])
		top := agg.TopRanked(t, detailLimit)
		if len(top) == 0 {
			b.WriteString("  no ranked contracts\n")
		}
		for _, c := range top {
			fmt.Fprintf(&b, "  #%-6d %s\n", c.Rank, c.ID)
		}
		if unranked := len(list) - countRanked(list); unranked > 0 {
			fmt.Fprintf(&b, "  + %d unranked\n", unranked)
		}
		b.WriteString("\nesc back, q quit\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %d contracts\n\n", m.analysis.Dataset, agg.Contracts)
	for i, t := range m.types {
		cur := " "
		if i == m.cursor {
			cur = ">"
		}
		fmt.Fprintf(&b, "%s %-6s %-34s %6d occurrences %6d contracts\n", cur, m.labels.Label(t), t, agg.PerTypeOccurrenceCount[t], agg.AffectedContractCount(t))
	}
	if len(m.types) == 0 {
		b.WriteString("  no detections\n")
	}
	b.WriteString("\nup/down select, enter details, q quit\n")
	return b.String()
}

func countRanked(list []model.RankedContract) int {
	n := 0
	for _, c := range list {
		if c.Rank != model.SentinelRank {
			n++
		}
	}
	return n
}

// Run launches the viewer and blocks until the user quits.
func Run(a *model.Analysis, labels report.Labels) error {
	p := tea.NewProgram(initialModel(a, labels))
	_, err := p.Run()
	return err
}
