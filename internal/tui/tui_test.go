package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/report"
)

func fixture() *model.Analysis {
	return &model.Analysis{
		Dataset: "native",
		Aggregate: model.AggregateResult{
			Contracts: 3,
			PerTypeOccurrenceCount: map[model.VulnType]int{
				model.TypeLoopCalculation:  4,
				model.TypeExternalFunction: 1,
			},
			PerTypeAffectedContracts: map[model.VulnType][]model.RankedContract{
				model.TypeLoopCalculation:  {{ID: "u", Rank: -1}, {ID: "b", Rank: 2}, {ID: "a", Rank: 9}},
				model.TypeExternalFunction: {{ID: "u", Rank: -1}},
			},
		},
	}
}

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) modelT {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	out, ok := m.(modelT)
	require.True(t, ok)
	return out
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestListView(t *testing.T) {
	m := initialModel(fixture(), report.DefaultLabels())
	v := m.View()
	assert.Contains(t, v, "native: 3 contracts")
	assert.Contains(t, v, "> RCL")
	assert.Contains(t, v, "  DLFV")
}

func TestCursorMovesWithinBounds(t *testing.T) {
	m := initialModel(fixture(), report.DefaultLabels())
	assert.Equal(t, 0, press(t, m, up).cursor)
	assert.Equal(t, 1, press(t, m, down).cursor)
	assert.Equal(t, 1, press(t, m, down, down, down).cursor)
	assert.Equal(t, 0, press(t, m, down, up).cursor)
}

func TestDetailView(t *testing.T) {
	m := press(t, initialModel(fixture(), report.DefaultLabels()), enter)
	require.True(t, m.detail)
	v := m.View()
	assert.Contains(t, v, "loop-calculation (RCL): 3 contracts, 4 occurrences")
	assert.Regexp(t, `#2\s+b\n\s+#9\s+a`, v)
	assert.Contains(t, v, "+ 1 unranked")

	m = press(t, m, down)
	assert.Equal(t, 0, m.cursor, "cursor is frozen in detail view")
	m = press(t, m, esc)
	assert.False(t, m.detail)

	m = press(t, m, down, enter)
	assert.Contains(t, m.View(), "no ranked contracts")
}

func TestQuit(t *testing.T) {
	m := initialModel(fixture(), report.DefaultLabels())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEmptyAggregate(t *testing.T) {
	m := initialModel(&model.Analysis{Dataset: "x"}, report.DefaultLabels())
	m = press(t, m, enter)
	assert.False(t, m.detail)
	assert.Contains(t, m.View(), "no detections")
}
