package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(strategy string) types.Report {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	equity := make([]types.EquityPoint, 20)
	for i := range equity {
		equity[i] = types.EquityPoint{Index: i, Time: start.Add(time.Duration(i) * time.Minute), Equity: 10000 + float64(i*10)}
	}

	return types.Report{
		Stats: types.RunStats{ID: "run-" + strategy, Strategy: strategy, Symbol: "TEST", Bars: 20, InitialCapital: 10000, EndingEquity: 10190},
		Trades: []types.Trade{
			{Time: start, Price: 100, Quantity: 10, Side: types.SideLong, Action: types.TradeActionOpen, Reason: types.TradeReasonSignal},
			{Time: start.Add(19 * time.Minute), Price: 119, Quantity: 10, Side: types.SideLong, Action: types.TradeActionClose, Reason: types.TradeReasonEndOfData, GrossPnL: 190, PnL: 190},
		},
		Equity: equity,
	}
}

func writeReport(t *testing.T, dir string, report types.Report) {
	t.Helper()
	require.NoError(t, types.WriteReport(dir, report))
}

func waitFor(t *testing.T, tm *teatest.TestModel, text string) {
	t.Helper()

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte(text))
	}, teatest.WithDuration(2*time.Second))
}

func TestNewModel(t *testing.T) {
	m := NewModel("results")

	assert.Equal(t, StateReportSelect, m.state)
	assert.Equal(t, "results", m.root)
	assert.True(t, m.report.IsNone())
	assert.Empty(t, m.dirs)
}

func TestFindReports(t *testing.T) {
	root := t.TempDir()
	writeReport(t, filepath.Join(root, "ema_cross", "cfg", "b"), sampleReport("ema_cross"))
	writeReport(t, filepath.Join(root, "ema_cross", "cfg", "a"), sampleReport("ema_cross"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	dirs, err := FindReports(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "ema_cross", "cfg", "a"),
		filepath.Join(root, "ema_cross", "cfg", "b"),
	}, dirs)

	items := ReportItems(root, dirs)
	require.Len(t, items, 2)
	assert.Equal(t, filepath.Join("ema_cross", "cfg", "a"), items[0].(listItem).Title())
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		width    int
		expected string
	}{
		{name: "empty", values: nil, width: 10, expected: ""},
		{name: "flat", values: []float64{5, 5, 5}, width: 10, expected: "▁▁▁"},
		{name: "rising", values: []float64{0, 1, 2, 3, 4, 5, 6, 7}, width: 10, expected: "▁▂▃▄▅▆▇█"},
		{name: "downsampled", values: []float64{0, 1, 2, 3, 4, 5, 6, 7}, width: 4, expected: "▁▃▅█"},
		{name: "zero width", values: []float64{1, 2}, width: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := Sparkline(tt.values, tt.width)
			assert.Equal(t, tt.expected, line)
			assert.LessOrEqual(t, utf8.RuneCountInString(line), max(tt.width, 0))
		})
	}
}

func TestFormatPnL(t *testing.T) {
	assert.Equal(t, "12.50 ▲", FormatPnL(12.5))
	assert.Equal(t, "-3.00 ▼", FormatPnL(-3))
	assert.Equal(t, "0.00", FormatPnL(0))
}

func TestRenderSummary(t *testing.T) {
	stats := sampleReport("ema_cross").Stats
	summary := RenderSummary(stats)

	assert.Contains(t, summary, "ema_cross")
	assert.Contains(t, summary, "10190.00")
	assert.NotContains(t, summary, "Halted")
	assert.Contains(t, summary, "CAGR")
	assert.Contains(t, summary, "Sharpe")

	stats.Halted = true
	stats.HaltedAt = 7
	assert.Contains(t, RenderSummary(stats), "Halted at bar")
}

func TestUpdateTradeRows(t *testing.T) {
	tbl := UpdateTradeRows(NewTradeTable(), sampleReport("ema_cross").Trades)

	rows := tbl.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-01 00:00:00", rows[0][0])
	assert.Equal(t, "end_of_data", rows[1][3])
	assert.Equal(t, "190.00 ▲", rows[1][7])
}

func TestSingleReportOpensDirectly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ema_cross", "cfg", "bars")
	writeReport(t, dir, sampleReport("ema_cross"))

	tm := teatest.NewTestModel(t, NewModel(dir), teatest.WithInitialTermSize(120, 40))

	waitFor(t, tm, "Trades (2)")

	require.NoError(t, tm.Quit())
}

func TestSelectReport(t *testing.T) {
	root := t.TempDir()
	writeReport(t, filepath.Join(root, "ema_cross", "cfg", "bars"), sampleReport("ema_cross"))
	writeReport(t, filepath.Join(root, "ml_model", "cfg", "bars"), sampleReport("ml_model"))

	tm := teatest.NewTestModel(t, NewModel(root), teatest.WithInitialTermSize(120, 40))

	waitFor(t, tm, "Select Report")

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Ending equity")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	waitFor(t, tm, "Press Enter to open")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

func TestMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nothing")

	tm := teatest.NewTestModel(t, NewModel(root), teatest.WithInitialTermSize(80, 24))

	waitFor(t, tm, "Error:")

	require.NoError(t, tm.Quit())
}

func TestEmptyRoot(t *testing.T) {
	tm := teatest.NewTestModel(t, NewModel(t.TempDir()), teatest.WithInitialTermSize(80, 24))

	waitFor(t, tm, "No reports found")

	require.NoError(t, tm.Quit())
}

func TestReportLoadedMessage(t *testing.T) {
	m := NewModel("results")

	updated, _ := m.Update(ReportLoadedMsg{Dir: "results/x", Report: sampleReport("ema_cross")})
	model := updated.(Model)

	assert.Equal(t, StateReportDisplay, model.state)
	assert.Equal(t, "results/x", model.reportDir)
	assert.Len(t, model.tradeTable.Rows(), 2)
	assert.True(t, strings.Contains(model.View(), "Trades (2)"))

	// esc stays on a report when there is nothing to go back to
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateReportDisplay, updated.(Model).state)
}

func TestLoadError(t *testing.T) {
	m := NewModel("results")

	updated, _ := m.Update(LoadErrorMsg{Err: fmt.Errorf("boom")})
	assert.Contains(t, updated.(Model).View(), "boom")
}

func TestWindowResize(t *testing.T) {
	m := NewModel("results")

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	model := updated.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, 100, model.width)
	assert.Equal(t, 40, model.height)
	assert.Equal(t, 92, model.sparkWidth())
}
