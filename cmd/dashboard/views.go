package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/forest/internal/types"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// listItem implements list.Item for the report list.
type listItem struct {
	name        string
	description string
	dir         string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewReportList creates the report selection list.
func NewReportList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Select Report"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// ReportItems turns result folders into list items named relative to root.
func ReportItems(root string, dirs []string) []list.Item {
	items := make([]list.Item, 0, len(dirs))

	for _, dir := range dirs {
		name, err := filepath.Rel(root, dir)
		if err != nil || name == "." {
			name = filepath.Base(dir)
		}

		items = append(items, listItem{name: name, description: dir, dir: dir})
	}

	return items
}

// NewTradeTable creates the fill table.
func NewTradeTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 20},
		{Title: "Side", Width: 6},
		{Title: "Action", Width: 6},
		{Title: "Reason", Width: 14},
		{Title: "Price", Width: 12},
		{Title: "Qty", Width: 10},
		{Title: "Cost", Width: 8},
		{Title: "PnL", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateTradeRows fills the table with one row per fill.
func UpdateTradeRows(t table.Model, trades []types.Trade) table.Model {
	rows := make([]table.Row, 0, len(trades))

	for _, trade := range trades {
		rows = append(rows, table.Row{
			trade.Time.Format("2006-01-02 15:04:05"),
			string(trade.Side),
			string(trade.Action),
			string(trade.Reason),
			fmt.Sprintf("%.4f", trade.Price),
			fmt.Sprintf("%.4f", trade.Quantity),
			fmt.Sprintf("%.2f", trade.Cost),
			FormatPnL(trade.PnL),
		})
	}

	t.SetRows(rows)

	return t
}

// Sparkline draws values in at most width cells. Each cell shows the last
// value of its bucket.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	if len(values) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			end := (i + 1) * len(values) / width
			sampled[i] = values[end-1]
		}

		values = sampled
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var sb strings.Builder

	for _, v := range values {
		level := 0
		if hi > lo {
			level = int((v - lo) / (hi - lo) * float64(len(sparkLevels)-1))
		}

		sb.WriteRune(sparkLevels[level])
	}

	return sb.String()
}

// RenderSummary lays out the headline numbers of a run.
func RenderSummary(stats types.RunStats) string {
	row := func(label, value string) string {
		return LabelStyle.Render(label) + value
	}

	lines := []string{
		row("Strategy", stats.Strategy),
		row("Symbol", stats.Symbol),
		row("Bars", fmt.Sprintf("%d", stats.Bars)),
		row("Initial capital", fmt.Sprintf("%.2f", stats.InitialCapital)),
		row("Ending equity", fmt.Sprintf("%.2f", stats.EndingEquity)),
		row("Total return", fmt.Sprintf("%.2f%%", stats.TotalReturn*100)),
		row("CAGR", fmt.Sprintf("%.2f%%", stats.CAGR*100)),
		row("Sharpe", fmt.Sprintf("%.3f", stats.Sharpe)),
		row("Round trips", fmt.Sprintf("%d (win rate %.1f%%)", stats.TradeResult.NumberOfTrades, stats.TradeResult.WinRate*100)),
		row("Max drawdown", fmt.Sprintf("%.2f (%.2f%%)", stats.TradeResult.MaxDrawdown, stats.TradeResult.MaxDrawdownPct*100)),
		row("Return / max DD", fmt.Sprintf("%.4f", stats.ReturnOverMaxDrawdown)),
		row("Buy and hold", FormatPnL(stats.BuyAndHoldPnl)),
		row("Fees", fmt.Sprintf("%.2f", stats.TotalFees)),
	}

	if stats.Halted {
		lines = append(lines, row("Halted at bar", fmt.Sprintf("%d", stats.HaltedAt)))
	}

	return strings.Join(lines, "\n")
}
