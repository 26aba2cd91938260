package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/forest/internal/types"
)

// Application states.
const (
	StateReportSelect = iota
	StateReportDisplay
)

const defaultSparkWidth = 60

// Model is the Bubble Tea model of the results dashboard.
type Model struct {
	state      int
	root       string
	reportList list.Model
	tradeTable table.Model
	dirs       []string
	report     optional.Option[types.Report]
	reportDir  string
	err        error
	width      int
	height     int
}

// NewModel creates a dashboard over the result folders under root.
func NewModel(root string) Model {
	return Model{
		state:      StateReportSelect,
		root:       root,
		reportList: NewReportList(),
		tradeTable: NewTradeTable(),
		report:     optional.None[types.Report](),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return findReportsCmd(m.root)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.reportList.SetSize(msg.Width, msg.Height-4)
		m.tradeTable.SetWidth(msg.Width)
		m.tradeTable.SetHeight(max(msg.Height-22, 3))

		return m, nil

	case ReportsFoundMsg:
		m.dirs = msg.Dirs
		m.err = nil
		cmd := m.reportList.SetItems(ReportItems(m.root, msg.Dirs))

		if len(msg.Dirs) == 1 {
			return m, tea.Batch(cmd, loadReportCmd(msg.Dirs[0]))
		}

		return m, cmd

	case ReportLoadedMsg:
		m.report = optional.Some(msg.Report)
		m.reportDir = msg.Dir
		m.err = nil
		m.tradeTable = UpdateTradeRows(m.tradeTable, msg.Report.Trades)
		m.tradeTable.GotoTop()
		m.state = StateReportDisplay

		return m, nil

	case LoadErrorMsg:
		m.err = msg.Err

		return m, nil
	}

	switch m.state {
	case StateReportSelect:
		return m.updateReportSelect(msg)
	case StateReportDisplay:
		return m.updateReportDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == StateReportDisplay && len(m.dirs) > 1 {
		m.state = StateReportSelect
		m.report = optional.None[types.Report]()
		m.reportDir = ""
	}

	return m, nil
}

func (m Model) updateReportSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if item, ok := m.reportList.SelectedItem().(listItem); ok {
			return m, loadReportCmd(item.dir)
		}
	}

	var cmd tea.Cmd
	m.reportList, cmd = m.reportList.Update(msg)

	return m, cmd
}

func (m Model) updateReportDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tradeTable, cmd = m.tradeTable.Update(msg)

	return m, cmd
}

func (m Model) sparkWidth() int {
	if m.width > 8 {
		return m.width - 8
	}

	return defaultSparkWidth
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateReportSelect:
		s.WriteString(TitleStyle.Render("Forest - Backtest Results"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.dirs) == 0 {
			s.WriteString(fmt.Sprintf("No reports found under %s\n", m.root))
		} else {
			s.WriteString(m.reportList.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to open, q to quit"))

	case StateReportDisplay:
		report := m.report.Unwrap()

		s.WriteString(TitleStyle.Render(fmt.Sprintf("Report - %s", m.reportDir)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		equity := PanelStyle.Render("Equity\n" + Sparkline(types.Values(report.Equity), m.sparkWidth()))
		s.WriteString(lipgloss.JoinVertical(lipgloss.Left, PanelStyle.Render(RenderSummary(report.Stats)), equity))
		s.WriteString("\n\n")

		if len(report.Trades) == 0 {
			s.WriteString("No trades\n")
		} else {
			s.WriteString(TitleStyle.Render(fmt.Sprintf("Trades (%d)", len(report.Trades))))
			s.WriteString("\n")
			s.WriteString(m.tradeTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("q: quit | Esc: back | ↑/↓: scroll trades"))
	}

	return s.String()
}
