package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/forest/internal/types"
)

// FindReports returns every folder under root that holds a stats file, sorted.
func FindReports(root string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && d.Name() == types.StatsFile {
			dirs = append(dirs, filepath.Dir(path))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(dirs)

	return dirs, nil
}

func findReportsCmd(root string) tea.Cmd {
	return func() tea.Msg {
		if _, err := os.Stat(root); err != nil {
			return LoadErrorMsg{Err: err}
		}

		dirs, err := FindReports(root)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return ReportsFoundMsg{Dirs: dirs}
	}
}

func loadReportCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		report, err := types.ReadReport(dir)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return ReportLoadedMsg{Dir: dir, Report: report}
	}
}
