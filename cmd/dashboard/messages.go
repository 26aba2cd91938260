package main

import "github.com/rxtech-lab/forest/internal/types"

// ReportsFoundMsg carries the result folders found under the root.
type ReportsFoundMsg struct {
	Dirs []string
}

// ReportLoadedMsg carries a report read from disk.
type ReportLoadedMsg struct {
	Dir    string
	Report types.Report
}

// LoadErrorMsg indicates that reports could not be listed or read.
type LoadErrorMsg struct {
	Err error
}
