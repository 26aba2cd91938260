package types

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	StatsFile  = "stats.yaml"
	TradesFile = "trades.yaml"
	EquityFile = "equity.yaml"
)

// Report is everything a run writes to its result folder.
type Report struct {
	Stats  RunStats
	Trades []Trade
	Equity []EquityPoint
}

// WriteReport writes stats, trades and equity of one run into dir.
func WriteReport(dir string, report Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}

	if err := WriteRunStats(filepath.Join(dir, StatsFile), []RunStats{report.Stats}); err != nil {
		return err
	}

	if err := writeYAML(filepath.Join(dir, TradesFile), report.Trades); err != nil {
		return err
	}

	return writeYAML(filepath.Join(dir, EquityFile), report.Equity)
}

// ReadReport loads a result folder written by WriteReport. Missing trade or
// equity files read as empty.
func ReadReport(dir string) (Report, error) {
	var stats []RunStats
	if err := readYAML(filepath.Join(dir, StatsFile), &stats); err != nil {
		return Report{}, err
	}

	if len(stats) == 0 {
		return Report{}, fmt.Errorf("no run stats in %s", dir)
	}

	report := Report{Stats: stats[0]}

	if err := readYAML(filepath.Join(dir, TradesFile), &report.Trades); err != nil && !os.IsNotExist(err) {
		return Report{}, err
	}

	if err := readYAML(filepath.Join(dir, EquityFile), &report.Equity); err != nil && !os.IsNotExist(err) {
		return Report{}, err
	}

	return report, nil
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return nil
}
