package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	engine_v1 "github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/forest/internal/backtest/grid"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const progressThrottle = 100 * time.Millisecond

type gridOptions struct {
	ConfigPath string
	DataPath   string
	OutputRoot string
	Workers    int
	CacheDir   string
	NoCache    bool
	Progress   bool
}

func gridAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	workers := int(cmd.Int("workers"))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	path, records, err := runGrid(ctx, log, gridOptions{
		ConfigPath: cmd.String("config"),
		DataPath:   cmd.String("data"),
		OutputRoot: cmd.String("output"),
		Workers:    workers,
		CacheDir:   cmd.String("cache-dir"),
		NoCache:    cmd.Bool("no-cache"),
		Progress:   true,
	})
	if err != nil {
		return err
	}

	printRecords(os.Stdout, records, int(cmd.Int("top")))
	fmt.Fprintf(os.Stdout, "%d records written to %s\n", len(records), path)

	return nil
}

// runGrid runs the config's grid and writes the ranked records. It returns the
// records file path.
func runGrid(ctx context.Context, log *logger.Logger, opts gridOptions) (string, []grid.Record, error) {
	config, err := loadRunConfig(opts.ConfigPath)
	if err != nil {
		return "", nil, err
	}

	combinations := config.Grid.Combinations()
	if len(combinations) == 0 {
		return "", nil, errors.New(errors.ErrCodeGridEmpty, "config has no grid section")
	}

	factory := engine_v1.NewGridFactory(config.Engine, config.Strategy, log)

	engineConfig, _, err := factory.Configs(grid.Params{})
	if err != nil {
		return "", nil, err
	}

	bars, err := loadBars(log, opts.DataPath, engineConfig)
	if err != nil {
		return "", nil, err
	}

	runner := grid.NewRunner(factory.Factory())
	runner.SetLogger(log)
	runner.SetFingerprint(factory.Fingerprint)
	runner.SetWorkers(opts.Workers)

	if !opts.NoCache {
		dir := opts.CacheDir
		if dir == "" {
			dir = grid.DefaultCacheDir()
		}

		cache, err := grid.NewFileCache(dir, log)
		if err != nil {
			return "", nil, err
		}

		runner.SetCache(cache)
		log.Debug("Using grid cache", zap.String("dir", dir))
	}

	if opts.Progress {
		bar := progressbar.NewOptions(len(combinations),
			progressbar.OptionSetDescription("grid"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(progressThrottle),
		)
		progress := grid.OnProgressCallback(func(done int, _ int) {
			_ = bar.Set(done)
		})
		runner.SetProgress(&progress)

		defer bar.Finish()
	}

	records, err := runner.Run(ctx, bars, combinations)
	if err != nil {
		return "", nil, err
	}

	ranked := grid.Rank(records)

	path := filepath.Join(opts.OutputRoot, "grid", trimExt(opts.ConfigPath), trimExt(opts.DataPath)+".yaml")
	if err := writeRecords(path, ranked); err != nil {
		return "", nil, err
	}

	return path, ranked, nil
}

func writeRecords(path string, records []grid.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeGridRunFailed, "failed to create grid result folder", err)
	}

	content, err := yaml.Marshal(records)
	if err != nil {
		return errors.Wrap(errors.ErrCodeGridRunFailed, "failed to encode grid records", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeGridRunFailed, "failed to write grid records", err)
	}

	return nil
}

func printRecords(w io.Writer, records []grid.Record, top int) {
	if top <= 0 || top > len(records) {
		top = len(records)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tparams\tequity_end\tmax_dd\trar\ttrades\tcached")

	for i, record := range records[:top] {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.4f\t%d\t%t\n",
			i+1, record.Params.Canonical(), record.EquityEnd, record.MaxDrawdown, record.ReturnOverDrawdown, record.Trades, record.Cached)
	}

	tw.Flush()
}

func trimExt(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
