package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rxtech-lab/forest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/forest/internal/backtest/grid"
	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/strategy"
	"github.com/rxtech-lab/forest/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runOptions are the inputs of a single backtest.
type runOptions struct {
	ConfigPath string
	DataPath   string
	OutputRoot string
	Trace      bool
	Quiet      bool
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	folder, stats, err := runBacktest(log, runOptions{
		ConfigPath: cmd.String("config"),
		DataPath:   cmd.String("data"),
		OutputRoot: cmd.String("output"),
		Trace:      cmd.Bool("trace"),
		Quiet:      cmd.Bool("quiet"),
	})
	if err != nil {
		return err
	}

	printStats(os.Stdout, stats)
	fmt.Fprintf(os.Stdout, "report written to %s\n", folder)

	return nil
}

// runBacktest runs one backtest and writes its report. It returns the result folder.
func runBacktest(log *logger.Logger, opts runOptions) (string, types.RunStats, error) {
	config, err := loadRunConfig(opts.ConfigPath)
	if err != nil {
		return "", types.RunStats{}, err
	}

	engineConfig, strategyConfig, err := engine_v1.NewGridFactory(config.Engine, config.Strategy, log).Configs(grid.Params{})
	if err != nil {
		return "", types.RunStats{}, err
	}

	bars, err := loadBars(log, opts.DataPath, engineConfig)
	if err != nil {
		return "", types.RunStats{}, err
	}

	eng, err := engine_v1.NewBacktestEngineV1(engineConfig)
	if err != nil {
		return "", types.RunStats{}, err
	}

	eng.SetLogger(log)

	if opts.Trace {
		eng.SetObserver(engine_v1.NewLogObserver(log))
	}

	if !opts.Quiet {
		eng.SetCallbacks(progressCallbacks())
	}

	strat, err := strategy.NewFromConfig(strategyConfig)
	if err != nil {
		return "", types.RunStats{}, err
	}

	if closer, ok := strat.(io.Closer); ok {
		defer closer.Close()
	}

	result, err := eng.Run(bars, strat)
	if err != nil {
		return "", types.RunStats{}, err
	}

	stats := engine_v1.CalculateRunStats(result)
	stats.DataPath = opts.DataPath

	folder := engine_v1.ResultFolder(opts.OutputRoot, strat.Name(), opts.ConfigPath, opts.DataPath, engineConfig)

	report := types.Report{
		Stats:  stats,
		Trades: result.Trades,
		Equity: result.Equity,
	}

	if err := types.WriteReport(folder, report); err != nil {
		return "", types.RunStats{}, err
	}

	log.Info("Report written", zap.String("folder", folder))

	return folder, stats, nil
}

func loadBars(log *logger.Logger, path string, config engine_v1.BacktestEngineV1Config) ([]types.Bar, error) {
	source, err := datasource.Open(path, log)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	return datasource.LoadBars(source, config.StartTime, config.EndTime)
}

// progressCallbacks draws a progress bar sized once the engine knows the
// prepared bar count.
func progressCallbacks() engine.LifecycleCallbacks {
	var bar *progressbar.ProgressBar

	onStart := engine.OnRunStartCallback(func(_ string, symbol string, strategyName string, totalBars int) error {
		bar = progressbar.NewOptions(totalBars,
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", strategyName, symbol)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(progressThrottle),
		)

		return nil
	})
	onData := engine.OnProcessDataCallback(func(current int, _ int) error {
		if bar == nil {
			return nil
		}

		return bar.Set(current)
	})
	onEnd := engine.OnRunEndCallback(func(string, types.BacktestResult, error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	return engine.LifecycleCallbacks{
		OnRunStart:    &onStart,
		OnRunEnd:      &onEnd,
		OnProcessData: &onData,
	}
}

func printStats(w io.Writer, stats types.RunStats) {
	fmt.Fprintf(w, "strategy        %s\n", stats.Strategy)
	fmt.Fprintf(w, "bars            %d\n", stats.Bars)
	fmt.Fprintf(w, "ending equity   %.2f\n", stats.EndingEquity)
	fmt.Fprintf(w, "total return    %.2f%%\n", stats.TotalReturn*100)
	fmt.Fprintf(w, "cagr            %.2f%%\n", stats.CAGR*100)
	fmt.Fprintf(w, "sharpe          %.3f\n", stats.Sharpe)
	fmt.Fprintf(w, "round trips     %d (win rate %.1f%%)\n", stats.TradeResult.NumberOfTrades, stats.TradeResult.WinRate*100)
	fmt.Fprintf(w, "max drawdown    %.2f (%.2f%%)\n", stats.TradeResult.MaxDrawdown, stats.TradeResult.MaxDrawdownPct*100)
	fmt.Fprintf(w, "fees            %.2f\n", stats.TotalFees)

	if stats.Halted {
		fmt.Fprintf(w, "halted at bar   %d\n", stats.HaltedAt)
	}
}
